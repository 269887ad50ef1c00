// Package sqlite stores the food catalog in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS food_items (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	name_localized TEXT NOT NULL DEFAULT '',
	brand          TEXT NOT NULL DEFAULT '',
	barcode        TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	aliases        TEXT NOT NULL DEFAULT '[]',
	calories       REAL NOT NULL DEFAULT 0,
	protein        REAL NOT NULL DEFAULT 0,
	fat            REAL NOT NULL DEFAULT 0,
	carbs          REAL NOT NULL DEFAULT 0,
	source         TEXT NOT NULL,
	owner_id       TEXT NOT NULL DEFAULT '',
	auto_filled    INTEGER NOT NULL DEFAULT 0,
	popularity     INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_food_items_owner_barcode ON food_items(owner_id, barcode) WHERE barcode != '';
CREATE INDEX IF NOT EXISTS idx_food_items_name ON food_items(name COLLATE NOCASE);
`

const foodColumns = `id, name, name_localized, brand, barcode, category, aliases, calories, protein, fat, carbs,
	source, owner_id, auto_filled, popularity, created_at, updated_at`

// CatalogStore is a CatalogStore on database/sql
type CatalogStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path and migrates it
func Open(ctx context.Context, path string) (*CatalogStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	log.Info().Str("component", "sqlite").Str("path", path).Msg("catalog database ready")
	return &CatalogStore{db: db}, nil
}

// Close closes the database
func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// Get returns a food by id
func (s *CatalogStore) Get(ctx context.Context, id string) (*domain.FoodItem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+foodColumns+" FROM food_items WHERE id = ?", id)
	return scanFood(row)
}

// GetByBarcode finds a food with barcode inside one owner scope
func (s *CatalogStore) GetByBarcode(ctx context.Context, ownerID, barcode string) (*domain.FoodItem, error) {
	if barcode == "" {
		return nil, domain.ErrFoodNotFound
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+foodColumns+" FROM food_items WHERE owner_id = ? AND barcode = ?", ownerID, barcode)
	return scanFood(row)
}

// Upsert inserts or replaces a food by id
func (s *CatalogStore) Upsert(ctx context.Context, food domain.FoodItem) error {
	aliases, err := json.Marshal(nonNilAliases(food.Aliases))
	if err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO food_items (`+foodColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		name_localized = excluded.name_localized,
		brand = excluded.brand,
		barcode = excluded.barcode,
		category = excluded.category,
		aliases = excluded.aliases,
		calories = excluded.calories,
		protein = excluded.protein,
		fat = excluded.fat,
		carbs = excluded.carbs,
		source = excluded.source,
		owner_id = excluded.owner_id,
		auto_filled = excluded.auto_filled,
		popularity = excluded.popularity,
		updated_at = excluded.updated_at`,
		food.ID, food.Name, food.NameLocalized, food.Brand, food.Barcode, food.Category, string(aliases),
		food.Macros.Calories, food.Macros.Protein, food.Macros.Fat, food.Macros.Carbs,
		string(food.Source), food.OwnerID, food.AutoFilled, food.Popularity,
		formatTime(food.CreatedAt), formatTime(food.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBarcode
		}
		return fmt.Errorf("upsert food %s: %w", food.ID, err)
	}
	return nil
}

// Delete removes a food
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM food_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete food %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrFoodNotFound
	}
	return nil
}

// QueryAll returns every food ordered by id
func (s *CatalogStore) QueryAll(ctx context.Context) ([]domain.FoodItem, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+foodColumns+" FROM food_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	var foods []domain.FoodItem
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, *food)
	}
	return foods, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFood(row rowScanner) (*domain.FoodItem, error) {
	var (
		food                 domain.FoodItem
		aliases, source      string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&food.ID, &food.Name, &food.NameLocalized, &food.Brand, &food.Barcode, &food.Category, &aliases,
		&food.Macros.Calories, &food.Macros.Protein, &food.Macros.Fat, &food.Macros.Carbs,
		&source, &food.OwnerID, &food.AutoFilled, &food.Popularity, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFoodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan food: %w", err)
	}

	if err := json.Unmarshal([]byte(aliases), &food.Aliases); err != nil {
		return nil, fmt.Errorf("decode aliases of %s: %w", food.ID, err)
	}
	if len(food.Aliases) == 0 {
		food.Aliases = nil
	}
	food.Source = domain.Source(source)
	food.CreatedAt = parseTime(createdAt)
	food.UpdatedAt = parseTime(updatedAt)
	return &food, nil
}

func nonNilAliases(aliases []string) []string {
	if aliases == nil {
		return []string{}
	}
	return aliases
}

// formatTime stores times as ISO 8601 in UTC
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
