package external

import (
	"context"
	"errors"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// NamedDatabase is an external database with a name for logs
type NamedDatabase struct {
	Name     string
	Database domain.ExternalFoodDatabase
}

// Chain queries databases in order. A search returns the first non-empty
// result; a barcode lookup returns the first hit.
type Chain struct {
	databases []NamedDatabase
}

// NewChain creates a chain over databases, skipping nil entries
func NewChain(databases ...NamedDatabase) *Chain {
	c := &Chain{}
	for _, db := range databases {
		if db.Database != nil {
			c.databases = append(c.databases, db)
		}
	}
	return c
}

// Len returns the number of databases in the chain
func (c *Chain) Len() int {
	return len(c.databases)
}

// SearchByName fails only when every database failed
func (c *Chain) SearchByName(ctx context.Context, query string, limit int) ([]domain.RawFood, error) {
	var errs []error
	for _, db := range c.databases {
		foods, err := db.Database.SearchByName(ctx, query, limit)
		if err != nil {
			log.Warn().Err(err).Str("component", "external").Str("database", db.Name).Msg("search failed, trying next")
			errs = append(errs, err)
			continue
		}
		if len(foods) > 0 {
			return foods, nil
		}
	}
	if len(errs) == len(c.databases) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}

// GetByBarcode fails only when no database answered and at least one failed
func (c *Chain) GetByBarcode(ctx context.Context, barcode string) (*domain.RawFood, error) {
	var errs []error
	for _, db := range c.databases {
		food, err := db.Database.GetByBarcode(ctx, barcode)
		if err != nil {
			log.Warn().Err(err).Str("component", "external").Str("database", db.Name).Msg("barcode lookup failed, trying next")
			errs = append(errs, err)
			continue
		}
		if food != nil {
			return food, nil
		}
	}
	if len(errs) == len(c.databases) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
