package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutridiary/backend/internal/domain"
	"gorm.io/gorm"
)

// DiaryStore is a DiaryStore backed by gorm
type DiaryStore struct {
	db *gorm.DB
}

// NewDiaryStore creates a diary store on db
func NewDiaryStore(db *gorm.DB) *DiaryStore {
	return &DiaryStore{db: db}
}

// Add stores a new entry
func (s *DiaryStore) Add(ctx context.Context, entry domain.DiaryEntry) error {
	model, err := toEntryModel(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// Update replaces an existing entry of the same owner
func (s *DiaryStore) Update(ctx context.Context, entry domain.DiaryEntry) error {
	model, err := toEntryModel(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&diaryEntryModel{}).
		Where("id = ? AND owner_id = ?", entry.ID, entry.OwnerID).
		Select("*").Omit("created_at").
		Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// Get returns one of the owner's entries
func (s *DiaryStore) Get(ctx context.Context, ownerID, id string) (*domain.DiaryEntry, error) {
	var model diaryEntryModel
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	entry, err := model.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return &entry, nil
}

// Remove deletes one of the owner's entries
func (s *DiaryStore) Remove(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&diaryEntryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// ListDay returns the owner's entries of one date in creation order
func (s *DiaryStore) ListDay(ctx context.Context, ownerID, date string) ([]domain.DiaryEntry, error) {
	return s.ListRange(ctx, ownerID, date, date)
}

// ListRange returns the owner's entries with from <= date <= to
func (s *DiaryStore) ListRange(ctx context.Context, ownerID, from, to string) ([]domain.DiaryEntry, error) {
	var models []diaryEntryModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND date >= ? AND date <= ?", ownerID, from, to).
		Order("date, created_at, id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.DiaryEntry, 0, len(models))
	for _, m := range models {
		e, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", m.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ClearMeal deletes the owner's entries of one meal
func (s *DiaryStore) ClearMeal(ctx context.Context, ownerID, date string, slot domain.MealSlot) (int, error) {
	res := s.db.WithContext(ctx).
		Where("owner_id = ? AND date = ? AND meal_slot = ?", ownerID, date, string(slot)).
		Delete(&diaryEntryModel{})
	return int(res.RowsAffected), res.Error
}

// ClearDay deletes the owner's entries of one date
func (s *DiaryStore) ClearDay(ctx context.Context, ownerID, date string) (int, error) {
	res := s.db.WithContext(ctx).Where("owner_id = ? AND date = ?", ownerID, date).Delete(&diaryEntryModel{})
	return int(res.RowsAffected), res.Error
}
