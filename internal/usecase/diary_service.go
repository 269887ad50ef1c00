package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DiaryService records what a user ate. Each entry keeps a snapshot of the
// food and the macros computed when it was written.
type DiaryService struct {
	store domain.DiaryStore
	foods *FoodService
	units *UnitConverter
}

// NewDiaryService creates a new diary service. units may be nil.
func NewDiaryService(store domain.DiaryStore, foods *FoodService, units *UnitConverter) *DiaryService {
	if units == nil {
		units = defaultConverter
	}
	return &DiaryService{store: store, foods: foods, units: units}
}

// AddEntry converts the entered quantity to grams and stores the entry
func (s *DiaryService) AddEntry(ctx context.Context, ownerID, date string, input domain.EntryInput) (*domain.DiaryEntry, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidRequest)
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if !input.MealSlot.Valid() {
		return nil, fmt.Errorf("%w: unknown meal slot %q", domain.ErrInvalidRequest, input.MealSlot)
	}

	food, err := s.foods.GetFood(ctx, input.FoodID, ownerID)
	if err != nil {
		return nil, err
	}

	unit := ParseUnit(input.Unit)
	weight := s.units.ToGrams(input.Amount, unit, foodLookupName(food))

	now := time.Now()
	entry := domain.DiaryEntry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Date:        date,
		MealSlot:    input.MealSlot,
		FoodID:      food.ID,
		Food:        *food,
		Amount:      sanitizeAmount(input.Amount),
		Unit:        string(unit),
		WeightGrams: round2(weight),
		Macros:      ScaleMacros(food.Macros, weight),
		Note:        strings.TrimSpace(input.Note),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Add(ctx, entry); err != nil {
		return nil, fmt.Errorf("store diary entry: %w", err)
	}

	log.Debug().Str("component", "diary").Str("owner", ownerID).Str("date", date).
		Str("food", food.Name).Float64("grams", entry.WeightGrams).Msg("entry added")
	return &entry, nil
}

// UpdateEntry changes amount, unit or note. Macros are recomputed from the
// entry's food snapshot, not from the current catalog.
func (s *DiaryService) UpdateEntry(ctx context.Context, ownerID, id string, update domain.EntryUpdate) (*domain.DiaryEntry, error) {
	entry, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil {
		entry.Amount = sanitizeAmount(*update.Amount)
	}
	if update.Unit != nil {
		entry.Unit = string(ParseUnit(*update.Unit))
	}
	if update.Note != nil {
		entry.Note = strings.TrimSpace(*update.Note)
	}
	if update.Amount != nil || update.Unit != nil {
		weight := s.units.ToGrams(entry.Amount, Unit(entry.Unit), foodLookupName(&entry.Food))
		entry.WeightGrams = round2(weight)
		entry.Macros = ScaleMacros(entry.Food.Macros, weight)
	}
	entry.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, *entry); err != nil {
		return nil, fmt.Errorf("update diary entry: %w", err)
	}
	return entry, nil
}

// RemoveEntry deletes one entry
func (s *DiaryService) RemoveEntry(ctx context.Context, ownerID, id string) error {
	return s.store.Remove(ctx, ownerID, id)
}

// ClearMeal deletes every entry of one meal and returns how many were removed
func (s *DiaryService) ClearMeal(ctx context.Context, ownerID, date string, slot domain.MealSlot) (int, error) {
	if _, err := parseDate(date); err != nil {
		return 0, err
	}
	if !slot.Valid() {
		return 0, fmt.Errorf("%w: unknown meal slot %q", domain.ErrInvalidRequest, slot)
	}
	return s.store.ClearMeal(ctx, ownerID, date, slot)
}

// ClearDay deletes every entry of a day and returns how many were removed
func (s *DiaryService) ClearDay(ctx context.Context, ownerID, date string) (int, error) {
	if _, err := parseDate(date); err != nil {
		return 0, err
	}
	return s.store.ClearDay(ctx, ownerID, date)
}

// GetDay returns a day's entries grouped by meal slot
func (s *DiaryService) GetDay(ctx context.Context, ownerID, date string) (*domain.DayLog, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	entries, err := s.store.ListDay(ctx, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("load diary day: %w", err)
	}
	day := domain.NewDayLog(date, entries)
	return &day, nil
}

// foodLookupName joins the names used for piece-weight lookup
func foodLookupName(food *domain.FoodItem) string {
	return strings.TrimSpace(food.Name + " " + food.NameLocalized)
}
