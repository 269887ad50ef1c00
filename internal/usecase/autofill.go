package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// autofillLookupLimit bounds the external name lookup
const autofillLookupLimit = 5

// NeedsAutoFill reports whether a food has no nutrition data at all.
// A food with any macro populated is trusted as entered.
func NeedsAutoFill(food *domain.FoodItem) bool {
	return food != nil && food.Macros.IsZero()
}

// AutoFiller fills placeholder-zero foods from an external database or category defaults
type AutoFiller struct {
	store    domain.CatalogStore
	external domain.ExternalFoodDatabase
	defaults *CategoryDefaults
}

// NewAutoFiller creates an autofiller. external may be nil.
func NewAutoFiller(store domain.CatalogStore, external domain.ExternalFoodDatabase, defaults *CategoryDefaults) *AutoFiller {
	if defaults == nil {
		defaults = defaultCategoryDefaults
	}
	return &AutoFiller{store: store, external: external, defaults: defaults}
}

// AutoFillNutrition tries an external lookup by name, then category defaults.
// It returns the (possibly updated) food and whether it was changed and persisted.
// Failures leave the food untouched.
func (a *AutoFiller) AutoFillNutrition(ctx context.Context, food domain.FoodItem) (domain.FoodItem, bool) {
	if !NeedsAutoFill(&food) {
		return food, false
	}

	macros, ok := a.lookupExternal(ctx, food.Name)
	if !ok && strings.TrimSpace(food.Category) != "" {
		macros, ok = a.defaults.Get(food.Category), true
	}
	if !ok || macros.IsZero() {
		return food, false
	}

	food.Macros = macros
	food.AutoFilled = true
	food.UpdatedAt = time.Now()

	if err := a.store.Upsert(ctx, food); err != nil {
		log.Warn().Err(err).Str("component", "autofill").Str("food_id", food.ID).
			Msg("failed to persist autofilled food")
		return food, false
	}

	log.Debug().Str("component", "autofill").Str("food_id", food.ID).Str("name", food.Name).
		Float64("calories", macros.Calories).Msg("food autofilled")
	return food, true
}

func (a *AutoFiller) lookupExternal(ctx context.Context, name string) (domain.Macros, bool) {
	if a.external == nil || strings.TrimSpace(name) == "" {
		return domain.Macros{}, false
	}

	raws, err := a.external.SearchByName(ctx, name, autofillLookupLimit)
	if err != nil {
		log.Warn().Err(err).Str("component", "autofill").Str("query", name).
			Msg("external lookup failed")
		return domain.Macros{}, false
	}

	for _, raw := range raws {
		if normalized := NormalizeFood(raw, domain.SourceExternal, ""); normalized != nil {
			return normalized.Macros, true
		}
	}
	return domain.Macros{}, false
}
