package usecase

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Sanity bounds for per-100 values
const (
	maxCaloriesPer100 = 1000.0
	maxGramsPer100    = 100.0
)

// NormalizeFood converts an external record into a per-100 catalog entry.
// Returns nil when the record has no name or all macros end up zero; bulk
// callers are expected to skip nil results.
func NormalizeFood(raw domain.RawFood, source domain.Source, ownerID string) *domain.FoodItem {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil
	}

	var macros domain.Macros
	switch {
	case raw.PerServing != nil && raw.ServingSizeGrams > 0:
		macros = raw.PerServing.Scale(100 / raw.ServingSizeGrams)
	case raw.Per100 != nil:
		macros = *raw.Per100
	}

	macros = ClampMacros(macros)
	if macros.IsZero() {
		return nil
	}

	now := time.Now()
	return &domain.FoodItem{
		ID:            uuid.NewString(),
		Name:          name,
		NameLocalized: strings.TrimSpace(raw.NameLocalized),
		Brand:         strings.TrimSpace(raw.Brand),
		Barcode:       strings.TrimSpace(raw.Barcode),
		Category:      strings.TrimSpace(raw.Category),
		Aliases:       cleanAliases(raw.Aliases),
		Macros:        macros,
		Source:        source,
		OwnerID:       ownerID,
		AutoFilled:    false,
		Popularity:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ClampMacros bounds calories to [0,1000] and grams to [0,100], rounded to 2 dp
func ClampMacros(m domain.Macros) domain.Macros {
	return domain.Macros{
		Calories: round2(clamp(m.Calories, 0, maxCaloriesPer100)),
		Protein:  round2(clamp(m.Protein, 0, maxGramsPer100)),
		Fat:      round2(clamp(m.Fat, 0, maxGramsPer100)),
		Carbs:    round2(clamp(m.Carbs, 0, maxGramsPer100)),
	}
}

// ScaleMacros computes the macros of weightGrams of a per-100 profile
func ScaleMacros(per100 domain.Macros, weightGrams float64) domain.Macros {
	weightGrams = sanitizeAmount(weightGrams)
	m := per100.Scale(weightGrams / 100)
	return domain.Macros{
		Calories: round2(nonNegative(m.Calories)),
		Protein:  round2(nonNegative(m.Protein)),
		Fat:      round2(nonNegative(m.Fat)),
		Carbs:    round2(nonNegative(m.Carbs)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func cleanAliases(aliases []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
