package usecase

import (
	"strings"

	"github.com/nutridiary/backend/internal/domain"
)

// DefaultFallbackCategory is used for categories missing from the table
const DefaultFallbackCategory = "vegetables"

// categoryProfiles holds average per-100 g macros by food category
var categoryProfiles = map[string]domain.Macros{
	"vegetables": {Calories: 25, Protein: 1.5, Fat: 0.2, Carbs: 5},
	"fruits":     {Calories: 50, Protein: 0.7, Fat: 0.3, Carbs: 12},
	"berries":    {Calories: 45, Protein: 0.8, Fat: 0.4, Carbs: 10},
	"meat":       {Calories: 220, Protein: 20, Fat: 15, Carbs: 0},
	"poultry":    {Calories: 180, Protein: 22, Fat: 10, Carbs: 0},
	"fish":       {Calories: 150, Protein: 20, Fat: 7, Carbs: 0},
	"seafood":    {Calories: 100, Protein: 18, Fat: 2, Carbs: 2},
	"dairy":      {Calories: 110, Protein: 6, Fat: 6, Carbs: 6},
	"cheese":     {Calories: 350, Protein: 25, Fat: 27, Carbs: 2},
	"eggs":       {Calories: 155, Protein: 13, Fat: 11, Carbs: 1},
	"grains":     {Calories: 340, Protein: 10, Fat: 2, Carbs: 70},
	"bakery":     {Calories: 280, Protein: 8, Fat: 4, Carbs: 52},
	"pasta":      {Calories: 350, Protein: 12, Fat: 1.5, Carbs: 71},
	"legumes":    {Calories: 330, Protein: 22, Fat: 1.5, Carbs: 55},
	"nuts":       {Calories: 600, Protein: 20, Fat: 50, Carbs: 20},
	"sweets":     {Calories: 450, Protein: 5, Fat: 20, Carbs: 62},
	"desserts":   {Calories: 320, Protein: 5, Fat: 15, Carbs: 42},
	"beverages":  {Calories: 40, Protein: 0, Fat: 0, Carbs: 10},
	"oils":       {Calories: 880, Protein: 0, Fat: 99, Carbs: 0},
	"sauces":     {Calories: 150, Protein: 2, Fat: 12, Carbs: 10},
	"soups":      {Calories: 50, Protein: 3, Fat: 2, Carbs: 6},
	"fast_food":  {Calories: 270, Protein: 11, Fat: 13, Carbs: 28},
}

// CategoryDefaults looks up average macros by category with an explicit fallback
type CategoryDefaults struct {
	profiles map[string]domain.Macros
	fallback string
}

// NewCategoryDefaults creates a table lookup. An empty or unknown fallback
// resolves to DefaultFallbackCategory.
func NewCategoryDefaults(fallback string) *CategoryDefaults {
	fallback = normalizeCategory(fallback)
	if _, ok := categoryProfiles[fallback]; !ok {
		fallback = DefaultFallbackCategory
	}
	return &CategoryDefaults{profiles: categoryProfiles, fallback: fallback}
}

// Get returns the profile of category, or the fallback profile when unknown
func (d *CategoryDefaults) Get(category string) domain.Macros {
	if m, ok := d.profiles[normalizeCategory(category)]; ok {
		return m
	}
	return d.profiles[d.fallback]
}

// Known reports whether category has its own profile
func (d *CategoryDefaults) Known(category string) bool {
	_, ok := d.profiles[normalizeCategory(category)]
	return ok
}

// Fallback returns the configured fallback category
func (d *CategoryDefaults) Fallback() string {
	return d.fallback
}

var defaultCategoryDefaults = NewCategoryDefaults(DefaultFallbackCategory)

// GetCategoryDefaults returns average macros for category, falling back to vegetables
func GetCategoryDefaults(category string) domain.Macros {
	return defaultCategoryDefaults.Get(category)
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	c = strings.ReplaceAll(c, "-", "_")
	return strings.ReplaceAll(c, " ", "_")
}
