package usda

import (
	"strconv"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
)

// USDA Nutrient IDs for key macronutrients
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
)

// ToRawFood converts a USDA food into an unnormalized record. Search results
// carry per-100 g values, so serving data is not used for scaling.
func ToRawFood(food *Food) domain.RawFood {
	brand := strings.TrimSpace(food.BrandName)
	if brand == "" {
		brand = strings.TrimSpace(food.BrandOwner)
	}

	macros := extractMacros(food.Nutrients)
	return domain.RawFood{
		ExternalID: "usda:" + strconv.Itoa(food.FdcID),
		Name:       titleDescription(food.Description),
		Brand:      brand,
		Barcode:    strings.TrimSpace(food.GtinUpc),
		Category:   strings.TrimSpace(food.FoodCategory),
		Per100:     &macros,
	}
}

// extractMacros extracts the key macronutrients from a USDA nutrient list
func extractMacros(nutrients []Nutrient) domain.Macros {
	var m domain.Macros
	for _, n := range nutrients {
		switch n.NutrientID {
		case NutrientIDEnergy:
			m.Calories = n.Value
		case NutrientIDProtein:
			m.Protein = n.Value
		case NutrientIDCarbohydrate:
			m.Carbs = n.Value
		case NutrientIDTotalFat:
			m.Fat = n.Value
		}
	}
	return m
}

// FindNutrientValue finds a specific nutrient value by ID
func FindNutrientValue(nutrients []Nutrient, nutrientID int) float64 {
	for _, n := range nutrients {
		if n.NutrientID == nutrientID {
			return n.Value
		}
	}
	return 0
}

// titleDescription turns "APPLES, RAW, WITH SKIN" into "Apples, raw, with skin".
// Mixed-case descriptions are kept as-is.
func titleDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" || desc != strings.ToUpper(desc) {
		return desc
	}
	lower := []rune(strings.ToLower(desc))
	lower[0] = []rune(strings.ToUpper(string(lower[0])))[0]
	return string(lower)
}

// sameBarcode compares GTIN/UPC codes ignoring leading zeros
func sameBarcode(a, b string) bool {
	a = strings.TrimLeft(strings.TrimSpace(a), "0")
	b = strings.TrimLeft(strings.TrimSpace(b), "0")
	return a != "" && a == b
}
