package openfoodfacts

import (
	"math"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
)

const kjPerKcal = 4.184

// ToRawFood converts a product into an unnormalized record. Returns false
// when the product has no usable name.
func ToRawFood(p *Product) (domain.RawFood, bool) {
	name := strings.TrimSpace(p.ProductName)
	nameEN := strings.TrimSpace(p.ProductNameEN)
	if name == "" {
		name, nameEN = nameEN, ""
	}
	if name == "" {
		return domain.RawFood{}, false
	}

	raw := domain.RawFood{
		ExternalID: "off:" + p.Code,
		Name:       name,
		Brand:      firstListItem(p.Brands),
		Barcode:    strings.TrimSpace(p.Code),
		Category:   lastListItem(p.Categories),
	}
	if nameEN != "" && !strings.EqualFold(nameEN, name) {
		raw.Aliases = []string{nameEN}
	}

	n := p.Nutriments
	per100 := domain.Macros{
		Calories: kcal(n.EnergyKcal100g, n.EnergyKj100g),
		Protein:  float64(n.Proteins100g),
		Fat:      float64(n.Fat100g),
		Carbs:    float64(n.Carbohydrates100g),
	}
	if !per100.IsZero() {
		raw.Per100 = &per100
	}

	if servingInGrams(p.ServingQuantityUnit) && p.ServingQuantity > 0 {
		perServing := domain.Macros{
			Calories: kcal(n.EnergyKcalServing, n.EnergyKjServing),
			Protein:  float64(n.ProteinsServing),
			Fat:      float64(n.FatServing),
			Carbs:    float64(n.CarbohydratesServing),
		}
		if !perServing.IsZero() {
			raw.ServingSizeGrams = float64(p.ServingQuantity)
			raw.PerServing = &perServing
		}
	}
	return raw, true
}

// kcal falls back to kJ when kcal is missing
func kcal(kcal, kj Number) float64 {
	if kcal > 0 {
		return float64(kcal)
	}
	if kj > 0 {
		return math.Round(float64(kj)/kjPerKcal*100) / 100
	}
	return 0
}

func servingInGrams(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "g", "ml":
		return true
	}
	return false
}

func firstListItem(list string) string {
	parts := strings.Split(list, ",")
	return strings.TrimSpace(parts[0])
}

// lastListItem returns the most specific entry of a comma separated category path
func lastListItem(list string) string {
	parts := strings.Split(list, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}
