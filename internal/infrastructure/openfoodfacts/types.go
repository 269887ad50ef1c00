package openfoodfacts

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number accepts both JSON numbers and numeric strings ("12,5" included)
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Nutriments holds the nutrient fields the catalog uses
type Nutriments struct {
	EnergyKcal100g       Number `json:"energy-kcal_100g"`
	EnergyKj100g         Number `json:"energy-kj_100g"`
	Proteins100g         Number `json:"proteins_100g"`
	Carbohydrates100g    Number `json:"carbohydrates_100g"`
	Fat100g              Number `json:"fat_100g"`
	EnergyKcalServing    Number `json:"energy-kcal_serving"`
	EnergyKjServing      Number `json:"energy-kj_serving"`
	ProteinsServing      Number `json:"proteins_serving"`
	CarbohydratesServing Number `json:"carbohydrates_serving"`
	FatServing           Number `json:"fat_serving"`
}

// Product is an Open Food Facts product
type Product struct {
	Code                string     `json:"code"`
	ProductName         string     `json:"product_name"`
	ProductNameEN       string     `json:"product_name_en,omitempty"`
	Brands              string     `json:"brands,omitempty"`
	Categories          string     `json:"categories,omitempty"`
	Nutriments          Nutriments `json:"nutriments"`
	ServingQuantity     Number     `json:"serving_quantity"`
	ServingQuantityUnit string     `json:"serving_quantity_unit,omitempty"`
}

// ProductResponse is the body of /api/v2/product/{code}
type ProductResponse struct {
	Code    string   `json:"code"`
	Status  int      `json:"status"`
	Product *Product `json:"product"`
}

// SearchResponse is the body of /cgi/search.pl
type SearchResponse struct {
	Count    int       `json:"count"`
	Products []Product `json:"products"`
}
