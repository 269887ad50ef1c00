package usda

// Food is a food record from the FoodData Central search API. Nutrient
// values are per 100 g.
type Food struct {
	FdcID           int        `json:"fdcId"`
	Description     string     `json:"description"`
	DataType        string     `json:"dataType"`
	BrandOwner      string     `json:"brandOwner,omitempty"`
	BrandName       string     `json:"brandName,omitempty"`
	GtinUpc         string     `json:"gtinUpc,omitempty"`
	FoodCategory    string     `json:"foodCategory,omitempty"`
	ServingSize     float64    `json:"servingSize,omitempty"`
	ServingSizeUnit string     `json:"servingSizeUnit,omitempty"`
	Nutrients       []Nutrient `json:"foodNutrients"`
}

// Nutrient is a single nutrient value
type Nutrient struct {
	NutrientID   int     `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// SearchResponse is the body of /v1/foods/search
type SearchResponse struct {
	Foods       []Food `json:"foods"`
	TotalHits   int    `json:"totalHits"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
}
