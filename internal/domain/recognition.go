package domain

// Prediction is one classifier output
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0..1
}

// LabelMatch is a classifier label resolved to a catalog food and a portion estimate
type LabelMatch struct {
	Label                string    `json:"label"`
	Confidence           float64   `json:"confidence"`
	Food                 *FoodItem `json:"food,omitempty"`
	EstimatedWeightGrams float64   `json:"estimatedWeightGrams"`
	FromTable            bool      `json:"fromTable"`
}

// Ingredient is one line of a recipe
type Ingredient struct {
	FoodID string  `json:"foodId" binding:"required"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// IngredientResult is an analyzed recipe line
type IngredientResult struct {
	Ingredient
	Name        string  `json:"name"`
	WeightGrams float64 `json:"weightGrams"`
	Macros      Macros  `json:"macros"`
}

// RecipeAnalysis totals a recipe
type RecipeAnalysis struct {
	Ingredients []IngredientResult `json:"ingredients"`
	Missing     []string           `json:"missing,omitempty"`
	TotalWeight float64            `json:"totalWeightGrams"`
	Totals      Macros             `json:"totals"`
	Per100      Macros             `json:"per100"`
}

// RecipeInput is a recipe to analyze or save as a custom food
type RecipeInput struct {
	Name        string       `json:"name"`
	Category    string       `json:"category,omitempty"`
	Ingredients []Ingredient `json:"ingredients" binding:"required,dive"`
}
