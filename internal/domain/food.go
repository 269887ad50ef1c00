package domain

import "time"

// Source identifies where a catalog entry came from
type Source string

const (
	SourceLocal      Source = "local"
	SourceCustom     Source = "custom"
	SourceExternal   Source = "external"
	SourceClassifier Source = "classifier"
)

// Macros holds calories (kcal) and macronutrients (grams)
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// IsZero reports whether all four values are zero
func (m Macros) IsZero() bool {
	return m.Calories == 0 && m.Protein == 0 && m.Fat == 0 && m.Carbs == 0
}

// Add returns the element-wise sum
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Fat:      m.Fat + o.Fat,
		Carbs:    m.Carbs + o.Carbs,
	}
}

// Scale returns the macros multiplied by factor
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Fat:      m.Fat * factor,
		Carbs:    m.Carbs * factor,
	}
}

// FoodItem is a catalog entry. Macros are always per 100 g (or 100 ml).
type FoodItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	NameLocalized string    `json:"nameLocalized,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Barcode       string    `json:"barcode,omitempty"`
	Category      string    `json:"category,omitempty"`
	Aliases       []string  `json:"aliases,omitempty"`
	Macros        Macros    `json:"macros"`
	Source        Source    `json:"source"`
	OwnerID       string    `json:"ownerId,omitempty"`
	AutoFilled    bool      `json:"autoFilled"`
	Popularity    int       `json:"popularity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VisibleTo reports whether the food belongs to the shared catalog or to ownerID.
func (f *FoodItem) VisibleTo(ownerID string) bool {
	return f.OwnerID == "" || (ownerID != "" && f.OwnerID == ownerID)
}

// RawFood is an unnormalized record from an external source.
// PerServing is only meaningful together with a positive ServingSizeGrams.
type RawFood struct {
	ExternalID       string   `json:"externalId,omitempty"`
	Name             string   `json:"name"`
	NameLocalized    string   `json:"nameLocalized,omitempty"`
	Brand            string   `json:"brand,omitempty"`
	Barcode          string   `json:"barcode,omitempty"`
	Category         string   `json:"category,omitempty"`
	Aliases          []string `json:"aliases,omitempty"`
	ServingSizeGrams float64  `json:"servingSizeGrams,omitempty"`
	PerServing       *Macros  `json:"perServing,omitempty"`
	Per100           *Macros  `json:"per100,omitempty"`
}

// CustomFoodInput carries user-authored food data
type CustomFoodInput struct {
	Name          string   `json:"name" binding:"required"`
	NameLocalized string   `json:"nameLocalized,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	Barcode       string   `json:"barcode,omitempty"`
	Category      string   `json:"category,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
	Macros        Macros   `json:"macros"`
}

// SearchOptions controls a catalog search
type SearchOptions struct {
	Limit   int
	OwnerID string
}

// SearchResult is the outcome of a search. Updated holds the catalog records
// the call wrote: stored external hits and placeholders rewritten by autofill.
type SearchResult struct {
	Foods   []FoodItem `json:"foods"`
	Updated []FoodItem `json:"updated,omitempty"`
}
