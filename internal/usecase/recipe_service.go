package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
)

// RecipeService totals ingredient lists and turns recipes into custom foods
type RecipeService struct {
	foods *FoodService
	units *UnitConverter
}

// NewRecipeService creates a new recipe service. units may be nil.
func NewRecipeService(foods *FoodService, units *UnitConverter) *RecipeService {
	if units == nil {
		units = defaultConverter
	}
	return &RecipeService{foods: foods, units: units}
}

// Analyze resolves each ingredient to grams and sums macros. Ingredients
// whose food cannot be found are listed in Missing and otherwise skipped.
func (s *RecipeService) Analyze(ctx context.Context, ownerID string, ingredients []domain.Ingredient) (*domain.RecipeAnalysis, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("%w: recipe has no ingredients", domain.ErrInvalidRequest)
	}

	analysis := &domain.RecipeAnalysis{Ingredients: make([]domain.IngredientResult, 0, len(ingredients))}
	for _, ing := range ingredients {
		food, err := s.foods.GetFood(ctx, ing.FoodID, ownerID)
		if errors.Is(err, domain.ErrFoodNotFound) {
			analysis.Missing = append(analysis.Missing, ing.FoodID)
			continue
		}
		if err != nil {
			return nil, err
		}

		weight := s.units.ToGrams(ing.Amount, ParseUnit(ing.Unit), foodLookupName(food))
		macros := ScaleMacros(food.Macros, weight)
		analysis.Ingredients = append(analysis.Ingredients, domain.IngredientResult{
			Ingredient:  ing,
			Name:        food.Name,
			WeightGrams: round2(weight),
			Macros:      macros,
		})
		analysis.TotalWeight += weight
		analysis.Totals = analysis.Totals.Add(macros)
	}

	analysis.TotalWeight = round2(analysis.TotalWeight)
	analysis.Totals = roundMacros(analysis.Totals)
	if analysis.TotalWeight > 0 {
		analysis.Per100 = ClampMacros(analysis.Totals.Scale(100 / analysis.TotalWeight))
	}
	return analysis, nil
}

// SaveAsCustomFood stores the recipe's per-100 profile as the owner's custom food
func (s *RecipeService) SaveAsCustomFood(ctx context.Context, ownerID string, recipe domain.RecipeInput) (*domain.FoodItem, *domain.RecipeAnalysis, error) {
	name := strings.TrimSpace(recipe.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: recipe name is required", domain.ErrInvalidRequest)
	}

	analysis, err := s.Analyze(ctx, ownerID, recipe.Ingredients)
	if err != nil {
		return nil, nil, err
	}
	if analysis.TotalWeight == 0 {
		return nil, analysis, fmt.Errorf("%w: recipe has zero weight", domain.ErrInvalidRequest)
	}

	category := strings.TrimSpace(recipe.Category)
	if category == "" {
		category = "recipes"
	}
	food, err := s.foods.CreateCustomFood(ctx, ownerID, domain.CustomFoodInput{
		Name:     name,
		Category: category,
		Macros:   analysis.Per100,
	})
	if err != nil {
		return nil, analysis, err
	}
	return food, analysis, nil
}
