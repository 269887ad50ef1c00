package usecase

import (
	"context"
	"strings"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// labelFood describes how a classifier label maps onto the catalog
type labelFood struct {
	canonicalName  string
	searchSynonyms []string
	defaultWeight  float64
}

// labelTable covers the common classifier vocabulary. Keys are folded labels
// with separators replaced by spaces.
var labelTable = map[string]labelFood{
	"apple":          {"Яблоко", []string{"apple", "яблоки"}, 150},
	"banana":         {"Банан", []string{"banana", "бананы"}, 120},
	"orange":         {"Апельсин", []string{"orange"}, 180},
	"pear":           {"Груша", []string{"pear"}, 170},
	"grapes":         {"Виноград", []string{"grapes", "grape"}, 150},
	"strawberry":     {"Клубника", []string{"strawberry", "strawberries"}, 150},
	"tomato":         {"Помидор", []string{"tomato", "томат"}, 120},
	"cucumber":       {"Огурец", []string{"cucumber"}, 100},
	"carrot":         {"Морковь", []string{"carrot"}, 80},
	"broccoli":       {"Брокколи", []string{"broccoli"}, 150},
	"egg":            {"Яйцо куриное", []string{"egg", "яйцо"}, 55},
	"omelette":       {"Омлет", []string{"omelette", "omelet"}, 150},
	"fried eggs":     {"Яичница", []string{"fried eggs", "яичница"}, 120},
	"bread":          {"Хлеб", []string{"bread", "хлеб"}, 30},
	"pancakes":       {"Блины", []string{"pancakes", "блин"}, 150},
	"porridge":       {"Каша овсяная", []string{"oatmeal", "porridge", "каша"}, 250},
	"oatmeal":        {"Каша овсяная", []string{"oatmeal", "овсянка"}, 250},
	"rice":           {"Рис отварной", []string{"rice", "рис"}, 180},
	"buckwheat":      {"Гречка отварная", []string{"buckwheat", "гречка"}, 180},
	"pasta":          {"Макароны отварные", []string{"pasta", "spaghetti", "макароны"}, 200},
	"spaghetti":      {"Спагетти", []string{"spaghetti", "pasta"}, 200},
	"french fries":   {"Картофель фри", []string{"french fries", "fries", "картофель фри"}, 120},
	"mashed potato":  {"Картофельное пюре", []string{"mashed potato", "пюре"}, 200},
	"steak":          {"Стейк говяжий", []string{"steak", "beef", "говядина"}, 200},
	"chicken breast": {"Куриная грудка", []string{"chicken breast", "chicken", "курица"}, 150},
	"chicken wings":  {"Куриные крылья", []string{"chicken wings", "крылья"}, 180},
	"cutlet":         {"Котлета", []string{"cutlet", "котлета"}, 90},
	"salmon":         {"Лосось", []string{"salmon", "лосось"}, 150},
	"sushi":          {"Суши", []string{"sushi", "роллы"}, 200},
	"dumplings":      {"Пельмени", []string{"dumplings", "пельмени"}, 250},
	"borscht":        {"Борщ", []string{"borscht", "борщ"}, 300},
	"soup":           {"Суп", []string{"soup", "суп"}, 300},
	"caesar salad":   {"Салат Цезарь", []string{"caesar salad", "цезарь"}, 200},
	"greek salad":    {"Греческий салат", []string{"greek salad", "греческий"}, 200},
	"salad":          {"Салат овощной", []string{"salad", "салат"}, 150},
	"pizza":          {"Пицца", []string{"pizza", "пицца"}, 250},
	"hamburger":      {"Гамбургер", []string{"hamburger", "burger", "бургер"}, 220},
	"hot dog":        {"Хот-дог", []string{"hot dog", "хот-дог"}, 150},
	"sandwich":       {"Бутерброд", []string{"sandwich", "бутерброд"}, 150},
	"cheesecake":     {"Чизкейк", []string{"cheesecake", "чизкейк"}, 120},
	"chocolate cake": {"Торт шоколадный", []string{"chocolate cake", "торт"}, 120},
	"ice cream":      {"Мороженое", []string{"ice cream", "мороженое"}, 100},
	"donut":          {"Пончик", []string{"donut", "doughnut", "пончик"}, 70},
	"croissant":      {"Круассан", []string{"croissant", "круассан"}, 60},
	"yogurt":         {"Йогурт", []string{"yogurt", "йогурт"}, 150},
	"cottage cheese": {"Творог", []string{"cottage cheese", "творог"}, 150},
	"cheese":         {"Сыр", []string{"cheese", "сыр"}, 30},
	"coffee":         {"Кофе", []string{"coffee", "кофе"}, 200},
	"tea":            {"Чай", []string{"tea", "чай"}, 250},
	"juice":          {"Сок", []string{"juice", "сок"}, 250},
}

// LabelMapper resolves classifier labels to catalog foods with portion estimates
type LabelMapper struct {
	foods        *FoodService
	preprocessor *QueryPreprocessor
}

// NewLabelMapper creates a label mapper searching through foods
func NewLabelMapper(foods *FoodService, preprocessor *QueryPreprocessor) *LabelMapper {
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(false)
	}
	return &LabelMapper{foods: foods, preprocessor: preprocessor}
}

// MapLabelToFood never fails: on any miss it still returns a weight estimate.
func (m *LabelMapper) MapLabelToFood(ctx context.Context, label string, confidence float64, ownerID string) domain.LabelMatch {
	confidence = clampConfidence(confidence)
	query := m.preprocessor.PreprocessLabel(label)
	match := domain.LabelMatch{Label: label, Confidence: confidence}

	if entry, ok := lookupLabel(query); ok {
		match.FromTable = true
		match.EstimatedWeightGrams = EstimatePortionFromTable(entry.defaultWeight, confidence)
		candidates := append([]string{entry.canonicalName}, entry.searchSynonyms...)
		match.Food = m.firstHit(ctx, candidates, ownerID)
		if match.Food == nil && m.foods != nil {
			if food, err := m.foods.LabelFood(ctx, entry.canonicalName); err == nil {
				match.Food = food
			}
		}
		return match
	}

	match.Food = m.firstHit(ctx, []string{query}, ownerID)
	match.EstimatedWeightGrams = EstimatePortionByKeywords(query, confidence)
	return match
}

func (m *LabelMapper) firstHit(ctx context.Context, queries []string, ownerID string) *domain.FoodItem {
	if m.foods == nil {
		return nil
	}
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		foods, err := m.foods.SearchLocal(ctx, q, domain.SearchOptions{Limit: 1, OwnerID: ownerID})
		if err != nil {
			log.Warn().Err(err).Str("component", "labels").Str("query", q).Msg("catalog search failed")
			return nil
		}
		if len(foods) > 0 {
			food := foods[0]
			return &food
		}
	}
	return nil
}

func lookupLabel(query string) (labelFood, bool) {
	key := foldText(query)
	if entry, ok := labelTable[key]; ok {
		return entry, true
	}
	// Plural forms: "apples", "tomatoes"
	for _, suffix := range []string{"es", "s"} {
		if trimmed := strings.TrimSuffix(key, suffix); trimmed != key {
			if entry, ok := labelTable[trimmed]; ok {
				return entry, true
			}
		}
	}
	return labelFood{}, false
}
