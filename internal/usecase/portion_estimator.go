package usecase

import "math"

// weightBand is a plausible portion range for a kind of food
type weightBand struct {
	name     string
	keywords keywordSet
	min, max float64
}

// portionBands are checked in order; the first band with a keyword among the
// label's words wins. Soups come first so "chicken soup" is a soup.
var portionBands = []weightBand{
	newBand("soup", 250, 350, stems(
		"soup", "borscht", "broth", "ramen", "chowder",
		"суп", "борщ", "бульон", "солянк", "окрошк").
		withWords("pho", "щи", "уха")),
	newBand("meat", 120, 180, stems(
		"meat", "steak", "beef", "pork", "chicken", "turkey", "lamb", "fish", "salmon", "tuna", "shrimp",
		"cutlet", "sausage", "мясо", "мясн", "стейк", "говядин", "свинин", "куриц", "курин", "индейк", "рыба",
		"лосос", "котлет", "колбас")),
	newBand("starch", 150, 200, stems(
		"rice", "pasta", "spaghetti", "noodle", "potato", "fries", "porridge", "buckwheat", "risotto",
		"рисов", "паста", "макарон", "спагетти", "картоф", "пюре", "каша", "гречк", "плов").
		withWords("рис")),
	newBand("produce", 100, 150, stems(
		"fruit", "vegetable", "apple", "banana", "orange", "grape", "berry", "salad", "tomato",
		"cucumber", "carrot", "фрукт", "овощ", "яблок", "банан", "апельсин", "груш", "виноград", "ягод",
		"салат", "помидор", "огур", "морков").
		withWords("pear", "pears")),
}

func newBand(name string, min, max float64, keywords keywordSet) weightBand {
	return weightBand{name: name, keywords: keywords, min: min, max: max}
}

// defaultBand applies when no keyword matches
var defaultBand = weightBand{name: "default", min: 150, max: 200}

// EstimatePortionFromTable scales a known default weight by confidence; the
// factor stays within 0.7..1.0 so the estimate never swings wildly.
func EstimatePortionFromTable(defaultWeight, confidence float64) float64 {
	return math.Round(defaultWeight * (0.7 + clampConfidence(confidence)*0.3))
}

// EstimatePortionByKeywords picks a weight band from the label and
// interpolates linearly inside it by confidence.
func EstimatePortionByKeywords(label string, confidence float64) float64 {
	band := bandFor(label)
	return math.Round(band.min + (band.max-band.min)*clampConfidence(confidence))
}

func bandFor(label string) weightBand {
	words := splitWords(label)
	for _, band := range portionBands {
		if band.keywords.matchWords(words) {
			return band
		}
	}
	return defaultBand
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
