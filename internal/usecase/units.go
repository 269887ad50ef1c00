package usecase

import (
	"math"
	"strconv"
	"strings"
)

// Unit is a user-facing quantity unit
type Unit string

const (
	UnitGram       Unit = "g"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pcs"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitPortion    Unit = "portion"
)

// Defaults for units without a food-specific weight
const (
	DefaultPieceGrams   = 50.0
	DefaultPortionGrams = 100.0
	tablespoonGrams     = 15.0
	teaspoonGrams       = 5.0
)

// unitAliases maps spellings (including Russian abbreviations) to canonical units
var unitAliases = map[string]Unit{
	"g": UnitGram, "gr": UnitGram, "gram": UnitGram, "grams": UnitGram,
	"г": UnitGram, "гр": UnitGram,
	"ml": UnitMilliliter, "мл": UnitMilliliter,
	"l": UnitLiter, "liter": UnitLiter, "litre": UnitLiter, "л": UnitLiter,
	"pcs": UnitPiece, "pc": UnitPiece, "piece": UnitPiece, "pieces": UnitPiece, "шт": UnitPiece,
	"tbsp": UnitTablespoon, "ст.л.": UnitTablespoon, "ст.л": UnitTablespoon, "ст. л.": UnitTablespoon,
	"tsp": UnitTeaspoon, "ч.л.": UnitTeaspoon, "ч.л": UnitTeaspoon, "ч. л.": UnitTeaspoon,
	"portion": UnitPortion, "serving": UnitPortion, "порция": UnitPortion, "порц": UnitPortion,
}

// ParseUnit resolves a unit spelling. Unknown units resolve to grams.
func ParseUnit(s string) Unit {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return UnitGram
}

// PieceWeight maps a name keyword to the average weight of one piece
type PieceWeight struct {
	Keyword string
	Grams   float64
}

// defaultPieceWeights is checked in order; the first keyword contained in the
// food name wins, so longer keywords come before their substrings.
var defaultPieceWeights = []PieceWeight{
	{"яйцо перепел", 12}, {"quail egg", 12},
	{"яблоко", 150}, {"apple", 150},
	{"банан", 120}, {"banana", 120},
	{"апельсин", 180}, {"orange", 180},
	{"мандарин", 80}, {"tangerine", 80}, {"mandarin", 80},
	{"груша", 170}, {"pear", 170},
	{"персик", 150}, {"peach", 150},
	{"киви", 75}, {"kiwi", 75},
	{"лимон", 100}, {"lemon", 100},
	{"помидор", 120}, {"томат", 120}, {"tomato", 120},
	{"огурец", 100}, {"cucumber", 100},
	{"картофел", 100}, {"potato", 100},
	{"морковь", 80}, {"carrot", 80},
	{"луковица", 90}, {"onion", 90},
	{"яйцо", 55}, {"egg", 55},
	{"хлеб", 30}, {"bread", 30},
	{"батон", 30},
	{"печенье", 15}, {"cookie", 15},
	{"конфета", 10}, {"candy", 10},
	{"сосиска", 50}, {"sausage", 50},
	{"котлета", 90}, {"cutlet", 90},
	{"блин", 45}, {"pancake", 45},
	{"пельмен", 12}, {"dumpling", 12},
	{"сырник", 50},
}

// UnitConverter turns quantity+unit pairs into canonical grams
type UnitConverter struct {
	pieceWeights      []PieceWeight
	defaultPieceGrams float64
	portionGrams      float64
}

// UnitConfig holds the tunable defaults of the converter
type UnitConfig struct {
	DefaultPieceGrams float64
	PortionGrams      float64
	PieceWeights      []PieceWeight
}

// NewUnitConverter creates a converter, filling unset values with defaults
func NewUnitConverter(config UnitConfig) *UnitConverter {
	c := &UnitConverter{
		pieceWeights:      config.PieceWeights,
		defaultPieceGrams: config.DefaultPieceGrams,
		portionGrams:      config.PortionGrams,
	}
	if len(c.pieceWeights) == 0 {
		c.pieceWeights = defaultPieceWeights
	}
	if c.defaultPieceGrams <= 0 {
		c.defaultPieceGrams = DefaultPieceGrams
	}
	if c.portionGrams <= 0 {
		c.portionGrams = DefaultPortionGrams
	}
	return c
}

var defaultConverter = NewUnitConverter(UnitConfig{})

// ConvertToGrams converts with the default tables
func ConvertToGrams(amount float64, unit Unit, foodName string) float64 {
	return defaultConverter.ToGrams(amount, unit, foodName)
}

// ToGrams converts amount of unit into grams. Milliliters are treated as grams
// (density of water). Negative, NaN and infinite amounts yield 0.
func (c *UnitConverter) ToGrams(amount float64, unit Unit, foodName string) float64 {
	amount = sanitizeAmount(amount)
	if amount == 0 {
		return 0
	}

	switch ParseUnit(string(unit)) {
	case UnitLiter:
		return amount * 1000
	case UnitPiece:
		return amount * c.PieceGrams(foodName)
	case UnitTablespoon:
		return amount * tablespoonGrams
	case UnitTeaspoon:
		return amount * teaspoonGrams
	case UnitPortion:
		return amount * c.portionGrams
	default:
		return amount
	}
}

// PieceGrams returns the average piece weight for a food name
func (c *UnitConverter) PieceGrams(foodName string) float64 {
	name := strings.ToLower(foodName)
	if name == "" {
		return c.defaultPieceGrams
	}
	for _, pw := range c.pieceWeights {
		if strings.Contains(name, pw.Keyword) {
			return pw.Grams
		}
	}
	return c.defaultPieceGrams
}

// ParseAmount parses user input such as "1,5" or " 2 ". Unparseable or
// negative input yields 0.
func ParseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitizeAmount(v)
}

func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
