package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex pattern for performance
var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// MatchKind is how closely a field matches a query, loosest first
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSubsequence
	MatchSubstring
	MatchPrefix
	MatchExact
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSubstring:
		return "substring"
	case MatchSubsequence:
		return "subsequence"
	default:
		return "none"
	}
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
}

// MatchingService filters and ranks catalog foods against a text query
type MatchingService struct {
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	return &MatchingService{enableDebugLogging: config.EnableDebugLogging}
}

// FuzzyMatch tests a field against a query: exact, prefix, substring, then
// in-order subsequence. Both sides are case and diacritic folded.
func FuzzyMatch(field, query string) MatchKind {
	return fuzzyMatchFolded(foldText(field), foldText(query))
}

func fuzzyMatchFolded(field, query string) MatchKind {
	if field == "" || query == "" {
		return MatchNone
	}
	switch {
	case field == query:
		return MatchExact
	case strings.HasPrefix(field, query):
		return MatchPrefix
	case strings.Contains(field, query):
		return MatchSubstring
	case isSubsequence(query, field):
		return MatchSubsequence
	}
	return MatchNone
}

// MatchFood returns the best match of query over all searchable fields of food
func (s *MatchingService) MatchFood(food *domain.FoodItem, query string) MatchKind {
	return s.matchFolded(food, foldText(query))
}

func (s *MatchingService) matchFolded(food *domain.FoodItem, query string) MatchKind {
	best := MatchNone
	for _, field := range searchableFields(food) {
		if kind := fuzzyMatchFolded(foldText(field), query); kind > best {
			best = kind
			if best == MatchExact {
				break
			}
		}
	}
	return best
}

type rankedFood struct {
	food domain.FoodItem
	kind MatchKind
	name string
}

// Rank keeps foods matching query and orders them: exact matches, then prefix
// matches, then everything else alphabetically by name. Ties break on name
// then id so the order is deterministic.
func (s *MatchingService) Rank(foods []domain.FoodItem, query string) []domain.FoodItem {
	q := foldText(query)
	if q == "" {
		return nil
	}

	ranked := make([]rankedFood, 0, len(foods))
	for _, food := range foods {
		kind := s.matchFolded(&food, q)
		if kind == MatchNone {
			continue
		}
		if s.enableDebugLogging {
			log.Debug().Str("component", "match").Str("query", query).Str("food", food.Name).
				Stringer("kind", kind).Msg("food matched")
		}
		ranked = append(ranked, rankedFood{food: food, kind: kind, name: foldText(food.Name)})
	}

	sortRanked(ranked)

	out := make([]domain.FoodItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.food
	}
	return out
}

// SortByName orders foods alphabetically by folded name, then id
func SortByName(foods []domain.FoodItem) []domain.FoodItem {
	ranked := make([]rankedFood, len(foods))
	for i, food := range foods {
		ranked[i] = rankedFood{food: food, name: foldText(food.Name)}
	}
	sortRanked(ranked)
	out := make([]domain.FoodItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.food
	}
	return out
}

func sortRanked(ranked []rankedFood) {
	sort.SliceStable(ranked, func(i, j int) bool {
		gi, gj := rankGroup(ranked[i].kind), rankGroup(ranked[j].kind)
		if gi != gj {
			return gi < gj
		}
		if ranked[i].name != ranked[j].name {
			return ranked[i].name < ranked[j].name
		}
		return ranked[i].food.ID < ranked[j].food.ID
	})
}

func rankGroup(kind MatchKind) int {
	switch kind {
	case MatchExact:
		return 0
	case MatchPrefix:
		return 1
	default:
		return 2
	}
}

// searchableFields lists the fields a query is tested against, in order
func searchableFields(food *domain.FoodItem) []string {
	fields := []string{food.Name, food.NameLocalized, food.Brand, food.Category, food.Barcode}
	return append(fields, food.Aliases...)
}

// isSubsequence reports whether all runes of query appear in s in order
func isSubsequence(query, s string) bool {
	q := []rune(query)
	i := 0
	for _, r := range s {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}

// foldText lowercases, strips combining marks (so "ё" matches "е") and
// collapses whitespace.
func foldText(s string) string {
	if s == "" {
		return ""
	}
	decomposed := norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	folded := norm.NFC.String(b.String())
	folded = multipleSpacesRegex.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}
