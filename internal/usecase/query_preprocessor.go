package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// QueryPreprocessor cleans classifier labels and free-text queries before
// they are matched against the catalog or sent to an external database
type QueryPreprocessor struct {
	enableDebugLogging bool
}

// Compiled regex patterns for query preprocessing
var (
	// Matches weights like "200 g", "0.5л", "150 гр", "1.5 liter"
	weightQuantityPattern = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:kg|g|gr|grams?|ml|l|liters?|oz|кг|гр|г|мл|л)(?:\s|$|[,.;])`)

	// Matches counts like "2 pcs", "3 шт", "x2"
	pieceCountPattern = regexp.MustCompile(`(?i)\d+\s*(?:pcs|pieces?|шт)\.?|\bx\d+\b`)

	// Separators classifiers use inside labels
	labelSeparatorPattern = regexp.MustCompile(`[_/|]+`)

	orphanPunctuationPattern = regexp.MustCompile(`\s+[,\-;:]+\s+|[,\-;:]+\s*$|^\s*[,\-;:]+`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// maxQueryLength bounds queries sent to external databases
const maxQueryLength = 100

// queryNoiseWords do not help narrow a food down
var queryNoiseWords = map[string]bool{
	// Classifier vocabulary
	"food": true, "dish": true, "meal": true, "plate": true, "bowl": true,
	"cuisine": true, "produce": true, "ingredient": true, "tableware": true,
	"recipe": true, "serving": true, "portion": true,

	// Marketing terms
	"homemade": true, "delicious": true, "tasty": true, "premium": true,
	"classic": true, "traditional": true, "best": true,

	// Russian equivalents
	"блюдо": true, "еда": true, "порция": true, "тарелка": true,
	"домашний": true, "домашняя": true, "домашнее": true, "вкусный": true,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// PreprocessLabel turns a classifier label such as "french_fries" or
// "Caesar Salad Dish" into a search query ("french fries", "caesar salad")
func (p *QueryPreprocessor) PreprocessLabel(label string) string {
	cleaned := labelSeparatorPattern.ReplaceAllString(label, " ")
	return p.PreprocessQuery(cleaned)
}

// PreprocessQuery lowercases a query and strips quantities, noise words and
// orphaned punctuation. Returns the trimmed input if everything was stripped.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	original := query

	cleaned := weightQuantityPattern.ReplaceAllString(strings.ToLower(query), " ")
	cleaned = pieceCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = p.removeNoiseWords(cleaned)
	cleaned = orphanPunctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		cleaned = strings.ToLower(strings.TrimSpace(original))
	}

	if len(cleaned) > maxQueryLength {
		cleaned = cutAtWordBoundary(cleaned, maxQueryLength)
	}

	if p.enableDebugLogging {
		log.Debug().Str("component", "preprocess").Str("input", original).Str("output", cleaned).
			Msg("query preprocessed")
	}

	return cleaned
}

// removeNoiseWords removes generic terms from the query
func (p *QueryPreprocessor) removeNoiseWords(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))

	for _, word := range words {
		cleanWord := strings.Trim(word, ",.!?;:-'\"")
		if !queryNoiseWords[cleanWord] {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}

// cutAtWordBoundary shortens s to at most max bytes without splitting a word
// or a multi-byte rune
func cutAtWordBoundary(s string, max int) string {
	cut := s[:max]
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > max/2 {
		return cut[:lastSpace]
	}
	for len(cut) > 0 && !isRuneStart(s[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
