package usecase

import (
	"strings"
	"unicode"
)

// keyword is one folded entry of a keywordSet, split into words
type keyword struct {
	parts []string
	whole bool
}

// keywordSet matches text word by word. A stem matches the start of a word
// ("гречк" in "гречка"), a whole word must equal a word ("мед" but not
// "медальон"). Multi-word entries match consecutive words.
type keywordSet []keyword

// stems builds a keywordSet of word-start keywords
func stems(list ...string) keywordSet {
	return keywordSet(nil).add(false, list)
}

// withWords returns k extended by whole-word keywords
func (k keywordSet) withWords(list ...string) keywordSet {
	return k.add(true, list)
}

func (k keywordSet) add(whole bool, list []string) keywordSet {
	out := append(keywordSet(nil), k...)
	for _, s := range list {
		if parts := splitWords(s); len(parts) > 0 {
			out = append(out, keyword{parts: parts, whole: whole})
		}
	}
	return out
}

// first returns the first keyword as text, or "" for an empty set
func (k keywordSet) first() string {
	if len(k) == 0 {
		return ""
	}
	return strings.Join(k[0].parts, " ")
}

// matchWords reports whether any keyword occurs in the pre-split words
func (k keywordSet) matchWords(words []string) bool {
	for _, kw := range k {
		if kw.occursIn(words) {
			return true
		}
	}
	return false
}

func (kw keyword) occursIn(words []string) bool {
	last := len(kw.parts) - 1
	for i := 0; i+last < len(words); i++ {
		matched := true
		for j, part := range kw.parts {
			word := words[i+j]
			if j < last || kw.whole {
				matched = word == part
			} else {
				matched = strings.HasPrefix(word, part)
			}
			if !matched {
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// splitWords folds text and splits it on anything that is not a letter or digit
func splitWords(text string) []string {
	return strings.FieldsFunc(foldText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
