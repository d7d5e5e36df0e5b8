package retrieval

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// tokenize extracts comparison tokens from text: whole words for
// scripts with spacing, character bigrams for CJK runs (Japanese has no
// word boundaries to split on). Text is width-folded and lowercased
// first so full-width variants compare equal.
func tokenize(text string) map[string]struct{} {
	normalized := strings.ToLower(width.Fold.String(text))

	tokens := make(map[string]struct{})
	var word []rune
	var cjk []rune

	flushWord := func() {
		if len(word) > 0 {
			tokens[string(word)] = struct{}{}
			word = word[:0]
		}
	}
	flushCJK := func() {
		if len(cjk) == 1 {
			tokens[string(cjk)] = struct{}{}
		}
		for i := 0; i+1 < len(cjk); i++ {
			tokens[string(cjk[i:i+2])] = struct{}{}
		}
		cjk = cjk[:0]
	}

	for _, r := range normalized {
		switch {
		case isCJK(r):
			flushWord()
			cjk = append(cjk, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushCJK()
			word = append(word, r)
		default:
			flushWord()
			flushCJK()
		}
	}
	flushWord()
	flushCJK()

	return tokens
}

// overlap returns the fraction of query tokens present in the candidate,
// in [0,1]. An empty query yields 0.
func overlap(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for tok := range query {
		if _, ok := candidate[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

// isCJK reports whether r belongs to a script written without word
// separators (Han, Hiragana, Katakana).
func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}
