// Package textnorm provides text cleaning and term segmentation for
// Chinese-language social media content. All functions are pure: they never
// fail and never touch I/O, so callers can use them on untrusted input.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`@[\p{Han}\w-]+`)
	// Keeps Han runes, ASCII letters and digits; everything else becomes a space.
	symbolPattern     = regexp.MustCompile(`[^\p{Han}a-zA-Z0-9\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw post text: folds full-width characters to their
// half-width forms, strips URLs and @-mentions, drops symbols outside the
// Han/alphanumeric range and collapses whitespace.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = width.Narrow.String(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = symbolPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Segment splits cleaned text into candidate terms. Latin and digit runs are
// emitted as single terms; runs of Han characters are emitted as overlapping
// bigrams, which approximates word boundaries well enough for frequency
// ranking. Single-rune Han runs are emitted as-is and left for the caller's
// length filter.
func Segment(text string) []string {
	if text == "" {
		return nil
	}

	var terms []string

	var latin, han []rune

	flushLatin := func() {
		if len(latin) > 0 {
			terms = append(terms, strings.ToLower(string(latin)))
			latin = latin[:0]
		}
	}

	flushHan := func() {
		switch {
		case len(han) == 1:
			terms = append(terms, string(han))
		case len(han) > 1:
			for i := 0; i+1 < len(han); i++ {
				terms = append(terms, string(han[i:i+2]))
			}
		}

		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()

			han = append(han, r)
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			flushHan()

			latin = append(latin, r)
		default:
			flushLatin()
			flushHan()
		}
	}

	flushLatin()
	flushHan()

	return terms
}

// Terms runs the full normalization chain: clean, segment, then drop
// stopwords, single-rune terms and pure numbers.
func Terms(text string) []string {
	segments := Segment(Clean(text))
	if len(segments) == 0 {
		return nil
	}

	terms := make([]string, 0, len(segments))

	for _, term := range segments {
		if !Keep(term) {
			continue
		}

		terms = append(terms, term)
	}

	return terms
}

// Keep reports whether a segmented term survives the stopword, length and
// numeric filters.
func Keep(term string) bool {
	runes := []rune(term)
	if len(runes) <= 1 {
		return false
	}

	if isNumeric(runes) {
		return false
	}

	if _, ok := stopwords[term]; ok {
		return false
	}

	return true
}

func isNumeric(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return len(runes) > 0
}
