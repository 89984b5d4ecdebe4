package keywords

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+(\s+|$)|\n+`)
	tokenPattern     = regexp.MustCompile(
		`\p{N}+(?:[.,]\p{N}+)+|[\p{L}\p{N}]+(?:[-'’][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`,
	)
)

// term tags
const (
	tagDigit   = 'd'
	tagUnusual = 'u'
	tagAcronym = 'a'
	tagProper  = 'n'
	tagPlain   = 'p'
)

// splitSentences returns the tokens of every non-empty sentence.
func splitSentences(text string) [][]string {
	var sentences [][]string
	for _, s := range sentenceBoundary.Split(text, -1) {
		var words []string
		for _, tok := range tokenPattern.FindAllString(s, -1) {
			// keep the stem of a contraction, drop the clitic
			if i := strings.IndexAny(tok, "'’"); i > 0 {
				tok = tok[:i]
			}
			words = append(words, tok)
		}
		if len(words) > 0 {
			sentences = append(sentences, words)
		}
	}
	return sentences
}

func isPunctuation(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isNumeric(word string) bool {
	stripped := strings.ReplaceAll(word, ",", "")
	if _, err := strconv.ParseFloat(stripped, 64); err != nil {
		return false
	}
	return strings.IndexFunc(stripped, unicode.IsDigit) >= 0
}

// tagOf classifies a word by its shape. pos is the word's position in its sentence.
func tagOf(word string, pos int) byte {
	if isNumeric(word) {
		return tagDigit
	}

	var digits, letters, punct, upper int
	for _, r := range word {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		default:
			punct++
		}
	}

	if (digits > 0 && letters > 0) || (digits == 0 && letters == 0) || punct > 1 {
		return tagUnusual
	}
	if upper == len([]rune(word)) {
		return tagAcronym
	}
	if first := []rune(word)[0]; unicode.IsUpper(first) && pos != 0 {
		return tagProper
	}
	return tagPlain
}

func discarded(tag byte) bool {
	return tag == tagDigit || tag == tagUnusual
}
