package textclean

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CleanerName identifies the cleaning transform inside persisted artifacts. Bump it whenever
// Clean changes behavior, so that artifacts fit with the old transform are rejected.
const CleanerName = "lowercase-strip-urls-letters-only/v1"

var urlPattern = regexp.MustCompile(`http\S+`)

// Clean normalizes raw journal text: lowercase, URLs removed, every character other than
// a-z and whitespace removed, whitespace collapsed to single spaces and trimmed.
// The output only contains lowercase ASCII letters separated by single spaces.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(strings.ToLower(text), "")
	text = squeeze(text)
	// dropping punctuation can fuse a new URL-like token ("ht.tps" -> "https"),
	// strip it too so that Clean(Clean(x)) == Clean(x)
	if urlPattern.MatchString(text) {
		text = squeeze(urlPattern.ReplaceAllString(text, ""))
	}
	return text
}

// squeeze keeps a-z, folds whitespace runs into one space and trims both ends.
func squeeze(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}

	return b.String()
}

// Stringify coerces any value to a string. It never fails: nil becomes the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Cleaner is the stateless first stage of the risk pipeline. Fit exists so it can sit
// alongside the vectorizer and classifier stages; it learns nothing.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Name returns the identity recorded in artifacts.
func (c *Cleaner) Name() string {
	return CleanerName
}

func (c *Cleaner) Fit(_ []string) *Cleaner {
	return c
}

// Transform cleans every text. The result has the same length and order as the input.
func (c *Cleaner) Transform(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, text := range texts {
		cleaned[i] = Clean(text)
	}
	return cleaned
}

// TransformValues stringifies and cleans arbitrary values.
func (c *Cleaner) TransformValues(values []any) []string {
	cleaned := make([]string, len(values))
	for i, v := range values {
		cleaned[i] = Clean(Stringify(v))
	}
	return cleaned
}

// Tokens splits cleaned text into words of at least two letters.
func Tokens(cleaned string) []string {
	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
