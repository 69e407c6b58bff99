// Package guard validates and sanitizes free-text user input.
// Pure functions over text - no side effects, no dependencies.
package guard

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the input length cap applied when callers pass
// a non-positive max length.
const DefaultMaxLength = 1000

// unsafePatterns reject markup and script injection attempts.
// Matched case-insensitively against the raw input.
var unsafePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`), // inline event handlers (onclick=, onload=, ...)
}

var (
	dangerousChars = regexp.MustCompile(`[<>"']`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Validate reports whether text is safe to process.
// It fails on empty input, input longer than maxLength characters (text of
// exactly maxLength passes; length counts runes, not bytes), and input
// matching any unsafe pattern.
func Validate(text string, maxLength int) bool {
	if text == "" {
		return false
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(text) > maxLength {
		return false
	}
	for _, p := range unsafePatterns {
		if p.MatchString(text) {
			return false
		}
	}
	return true
}

// Sanitize strips angle brackets and quote characters, collapses whitespace
// runs to single spaces and trims the ends. It never rejects input, and is
// idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = dangerousChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
