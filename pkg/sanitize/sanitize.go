// Package sanitize provides pure functions that clean free-text input
// before it is persisted or used in queries.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex  = regexp.MustCompile(`[ \t]{2,}`)
)

// StripHTML removes script blocks (including their contents) and all
// remaining HTML tags from a string.
func StripHTML(input string) string {
	input = scriptBlockRegex.ReplaceAllString(input, "")
	return htmlTagRegex.ReplaceAllString(input, "")
}

// Clean strips HTML, collapses runs of spaces and trims the result. This is
// what user-generated text goes through before hitting a store.
func Clean(input string) string {
	input = StripHTML(input)
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// Truncate safely truncates a string to max bytes.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// EscapeLikeWildcards escapes SQL LIKE/ILIKE wildcard characters so user
// input cannot alter pattern matching.
func EscapeLikeWildcards(input string) string {
	input = strings.ReplaceAll(input, "\\", "\\\\")
	input = strings.ReplaceAll(input, "%", "\\%")
	input = strings.ReplaceAll(input, "_", "\\_")
	return input
}

// SearchPattern prepares a user-supplied search term for ILIKE matching:
// trimmed, length-capped, wildcards escaped, wrapped in %.
func SearchPattern(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > 100 {
		input = input[:100]
	}
	return "%" + EscapeLikeWildcards(input) + "%"
}
