// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// JoinDistinct joins the distinct, non-empty values with sep in first-seen order.
//
//	JoinDistinct([]string{"Ann", "Bob", "Ann"}, ", ") // "Ann, Bob"
func JoinDistinct(values []string, sep string) string {
	return strings.Join(DedupeAndTrim(values), sep)
}

// EqualFoldAny reports whether s equals any non-empty candidate, ignoring case
// and surrounding whitespace.
func EqualFoldAny(s string, candidates ...string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" && strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}
