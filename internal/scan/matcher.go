// Package scan implements keyword matching over extracted text content.
//
// Matching is a plain case-insensitive substring test. There is no tokenising,
// no regular expressions and no attempt to understand the scanned code.
package scan

import "strings"

// Match returns the keywords whose lowercase form occurs in the lowercase content.
// The result preserves the order and casing of keywords as supplied.
// Returns nil when content or keywords are empty.
func Match(content string, keywords []string) []string {
	if content == "" || len(keywords) == 0 {
		return nil
	}

	lower := strings.ToLower(content)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
