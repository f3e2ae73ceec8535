package textutil

import (
	"regexp"
	"strings"
)

// Commas, "and" and "with" all act as list separators in roaster prose.
var reListSep = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+|\s+with\s+`)

// SplitList breaks a delimiter-separated phrase into trimmed entries.
// Empty fragments and stray punctuation are dropped.
func SplitList(s string) []string {
	var out []string
	for _, part := range reListSep.Split(s, -1) {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), ".,;:"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Dedupe removes case-insensitive duplicates while preserving order.
// The first-seen casing of each entry wins.
func Dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
