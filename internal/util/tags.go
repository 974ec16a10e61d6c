// Package util provides common utility functions.
package util

import "strings"

// CanonicalTags normalizes a category or mechanic tag list: trims
// whitespace, collapses inner runs of spaces, drops empties, and removes
// case-insensitive duplicates keeping the first spelling. Display casing
// is preserved because tags come from BGG with curated names.
//
// Examples:
//
//	["Card  Game", "card game", " Nautical "] → ["Card Game", "Nautical"]
func CanonicalTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), " ")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
