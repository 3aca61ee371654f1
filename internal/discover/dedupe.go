// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"strings"
	"unicode"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// dedupeKeyMax caps the normalized-title key length.
const dedupeKeyMax = 80

// Dedupe removes sources whose normalized titles collide, keeping the
// first occurrence and preserving input order. Sources with an empty or
// whitespace-only title are dropped.
func Dedupe(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	var unique []types.Source

	for _, s := range sources {
		key := dedupeKey(s.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}
	return unique
}

// dedupeKey returns the dedup key for a title: lowercased, stripped of
// everything outside letters/digits/whitespace, whitespace-collapsed,
// and truncated to 80 characters.
func dedupeKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	key := strings.Join(strings.Fields(b.String()), " ")
	if len(key) > dedupeKeyMax {
		key = key[:dedupeKeyMax]
	}
	return key
}
