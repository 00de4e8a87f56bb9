// Package category derives the category tabs of the catalog and filters by them.
package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/daonpick/internal/domain/model"
)

// All is the reserved key that selects the whole catalog.
const All = "전체"

// Tab is a category key with its display label.
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Canonical is the display order of the known categories.
func Canonical() []Tab {
	return []Tab{
		{Key: "주방용품", Label: "🍽️주방용품"},
		{Key: "생활용품", Label: "🧺생활용품"},
		{Key: "가전디지털", Label: "🎧가전디지털"},
		{Key: "인테리어", Label: "🕯️인테리어"},
		{Key: "반려용품", Label: "🐾반려용품"},
		{Key: "뷰티", Label: "🧴뷰티"},
		{Key: "식품", Label: "🍷식품"},
		{Key: "완구/취미", Label: "🛹완구/취미"},
		{Key: "자동차용품", Label: "🏎️자동차용품"},
	}
}

// Normalize strips pictographic glyphs and surrounding whitespace from a
// category label. Labels with and without emoji map to the same key.
func Normalize(label string) string {
	label = norm.NFC.String(label)
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isPictographic(r) {
			return -1
		}
		return r
	}, label))
}

func isPictographic(r rune) bool {
	switch {
	case r == '\u200d', r == '\u20e3':
		return true
	case r >= 0xfe00 && r <= 0xfe0f: // variation selectors
		return true
	case r >= 0x1f3fb && r <= 0x1f3ff: // skin tone modifiers
		return true
	case r >= 0xe0020 && r <= 0xe007f: // tag sequences
		return true
	}
	return unicode.Is(unicode.So, r)
}

// Distinct returns the normalized keys in order of first appearance.
// Uncategorized entries yield the empty key, so filtering by every
// distinct key covers the whole catalog.
func Distinct(catalog []model.CatalogEntry) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, e := range catalog {
		k := Normalize(e.Category)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Ordered returns the tabs of order whose key is present in the catalog,
// preceded by the All tab.
func Ordered(catalog []model.CatalogEntry, order []Tab) []Tab {
	present := make(map[string]struct{})
	for _, k := range Distinct(catalog) {
		present[k] = struct{}{}
	}
	tabs := []Tab{{Key: All, Label: All}}
	for _, t := range order {
		if _, ok := present[t.Key]; ok {
			tabs = append(tabs, t)
		}
	}
	return tabs
}

// Filter returns the entries whose normalized category equals key.
// All returns the catalog itself.
func Filter(catalog []model.CatalogEntry, key string) []model.CatalogEntry {
	if key == All {
		return catalog
	}
	key = Normalize(key)
	out := make([]model.CatalogEntry, 0)
	for _, e := range catalog {
		if Normalize(e.Category) == key {
			out = append(out, e)
		}
	}
	return out
}
