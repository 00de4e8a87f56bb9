// Package merge joins the product feed with the view counters into the catalog.
package merge

import (
	"strings"

	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/sampler"
)

// Seed returns the built-in catalog used when the product feed yields nothing.
func Seed() []model.ProductRecord {
	return []model.ProductRecord{
		{
			Code:     "10024",
			Name:     "무선 야채 다지기",
			Category: "주방용품",
			Link:     "https://example.com",
			Image:    "https://placehold.co/300x400/e8e8e8/191919?text=10024",
		},
		{
			Code:     "10025",
			Name:     "규조토 발매트",
			Category: "생활잡화",
			Link:     "https://example.com",
			Image:    "https://placehold.co/300x400/e8e8e8/191919?text=10025",
		},
	}
}

// SeedSettings returns the settings used when the settings feed yields
// nothing: a single fallback row pointing at fallbackURL.
func SeedSettings(fallbackURL string) []model.Setting {
	return []model.Setting{{Type: model.SettingFallback, Label: "fallback", URL: fallbackURL}}
}

// Merge resolves the view count of every product and returns the catalog in
// shuffled order. A nil or empty products slice is replaced by Seed; nil counts
// resolve every entry to zero views. Products without a code are dropped.
// Codes that share a lookup key (case-insensitive) are duplicates: the last
// row wins at the position of the first. Views join on the exact code.
func Merge(s sampler.Sampler, products []model.ProductRecord, counts []model.ViewCount) []model.CatalogEntry {
	views := make(map[string]int64, len(counts))
	for _, c := range counts {
		views[strings.TrimSpace(c.Code)] = c.Count
	}

	entries := join(products, views)
	if len(entries) == 0 {
		entries = join(Seed(), views)
	}
	return sampler.Shuffled(s, entries)
}

func join(products []model.ProductRecord, views map[string]int64) []model.CatalogEntry {
	entries := make([]model.CatalogEntry, 0, len(products))
	pos := make(map[string]int, len(products))
	for _, p := range products {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			continue
		}
		p.Code = code
		e := model.CatalogEntry{ProductRecord: p, Views: views[code]}
		key := model.LookupKey(code)
		if i, ok := pos[key]; ok {
			entries[i] = e
			continue
		}
		pos[key] = len(entries)
		entries = append(entries, e)
	}
	return entries
}
