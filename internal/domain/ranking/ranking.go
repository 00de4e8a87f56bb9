// Package ranking orders the catalog by views and renders the cosmetic
// badge and fortune strings.
package ranking

import (
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/daonpick/internal/domain/model"
)

// DefaultTopN is the leaderboard length used by the catalog page.
const DefaultTopN = 10

// Ranked is a top entry with its 1-based rank. Equal views share a rank.
type Ranked struct {
	model.CatalogEntry
	Rank int
}

// TopN returns the first min(n, len(catalog)) entries by views descending.
// Ties keep their relative input order. The input is not modified.
func TopN(catalog []model.CatalogEntry, n int) []model.CatalogEntry {
	if n <= 0 || len(catalog) == 0 {
		return []model.CatalogEntry{}
	}
	sorted := slices.Clone(catalog)
	slices.SortStableFunc(sorted, func(a, b model.CatalogEntry) int {
		switch {
		case a.Views > b.Views:
			return -1
		case a.Views < b.Views:
			return 1
		default:
			return 0
		}
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// WithRanks assigns dense ranks to an already sorted top list.
func WithRanks(top []model.CatalogEntry) []Ranked {
	out := make([]Ranked, len(top))
	rank := 0
	for i, e := range top {
		if i == 0 || e.Views != top[i-1].Views {
			rank++
		}
		out[i] = Ranked{CatalogEntry: e, Rank: rank}
	}
	return out
}

var printer = message.NewPrinter(language.Korean) //nolint:gochecknoglobals // immutable formatter

// FormatViews renders the display count shown on a product card. The product
// code contributes a two digit suffix so that fresh products never show zero.
func FormatViews(views int64, code string) string {
	if views < 0 {
		views = 0
	}
	c, err := strconv.ParseInt(code, 10, 64)
	if err != nil || c < 0 {
		c = 0
	}
	suffix := c%90 + 10
	n := suffix
	if views > 0 {
		n = views*100 + suffix
	}

	switch {
	case n < 1000:
		return strconv.FormatInt(n, 10)
	case n < 10000:
		return fmt.Sprintf("%.1f천", float64(n)/1000)
	case n < 1000000:
		return fmt.Sprintf("%.1f만", float64(n)/10000)
	default:
		return printer.Sprintf("%d만", n/10000)
	}
}
