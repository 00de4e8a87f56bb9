package ranking

import (
	"strconv"

	"github.com/okian/daonpick/internal/domain/category"
	"github.com/okian/daonpick/internal/domain/sampler"
)

type badge func(s sampler.Sampler) string

func fixed(text string) badge { return func(sampler.Sampler) string { return text } }

var badges = []badge{ //nolint:gochecknoglobals // fixed template set
	fixed("🔥 주간 급상승"),
	func(s sampler.Sampler) string { return "👁️ " + strconv.Itoa(200+s.Intn(301)) + "명 보고 있음" },
	fixed("📦 재구매율 1위"),
	fixed("⚡ 마감 임박"),
	fixed("⭐ 만족도 99%"),
	fixed("🏆 MD 강력 추천"),
}

// DefaultBadges is how many badges one card shows.
const DefaultBadges = 3

// BadgeCount is the size of the badge template set.
func BadgeCount() int { return len(badges) }

// PickBadges renders k distinct badge templates. k is clamped to [0, BadgeCount()].
func PickBadges(s sampler.Sampler, k int) []string {
	picked := sampler.Sample(s, badges, k)
	out := make([]string, 0, len(picked))
	for _, b := range picked {
		out = append(out, b(s))
	}
	return out
}

var fortunes = map[string][]string{ //nolint:gochecknoglobals // fixed message pools
	"주방용품": {
		"맛있는 요리가 행복을 가져다 줄 거예요!",
		"주방의 품격을 높여줄 아이템!",
	},
	"생활용품": {
		"깔끔한 정리가 금전운을 불러옵니다.",
		"삶의 질이 수직 상승할 기회!",
	},
	"가전디지털": {
		"스마트한 생활이 당신을 기다려요!",
		"오늘 가장 핫한 테크 아이템!",
	},
	"뷰티": {
		"오늘따라 더 빛나는 당신을 위해!",
		"설레는 변화가 시작될 거예요.",
	},
}

var defaultFortunes = []string{ //nolint:gochecknoglobals // fixed message pool
	"오늘 당신에게 딱 필요한 행운의 아이템!",
	"놓치면 후회할 대박 찬스!",
}

// FortunePool returns the message pool for a category label. Unknown
// categories get the default pool.
func FortunePool(label string) []string {
	if pool, ok := fortunes[category.Normalize(label)]; ok {
		return pool
	}
	return defaultFortunes
}

// PickFortune returns one message drawn uniformly from the category's pool.
func PickFortune(s sampler.Sampler, label string) string {
	msg, _ := sampler.Pick(s, FortunePool(label))
	return msg
}
