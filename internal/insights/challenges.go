package insights

import (
	"math"
	"math/rand"

	"fintrack/internal/core"
)

const (
	// challengeSaveRate is the fraction of a category's monthly spend a
	// weekly challenge aims to save: 15% of the month, split over 4 weeks.
	challengeSaveRate = 0.15

	// expectedSaveFloorCents replaces a computed save below
	// expectedSaveMinCents (100 units) with a fixed 500 units.
	expectedSaveFloorCents = 500 * 100
	expectedSaveMinCents   = 100 * 100

	maxChallenges         = 3
	minCategoryChallenges = 2
)

// Challenge is one weekly savings dare tied to a spending category.
type Challenge struct {
	Category     string     `json:"category"`
	Title        string     `json:"title"`
	ExpectedSave core.Money `json:"expected_save"`
}

// challengePools holds the fixed templates per supported category. Categories
// without a pool produce no challenge and fall through to the General pad.
var challengePools = map[string][]string{
	"Food": {
		"Cook every dinner at home this week.",
		"No food delivery for 7 days.",
		"Pack lunch instead of buying it all week.",
	},
	"Shopping": {
		"No online shopping for 7 days.",
		"One week: buy nothing you did not plan yesterday.",
		"Unsubscribe from three store newsletters and skip their sales.",
	},
	"Transport": {
		"Walk or cycle every trip under 2 km this week.",
		"One week of public transport instead of rides.",
		"Combine all errands into two trips this week.",
	},
	"Entertainment": {
		"Free-fun week: only zero-cost entertainment.",
		"Pause one streaming service for a month.",
		"Host a games night instead of going out.",
	},
}

var generalPool = []string{
	"Track every single purchase for 7 days.",
	"Pick one no-spend day this week.",
	"Round down: skip one planned purchase entirely.",
}

// ChallengeGenerator picks challenge templates with an injected randomness
// source so tests can pin the stream. Production uses a time seed; repeated
// calls on identical input intentionally vary.
type ChallengeGenerator struct {
	rng *rand.Rand
}

func NewChallengeGenerator(seed int64) *ChallengeGenerator {
	return &ChallengeGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Build ranks the trailing-30-day expense categories by spend, creates one
// random challenge for each of the top 3 that has a template pool, pads from
// the General pool when fewer than 2 category challenges came out, and caps
// the result at 3.
func (g *ChallengeGenerator) Build(last30 []core.Transaction) []Challenge {
	var total int64
	byCategory := make(map[string]int64)
	for _, tx := range last30 {
		if tx.Type != core.Expense {
			continue
		}
		byCategory[tx.Category] += tx.Amount.Cents
		total += tx.Amount.Cents
	}

	var out []Challenge
	for _, share := range topN(categoryShares(byCategory, total), maxChallenges) {
		pool, ok := challengePools[share.Category]
		if !ok {
			continue
		}
		out = append(out, Challenge{
			Category:     share.Category,
			Title:        pool[g.rng.Intn(len(pool))],
			ExpectedSave: expectedSave(share.Total.Cents),
		})
	}

	for len(out) < minCategoryChallenges {
		out = append(out, Challenge{
			Category:     "General",
			Title:        generalPool[g.rng.Intn(len(generalPool))],
			ExpectedSave: core.Money{Cents: expectedSaveFloorCents},
		})
	}
	if len(out) > maxChallenges {
		out = out[:maxChallenges]
	}
	return out
}

// expectedSave is one week's worth of a 15% monthly cut, with tiny results
// bumped to the fixed floor.
func expectedSave(monthlySpendCents int64) core.Money {
	save := int64(math.Round(float64(monthlySpendCents) * challengeSaveRate / 4))
	if save < expectedSaveMinCents {
		save = expectedSaveFloorCents
	}
	return core.Money{Cents: save}
}
