package insights

import (
	"fmt"
	"sort"

	"fintrack/internal/core"
)

const (
	PersonalityImpulsive     PersonalityType = "Impulsive Spender"
	PersonalityFoodie        PersonalityType = "Foodie Spender"
	PersonalityOccasionalBig PersonalityType = "Occasional Big Spender"
	PersonalityLoyalist      PersonalityType = "Category Loyalist"
	PersonalitySaver         PersonalityType = "Saver"
	PersonalityBalanced      PersonalityType = "Balanced Spender"
)

const (
	// personalityMinTxns is the minimum 90-day sample before classifying.
	personalityMinTxns = 5

	// highValueCents marks a single transaction as high-value (2000 units).
	highValueCents = 2000 * 100
)

type PersonalityType string

// CategoryShare is a category's slice of total spend in a window.
type CategoryShare struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
	Percent  float64    `json:"percent"`
}

// Personality is a rule-derived spending archetype with a fixed template of
// description and advice, plus the top categories that drove it.
type Personality struct {
	Type          PersonalityType `json:"type"`
	Description   string          `json:"description"`
	Reason        string          `json:"reason"`
	Advice        string          `json:"advice"`
	TopCategories []CategoryShare `json:"top_categories"`
}

// personalityMetrics are the aggregates the decision list is evaluated over.
type personalityMetrics struct {
	total          int64
	txnCount       int
	distinctCats   int
	highValueCount int
	perWeek        float64
	budgetUsage    float64
	shares         []CategoryShare // sorted by spend descending
}

// personalityRule pairs a predicate with the archetype it produces. Rules are
// evaluated in declaration order; the first match wins.
type personalityRule struct {
	matches func(m personalityMetrics) bool
	build   func(m personalityMetrics) Personality
}

var personalityRules = []personalityRule{
	{
		matches: func(m personalityMetrics) bool {
			return m.distinctCats > 5 && m.perWeek > 10
		},
		build: func(m personalityMetrics) Personality {
			return Personality{
				Type:        PersonalityImpulsive,
				Description: "You spend often and across many categories, frequently on the spur of the moment.",
				Reason: fmt.Sprintf("%d categories touched with about %.0f transactions per week over the last 90 days.",
					m.distinctCats, m.perWeek),
				Advice: "Try a 24-hour pause before any non-essential purchase.",
			}
		},
	},
	{
		matches: func(m personalityMetrics) bool {
			return len(m.shares) > 0 && m.shares[0].Category == "Food" && m.shares[0].Percent > 30
		},
		build: func(m personalityMetrics) Personality {
			return Personality{
				Type:        PersonalityFoodie,
				Description: "Food is where your money goes first.",
				Reason: fmt.Sprintf("Food accounts for %.0f%% of your spending in the last 90 days.",
					m.shares[0].Percent),
				Advice: "Set a weekly eating-out allowance and cook the difference.",
			}
		},
	},
	{
		matches: func(m personalityMetrics) bool {
			return m.perWeek < 5 && m.highValueCount > 2
		},
		build: func(m personalityMetrics) Personality {
			return Personality{
				Type:        PersonalityOccasionalBig,
				Description: "You buy rarely, but when you do it is big.",
				Reason: fmt.Sprintf("%d high-value purchases with under 5 transactions per week.",
					m.highValueCount),
				Advice: "Plan large purchases a month ahead and compare prices before committing.",
			}
		},
	},
	{
		matches: func(m personalityMetrics) bool {
			return len(m.shares) > 0 && m.shares[0].Percent > 60
		},
		build: func(m personalityMetrics) Personality {
			return Personality{
				Type:        PersonalityLoyalist,
				Description: "One category dominates your spending.",
				Reason: fmt.Sprintf("%s takes %.0f%% of your 90-day spend.",
					m.shares[0].Category, m.shares[0].Percent),
				Advice: "Audit that category for subscriptions or habits you no longer need.",
			}
		},
	},
	{
		matches: func(m personalityMetrics) bool {
			return m.budgetUsage < 50 && m.perWeek < 5
		},
		build: func(m personalityMetrics) Personality {
			return Personality{
				Type:        PersonalitySaver,
				Description: "You spend little and stay far under budget.",
				Reason: fmt.Sprintf("Only %.0f%% of this month's budget used with few transactions.",
					m.budgetUsage),
				Advice: "Consider moving the surplus into savings automatically.",
			}
		},
	},
	{
		matches: func(personalityMetrics) bool { return true },
		build: func(personalityMetrics) Personality {
			return Personality{
				Type:        PersonalityBalanced,
				Description: "Your spending is spread evenly with no strong pattern.",
				Reason:      "No single habit dominates your last 90 days.",
				Advice:      "Keep doing what you are doing and review your budget monthly.",
			}
		},
	},
}

// ClassifyPersonality runs the ordered decision list over the trailing-90-day
// expense window. budgetUsage is the current-month usage percentage; callers
// pass 100 when no budget is set so a missing budget never reads as frugality.
// Returns false when fewer than 5 transactions are available.
func ClassifyPersonality(last90 []core.Transaction, budgetUsage float64) (*Personality, bool) {
	var expenses []core.Transaction
	for _, tx := range last90 {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	if len(expenses) < personalityMinTxns {
		return nil, false
	}

	m := personalityMetrics{
		txnCount:    len(expenses),
		perWeek:     float64(len(expenses)) / 12, // 90 days ≈ 12 weeks
		budgetUsage: budgetUsage,
	}

	byCategory := make(map[string]int64)
	for _, tx := range expenses {
		m.total += tx.Amount.Cents
		byCategory[tx.Category] += tx.Amount.Cents
		if tx.Amount.Cents > highValueCents {
			m.highValueCount++
		}
	}
	m.distinctCats = len(byCategory)
	m.shares = categoryShares(byCategory, m.total)

	for _, rule := range personalityRules {
		if rule.matches(m) {
			p := rule.build(m)
			p.TopCategories = topN(m.shares, 3)
			return &p, true
		}
	}
	return nil, false // unreachable: the last rule always matches
}

// categoryShares converts per-category totals into shares sorted by spend
// descending, with category name as the deterministic tie-break.
func categoryShares(byCategory map[string]int64, total int64) []CategoryShare {
	shares := make([]CategoryShare, 0, len(byCategory))
	for cat, cents := range byCategory {
		share := CategoryShare{Category: cat, Total: core.Money{Cents: cents}}
		if total > 0 {
			share.Percent = float64(cents) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total.Cents != shares[j].Total.Cents {
			return shares[i].Total.Cents > shares[j].Total.Cents
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

func topN(shares []CategoryShare, n int) []CategoryShare {
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
