package insights

import (
	"fmt"
	"math"
	"time"

	"fintrack/internal/core"
)

const (
	SuggestionReduceCategory = "reduce_category"
	SuggestionFreeze         = "budget_freeze"
	SuggestionBudgetAlert    = "budget_alert"
	SuggestionPersonality    = "personality_tip"
	SuggestionHighFrequency  = "high_frequency"
	SuggestionLargePurchase  = "large_purchases"
	SuggestionUpcomingBill   = "upcoming_bill"
)

const (
	// categoryShareCutoff is the 30-day share above which a category earns a
	// reduction suggestion.
	categoryShareCutoff = 25

	// largePurchaseCents flags a single transaction as a large purchase
	// (3000 units).
	largePurchaseCents = 3000 * 100

	// billLookaheadDays is the pending-bill window: due today through four
	// days out.
	billLookaheadDays = 4
)

// Suggestion is one actionable tip. All matching rules fire; suggestions are
// never deduplicated or capped.
type Suggestion struct {
	Kind     string     `json:"kind"`
	Message  string     `json:"message"`
	Category string     `json:"category,omitempty"`
	Amount   core.Money `json:"amount,omitempty"`
}

// SuggestionInput bundles the windows the rule list evaluates.
type SuggestionInput struct {
	Last30      []core.Transaction // trailing-30-day expenses
	Budget      *core.Budget       // current month, nil when unset
	Personality PersonalityType    // empty when classification was skipped
	Bills       []core.Bill        // pending bills
	Now         time.Time
}

var personalityTips = map[PersonalityType]string{
	PersonalityImpulsive:     "Impulse check: keep a wishlist and revisit it after a week before buying.",
	PersonalityFoodie:        "Foodie tip: batch-cook twice a week to halve your eating-out spend.",
	PersonalityOccasionalBig: "Big-ticket tip: set aside a fixed amount monthly for large purchases instead of paying in one hit.",
	PersonalitySaver:         "Saver tip: your surplus could be working for you in a savings or index account.",
}

// BuildSuggestions evaluates every suggestion rule independently and returns
// all matches.
func BuildSuggestions(in SuggestionInput) []Suggestion {
	var out []Suggestion

	expenses := make([]core.Transaction, 0, len(in.Last30))
	var total int64
	byCategory := make(map[string]int64)
	for _, tx := range in.Last30 {
		if tx.Type != core.Expense {
			continue
		}
		expenses = append(expenses, tx)
		total += tx.Amount.Cents
		byCategory[tx.Category] += tx.Amount.Cents
	}

	// Heavy categories: any 30-day share above the cutoff.
	for _, share := range categoryShares(byCategory, total) {
		if share.Percent > categoryShareCutoff {
			out = append(out, Suggestion{
				Kind:     SuggestionReduceCategory,
				Category: share.Category,
				Amount:   share.Total,
				Message: fmt.Sprintf("%s is eating %d%% of your month's spending. Try trimming it.",
					share.Category, int(math.Round(share.Percent))),
			})
		}
	}

	// Budget pressure: freeze above 100%, warn above 80%.
	if in.Budget != nil && in.Budget.Limit.Cents > 0 {
		switch usage := in.Budget.UsagePercent(); {
		case usage > 100:
			out = append(out, Suggestion{
				Kind:    SuggestionFreeze,
				Message: "You are over budget this month. Freeze non-essential spending until the new month.",
			})
		case usage > 80:
			out = append(out, Suggestion{
				Kind:    SuggestionBudgetAlert,
				Message: fmt.Sprintf("You have used %d%% of this month's budget. Slow down to finish the month in the green.", int(math.Round(usage))),
			})
		}
	}

	// One canned tip per non-default personality.
	if tip, ok := personalityTips[in.Personality]; ok {
		out = append(out, Suggestion{Kind: SuggestionPersonality, Message: tip})
	}

	// Transaction frequency: more than 4 per day over the window.
	if perDay := float64(len(expenses)) / 30; perDay > 4 {
		out = append(out, Suggestion{
			Kind:    SuggestionHighFrequency,
			Message: fmt.Sprintf("You average %.1f purchases a day. Bundling errands can cut impulse buys.", perDay),
		})
	}

	// Repeated large purchases: more than one over the large-purchase line.
	var largeCount int
	var largeTotal int64
	for _, tx := range expenses {
		if tx.Amount.Cents > largePurchaseCents {
			largeCount++
			largeTotal += tx.Amount.Cents
		}
	}
	if largeCount > 1 {
		out = append(out, Suggestion{
			Kind:   SuggestionLargePurchase,
			Amount: core.Money{Cents: largeTotal},
			Message: fmt.Sprintf("%d large purchases totalling %s in 30 days. Space them out if you can.",
				largeCount, core.Money{Cents: largeTotal}),
		})
	}

	// Bills landing soon: pending, due today through four days out.
	for _, bill := range in.Bills {
		if bill.Status != core.BillPending {
			continue
		}
		days := bill.DaysLeft(in.Now)
		if days < 0 || days > billLookaheadDays {
			continue
		}
		out = append(out, Suggestion{
			Kind:   SuggestionUpcomingBill,
			Amount: bill.Amount,
			Message: fmt.Sprintf("%s (%s) is due in %d day(s). Keep the balance ready.",
				bill.Name, bill.Amount, days),
		})
	}

	return out
}
