// Package insights derives spending intelligence from already-fetched ledger
// windows: a month-end forecast, a behavioral personality classification,
// actionable suggestions, mood patterns and savings challenges.
//
// Every function here is a pure pass over its inputs; callers fetch the time
// windows and gate on user preferences. "Not enough history" is a normal
// outcome signalled by a false second return, never an error.
package insights

import (
	"fmt"
	"math"
	"time"

	"fintrack/internal/core"
)

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// forecastMediumPercent is the medium-risk cutoff. The 75% convention is used
// at every computation site, matching the budget alert ladder.
const forecastMediumPercent = 75

type RiskLevel string

// Forecast projects current-month spending to month end from the trailing
// 30-day daily average.
type Forecast struct {
	DailyAverage  core.Money `json:"daily_average"`
	RemainingDays int        `json:"remaining_days"`
	Predicted     core.Money `json:"predicted"`
	Percent       float64    `json:"percent"`
	Risk          RiskLevel  `json:"risk"`
	Message       string     `json:"message"`
}

// BuildForecast derives a month-end spending projection. It returns false when
// no budget is set for the current month or the 30-day window holds no
// expenses; both mean there is nothing meaningful to project.
func BuildForecast(budget *core.Budget, last30 []core.Transaction, now time.Time) (*Forecast, bool) {
	if budget == nil || budget.Limit.Cents <= 0 {
		return nil, false
	}

	var windowTotal int64
	for _, tx := range last30 {
		if tx.Type == core.Expense {
			windowTotal += tx.Amount.Cents
		}
	}
	if windowTotal == 0 {
		return nil, false
	}

	dailyAvg := int64(math.Round(float64(windowTotal) / 30))
	remaining := core.DaysInMonth(now) - now.Day()
	predicted := budget.Spent.Cents + dailyAvg*int64(remaining)
	percent := float64(predicted) / float64(budget.Limit.Cents) * 100

	f := &Forecast{
		DailyAverage:  core.Money{Cents: dailyAvg},
		RemainingDays: remaining,
		Predicted:     core.Money{Cents: predicted},
		Percent:       percent,
	}

	switch {
	case percent > 100:
		f.Risk = RiskHigh
		f.Message = fmt.Sprintf("On the current pace you will exceed this month's budget by about %d%%.",
			int(math.Round(percent-100)))
	case percent > forecastMediumPercent:
		f.Risk = RiskMedium
		f.Message = "Spending is trending close to this month's budget. Keep an eye on it."
	default:
		f.Risk = RiskLow
		f.Message = "Spending is well within this month's budget."
	}

	return f, true
}
