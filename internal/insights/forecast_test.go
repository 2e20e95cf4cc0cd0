package insights

import (
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestBuildForecast(t *testing.T) {
	// 2025-03-21: 31-day month, 10 days remaining.
	now := time.Date(2025, 3, 21, 10, 0, 0, 0, time.UTC)

	budget := func(limitCents, spentCents int64) *core.Budget {
		return &core.Budget{
			UserID: "u1",
			Month:  "2025-03",
			Limit:  core.Money{Cents: limitCents},
			Spent:  core.Money{Cents: spentCents},
		}
	}

	t.Run("projects month end from 30-day average", func(t *testing.T) {
		// Window total 300000 cents over 30 days -> 10000 cents/day.
		window := nExpenses(30, "Food", 10000, now.AddDate(0, 0, -30))

		f, ok := BuildForecast(budget(100_000_00, 60_000_00), window, now)
		if !ok {
			t.Fatal("BuildForecast() ok = false, want true")
		}
		if f.DailyAverage.Cents != 10000 {
			t.Errorf("DailyAverage = %d, want 10000", f.DailyAverage.Cents)
		}
		if f.RemainingDays != 10 {
			t.Errorf("RemainingDays = %d, want 10", f.RemainingDays)
		}
		if f.Predicted.Cents != 70_000_00 {
			t.Errorf("Predicted = %d, want 7000000", f.Predicted.Cents)
		}
		if f.Percent != 70 {
			t.Errorf("Percent = %v, want 70", f.Percent)
		}
		// 70% is below the 75% medium cutoff.
		if f.Risk != RiskLow {
			t.Errorf("Risk = %q, want %q", f.Risk, RiskLow)
		}
	})

	t.Run("medium above 75 percent", func(t *testing.T) {
		window := nExpenses(30, "Food", 10000, now.AddDate(0, 0, -30))

		// Predicted 7000 units against an 8000 budget -> 87.5%.
		f, ok := BuildForecast(budget(80_000_00, 60_000_00), window, now)
		if !ok {
			t.Fatal("BuildForecast() ok = false, want true")
		}
		if f.Risk != RiskMedium {
			t.Errorf("Risk = %q, want %q", f.Risk, RiskMedium)
		}
	})

	t.Run("high over 100 percent names the overage", func(t *testing.T) {
		window := nExpenses(30, "Food", 10000, now.AddDate(0, 0, -30))

		// Predicted 7000 units against a 5000 budget -> 140%, 40% over.
		f, ok := BuildForecast(budget(50_000_00, 60_000_00), window, now)
		if !ok {
			t.Fatal("BuildForecast() ok = false, want true")
		}
		if f.Risk != RiskHigh {
			t.Errorf("Risk = %q, want %q", f.Risk, RiskHigh)
		}
		if !strings.Contains(f.Message, "40%") {
			t.Errorf("Message = %q, want it to contain the rounded overage 40%%", f.Message)
		}
	})

	t.Run("no budget short-circuits", func(t *testing.T) {
		window := nExpenses(10, "Food", 10000, now.AddDate(0, 0, -10))
		if _, ok := BuildForecast(nil, window, now); ok {
			t.Error("BuildForecast() with nil budget: ok = true, want false")
		}
	})

	t.Run("empty window short-circuits", func(t *testing.T) {
		if _, ok := BuildForecast(budget(100_000_00, 0), nil, now); ok {
			t.Error("BuildForecast() with no expenses: ok = true, want false")
		}
	})

	t.Run("income in the window is ignored", func(t *testing.T) {
		income := core.Transaction{
			UserID: "u1", Type: core.Income, Category: "Salary",
			Amount: core.Money{Cents: 500_000_00}, Date: now.AddDate(0, 0, -5),
		}
		if _, ok := BuildForecast(budget(100_000_00, 0), []core.Transaction{income}, now); ok {
			t.Error("BuildForecast() with only income: ok = true, want false")
		}
	})
}
