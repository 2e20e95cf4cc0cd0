package insights

import (
	"time"

	"fintrack/internal/core"
)

func expense(category string, cents int64, date time.Time) core.Transaction {
	return core.Transaction{
		UserID:   "u1",
		Type:     core.Expense,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}
}

func moodExpense(category string, cents int64, mood core.Mood, date time.Time) core.Transaction {
	tx := expense(category, cents, date)
	tx.Mood = mood
	return tx
}

// nExpenses returns n identical expenses spread one day apart.
func nExpenses(n int, category string, cents int64, from time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, expense(category, cents, from.AddDate(0, 0, i)))
	}
	return out
}
