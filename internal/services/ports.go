// Package services orchestrates the fintrack core: the ledger service keeps
// the per-month budget aggregate consistent with transaction mutations, the
// insight service gates and runs the rule engine, and the alert service
// materializes persisted alerts.
package services

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// TransactionFilter narrows ledger queries. Zero values mean "any".
type TransactionFilter struct {
	Type     core.TransactionType
	Category string
	From, To time.Time // half-open [From, To)
	MoodOnly bool      // only mood-tagged rows
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	Type       core.AlertType
	UnreadOnly bool
}

// BillFilter narrows bill listings.
type BillFilter struct {
	Status   core.BillStatus
	DueFrom  time.Time
	DueUntil time.Time
}

// LedgerStore persists transactions and answers windowed queries over them.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, userID string, f TransactionFilter) (int64, error)
	// SumExpenses totals expense amounts in [from, to) without loading rows.
	SumExpenses(ctx context.Context, userID string, from, to time.Time) (int64, error)
	// CategoryTotals groups expense amounts by category over [from, to).
	CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error)
}

// BudgetStore persists the per-(user, month) aggregate.
type BudgetStore interface {
	// GetBudget returns core.ErrNotFound when no aggregate exists for the
	// month; that is a normal "no budget set" condition, not a failure.
	GetBudget(ctx context.Context, userID string, month core.MonthKey) (core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) error
	// ApplyDelta atomically adds delta cents to the month's spent total,
	// clamping at zero. A missing aggregate is a silent no-op.
	ApplyDelta(ctx context.Context, userID string, month core.MonthKey, deltaCents int64) error
}

// BillStore persists bills.
type BillStore interface {
	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	GetBill(ctx context.Context, id int64) (core.Bill, error)
	ListBills(ctx context.Context, userID string, f BillFilter) ([]core.Bill, error)
	UpdateBillStatus(ctx context.Context, id int64, status core.BillStatus) error
}

// AlertStore persists materialized alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, a core.Alert) error
	DeleteAlertsByType(ctx context.Context, userID string, t core.AlertType) error
	ListAlerts(ctx context.Context, userID string, f AlertFilter) ([]core.Alert, error)
	MarkAlertRead(ctx context.Context, userID, id string) error
	MarkAllAlertsRead(ctx context.Context, userID string) error
	DeleteExpiredAlerts(ctx context.Context, now time.Time) (int64, error)
}

// PreferenceStore reads and writes the insight toggles. A missing row reads
// as core.DefaultPreferences.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (core.Preferences, error)
	SavePreferences(ctx context.Context, p core.Preferences) error
}
