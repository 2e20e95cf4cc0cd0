package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// LedgerService owns transaction mutations and keeps the month's budget
// aggregate in step with them. Every expense add, edit or delete applies a
// signed delta to the matching (user, month) aggregate; income never touches
// it.
//
// Aggregate writes ride behind the ledger write: if the delta fails after the
// ledger mutation succeeded, the mutation stands and the drift is logged.
// The next budget set resynchronizes from a full month scan.
type LedgerService struct {
	ledger  LedgerStore
	budgets BudgetStore
}

func NewLedgerService(ledger LedgerStore, budgets BudgetStore) *LedgerService {
	return &LedgerService{ledger: ledger, budgets: budgets}
}

// TransactionChanges carries the fields an edit wants to touch; nil means
// "leave as is".
type TransactionChanges struct {
	Type     *core.TransactionType
	Category *string
	Amount   *core.Money
	Date     *time.Time
	Note     *string
	Mood     *core.Mood
}

func (c TransactionChanges) apply(tx core.Transaction) core.Transaction {
	if c.Type != nil {
		tx.Type = *c.Type
	}
	if c.Category != nil {
		tx.Category = *c.Category
	}
	if c.Amount != nil {
		tx.Amount = *c.Amount
	}
	if c.Date != nil {
		tx.Date = c.Date.UTC()
	}
	if c.Note != nil {
		tx.Note = *c.Note
	}
	if c.Mood != nil {
		tx.Mood = *c.Mood
	}
	return tx
}

// RecordTransaction validates and stores a new ledger entry, then nudges the
// month's aggregate when the entry is an expense.
func (s *LedgerService) RecordTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	// Dates normalize to UTC on the way in. The month key credited here and
	// the one derived from the stored date on a later edit or delete must
	// name the same month; an offset near a month boundary would otherwise
	// split the delta across two aggregates.
	tx.Date = tx.Date.UTC()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.ledger.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.applyDelta(ctx, created, +created.Amount.Cents)

	slog.InfoContext(ctx, "Transaction recorded",
		"id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"category", created.Category,
		"amount_cents", created.Amount.Cents)
	return created, nil
}

// EditTransaction applies field changes as delete-old-then-add-new against
// the aggregate: the prior (type, month, amount) delta is reversed first,
// then the new one applied after the ledger row is updated.
func (s *LedgerService) EditTransaction(ctx context.Context, userID string, id int64, changes TransactionChanges) (core.Transaction, error) {
	old, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if old.UserID != userID {
		return core.Transaction{}, core.ErrForbidden
	}

	updated := changes.apply(old)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.applyDelta(ctx, old, -old.Amount.Cents)

	if err := s.ledger.UpdateTransaction(ctx, updated); err != nil {
		// The reversal above already landed; the aggregate drifts until the
		// next budget set rescans the month.
		slog.WarnContext(ctx, "Ledger update failed after aggregate reversal, aggregate may drift",
			"id", id, "month", core.MonthOf(old.Date), "error", err)
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.applyDelta(ctx, updated, +updated.Amount.Cents)

	slog.InfoContext(ctx, "Transaction edited",
		"id", id,
		"user_id", userID,
		"old_month", core.MonthOf(old.Date),
		"new_month", core.MonthOf(updated.Date))
	return updated, nil
}

// RemoveTransaction deletes a ledger entry and reverses its aggregate delta.
// The subtraction clamps at zero in the store, so prior drift can never push
// the aggregate negative.
func (s *LedgerService) RemoveTransaction(ctx context.Context, userID string, id int64) error {
	tx, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}
	if tx.UserID != userID {
		return core.ErrForbidden
	}

	if err := s.ledger.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.applyDelta(ctx, tx, -tx.Amount.Cents)

	slog.InfoContext(ctx, "Transaction removed",
		"id", id, "user_id", userID, "amount_cents", tx.Amount.Cents)
	return nil
}

// ListTransactions returns the user's ledger entries matching the filter.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// applyDelta sends a signed aggregate delta for expense rows. Failures are
// logged, never returned: the ledger mutation has already succeeded and is
// not rolled back.
func (s *LedgerService) applyDelta(ctx context.Context, tx core.Transaction, deltaCents int64) {
	if tx.Type != core.Expense {
		return
	}
	month := core.MonthOf(tx.Date)
	if err := s.budgets.ApplyDelta(ctx, tx.UserID, month, deltaCents); err != nil {
		slog.WarnContext(ctx, "Budget aggregate update failed, accepting drift until next budget set",
			"user_id", tx.UserID,
			"month", month,
			"delta_cents", deltaCents,
			"error", err)
	}
}
