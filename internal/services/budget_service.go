package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// BudgetService sets monthly limits and reads budget status. Setting a
// budget is the authoritative resynchronization point: rather than trust the
// accumulated deltas, it recomputes the spent total from a full scan of the
// month's expenses.
type BudgetService struct {
	budgets BudgetStore
	ledger  LedgerStore
}

func NewBudgetService(budgets BudgetStore, ledger LedgerStore) *BudgetService {
	return &BudgetService{budgets: budgets, ledger: ledger}
}

// SetBudget creates or updates the month's aggregate with a fresh spent
// total summed from the ledger.
func (s *BudgetService) SetBudget(ctx context.Context, userID string, month core.MonthKey, limit core.Money) (core.Budget, error) {
	b := core.Budget{UserID: userID, Month: month, Limit: limit}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	from, to, err := month.Bounds()
	if err != nil {
		return core.Budget{}, err
	}
	spent, err := s.ledger.SumExpenses(ctx, userID, from, to)
	if err != nil {
		return core.Budget{}, fmt.Errorf("sum month expenses: %w", err)
	}
	b.Spent = core.Money{Cents: spent}

	if err := s.budgets.UpsertBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set and resynchronized",
		"user_id", userID,
		"month", month,
		"limit_cents", limit.Cents,
		"spent_cents", spent)
	return b, nil
}

// Status returns the month's aggregate; core.ErrNotFound when no budget is
// set.
func (s *BudgetService) Status(ctx context.Context, userID string, month core.MonthKey) (core.Budget, error) {
	if err := month.Validate(); err != nil {
		return core.Budget{}, err
	}
	return s.budgets.GetBudget(ctx, userID, month)
}
