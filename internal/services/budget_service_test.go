package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestSetBudget_ResyncsSpentFromLedger(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	ctx := context.Background()
	month := core.MonthOf(testDay)

	// Pre-existing expenses for the month, recorded before any budget existed.
	for _, cents := range []int64{2000, 3500} {
		if _, err := ledger.CreateTransaction(ctx, expenseTx("u1", "Food", cents, testDay)); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
	// An income row and another user's expense must not count.
	income := expenseTx("u1", "Salary", 100000, testDay)
	income.Type = core.Income
	if _, err := ledger.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := ledger.CreateTransaction(ctx, expenseTx("u2", "Food", 7777, testDay)); err != nil {
		t.Fatalf("seed other user: %v", err)
	}

	svc := NewBudgetService(budgets, ledger)
	b, err := svc.SetBudget(ctx, "u1", month, core.Money{Cents: 100000})
	if err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if b.Spent.Cents != 5500 {
		t.Errorf("Spent = %d, want 5500", b.Spent.Cents)
	}
	if got := budgets.spent("u1", month); got != 5500 {
		t.Errorf("stored spent = %d, want 5500", got)
	}
}

func TestSetBudget_OverwritesDriftedAggregate(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	ctx := context.Background()
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 99999) // drifted

	if _, err := ledger.CreateTransaction(ctx, expenseTx("u1", "Food", 1200, testDay)); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	svc := NewBudgetService(budgets, ledger)
	if _, err := svc.SetBudget(ctx, "u1", month, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 1200 {
		t.Errorf("spent = %d, want 1200 (full rescan replaces drift)", got)
	}
}

func TestSetBudget_InvalidLimit(t *testing.T) {
	svc := NewBudgetService(newFakeBudgets(), newFakeLedger())
	_, err := svc.SetBudget(context.Background(), "u1", core.MonthOf(testDay), core.Money{Cents: 0})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
}

func TestStatus_MissingBudgetIsNotFound(t *testing.T) {
	svc := NewBudgetService(newFakeBudgets(), newFakeLedger())
	_, err := svc.Status(context.Background(), "u1", core.MonthOf(testDay))
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
