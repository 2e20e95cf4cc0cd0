package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

var testDay = time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

func expenseTx(user, category string, cents int64, date time.Time) core.Transaction {
	return core.Transaction{
		UserID:   user,
		Type:     core.Expense,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}
}

func seedBudget(t *testing.T, budgets *fakeBudgets, user string, month core.MonthKey, limit, spent int64) {
	t.Helper()
	err := budgets.UpsertBudget(context.Background(), core.Budget{
		UserID: user,
		Month:  month,
		Limit:  core.Money{Cents: limit},
		Spent:  core.Money{Cents: spent},
	})
	if err != nil {
		t.Fatalf("seed budget: %v", err)
	}
}

func TestRecordTransaction_ExpenseBumpsAggregate(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 0)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("created transaction has no ID")
	}
	if got := budgets.spent("u1", month); got != 2500 {
		t.Errorf("spent = %d, want 2500", got)
	}
}

func TestRecordTransaction_IncomeLeavesAggregateAlone(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 4000)

	tx := expenseTx("u1", "Salary", 500000, testDay)
	tx.Type = core.Income
	if _, err := svc.RecordTransaction(context.Background(), tx); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 4000 {
		t.Errorf("spent = %d, want 4000 (income must not touch the aggregate)", got)
	}
}

func TestRecordTransaction_ValidationRejectsBeforeWrite(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewLedgerService(ledger, newFakeBudgets())

	_, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "", 2500, testDay))
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("error = %v, want ErrEmptyCategory", err)
	}
	if len(ledger.txs) != 0 {
		t.Error("invalid transaction was persisted")
	}
}

func TestRecordTransaction_DeltaFailureDoesNotFailRequest(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	budgets.deltaErr = errors.New("aggregate store down")
	svc := NewLedgerService(ledger, budgets)

	if _, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay)); err != nil {
		t.Fatalf("RecordTransaction() error = %v, want nil despite delta failure", err)
	}
	if len(ledger.txs) != 1 {
		t.Error("transaction was not persisted")
	}
}

func TestEditTransaction_AmountChangeAppliesNetDelta(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 0)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}

	newAmount := core.Money{Cents: 4000}
	if _, err := svc.EditTransaction(context.Background(), "u1", created.ID, TransactionChanges{Amount: &newAmount}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 4000 {
		t.Errorf("spent = %d, want 4000", got)
	}
}

func TestEditTransaction_TypeFlipExpenseToIncome(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 0)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Refund", 3000, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}

	income := core.Income
	if _, err := svc.EditTransaction(context.Background(), "u1", created.ID, TransactionChanges{Type: &income}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 0 {
		t.Errorf("spent = %d, want 0 after expense became income", got)
	}

	// Flip back: the aggregate picks the amount up again.
	expense := core.Expense
	if _, err := svc.EditTransaction(context.Background(), "u1", created.ID, TransactionChanges{Type: &expense}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 3000 {
		t.Errorf("spent = %d, want 3000 after income became expense", got)
	}
}

func TestEditTransaction_MonthMoveShiftsBothAggregates(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	march := core.MonthOf(testDay)
	aprilDay := testDay.AddDate(0, 1, 0)
	april := core.MonthOf(aprilDay)
	seedBudget(t, budgets, "u1", march, 100000, 0)
	seedBudget(t, budgets, "u1", april, 100000, 0)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Travel", 8000, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}

	if _, err := svc.EditTransaction(context.Background(), "u1", created.ID, TransactionChanges{Date: &aprilDay}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", march); got != 0 {
		t.Errorf("march spent = %d, want 0", got)
	}
	if got := budgets.spent("u1", april); got != 8000 {
		t.Errorf("april spent = %d, want 8000", got)
	}
}

func TestEditTransaction_OtherUserForbidden(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewLedgerService(ledger, newFakeBudgets())

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}

	amount := core.Money{Cents: 1}
	if _, err := svc.EditTransaction(context.Background(), "intruder", created.ID, TransactionChanges{Amount: &amount}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
	if err := svc.RemoveTransaction(context.Background(), "intruder", created.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("RemoveTransaction error = %v, want ErrForbidden", err)
	}
}

func TestRemoveTransaction_ReversesDelta(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 100000, 0)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if err := svc.RemoveTransaction(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 0 {
		t.Errorf("spent = %d, want 0", got)
	}
}

func TestRemoveTransaction_ClampsAtZeroOnDrift(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	month := core.MonthOf(testDay)

	created, err := svc.RecordTransaction(context.Background(), expenseTx("u1", "Food", 2500, testDay))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	// The aggregate appears after the add was lost, already drifted low.
	seedBudget(t, budgets, "u1", month, 100000, 1000)

	if err := svc.RemoveTransaction(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", month); got != 0 {
		t.Errorf("spent = %d, want 0 (subtraction clamps, never negative)", got)
	}
}

// A date with a non-UTC offset near a month boundary must credit and debit
// the same aggregate: the delta month comes from the UTC-normalized date,
// matching what the store round-trips.
func TestLedgerMutations_OffsetDateStaysInOneMonth(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	ctx := context.Background()

	// 2025-09-01T00:30+02:00 is 2025-08-31T22:30Z: August in UTC.
	offsetDate := time.Date(2025, time.September, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	august := core.MonthKey("2025-08")
	september := core.MonthKey("2025-09")
	seedBudget(t, budgets, "u1", august, 100000, 0)
	seedBudget(t, budgets, "u1", september, 100000, 0)

	created, err := svc.RecordTransaction(ctx, expenseTx("u1", "Food", 2500, offsetDate))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if loc := created.Date.Location(); loc != time.UTC {
		t.Errorf("stored date location = %v, want UTC", loc)
	}
	if got := budgets.spent("u1", august); got != 2500 {
		t.Errorf("august spent = %d after add, want 2500", got)
	}
	if got := budgets.spent("u1", september); got != 0 {
		t.Errorf("september spent = %d after add, want 0", got)
	}

	if err := svc.RemoveTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}
	if got := budgets.spent("u1", august); got != 0 {
		t.Errorf("august spent = %d after delete, want 0", got)
	}
	if got := budgets.spent("u1", september); got != 0 {
		t.Errorf("september spent = %d after delete, want 0", got)
	}
}

// The aggregate after any sequence of mutations equals the sum of surviving
// expenses for the month.
func TestLedgerMutations_AggregateMatchesSurvivingExpenses(t *testing.T) {
	ledger := newFakeLedger()
	budgets := newFakeBudgets()
	svc := NewLedgerService(ledger, budgets)
	ctx := context.Background()
	month := core.MonthOf(testDay)
	seedBudget(t, budgets, "u1", month, 500000, 0)

	a, _ := svc.RecordTransaction(ctx, expenseTx("u1", "Food", 2000, testDay))
	b, _ := svc.RecordTransaction(ctx, expenseTx("u1", "Transport", 1500, testDay))
	c, _ := svc.RecordTransaction(ctx, expenseTx("u1", "Shopping", 9000, testDay))

	amount := core.Money{Cents: 500}
	if _, err := svc.EditTransaction(ctx, "u1", b.ID, TransactionChanges{Amount: &amount}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if err := svc.RemoveTransaction(ctx, "u1", c.ID); err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}

	want := a.Amount.Cents + amount.Cents // 2000 + 500
	if got := budgets.spent("u1", month); got != want {
		t.Errorf("spent = %d, want %d", got, want)
	}

	from, to, err := month.Bounds()
	if err != nil {
		t.Fatalf("Bounds() error = %v", err)
	}
	sum, err := ledger.SumExpenses(ctx, "u1", from, to)
	if err != nil {
		t.Fatalf("SumExpenses() error = %v", err)
	}
	if sum != want {
		t.Errorf("ledger sum = %d, want %d", sum, want)
	}
}
