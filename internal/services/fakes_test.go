package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

// In-memory store fakes. Error fields let tests inject failures on specific
// operations.

type fakeLedger struct {
	mu     sync.Mutex
	nextID int64
	txs    map[int64]core.Transaction

	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{txs: make(map[int64]core.Transaction)}
}

func (f *fakeLedger) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tx.ID = f.nextID
	f.txs[tx.ID] = tx
	return tx, nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return tx, nil
}

func (f *fakeLedger) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[tx.ID]; !ok {
		return core.ErrNotFound
	}
	f.txs[tx.ID] = tx
	return nil
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, userID string, filter TransactionFilter) ([]core.Transaction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for _, tx := range f.txs {
		if matchesTransaction(tx, userID, filter) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLedger) CountTransactions(ctx context.Context, userID string, filter TransactionFilter) (int64, error) {
	txs, err := f.ListTransactions(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(txs)), nil
}

func (f *fakeLedger) SumExpenses(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	txs, err := f.ListTransactions(ctx, userID, TransactionFilter{Type: core.Expense, From: from, To: to})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, tx := range txs {
		total += tx.Amount.Cents
	}
	return total, nil
}

func (f *fakeLedger) CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error) {
	txs, err := f.ListTransactions(ctx, userID, TransactionFilter{Type: core.Expense, From: from, To: to})
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64)
	for _, tx := range txs {
		totals[tx.Category] += tx.Amount.Cents
	}
	return totals, nil
}

func matchesTransaction(tx core.Transaction, userID string, f TransactionFilter) bool {
	if tx.UserID != userID {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(f.To) {
		return false
	}
	if f.MoodOnly && tx.Mood == core.MoodNone {
		return false
	}
	return true
}

type fakeBudgets struct {
	mu      sync.Mutex
	budgets map[string]core.Budget

	getErr   error
	deltaErr error
}

func newFakeBudgets() *fakeBudgets {
	return &fakeBudgets{budgets: make(map[string]core.Budget)}
}

func budgetKey(userID string, month core.MonthKey) string {
	return userID + "|" + string(month)
}

func (f *fakeBudgets) GetBudget(_ context.Context, userID string, month core.MonthKey) (core.Budget, error) {
	if f.getErr != nil {
		return core.Budget{}, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[budgetKey(userID, month)]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s %s: %w", userID, month, core.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBudgets) UpsertBudget(_ context.Context, b core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets[budgetKey(b.UserID, b.Month)] = b
	return nil
}

func (f *fakeBudgets) ApplyDelta(_ context.Context, userID string, month core.MonthKey, deltaCents int64) error {
	if f.deltaErr != nil {
		return f.deltaErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := budgetKey(userID, month)
	b, ok := f.budgets[key]
	if !ok {
		return nil // no aggregate for the month, silent no-op
	}
	b.Spent.Cents += deltaCents
	if b.Spent.Cents < 0 {
		b.Spent.Cents = 0
	}
	f.budgets[key] = b
	return nil
}

// spent reads the aggregate directly, bypassing the not-found error.
func (f *fakeBudgets) spent(userID string, month core.MonthKey) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budgets[budgetKey(userID, month)].Spent.Cents
}

type fakeBills struct {
	mu     sync.Mutex
	nextID int64
	bills  map[int64]core.Bill

	listErr error
}

func newFakeBills() *fakeBills {
	return &fakeBills{bills: make(map[int64]core.Bill)}
}

func (f *fakeBills) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	f.bills[b.ID] = b
	return b, nil
}

func (f *fakeBills) GetBill(_ context.Context, id int64) (core.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok {
		return core.Bill{}, fmt.Errorf("bill %d: %w", id, core.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBills) ListBills(_ context.Context, userID string, filter BillFilter) ([]core.Bill, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Bill
	for _, b := range f.bills {
		if b.UserID != userID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if !filter.DueFrom.IsZero() && b.DueDate.Before(filter.DueFrom) {
			continue
		}
		if !filter.DueUntil.IsZero() && !b.DueDate.Before(filter.DueUntil) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBills) UpdateBillStatus(_ context.Context, id int64, status core.BillStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok {
		return core.ErrNotFound
	}
	b.Status = status
	f.bills[id] = b
	return nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []core.Alert

	createErr error
	deleteErr error
}

func newFakeAlerts() *fakeAlerts {
	return &fakeAlerts{}
}

func (f *fakeAlerts) CreateAlert(_ context.Context, a core.Alert) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeAlerts) DeleteAlertsByType(_ context.Context, userID string, t core.AlertType) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.alerts[:0]
	for _, a := range f.alerts {
		if a.UserID == userID && a.Type == t {
			continue
		}
		kept = append(kept, a)
	}
	f.alerts = kept
	return nil
}

func (f *fakeAlerts) ListAlerts(_ context.Context, userID string, filter AlertFilter) ([]core.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Alert
	for _, a := range f.alerts {
		if a.UserID != userID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && a.IsRead {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAlerts) MarkAlertRead(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alerts {
		if a.UserID == userID && a.ID == id {
			f.alerts[i].IsRead = true
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeAlerts) MarkAllAlertsRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alerts {
		if a.UserID == userID {
			f.alerts[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeAlerts) DeleteExpiredAlerts(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.alerts[:0]
	var removed int64
	for _, a := range f.alerts {
		if !a.ExpiresAt.After(now) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.alerts = kept
	return removed, nil
}

func (f *fakeAlerts) byType(userID string, t core.AlertType) []core.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Alert
	for _, a := range f.alerts {
		if a.UserID == userID && a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

type fakePrefs struct {
	mu    sync.Mutex
	prefs map[string]core.Preferences

	getErr error
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{prefs: make(map[string]core.Preferences)}
}

func (f *fakePrefs) GetPreferences(_ context.Context, userID string) (core.Preferences, error) {
	if f.getErr != nil {
		return core.Preferences{}, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return core.DefaultPreferences(userID), nil
}

func (f *fakePrefs) SavePreferences(_ context.Context, p core.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[p.UserID] = p
	return nil
}
