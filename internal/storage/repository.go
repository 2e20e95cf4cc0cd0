// Package storage implements the service store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"

	_ "modernc.org/sqlite"
)

// timeFormat is how timestamps are stored. UTC RFC3339 keeps the time of day
// (mood insights bucket by hour) and compares correctly as text.
const timeFormat = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// --- LedgerStore ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, type, category, amount_cents, date, note, mood)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Type, tx.Category, tx.Amount.Cents, encodeTime(tx.Date), tx.Note, tx.Mood)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	tx.ID = id
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, category, amount_cents, date, note, mood
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, category = ?, amount_cents = ?, date = ?, note = ?, mood = ?
		WHERE id = ?`,
		tx.Type, tx.Category, tx.Amount.Cents, encodeTime(tx.Date), tx.Note, tx.Mood, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	return requireRow(res, fmt.Sprintf("transaction %d", tx.ID))
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("transaction %d", id))
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f services.TransactionFilter) ([]core.Transaction, error) {
	query, args := transactionQuery(
		"SELECT id, user_id, type, category, amount_cents, date, note, mood FROM transactions",
		userID, f)
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID string, f services.TransactionFilter) (int64, error) {
	query, args := transactionQuery("SELECT COUNT(*) FROM transactions", userID, f)
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date < ?`,
		userID, core.Expense, encodeTime(from), encodeTime(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date < ?
		GROUP BY category`,
		userID, core.Expense, encodeTime(from), encodeTime(to))
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[category] = cents
	}
	return totals, rows.Err()
}

// transactionQuery builds the shared WHERE clause for list and count.
func transactionQuery(base, userID string, f services.TransactionFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, encodeTime(f.From))
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "date < ?")
		args = append(args, encodeTime(f.To))
	}
	if f.MoodOnly {
		clauses = append(clauses, "mood != ''")
	}
	return base + " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Category, &tx.Amount.Cents, &date, &tx.Note, &tx.Mood)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Date, err = decodeTime(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	return tx, nil
}

// --- BudgetStore ---

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID string, month core.MonthKey) (core.Budget, error) {
	b := core.Budget{UserID: userID, Month: month}
	err := r.db.QueryRowContext(ctx, `
		SELECT limit_cents, spent_cents FROM budgets WHERE user_id = ? AND month = ?`,
		userID, month).Scan(&b.Limit.Cents, &b.Spent.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s %s: %w", userID, month, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, month, limit_cents, spent_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, month) DO UPDATE SET
			limit_cents = excluded.limit_cents,
			spent_cents = excluded.spent_cents`,
		b.UserID, b.Month, b.Limit.Cents, b.Spent.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// ApplyDelta adjusts the month's spent total in a single statement, clamping
// at zero. Atomicity here is what keeps concurrent ledger mutations from
// losing increments. A missing row means no budget is set: no-op.
func (r *SQLiteRepository) ApplyDelta(ctx context.Context, userID string, month core.MonthKey, deltaCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET spent_cents = MAX(0, spent_cents + ?)
		WHERE user_id = ? AND month = ?`,
		deltaCents, userID, month)
	if err != nil {
		return fmt.Errorf("apply budget delta: %w", err)
	}
	return nil
}

// --- BillStore ---

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (user_id, name, amount_cents, due_date, status)
		VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount.Cents, encodeTime(b.DueDate), b.Status)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill insert id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	var b core.Bill
	var due string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, amount_cents, due_date, status FROM bills WHERE id = ?`, id).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &due, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, fmt.Errorf("bill %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %d: %w", id, err)
	}
	if b.DueDate, err = decodeTime(due); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill due date %q: %w", due, err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context, userID string, f services.BillFilter) ([]core.Bill, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if !f.DueFrom.IsZero() {
		clauses = append(clauses, "due_date >= ?")
		args = append(args, encodeTime(f.DueFrom))
	}
	if !f.DueUntil.IsZero() {
		clauses = append(clauses, "due_date < ?")
		args = append(args, encodeTime(f.DueUntil))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount_cents, due_date, status FROM bills
		WHERE `+strings.Join(clauses, " AND ")+` ORDER BY due_date ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		var b core.Bill
		var due string
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &due, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if b.DueDate, err = decodeTime(due); err != nil {
			return nil, fmt.Errorf("parse bill due date %q: %w", due, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateBillStatus(ctx context.Context, id int64, status core.BillStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bills SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update bill %d status: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("bill %d", id))
}

// --- AlertStore ---

func (r *SQLiteRepository) CreateAlert(ctx context.Context, a core.Alert) error {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("marshal alert metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, type, severity, message, metadata, is_read, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Type, a.Severity, a.Message, string(meta), a.IsRead,
		encodeTime(a.CreatedAt), encodeTime(a.ExpiresAt))
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAlertsByType(ctx context.Context, userID string, t core.AlertType) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE user_id = ? AND type = ?`, userID, t)
	if err != nil {
		return fmt.Errorf("delete %s alerts: %w", t, err)
	}
	return nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context, userID string, f services.AlertFilter) ([]core.Alert, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.UnreadOnly {
		clauses = append(clauses, "is_read = 0")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, severity, message, metadata, is_read, created_at, expires_at
		FROM alerts WHERE `+strings.Join(clauses, " AND ")+` ORDER BY created_at DESC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		var a core.Alert
		var meta, createdAt, expiresAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Severity, &a.Message, &meta, &a.IsRead, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &a.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal alert metadata: %w", err)
		}
		if a.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse alert created_at %q: %w", createdAt, err)
		}
		if a.ExpiresAt, err = decodeTime(expiresAt); err != nil {
			return nil, fmt.Errorf("parse alert expires_at %q: %w", expiresAt, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET is_read = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("mark alert %s read: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("alert %s", id))
}

func (r *SQLiteRepository) MarkAllAlertsRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("mark all alerts read: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredAlerts(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE expires_at <= ?`, encodeTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired alerts rows affected: %w", err)
	}
	return n, nil
}

// --- PreferenceStore ---

func (r *SQLiteRepository) GetPreferences(ctx context.Context, userID string) (core.Preferences, error) {
	p := core.Preferences{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT enable_ai, forecast, personality, suggestions, challenges, notify_bills
		FROM preferences WHERE user_id = ?`, userID).
		Scan(&p.EnableAI, &p.Forecast, &p.Personality, &p.Suggestions, &p.Challenges, &p.NotifyBills)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultPreferences(userID), nil
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, p core.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, enable_ai, forecast, personality, suggestions, challenges, notify_bills)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			enable_ai = excluded.enable_ai,
			forecast = excluded.forecast,
			personality = excluded.personality,
			suggestions = excluded.suggestions,
			challenges = excluded.challenges,
			notify_bills = excluded.notify_bills`,
		p.UserID, p.EnableAI, p.Forecast, p.Personality, p.Suggestions, p.Challenges, p.NotifyBills)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// requireRow maps a zero-row mutation to core.ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}
