package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		UserID:   "u1",
		Type:     Expense,
		Category: "Food",
		Amount:   Money{Cents: 1250},
		Date:     time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"empty user", func(tx *Transaction) { tx.UserID = " " }, ErrEmptyUser},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"bad mood", func(tx *Transaction) { tx.Mood = "furious" }, ErrInvalidMood},
		{"mood optional", func(tx *Transaction) { tx.Mood = MoodNone }, nil},
		{"tagged mood", func(tx *Transaction) { tx.Mood = MoodStressed }, nil},
		{"income ok", func(tx *Transaction) { tx.Type = Income }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrInvalidAmount) {
		t.Error("IsValidation(ErrInvalidAmount) = false, want true")
	}
	if IsValidation(ErrNotFound) {
		t.Error("IsValidation(ErrNotFound) = true, want false")
	}
	if IsValidation(errors.New("boom")) {
		t.Error("IsValidation(random error) = true, want false")
	}
}

func TestBudget_UsagePercent(t *testing.T) {
	tests := []struct {
		name   string
		budget Budget
		want   float64
	}{
		{"normal usage", Budget{Limit: Money{Cents: 1000000}, Spent: Money{Cents: 600000}}, 60},
		{"over budget", Budget{Limit: Money{Cents: 100000}, Spent: Money{Cents: 150000}}, 150},
		{"zero limit", Budget{Spent: Money{Cents: 500}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.UsagePercent(); got != tt.want {
				t.Errorf("UsagePercent() = %v, want %v", got, tt.want)
			}
		})
	}
}
