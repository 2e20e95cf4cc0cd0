package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MoodHappy    Mood = "happy"
	MoodSad      Mood = "sad"
	MoodStressed Mood = "stressed"
	MoodExcited  Mood = "excited"
	MoodBored    Mood = "bored"
	MoodNeutral  Mood = "neutral"
	MoodNone     Mood = ""
)

type (
	TransactionType string

	Mood string

	// Transaction is a single ledger entry owned by one user.
	// The date keeps time-of-day: mood insights bucket spending by hour.
	Transaction struct {
		ID       int64
		UserID   string
		Type     TransactionType
		Category string
		Amount   Money
		Date     time.Time
		Note     string
		Mood     Mood
	}

	// Budget is the per-(user, month) spending aggregate. Spent is maintained
	// incrementally by the ledger service and resynchronized from a full month
	// scan whenever the limit is set.
	Budget struct {
		UserID string
		Month  MonthKey
		Limit  Money
		Spent  Money
	}

	// Preferences gates the insight read paths. EnableAI is the master switch
	// for all derived insights; the per-feature flags refine it.
	Preferences struct {
		UserID      string
		EnableAI    bool
		Forecast    bool
		Personality bool
		Suggestions bool
		Challenges  bool
		NotifyBills bool
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidMood   = errors.New("invalid mood")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyUser     = errors.New("empty user id")
	ErrEmptyName     = errors.New("empty name")
	ErrZeroDate      = errors.New("date cannot be zero")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// validationErrs is the set of errors rejected before any mutation.
var validationErrs = []error{
	ErrInvalidAmount, ErrInvalidMonth, ErrInvalidType, ErrInvalidMood,
	ErrEmptyCategory, ErrEmptyUser, ErrEmptyName, ErrZeroDate,
}

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m Mood) Valid() bool {
	switch m {
	case MoodNone, MoodHappy, MoodSad, MoodStressed, MoodExcited, MoodBored, MoodNeutral:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if !t.Mood.Valid() {
		return ErrInvalidMood
	}
	if len(t.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	return b.Limit.Validate()
}

// UsagePercent returns spending as a percentage of the monthly limit.
// A zero or missing limit yields 0; callers that need the "no budget"
// default of 100 handle that themselves.
func (b Budget) UsagePercent() float64 {
	if b.Limit.Cents <= 0 {
		return 0
	}
	return float64(b.Spent.Cents) / float64(b.Limit.Cents) * 100
}

// DefaultPreferences enables every insight for a fresh user.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:      userID,
		EnableAI:    true,
		Forecast:    true,
		Personality: true,
		Suggestions: true,
		Challenges:  true,
		NotifyBills: true,
	}
}
