package core

import (
	"strings"
	"time"
)

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
)

const (
	BillLevelNone    BillAlertLevel = "none"
	BillLevelWarning BillAlertLevel = "warning"
	BillLevelDanger  BillAlertLevel = "danger"
	BillLevelOverdue BillAlertLevel = "overdue"
)

type (
	BillStatus string

	BillAlertLevel string

	// Bill is a tracked obligation with a due date. DaysLeft, IsOverdue and
	// AlertLevel are derived at read time and never persisted.
	Bill struct {
		ID      int64
		UserID  string
		Name    string
		Amount  Money
		DueDate time.Time
		Status  BillStatus
	}
)

func (s BillStatus) Valid() bool {
	return s == BillPending || s == BillPaid
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.DueDate.IsZero() {
		return ErrZeroDate
	}
	if !b.Status.Valid() {
		return ErrInvalidType
	}
	return nil
}

// DaysLeft counts whole calendar days from now until the due date, both
// truncated to midnight. Negative means overdue.
func (b Bill) DaysLeft(now time.Time) int {
	return int(Midnight(b.DueDate).Sub(Midnight(now)) / (24 * time.Hour))
}

func (b Bill) IsOverdue(now time.Time) bool {
	return b.DaysLeft(now) < 0
}

// AlertLevel classifies due-date urgency. Paid bills never alert.
func (b Bill) AlertLevel(now time.Time) BillAlertLevel {
	if b.Status == BillPaid {
		return BillLevelNone
	}
	switch days := b.DaysLeft(now); {
	case days < 0:
		return BillLevelOverdue
	case days <= 2:
		return BillLevelDanger
	case days <= 5:
		return BillLevelWarning
	default:
		return BillLevelNone
	}
}
