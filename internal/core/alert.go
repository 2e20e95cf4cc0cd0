package core

import "time"

const (
	AlertBudget AlertType = "budget"
	AlertBill   AlertType = "bill"
	AlertTrend  AlertType = "trend"
	AlertGoal   AlertType = "goal"
)

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// AlertTTL is how long a materialized alert lives before the expiry sweep
// removes it.
const AlertTTL = 30 * 24 * time.Hour

type (
	AlertType string

	Severity string

	// AlertMetadata carries the structured context behind an alert message.
	// Only the fields relevant to the alert's type are set.
	AlertMetadata struct {
		UsagePercent    float64   `json:"usage_percent,omitempty"`
		BillID          int64     `json:"bill_id,omitempty"`
		BillName        string    `json:"bill_name,omitempty"`
		DueDate         time.Time `json:"due_date"`
		IncreasePercent float64   `json:"increase_percent,omitempty"`
		Category        string    `json:"category,omitempty"`
	}

	// Alert is a persisted, expiring notification. Alerts of one type are
	// replaced wholesale on each regeneration pass, never merged.
	Alert struct {
		ID        string
		UserID    string
		Type      AlertType
		Severity  Severity
		Message   string
		Metadata  AlertMetadata
		IsRead    bool
		CreatedAt time.Time
		ExpiresAt time.Time
	}
)

// Rank orders severities for display: high sorts before medium before low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

func (t AlertType) Valid() bool {
	switch t {
	case AlertBudget, AlertBill, AlertTrend, AlertGoal:
		return true
	}
	return false
}
