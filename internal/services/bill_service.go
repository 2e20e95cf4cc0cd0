package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// BillView is a bill plus its derived due-date fields, computed at read time.
type BillView struct {
	core.Bill
	DaysLeft   int                 `json:"days_left"`
	IsOverdue  bool                `json:"is_overdue"`
	AlertLevel core.BillAlertLevel `json:"alert_level"`
}

// BillService tracks bills and their due-date risk.
type BillService struct {
	bills BillStore
	now   func() time.Time
}

func NewBillService(bills BillStore) *BillService {
	return &BillService{bills: bills, now: time.Now}
}

func (s *BillService) AddBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.Status == "" {
		b.Status = core.BillPending
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	created, err := s.bills.CreateBill(ctx, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	slog.InfoContext(ctx, "Bill added",
		"id", created.ID, "user_id", created.UserID, "name", created.Name, "due", created.DueDate)
	return created, nil
}

// ListBills returns the user's bills decorated with derived fields.
func (s *BillService) ListBills(ctx context.Context, userID string, f BillFilter) ([]BillView, error) {
	bills, err := s.bills.ListBills(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	now := s.now()
	views := make([]BillView, len(bills))
	for i, b := range bills {
		views[i] = BillView{
			Bill:       b,
			DaysLeft:   b.DaysLeft(now),
			IsOverdue:  b.IsOverdue(now),
			AlertLevel: b.AlertLevel(now),
		}
	}
	return views, nil
}

// MarkPaid flips a bill to paid after an ownership check.
func (s *BillService) MarkPaid(ctx context.Context, userID string, id int64) error {
	bill, err := s.bills.GetBill(ctx, id)
	if err != nil {
		return fmt.Errorf("get bill %d: %w", id, err)
	}
	if bill.UserID != userID {
		return core.ErrForbidden
	}
	if err := s.bills.UpdateBillStatus(ctx, id, core.BillPaid); err != nil {
		return fmt.Errorf("mark bill %d paid: %w", id, err)
	}
	slog.InfoContext(ctx, "Bill marked paid", "id", id, "user_id", userID)
	return nil
}
