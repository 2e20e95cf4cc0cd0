package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

const (
	// trendWindowDays is the length of each trend comparison window.
	trendWindowDays = 7

	// trendHighPercent and trendMediumPercent grade a week-over-week
	// category increase.
	trendHighPercent   = 50
	trendMediumPercent = 20
)

// AlertService materializes persisted alerts. Each generator fully replaces
// its own type partition per run (delete-all-of-type, then recreate), so a
// pass is idempotent at the type level. A reader racing between the two steps
// can see a transient empty partition; that window is accepted.
type AlertService struct {
	alerts  AlertStore
	budgets BudgetStore
	bills   BillStore
	ledger  LedgerStore

	now   func() time.Time
	newID func() string
}

func NewAlertService(alerts AlertStore, budgets BudgetStore, bills BillStore, ledger LedgerStore) *AlertService {
	return &AlertService{
		alerts:  alerts,
		budgets: budgets,
		bills:   bills,
		ledger:  ledger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RegenerateAll runs the three generators concurrently. Each failure is
// independent; the first error wins but does not cancel sibling passes that
// already started their replace step.
func (s *AlertService) RegenerateAll(ctx context.Context, userID string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.GenerateBudgetAlerts(ctx, userID) })
	g.Go(func() error { return s.GenerateBillAlerts(ctx, userID) })
	g.Go(func() error { return s.GenerateTrendAlerts(ctx, userID) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("regenerate alerts: %w", err)
	}
	slog.InfoContext(ctx, "Alerts regenerated", "user_id", userID)
	return nil
}

// GenerateBudgetAlerts replaces the budget partition with at most one alert
// graded from current-month usage.
func (s *AlertService) GenerateBudgetAlerts(ctx context.Context, userID string) error {
	if err := s.alerts.DeleteAlertsByType(ctx, userID, core.AlertBudget); err != nil {
		return fmt.Errorf("clear budget alerts: %w", err)
	}

	now := s.now()
	budget, err := s.budgets.GetBudget(ctx, userID, core.MonthOf(now))
	if errors.Is(err, core.ErrNotFound) {
		return nil // no budget set this month, nothing to grade
	}
	if err != nil {
		return fmt.Errorf("get budget: %w", err)
	}

	usage := budget.UsagePercent()
	severity, message := budgetAlertFor(usage)
	if severity == "" {
		return nil
	}

	return s.persist(ctx, core.Alert{
		UserID:   userID,
		Type:     core.AlertBudget,
		Severity: severity,
		Message:  message,
		Metadata: core.AlertMetadata{UsagePercent: usage},
	})
}

// budgetAlertFor grades usage on the fixed ladder. The empty severity means
// no alert.
func budgetAlertFor(usage float64) (core.Severity, string) {
	rounded := int(math.Round(usage))
	switch {
	case usage >= 100:
		return core.SeverityHigh, fmt.Sprintf("Budget exhausted: %d%% of this month's budget is spent.", rounded)
	case usage >= 90:
		return core.SeverityHigh, fmt.Sprintf("Budget nearly exhausted: %d%% used.", rounded)
	case usage >= 75:
		return core.SeverityMedium, fmt.Sprintf("Budget three quarters gone: %d%% used.", rounded)
	case usage >= 50:
		return core.SeverityLow, fmt.Sprintf("Halfway through the budget: %d%% used.", rounded)
	default:
		return "", ""
	}
}

// GenerateBillAlerts replaces the bill partition with one alert per pending
// bill due within a week or overdue.
func (s *AlertService) GenerateBillAlerts(ctx context.Context, userID string) error {
	if err := s.alerts.DeleteAlertsByType(ctx, userID, core.AlertBill); err != nil {
		return fmt.Errorf("clear bill alerts: %w", err)
	}

	bills, err := s.bills.ListBills(ctx, userID, BillFilter{Status: core.BillPending})
	if err != nil {
		return fmt.Errorf("list pending bills: %w", err)
	}

	now := s.now()
	for _, bill := range bills {
		severity, message := billAlertFor(bill, bill.DaysLeft(now))
		if severity == "" {
			continue
		}
		err := s.persist(ctx, core.Alert{
			UserID:   userID,
			Type:     core.AlertBill,
			Severity: severity,
			Message:  message,
			Metadata: core.AlertMetadata{
				BillID:   bill.ID,
				BillName: bill.Name,
				DueDate:  bill.DueDate,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func billAlertFor(bill core.Bill, daysLeft int) (core.Severity, string) {
	switch {
	case daysLeft < 0:
		return core.SeverityHigh, fmt.Sprintf("%s is overdue.", bill.Name)
	case daysLeft == 0:
		return core.SeverityHigh, fmt.Sprintf("%s is due today.", bill.Name)
	case daysLeft == 1:
		return core.SeverityMedium, fmt.Sprintf("%s is due tomorrow.", bill.Name)
	case daysLeft <= 3:
		return core.SeverityMedium, fmt.Sprintf("%s is due in %d days.", bill.Name, daysLeft)
	case daysLeft <= 7:
		return core.SeverityLow, fmt.Sprintf("%s is due in %d days.", bill.Name, daysLeft)
	default:
		return "", ""
	}
}

// GenerateTrendAlerts replaces the trend partition with one alert per
// category whose spend rose sharply week over week. Categories absent from
// the prior week have no baseline and are skipped.
func (s *AlertService) GenerateTrendAlerts(ctx context.Context, userID string) error {
	if err := s.alerts.DeleteAlertsByType(ctx, userID, core.AlertTrend); err != nil {
		return fmt.Errorf("clear trend alerts: %w", err)
	}

	now := s.now()
	thisWeek, err := s.ledger.CategoryTotals(ctx, userID, now.AddDate(0, 0, -trendWindowDays), now)
	if err != nil {
		return fmt.Errorf("this-week totals: %w", err)
	}
	lastWeek, err := s.ledger.CategoryTotals(ctx, userID, now.AddDate(0, 0, -2*trendWindowDays), now.AddDate(0, 0, -trendWindowDays))
	if err != nil {
		return fmt.Errorf("last-week totals: %w", err)
	}

	// Deterministic order keeps regeneration stable for tests and readers.
	categories := make([]string, 0, len(thisWeek))
	for cat := range thisWeek {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		prior := lastWeek[cat]
		if prior <= 0 {
			continue
		}
		increase := float64(thisWeek[cat]-prior) / float64(prior) * 100

		var severity core.Severity
		switch {
		case increase >= trendHighPercent:
			severity = core.SeverityHigh
		case increase >= trendMediumPercent:
			severity = core.SeverityMedium
		default:
			continue
		}

		err := s.persist(ctx, core.Alert{
			UserID:   userID,
			Type:     core.AlertTrend,
			Severity: severity,
			Message: fmt.Sprintf("%s spending is up %d%% over last week.",
				cat, int(math.Round(increase))),
			Metadata: core.AlertMetadata{Category: cat, IncreasePercent: increase},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PurgeExpired removes alerts past their 30-day horizon.
func (s *AlertService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.alerts.DeleteExpiredAlerts(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired alerts: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired alerts purged", "count", n)
	}
	return n, nil
}

// ListAlerts returns persisted alerts for the user.
func (s *AlertService) ListAlerts(ctx context.Context, userID string, f AlertFilter) ([]core.Alert, error) {
	alerts, err := s.alerts.ListAlerts(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (s *AlertService) MarkRead(ctx context.Context, userID, id string) error {
	return s.alerts.MarkAlertRead(ctx, userID, id)
}

func (s *AlertService) MarkAllRead(ctx context.Context, userID string) error {
	return s.alerts.MarkAllAlertsRead(ctx, userID)
}

// LiveAlert is one entry of the ad-hoc consolidated check. It is computed on
// demand and never persisted; this read path is deliberately separate from
// the materialized partitions above.
type LiveAlert struct {
	Type     core.AlertType     `json:"type"`
	Severity core.Severity      `json:"severity"`
	Message  string             `json:"message"`
	Metadata core.AlertMetadata `json:"metadata"`
}

// ConsolidatedAlerts combines fresh budget, bill and forecast checks into a
// single list sorted by severity.
func (s *AlertService) ConsolidatedAlerts(ctx context.Context, userID string) ([]LiveAlert, error) {
	now := s.now()
	var out []LiveAlert

	budget, err := s.budgets.GetBudget(ctx, userID, core.MonthOf(now))
	hasBudget := err == nil
	switch {
	case hasBudget:
		if severity, message := budgetAlertFor(budget.UsagePercent()); severity != "" {
			out = append(out, LiveAlert{
				Type: core.AlertBudget, Severity: severity, Message: message,
				Metadata: core.AlertMetadata{UsagePercent: budget.UsagePercent()},
			})
		}
	case !errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("get budget: %w", err)
	}

	bills, err := s.bills.ListBills(ctx, userID, BillFilter{Status: core.BillPending})
	if err != nil {
		return nil, fmt.Errorf("list pending bills: %w", err)
	}
	for _, bill := range bills {
		if severity, message := billAlertFor(bill, bill.DaysLeft(now)); severity != "" {
			out = append(out, LiveAlert{
				Type: core.AlertBill, Severity: severity, Message: message,
				Metadata: core.AlertMetadata{BillID: bill.ID, BillName: bill.Name, DueDate: bill.DueDate},
			})
		}
	}

	// Forecast risk folds in as a trend-style warning.
	if hasBudget && budget.Limit.Cents > 0 {
		window, werr := s.ledger.ListTransactions(ctx, userID, TransactionFilter{
			Type: core.Expense,
			From: now.AddDate(0, 0, -30),
			To:   now,
		})
		if werr != nil {
			return nil, fmt.Errorf("load forecast window: %w", werr)
		}
		if f, ok := insights.BuildForecast(&budget, window, now); ok && f.Risk != insights.RiskLow {
			severity := core.SeverityMedium
			if f.Risk == insights.RiskHigh {
				severity = core.SeverityHigh
			}
			out = append(out, LiveAlert{
				Type: core.AlertTrend, Severity: severity, Message: f.Message,
				Metadata: core.AlertMetadata{UsagePercent: f.Percent},
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out, nil
}

func (s *AlertService) persist(ctx context.Context, a core.Alert) error {
	now := s.now()
	a.ID = s.newID()
	a.CreatedAt = now
	a.ExpiresAt = now.Add(core.AlertTTL)
	if err := s.alerts.CreateAlert(ctx, a); err != nil {
		return fmt.Errorf("create %s alert: %w", a.Type, err)
	}
	return nil
}
