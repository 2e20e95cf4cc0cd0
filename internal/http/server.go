// Package http exposes the JSON API: ledger mutations, budget and bill
// management, derived insights, and alerts.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

type LedgerAPI interface {
	RecordTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	EditTransaction(ctx context.Context, userID string, id int64, changes services.TransactionChanges) (core.Transaction, error)
	RemoveTransaction(ctx context.Context, userID string, id int64) error
	ListTransactions(ctx context.Context, userID string, f services.TransactionFilter) ([]core.Transaction, error)
}

type BudgetAPI interface {
	SetBudget(ctx context.Context, userID string, month core.MonthKey, limit core.Money) (core.Budget, error)
	Status(ctx context.Context, userID string, month core.MonthKey) (core.Budget, error)
}

type BillAPI interface {
	AddBill(ctx context.Context, b core.Bill) (core.Bill, error)
	ListBills(ctx context.Context, userID string, f services.BillFilter) ([]services.BillView, error)
	MarkPaid(ctx context.Context, userID string, id int64) error
}

type InsightAPI interface {
	GetForecast(ctx context.Context, userID string) (services.ForecastResult, error)
	GetPersonality(ctx context.Context, userID string) (services.PersonalityResult, error)
	GetSuggestions(ctx context.Context, userID string) (services.SuggestionsResult, error)
	GetMoodInsights(ctx context.Context, userID string) (services.MoodResult, error)
	GetChallenges(ctx context.Context, userID string) (services.ChallengesResult, error)
}

type AlertAPI interface {
	ListAlerts(ctx context.Context, userID string, f services.AlertFilter) ([]core.Alert, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	ConsolidatedAlerts(ctx context.Context, userID string) ([]services.LiveAlert, error)
	RegenerateAll(ctx context.Context, userID string) error
}

// AlertPublisher enqueues an asynchronous alert rebuild. Nil means no queue
// is configured and regeneration runs in-process.
type AlertPublisher interface {
	PublishAlertRegenerate(ctx context.Context, userID string) error
}

type Server struct {
	http.Server

	ledger    LedgerAPI
	budgets   BudgetAPI
	bills     BillAPI
	insights  InsightAPI
	alerts    AlertAPI
	prefs     services.PreferenceStore
	publisher AlertPublisher

	defaultUser string
	tracer      *trace.Middleware
	limiter     *ratelimit.Limiter
}

type Deps struct {
	Ledger    LedgerAPI
	Budgets   BudgetAPI
	Bills     BillAPI
	Insights  InsightAPI
	Alerts    AlertAPI
	Prefs     services.PreferenceStore
	Publisher AlertPublisher

	DefaultUser string
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		ledger:      deps.Ledger,
		budgets:     deps.Budgets,
		bills:       deps.Bills,
		insights:    deps.Insights,
		alerts:      deps.Alerts,
		prefs:       deps.Prefs,
		publisher:   deps.Publisher,
		defaultUser: deps.DefaultUser,
		tracer:      trace.NewMiddleware(),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/budget", s.handleBudgetStatus)

	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills/{id}/pay", s.handlePayBill)

	mux.HandleFunc("GET /api/insights/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/insights/personality", s.handlePersonality)
	mux.HandleFunc("GET /api/insights/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/insights/moods", s.handleMoodInsights)
	mux.HandleFunc("GET /api/insights/challenges", s.handleChallenges)

	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /api/alerts/check", s.handleAlertCheck)
	mux.HandleFunc("POST /api/alerts/{id}/read", s.handleMarkAlertRead)
	mux.HandleFunc("POST /api/alerts/read-all", s.handleMarkAllAlertsRead)
	mux.HandleFunc("POST /api/alerts/regenerate", s.handleRegenerateAlerts)

	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handleSavePreferences)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.userID)(mux)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(headers.Middleware(limited)),
	}
	return s
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// userID resolves the acting user from the X-User-ID header.
func (s *Server) userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return s.defaultUser
}

// refreshAlerts requests an asynchronous alert rebuild after a mutation.
// With a queue configured the worker picks it up; otherwise regeneration
// runs in a goroutine. Failures are logged, the mutation already succeeded.
func (s *Server) refreshAlerts(ctx context.Context, userID string) {
	if s.publisher != nil {
		if err := s.publisher.PublishAlertRegenerate(ctx, userID); err != nil {
			slog.WarnContext(ctx, "Alert regenerate publish failed",
				"user_id", userID, "error", err)
		}
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.alerts.RegenerateAll(ctx, userID); err != nil {
			slog.WarnContext(ctx, "In-process alert regeneration failed",
				"user_id", userID, "error", err)
		}
	}()
}

var _ LedgerAPI = (*services.LedgerService)(nil)
var _ BudgetAPI = (*services.BudgetService)(nil)
var _ BillAPI = (*services.BillService)(nil)
var _ InsightAPI = (*services.InsightService)(nil)
var _ AlertAPI = (*services.AlertService)(nil)
