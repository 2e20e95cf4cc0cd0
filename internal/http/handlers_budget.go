package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Month string `json:"month"` // "YYYY-MM"
	Limit string `json:"limit"` // decimal, e.g. "850.00"
}

type budgetView struct {
	Month        string  `json:"month"`
	Limit        string  `json:"limit"`
	LimitCents   int64   `json:"limit_cents"`
	Spent        string  `json:"spent"`
	SpentCents   int64   `json:"spent_cents"`
	UsagePercent float64 `json:"usage_percent"`
}

func viewBudget(b core.Budget) budgetView {
	return budgetView{
		Month:        string(b.Month),
		Limit:        b.Limit.String(),
		LimitCents:   b.Limit.Cents,
		Spent:        b.Spent.String(),
		SpentCents:   b.Spent.Cents,
		UsagePercent: b.UsagePercent(),
	}
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	month := core.MonthKey(req.Month)
	if req.Month == "" {
		month = core.MonthOf(time.Now())
	}
	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeBadRequest(w, "invalid limit: "+req.Limit)
		return
	}

	budget, err := s.budgets.SetBudget(r.Context(), s.userID(r), month, core.Money{Cents: cents})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBudget(budget))
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month := core.MonthKey(r.URL.Query().Get("month"))
	if month == "" {
		month = core.MonthOf(time.Now())
	}

	budget, err := s.budgets.Status(r.Context(), s.userID(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBudget(budget))
}
