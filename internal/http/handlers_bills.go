package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type billRequest struct {
	Name    string `json:"name"`
	Amount  string `json:"amount"`   // decimal, e.g. "45.90"
	DueDate string `json:"due_date"` // RFC3339
}

type billView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	DaysLeft    int    `json:"days_left"`
	IsOverdue   bool   `json:"is_overdue"`
	AlertLevel  string `json:"alert_level"`
}

func viewBill(v services.BillView) billView {
	return billView{
		ID:          v.ID,
		Name:        v.Name,
		Amount:      v.Amount.String(),
		AmountCents: v.Amount.Cents,
		DueDate:     v.DueDate.UTC().Format(time.RFC3339),
		Status:      string(v.Status),
		DaysLeft:    v.DaysLeft,
		IsOverdue:   v.IsOverdue,
		AlertLevel:  string(v.AlertLevel),
	}
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeBadRequest(w, "invalid amount: "+req.Amount)
		return
	}
	due, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		writeBadRequest(w, "invalid due_date, want RFC3339: "+req.DueDate)
		return
	}

	bill := core.Bill{
		UserID:  s.userID(r),
		Name:    req.Name,
		Amount:  core.Money{Cents: cents},
		DueDate: due,
	}
	created, err := s.bills.AddBill(r.Context(), bill)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusCreated, viewBill(services.BillView{
		Bill:       created,
		DaysLeft:   created.DaysLeft(now),
		IsOverdue:  created.IsOverdue(now),
		AlertLevel: created.AlertLevel(now),
	}))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	f := services.BillFilter{Status: core.BillStatus(r.URL.Query().Get("status"))}

	views, err := s.bills.ListBills(r.Context(), s.userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]billView, len(views))
	for i, v := range views {
		out[i] = viewBill(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid bill id")
		return
	}

	userID := s.userID(r)
	if err := s.bills.MarkPaid(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.refreshAlerts(r.Context(), userID)
	writeJSON(w, http.StatusNoContent, nil)
}
