package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type transactionRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"` // decimal, e.g. "12.34"
	Date     string `json:"date,omitempty"`
	Note     string `json:"note,omitempty"`
	Mood     string `json:"mood,omitempty"`
}

type transactionUpdateRequest struct {
	Type     *string `json:"type,omitempty"`
	Category *string `json:"category,omitempty"`
	Amount   *string `json:"amount,omitempty"`
	Date     *string `json:"date,omitempty"`
	Note     *string `json:"note,omitempty"`
	Mood     *string `json:"mood,omitempty"`
}

type transactionView struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Note        string `json:"note,omitempty"`
	Mood        string `json:"mood,omitempty"`
}

func viewTransaction(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Amount:      tx.Amount.String(),
		AmountCents: tx.Amount.Cents,
		Date:        tx.Date.UTC().Format(time.RFC3339),
		Note:        tx.Note,
		Mood:        string(tx.Mood),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeBadRequest(w, "invalid amount: "+req.Amount)
		return
	}

	date := time.Now()
	if req.Date != "" {
		if date, err = time.Parse(time.RFC3339, req.Date); err != nil {
			writeBadRequest(w, "invalid date, want RFC3339: "+req.Date)
			return
		}
	}

	tx := core.Transaction{
		UserID:   s.userID(r),
		Type:     core.TransactionType(req.Type),
		Category: req.Category,
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Note:     req.Note,
		Mood:     core.Mood(req.Mood),
	}

	created, err := s.ledger.RecordTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.refreshAlerts(r.Context(), created.UserID)
	writeJSON(w, http.StatusCreated, viewTransaction(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, ok := transactionFilterFromQuery(w, r)
	if !ok {
		return
	}

	txs, err := s.ledger.ListTransactions(r.Context(), s.userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]transactionView, len(txs))
	for i, tx := range txs {
		views[i] = viewTransaction(tx)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	var req transactionUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	changes, ok := changesFromRequest(w, req)
	if !ok {
		return
	}

	userID := s.userID(r)
	updated, err := s.ledger.EditTransaction(r.Context(), userID, id, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.refreshAlerts(r.Context(), userID)
	writeJSON(w, http.StatusOK, viewTransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	userID := s.userID(r)
	if err := s.ledger.RemoveTransaction(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.refreshAlerts(r.Context(), userID)
	writeJSON(w, http.StatusNoContent, nil)
}

func transactionFilterFromQuery(w http.ResponseWriter, r *http.Request) (services.TransactionFilter, bool) {
	q := r.URL.Query()
	f := services.TransactionFilter{
		Type:     core.TransactionType(q.Get("type")),
		Category: q.Get("category"),
		MoodOnly: q.Get("mood_only") == "true",
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "invalid from, want RFC3339: "+v)
			return f, false
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "invalid to, want RFC3339: "+v)
			return f, false
		}
		f.To = t
	}
	return f, true
}

func changesFromRequest(w http.ResponseWriter, req transactionUpdateRequest) (services.TransactionChanges, bool) {
	var changes services.TransactionChanges
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		changes.Type = &t
	}
	if req.Category != nil {
		changes.Category = req.Category
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			writeBadRequest(w, "invalid amount: "+*req.Amount)
			return changes, false
		}
		m := core.Money{Cents: cents}
		changes.Amount = &m
	}
	if req.Date != nil {
		t, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			writeBadRequest(w, "invalid date, want RFC3339: "+*req.Date)
			return changes, false
		}
		changes.Date = &t
	}
	if req.Note != nil {
		changes.Note = req.Note
	}
	if req.Mood != nil {
		m := core.Mood(*req.Mood)
		changes.Mood = &m
	}
	return changes, true
}
