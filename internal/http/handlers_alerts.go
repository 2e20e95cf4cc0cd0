package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type alertView struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Severity  string             `json:"severity"`
	Message   string             `json:"message"`
	Metadata  core.AlertMetadata `json:"metadata"`
	IsRead    bool               `json:"is_read"`
	CreatedAt string             `json:"created_at"`
	ExpiresAt string             `json:"expires_at"`
}

func viewAlert(a core.Alert) alertView {
	return alertView{
		ID:        a.ID,
		Type:      string(a.Type),
		Severity:  string(a.Severity),
		Message:   a.Message,
		Metadata:  a.Metadata,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: a.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.AlertFilter{
		Type:       core.AlertType(q.Get("type")),
		UnreadOnly: q.Get("unread") == "true",
	}

	alerts, err := s.alerts.ListAlerts(r.Context(), s.userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]alertView, len(alerts))
	for i, a := range alerts {
		views[i] = viewAlert(a)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAlertCheck runs the live consolidated check. Nothing it returns is
// persisted.
func (s *Server) handleAlertCheck(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.alerts.ConsolidatedAlerts(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []services.LiveAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.MarkRead(r.Context(), s.userID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.MarkAllRead(r.Context(), s.userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRegenerateAlerts(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.RegenerateAll(r.Context(), s.userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "regenerated"})
}
