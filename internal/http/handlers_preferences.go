package http

import (
	"net/http"

	"fintrack/internal/core"
)

type preferencesView struct {
	EnableAI    bool `json:"enable_ai"`
	Forecast    bool `json:"forecast"`
	Personality bool `json:"personality"`
	Suggestions bool `json:"suggestions"`
	Challenges  bool `json:"challenges"`
	NotifyBills bool `json:"notify_bills"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.prefs.GetPreferences(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesView{
		EnableAI:    prefs.EnableAI,
		Forecast:    prefs.Forecast,
		Personality: prefs.Personality,
		Suggestions: prefs.Suggestions,
		Challenges:  prefs.Challenges,
		NotifyBills: prefs.NotifyBills,
	})
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesView
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	prefs := core.Preferences{
		UserID:      s.userID(r),
		EnableAI:    req.EnableAI,
		Forecast:    req.Forecast,
		Personality: req.Personality,
		Suggestions: req.Suggestions,
		Challenges:  req.Challenges,
		NotifyBills: req.NotifyBills,
	}
	if err := s.prefs.SavePreferences(r.Context(), prefs); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
