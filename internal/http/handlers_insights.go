package http

import "net/http"

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.GetForecast(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePersonality(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.GetPersonality(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.GetSuggestions(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMoodInsights(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.GetMoodInsights(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.GetChallenges(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
