package api

import (
	"net/http"
	"strconv"
)

// --- Query History ---

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []struct{}{})
		return
	}
	writeJSON(w, s.db.GetQueries(queryInt(r, "limit", 50)))
}

func (s *Server) handleGetHistoryByID(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, 404, "not found")
		return
	}
	record := s.db.GetQueryByID(r.PathValue("id"))
	if record == nil {
		writeError(w, 404, "not found")
		return
	}
	writeJSON(w, record)
}

// handleClearHistory deletes records older than ?older_than_days, or all of
// them when the parameter is absent or zero.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, map[string]interface{}{"status": "cleared", "deleted": 0})
		return
	}
	days := 0
	if v := r.URL.Query().Get("older_than_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, 400, "invalid older_than_days")
			return
		}
		days = n
	}
	count, err := s.db.ClearQueries(days)
	if err != nil {
		writeError(w, 500, "clear failed: "+err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"status": "cleared", "deleted": count})
}
