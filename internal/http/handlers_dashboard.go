package http

import (
	"net/http"
	"time"

	"github.com/cesaralej/agastar/internal/auth"
)

// handleDashboard serves the month overview: balance split, resolved
// budgets against spend, daily totals, and bill statuses. Defaults to
// the current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := ParseMonthParams(r.URL.Query())
	overview, err := s.dashboard.Overview(r.Context(), userID, params.Year, time.Month(params.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewJSON(overview))
}
