package http

import (
	"net/http"
	"time"

	"github.com/cesaralej/agastar/internal/auth"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := ParseMonthParams(r.URL.Query())
	budgets, err := s.budgets.List(r.Context(), userID, params.Year, time.Month(params.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetJSON, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetJSON(b)
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

// handleUpsertBudget creates or overwrites the budget row for a
// (category, month, year); the composite key means the second write
// wins.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := req.toBudget()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.budgets.Upsert(r.Context(), userID, budget)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(saved))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.budgets.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
