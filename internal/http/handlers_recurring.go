package http

import (
	"net/http"

	"github.com/cesaralej/agastar/internal/auth"
	"github.com/cesaralej/agastar/internal/core"
)

// handleListRecurrings returns every bill with its derived due status
// and recent payment history, plus the recurring total that feeds the
// fixed budget category.
func (s *Server) handleListRecurrings(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, progress, err := s.recurrings.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bills := make([]billJSON, len(views))
	for i, v := range views {
		bills[i] = toBillJSON(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bills":   bills,
		"summary": toBillProgressJSON(progress),
	})
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := req.toRecurring()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.recurrings.Create(r.Context(), userID, rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringJSON(saved))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := s.recurrings.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringJSON(rec))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req recurringPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.recurrings.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringJSON(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.recurrings.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePayRecurring records a payment for a bill by creating a linked
// expense. The body may carry a payment date; it defaults to today.
func (s *Server) handlePayRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req payRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.recurrings.Pay(r.Context(), userID, r.PathValue("id"), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}
