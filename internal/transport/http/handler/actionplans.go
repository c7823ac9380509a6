package handler

import (
	"encoding/json"
	"net/http"

	"github.com/carehome-actionplans/internal/application/actionplan"
	"github.com/carehome-actionplans/internal/domain"
	"github.com/carehome-actionplans/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// ActionPlanHandler serves the My Action Plans board and its write operations.
type ActionPlanHandler struct {
	svc actionplan.Service
}

func NewActionPlanHandler(svc actionplan.Service) *ActionPlanHandler {
	return &ActionPlanHandler{svc: svc}
}

// actor builds the acting staff member from the verified token.
func actor(r *http.Request) (actionplan.Actor, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return actionplan.Actor{}, false
	}
	return actionplan.Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role, ScopeID: claims.ScopeID}, true
}

// category resolves the {category} path parameter.
func category(r *http.Request) (domain.Category, error) {
	return domain.ParseCategory(chi.URLParam(r, "category"))
}

func (h *ActionPlanHandler) Board(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	board, err := h.svc.Board(r.Context(), a)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *ActionPlanHandler) Unseen(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	counts, err := h.svc.UnseenCounts(r.Context(), a.ID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// BoardOpened accepts the acknowledgement and returns before it runs.
func (h *ActionPlanHandler) BoardOpened(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.svc.BoardOpened(r.Context(), a)
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "acknowledgement scheduled"})
}

func (h *ActionPlanHandler) Raise(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := category(r)
	if err != nil {
		httpError(w, err)
		return
	}
	var req domain.RaiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.Raise(r.Context(), c, req, a)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ActionPlanEnvelope{ActionPlan: created})
}

func (h *ActionPlanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := category(r)
	if err != nil {
		httpError(w, err)
		return
	}
	var req domain.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.UpdateStatus(r.Context(), c, chi.URLParam(r, "id"), req, a)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionPlanEnvelope{ActionPlan: updated})
}

// Delete is a hard delete; only completed plans are accepted, and only from
// their assignee or creator.
func (h *ActionPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := category(r)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), c, chi.URLParam(r, "id"), a); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "action plan deleted"})
}

func (h *ActionPlanHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := category(r)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.MarkViewed(r.Context(), c, a); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "marked as viewed"})
}
