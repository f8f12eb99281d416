package task

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/internal/team"
	"github.com/siza083/produtive/pkg/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, team.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "task not found")
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// GET /tasks?team_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tasks, err := h.svc.List(r.Context(), userID, r.URL.Query().Get("team_id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list tasks")
		return
	}

	utils.WriteJSON(w, http.StatusOK, tasks)
}

// POST /tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in CreateTaskInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	t, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create task")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, t)
}

// GET /tasks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	t, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get task")
		return
	}

	utils.WriteJSON(w, http.StatusOK, t)
}

// PATCH /tasks/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in UpdateTaskInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	t, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err, "failed to update task")
		return
	}

	utils.WriteJSON(w, http.StatusOK, t)
}

// DELETE /tasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "failed to delete task")
		return
	}

	utils.WriteJSON(w, http.StatusNoContent, nil)
}
