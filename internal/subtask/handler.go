package subtask

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/internal/task"
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
	r.Get("/", h.ListByTask)
	r.Post("/", h.Create)
	r.Get("/week", h.ListCurrentWeek)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDueDate),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidAssignee):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, team.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, task.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// GET /subtasks?task_id=
func (h *Handler) ListByTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing task_id")
		return
	}

	subtasks, err := h.svc.ListByTask(r.Context(), userID, taskID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list subtasks")
		return
	}

	utils.WriteJSON(w, http.StatusOK, subtasks)
}

// GET /subtasks/week
func (h *Handler) ListCurrentWeek(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	subtasks, err := h.svc.ListCurrentWeek(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list this week's subtasks")
		return
	}

	utils.WriteJSON(w, http.StatusOK, subtasks)
}

// POST /subtasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in CreateSubtaskInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sub, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create subtask")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, sub)
}

// GET /subtasks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sub, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get subtask")
		return
	}

	utils.WriteJSON(w, http.StatusOK, sub)
}

// PATCH /subtasks/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in UpdateSubtaskInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sub, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err, "failed to update subtask")
		return
	}

	utils.WriteJSON(w, http.StatusOK, sub)
}

// POST /subtasks/{id}/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sub, err := h.svc.ToggleStatus(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to toggle subtask")
		return
	}

	utils.WriteJSON(w, http.StatusOK, sub)
}

// DELETE /subtasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "failed to delete subtask")
		return
	}

	utils.WriteJSON(w, http.StatusNoContent, nil)
}
