package profile

import (
	"errors"
	"net/http"

	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/pkg/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// GET /me
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}

// PATCH /me
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in UpdateProfileInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.svc.Update(r.Context(), userID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTimezone), errors.Is(err, ErrInvalidTheme):
			utils.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			utils.WriteError(w, http.StatusNotFound, "profile not found")
		default:
			utils.WriteError(w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}
