package team

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/pkg/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.GetAll)
	r.Route("/{teamID}", func(r chi.Router) {
		r.Delete("/", h.Delete)
		r.Get("/members", h.ListMembers)
		r.Post("/members", h.AddMember)
		r.Patch("/members/{userID}", h.UpdateMember)
		r.Delete("/members/{userID}", h.RemoveMember)
		r.Post("/invitations", h.Invite)
	})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrInvalidInput):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrOwnerImmutable), errors.Is(err, ErrInviteMismatch):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMemberNotFound),
		errors.Is(err, ErrInviteNotFound), errors.Is(err, ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrDuplicateInvite):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInviteExpired):
		utils.WriteError(w, http.StatusGone, err.Error())
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// POST /teams
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input CreateTeamInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	t, err := h.svc.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, r, err, "could not create team")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, t)
}

// GET /teams
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teams, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "could not fetch teams")
		return
	}

	utils.WriteJSON(w, http.StatusOK, teams)
}

// DELETE /teams/{teamID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "teamID")); err != nil {
		writeServiceError(w, r, err, "could not delete team")
		return
	}

	utils.WriteJSON(w, http.StatusNoContent, nil)
}

// GET /teams/{teamID}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	members, err := h.svc.ListMembers(r.Context(), userID, chi.URLParam(r, "teamID"))
	if err != nil {
		writeServiceError(w, r, err, "could not fetch members")
		return
	}

	utils.WriteJSON(w, http.StatusOK, members)
}

// POST /teams/{teamID}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in AddMemberInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m, err := h.svc.AddMemberByEmail(r.Context(), userID, chi.URLParam(r, "teamID"), in)
	if err != nil {
		writeServiceError(w, r, err, "could not add member")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, m)
}

// PATCH /teams/{teamID}/members/{userID}
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in UpdateMemberInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m, err := h.svc.UpdateMemberAccess(r.Context(), userID, chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), in)
	if err != nil {
		writeServiceError(w, r, err, "could not update member")
		return
	}

	utils.WriteJSON(w, http.StatusOK, m)
}

// DELETE /teams/{teamID}/members/{userID}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.svc.RemoveMember(r.Context(), userID, chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err, "could not remove member")
		return
	}

	utils.WriteJSON(w, http.StatusNoContent, nil)
}

// POST /teams/{teamID}/invitations
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in InviteInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	inv, link, err := h.svc.Invite(r.Context(), userID, chi.URLParam(r, "teamID"), in)
	if err != nil {
		writeServiceError(w, r, err, "could not create invitation")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"invitation":  inv,
		"invite_link": link,
	})
}

// POST /invitations/accept
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	inv, err := h.svc.AcceptInvite(r.Context(), userID, req.Token)
	if err != nil {
		writeServiceError(w, r, err, "could not accept invitation")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"team_id": inv.TeamID})
}
