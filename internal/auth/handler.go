package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/siza083/produtive/internal/user"
	"github.com/siza083/produtive/pkg/utils"
)

const refreshCookieName = "refresh_token"

type Handler struct {
	userService  user.UserService
	tokenService TokenService
	refreshTTL   time.Duration
	isProd       bool
}

func NewHandler(us user.UserService, ts TokenService, refreshTTL time.Duration, isProd bool) *Handler {
	return &Handler{
		userService:  us,
		tokenService: ts,
		refreshTTL:   refreshTTL,
		isProd:       isProd,
	}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		HttpOnly: true,
		Secure:   h.isProd,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}

	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := h.userService.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			utils.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, user.ErrInvalidInput):
			utils.WriteError(w, http.StatusBadRequest, "a valid email and a password of at least 6 characters are required")
		default:
			slog.Error("register failed", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "could not register")
		}
		return
	}

	access, refresh, accessExp, err := h.tokenService.GenerateTokens(r.Context(), u.ID)
	if err != nil {
		slog.Error("token generation failed", "user_id", u.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "token error")
		return
	}

	h.setRefreshCookie(w, refresh, int(h.refreshTTL.Seconds()))

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":           user.ToUserDTO(u),
		"access_token":   access,
		"access_expires": accessExp,
	})
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	access, refresh, accessExp, err := h.tokenService.GenerateTokens(r.Context(), u.ID)
	if err != nil {
		slog.Error("token generation failed", "user_id", u.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "token error")
		return
	}

	h.setRefreshCookie(w, refresh, int(h.refreshTTL.Seconds()))

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"user":           user.ToUserDTO(u),
		"access_token":   access,
		"access_expires": accessExp,
	})
}

// POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing refresh token"})
		return
	}

	access, newRefresh, accessExp, err := h.tokenService.RefreshTokens(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredRefreshToken):
			utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "refresh_token_expired", "message": "Please login again."})
		case errors.Is(err, ErrInvalidRefreshToken):
			utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_refresh_token", "message": "Please login again."})
		default:
			slog.Error("refresh failed", "error", err)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh_token_error", "message": "Please login again."})
		}
		return
	}

	h.setRefreshCookie(w, newRefresh, int(h.refreshTTL.Seconds()))

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token":   access,
		"access_expires": accessExp,
	})
}

// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.tokenService.RevokeRefreshToken(r.Context(), cookie.Value); err != nil {
			slog.Debug("refresh token not revoked on logout", "error", err)
		}
	}

	h.setRefreshCookie(w, "", -1)

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
