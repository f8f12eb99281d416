package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/pkg/utils"
)

type Handler struct {
	svc      Service
	interval time.Duration
}

func NewHandler(svc Service, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Handler{svc: svc, interval: interval}
}

// Routes mounts the JSON snapshot. Stream is mounted separately so it can
// stay outside the request timeout.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
}

// GET /dashboard
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	res, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build dashboard", "error", err)
		utils.WriteError(w, http.StatusBadGateway, "failed to load dashboard data")
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

// GET /dashboard/stream
//
// Server-sent events: a "dashboard" event per refresh, or an "error" event
// when a refresh could not be fetched.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rc := http.NewResponseController(w)
	// the server-wide write timeout would cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.DebugContext(r.Context(), "write deadline not cleared", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.svc.Watch(r.Context(), userID, h.interval, func(res *Result, err error) {
		event, payload := "dashboard", any(res)
		if err != nil {
			event, payload = "error", map[string]string{"error": "failed to load dashboard data"}
		}

		data, mErr := json.Marshal(payload)
		if mErr != nil {
			slog.ErrorContext(r.Context(), "encode dashboard event", "error", mErr)
			return
		}

		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		if fErr := rc.Flush(); fErr != nil {
			slog.DebugContext(r.Context(), "flush dashboard event", "error", fErr)
		}
	})

	slog.DebugContext(r.Context(), "dashboard stream closed", "user_id", userID, "reason", err)
}
