package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/siza083/produtive/pkg/utils"
)

type ctxKey string

const ctxKeyUserID ctxKey = "userID"

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// AuthMiddleware validates the bearer access token and stores the user id in
// the request context.
func AuthMiddleware(ts TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				utils.WriteError(w, http.StatusUnauthorized, "invalid Authorization header")
				return
			}

			tokenStr := strings.TrimSpace(authHeader[len(prefix):])
			if tokenStr == "" {
				utils.WriteError(w, http.StatusUnauthorized, "empty bearer token")
				return
			}

			claims, err := ts.ParseAccessToken(r.Context(), tokenStr)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}

			ctx := ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
