package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated account's storage ID, set by
// the authenticate middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// authenticate requires a valid "Authorization: Bearer <jwt>" header and
// stores the token's account ID in the request context.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, common.ErrUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, a.jwtSecret)
		if err != nil {
			respondError(w, common.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin runs after authenticate and rejects tokens whose holder is
// not a moderation account.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			respondError(w, common.ErrUnauthorized)
			return
		}

		if _, err := a.admins.GetByID(r.Context(), userID); err != nil {
			respondError(w, common.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
