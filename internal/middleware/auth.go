package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/auth"
	"github.com/campuslink/campuslink-be/internal/http/respond"
	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

type contextKey struct{}

var userContextKey contextKey

// The two lower-level causes of an authentication failure (bad token, token
// for a user that no longer resolves) are deliberately collapsed into one
// external message.
const unauthenticatedMessage = "authentication required"

// UserFromContext returns the authenticated user set by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// RequireAuth verifies the bearer token, resolves it to an existing user, and
// stores the user in the request context. Missing, invalid, or expired
// credentials respond with 401.
func RequireAuth(tokens *auth.TokenManager, users storage.UserStore, logger *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respond.Error(w, http.StatusUnauthorized, unauthenticatedMessage)
			return
		}

		subject, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, unauthenticatedMessage)
			return
		}

		user, err := users.FindByUsername(r.Context(), subject)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				respond.Error(w, http.StatusUnauthorized, unauthenticatedMessage)
			case errors.Is(err, storage.ErrUnavailable):
				respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
			default:
				logger.Error("resolve token subject", zap.Error(err))
				respond.Error(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}
