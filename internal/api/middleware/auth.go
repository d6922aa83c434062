package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionTokenHeader carries the opaque session id issued by POST /sessions.
const SessionTokenHeader = "X-Session-Token"

type sessionContextKey struct{}

// SessionValidator checks a session token and returns the session it
// belongs to.
type SessionValidator interface {
	ValidateSession(ctx context.Context, id string) (*entity.AccessSession, error)
}

// RequireSession rejects requests that do not carry a valid session token
// and attaches the session to the request context.
func RequireSession(sessions SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := r.Header.Get(SessionTokenHeader)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "session token is required")
				return
			}

			session, err := sessions.ValidateSession(ctx, token)
			if err != nil {
				ctxzap.Warn(ctx, "session validation failed", zap.Error(err))
				switch {
				case errors.Is(err, entity.ErrSessionNotFound):
					response.Error(w, http.StatusUnauthorized, "unknown session token")
				case errors.Is(err, entity.ErrSessionExpired), errors.Is(err, entity.ErrSessionInactive):
					response.Error(w, http.StatusUnauthorized, "session is no longer valid")
				default:
					response.Error(w, http.StatusInternalServerError, "failed to validate session")
				}
				return
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) (*entity.AccessSession, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*entity.AccessSession)
	return session, ok
}
