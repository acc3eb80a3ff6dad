package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// SessionURLParam is the route parameter holding the session id
const SessionURLParam = "sessionID"

type contextKey string

const sessionIDKey contextKey = "session_id"

// Verifier looks for the session token in the Authorization header, then in the
// "jwt" query parameter used by EventSource clients.
func Verifier(tokens jwt.Service) func(http.Handler) http.Handler {
	return jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery)
}

// SessionRequired rejects requests whose verified token does not belong to the
// session named in the URL.
func SessionRequired(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, jwt.ErrInvalidSessionToken)
				return
			}

			sessionID, err := tokens.SessionIDFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if sessionID != chi.URLParam(r, SessionURLParam) {
				response.HandleError(w, workspace.ErrSessionMismatch)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// SessionID returns the session id stored by SessionRequired.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
