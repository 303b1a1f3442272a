// Package middleware provides HTTP middlewares for the session gate and
// request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/krishichetan/kchetan/internal/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionSource reports the current session, if any.
type SessionSource func() (models.Session, bool)

// publicPaths are reachable without a session.
var publicPaths = map[string]bool{
	"/healthz":   true,
	"/api/login": true,
}

// RequireSession rejects requests when there is no valid session. The
// 401 body tells the client where to go instead:
//
//	{"redirect":"login"}
//
// On success the session is stored in the request context.
func RequireSession(source SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			s, ok := source()
			if !ok {
				Unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Unauthorized writes the login redirect response.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"redirect": "login"})
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}
