package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quiz-admin-service/internal/domain"
)

// Authenticator turns a bearer token into a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Session, error)
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token query parameter (browsers cannot set headers on WebSocket dials).
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Middleware rejects requests without a valid session and stores the session
// on the request context for handlers. Errors other than ErrInvalidToken
// (a revocation store outage, say) go to failed instead of unauthorized.
func Middleware(a Authenticator, unauthorized func(http.ResponseWriter, string), failed func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			session, err := a.Authenticate(r.Context(), token)
			if errors.Is(err, domain.ErrInvalidToken) {
				unauthorized(w, "invalid or expired token")
				return
			}
			if err != nil {
				failed(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
