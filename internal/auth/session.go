// Package auth holds the admin session model, JWT issuing and bcrypt helpers.
package auth

import (
	"context"
	"time"
)

// Session is an authenticated admin session. It is acquired at login,
// carried explicitly through the service layer and ends at logout or expiry.
type Session struct {
	ID        string
	AdminID   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type ctxKey struct{}

// WithSession stores the session on a request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFromContext returns the session placed by Middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
