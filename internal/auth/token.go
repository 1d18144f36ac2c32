package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quiz-admin-service/internal/domain"
)

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload issued to admins.
type Claims struct {
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login and registration.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// NewIssuerWithClock is test-only for deterministic expiry.
func NewIssuerWithClock(secret, issuer string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Issuer {
	i := NewIssuer(secret, issuer, accessTTL, refreshTTL)
	i.now = now
	return i
}

// Issue signs a token of the given kind for admin.
func (i *Issuer) Issue(admin domain.Admin, kind TokenKind) (string, Session, error) {
	ttl := i.accessTTL
	if kind == KindRefresh {
		ttl = i.refreshTTL
	}
	now := i.now()
	session := Session{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		Username:  admin.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	claims := &Claims{
		Username: admin.Username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   admin.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, session, nil
}

// IssuePair issues an access and a refresh token.
func (i *Issuer) IssuePair(admin domain.Admin) (TokenPair, Session, error) {
	access, session, err := i.Issue(admin, KindAccess)
	if err != nil {
		return TokenPair{}, Session{}, err
	}
	refresh, _, err := i.Issue(admin, KindRefresh)
	if err != nil {
		return TokenPair{}, Session{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, session, nil
}

// Parse verifies a token and checks it is of the expected kind.
func (i *Issuer) Parse(token string, kind TokenKind) (Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Session{}, domain.ErrInvalidToken
	}
	if claims.Kind != kind {
		return Session{}, fmt.Errorf("%w: expected %s token", domain.ErrInvalidToken, kind)
	}
	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return Session{}, fmt.Errorf("%w: missing claims", domain.ErrInvalidToken)
	}

	s := Session{
		ID:        claims.ID,
		AdminID:   claims.Subject,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}
