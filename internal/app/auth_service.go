package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/logging"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt rejects longer passwords.
	maxPasswordBytes = 72
)

// AdminStore persists quiz authors.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin domain.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (domain.Admin, error)
	GetAdminByID(ctx context.Context, id string) (domain.Admin, error)
}

// RevocationStore remembers sessions that ended before their expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Registration is returned after a successful sign-up.
type Registration struct {
	Admin   domain.Admin   `json:"user"`
	Tokens  auth.TokenPair `json:"tokens"`
	Message string         `json:"message"`
}

// AuthService owns the admin session lifecycle.
type AuthService struct {
	admins  AdminStore
	revoked RevocationStore
	issuer  *auth.Issuer
	now     func() time.Time
}

func NewAuthService(admins AdminStore, revoked RevocationStore, issuer *auth.Issuer) *AuthService {
	return &AuthService{admins: admins, revoked: revoked, issuer: issuer, now: time.Now}
}

// Register creates an admin and logs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (Registration, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	switch n := utf8.RuneCountInString(username); {
	case n < minUsernameLength || n > maxUsernameLength:
		return Registration{}, fmt.Errorf("%w: username must be %d-%d characters", domain.ErrInvalidRegistration, minUsernameLength, maxUsernameLength)
	case !strings.Contains(email, "@"):
		return Registration{}, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidRegistration)
	case len(req.Password) < minPasswordLength:
		return Registration{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidRegistration, minPasswordLength)
	case len(req.Password) > maxPasswordBytes:
		return Registration{}, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidRegistration, maxPasswordBytes)
	case req.Password != req.Password2:
		return Registration{}, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidRegistration)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Registration{}, fmt.Errorf("hash password: %w", err)
	}
	admin := domain.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return Registration{}, err
	}

	tokens, _, err := s.issuer.IssuePair(admin)
	if err != nil {
		return Registration{}, err
	}
	logging.FromContext(ctx).WithField("admin_id", admin.ID).Info("admin registered")
	return Registration{Admin: admin, Tokens: tokens, Message: "User registered successfully"}, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	admin, err := s.admins.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrAdminNotFound) {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !auth.CheckPassword(admin.PasswordHash, password) {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}
	tokens, _, err := s.issuer.IssuePair(admin)
	return tokens, err
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	session, err := s.live(ctx, refreshToken, auth.KindRefresh)
	if err != nil {
		return "", err
	}
	admin, err := s.admins.GetAdminByID(ctx, session.AdminID)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	access, _, err := s.issuer.Issue(admin, auth.KindAccess)
	return access, err
}

// Authenticate turns an access token into a session.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (auth.Session, error) {
	return s.live(ctx, accessToken, auth.KindAccess)
}

// Logout ends the session and, when given, the refresh token issued alongside it.
func (s *AuthService) Logout(ctx context.Context, session auth.Session, refreshToken string) error {
	if err := s.revoked.Revoke(ctx, session.ID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if refreshToken == "" {
		return nil
	}
	refresh, err := s.issuer.Parse(refreshToken, auth.KindRefresh)
	if err != nil || refresh.AdminID != session.AdminID {
		return nil
	}
	if err := s.revoked.Revoke(ctx, refresh.ID, refresh.ExpiresAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// Profile returns the session's admin.
func (s *AuthService) Profile(ctx context.Context, session auth.Session) (domain.Admin, error) {
	return s.admins.GetAdminByID(ctx, session.AdminID)
}

func (s *AuthService) live(ctx context.Context, token string, kind auth.TokenKind) (auth.Session, error) {
	session, err := s.issuer.Parse(token, kind)
	if err != nil {
		return auth.Session{}, err
	}
	if session.Expired(s.now()) {
		return auth.Session{}, domain.ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, session.ID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return auth.Session{}, fmt.Errorf("%w: session ended", domain.ErrInvalidToken)
	}
	return session, nil
}
