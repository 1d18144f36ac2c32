package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/memory"
)

func newAuthService() *app.AuthService {
	issuer := auth.NewIssuer("test-secret", "quiz-admin-service", time.Hour, 24*time.Hour)
	return app.NewAuthService(memory.NewStore(), memory.NewRevocationStore(), issuer)
}

func register(t *testing.T, svc *app.AuthService) app.Registration {
	t.Helper()
	reg, err := svc.Register(context.Background(), app.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "correct-horse",
		Password2: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService()
	cases := map[string]app.RegisterRequest{
		"short username":    {Username: "al", Email: "a@b.c", Password: "12345678", Password2: "12345678"},
		"bad email":         {Username: "alice", Email: "nope", Password: "12345678", Password2: "12345678"},
		"short password":    {Username: "alice", Email: "a@b.c", Password: "1234", Password2: "1234"},
		"password mismatch": {Username: "alice", Email: "a@b.c", Password: "12345678", Password2: "87654321"},
		"password too long": {Username: "alice", Email: "a@b.c", Password: strings.Repeat("p", 80), Password2: strings.Repeat("p", 80)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), req); !errors.Is(err, domain.ErrInvalidRegistration) {
				t.Fatalf("expected ErrInvalidRegistration, got %v", err)
			}
		})
	}
}

func TestRegisterLoginAndProfile(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	reg := register(t, svc)
	if reg.Tokens.Access == "" || reg.Tokens.Refresh == "" {
		t.Fatalf("expected tokens on registration")
	}

	again := app.RegisterRequest{Username: "alice", Email: "x@y.z", Password: "12345678", Password2: "12345678"}
	if _, err := svc.Register(ctx, again); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	tokens, err := svc.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	session, err := svc.Authenticate(ctx, tokens.Access)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	profile, err := svc.Profile(ctx, session)
	if err != nil || profile.Username != "alice" || profile.Email != "alice@example.com" {
		t.Fatalf("profile: %+v %v", profile, err)
	}
	if _, err := svc.Authenticate(ctx, tokens.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate requests, got %v", err)
	}
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	reg := register(t, svc)

	access, err := svc.Refresh(ctx, reg.Tokens.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.Authenticate(ctx, access); err != nil {
		t.Fatalf("authenticate refreshed token: %v", err)
	}
	if _, err := svc.Refresh(ctx, reg.Tokens.Access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	reg := register(t, svc)

	session, err := svc.Authenticate(ctx, reg.Tokens.Access)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := svc.Logout(ctx, session, reg.Tokens.Refresh); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, reg.Tokens.Access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected revoked access token, got %v", err)
	}
	if _, err := svc.Refresh(ctx, reg.Tokens.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected revoked refresh token, got %v", err)
	}
}
