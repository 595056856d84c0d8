package auth_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fragments/internal/auth"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestTokenUserHeadersAndClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signToken(t, jwt.MapClaims{
		"cognito:username": "alice",
		"email":            "alice@example.com",
		"exp":              exp.Unix(),
	})

	user, err := auth.NewTokenUser(raw)
	if err != nil {
		t.Fatalf("NewTokenUser: %v", err)
	}
	if got := user.AuthorizationHeaders().Get("Authorization"); got != "Bearer "+raw {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if user.Username() != "alice" {
		t.Fatalf("expected username from cognito claim, got %q", user.Username())
	}
	if !user.ExpiresAt().Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, user.ExpiresAt())
	}
	if user.Expired(time.Now()) {
		t.Fatal("token should not be expired yet")
	}
	if !user.Expired(exp.Add(time.Second)) {
		t.Fatal("token should be expired after exp")
	}
}

func TestTokenUserFallsBackToEmail(t *testing.T) {
	user, err := auth.NewTokenUser(signToken(t, jwt.MapClaims{"email": "bob@example.com"}))
	if err != nil {
		t.Fatalf("NewTokenUser: %v", err)
	}
	if user.Username() != "bob@example.com" {
		t.Fatalf("unexpected username %q", user.Username())
	}
	if !user.ExpiresAt().IsZero() {
		t.Fatal("expected zero expiry without exp claim")
	}
}

func TestNewTokenUserRejectsGarbage(t *testing.T) {
	if _, err := auth.NewTokenUser(""); !errors.Is(err, auth.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := auth.NewTokenUser("not-a-jwt"); !errors.Is(err, auth.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestBasicUserHeaders(t *testing.T) {
	user, err := auth.NewBasicUser("user1@email.com", "password1")
	if err != nil {
		t.Fatalf("NewBasicUser: %v", err)
	}
	if got := user.AuthorizationHeaders().Get("Authorization"); got != "Basic dXNlcjFAZW1haWwuY29tOnBhc3N3b3JkMQ==" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if _, err := auth.NewBasicUser("", "x"); !errors.Is(err, auth.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestFileProviderSignInOutRoundTrip(t *testing.T) {
	ctx := context.Background()
	provider := auth.NewFileProvider(t.TempDir(), auth.ModeBearer)

	user, err := provider.GetUser(ctx)
	if err != nil || user != nil {
		t.Fatalf("expected no user before sign-in, got %v, %v", user, err)
	}

	raw := signToken(t, jwt.MapClaims{"sub": "abc", "exp": time.Now().Add(time.Hour).Unix()})
	if _, err := provider.SignIn(ctx, auth.Credentials{IDToken: raw}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	info, err := os.Stat(provider.Path())
	if err != nil {
		t.Fatalf("stat session: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 session file, got %o", perm)
	}

	user, err = provider.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user == nil || user.Username() != "abc" {
		t.Fatalf("unexpected user %#v", user)
	}

	if err := provider.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if user, err := provider.GetUser(ctx); err != nil || user != nil {
		t.Fatalf("expected no user after sign-out, got %v, %v", user, err)
	}
	if err := provider.SignOut(ctx); err != nil {
		t.Fatalf("second SignOut should be a no-op: %v", err)
	}
}

func TestFileProviderExpiredSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	now := time.Now()
	raw := signToken(t, jwt.MapClaims{"sub": "abc", "exp": now.Add(time.Minute).Unix()})

	provider := auth.NewFileProvider(dir, auth.ModeBearer)
	if _, err := provider.SignIn(ctx, auth.Credentials{IDToken: raw}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	later := auth.NewFileProvider(dir, auth.ModeBearer, auth.WithClock(func() time.Time { return now.Add(time.Hour) }))
	user, err := later.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Fatalf("expected expired session to yield no user, got %v", user)
	}
	if _, err := later.SignIn(ctx, auth.Credentials{IDToken: raw}); !errors.Is(err, auth.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestFileProviderBasicMode(t *testing.T) {
	ctx := context.Background()
	provider := auth.NewFileProvider(t.TempDir(), auth.ModeBasic)
	if _, err := provider.SignIn(ctx, auth.Credentials{Username: "user1@email.com", Password: "password1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	user, err := provider.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if _, ok := user.(*auth.BasicUser); !ok {
		t.Fatalf("expected BasicUser, got %T", user)
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := auth.ParseMode(""); err != nil || mode != auth.ModeBearer {
		t.Fatalf("expected default bearer mode, got %q, %v", mode, err)
	}
	if mode, err := auth.ParseMode(" BASIC "); err != nil || mode != auth.ModeBasic {
		t.Fatalf("expected basic mode, got %q, %v", mode, err)
	}
	if _, err := auth.ParseMode("oauth"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
