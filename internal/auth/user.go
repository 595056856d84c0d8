package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User produces the authorization headers attached to each API request.
type User interface {
	AuthorizationHeaders() http.Header
	Username() string
}

var (
	ErrMissingToken       = errors.New("id token required")
	ErrMalformedToken     = errors.New("malformed id token")
	ErrTokenExpired       = errors.New("id token expired")
	ErrMissingCredentials = errors.New("username and password required")
)

// usernameClaims are consulted in order when deriving a display name.
var usernameClaims = []string{"cognito:username", "preferred_username", "username", "email", "sub"}

// TokenUser authenticates with a bearer ID token.
type TokenUser struct {
	idToken   string
	username  string
	expiresAt time.Time
}

// NewTokenUser parses the claims of idToken without verifying its signature.
func NewTokenUser(idToken string) (*TokenUser, error) {
	idToken = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(idToken), "Bearer "))
	if idToken == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	user := &TokenUser{idToken: idToken}
	for _, key := range usernameClaims {
		if value, ok := claims[key].(string); ok && strings.TrimSpace(value) != "" {
			user.username = strings.TrimSpace(value)
			break
		}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if exp != nil {
		user.expiresAt = exp.Time
	}
	return user, nil
}

// AuthorizationHeaders returns the bearer authorization header.
func (u *TokenUser) AuthorizationHeaders() http.Header {
	h := make(http.Header, 1)
	h.Set("Authorization", "Bearer "+u.idToken)
	return h
}

func (u *TokenUser) Username() string { return u.username }

// IDToken returns the raw token.
func (u *TokenUser) IDToken() string { return u.idToken }

// ExpiresAt returns the token expiry; zero when the token carries no exp claim.
func (u *TokenUser) ExpiresAt() time.Time { return u.expiresAt }

// Expired reports whether the token is past its expiry at now.
func (u *TokenUser) Expired(now time.Time) bool {
	return !u.expiresAt.IsZero() && !now.Before(u.expiresAt)
}

// BasicUser authenticates with HTTP basic credentials.
type BasicUser struct {
	username string
	password string
}

// NewBasicUser validates and wraps basic credentials.
func NewBasicUser(username, password string) (*BasicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return &BasicUser{username: username, password: password}, nil
}

func (u *BasicUser) AuthorizationHeaders() http.Header {
	req := http.Request{Header: make(http.Header, 1)}
	req.SetBasicAuth(u.username, u.password)
	return req.Header
}

func (u *BasicUser) Username() string { return u.username }
