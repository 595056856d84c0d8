package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Mode selects how credentials are presented to the fragments service.
type Mode string

const (
	ModeBearer Mode = "bearer"
	ModeBasic  Mode = "basic"
)

// ParseMode maps a configuration value to a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeBearer, "":
		return ModeBearer, nil
	case ModeBasic:
		return ModeBasic, nil
	default:
		return "", fmt.Errorf("unsupported auth mode %q", value)
	}
}

// Credentials are supplied on sign-in.
type Credentials struct {
	IDToken  string
	Username string
	Password string
}

// Provider is the identity collaborator used by the CLI actions.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (User, error)
	SignOut(ctx context.Context) error
	// GetUser returns nil without error when nobody is signed in or the
	// stored session has expired.
	GetUser(ctx context.Context) (User, error)
}

type sessionState struct {
	Mode     Mode      `json:"mode"`
	IDToken  string    `json:"id_token,omitempty"`
	Username string    `json:"username,omitempty"`
	Password string    `json:"password,omitempty"`
	SignedIn time.Time `json:"signed_in_at"`
}

// FileProvider stores the signed-in session as JSON on disk.
type FileProvider struct {
	mode   Mode
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// ProviderOption configures a FileProvider.
type ProviderOption func(*FileProvider)

// WithLogger attaches a logger to the provider.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *FileProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *FileProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewFileProvider builds a provider persisting its session under stateDir.
func NewFileProvider(stateDir string, mode Mode, opts ...ProviderOption) *FileProvider {
	path := filepath.Join(stateDir, "session.json")
	p := &FileProvider{
		mode:   mode,
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path returns the session file location.
func (p *FileProvider) Path() string { return p.path }

func (p *FileProvider) SignIn(ctx context.Context, creds Credentials) (User, error) {
	state := sessionState{Mode: p.mode, SignedIn: p.now().UTC()}
	var user User
	switch p.mode {
	case ModeBasic:
		basic, err := NewBasicUser(creds.Username, creds.Password)
		if err != nil {
			return nil, err
		}
		state.Username = basic.Username()
		state.Password = creds.Password
		user = basic
	default:
		token, err := NewTokenUser(creds.IDToken)
		if err != nil {
			return nil, err
		}
		if token.Expired(p.now()) {
			return nil, ErrTokenExpired
		}
		state.IDToken = token.IDToken()
		user = token
	}

	if err := p.withLock(ctx, func() error { return p.save(state) }); err != nil {
		return nil, err
	}
	p.logger.Info("signed in", slog.String("user", user.Username()), slog.String("mode", string(p.mode)))
	return user, nil
}

func (p *FileProvider) SignOut(ctx context.Context) error {
	err := p.withLock(ctx, func() error {
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.logger.Info("signed out")
	return nil
}

func (p *FileProvider) GetUser(ctx context.Context) (User, error) {
	var state sessionState
	var found bool
	err := p.withLock(ctx, func() error {
		var err error
		state, found, err = p.load()
		return err
	})
	if err != nil || !found {
		return nil, err
	}

	switch state.Mode {
	case ModeBasic:
		basic, err := NewBasicUser(state.Username, state.Password)
		if err != nil {
			return nil, fmt.Errorf("stored session: %w", err)
		}
		return basic, nil
	default:
		token, err := NewTokenUser(state.IDToken)
		if err != nil {
			return nil, fmt.Errorf("stored session: %w", err)
		}
		if token.Expired(p.now()) {
			p.logger.Warn("stored id token expired; sign in again",
				slog.String("user", token.Username()),
				slog.Time("expired_at", token.ExpiresAt()),
			)
			return nil, nil
		}
		return token, nil
	}
}

func (p *FileProvider) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("ensure session directory: %w", err)
	}
	locked, err := p.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	if !locked {
		return errors.New("lock session: not acquired")
	}
	defer p.lock.Unlock() //nolint:errcheck
	return fn()
}

func (p *FileProvider) load() (sessionState, bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sessionState{}, false, nil
		}
		return sessionState{}, false, fmt.Errorf("read session: %w", err)
	}
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return sessionState{}, false, fmt.Errorf("decode session: %w", err)
	}
	return state, true, nil
}

func (p *FileProvider) save(state sessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
