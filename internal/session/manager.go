// Package session holds the process-wide login state. Every screen reads the
// bearer token from here, and a 401 anywhere tears the session down through
// Expire so the UI can route back to the login screen.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/onair/internal/domain"
)

// Persistence is the subset of domain.Store the manager needs
type Persistence interface {
	GetSession() (domain.Session, bool)
	SaveSession(session domain.Session) error
	ClearSession() error
}

// Manager owns the current session
type Manager struct {
	auth   domain.Authenticator
	store  Persistence
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	session   domain.Session
	listeners []func(domain.Session)
}

// NewManager creates a manager and restores a persisted, unexpired session.
// store may be nil for a session that lives only in memory.
func NewManager(auth domain.Authenticator, store Persistence, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	m.restore()
	return m
}

func (m *Manager) restore() {
	if m.store == nil {
		return
	}
	s, ok := m.store.GetSession()
	if !ok {
		return
	}
	if !s.Valid(m.now()) {
		m.logger.Info("discarding expired session", "user", s.User.Username, "expiredAt", s.ExpiresAt)
		if err := m.store.ClearSession(); err != nil {
			m.logger.Warn("failed to clear expired session", "error", err)
		}
		return
	}
	m.session = s
	m.logger.Info("restored session", "user", s.User.Username)
}

// OnChange registers fn to run after every login, logout or expiry.
// fn runs on the goroutine that changed the session.
func (m *Manager) OnChange(fn func(domain.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login authenticates and persists the session
func (m *Manager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, domain.Invalid("credentials", errors.New("username and password are required"))
	}

	s, err := m.auth.Login(ctx, username, password)
	if err != nil {
		m.logger.Warn("login failed", "user", username, "error", err)
		return domain.Session{}, err
	}

	if exp, ok := TokenExpiry(s.Token); ok {
		s.ExpiresAt = exp
	}

	if m.store != nil {
		if err := m.store.SaveSession(*s); err != nil {
			m.logger.Error("failed to persist session", "error", err)
		}
	}

	m.set(*s)
	m.logger.Info("logged in", "user", s.User.Username, "role", s.User.Role, "expiresAt", s.ExpiresAt)
	return *s, nil
}

// Logout clears the session locally and on disk
func (m *Manager) Logout() error {
	var err error
	if m.store != nil {
		if cerr := m.store.ClearSession(); cerr != nil {
			err = fmt.Errorf("failed to clear session: %w", cerr)
		}
	}
	m.set(domain.Session{})
	m.logger.Info("logged out")
	return err
}

// Expire is the unauthorized hook: the backend rejected the token
func (m *Manager) Expire() {
	m.mu.RLock()
	had := m.session.Token != ""
	m.mu.RUnlock()
	if !had {
		return
	}
	m.logger.Warn("session expired")
	if err := m.Logout(); err != nil {
		m.logger.Error("failed to clear expired session", "error", err)
	}
}

func (m *Manager) set(s domain.Session) {
	m.mu.Lock()
	m.session = s
	listeners := append([]func(domain.Session){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Token returns the bearer token, empty when logged out or expired
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.session.Valid(m.now()) {
		return ""
	}
	return m.session.Token
}

// Current returns the session and whether it is usable
func (m *Manager) Current() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.session.Valid(m.now())
}

// LoggedIn reports whether a usable session is held
func (m *Manager) LoggedIn() bool {
	_, ok := m.Current()
	return ok
}

// TokenExpiry reads the exp claim of a JWT without verifying the signature.
// The console never holds the signing key; the claim is only used to avoid
// sending a token the server will certainly reject.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
