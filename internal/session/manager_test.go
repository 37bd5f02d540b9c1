package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/store"
)

type fakeAuth struct {
	session *domain.Session
	err     error
	calls   int
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s := *f.session
	return &s, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "dj",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func memoryStore(t *testing.T) *store.StationStore {
	t.Helper()
	s, err := store.NewStationStore("", "")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoginPersistsAndReadsExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	auth := &fakeAuth{session: &domain.Session{Token: signedToken(t, exp), User: domain.User{Username: "dj"}}}
	st := memoryStore(t)
	m := NewManager(auth, st, nil)

	var changes int
	m.OnChange(func(domain.Session) { changes++ })

	s, err := m.Login(context.Background(), "dj", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("Expected expiry %v, got %v", exp, s.ExpiresAt)
	}
	if m.Token() == "" {
		t.Error("Expected token after login")
	}
	if _, ok := st.GetSession(); !ok {
		t.Error("Expected session to be persisted")
	}
	if changes != 1 {
		t.Errorf("Expected 1 change notification, got %d", changes)
	}

	// a second manager over the same store picks the session up
	if !NewManager(auth, st, nil).LoggedIn() {
		t.Error("Expected restored session to be logged in")
	}
}

func TestLoginValidation(t *testing.T) {
	auth := &fakeAuth{session: &domain.Session{Token: "x"}}
	m := NewManager(auth, nil, nil)

	_, err := m.Login(context.Background(), "  ", "pw")
	if !domain.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if auth.calls != 0 {
		t.Errorf("Expected no backend call, got %d", auth.calls)
	}
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	auth := &fakeAuth{err: domain.ErrAuthFailed}
	m := NewManager(auth, nil, nil)

	if _, err := m.Login(context.Background(), "dj", "bad"); !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
	if m.LoggedIn() {
		t.Error("Expected to stay logged out")
	}
}

func TestExpireClearsEverywhere(t *testing.T) {
	auth := &fakeAuth{session: &domain.Session{Token: "opaque-token"}}
	st := memoryStore(t)
	m := NewManager(auth, st, nil)
	if _, err := m.Login(context.Background(), "dj", "pw"); err != nil {
		t.Fatal(err)
	}

	var last domain.Session
	var changes int
	m.OnChange(func(s domain.Session) { last = s; changes++ })

	m.Expire()
	if m.LoggedIn() || m.Token() != "" {
		t.Error("Expected session to be gone after Expire")
	}
	if _, ok := st.GetSession(); ok {
		t.Error("Expected persisted session to be cleared")
	}
	if changes != 1 || last.Token != "" {
		t.Errorf("Expected one empty-session notification, got %d (%+v)", changes, last)
	}

	// repeated 401s from in-flight requests do not re-notify
	m.Expire()
	if changes != 1 {
		t.Errorf("Expected no extra notification, got %d", changes)
	}
}

func TestRestoreDropsExpiredSession(t *testing.T) {
	st := memoryStore(t)
	st.SaveSession(domain.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)})

	m := NewManager(&fakeAuth{}, st, nil)
	if m.LoggedIn() {
		t.Error("Expected expired session not to be restored")
	}
	if _, ok := st.GetSession(); ok {
		t.Error("Expected expired session to be removed from the store")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("Expected %v, got %v (ok=%v)", exp, got, ok)
	}

	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Error("Expected opaque token to have no expiry")
	}
}
