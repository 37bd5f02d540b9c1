package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/schedule"
	"github.com/mmcdole/onair/internal/session"
)

type fakeAuth struct{}

func (fakeAuth) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	return &domain.Session{Token: "opaque", User: domain.User{Username: username}}, nil
}

func loggedOutModel() Model {
	return NewModel(Services{}, Options{DefaultScreen: "dashboard"}, nil)
}

func loggedInModel(t *testing.T) Model {
	t.Helper()
	mgr := session.NewManager(fakeAuth{}, nil, nil)
	if _, err := mgr.Login(context.Background(), "dj", "pw"); err != nil {
		t.Fatal(err)
	}
	m := NewModel(Services{Sessions: mgr}, Options{DefaultScreen: "library"}, nil)
	if m.Screen() != ScreenLibrary {
		t.Fatalf("Expected to start on %s, got %s", ScreenLibrary, m.Screen())
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestParseScreen(t *testing.T) {
	tests := []struct {
		name string
		want Screen
	}{
		{"library", ScreenLibrary},
		{" Tracks ", ScreenLibrary},
		{"playlists", ScreenPlaylists},
		{"calendar", ScreenSchedule},
		{"SCHEDULE", ScreenSchedule},
		{"builder", ScreenDashboard},
		{"login", ScreenDashboard},
		{"", ScreenDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseScreen(tt.name); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTabIndex(t *testing.T) {
	for i, s := range tabs {
		k := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune('1' + i)}}
		if got := tabIndex(k); got != i {
			t.Errorf("Expected key %d to select %s, got index %d", i+1, s, got)
		}
	}
}

func TestLoggedOutStartsOnLogin(t *testing.T) {
	m := loggedOutModel()
	if m.Screen() != ScreenLogin {
		t.Fatalf("Expected %s, got %s", ScreenLogin, m.Screen())
	}
	if m.InputModal.Purpose() != purposeLogin || !m.InputModal.IsVisible() {
		t.Error("Expected the login form to be showing")
	}
}

func TestHeaderShowsSignedInUser(t *testing.T) {
	m := loggedInModel(t)
	m.Width = 80
	if !strings.Contains(m.renderHeader(), "dj") {
		t.Errorf("Expected header to name the user, got %q", m.renderHeader())
	}

	if err := m.svc.Sessions.Logout(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(m.renderHeader(), "dj") {
		t.Errorf("Expected no user after logout, got %q", m.renderHeader())
	}
}

func TestNavigateWithoutSessionRemembersTarget(t *testing.T) {
	m := loggedOutModel()
	m.navigate(ScreenSchedule)

	if m.Screen() != ScreenLogin {
		t.Errorf("Expected %s, got %s", ScreenLogin, m.Screen())
	}
	if m.afterLogin != ScreenSchedule {
		t.Errorf("Expected to return to %s after login, got %s", ScreenSchedule, m.afterLogin)
	}
}

func TestLoggedInGoesToRememberedScreen(t *testing.T) {
	m := loggedOutModel()
	m.navigate(ScreenDashboard)
	m = update(t, m, LoggedInMsg{Session: domain.Session{Token: "t", User: domain.User{Username: "dj"}}})

	if m.Screen() != ScreenDashboard {
		t.Errorf("Expected %s, got %s", ScreenDashboard, m.Screen())
	}
	if m.InputModal.IsVisible() {
		t.Error("Expected the login form to be hidden")
	}
	if m.statusMsg != "Logged in as dj" {
		t.Errorf("Expected welcome status, got %q", m.statusMsg)
	}
}

func TestSessionLossReturnsToLogin(t *testing.T) {
	tests := []struct {
		name       string
		loggingOut bool
		wantStatus string
	}{
		{"expired", false, "Session expired, please log in again"},
		{"logout", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loggedInModel(t)
			m.loggingOut = tt.loggingOut
			m = update(t, m, SessionChangedMsg{})

			if m.Screen() != ScreenLogin {
				t.Errorf("Expected %s, got %s", ScreenLogin, m.Screen())
			}
			if m.afterLogin != ScreenLibrary {
				t.Errorf("Expected to return to %s, got %s", ScreenLibrary, m.afterLogin)
			}
			if m.statusMsg != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, m.statusMsg)
			}
			if m.loggingOut {
				t.Error("Expected loggingOut to be cleared")
			}
		})
	}
}

func TestExpiryInBuilderReturnsToPlaylists(t *testing.T) {
	m := loggedInModel(t)
	m.screen = ScreenBuilder
	m = update(t, m, ErrMsg{Err: domain.ErrAuthFailed, Context: "saving playlist"})

	if m.Screen() != ScreenLogin {
		t.Errorf("Expected %s, got %s", ScreenLogin, m.Screen())
	}
	if m.afterLogin != ScreenPlaylists {
		t.Errorf("Expected to return to %s, got %s", ScreenPlaylists, m.afterLogin)
	}
}

func TestRejectedCredentials(t *testing.T) {
	m := loggedOutModel()
	m.loading = 1
	m = update(t, m, ErrMsg{Err: domain.ErrAuthFailed, Context: "logging in"})

	if m.statusMsg != "Login failed: invalid username or password" || !m.statusIsErr {
		t.Errorf("Expected login failure status, got %q", m.statusMsg)
	}
	if m.loading != 0 {
		t.Errorf("Expected loading to be reset, got %d", m.loading)
	}
}

func TestLeavingDirtyBuilderAsksFirst(t *testing.T) {
	m := loggedInModel(t)
	m.screen = ScreenBuilder
	m.build.draft.AddTrack(domain.Track{ID: 7, Title: "Intro"})

	m.navigate(ScreenDashboard)
	if m.confirm == nil {
		t.Fatal("Expected a discard confirmation")
	}
	if m.Screen() != ScreenBuilder {
		t.Errorf("Expected to stay on %s, got %s", ScreenBuilder, m.Screen())
	}

	m.confirm.onYes(&m)
	if m.Screen() != ScreenDashboard {
		t.Errorf("Expected %s, got %s", ScreenDashboard, m.Screen())
	}
	if m.build.draft.Dirty() || len(m.build.draft.Items()) != 0 {
		t.Error("Expected the draft to be discarded")
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		msg  ErrMsg
		want string
	}{
		{"offline", ErrMsg{Err: domain.ErrServerOffline, Context: "syncing"}, "Station server is unreachable"},
		{"validation", ErrMsg{Err: domain.Invalid("name", domain.ErrEmptyName), Context: "saving"}, "name: playlist name is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeError(tt.msg); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTrackEdit(t *testing.T) {
	orig := domain.Track{Title: "Song", Artist: "Band", Album: "LP", Genre: "Rock"}

	t.Run("unchanged", func(t *testing.T) {
		_, changed, err := trackEdit(orig, []string{"Song", "Band", "LP", "Rock"})
		if err != nil || changed {
			t.Errorf("Expected no change, got changed=%v err=%v", changed, err)
		}
	})

	t.Run("only changed fields", func(t *testing.T) {
		upd, changed, err := trackEdit(orig, []string{"Song", " New Band ", "LP", "Jazz"})
		if err != nil || !changed {
			t.Fatalf("Expected a change, got changed=%v err=%v", changed, err)
		}
		if upd.Title != nil || upd.Album != nil {
			t.Error("Expected untouched fields to be left out")
		}
		if upd.Artist == nil || *upd.Artist != "New Band" {
			t.Errorf("Expected trimmed artist, got %v", upd.Artist)
		}
		if upd.Genre == nil || *upd.Genre != "Jazz" {
			t.Errorf("Expected genre Jazz, got %v", upd.Genre)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		_, _, err := trackEdit(orig, []string{"  ", "Band", "LP", "Rock"})
		if !domain.IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestPlaylistMeta(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		wantColor string
		wantErr   bool
	}{
		{"default color", []string{"Morning", "", ""}, domain.DefaultPlaylistColor, false},
		{"custom color", []string{"Morning", "wake up", "#A1b2C3"}, "#A1b2C3", false},
		{"bad color", []string{"Morning", "", "red"}, "", true},
		{"short color", []string{"Morning", "", "#fff"}, "", true},
		{"blank name", []string{"  ", "", ""}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := playlistMeta(tt.values)
			if tt.wantErr {
				if !domain.IsValidation(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if meta.Color != tt.wantColor {
				t.Errorf("Expected color %s, got %s", tt.wantColor, meta.Color)
			}
		})
	}

	_, err := playlistMeta([]string{"", "", ""})
	if !errors.Is(err, domain.ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
}

func TestParsePlacement(t *testing.T) {
	loc := time.FixedZone("station", -5*60*60)

	got, err := parsePlacement([]string{"2026-10-14", "21:30"}, loc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := time.Date(2026, 10, 14, 21, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	for _, values := range [][]string{
		{"14/10/2026", "21:30"},
		{"2026-10-14", "25:00"},
		{"2026-10-14"},
	} {
		if _, err := parsePlacement(values, loc); !domain.IsValidation(err) {
			t.Errorf("Expected validation error for %v, got %v", values, err)
		}
	}
}

func TestDragPreview(t *testing.T) {
	items := []domain.Track{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	tests := []struct {
		from, to int
		want     []int64
	}{
		{0, 2, []int64{2, 3, 1, 4}},
		{3, 0, []int64{4, 1, 2, 3}},
		{1, 1, []int64{1, 2, 3, 4}},
		{5, 0, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := dragPreview(items, tt.from, tt.to)
		if len(got) != len(tt.want) {
			t.Fatalf("Expected %d items, got %d", len(tt.want), len(got))
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("move %d->%d: expected %v at %d, got %d", tt.from, tt.to, tt.want, i, got[i].ID)
				break
			}
		}
	}
	if items[0].ID != 1 {
		t.Error("Expected the source slice to be left alone")
	}
}

func TestScheduleGridCells(t *testing.T) {
	loc := time.FixedZone("station", 2*60*60)
	w := schedule.WeekOf(time.Date(2026, 10, 14, 12, 0, 0, 0, loc), loc, true)

	got := cellStart(w, gridCell{day: 2, slot: 19})
	want := time.Date(2026, 10, 14, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Expected cell to start at %v, got %v", want, got)
	}

	block := schedule.Block{Interval: domain.Interval{
		Start: time.Date(2026, 10, 12, 10, 0, 0, 0, loc),
		End:   time.Date(2026, 10, 12, 11, 0, 0, 0, loc),
	}}
	tests := []struct {
		cell gridCell
		want bool
	}{
		{gridCell{day: 0, slot: 19}, false},
		{gridCell{day: 0, slot: 20}, true},
		{gridCell{day: 0, slot: 21}, true},
		{gridCell{day: 0, slot: 22}, false},
		{gridCell{day: 1, slot: 20}, false},
	}
	for _, tt := range tests {
		if _, ok := blockAt([]schedule.Block{block}, w, tt.cell); ok != tt.want {
			t.Errorf("cell %+v: expected covered=%v, got %v", tt.cell, tt.want, ok)
		}
	}
}
