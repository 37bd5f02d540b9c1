package store

import (
	"testing"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

func newTestStore(t *testing.T) *StationStore {
	t.Helper()
	s, err := NewStationStore(t.TempDir(), "http://radio.local/api/v1")
	if err != nil {
		t.Fatalf("NewStationStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTracksRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.GetTracks(); ok {
		t.Fatal("Expected empty store to miss")
	}

	tracks := []domain.Track{{ID: 1, Title: "Intro", Duration: 30}, {ID: 2, Title: "Outro", Duration: 45}}
	if err := s.SaveTracks(tracks); err != nil {
		t.Fatal(err)
	}

	got, ok := s.GetTracks()
	if !ok || len(got) != 2 {
		t.Fatalf("Expected 2 cached tracks, got %d (ok=%v)", len(got), ok)
	}
	if _, ok := s.SyncedAt(); !ok {
		t.Error("Expected sync timestamp after SaveTracks")
	}

	renamed := got[1]
	renamed.Title = "Sign Off"
	if err := s.UpdateCachedTrack(renamed); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTracks()
	if got[1].Title != "Sign Off" {
		t.Errorf("Expected updated title, got %q", got[1].Title)
	}

	s.InvalidateTracks()
	if _, ok := s.GetTracks(); ok {
		t.Error("Expected tracks to be gone after invalidation")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	const server = "http://radio.local/api/v1"

	s, err := NewStationStore(dir, server)
	if err != nil {
		t.Fatal(err)
	}
	session := domain.Session{Token: "abc", User: domain.User{Username: "dj"}, ExpiresAt: time.Unix(2000000000, 0)}
	if err := s.SaveSession(session); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePlaylistTracks(7, []domain.Track{{ID: 3}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewStationStore(dir, server+"/")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, ok := s.GetSession()
	if !ok || got.Token != "abc" || got.User.Username != "dj" {
		t.Errorf("Expected persisted session, got %+v (ok=%v)", got, ok)
	}
	items, ok := s.GetPlaylistTracks(7)
	if !ok || len(items) != 1 {
		t.Errorf("Expected persisted playlist tracks, got %v", items)
	}
}

func TestInvalidateAllKeepsSession(t *testing.T) {
	s := newTestStore(t)

	s.SaveSession(domain.Session{Token: "abc"})
	s.SavePlaylists([]domain.Playlist{{ID: 1, Name: "Morning"}})
	s.SavePlaylistTracks(1, []domain.Track{{ID: 9}})

	s.InvalidateAll()

	if _, ok := s.GetPlaylists(); ok {
		t.Error("Expected playlists to be invalidated")
	}
	if _, ok := s.GetPlaylistTracks(1); ok {
		t.Error("Expected playlist tracks to be invalidated")
	}
	if _, ok := s.GetSession(); !ok {
		t.Error("Expected session to survive InvalidateAll")
	}

	if err := s.ClearSession(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetSession(); ok {
		t.Error("Expected session to be cleared")
	}
}

func TestMemoryOnlyStore(t *testing.T) {
	s, err := NewStationStore("", "")
	if err != nil {
		t.Fatal(err)
	}
	s.SavePlaylists([]domain.Playlist{{ID: 4}})
	if got, ok := s.GetPlaylists(); !ok || got[0].ID != 4 {
		t.Errorf("Expected memory store to hold playlists, got %v", got)
	}
	s.InvalidatePlaylist(4)
	if err := s.Close(); err != nil {
		t.Errorf("Expected nil error closing memory store, got %v", err)
	}
}
