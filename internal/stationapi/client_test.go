package stationapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/onair/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func init() {
	baseRetryDelay = time.Millisecond
}

// newTestServer mounts r under /api/v1 and returns a client wired to it.
func newTestServer(t *testing.T, r chi.Router) (*Client, *int32) {
	t.Helper()
	root := chi.NewRouter()
	root.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Mount("/api/v1", r)

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	var expired int32
	c := NewClient(srv.URL, 5*time.Second, nil)
	c.UseSession(staticToken("secret"), func() { atomic.AddInt32(&expired, 1) })
	return c, &expired
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClientNormalizesBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://radio.local:8080", "http://radio.local:8080/api/v1"},
		{"http://radio.local:8080/", "http://radio.local:8080/api/v1"},
		{"http://radio.local:8080/api/v1", "http://radio.local:8080/api/v1"},
		{"http://radio.local:8080/api/v1/", "http://radio.local:8080/api/v1"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.in, 0, nil).BaseURL(); got != tt.want {
			t.Errorf("NewClient(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestGetTracksPagination(t *testing.T) {
	const total = 120
	r := chi.NewRouter()
	r.Get("/tracks", func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer header, got %q", got)
		}
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		var data []map[string]any
		for i := (page - 1) * limit; i < page*limit && i < total; i++ {
			data = append(data, map[string]any{"ID": i + 1, "Title": "Track " + strconv.Itoa(i+1), "Duration": 180.4})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": data,
			"meta": map[string]int{"page": page, "limit": limit, "total": total},
		})
	})
	c, _ := newTestServer(t, r)

	tracks, got, err := c.GetTracks(context.Background(), 100, 50)
	if err != nil {
		t.Fatalf("GetTracks failed: %v", err)
	}
	if got != total {
		t.Errorf("Expected total %d, got %d", total, got)
	}
	if len(tracks) != 20 {
		t.Fatalf("Expected 20 tracks on page 3, got %d", len(tracks))
	}
	if tracks[0].ID != 101 || tracks[0].Title != "Track 101" {
		t.Errorf("Expected track 101, got %+v", tracks[0])
	}
	if tracks[0].Duration != 180 {
		t.Errorf("Expected duration rounded to 180, got %d", tracks[0].Duration)
	}
}

func TestUnauthorizedExpiresSession(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/playlists", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	})
	c, expired := newTestServer(t, r)

	_, err := c.GetPlaylists(context.Background())
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("Expected ErrAuthFailed, got %v", err)
	}
	if n := atomic.LoadInt32(expired); n != 1 {
		t.Errorf("Expected unauthorized handler called once, got %d", n)
	}
}

func TestLoginBadCredentialsKeepsSession(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "" {
			t.Error("Expected login without bearer header")
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	})
	c, expired := newTestServer(t, r)

	_, err := c.Login(context.Background(), "dj", "wrong")
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("Expected ErrAuthFailed, got %v", err)
	}
	if n := atomic.LoadInt32(expired); n != 0 {
		t.Errorf("Expected unauthorized handler not called, got %d", n)
	}
}

func TestLogin(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body LoginRequest
		json.NewDecoder(req.Body).Decode(&body)
		if body.Username != "dj" || body.Password != "pw" {
			t.Errorf("Unexpected credentials %+v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "jwt-token",
			"user":  map[string]any{"id": 3, "username": "dj", "role": "manager"},
		})
	})
	c, _ := newTestServer(t, r)

	session, err := c.Login(context.Background(), "dj", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if session.Token != "jwt-token" || session.User.Role != "manager" {
		t.Errorf("Unexpected session %+v", session)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var gets, posts int32
	r := chi.NewRouter()
	r.Get("/playlists", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&gets, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": 1, "name": "Morning"}}})
	})
	r.Post("/schedules", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&posts, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})
	c, _ := newTestServer(t, r)

	playlists, err := c.GetPlaylists(context.Background())
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if len(playlists) != 1 || playlists[0].Name != "Morning" {
		t.Errorf("Unexpected playlists %+v", playlists)
	}
	if n := atomic.LoadInt32(&gets); n != 3 {
		t.Errorf("Expected 3 GET attempts, got %d", n)
	}

	if err := c.CreateOneTimeSlot(context.Background(), 1, time.Now()); err == nil {
		t.Fatal("Expected create to fail")
	}
	if n := atomic.LoadInt32(&posts); n != 1 {
		t.Errorf("Expected POST not to be retried, got %d attempts", n)
	}
}

func TestRejectionIsAPIError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/schedules", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "slot overlaps"})
	})
	c, _ := newTestServer(t, r)

	err := c.CreateOneTimeSlot(context.Background(), 1, time.Now())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "slot overlaps" {
		t.Errorf("Unexpected APIError %+v", apiErr)
	}
}

func TestCreateSlotSendsUTC(t *testing.T) {
	var got CreateSlotRequest
	r := chi.NewRouter()
	r.Post("/schedules", func(w http.ResponseWriter, req *http.Request) {
		json.NewDecoder(req.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 9})
	})
	c, _ := newTestServer(t, r)

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, paris)
	if err := c.CreateOneTimeSlot(context.Background(), 42, start); err != nil {
		t.Fatal(err)
	}
	if got.StartTime != "2026-03-04T09:00:00Z" {
		t.Errorf("Expected UTC start 2026-03-04T09:00:00Z, got %s", got.StartTime)
	}
	if got.PlaylistID != 42 || got.ScheduleType != "one_time" {
		t.Errorf("Unexpected request %+v", got)
	}
}

func TestGetScheduleMapsSlots(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/schedules", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("start") != "2026-03-02T00:00:00Z" {
			t.Errorf("Unexpected start %q", req.URL.Query().Get("start"))
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{
				"id": 1, "playlist_id": 5, "schedule_type": "one_time", "date": "2026-03-04",
				"days": "Wed", "start_time": "10:00", "end_time": "11:30", "is_active": true,
				"playlist": map[string]any{"name": "Morning", "color": "#ff0000"},
			},
			{
				"id": 2, "playlist_id": 6, "schedule_type": "recurring", "days": "Mon,Fri",
				"start_time": "22:00", "end_time": "02:00", "is_active": true,
			},
			{
				"id": 3, "playlist_id": 7, "schedule_type": "one_time", "date": "2026-03-05",
				"start_time": "09:00", "end_time": "10:00", "is_active": false,
			},
		})
	})
	c, _ := newTestServer(t, r)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slots, err := c.GetSchedule(context.Background(), start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 active slots, got %d", len(slots))
	}
	if slots[0].Type != domain.ScheduleOneTime || slots[0].PlaylistName != "Morning" || slots[0].EndTime.Minute != 30 {
		t.Errorf("Unexpected one-time slot %+v", slots[0])
	}
	if slots[1].Type != domain.ScheduleRecurring || len(slots[1].Days) != 2 {
		t.Errorf("Unexpected recurring slot %+v", slots[1])
	}
}

func TestGetPlaylistDecodesTracksInOrder(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/playlists/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "7" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Playlist not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "name": "Evening", "color": "",
			"tracks": []map[string]any{
				{"ID": 3, "Title": "C", "Duration": 60, "CreatedAt": "2026-01-02T10:00:00Z", "MusicalKey": "G#"},
				{"ID": 1, "Title": "A", "Duration": 30.6},
			},
		})
	})
	c, _ := newTestServer(t, r)

	p, err := c.GetPlaylist(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tracks) != 2 || p.Tracks[0].ID != 3 || p.Tracks[1].ID != 1 {
		t.Fatalf("Expected tracks [3 1], got %+v", p.Tracks)
	}
	if p.Tracks[0].MusicalKey != "G#" || p.Tracks[0].CreatedAt.IsZero() {
		t.Errorf("Expected capitalized fields to decode, got %+v", p.Tracks[0])
	}
	if p.TotalDuration != 91 {
		t.Errorf("Expected derived total 91, got %d", p.TotalDuration)
	}
	if p.DisplayColor() != domain.DefaultPlaylistColor {
		t.Errorf("Expected default color, got %s", p.DisplayColor())
	}

	_, err = c.GetPlaylist(context.Background(), 8)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestOfflineServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.GetPlaylists(context.Background())
	if !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("Expected ErrServerOffline, got %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("Expected ping to report offline, got %v", err)
	}
}

func TestPing(t *testing.T) {
	c, _ := newTestServer(t, chi.NewRouter())
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Expected healthy server, got %v", err)
	}
}
