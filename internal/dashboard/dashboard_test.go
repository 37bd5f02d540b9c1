package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

type fakeStats struct {
	stats *domain.StationStats
	err   error
}

func (f *fakeStats) GetStats(ctx context.Context) (*domain.StationStats, error) {
	return f.stats, f.err
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		np   *domain.NowPlaying
		want string
	}{
		{"nothing playing", nil, "--:--"},
		{"ended", &domain.NowPlaying{EndsAt: now.Add(-time.Second)}, "0:00"},
		{"seconds", &domain.NowPlaying{EndsAt: now.Add(9*time.Second + 500*time.Millisecond)}, "0:09"},
		{"minutes", &domain.NowPlaying{EndsAt: now.Add(3*time.Minute + 7*time.Second)}, "3:07"},
		{"over an hour", &domain.NowPlaying{EndsAt: now.Add(75 * time.Minute)}, "75:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeRemaining(tt.np, now); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatStorage(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 GB"},
		{1 << 30, "1.0 GB"},
		{3*(1<<30) + (1 << 29), "3.5 GB"},
	}
	for _, tt := range tests {
		if got := FormatStorage(tt.bytes); got != tt.want {
			t.Errorf("FormatStorage(%d): Expected %q, got %q", tt.bytes, tt.want, got)
		}
	}
}

func TestSummarizeIdle(t *testing.T) {
	sum := Summarize(&domain.StationStats{TotalTracks: 12}, time.Now())
	if sum.TotalTracks != 12 || sum.Uptime != DefaultUptime {
		t.Errorf("Unexpected summary %+v", sum)
	}
	np := sum.NowPlaying
	if np.Live || np.Title != IdleTitle || np.Artist != IdleArtist || np.PlaylistName != IdlePlaylist || np.Remaining != NoRemaining {
		t.Errorf("Expected idle placeholders, got %+v", np)
	}
}

func TestSummarizeLive(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	stats := &domain.StationStats{
		Uptime: "99.9%",
		NowPlaying: &domain.NowPlaying{
			Title:        "Teardrop",
			Artist:       "Massive Attack",
			PlaylistName: "Morning",
			EndsAt:       now.Add(90 * time.Second),
		},
	}
	np := Summarize(stats, now).NowPlaying
	if !np.Live || np.Title != "Teardrop" || np.Remaining != "1:30" {
		t.Errorf("Unexpected now playing %+v", np)
	}
}

func TestFetchKeepsLastGood(t *testing.T) {
	repo := &fakeStats{stats: &domain.StationStats{TotalTracks: 3}}
	svc := NewService(repo, nil)

	if _, _, ok := svc.Last(); ok {
		t.Error("Expected nothing before first fetch")
	}
	if _, err := svc.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	repo.stats, repo.err = nil, domain.ErrServerOffline
	if _, err := svc.Fetch(context.Background()); !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("Expected ErrServerOffline, got %v", err)
	}
	last, _, ok := svc.Last()
	if !ok || last.TotalTracks != 3 {
		t.Errorf("Expected last good stats kept, got %+v", last)
	}
}
