// Package dashboard turns the station summary into what the overview
// screen shows.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// RefreshInterval is how often the overview re-polls the station.
const RefreshInterval = 30 * time.Second

// Placeholders shown when nothing is on air.
const (
	IdleTitle     = "Silence"
	IdleArtist    = "Station Offline"
	IdlePlaylist  = "No Schedule"
	NoRemaining   = "--:--"
	DefaultUptime = "100%"
)

// NowPlayingView is the on-air block of the overview.
type NowPlayingView struct {
	Title        string
	Artist       string
	PlaylistName string
	Remaining    string
	Live         bool
}

// Summary is the rendered overview.
type Summary struct {
	TotalTracks    int
	TotalPlaylists int
	Storage        string
	Uptime         string
	NowPlaying     NowPlayingView
	RecentTracks   []domain.Track
}

// Service polls the station summary and keeps the last good copy so a
// failed refresh does not blank the screen.
type Service struct {
	stats  domain.StatsRepository
	logger *slog.Logger

	mu        sync.Mutex
	last      *domain.StationStats
	fetchedAt time.Time
}

// NewService creates a dashboard service.
func NewService(stats domain.StatsRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{stats: stats, logger: logger}
}

// Fetch polls the station. On failure the previous copy stays available
// through Last.
func (s *Service) Fetch(ctx context.Context) (*domain.StationStats, error) {
	stats, err := s.stats.GetStats(ctx)
	if err != nil {
		s.logger.Error("failed to fetch dashboard stats", "error", err)
		return nil, err
	}
	s.mu.Lock()
	s.last = stats
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	s.logger.Debug("fetched dashboard stats", "tracks", stats.TotalTracks, "playlists", stats.TotalPlaylists)
	return stats, nil
}

// Last returns the most recent successful fetch.
func (s *Service) Last() (*domain.StationStats, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.fetchedAt, s.last != nil
}

// Summarize renders stats as of now. Nil stats give the idle placeholders.
func Summarize(stats *domain.StationStats, now time.Time) Summary {
	sum := Summary{
		Storage:    FormatStorage(0),
		Uptime:     DefaultUptime,
		NowPlaying: idle(),
	}
	if stats == nil {
		return sum
	}
	sum.TotalTracks = stats.TotalTracks
	sum.TotalPlaylists = stats.TotalPlaylists
	sum.Storage = FormatStorage(stats.StorageUsedBytes)
	if stats.Uptime != "" {
		sum.Uptime = stats.Uptime
	}
	sum.RecentTracks = stats.RecentTracks
	if np := stats.NowPlaying; np != nil {
		sum.NowPlaying = NowPlayingView{
			Title:        np.Title,
			Artist:       np.Artist,
			PlaylistName: np.PlaylistName,
			Remaining:    TimeRemaining(np, now),
			Live:         true,
		}
	}
	return sum
}

func idle() NowPlayingView {
	return NowPlayingView{
		Title:        IdleTitle,
		Artist:       IdleArtist,
		PlaylistName: IdlePlaylist,
		Remaining:    NoRemaining,
	}
}

// TimeRemaining formats what is left of the current track as m:ss.
// Minutes are not folded into hours.
func TimeRemaining(np *domain.NowPlaying, now time.Time) string {
	if np == nil {
		return NoRemaining
	}
	left := np.Remaining(now)
	if left <= 0 {
		return "0:00"
	}
	total := int(left / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatStorage renders bytes as gigabytes with one decimal.
func FormatStorage(bytes int64) string {
	if bytes <= 0 {
		return "0 GB"
	}
	return fmt.Sprintf("%.1f GB", domain.StationStats{StorageUsedBytes: bytes}.StorageGB())
}
