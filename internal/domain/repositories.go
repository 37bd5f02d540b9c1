package domain

import (
	"context"
	"io"
	"time"
)

// TrackRepository provides access to the station catalog
type TrackRepository interface {
	// GetTracks returns one page of the catalog.
	// Returns (items, totalSize, error) for pagination support
	GetTracks(ctx context.Context, offset, limit int) ([]Track, int, error)

	// GetTrack returns a single track
	GetTrack(ctx context.Context, id int64) (*Track, error)

	// UpdateTrack edits track metadata and returns the stored result
	UpdateTrack(ctx context.Context, id int64, update TrackUpdate) (*Track, error)
}

// PlaylistRepository provides access to playlist management operations
type PlaylistRepository interface {
	// GetPlaylists returns all playlists without their tracks
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylist returns a playlist with its tracks in order
	GetPlaylist(ctx context.Context, id int64) (*Playlist, error)

	// CreatePlaylist creates an empty playlist and returns it with its new ID
	CreatePlaylist(ctx context.Context, meta PlaylistMeta) (*Playlist, error)

	// UpdatePlaylist changes playlist metadata
	UpdatePlaylist(ctx context.Context, id int64, meta PlaylistMeta) error

	// ReplacePlaylistTracks sets the full ordered track list.
	// Returns the new total duration in seconds.
	ReplacePlaylistTracks(ctx context.Context, id int64, trackIDs []int64) (int, error)

	// DeletePlaylist removes a playlist
	DeletePlaylist(ctx context.Context, id int64) error
}

// ScheduleRepository provides access to playlist placements
type ScheduleRepository interface {
	// GetSchedule returns the slots intersecting [start, end)
	GetSchedule(ctx context.Context, start, end time.Time) ([]ScheduleSlot, error)

	// CreateOneTimeSlot places a playlist starting at the given instant
	CreateOneTimeSlot(ctx context.Context, playlistID int64, start time.Time) error

	// DeleteSlot removes a placement
	DeleteSlot(ctx context.Context, id int64) error
}

// StatsRepository provides the dashboard summary
type StatsRepository interface {
	GetStats(ctx context.Context) (*StationStats, error)
}

// StreamOpener opens the audio stream for a track
type StreamOpener interface {
	OpenStream(ctx context.Context, trackID int64) (io.ReadCloser, error)
	StreamURL(trackID int64) string
}

// Authenticator exchanges credentials for a session
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*Session, error)
}
