package tui

import (
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/schedule"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// SessionChangedMsg reports a login, logout or expiry from any goroutine
type SessionChangedMsg struct {
	Session domain.Session
}

// LoggedInMsg signals a successful login from the login screen
type LoggedInMsg struct {
	Session domain.Session
}

// LoggedOutMsg signals the user asked to log out
type LoggedOutMsg struct{}

// DashboardLoadedMsg carries a fresh station summary
type DashboardLoadedMsg struct {
	Stats *domain.StationStats
}

// DashboardRefreshMsg fires on the dashboard poll interval
type DashboardRefreshMsg struct {
	Gen int
}

// CatalogSyncMsg is sent for each page of a catalog sync
type CatalogSyncMsg struct {
	Loaded    int
	Total     int
	Done      bool
	FromCache bool
	Error     error
	NextCmd   any // continuation tea.Cmd while the sync runs
}

// TrackUpdatedMsg signals that track metadata was saved
type TrackUpdatedMsg struct {
	Track domain.Track
}

// PlaylistsLoadedMsg signals that the playlist list is ready
type PlaylistsLoadedMsg struct {
	Playlists []domain.Playlist
}

// PlaylistPreviewMsg carries the tracks of the highlighted playlist
type PlaylistPreviewMsg struct {
	PlaylistID int64
	Tracks     []domain.Track
}

// MembershipLoadedMsg carries what the add-to-playlist modal needs
type MembershipLoadedMsg struct {
	Track      domain.Track
	Playlists  []domain.Playlist
	Membership map[int64]bool
}

// TracksAddedMsg signals tracks were appended to playlists
type TracksAddedMsg struct {
	Track     domain.Track
	Playlists int
	Failed    int
}

// PlaylistDeletedMsg signals the backend removed a playlist
type PlaylistDeletedMsg struct {
	PlaylistID int64
	Name       string
}

// DraftLoadedMsg signals the builder draft finished hydrating
type DraftLoadedMsg struct {
	PlaylistID int64
	Err        error
}

// DraftSavedMsg reports the outcome of a builder save
type DraftSavedMsg struct {
	Result playlist.SaveResult
	Err    error
}

// ScheduleLoadedMsg signals the visible week was fetched
type ScheduleLoadedMsg struct {
	Window schedule.Window
	Err    error
}

// SchedulePlaylistsMsg signals the schedule sidebar was fetched
type SchedulePlaylistsMsg struct {
	Err error
}

// PlacementDoneMsg reports the outcome of a placement
type PlacementDoneMsg struct {
	Err error
}

// SlotRemovedMsg reports the outcome of a slot removal
type SlotRemovedMsg struct {
	SlotID int64
	Err    error
}

// PlaybackChangedMsg carries the player state after any transition
type PlaybackChangedMsg struct {
	State domain.PlaybackState
}
