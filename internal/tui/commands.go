package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/dashboard"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/library"
	"github.com/mmcdole/onair/internal/player"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/schedule"
	"github.com/mmcdole/onair/internal/session"
)

// Command factories for async operations

// TickCmd returns a command that sends a tick after delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status seq after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// WaitForEventCmd relays the next message pushed from a service goroutine
func WaitForEventCmd(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// LoginCmd authenticates against the station
func LoginCmd(sessions *session.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s, err := sessions.Login(ctx, username, password)
		if err != nil {
			return ErrMsg{Err: err, Context: "logging in"}
		}
		return LoggedInMsg{Session: s}
	}
}

// LogoutCmd clears the session
func LogoutCmd(sessions *session.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := sessions.Logout(); err != nil {
			return ErrMsg{Err: err, Context: "logging out"}
		}
		return LoggedOutMsg{}
	}
}

// LoadDashboardCmd polls the station summary
func LoadDashboardCmd(svc *dashboard.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		stats, err := svc.Fetch(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading dashboard"}
		}
		return DashboardLoadedMsg{Stats: stats}
	}
}

// DashboardRefreshCmd schedules the next dashboard poll
func DashboardRefreshCmd(gen int) tea.Cmd {
	return tea.Tick(dashboard.RefreshInterval, func(time.Time) tea.Msg {
		return DashboardRefreshMsg{Gen: gen}
	})
}

type syncProgress struct {
	loaded, total int
	result        domain.SyncResult
	done          bool
	err           error
}

// SyncCatalogCmd loads the catalog, from cache unless force, streaming
// page progress back as CatalogSyncMsg values.
func SyncCatalogCmd(svc *library.Service, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		progressCh := make(chan syncProgress, 1)

		go func() {
			defer cancel()
			defer close(progressCh)
			onProgress := func(loaded, total int) {
				select {
				case progressCh <- syncProgress{loaded: loaded, total: total}:
				default:
					// the TUI is behind; the final message still carries the count
				}
			}
			var (
				res domain.SyncResult
				err error
			)
			if force {
				var tracks []domain.Track
				tracks, err = svc.FetchTracks(ctx, onProgress)
				res.Count = len(tracks)
			} else {
				res, err = svc.SyncCatalog(ctx, onProgress)
			}
			progressCh <- syncProgress{result: res, done: true, err: err}
		}()

		return readSyncProgress(progressCh)
	}
}

// readSyncProgress reads one message from the channel and attaches the
// continuation command
func readSyncProgress(progressCh <-chan syncProgress) tea.Msg {
	p, ok := <-progressCh
	if !ok {
		return CatalogSyncMsg{Done: true, Error: errors.New("sync cancelled")}
	}
	if p.done {
		return CatalogSyncMsg{
			Loaded:    p.result.Count,
			Total:     p.result.Count,
			Done:      true,
			FromCache: p.result.FromCache,
			Error:     p.err,
		}
	}
	return CatalogSyncMsg{
		Loaded:  p.loaded,
		Total:   p.total,
		NextCmd: tea.Cmd(func() tea.Msg { return readSyncProgress(progressCh) }),
	}
}

// UpdateTrackCmd saves edited track metadata
func UpdateTrackCmd(svc *library.Service, id int64, update domain.TrackUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		track, err := svc.UpdateTrack(ctx, id, update)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating track"}
		}
		return TrackUpdatedMsg{Track: *track}
	}
}

// LoadPlaylistsCmd loads playlists, serving the cache unless force
func LoadPlaylistsCmd(svc *playlist.Service, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			playlists []domain.Playlist
			err       error
		)
		if force {
			playlists, err = svc.FetchPlaylists(ctx)
		} else {
			playlists, err = svc.SyncPlaylists(ctx)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlists"}
		}
		return PlaylistsLoadedMsg{Playlists: playlists}
	}
}

// LoadPlaylistPreviewCmd loads the tracks of one playlist
func LoadPlaylistPreviewCmd(svc *playlist.Service, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tracks, err := svc.PlaylistTracks(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlist"}
		}
		return PlaylistPreviewMsg{PlaylistID: id, Tracks: tracks}
	}
}

// LoadMembershipCmd gathers playlists and which of them hold track
func LoadMembershipCmd(svc *playlist.Service, track domain.Track) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		playlists, err := svc.SyncPlaylists(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlists"}
		}
		membership, err := svc.GetPlaylistMembership(ctx, track.ID)
		if err != nil {
			return ErrMsg{Err: err, Context: "checking playlists"}
		}
		return MembershipLoadedMsg{Track: track, Playlists: playlists, Membership: membership}
	}
}

// AddToPlaylistsCmd appends track to each playlist in ids
func AddToPlaylistsCmd(svc *playlist.Service, track domain.Track, ids []int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		msg := TracksAddedMsg{Track: track}
		var firstErr error
		for _, id := range ids {
			if _, err := svc.AddTracks(ctx, id, []int64{track.ID}); err != nil {
				msg.Failed++
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			msg.Playlists++
		}
		if msg.Playlists == 0 && firstErr != nil {
			return ErrMsg{Err: firstErr, Context: "adding to playlist"}
		}
		return msg
	}
}

// DeletePlaylistCmd removes a playlist on the backend
func DeletePlaylistCmd(svc *playlist.Service, p domain.Playlist) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := svc.DeletePlaylist(ctx, p.ID); err != nil {
			return ErrMsg{Err: err, Context: "deleting playlist"}
		}
		return PlaylistDeletedMsg{PlaylistID: p.ID, Name: p.Name}
	}
}

// LoadDraftCmd hydrates the builder draft
func LoadDraftCmd(d *playlist.Draft, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return DraftLoadedMsg{PlaylistID: id, Err: d.Load(ctx, id)}
	}
}

// SaveDraftCmd persists the builder draft
func SaveDraftCmd(d *playlist.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		res, err := d.Save(ctx)
		return DraftSavedMsg{Result: res, Err: err}
	}
}

// LoadSchedulePlaylistsCmd fills the schedule sidebar
func LoadSchedulePlaylistsCmd(p *schedule.Planner) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return SchedulePlaylistsMsg{Err: p.LoadPlaylists(ctx)}
	}
}

// LoadScheduleCmd fetches the slots of a week
func LoadScheduleCmd(p *schedule.Planner, w schedule.Window) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return ScheduleLoadedMsg{Window: w, Err: p.LoadRange(ctx, w.Start, w.End)}
	}
}

// DropCmd commits the carried playlist at start
func DropCmd(p *schedule.Planner, start time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return PlacementDoneMsg{Err: p.Drop(ctx, start)}
	}
}

// RemoveSlotCmd deletes a slot
func RemoveSlotCmd(p *schedule.Planner, slotID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return SlotRemovedMsg{SlotID: slotID, Err: p.RemoveSlot(ctx, slotID)}
	}
}

// PlayCmd plays track, replacing the queue when queue is non-nil
func PlayCmd(s *player.Session, track domain.Track, queue []domain.Track) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.Play(ctx, track, queue); err != nil && !errors.Is(err, player.ErrSuperseded) {
			return ErrMsg{Err: err, Context: fmt.Sprintf("playing %q", track.Title)}
		}
		return nil
	}
}

// SkipCmd moves to the next (forward) or previous track
func SkipCmd(s *player.Session, forward bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var err error
		if forward {
			err = s.Next(ctx)
		} else {
			err = s.Previous(ctx)
		}
		if err != nil && !errors.Is(err, player.ErrSuperseded) && !errors.Is(err, domain.ErrNothingPlaying) {
			return ErrMsg{Err: err, Context: "skipping track"}
		}
		return nil
	}
}

// PlaceDropCmd schedules playlistID at a typed start time
func PlaceDropCmd(p *schedule.Planner, playlistID int64, start time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return PlacementDoneMsg{Err: p.PlaceDrop(ctx, playlistID, start)}
	}
}
