package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/search"
)

// PlacementFailedMessage is shown when the backend refuses a placement.
const PlacementFailedMessage = "Could not schedule playlist. Check for overlaps or server issues."

// ghostLength is drawn for a ghost whose playlist length is unknown.
const ghostLength = time.Hour

// ErrSuperseded is returned by LoadRange when the window moved on before
// the response arrived.
var ErrSuperseded = errors.New("schedule range superseded by a newer request")

// Phase is the state of the placement gesture.
type Phase int

const (
	Idle Phase = iota
	Dragging
	PendingCreate
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case PendingCreate:
		return "pending-create"
	default:
		return "unknown"
	}
}

// PlacementError is a rejected drop. The calendar has already been
// returned to its last confirmed state when it is reported.
type PlacementError struct {
	PlaylistID int64
	Start      time.Time
	Err        error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s (%v)", PlacementFailedMessage, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// PlaylistLister supplies the sidebar playlists.
type PlaylistLister interface {
	GetPlaylists(ctx context.Context) ([]domain.Playlist, error)
}

// Planner holds the calendar state: the sidebar playlists, the confirmed
// events of the visible window, at most one ghost and the placement gesture.
// The backend decides overlaps; the planner never checks them itself.
type Planner struct {
	schedules domain.ScheduleRepository
	lister    PlaylistLister
	loc       *time.Location
	logger    *slog.Logger

	mu             sync.Mutex
	gen            uint64
	window         Window
	events         []domain.CalendarEvent
	pendingDeletes map[int64]bool
	removed        map[int64]uint64 // slot id -> gen when its delete was confirmed
	playlists      []domain.Playlist
	phase          Phase
	picked         int64
	ghost          *domain.CalendarEvent
}

// NewPlanner creates a planner rendering in the station location loc.
func NewPlanner(schedules domain.ScheduleRepository, lister PlaylistLister, loc *time.Location, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Planner{
		schedules:      schedules,
		lister:         lister,
		loc:            loc,
		logger:         logger,
		pendingDeletes: make(map[int64]bool),
		removed:        make(map[int64]uint64),
	}
}

// Location is the station timezone the grid is drawn in.
func (p *Planner) Location() *time.Location { return p.loc }

// LoadPlaylists fetches the sidebar list. It is not refreshed afterwards
// unless called again.
func (p *Planner) LoadPlaylists(ctx context.Context) error {
	playlists, err := p.lister.GetPlaylists(ctx)
	if err != nil {
		p.logger.Error("failed to load playlists for schedule", "error", err)
		return err
	}
	p.mu.Lock()
	p.playlists = playlists
	p.mu.Unlock()
	p.logger.Debug("loaded schedule playlists", "count", len(playlists))
	return nil
}

// Playlists returns the sidebar list.
func (p *Planner) Playlists() []domain.Playlist {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Playlist(nil), p.playlists...)
}

// FilterPlaylists narrows the sidebar by fuzzy name match.
func (p *Planner) FilterPlaylists(query string) []search.PlaylistResult {
	return search.Playlists(query, p.Playlists())
}

func (p *Planner) playlistLocked(id int64) (domain.Playlist, bool) {
	for _, pl := range p.playlists {
		if pl.ID == id {
			return pl, true
		}
	}
	return domain.Playlist{}, false
}

// LoadRange fetches the slots for [start, end) and replaces the confirmed
// events. A response for a window that is no longer current is dropped.
func (p *Planner) LoadRange(ctx context.Context, start, end time.Time) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.window = Window{Start: start.In(p.loc), End: end.In(p.loc)}
	p.mu.Unlock()

	slots, err := p.schedules.GetSchedule(ctx, start, end)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.logger.Debug("discarding stale schedule range", "start", start, "end", end)
		return ErrSuperseded
	}
	if err != nil {
		p.logger.Error("failed to load schedule", "error", err, "start", start, "end", end)
		return err
	}

	events := make([]domain.CalendarEvent, 0, len(slots))
	for _, slot := range slots {
		if at, ok := p.removed[slot.ID]; ok && gen <= at {
			// requested before the delete was confirmed
			continue
		}
		ev, ok := SlotEvent(slot, p.loc)
		if !ok {
			p.logger.Debug("skipping unplaceable slot", "slotID", slot.ID)
			continue
		}
		ev.PendingDelete = p.pendingDeletes[ev.SlotID]
		events = append(events, ev)
	}
	p.events = events
	for id, at := range p.removed {
		if gen > at {
			delete(p.removed, id)
		}
	}
	p.logger.Debug("loaded schedule", "count", len(events), "start", start, "end", end)
	return nil
}

// Refresh reloads the current window.
func (p *Planner) Refresh(ctx context.Context) error {
	w := p.Window()
	if w.IsZero() {
		return nil
	}
	return p.LoadRange(ctx, w.Start, w.End)
}

func (p *Planner) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// Events returns the confirmed events plus the ghost, if any.
func (p *Planner) Events() []domain.CalendarEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CalendarEvent, 0, len(p.events)+1)
	out = append(out, p.events...)
	if p.ghost != nil {
		out = append(out, *p.ghost)
	}
	return out
}

// Blocks expands Events into the occurrences inside the window, ordered by
// start time.
func (p *Planner) Blocks() []Block {
	w := p.Window()
	var blocks []Block
	for _, ev := range p.Events() {
		for _, iv := range ev.Occurrences(w.Start, w.End, p.loc) {
			blocks = append(blocks, Block{Event: ev, Interval: iv})
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start.Before(blocks[j].Start)
	})
	return blocks
}

// State reports the gesture phase.
func (p *Planner) State() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Picked returns the playlist being carried, 0 when idle.
func (p *Planner) Picked() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.picked
}

// Pick starts carrying a playlist. Picking again while dragging swaps the
// playlist; picking while a placement is pending is refused.
func (p *Planner) Pick(playlistID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == PendingCreate {
		return domain.ErrGestureInProgress
	}
	p.phase = Dragging
	p.picked = playlistID
	return nil
}

// Cancel abandons a drag. A pending placement cannot be cancelled.
func (p *Planner) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != Dragging {
		return false
	}
	p.phase = Idle
	p.picked = 0
	return true
}

// Drop places the carried playlist at start. A ghost is shown while the
// create call is outstanding. On success the ghost is dropped and the
// window re-fetched so the server-computed slot replaces it; on rejection
// the ghost is dropped and a *PlacementError returned.
func (p *Planner) Drop(ctx context.Context, start time.Time) error {
	p.mu.Lock()
	if p.phase != Dragging {
		p.mu.Unlock()
		return domain.ErrNoGesture
	}
	playlistID := p.picked
	start = start.In(p.loc)
	ghost := domain.CalendarEvent{
		ID:         "ghost-" + uuid.NewString(),
		PlaylistID: playlistID,
		Title:      domain.UnknownPlaylistTitle,
		Color:      domain.DefaultPlaylistColor,
		Type:       domain.ScheduleOneTime,
		Start:      start,
		End:        start.Add(ghostLength),
		Ghost:      true,
	}
	if pl, ok := p.playlistLocked(playlistID); ok {
		ghost.Title = pl.Name
		ghost.Color = pl.DisplayColor()
		if pl.TotalDuration > 0 {
			ghost.End = start.Add(time.Duration(pl.TotalDuration) * time.Second)
		}
	}
	p.ghost = &ghost
	p.phase = PendingCreate
	p.mu.Unlock()

	err := p.schedules.CreateOneTimeSlot(ctx, playlistID, start)

	p.mu.Lock()
	p.ghost = nil
	p.phase = Idle
	p.picked = 0
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("placement rejected", "error", err, "playlistID", playlistID, "start", start)
		return &PlacementError{PlaylistID: playlistID, Start: start, Err: err}
	}
	p.logger.Info("placed playlist", "playlistID", playlistID, "start", start)

	if err := p.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("playlist scheduled but the calendar could not be refreshed: %w", err)
	}
	return nil
}

// PlaceDrop picks and drops in one step, for placements typed by hand.
func (p *Planner) PlaceDrop(ctx context.Context, playlistID int64, start time.Time) error {
	if err := p.Pick(playlistID); err != nil {
		return err
	}
	return p.Drop(ctx, start)
}

// RemoveSlot deletes a slot. The event is marked pending while the call is
// out and only leaves the calendar once the backend confirms; on failure
// the mark is cleared and the event stays.
func (p *Planner) RemoveSlot(ctx context.Context, slotID int64) error {
	p.mu.Lock()
	found := false
	for i := range p.events {
		if p.events[i].SlotID == slotID {
			p.events[i].PendingDelete = true
			found = true
		}
	}
	if !found {
		p.mu.Unlock()
		return domain.ErrNotFound
	}
	p.pendingDeletes[slotID] = true
	p.mu.Unlock()

	err := p.schedules.DeleteSlot(ctx, slotID)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pendingDeletes, slotID)
	if err != nil {
		for i := range p.events {
			if p.events[i].SlotID == slotID {
				p.events[i].PendingDelete = false
			}
		}
		p.logger.Error("failed to remove slot", "error", err, "slotID", slotID)
		return err
	}

	kept := p.events[:0]
	for _, ev := range p.events {
		if ev.SlotID != slotID {
			kept = append(kept, ev)
		}
	}
	p.events = kept
	p.removed[slotID] = p.gen
	p.logger.Info("removed slot", "slotID", slotID)
	return nil
}
