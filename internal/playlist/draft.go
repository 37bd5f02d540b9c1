package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcdole/onair/internal/domain"
)

// New is the playlist id of a draft that has never been saved.
const New int64 = 0

// ErrSuperseded is returned by Load when a newer Load started before the
// response arrived. The response is discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// SaveResult describes a successful save.
type SaveResult struct {
	PlaylistID    int64
	Created       bool
	TotalDuration int
}

// SaveError reports which half of a save failed. The draft is left intact
// so the save can be retried.
type SaveError struct {
	PlaylistID int64 // set once the playlist exists on the server
	Created    bool  // the create call succeeded during this save
	MetaErr    error
	TracksErr  error
}

func (e *SaveError) Error() string {
	switch {
	case e.MetaErr != nil && e.TracksErr != nil:
		return fmt.Sprintf("failed to save playlist details: %v; failed to save track order: %v", e.MetaErr, e.TracksErr)
	case e.MetaErr != nil:
		if e.PlaylistID == New {
			return fmt.Sprintf("failed to create playlist: %v", e.MetaErr)
		}
		return fmt.Sprintf("failed to save playlist details: %v", e.MetaErr)
	default:
		return fmt.Sprintf("failed to save track order: %v", e.TracksErr)
	}
}

func (e *SaveError) Unwrap() []error {
	var errs []error
	if e.MetaErr != nil {
		errs = append(errs, e.MetaErr)
	}
	if e.TracksErr != nil {
		errs = append(errs, e.TracksErr)
	}
	return errs
}

// Draft is the playlist being built or edited. Items are unique by track id
// at all times. Methods are safe for concurrent use; network calls happen
// outside the lock so the UI can keep reading while a save is in flight.
type Draft struct {
	repo   domain.PlaylistRepository
	logger *slog.Logger

	mu          sync.Mutex
	gen         uint64 // bumped by every Load
	rev         uint64 // bumped by every local edit
	savedRev    uint64
	loading     bool
	saving      bool
	id          int64
	name        string
	description string
	color       string
	items       []domain.Track
}

// NewDraft creates an empty, unsaved draft.
func NewDraft(repo domain.PlaylistRepository, logger *slog.Logger) *Draft {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Draft{repo: repo, logger: logger}
	d.resetLocked(New)
	return d
}

func (d *Draft) resetLocked(id int64) {
	d.id = id
	d.name = domain.DefaultPlaylistName
	d.description = ""
	d.color = domain.DefaultPlaylistColor
	d.items = nil
	d.rev++
	d.savedRev = d.rev
}

// Load points the draft at a playlist. New resets to an empty draft without
// a network call. Otherwise the playlist is fetched and hydrated in the
// server's track order; on failure the draft falls back to empty and the
// error is returned.
func (d *Draft) Load(ctx context.Context, id int64) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.resetLocked(New)
	if id == New {
		d.loading = false
		d.mu.Unlock()
		return nil
	}
	d.loading = true
	d.mu.Unlock()

	p, err := d.repo.GetPlaylist(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		d.logger.Debug("discarding stale playlist load", "playlistID", id)
		return ErrSuperseded
	}
	d.loading = false
	if err != nil {
		d.logger.Error("failed to load playlist", "error", err, "playlistID", id)
		return err
	}

	d.id = p.ID
	if d.id == New {
		d.id = id
	}
	d.name = p.Name
	if strings.TrimSpace(d.name) == "" {
		d.name = domain.DefaultPlaylistName
	}
	d.description = p.Description
	d.color = p.DisplayColor()
	d.items = nil
	for _, t := range p.Tracks {
		d.addLocked(t)
	}
	d.savedRev = d.rev
	d.logger.Debug("loaded playlist draft", "playlistID", d.id, "count", len(d.items))
	return nil
}

// Discard drops local edits and resets to an empty draft. A load still in
// flight is superseded.
func (d *Draft) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.loading = false
	d.resetLocked(New)
}

func (d *Draft) addLocked(t domain.Track) bool {
	for _, it := range d.items {
		if it.ID == t.ID {
			return false
		}
	}
	d.items = append(d.items, t)
	d.rev++
	return true
}

// AddTrack appends t unless a track with the same id is present.
func (d *Draft) AddTrack(t domain.Track) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addLocked(t)
}

// RemoveTrack removes the track with the given id, reporting whether it was present.
func (d *Draft) RemoveTrack(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, it := range d.items {
		if it.ID == id {
			d.items = append(d.items[:i:i], d.items[i+1:]...)
			d.rev++
			return true
		}
	}
	return false
}

// Reorder moves the item at from to position to, shifting the items between.
func (d *Draft) Reorder(from, to int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return domain.Invalid("position", fmt.Errorf("%w: move %d to %d in %d items", domain.ErrIndexOutOfRange, from, to, n))
	}
	if from == to {
		return nil
	}
	moved := d.items[from]
	items := make([]domain.Track, 0, n)
	items = append(items, d.items[:from]...)
	items = append(items, d.items[from+1:]...)
	items = append(items[:to], append([]domain.Track{moved}, items[to:]...)...)
	d.items = items
	d.rev++
	return nil
}

func (d *Draft) Rename(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	d.rev++
}

func (d *Draft) SetDescription(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.description = text
	d.rev++
}

func (d *Draft) SetColor(color string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.color = color
	d.rev++
}

// Items returns a copy of the ordered items.
func (d *Draft) Items() []domain.Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Track, len(d.items))
	copy(out, d.items)
	return out
}

// TrackIDs returns the ordered track ids.
func (d *Draft) TrackIDs() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trackIDsLocked()
}

func (d *Draft) trackIDsLocked() []int64 {
	ids := make([]int64, len(d.items))
	for i, it := range d.items {
		ids[i] = it.ID
	}
	return ids
}

// Contains reports whether the track is already in the draft.
func (d *Draft) Contains(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, it := range d.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// TotalDuration is the sum of item durations in seconds.
func (d *Draft) TotalDuration() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, it := range d.items {
		total += it.Duration
	}
	return total
}

func (d *Draft) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *Draft) Description() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.description
}

func (d *Draft) Color() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.color
}

// PlaylistID returns the backing playlist id, New when unsaved.
func (d *Draft) PlaylistID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

func (d *Draft) IsNew() bool { return d.PlaylistID() == New }

// Dirty reports unsaved local edits.
func (d *Draft) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rev != d.savedRev
}

// Busy reports an outstanding load or save.
func (d *Draft) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading || d.saving
}

// Save persists the draft. An empty draft or blank name is rejected before
// any network call. Existing playlists get their details and track order
// written concurrently; new playlists are created first and then given
// their tracks. Whatever fails, the draft keeps its contents.
func (d *Draft) Save(ctx context.Context) (SaveResult, error) {
	d.mu.Lock()
	if len(d.items) == 0 {
		d.mu.Unlock()
		return SaveResult{}, domain.Invalid("tracks", domain.ErrEmptyPlaylist)
	}
	if strings.TrimSpace(d.name) == "" {
		d.mu.Unlock()
		return SaveResult{}, domain.Invalid("name", domain.ErrEmptyName)
	}
	gen, rev := d.gen, d.rev
	id := d.id
	meta := domain.PlaylistMeta{
		Name:        strings.TrimSpace(d.name),
		Description: d.description,
		Color:       d.color,
	}
	ids := d.trackIDsLocked()
	d.saving = true
	d.mu.Unlock()

	var (
		res SaveResult
		err error
	)
	if id == New {
		res, err = d.create(ctx, meta, ids)
	} else {
		res, err = d.update(ctx, id, meta, ids)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.saving = false
	if gen != d.gen {
		// the operator moved to another playlist meanwhile
		return res, err
	}

	var saveErr *SaveError
	if errors.As(err, &saveErr) && saveErr.PlaylistID != New {
		d.id = saveErr.PlaylistID
	}
	if err != nil {
		return res, err
	}
	d.id = res.PlaylistID
	if d.rev == rev {
		d.savedRev = rev
	}
	return res, nil
}

func (d *Draft) create(ctx context.Context, meta domain.PlaylistMeta, ids []int64) (SaveResult, error) {
	p, err := d.repo.CreatePlaylist(ctx, meta)
	if err != nil {
		d.logger.Error("failed to create playlist", "error", err, "name", meta.Name)
		return SaveResult{}, &SaveError{MetaErr: err}
	}
	if p.ID == New {
		d.logger.Error("create playlist returned no id", "name", meta.Name)
		return SaveResult{}, &SaveError{MetaErr: errors.New("server returned no playlist id")}
	}

	total, err := d.repo.ReplacePlaylistTracks(ctx, p.ID, ids)
	if err != nil {
		d.logger.Error("failed to save track order", "error", err, "playlistID", p.ID)
		return SaveResult{}, &SaveError{PlaylistID: p.ID, Created: true, TracksErr: err}
	}
	d.logger.Info("created playlist", "playlistID", p.ID, "name", meta.Name, "count", len(ids))
	return SaveResult{PlaylistID: p.ID, Created: true, TotalDuration: total}, nil
}

func (d *Draft) update(ctx context.Context, id int64, meta domain.PlaylistMeta, ids []int64) (SaveResult, error) {
	var (
		wg        sync.WaitGroup
		metaErr   error
		tracksErr error
		total     int
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		metaErr = d.repo.UpdatePlaylist(ctx, id, meta)
	}()
	go func() {
		defer wg.Done()
		total, tracksErr = d.repo.ReplacePlaylistTracks(ctx, id, ids)
	}()
	wg.Wait()

	if metaErr != nil || tracksErr != nil {
		d.logger.Error("failed to save playlist", "playlistID", id, "metaError", metaErr, "tracksError", tracksErr)
		return SaveResult{}, &SaveError{PlaylistID: id, MetaErr: metaErr, TracksErr: tracksErr}
	}
	d.logger.Info("saved playlist", "playlistID", id, "name", meta.Name, "count", len(ids))
	return SaveResult{PlaylistID: id, TotalDuration: total}, nil
}
