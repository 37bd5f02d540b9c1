package playlist

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"testing"

	"github.com/mmcdole/onair/internal/domain"
)

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[int64]*domain.Playlist
	nextID    int64

	getErr     error
	createErr  error
	updateErr  error
	replaceErr error
	deleteErr  error

	// gate, when set, blocks GetPlaylist for that id until closed
	gate map[int64]chan struct{}

	creates  int
	updates  int
	replaces [][]int64
	deleted  []int64
}

func newFakeRepo(playlists ...domain.Playlist) *fakePlaylistRepo {
	f := &fakePlaylistRepo{playlists: make(map[int64]*domain.Playlist), nextID: 100}
	for _, p := range playlists {
		p := p
		f.playlists[p.ID] = &p
	}
	return f
}

func (f *fakePlaylistRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates + f.updates + len(f.replaces)
}

func (f *fakePlaylistRepo) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []domain.Playlist
	for _, p := range f.playlists {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b domain.Playlist) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakePlaylistRepo) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	f.mu.Lock()
	gate := f.gate[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.playlists[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Tracks = slices.Clone(p.Tracks)
	return &cp, nil
}

func (f *fakePlaylistRepo) CreatePlaylist(ctx context.Context, meta domain.PlaylistMeta) (*domain.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	p := &domain.Playlist{ID: f.nextID, Name: meta.Name, Description: meta.Description, Color: meta.Color}
	f.playlists[p.ID] = p
	return p, nil
}

func (f *fakePlaylistRepo) UpdatePlaylist(ctx context.Context, id int64, meta domain.PlaylistMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.playlists[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Name, p.Description, p.Color = meta.Name, meta.Description, meta.Color
	return nil
}

func (f *fakePlaylistRepo) ReplacePlaylistTracks(ctx context.Context, id int64, trackIDs []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces = append(f.replaces, slices.Clone(trackIDs))
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	p, ok := f.playlists[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Tracks = nil
	total := 0
	for _, tid := range trackIDs {
		p.Tracks = append(p.Tracks, domain.Track{ID: tid, Duration: 60})
		total += 60
	}
	p.TotalDuration = total
	return total, nil
}

func (f *fakePlaylistRepo) DeletePlaylist(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.playlists, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func track(id int64) domain.Track {
	return domain.Track{ID: id, Title: "T", Duration: 60}
}

func assertIDs(t *testing.T, got, want []int64) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("Expected ids %v, got %v", want, got)
	}
}

func TestAddTrackKeepsIdsUnique(t *testing.T) {
	d := NewDraft(newFakeRepo(), nil)

	if !d.AddTrack(track(1)) || !d.AddTrack(track(2)) {
		t.Fatal("Expected first adds to succeed")
	}
	if d.AddTrack(track(1)) {
		t.Error("Expected duplicate add to be a no-op")
	}
	assertIDs(t, d.TrackIDs(), []int64{1, 2})

	for i := 0; i < 50; i++ {
		d.AddTrack(track(int64(i % 7)))
	}
	seen := map[int64]bool{}
	for _, id := range d.TrackIDs() {
		if seen[id] {
			t.Fatalf("Expected unique ids, %d repeated in %v", id, d.TrackIDs())
		}
		seen[id] = true
	}
}

func TestRemoveTrack(t *testing.T) {
	d := NewDraft(newFakeRepo(), nil)
	d.AddTrack(track(1))
	d.AddTrack(track(2))
	d.AddTrack(track(3))

	if !d.RemoveTrack(2) {
		t.Error("Expected remove to report success")
	}
	if d.RemoveTrack(2) {
		t.Error("Expected second remove to be a no-op")
	}
	assertIDs(t, d.TrackIDs(), []int64{1, 3})
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int64
		wantErr  bool
	}{
		{"first to last", 0, 2, []int64{2, 3, 1}, false},
		{"last to first", 2, 0, []int64{3, 1, 2}, false},
		{"adjacent", 1, 2, []int64{1, 3, 2}, false},
		{"same position", 1, 1, []int64{1, 2, 3}, false},
		{"from out of range", 3, 0, []int64{1, 2, 3}, true},
		{"to out of range", 0, 3, []int64{1, 2, 3}, true},
		{"negative", -1, 0, []int64{1, 2, 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft(newFakeRepo(), nil)
			for _, id := range []int64{1, 2, 3} {
				d.AddTrack(track(id))
			}
			err := d.Reorder(tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrIndexOutOfRange) || !domain.IsValidation(err) {
					t.Errorf("Expected out-of-range validation error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Reorder failed: %v", err)
			}
			assertIDs(t, d.TrackIDs(), tt.want)
		})
	}
}

func TestReorderPreservesSet(t *testing.T) {
	d := NewDraft(newFakeRepo(), nil)
	for id := int64(1); id <= 6; id++ {
		d.AddTrack(track(id))
	}
	for from := 0; from < 6; from++ {
		for to := 0; to < 6; to++ {
			if err := d.Reorder(from, to); err != nil {
				t.Fatal(err)
			}
			ids := d.TrackIDs()
			slices.Sort(ids)
			assertIDs(t, ids, []int64{1, 2, 3, 4, 5, 6})
		}
	}
}

func TestSaveEmptyDraftMakesNoCalls(t *testing.T) {
	repo := newFakeRepo()
	d := NewDraft(repo, nil)

	_, err := d.Save(context.Background())
	if !errors.Is(err, domain.ErrEmptyPlaylist) {
		t.Errorf("Expected ErrEmptyPlaylist, got %v", err)
	}
	if !domain.IsValidation(err) {
		t.Errorf("Expected a validation error, got %T", err)
	}
	if repo.calls() != 0 {
		t.Errorf("Expected no backend calls, got %d", repo.calls())
	}
}

func TestSaveBlankNameRejected(t *testing.T) {
	repo := newFakeRepo()
	d := NewDraft(repo, nil)
	d.AddTrack(track(1))
	d.Rename("   ")

	if _, err := d.Save(context.Background()); !errors.Is(err, domain.ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if repo.calls() != 0 {
		t.Errorf("Expected no backend calls, got %d", repo.calls())
	}
}

func TestLoadThenSaveRoundTripsOrder(t *testing.T) {
	repo := newFakeRepo(domain.Playlist{
		ID:     5,
		Name:   "Morning",
		Tracks: []domain.Track{track(9), track(3), track(7)},
	})
	d := NewDraft(repo, nil)

	if err := d.Load(context.Background(), 5); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Dirty() {
		t.Error("Expected freshly loaded draft to be clean")
	}
	res, err := d.Save(context.Background())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Created || res.PlaylistID != 5 {
		t.Errorf("Expected update of playlist 5, got %+v", res)
	}
	if repo.updates != 1 || len(repo.replaces) != 1 {
		t.Fatalf("Expected one update and one replace, got %d/%d", repo.updates, len(repo.replaces))
	}
	assertIDs(t, repo.replaces[0], []int64{9, 3, 7})
}

func TestLoadNewResetsDraft(t *testing.T) {
	repo := newFakeRepo(domain.Playlist{ID: 5, Name: "Morning", Tracks: []domain.Track{track(1)}})
	d := NewDraft(repo, nil)
	if err := d.Load(context.Background(), 5); err != nil {
		t.Fatal(err)
	}

	if err := d.Load(context.Background(), New); err != nil {
		t.Fatal(err)
	}
	if !d.IsNew() || len(d.Items()) != 0 {
		t.Errorf("Expected empty new draft, got id=%d items=%d", d.PlaylistID(), len(d.Items()))
	}
	if d.Name() != domain.DefaultPlaylistName || d.Color() != domain.DefaultPlaylistColor {
		t.Errorf("Expected defaults, got %q %q", d.Name(), d.Color())
	}
}

func TestLoadFailureFallsBackToEmpty(t *testing.T) {
	repo := newFakeRepo(domain.Playlist{ID: 5, Name: "Morning", Tracks: []domain.Track{track(1)}})
	d := NewDraft(repo, nil)
	if err := d.Load(context.Background(), 5); err != nil {
		t.Fatal(err)
	}

	if err := d.Load(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(d.Items()) != 0 || d.Name() != domain.DefaultPlaylistName {
		t.Errorf("Expected no leftovers from playlist 5, got %d items named %q", len(d.Items()), d.Name())
	}
}

func TestStaleLoadDiscarded(t *testing.T) {
	repo := newFakeRepo(
		domain.Playlist{ID: 1, Name: "Old", Tracks: []domain.Track{track(10)}},
		domain.Playlist{ID: 2, Name: "Current", Tracks: []domain.Track{track(20)}},
	)
	gate := make(chan struct{})
	repo.gate = map[int64]chan struct{}{1: gate}
	d := NewDraft(repo, nil)

	done := make(chan error)
	go func() { done <- d.Load(context.Background(), 1) }()

	// wait until the first load is parked on the gate
	for !d.Busy() {
		runtime.Gosched()
	}
	if err := d.Load(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	close(gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if d.PlaylistID() != 2 || d.Name() != "Current" {
		t.Errorf("Expected playlist 2 to win, got %d %q", d.PlaylistID(), d.Name())
	}
	assertIDs(t, d.TrackIDs(), []int64{20})
}

func TestDiscardDropsEditsAndSupersedesLoad(t *testing.T) {
	repo := newFakeRepo(domain.Playlist{ID: 1, Name: "Late", Tracks: []domain.Track{track(10)}})
	gate := make(chan struct{})
	repo.gate = map[int64]chan struct{}{1: gate}
	d := NewDraft(repo, nil)
	d.AddTrack(track(3))

	done := make(chan error)
	go func() { done <- d.Load(context.Background(), 1) }()
	for !d.Busy() {
		runtime.Gosched()
	}
	d.Discard()
	close(gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if !d.IsNew() || d.Dirty() || d.Busy() {
		t.Errorf("Expected clean new draft, got id=%d dirty=%v busy=%v", d.PlaylistID(), d.Dirty(), d.Busy())
	}
	assertIDs(t, d.TrackIDs(), nil)
}

func TestCreateSave(t *testing.T) {
	repo := newFakeRepo()
	d := NewDraft(repo, nil)
	d.Rename("Night Shift")
	d.AddTrack(track(1))
	d.AddTrack(track(2))

	res, err := d.Save(context.Background())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !res.Created || res.PlaylistID == New || res.TotalDuration != 120 {
		t.Errorf("Unexpected result %+v", res)
	}
	if d.PlaylistID() != res.PlaylistID || d.Dirty() {
		t.Errorf("Expected draft to adopt id %d and be clean", res.PlaylistID)
	}
	if repo.updates != 0 {
		t.Errorf("Expected no metadata update in create mode, got %d", repo.updates)
	}
	assertIDs(t, repo.replaces[0], []int64{1, 2})
}

func TestCreateThenTrackFailureAdoptsID(t *testing.T) {
	repo := newFakeRepo()
	repo.replaceErr = domain.ErrServerOffline
	d := NewDraft(repo, nil)
	d.AddTrack(track(1))

	_, err := d.Save(context.Background())
	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("Expected *SaveError, got %v", err)
	}
	if !saveErr.Created || saveErr.TracksErr == nil || saveErr.MetaErr != nil {
		t.Errorf("Expected create ok and track order failed, got %+v", saveErr)
	}
	if !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("Expected wrapped ErrServerOffline, got %v", err)
	}
	if len(d.Items()) != 1 {
		t.Error("Expected draft items kept after failure")
	}

	// retry updates the created playlist instead of creating another
	repo.replaceErr = nil
	res, err := d.Save(context.Background())
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if res.Created || repo.creates != 1 {
		t.Errorf("Expected a single create, got %d (result %+v)", repo.creates, res)
	}
}

func TestEditSavePartialFailure(t *testing.T) {
	repo := newFakeRepo(domain.Playlist{ID: 5, Name: "Morning", Tracks: []domain.Track{track(1)}})
	repo.updateErr = &domain.APIError{Status: 400, Message: "bad name"}
	d := NewDraft(repo, nil)
	if err := d.Load(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	d.AddTrack(track(2))

	_, err := d.Save(context.Background())
	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("Expected *SaveError, got %v", err)
	}
	if saveErr.MetaErr == nil || saveErr.TracksErr != nil {
		t.Errorf("Expected only metadata to fail, got %+v", saveErr)
	}
	if !domain.IsRejected(err) {
		t.Error("Expected rejection to be classified")
	}
	if !d.Dirty() {
		t.Error("Expected draft to stay dirty after failed save")
	}
	assertIDs(t, d.TrackIDs(), []int64{1, 2})
}
