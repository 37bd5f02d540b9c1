package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

type fakeElement struct {
	mu       sync.Mutex
	loaded   []int64
	playing  bool
	position time.Duration
	volume   float64
	seeks    []time.Duration
	playErr  error
	loadErr  error
	onEnded  func()
	closed   bool
}

func (f *fakeElement) Load(ctx context.Context, track domain.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, track.ID)
	f.playing = false
	f.position = 0
	return nil
}

func (f *fakeElement) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakeElement) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakeElement) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, pos)
	f.position = pos
	return nil
}

func (f *fakeElement) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeElement) Duration() time.Duration { return 0 }

func (f *fakeElement) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

func (f *fakeElement) SetOnEnded(fn func()) { f.onEnded = fn }

func (f *fakeElement) Close() error {
	f.closed = true
	return nil
}

func (f *fakeElement) setPosition(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = d
}

func tracks(ids ...int64) []domain.Track {
	out := make([]domain.Track, len(ids))
	for i, id := range ids {
		out[i] = domain.Track{ID: id, Title: "T", Duration: 180}
	}
	return out
}

func currentID(s *Session) int64 {
	if cur := s.State().Current; cur != nil {
		return cur.ID
	}
	return 0
}

func TestPlaySameTrackToggles(t *testing.T) {
	el := &fakeElement{}
	s := NewSession(el, 1, nil)
	ctx := context.Background()
	q := tracks(1, 2)

	if err := s.Play(ctx, q[0], q); err != nil {
		t.Fatal(err)
	}
	if !s.State().Playing {
		t.Fatal("Expected playing after Play")
	}
	el.setPosition(40 * time.Second)

	if err := s.Play(ctx, q[0], q); err != nil {
		t.Fatal(err)
	}
	if s.State().Playing {
		t.Error("Expected second Play of the same track to pause")
	}
	if len(el.loaded) != 1 {
		t.Errorf("Expected the track not to be reloaded, got loads %v", el.loaded)
	}
	if el.Position() != 40*time.Second {
		t.Error("Expected position kept, track must not restart")
	}
}

func TestPlayQueueRules(t *testing.T) {
	ctx := context.Background()
	el := &fakeElement{}
	s := NewSession(el, 1, nil)

	// nil queue on an empty session seeds it with the track
	if err := s.Play(ctx, tracks(5)[0], nil); err != nil {
		t.Fatal(err)
	}
	if st := s.State(); len(st.Queue) != 1 || st.Index != 0 {
		t.Errorf("Expected single-track queue, got %d at %d", len(st.Queue), st.Index)
	}

	// explicit queue replaces
	q := tracks(1, 2, 3)
	s.Play(ctx, q[1], q)
	if st := s.State(); len(st.Queue) != 3 || st.Index != 1 {
		t.Errorf("Expected queue of 3 at index 1, got %d at %d", len(st.Queue), st.Index)
	}

	// nil queue with a track already queued keeps the queue and moves the cursor
	s.Play(ctx, q[2], nil)
	if st := s.State(); len(st.Queue) != 3 || st.Index != 2 {
		t.Errorf("Expected queue kept at index 2, got %d at %d", len(st.Queue), st.Index)
	}

	// nil queue with an unrelated track leaves the queue intact
	s.Play(ctx, q[0], nil)
	s.Play(ctx, tracks(9)[0], nil)
	st := s.State()
	if currentID(s) != 9 || !st.Playing {
		t.Errorf("Expected track 9 playing, got %d", currentID(s))
	}
	if len(st.Queue) != 3 || st.Queue[0].ID != 1 || st.Queue[2].ID != 3 {
		t.Errorf("Expected queue [1 2 3] kept, got %d entries", len(st.Queue))
	}

	// the old queue resumes where it left off
	if err := s.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if currentID(s) != 2 {
		t.Errorf("Expected Next to resume the queue at track 2, got %d", currentID(s))
	}
}

func TestListenersNotifiedOnPlay(t *testing.T) {
	s := NewSession(&fakeElement{}, 1, nil)
	var first, second int
	s.OnChange(func(domain.PlaybackState) { first++ })
	s.OnChange(func(domain.PlaybackState) { second++ })

	if err := s.Play(context.Background(), tracks(1)[0], nil); err != nil {
		t.Fatal(err)
	}
	if first == 0 || first != second {
		t.Errorf("Expected both observers notified equally, got %d and %d", first, second)
	}
}

func TestTogglePauseWithoutTrack(t *testing.T) {
	s := NewSession(&fakeElement{}, 1, nil)
	s.TogglePause()
	if s.State().Playing {
		t.Error("Expected toggle to be a no-op with nothing loaded")
	}
}

func TestNextStopsAtEnd(t *testing.T) {
	ctx := context.Background()
	el := &fakeElement{}
	s := NewSession(el, 1, nil)
	q := tracks(1, 2)
	s.Play(ctx, q[0], q)

	if err := s.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if currentID(s) != 2 || !s.State().Playing {
		t.Errorf("Expected track 2 playing, got %d", currentID(s))
	}

	if err := s.Next(ctx); err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if currentID(s) != 2 || st.Playing {
		t.Errorf("Expected to stop on track 2, got current %d playing=%v", currentID(s), st.Playing)
	}
	if len(el.loaded) != 2 {
		t.Errorf("Expected no wraparound load, got %v", el.loaded)
	}
}

func TestNextWithoutTrack(t *testing.T) {
	s := NewSession(&fakeElement{}, 1, nil)
	if err := s.Next(context.Background()); !errors.Is(err, domain.ErrNothingPlaying) {
		t.Errorf("Expected ErrNothingPlaying, got %v", err)
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name        string
		elapsed     time.Duration
		startIndex  int
		wantCurrent int64
		wantRestart bool
	}{
		{"restarts after five seconds", 5 * time.Second, 1, 2, true},
		{"steps back within one second", 1 * time.Second, 1, 1, false},
		{"restarts at head of queue", 1 * time.Second, 0, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			el := &fakeElement{}
			s := NewSession(el, 1, nil)
			q := tracks(1, 2, 3)
			s.Play(ctx, q[tt.startIndex], q)
			el.setPosition(tt.elapsed)

			if err := s.Previous(ctx); err != nil {
				t.Fatal(err)
			}
			if currentID(s) != tt.wantCurrent {
				t.Errorf("Expected current %d, got %d", tt.wantCurrent, currentID(s))
			}
			restarted := len(el.seeks) == 1 && el.seeks[0] == 0
			if restarted != tt.wantRestart {
				t.Errorf("Expected restart=%v, got seeks %v", tt.wantRestart, el.seeks)
			}
		})
	}
}

func TestTrackEndedAdvances(t *testing.T) {
	ctx := context.Background()
	el := &fakeElement{}
	s := NewSession(el, 1, nil)
	q := tracks(1, 2)
	s.Play(ctx, q[0], q)

	el.onEnded()
	if currentID(s) != 2 {
		t.Errorf("Expected auto-advance to 2, got %d", currentID(s))
	}
}

func TestRefusedPlaybackStaysPaused(t *testing.T) {
	el := &fakeElement{playErr: errors.New("no audio device")}
	s := NewSession(el, 1, nil)

	if err := s.Play(context.Background(), tracks(1)[0], nil); err != nil {
		t.Fatalf("Expected refusal to be absorbed, got %v", err)
	}
	st := s.State()
	if st.Current == nil || st.Current.ID != 1 {
		t.Fatal("Expected track to stay loaded")
	}
	if st.Playing {
		t.Error("Expected paused after refused playback")
	}
}

func TestLoadFailureSurfaces(t *testing.T) {
	el := &fakeElement{loadErr: domain.ErrServerOffline}
	s := NewSession(el, 1, nil)
	if err := s.Play(context.Background(), tracks(1)[0], nil); !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("Expected ErrServerOffline, got %v", err)
	}
	if s.State().Playing {
		t.Error("Expected not playing after load failure")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.3, 0.3},
		{1.7, 1},
	}
	for _, tt := range tests {
		el := &fakeElement{}
		s := NewSession(el, 0.5, nil)
		s.SetVolume(tt.in)
		if s.Volume() != tt.want || el.volume != tt.want {
			t.Errorf("SetVolume(%v): Expected %v, got session=%v element=%v", tt.in, tt.want, s.Volume(), el.volume)
		}
	}
}

func TestObserverNotified(t *testing.T) {
	s := NewSession(&fakeElement{}, 1, nil)
	var states []domain.PlaybackState
	s.OnChange(func(st domain.PlaybackState) { states = append(states, st) })

	s.Play(context.Background(), tracks(1)[0], nil)
	s.TogglePause()

	if len(states) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(states))
	}
	if !states[0].Playing || states[1].Playing {
		t.Errorf("Expected playing then paused, got %v then %v", states[0].Playing, states[1].Playing)
	}
}

func TestProgressFromDeclaredDuration(t *testing.T) {
	el := &fakeElement{}
	s := NewSession(el, 1, nil)
	s.Play(context.Background(), tracks(1)[0], nil)
	el.setPosition(90 * time.Second)

	if p := s.Progress(); p != 0.5 {
		t.Errorf("Expected progress 0.5 of a 180s track, got %v", p)
	}
}
