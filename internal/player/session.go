package player

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// restartThreshold is how far into a track Previous restarts it instead of
// stepping back.
const restartThreshold = 2 * time.Second

// ErrSuperseded is returned when another track was selected while this one
// was still loading.
var ErrSuperseded = errors.New("track selection superseded")

// Session owns what is loaded and playing, independent of any list view.
// It is safe for concurrent use; observers are called without the lock held.
type Session struct {
	element MediaElement
	logger  *slog.Logger

	mu        sync.Mutex
	gen       uint64
	current   *domain.Track
	queue     []domain.Track
	index     int
	playing   bool
	volume    float64
	listeners []func(domain.PlaybackState)
}

// NewSession binds a session to an output element at the given volume.
func NewSession(element MediaElement, volume float64, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{element: element, logger: logger, index: -1, volume: clamp(volume)}
	element.SetVolume(s.volume)
	element.SetOnEnded(func() { s.OnTrackEnded(context.Background()) })
	return s
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// OnChange registers an observer for state changes.
func (s *Session) OnChange(fn func(domain.PlaybackState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify() {
	state := s.State()
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

// State returns a snapshot including the element's position.
func (s *Session) State() domain.PlaybackState {
	s.mu.Lock()
	state := domain.PlaybackState{
		Queue:   append([]domain.Track(nil), s.queue...),
		Index:   s.index,
		Playing: s.playing,
		Volume:  s.volume,
	}
	if s.current != nil {
		cur := *s.current
		state.Current = &cur
	}
	s.mu.Unlock()

	if state.Current != nil {
		state.Position = s.element.Position()
		state.Duration = s.element.Duration()
		if state.Duration <= 0 {
			state.Duration = time.Duration(state.Current.Duration) * time.Second
		}
	}
	return state
}

// Progress is the playback position as a fraction in [0, 1].
func (s *Session) Progress() float64 {
	return s.State().Progress()
}

// Play selects track. If it is already current this only toggles pause.
// A non-nil queue replaces the current one. With a nil queue an empty queue
// is seeded with the track; a non-empty queue is left intact and the cursor
// only moves when the queue holds the track, so Next resumes the old queue.
func (s *Session) Play(ctx context.Context, track domain.Track, queue []domain.Track) error {
	s.mu.Lock()
	if s.current != nil && s.current.ID == track.ID {
		s.mu.Unlock()
		s.TogglePause()
		return nil
	}

	var idx int
	switch {
	case queue != nil:
		s.queue = slices.Clone(queue)
		idx = indexOf(s.queue, track.ID)
		if idx < 0 {
			// caller's queue does not contain the track
			s.queue = append(s.queue, track)
			idx = len(s.queue) - 1
		}
	case len(s.queue) == 0:
		s.queue = []domain.Track{track}
		idx = 0
	default:
		idx = indexOf(s.queue, track.ID)
		if idx < 0 {
			idx = s.index
		}
	}
	gen := s.selectLocked(track, idx)
	s.mu.Unlock()

	return s.load(ctx, track, gen, true)
}

func indexOf(queue []domain.Track, id int64) int {
	for i, t := range queue {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// loadAt makes queue[idx] current and optionally starts it.
func (s *Session) loadAt(ctx context.Context, idx int, autoplay bool) error {
	s.mu.Lock()
	if idx < 0 || idx >= len(s.queue) {
		s.mu.Unlock()
		return domain.ErrIndexOutOfRange
	}
	track := s.queue[idx]
	gen := s.selectLocked(track, idx)
	s.mu.Unlock()

	return s.load(ctx, track, gen, autoplay)
}

// selectLocked makes track current at queue position idx and returns the
// generation its load must still match.
func (s *Session) selectLocked(track domain.Track, idx int) uint64 {
	s.gen++
	s.current = &track
	s.index = idx
	s.playing = false
	return s.gen
}

func (s *Session) load(ctx context.Context, track domain.Track, gen uint64, autoplay bool) error {
	err := s.element.Load(ctx, track)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to load track", "error", err, "trackID", track.ID)
		s.notify()
		return err
	}

	if autoplay {
		s.start()
	}
	s.notify()
	return nil
}

// start asks the element to play; a refusal leaves the track paused.
func (s *Session) start() {
	if err := s.element.Play(); err != nil {
		s.logger.Warn("playback refused, leaving track paused", "error", err)
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
}

// TogglePause flips play state. No-op when nothing is loaded.
func (s *Session) TogglePause() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	playing := s.playing
	s.mu.Unlock()

	if playing {
		s.element.Pause()
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
	} else {
		s.start()
	}
	s.notify()
}

// Next advances to the following queue entry. At the end of the queue
// playback stops with the last track still current.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNothingPlaying
	}
	next := s.index + 1
	atEnd := next >= len(s.queue)
	s.mu.Unlock()

	if atEnd {
		s.element.Pause()
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
		s.notify()
		return nil
	}
	return s.loadAt(ctx, next, true)
}

// Previous restarts the track when more than two seconds have played,
// otherwise steps back one entry. At the head of the queue it restarts.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNothingPlaying
	}
	prev := s.index - 1
	s.mu.Unlock()

	if s.element.Position() > restartThreshold || prev < 0 {
		if err := s.element.Seek(0); err != nil {
			s.logger.Error("failed to restart track", "error", err)
			return err
		}
		s.notify()
		return nil
	}
	return s.loadAt(ctx, prev, true)
}

// OnTrackEnded is wired to the element's end-of-source callback.
func (s *Session) OnTrackEnded(ctx context.Context) {
	if err := s.Next(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Error("failed to advance after track end", "error", err)
	}
}

// SetVolume clamps v to [0, 1] and applies it to the element.
func (s *Session) SetVolume(v float64) {
	v = clamp(v)
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
	s.element.SetVolume(v)
	s.notify()
}

func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Stop pauses and forgets the current track and queue.
func (s *Session) Stop() {
	s.element.Pause()
	s.mu.Lock()
	s.gen++
	s.current = nil
	s.queue = nil
	s.index = -1
	s.playing = false
	s.mu.Unlock()
	s.notify()
}

// Close stops playback and releases the element.
func (s *Session) Close() error {
	s.Stop()
	return s.element.Close()
}
