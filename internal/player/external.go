package player

import (
	"context"
	"sync"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// StreamLocator resolves stream URLs and the header that authorises them.
type StreamLocator interface {
	StreamURL(trackID int64) string
	AuthHeader() string
}

// ExternalElement plays tracks in a separate player process. The process
// cannot be paused or observed, so position is wall-clock time since launch
// and Pause only stops the clock.
type ExternalElement struct {
	launcher *Launcher
	streams  StreamLocator

	mu      sync.Mutex
	track   *domain.Track
	started time.Time
	offset  time.Duration
	playing bool
	now     func() time.Time
}

// NewExternalElement creates an element that launches l for every track.
func NewExternalElement(l *Launcher, streams StreamLocator) *ExternalElement {
	return &ExternalElement{launcher: l, streams: streams, now: time.Now}
}

func (e *ExternalElement) Load(ctx context.Context, track domain.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.track = &track
	e.offset = 0
	e.playing = false
	return nil
}

func (e *ExternalElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return domain.ErrNothingPlaying
	}
	if e.playing {
		return nil
	}
	if e.offset == 0 {
		if err := e.launchLocked(); err != nil {
			return err
		}
	}
	e.started = e.now()
	e.playing = true
	return nil
}

func (e *ExternalElement) launchLocked() error {
	header := ""
	if h := e.streams.AuthHeader(); h != "" {
		header = "Authorization: " + h
	}
	_, err := e.launcher.Launch(e.streams.StreamURL(e.track.ID), header)
	return err
}

func (e *ExternalElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		e.offset += e.now().Sub(e.started)
		e.playing = false
	}
}

// Seek can only return to the start: a playing track is relaunched, a
// paused one relaunches on the next Play.
func (e *ExternalElement) Seek(time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return domain.ErrNothingPlaying
	}
	e.offset = 0
	if e.playing {
		e.started = e.now()
		return e.launchLocked()
	}
	return nil
}

func (e *ExternalElement) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	pos := e.offset
	if e.playing {
		pos += e.now().Sub(e.started)
	}
	return pos
}

func (e *ExternalElement) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return 0
	}
	return time.Duration(e.track.Duration) * time.Second
}

func (e *ExternalElement) SetVolume(float64) {}
func (e *ExternalElement) SetOnEnded(func()) {}
func (e *ExternalElement) Close() error      { return nil }
