package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/mmcdole/onair/internal/domain"
)

// outputRate is the rate the speaker is opened at; sources are resampled to it.
const outputRate = beep.SampleRate(44100)

// maxStreamSize caps how much of a track is buffered in memory.
const maxStreamSize = 64 << 20

// SpeakerElement plays station tracks through the system audio device.
// The stream is buffered so Seek works on an HTTP body.
type SpeakerElement struct {
	streams domain.StreamOpener
	logger  *slog.Logger

	initOnce sync.Once
	initErr  error

	mu       sync.Mutex
	opened   bool // audio device initialised
	queued   bool // current source is in the speaker mixer
	gen      uint64
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	level    float64
	onEnded  func()
}

// NewSpeakerElement creates an element reading tracks from streams.
// The audio device is opened lazily on first Play.
func NewSpeakerElement(streams domain.StreamOpener, logger *slog.Logger) *SpeakerElement {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeakerElement{streams: streams, logger: logger, level: 1}
}

// initSpeakerLocked opens the audio device once. Callers hold e.mu.
func (e *SpeakerElement) initSpeakerLocked() error {
	e.initOnce.Do(func() {
		e.initErr = speaker.Init(outputRate, outputRate.N(time.Second/10))
		if e.initErr != nil {
			e.logger.Error("failed to open audio device", "error", e.initErr)
			return
		}
		e.opened = true
	})
	return e.initErr
}

type memStream struct {
	*bytes.Reader
}

func (memStream) Close() error { return nil }

// Load fetches and decodes the track, replacing whatever was loaded.
func (e *SpeakerElement) Load(ctx context.Context, track domain.Track) error {
	body, err := e.streams.OpenStream(ctx, track.ID)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(body, maxStreamSize))
	body.Close()
	if err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}

	streamer, format, err := mp3.Decode(memStream{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("failed to decode track %d: %w", track.ID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseLocked()

	e.gen++
	e.streamer = streamer
	e.format = format
	e.chainLocked()
	e.logger.Debug("loaded track", "trackID", track.ID, "rate", format.SampleRate, "length", format.SampleRate.D(streamer.Len()))
	return nil
}

// chainLocked wraps the streamer in a fresh pause/volume chain. A chain is
// single-use: once its sequence has run out it must be rebuilt.
func (e *SpeakerElement) chainLocked() {
	gen := e.gen
	var source beep.Streamer = e.streamer
	if e.format.SampleRate != outputRate {
		source = beep.Resample(4, e.format.SampleRate, outputRate, e.streamer)
	}
	e.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(source, beep.Callback(func() {
			// runs on the speaker goroutine with the speaker locked
			go e.ended(gen)
		})),
		Paused: true,
	}
	e.vol = &effects.Volume{Streamer: e.ctrl, Base: 2}
	applyLevel(e.vol, e.level)
}

func (e *SpeakerElement) ended(gen uint64) {
	e.mu.Lock()
	fn := e.onEnded
	current := gen == e.gen
	if current {
		e.queued = false
	}
	e.mu.Unlock()
	if current && fn != nil {
		fn()
	}
}

// releaseLocked stops and closes the current source.
func (e *SpeakerElement) releaseLocked() {
	if e.streamer == nil {
		return
	}
	if e.opened {
		speaker.Clear()
	}
	e.queued = false
	e.streamer.Close()
	e.streamer = nil
	e.ctrl = nil
	e.vol = nil
}

// Play unpauses the loaded track, opening the audio device on first use.
func (e *SpeakerElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return domain.ErrNothingPlaying
	}
	if err := e.initSpeakerLocked(); err != nil {
		return err
	}
	if !e.queued {
		e.chainLocked()
		e.ctrl.Paused = false
		speaker.Play(e.vol)
		e.queued = true
		return nil
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (e *SpeakerElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil || !e.opened {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
}

func (e *SpeakerElement) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return domain.ErrNothingPlaying
	}
	n := e.format.SampleRate.N(pos)
	n = max(0, min(n, e.streamer.Len()-1))
	if !e.opened {
		return e.streamer.Seek(n)
	}
	speaker.Lock()
	defer speaker.Unlock()
	return e.streamer.Seek(n)
}

func (e *SpeakerElement) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Position())
}

func (e *SpeakerElement) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len())
}

func (e *SpeakerElement) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = clamp(v)
	if e.vol == nil {
		return
	}
	if !e.opened {
		applyLevel(e.vol, e.level)
		return
	}
	speaker.Lock()
	applyLevel(e.vol, e.level)
	speaker.Unlock()
}

// applyLevel maps a linear level onto the base-2 exponent beep expects.
func applyLevel(vol *effects.Volume, level float64) {
	if level <= 0 {
		vol.Silent = true
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(level)
}

func (e *SpeakerElement) SetOnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *SpeakerElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseLocked()
	return nil
}
