package player

import (
	"context"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// MediaElement is the audio output a Session drives. Implementations must
// tolerate Play being refused (no audio device, player missing): the
// Session then keeps the track loaded but paused.
type MediaElement interface {
	// Load replaces the current source and leaves it paused at zero.
	Load(ctx context.Context, track domain.Track) error
	Play() error
	Pause()
	Seek(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	// SetVolume takes a linear level in [0, 1].
	SetVolume(v float64)
	// SetOnEnded registers the callback fired when the source runs out.
	// It may be called from any goroutine.
	SetOnEnded(fn func())
	Close() error
}
