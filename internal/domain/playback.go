package domain

import "time"

// PlaybackState is a snapshot of the local preview player.
type PlaybackState struct {
	Current  *Track
	Queue    []Track
	Index    int // position of Current in Queue, -1 when nothing is loaded
	Playing  bool
	Volume   float64
	Position time.Duration
	Duration time.Duration
}

// Progress returns position/duration clamped to [0, 1].
func (s PlaybackState) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// HasNext reports whether a following entry exists in the queue.
func (s PlaybackState) HasNext() bool {
	return s.Index >= 0 && s.Index < len(s.Queue)-1
}
