package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/domain"
)

// EventRelay adapts service callbacks to a channel for Bubble Tea.
// Callbacks arrive on whatever goroutine changed the state.
type EventRelay struct {
	ch chan tea.Msg
}

// NewEventRelay creates a relay buffering up to size messages.
func NewEventRelay(size int) *EventRelay {
	return &EventRelay{ch: make(chan tea.Msg, size)}
}

// Events is read by WaitForEventCmd.
func (r *EventRelay) Events() <-chan tea.Msg {
	return r.ch
}

// OnSession forwards a session change. Session changes are never dropped.
func (r *EventRelay) OnSession(s domain.Session) {
	msg := SessionChangedMsg{Session: s}
	select {
	case r.ch <- msg:
	default:
		go func() { r.ch <- msg }()
	}
}

// OnPlayback forwards a player transition (non-blocking if full).
func (r *EventRelay) OnPlayback(state domain.PlaybackState) {
	select {
	case r.ch <- PlaybackChangedMsg{State: state}:
	default:
	}
}
