package components

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// ListKeyMap defines key bindings for list navigation
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Filter   key.Binding
}

// DefaultListKeyMap returns the default list key bindings
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first track"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last track"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("C-d", "half page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "show all"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "keep matches"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
	}
}

// PickerKeyMap defines key bindings for the quick-add picker
type PickerKeyMap struct {
	Escape key.Binding
	Enter  key.Binding
	Up     key.Binding
	Down   key.Binding
}

// DefaultPickerKeyMap returns the default picker key bindings
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add to draft"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/C-p", "previous match"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/C-n", "next match"),
		),
	}
}

// PlaylistModalKeyMap defines key bindings for the add-to-playlist modal
type PlaylistModalKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Enter  key.Binding
	Escape key.Binding
}

// DefaultPlaylistModalKeyMap returns the default playlist modal key bindings
func DefaultPlaylistModalKeyMap() PlaylistModalKeyMap {
	return PlaylistModalKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "mark playlist"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "append track"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// SortKeyMap defines key bindings for the catalog sort popup
type SortKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Close  key.Binding
}

// DefaultSortKeyMap returns the default sort popup key bindings
func DefaultSortKeyMap() SortKeyMap {
	return SortKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "reorder catalog"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "s"),
			key.WithHelp("esc", "keep order"),
		),
	}
}

// ShortHelp returns the bindings shown in the picker footer
func (k PickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Escape}
}

// ShortHelp returns the bindings shown in the playlist modal footer
func (k PlaylistModalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Enter, k.Escape}
}

// ShortHelp returns the bindings shown in the sort popup footer
func (k SortKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Choose, k.Close}
}

// HintLine renders bindings as a one-line footer, skipping disabled ones
func HintLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// matchesName reports whether a key name, as given by tea.KeyMsg.String,
// triggers the binding
func matchesName(name string, b key.Binding) bool {
	return b.Enabled() && slices.Contains(b.Keys(), name)
}

// Package-level key map instances
var (
	ListKeys          = DefaultListKeyMap()
	PickerKeys        = DefaultPickerKeyMap()
	PlaylistModalKeys = DefaultPlaylistModalKeyMap()
	SortKeys          = DefaultSortKeyMap()
)
