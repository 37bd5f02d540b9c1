package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// PlaylistModal picks the playlists a track should be appended to.
// Playlists already holding the track are shown checked and locked.
type PlaylistModal struct {
	visible    bool
	track      domain.Track
	playlists  []domain.Playlist
	membership map[int64]bool // playlist ID -> already contains the track
	pending    map[int64]bool // playlist ID -> add on confirm

	cursor int
	width  int
}

// NewPlaylistModal creates a new playlist modal
func NewPlaylistModal() PlaylistModal {
	return PlaylistModal{
		membership: make(map[int64]bool),
		pending:    make(map[int64]bool),
	}
}

// Show displays the modal for track
func (m *PlaylistModal) Show(playlists []domain.Playlist, membership map[int64]bool, track domain.Track) {
	m.visible = true
	m.playlists = playlists
	m.track = track
	m.membership = membership
	if m.membership == nil {
		m.membership = make(map[int64]bool)
	}
	m.pending = make(map[int64]bool)
	m.cursor = 0
}

// Hide dismisses the modal
func (m *PlaylistModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m *PlaylistModal) IsVisible() bool {
	return m.visible
}

// Track returns the track being added
func (m *PlaylistModal) Track() domain.Track {
	return m.track
}

// SetSize sets the available screen width
func (m *PlaylistModal) SetSize(width int) {
	m.width = width
}

// Chosen returns the playlists ticked for addition, in ID order
func (m *PlaylistModal) Chosen() []int64 {
	var ids []int64
	for id, add := range m.pending {
		if add && !m.membership[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *PlaylistModal) toggle() {
	if m.cursor >= len(m.playlists) {
		return
	}
	id := m.playlists[m.cursor].ID
	if m.membership[id] {
		return
	}
	m.pending[id] = !m.pending[id]
}

// HandleKeyMsg processes a key message, returns (handled, confirmed).
// The modal hides itself on confirm and cancel.
func (m *PlaylistModal) HandleKeyMsg(msg tea.KeyMsg) (handled bool, confirmed bool) {
	if !m.visible {
		return false, false
	}

	switch {
	case key.Matches(msg, PlaylistModalKeys.Down):
		if m.cursor < len(m.playlists)-1 {
			m.cursor++
		}
	case key.Matches(msg, PlaylistModalKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, PlaylistModalKeys.Toggle):
		m.toggle()
	case key.Matches(msg, PlaylistModalKeys.Enter):
		// enter on an untouched list adds to the highlighted playlist
		if len(m.Chosen()) == 0 {
			m.toggle()
		}
		m.visible = false
		return true, true
	case key.Matches(msg, PlaylistModalKeys.Escape):
		m.visible = false
	}
	// consume all keys when visible
	return true, false
}

// View renders the playlist modal
func (m *PlaylistModal) View() string {
	if !m.visible {
		return ""
	}

	modalWidth := 44
	if m.width > 0 && m.width < 64 {
		modalWidth = m.width - 10
	}
	rowWidth := modalWidth - 4

	lines := []string{
		styles.ModalTitleStyle.Render("Add to Playlist"),
		styles.DimStyle.Render(styles.Truncate(m.track.Title, rowWidth)),
		"",
	}

	if len(m.playlists) == 0 {
		lines = append(lines, styles.DimStyle.Render("No playlists yet"))
	}
	for i, pl := range m.playlists {
		member := m.membership[pl.ID]
		checkbox := "[ ]"
		if member || m.pending[pl.ID] {
			checkbox = "[x]"
		}
		line := styles.Pad(checkbox+" "+styles.Swatch(pl.DisplayColor())+" "+pl.Name, rowWidth)

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		switch {
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		case member:
			style = lipgloss.NewStyle().Foreground(styles.DimGray)
		case m.pending[pl.ID]:
			style = lipgloss.NewStyle().Foreground(styles.OnAirRed)
		}
		lines = append(lines, "  "+style.Render(line))
	}

	lines = append(lines, "", styles.DimStyle.Render(HintLine(PlaylistModalKeys.ShortHelp())))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OnAirRed).
		Background(styles.SlateDark).
		Padding(1, 2).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))
}
