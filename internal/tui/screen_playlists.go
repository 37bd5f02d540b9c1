package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/search"
	"github.com/mmcdole/onair/internal/tui/components"
	"github.com/mmcdole/onair/internal/tui/styles"
)

type playlistsScreen struct {
	list       *components.ListColumn[domain.Playlist]
	preview    *components.ListColumn[domain.Track]
	focusRight bool
	previewID  int64
}

func newPlaylistsScreen() *playlistsScreen {
	list := components.NewListColumn("Playlists", renderPlaylistRow, filterPlaylists)
	list.SetEmptyText("No playlists yet, press n to create one")
	list.SetFocused(true)
	preview := components.NewListColumn("Tracks", renderTrackRow, nil)
	preview.SetEmptyText("No tracks")
	return &playlistsScreen{list: list, preview: preview}
}

func (s *playlistsScreen) reset() {
	s.list.ClearFilter()
	s.list.SetItems(nil)
	s.preview.SetItems(nil)
	s.previewID = 0
	s.focusRight = false
}

func (s *playlistsScreen) setFocusRight(right bool) {
	s.focusRight = right
	s.list.SetFocused(!right)
	s.preview.SetFocused(right)
}

// filterPlaylists maps fuzzy name matches back to list positions
func filterPlaylists(query string, items []domain.Playlist) []int {
	pos := make(map[int64]int, len(items))
	for i, p := range items {
		pos[p.ID] = i
	}
	results := search.Playlists(query, items)
	idx := make([]int, 0, len(results))
	for _, r := range results {
		idx = append(idx, pos[r.Playlist.ID])
	}
	return idx
}

func renderPlaylistRow(p domain.Playlist, selected bool, width int) string {
	color := lipgloss.Color(p.DisplayColor())
	dim := styles.DimGray
	dur := p.FormattedDuration()
	return styles.RenderListRow([]styles.RowPart{
		{Text: "■ ", Foreground: &color},
		{Text: styles.Pad(p.Name, max(6, width-len(dur)-5)) + " "},
		{Text: dur, Foreground: &dim},
	}, selected, width)
}

// syncPreview loads the tracks of the highlighted playlist if it changed
func (m *Model) syncPreview() tea.Cmd {
	p, ok := m.lists.list.Selected()
	if !ok {
		m.lists.previewID = 0
		m.lists.preview.SetItems(nil)
		return nil
	}
	if p.ID == m.lists.previewID {
		return nil
	}
	m.lists.previewID = p.ID
	m.lists.preview.SetTitle(p.Name)
	m.lists.preview.SetItems(nil)
	m.lists.preview.SetLoading(true, m.frame)
	return LoadPlaylistPreviewCmd(m.svc.Playlists, p.ID)
}

func (m *Model) updatePlaylists(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case PlaylistsLoadedMsg:
		m.doneLoading()
		selected, _ := m.lists.list.Selected()
		m.lists.list.SetItems(msg.Playlists)
		for i, p := range m.lists.list.Visible() {
			if p.ID == selected.ID {
				m.lists.list.SetCursor(i)
				break
			}
		}
		m.lists.previewID = 0
		return m.syncPreview(), true

	case PlaylistPreviewMsg:
		if msg.PlaylistID != m.lists.previewID {
			return nil, true
		}
		m.lists.preview.SetLoading(false, m.frame)
		m.lists.preview.SetItems(msg.Tracks)
		return nil, true

	case PlaylistDeletedMsg:
		m.doneLoading()
		var kept []domain.Playlist
		for _, p := range m.lists.list.Items() {
			if p.ID != msg.PlaylistID {
				kept = append(kept, p)
			}
		}
		m.lists.list.SetItems(kept)
		m.sched.playlistsLoaded = false
		status := m.setStatus(fmt.Sprintf("Deleted %q", msg.Name), false)
		return tea.Batch(status, m.syncPreview()), true
	}
	return nil, false
}

func (m *Model) playlistsKey(msg tea.KeyMsg) tea.Cmd {
	s := m.lists
	if s.focusRight {
		switch {
		case s.preview.HandlesKey(msg):
			return s.preview.Update(msg)
		case key.Matches(msg, Keys.Left, Keys.Tab, Keys.Escape):
			s.setFocusRight(false)
		case key.Matches(msg, Keys.Enter):
			if t, ok := s.preview.Selected(); ok && m.svc.Player != nil {
				return PlayCmd(m.svc.Player, t, s.preview.Items())
			}
		}
		return nil
	}

	if s.list.HandlesKey(msg) {
		cmd := s.list.Update(msg)
		return tea.Batch(cmd, m.syncPreview())
	}

	switch {
	case key.Matches(msg, Keys.Filter):
		s.list.ToggleFilter()
	case key.Matches(msg, Keys.Escape):
		if s.list.IsFiltering() {
			s.list.ClearFilter()
			return m.syncPreview()
		}
	case key.Matches(msg, Keys.Right, Keys.Tab):
		if s.list.ItemCount() > 0 {
			s.setFocusRight(true)
		}
	case key.Matches(msg, Keys.Enter, Keys.Edit):
		if p, ok := s.list.Selected(); ok {
			return m.openBuilder(p.ID)
		}
	case key.Matches(msg, Keys.NewPlaylist):
		return m.openBuilder(playlist.New)
	case key.Matches(msg, Keys.Refresh):
		m.loading++
		m.svc.Playlists.InvalidatePlaylists()
		return LoadPlaylistsCmd(m.svc.Playlists, true)
	case key.Matches(msg, Keys.Delete):
		p, ok := s.list.Selected()
		if !ok {
			return nil
		}
		m.confirm = &confirmation{
			prompt: "Delete playlist?",
			detail: fmt.Sprintf("%q will be removed from the station.", p.Name),
			onYes: func(m *Model) tea.Cmd {
				m.loading++
				return DeletePlaylistCmd(m.svc.Playlists, p)
			},
		}
	}
	return nil
}

func (m Model) renderPlaylists() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.lists.list.View(), m.lists.preview.View())
}
