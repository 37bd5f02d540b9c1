package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/library"
	"github.com/mmcdole/onair/internal/search"
	"github.com/mmcdole/onair/internal/tui/components"
	"github.com/mmcdole/onair/internal/tui/styles"
)

type libraryScreen struct {
	list    *components.ListColumn[domain.Track]
	tracks  []domain.Track
	sortKey library.SortKey
	loaded  bool
	syncing bool
	synced  int
	total   int
	editing domain.Track
}

func newLibraryScreen() *libraryScreen {
	list := components.NewListColumn("Library", renderTrackRow, search.TrackIndexes)
	list.SetEmptyText("The catalog is empty")
	list.SetFocused(true)
	return &libraryScreen{list: list}
}

// reset forgets the loaded catalog
func (s *libraryScreen) reset() {
	s.tracks = nil
	s.loaded = false
	s.list.ClearFilter()
	s.list.SetItems(nil)
}

// setTracks replaces the catalog and redraws it in the current order
func (s *libraryScreen) setTracks(tracks []domain.Track) {
	s.tracks = tracks
	s.refresh()
}

func (s *libraryScreen) refresh() {
	s.list.SetItems(library.View(s.tracks, "", s.sortKey))
	s.list.SetTitle(fmt.Sprintf("Library · %d tracks · %s", len(s.tracks), s.sortKey))
}

// renderTrackRow draws title, artist and duration columns
func renderTrackRow(t domain.Track, selected bool, width int) string {
	dur := t.FormattedDuration()
	rest := max(10, width-len(dur)-4)
	titleW := rest * 3 / 5
	artistW := rest - titleW
	dim := styles.DimGray
	return styles.RenderListRow([]styles.RowPart{
		{Text: styles.Pad(t.Title, titleW) + " "},
		{Text: styles.Pad(t.DisplayArtist(), artistW) + " "},
		{Text: dur, Foreground: &dim},
	}, selected, width)
}

// catalog is the cached track list the pickers search
func (m *Model) catalog() []domain.Track {
	if m.lib.loaded {
		return m.lib.tracks
	}
	if m.svc.Catalog != nil {
		if tracks, ok := m.svc.Catalog.GetCachedTracks(); ok {
			return tracks
		}
	}
	return nil
}

func (m *Model) startCatalogSync(force bool) tea.Cmd {
	if m.svc.Library == nil || m.lib.syncing {
		return nil
	}
	if force {
		m.svc.Library.InvalidateCatalog()
	}
	m.lib.syncing = true
	m.lib.synced, m.lib.total = 0, 0
	m.loading++
	return SyncCatalogCmd(m.svc.Library, force)
}

func (m *Model) doneLoading() {
	m.loading = max(0, m.loading-1)
}

func errCmd(err error, context string) tea.Cmd {
	return func() tea.Msg {
		return ErrMsg{Err: err, Context: context}
	}
}

func (m *Model) updateLibrary(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case CatalogSyncMsg:
		if !msg.Done {
			m.lib.synced, m.lib.total = msg.Loaded, msg.Total
			if next, ok := msg.NextCmd.(tea.Cmd); ok {
				return next, true
			}
			return nil, true
		}
		m.lib.syncing = false
		m.doneLoading()
		if msg.Error != nil {
			return errCmd(msg.Error, "syncing catalog"), true
		}
		if tracks, ok := m.svc.Catalog.GetCachedTracks(); ok {
			m.lib.setTracks(tracks)
		}
		m.lib.loaded = true
		if msg.FromCache {
			return nil, true
		}
		return m.setStatus(fmt.Sprintf("Synced %d tracks", msg.Total), false), true

	case TrackUpdatedMsg:
		m.doneLoading()
		for i, t := range m.lib.tracks {
			if t.ID == msg.Track.ID {
				m.lib.tracks[i] = msg.Track
			}
		}
		m.lib.refresh()
		return m.setStatus(fmt.Sprintf("Saved %q", msg.Track.Title), false), true

	case MembershipLoadedMsg:
		m.doneLoading()
		m.AddModal.Show(msg.Playlists, msg.Membership, msg.Track)
		m.AddModal.SetSize(m.Width)
		return nil, true

	case TracksAddedMsg:
		m.doneLoading()
		text := fmt.Sprintf("Added %q to %d playlist(s)", msg.Track.Title, msg.Playlists)
		if msg.Failed > 0 {
			return m.setStatus(fmt.Sprintf("%s, %d failed", text, msg.Failed), true), true
		}
		return m.setStatus(text, false), true
	}
	return nil, false
}

func (m *Model) libraryKey(msg tea.KeyMsg) tea.Cmd {
	list := m.lib.list
	if list.HandlesKey(msg) {
		return list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Filter):
		list.ToggleFilter()
	case key.Matches(msg, Keys.Escape):
		if list.IsFiltering() {
			list.ClearFilter()
		}
	case key.Matches(msg, Keys.Sort):
		m.SortModal.Show(m.lib.sortKey)
	case key.Matches(msg, Keys.Refresh):
		return m.startCatalogSync(true)
	case key.Matches(msg, Keys.Enter):
		if t, ok := list.Selected(); ok && m.svc.Player != nil {
			return PlayCmd(m.svc.Player, t, list.Visible())
		}
	case key.Matches(msg, Keys.Edit):
		if t, ok := list.Selected(); ok {
			m.lib.editing = t
			m.InputModal.Show(purposeEditTrack, "Edit track",
				components.Field{Label: "Title", Value: t.Title},
				components.Field{Label: "Artist", Value: t.Artist},
				components.Field{Label: "Album", Value: t.Album},
				components.Field{Label: "Genre", Value: t.Genre},
			)
		}
	case key.Matches(msg, Keys.AddTo):
		if t, ok := list.Selected(); ok && m.svc.Playlists != nil {
			m.loading++
			return LoadMembershipCmd(m.svc.Playlists, t)
		}
	}
	return nil
}

// applySort reorders the catalog listing
func (m *Model) applySort(k library.SortKey) tea.Cmd {
	m.lib.sortKey = k
	m.lib.refresh()
	m.lib.list.SetCursor(0)
	return nil
}

// trackEdit diffs the submitted form against the original track
func trackEdit(orig domain.Track, values []string) (domain.TrackUpdate, bool, error) {
	var upd domain.TrackUpdate
	if len(values) < 4 {
		return upd, false, nil
	}
	title := strings.TrimSpace(values[0])
	if title == "" {
		return upd, false, domain.Invalid("title", errors.New("cannot be empty"))
	}
	changed := false
	set := func(dst **string, v, old string) {
		v = strings.TrimSpace(v)
		if v != old {
			*dst = &v
			changed = true
		}
	}
	set(&upd.Title, title, orig.Title)
	set(&upd.Artist, values[1], orig.Artist)
	set(&upd.Album, values[2], orig.Album)
	set(&upd.Genre, values[3], orig.Genre)
	return upd, changed, nil
}

func (m *Model) submitTrackEdit(values []string) tea.Cmd {
	upd, changed, err := trackEdit(m.lib.editing, values)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	if !changed {
		return m.setStatus("No changes", false)
	}
	m.loading++
	return UpdateTrackCmd(m.svc.Library, m.lib.editing.ID, upd)
}

func (m Model) renderLibrary() string {
	return m.lib.list.View()
}
