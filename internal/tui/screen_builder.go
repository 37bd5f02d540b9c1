package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/dnd"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/tui/components"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// builderHeaderHeight is the playlist summary above the track list
const builderHeaderHeight = 4

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type builderScreen struct {
	draft   *playlist.Draft
	list    *components.ListColumn[domain.Track]
	drag    dnd.Gesture[int64, int]
	loading bool
	saving  bool
}

func newBuilderScreen(repo domain.PlaylistRepository, logger *slog.Logger) *builderScreen {
	b := &builderScreen{draft: playlist.NewDraft(repo, logger)}
	b.list = components.NewListColumn("Tracks", b.renderRow, nil)
	b.list.SetEmptyText("Press a to add tracks")
	b.list.SetFocused(true)
	return b
}

func (b *builderScreen) renderRow(t domain.Track, selected bool, width int) string {
	marker := "  "
	var fg *lipgloss.Color
	if b.drag.Active() && b.drag.Item() == t.ID {
		marker = "≡ "
		accent := styles.OnAirRed
		fg = &accent
	}
	dim := styles.DimGray
	dur := t.FormattedDuration()
	rest := max(10, width-len(dur)-6)
	return styles.RenderListRow([]styles.RowPart{
		{Text: marker, Foreground: fg},
		{Text: styles.Pad(t.Title+" · "+t.DisplayArtist(), rest) + " ", Foreground: fg},
		{Text: dur, Foreground: &dim},
	}, selected, width)
}

// sync redraws the list from the draft
func (b *builderScreen) sync() {
	b.list.SetItems(b.draft.Items())
}

// discard throws the edit session away
func (b *builderScreen) discard() {
	b.drag.Cancel()
	b.draft.Discard()
	b.sync()
}

// dragPreview is the draft order with the carried track moved to the cursor
func dragPreview(items []domain.Track, from, to int) []domain.Track {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return items
	}
	out := make([]domain.Track, 0, len(items))
	moved := items[from]
	for i, t := range items {
		if i != from {
			out = append(out, t)
		}
	}
	out = append(out[:to], append([]domain.Track{moved}, out[to:]...)...)
	return out
}

// openBuilder starts editing a playlist, or a new one for playlist.New
func (m *Model) openBuilder(id int64) tea.Cmd {
	m.build.drag.Cancel()
	m.build.loading = true
	m.build.list.SetCursor(0)
	m.screen = ScreenBuilder
	m.updateLayout()
	return LoadDraftCmd(m.build.draft, id)
}

// addToDraft appends a quick-add pick
func (m *Model) addToDraft(t domain.Track) tea.Cmd {
	if !m.build.draft.AddTrack(t) {
		return m.setStatus(fmt.Sprintf("%q is already in the playlist", t.Title), false)
	}
	m.build.sync()
	m.build.list.SetCursor(m.build.list.ItemCount() - 1)
	return nil
}

func (m *Model) updateBuilder(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case DraftLoadedMsg:
		if errors.Is(msg.Err, playlist.ErrSuperseded) {
			return nil, true
		}
		m.build.loading = false
		m.build.sync()
		if msg.Err != nil {
			cmd := m.switchTo(ScreenPlaylists)
			return tea.Batch(cmd, errCmd(msg.Err, "opening playlist")), true
		}
		return nil, true

	case DraftSavedMsg:
		m.build.saving = false
		if m.svc.Playlists != nil {
			m.svc.Playlists.InvalidatePlaylists()
		}
		m.sched.playlistsLoaded = false
		if msg.Err != nil {
			var saveErr *playlist.SaveError
			if errors.As(msg.Err, &saveErr) && (domain.IsAuth(saveErr.MetaErr) || domain.IsAuth(saveErr.TracksErr)) {
				return errCmd(domain.ErrAuthFailed, "saving playlist"), true
			}
			return m.setStatus(msg.Err.Error(), true), true
		}
		verb := "Saved"
		if msg.Result.Created {
			verb = "Created"
		}
		return m.setStatus(fmt.Sprintf("%s %q (%s)", verb, m.build.draft.Name(),
			domain.FormatDuration(msg.Result.TotalDuration)), false), true
	}
	return nil, false
}

func (m *Model) builderKey(msg tea.KeyMsg) tea.Cmd {
	b := m.build
	if b.loading {
		if key.Matches(msg, Keys.Escape, Keys.Back) {
			return m.navigate(ScreenPlaylists)
		}
		return nil
	}

	if b.drag.Active() {
		switch {
		case key.Matches(msg, Keys.Up, Keys.Down):
			b.list.Update(msg)
			b.drag.Move(b.list.Cursor())
			b.list.SetItems(dragPreview(b.draft.Items(), b.drag.Origin(), b.drag.Position()))
		case key.Matches(msg, Keys.Grab, Keys.Enter):
			drop, ok := b.drag.Drop()
			if !ok {
				return nil
			}
			if err := b.draft.Reorder(drop.From, drop.To); err != nil {
				b.sync()
				return m.setStatus(err.Error(), true)
			}
			b.sync()
			b.list.SetCursor(drop.To)
		case key.Matches(msg, Keys.Escape):
			from := b.drag.Origin()
			b.drag.Cancel()
			b.sync()
			b.list.SetCursor(from)
		}
		return nil
	}

	if b.list.HandlesKey(msg) {
		return b.list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Escape, Keys.Back):
		return m.navigate(ScreenPlaylists)
	case key.Matches(msg, Keys.QuickAdd):
		m.QuickAdd.Show(b.draft.Contains)
		m.QuickAdd.SetSize(m.Width, m.Height)
		if len(m.catalog()) == 0 {
			return tea.Batch(m.setStatus("Catalog not loaded yet, syncing", false), m.startCatalogSync(false))
		}
	case key.Matches(msg, Keys.Delete):
		if t, ok := b.list.Selected(); ok && b.draft.RemoveTrack(t.ID) {
			b.sync()
		}
	case key.Matches(msg, Keys.Grab):
		if t, ok := b.list.Selected(); ok {
			if err := b.drag.Pick(t.ID, b.list.Cursor()); err != nil {
				return m.setStatus(err.Error(), true)
			}
		}
	case key.Matches(msg, Keys.Edit):
		m.InputModal.Show(purposePlaylistMeta, "Playlist details",
			components.Field{Label: "Name", Value: b.draft.Name()},
			components.Field{Label: "Description", Value: b.draft.Description()},
			components.Field{Label: "Color", Value: b.draft.Color(), Placeholder: domain.DefaultPlaylistColor},
		)
	case key.Matches(msg, Keys.Save):
		if b.saving || b.draft.Busy() {
			return nil
		}
		b.saving = true
		return SaveDraftCmd(b.draft)
	case key.Matches(msg, Keys.Enter):
		if t, ok := b.list.Selected(); ok && m.svc.Player != nil {
			return PlayCmd(m.svc.Player, t, b.draft.Items())
		}
	}
	return nil
}

// playlistMeta validates the details form
func playlistMeta(values []string) (domain.PlaylistMeta, error) {
	var meta domain.PlaylistMeta
	if len(values) < 3 {
		return meta, nil
	}
	meta.Name = strings.TrimSpace(values[0])
	meta.Description = strings.TrimSpace(values[1])
	meta.Color = strings.TrimSpace(values[2])
	if meta.Name == "" {
		return meta, domain.Invalid("name", domain.ErrEmptyName)
	}
	if meta.Color == "" {
		meta.Color = domain.DefaultPlaylistColor
	}
	if !hexColor.MatchString(meta.Color) {
		return meta, domain.Invalid("color", fmt.Errorf("%q is not a #rrggbb color", meta.Color))
	}
	return meta, nil
}

func (m *Model) submitPlaylistMeta(values []string) tea.Cmd {
	meta, err := playlistMeta(values)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.build.draft.Rename(meta.Name)
	m.build.draft.SetDescription(meta.Description)
	m.build.draft.SetColor(meta.Color)
	return nil
}

func (m Model) renderBuilder(width int) string {
	d := m.build.draft
	name := d.Name()
	if d.IsNew() {
		name += styles.DimStyle.Render("  (new)")
	}
	if d.Dirty() {
		name += styles.WarningStyle.Render("  ● unsaved")
	}
	state := ""
	switch {
	case m.build.loading:
		state = styles.Spinner(m.frame) + styles.DimStyle.Render(" loading")
	case m.build.saving:
		state = styles.Spinner(m.frame) + styles.DimStyle.Render(" saving")
	case m.build.drag.Active():
		state = styles.AccentStyle.Render("moving · j/k to place, m to drop, esc to cancel")
	}
	desc := d.Description()
	if desc == "" {
		desc = "No description"
	}
	header := strings.Join([]string{
		styles.Swatch(d.Color()) + " " + styles.TitleStyle.Render(styles.Truncate(name, width-4)),
		styles.SubtitleStyle.Render(styles.Truncate(desc, width-2)),
		styles.DimStyle.Render(fmt.Sprintf("%d tracks · %s", len(d.Items()), domain.FormatDuration(d.TotalDuration()))),
		state,
	}, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.build.list.View())
}
