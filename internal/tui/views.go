package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.confirm != nil {
		return m.renderConfirm()
	}

	width, height := m.contentSize()
	var content string
	switch m.screen {
	case ScreenLogin:
		content = m.renderLogin(width, height)
	case ScreenDashboard:
		content = m.renderDashboard(width, height)
	case ScreenLibrary:
		content = m.renderLibrary()
	case ScreenPlaylists:
		content = m.renderPlaylists()
	case ScreenBuilder:
		content = m.renderBuilder(width)
	case ScreenSchedule:
		content = m.renderSchedule(width, height)
	}
	content = lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderPlayerBar(),
		m.renderFooter(),
	)

	// Overlays
	switch {
	case m.InputModal.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.InputModal.View())
	case m.SortModal.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.SortModal.View())
	case m.AddModal.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.AddModal.View())
	case m.QuickAdd.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Top, m.QuickAdd.View())
	}
	return view
}

// renderHeader draws the screen tabs and the signed-in user
func (m Model) renderHeader() string {
	var tabsView strings.Builder
	for i, s := range tabs {
		label := fmt.Sprintf("%d %s", i+1, s)
		active := m.screen == s || (s == ScreenPlaylists && m.screen == ScreenBuilder)
		if active {
			tabsView.WriteString(styles.ActiveTabStyle.Render(label))
		} else {
			tabsView.WriteString(styles.TabStyle.Render(label))
		}
	}
	left := styles.LiveBadgeStyle.Render("ON AIR") + " " + tabsView.String()

	right := ""
	if m.svc.Sessions != nil {
		if s, ok := m.svc.Sessions.Current(); ok {
			right = styles.DimStyle.Render(s.User.Username + " ")
		}
	}
	gap := max(0, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderPlayerBar draws the preview player
func (m Model) renderPlayerBar() string {
	st := m.playback
	if st.Current == nil {
		return styles.DimStyle.Render(" ■ nothing playing")
	}
	icon := "❚❚"
	if st.Playing {
		icon = "▶"
	}
	times := fmt.Sprintf("%s / %s", formatClock(st.Position), formatClock(st.Duration))
	vol := fmt.Sprintf("vol %3d%%", int(st.Volume*100+0.5))
	queue := ""
	if len(st.Queue) > 1 {
		queue = fmt.Sprintf(" %d/%d", st.Index+1, len(st.Queue))
	}
	label := st.Current.Title + " · " + st.Current.DisplayArtist()
	fixed := 4 + len(times) + len(vol) + len(queue) + 4
	barWidth := max(0, min(30, m.Width/4))
	labelWidth := max(8, m.Width-fixed-barWidth)
	return fmt.Sprintf(" %s %s %s %s %s%s",
		styles.AccentStyle.Render(icon),
		styles.Pad(styles.Truncate(label, labelWidth), labelWidth),
		styles.RenderProgressBar(st.Progress(), barWidth),
		styles.DimStyle.Render(times),
		styles.DimStyle.Render(vol),
		styles.DimStyle.Render(queue),
	)
}

// formatClock renders a position as m:ss
func formatClock(d time.Duration) string {
	return domain.FormatDuration(int(d / time.Second))
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	// Left side: spinner + status when loading or status message active
	var left string
	switch {
	case m.statusMsg != "" && m.statusIsErr:
		left = styles.ErrorStyle.Render(m.statusMsg)
	case m.lib.syncing:
		text := "Syncing catalog..."
		if m.lib.total > 0 {
			text = fmt.Sprintf("Syncing catalog · %d/%d", m.lib.synced, m.lib.total)
		}
		left = styles.Spinner(m.frame) + " " + styles.DimStyle.Render(text)
	case m.loading > 0:
		left = styles.Spinner(m.frame) + " " + styles.DimStyle.Render("Loading...")
	case m.statusMsg != "":
		left = styles.SuccessStyle.Render(m.statusMsg)
	}

	// Center section: hints for the current screen
	center := m.screenHints()

	// Right side: "? help" hint
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	if m.screen == ScreenLogin {
		right = styles.AccentStyle.Render("ctrl+c") + styles.DimStyle.Render(" quit")
	}

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space - just left + right
		gap := max(0, m.Width-leftWidth-rightWidth)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func hint(k, label string) string {
	return styles.AccentStyle.Render(k) + styles.DimStyle.Render(" "+label)
}

func (m Model) screenHints() string {
	var hints []string
	switch m.screen {
	case ScreenLogin:
		hints = []string{hint("tab", "next field"), hint("enter", "log in")}
	case ScreenDashboard:
		hints = []string{hint("r", "refresh")}
	case ScreenLibrary:
		hints = []string{hint("enter", "play"), hint("a", "add to playlist"), hint("e", "edit"), hint("s", "sort")}
	case ScreenPlaylists:
		hints = []string{hint("enter", "edit"), hint("n", "new"), hint("x", "delete")}
	case ScreenBuilder:
		if m.build.drag.Active() {
			hints = []string{hint("m", "drop"), hint("esc", "cancel")}
		} else {
			hints = []string{hint("a", "add"), hint("m", "move"), hint("x", "remove"), hint("e", "details"), hint("C-s", "save")}
		}
	case ScreenSchedule:
		if m.sched.drag.Active() {
			hints = []string{hint("hjkl", "move"), hint("m", "drop"), hint("esc", "cancel")}
		} else {
			hints = []string{hint("m", "pick"), hint("t", "at time"), hint("x", "remove"), hint("[ ]", "week")}
		}
	}
	return strings.Join(hints, "  ")
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
SCREENS                         PLAYER
  1-4        Switch screen        space  Play/pause
  tab        Switch pane          < >    Previous/next track
  j/k        Up/down              + -    Volume
  g/G        First/last item
  /          Filter             BUILDER
  esc        Close / Cancel       a      Quick add track
                                  m      Move track (j/k, m to drop)
LIBRARY                           x      Remove track
  enter      Play                 e      Name, description, color
  a          Add to playlist      C-s    Save
  e          Edit metadata
  s          Sort               SCHEDULE
  r          Re-sync catalog      m      Pick playlist / drop
                                  t      Schedule at a typed time
PLAYLISTS                         x      Remove slot
  enter      Open in builder      [ ] .  Previous/next/this week
  n          New playlist
  x          Delete             OTHER
                                  L      Logout
                                  q      Quit

Press ? or esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderConfirm renders the yes/no modal
func (m Model) renderConfirm() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.ModalTitleStyle.Render(m.confirm.prompt),
		styles.SubtitleStyle.Render(m.confirm.detail),
		"",
		styles.AccentStyle.Render("[Y]")+" Yes      "+styles.AccentStyle.Render("[N]")+" No",
	)
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}
