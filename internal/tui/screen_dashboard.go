package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/dashboard"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/tui/styles"
)

const recentTracksShown = 8

type dashboardScreen struct {
	gen   int // bumped on every visit so stale poll timers stop
	stats *domain.StationStats
}

func newDashboardScreen() *dashboardScreen {
	return &dashboardScreen{}
}

func (m *Model) updateDashboard(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case DashboardLoadedMsg:
		m.dash.stats = msg.Stats
		return nil, true

	case DashboardRefreshMsg:
		if msg.Gen != m.dash.gen || m.screen != ScreenDashboard || !m.loggedIn() {
			return nil, true
		}
		return tea.Batch(LoadDashboardCmd(m.svc.Dashboard), DashboardRefreshCmd(msg.Gen)), true
	}
	return nil, false
}

func (m *Model) dashboardKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, Keys.Refresh) {
		return LoadDashboardCmd(m.svc.Dashboard)
	}
	return nil
}

func (m Model) renderDashboard(width, height int) string {
	stats := m.dash.stats
	if stats == nil && m.svc.Dashboard != nil {
		if last, _, ok := m.svc.Dashboard.Last(); ok {
			stats = last
		}
	}
	sum := dashboard.Summarize(stats, time.Now())

	cardWidth := max(18, (width-4)/4)
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Tracks", fmt.Sprint(sum.TotalTracks), cardWidth),
		statCard("Playlists", fmt.Sprint(sum.TotalPlaylists), cardWidth),
		statCard("Storage", sum.Storage, cardWidth),
		statCard("Uptime", sum.Uptime, cardWidth),
	)

	np := sum.NowPlaying
	badge := styles.OffAirBadgeStyle.Render("OFF AIR")
	if np.Live {
		badge = styles.LiveBadgeStyle.Render("ON AIR")
	}
	nowPlaying := styles.CardStyle.Width(max(20, width-4)).Render(strings.Join([]string{
		badge + "  " + styles.DimStyle.Render(np.PlaylistName),
		styles.TitleStyle.Render(styles.Truncate(np.Title, width-8)),
		styles.SubtitleStyle.Render(styles.Truncate(np.Artist, width-8)),
		styles.DimStyle.Render("remaining ") + styles.AccentStyle.Render(np.Remaining),
	}, "\n"))

	var recent strings.Builder
	recent.WriteString(styles.TitleStyle.Render("Recently added"))
	if len(sum.RecentTracks) == 0 {
		recent.WriteString("\n" + styles.DimStyle.Render("No tracks yet"))
	}
	for i, t := range sum.RecentTracks {
		if i == recentTracksShown {
			break
		}
		line := fmt.Sprintf("%s  %s", styles.Pad(t.Title, max(10, width/2)), t.DisplayArtist())
		recent.WriteString("\n" + styles.Truncate(line, width-4))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(
		lipgloss.JoinVertical(lipgloss.Left, cards, nowPlaying, "", recent.String()))
}

func statCard(label, value string, width int) string {
	return styles.CardStyle.Width(width - 2).Render(
		styles.DimStyle.Render(label) + "\n" + styles.TitleStyle.Render(value))
}
