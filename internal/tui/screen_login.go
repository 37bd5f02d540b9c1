package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// Input modal purposes
const (
	purposeLogin        = "login"
	purposeEditTrack    = "edit-track"
	purposePlaylistMeta = "playlist-meta"
	purposePlaceAt      = "place-at"
)

func (m *Model) submitLogin(values []string) tea.Cmd {
	if len(values) < 2 {
		return nil
	}
	username := strings.TrimSpace(values[0])
	if username == "" || values[1] == "" {
		return m.setStatus("Enter a username and password", true)
	}
	if m.svc.Sessions == nil {
		return nil
	}
	m.loading++
	return LoginCmd(m.svc.Sessions, username, values[1])
}

// renderLogin draws the backdrop behind the login form
func (m Model) renderLogin(width, height int) string {
	title := styles.LiveBadgeStyle.Render("ON AIR")
	sub := styles.SubtitleStyle.Render("station console")
	if m.opts.Version != "" {
		sub += styles.DimStyle.Render("  " + m.opts.Version)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Center, "", title, sub))
}
