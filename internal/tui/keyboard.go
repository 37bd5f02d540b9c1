package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/search"
	"github.com/mmcdole/onair/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.confirm != nil {
		switch {
		case key.Matches(msg, Keys.Confirm):
			c := m.confirm
			m.confirm = nil
			cmd := c.onYes(&m)
			return m, cmd
		case key.Matches(msg, Keys.Deny):
			m.confirm = nil
		}
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	// A list filter being typed owns every key
	if m.capturingInput() {
		cmd := m.handleScreenKey(msg)
		return m, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, Keys.Dashboard, Keys.Library, Keys.Playlists, Keys.Schedule):
		cmd := m.navigate(tabs[tabIndex(msg)])
		return m, cmd

	case key.Matches(msg, Keys.Logout):
		m.confirm = &confirmation{
			prompt: "Log out?",
			detail: "You will need to log in again to manage the station.",
			onYes: func(m *Model) tea.Cmd {
				m.loggingOut = true
				return LogoutCmd(m.svc.Sessions)
			},
		}
		return m, nil

	case key.Matches(msg, Keys.PlayPause):
		if m.svc.Player != nil && m.playback.Current != nil {
			m.svc.Player.TogglePause()
			return m, nil
		}
	case key.Matches(msg, Keys.NextTrack):
		if m.svc.Player != nil {
			return m, SkipCmd(m.svc.Player, true)
		}
	case key.Matches(msg, Keys.PrevTrack):
		if m.svc.Player != nil {
			return m, SkipCmd(m.svc.Player, false)
		}
	case key.Matches(msg, Keys.VolumeUp):
		if m.svc.Player != nil {
			m.svc.Player.SetVolume(m.svc.Player.Volume() + volumeStep)
		}
		return m, nil
	case key.Matches(msg, Keys.VolumeDown):
		if m.svc.Player != nil {
			m.svc.Player.SetVolume(m.svc.Player.Volume() - volumeStep)
		}
		return m, nil
	}

	cmd := m.handleScreenKey(msg)
	return m, cmd
}

// tabIndex maps a screen key to its position in tabs
func tabIndex(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, Keys.Library):
		return 1
	case key.Matches(msg, Keys.Playlists):
		return 2
	case key.Matches(msg, Keys.Schedule):
		return 3
	}
	return 0
}

// capturingInput reports whether the current screen has a text input
// focused that must receive keys before the global bindings.
func (m Model) capturingInput() bool {
	switch m.screen {
	case ScreenLibrary:
		return m.lib.list.IsFilterTyping()
	case ScreenPlaylists:
		return m.lists.list.IsFilterTyping()
	case ScreenSchedule:
		return m.sched.sidebar.IsFilterTyping()
	}
	return false
}

// handleScreenKey dispatches to the current screen
func (m *Model) handleScreenKey(msg tea.KeyMsg) tea.Cmd {
	switch m.screen {
	case ScreenDashboard:
		return m.dashboardKey(msg)
	case ScreenLibrary:
		return m.libraryKey(msg)
	case ScreenPlaylists:
		return m.playlistsKey(msg)
	case ScreenBuilder:
		return m.builderKey(msg)
	case ScreenSchedule:
		return m.scheduleKey(msg)
	}
	return nil
}

// routeToModal sends keys to the visible overlay, if any
func (m Model) routeToModal(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	if m.InputModal.IsVisible() {
		purpose := m.InputModal.Purpose()
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			submit := m.submitInput(purpose, m.InputModal.Values())
			return true, m, tea.Batch(cmd, submit)
		}
		// the login form cannot be dismissed
		if purpose == purposeLogin && !m.InputModal.IsVisible() {
			m.showLogin("")
		}
		return true, m, cmd
	}

	if m.screen == ScreenLogin {
		return true, m, nil
	}

	if m.SortModal.IsVisible() {
		handled, selection := m.SortModal.HandleKey(msg.String())
		if selection != nil {
			cmd := m.applySort(*selection)
			return true, m, cmd
		}
		return handled, m, nil
	}

	if m.AddModal.IsVisible() {
		handled, confirmed := m.AddModal.HandleKeyMsg(msg)
		if confirmed {
			chosen := m.AddModal.Chosen()
			if len(chosen) == 0 {
				cmd := m.setStatus("Already in every selected playlist", false)
				return true, m, cmd
			}
			m.loading++
			return true, m, AddToPlaylistsCmd(m.svc.Playlists, m.AddModal.Track(), chosen)
		}
		return handled, m, nil
	}

	if m.QuickAdd.IsVisible() {
		var (
			cmd    tea.Cmd
			picked bool
		)
		m.QuickAdd, cmd, picked = m.QuickAdd.Update(msg)
		if picked {
			if t, ok := m.QuickAdd.Selected(); ok {
				m.QuickAdd.Hide()
				added := m.addToDraft(t)
				return true, m, tea.Batch(cmd, added)
			}
		}
		if m.QuickAdd.QueryChanged() {
			m.QuickAdd.SetResults(search.QuickPick(m.QuickAdd.Query(), m.catalog(), components.QuickAddResults))
		}
		return true, m, cmd
	}

	return false, m, nil
}

// submitInput handles a submitted form by purpose
func (m *Model) submitInput(purpose string, values []string) tea.Cmd {
	switch purpose {
	case purposeLogin:
		return m.submitLogin(values)
	case purposeEditTrack:
		m.InputModal.Hide()
		return m.submitTrackEdit(values)
	case purposePlaylistMeta:
		m.InputModal.Hide()
		return m.submitPlaylistMeta(values)
	case purposePlaceAt:
		return m.submitPlacement(values)
	}
	m.InputModal.Hide()
	return nil
}
