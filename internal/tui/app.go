package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/dashboard"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/library"
	"github.com/mmcdole/onair/internal/player"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/schedule"
	"github.com/mmcdole/onair/internal/session"
	"github.com/mmcdole/onair/internal/tui/components"
)

// Screen is a top-level route
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenLibrary
	ScreenPlaylists
	ScreenBuilder
	ScreenSchedule
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenDashboard:
		return "Dashboard"
	case ScreenLibrary:
		return "Library"
	case ScreenPlaylists:
		return "Playlists"
	case ScreenBuilder:
		return "Builder"
	case ScreenSchedule:
		return "Schedule"
	default:
		return "Unknown"
	}
}

// ParseScreen maps a configured screen name to a route, defaulting to
// the dashboard. The login and builder screens cannot be a default.
func ParseScreen(name string) Screen {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "library", "tracks":
		return ScreenLibrary
	case "playlists":
		return ScreenPlaylists
	case "schedule", "calendar":
		return ScreenSchedule
	default:
		return ScreenDashboard
	}
}

// tabs are the screens reachable from the header, in key order
var tabs = []Screen{ScreenDashboard, ScreenLibrary, ScreenPlaylists, ScreenSchedule}

const (
	tickInterval   = 250 * time.Millisecond
	statusDuration = 3 * time.Second
	errorDuration  = 6 * time.Second
	volumeStep     = 0.05
)

// Services are the application services the screens drive
type Services struct {
	Sessions  *session.Manager
	Dashboard *dashboard.Service
	Library   *library.Service
	Catalog   *library.Queries
	Playlists *playlist.Service
	Drafts    domain.PlaylistRepository
	Planner   *schedule.Planner
	Player    *player.Session
	Logger    *slog.Logger
}

// Options are the UI settings
type Options struct {
	DefaultScreen    string
	WeekStartsMonday bool
	ServerURL        string
	Version          string
}

// confirmation is a yes/no question guarding a destructive action
type confirmation struct {
	prompt string
	detail string
	onYes  func(m *Model) tea.Cmd
}

// Model is the main Bubble Tea model for the application
type Model struct {
	svc    Services
	opts   Options
	relay  *EventRelay
	logger *slog.Logger

	Ready  bool
	Width  int
	Height int

	screen      Screen
	afterLogin  Screen
	showHelp    bool
	confirm     *confirmation
	loggingOut  bool
	frame       int
	playback    domain.PlaybackState
	InputModal  components.InputModal
	SortModal   components.SortModal
	AddModal    components.PlaylistModal
	QuickAdd    components.QuickAdd
	statusMsg   string
	statusIsErr bool
	statusSeq   int
	loading     int

	dash  *dashboardScreen
	lib   *libraryScreen
	lists *playlistsScreen
	build *builderScreen
	sched *scheduleScreen
}

// NewModel creates a new application model. The relay receives session
// and playback callbacks; the caller registers it with the services.
func NewModel(svc Services, opts Options, relay *EventRelay) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if relay == nil {
		relay = NewEventRelay(64)
	}
	m := Model{
		svc:        svc,
		opts:       opts,
		relay:      relay,
		logger:     logger,
		afterLogin: ParseScreen(opts.DefaultScreen),
		InputModal: components.NewInputModal(),
		SortModal:  components.NewSortModal(),
		AddModal:   components.NewPlaylistModal(),
		QuickAdd:   components.NewQuickAdd(),
		dash:       newDashboardScreen(),
		lib:        newLibraryScreen(),
		lists:      newPlaylistsScreen(),
		build:      newBuilderScreen(svc.Drafts, logger),
		sched:      newScheduleScreen(opts.WeekStartsMonday),
	}
	m.screen = ScreenLogin
	if m.loggedIn() {
		m.screen = m.afterLogin
	} else {
		m.showLogin("")
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		WaitForEventCmd(m.relay.Events()),
		TickCmd(tickInterval),
	}
	if m.screen != ScreenLogin {
		cmds = append(cmds, m.enterScreen(m.screen))
	}
	return tea.Batch(cmds...)
}

func (m Model) loggedIn() bool {
	return m.svc.Sessions != nil && m.svc.Sessions.LoggedIn()
}

// Screen returns the current route
func (m Model) Screen() Screen {
	return m.screen
}

// navigate switches route behind the auth gate: without a session every
// route lands on the login screen and is taken after login.
func (m *Model) navigate(to Screen) tea.Cmd {
	if to == ScreenLogin {
		return m.showLogin("")
	}
	if !m.loggedIn() {
		m.afterLogin = to
		return m.showLogin("")
	}
	if m.screen == ScreenBuilder && to != ScreenBuilder && m.build.draft.Dirty() {
		m.confirm = &confirmation{
			prompt: "Discard changes?",
			detail: fmt.Sprintf("%q has unsaved changes.", m.build.draft.Name()),
			onYes: func(m *Model) tea.Cmd {
				m.build.discard()
				return m.switchTo(to)
			},
		}
		return nil
	}
	return m.switchTo(to)
}

func (m *Model) switchTo(to Screen) tea.Cmd {
	if m.screen == to {
		return nil
	}
	m.screen = to
	m.updateLayout()
	return m.enterScreen(to)
}

// enterScreen returns the loads a screen needs when it becomes current
func (m *Model) enterScreen(s Screen) tea.Cmd {
	switch s {
	case ScreenDashboard:
		m.dash.gen++
		return tea.Batch(LoadDashboardCmd(m.svc.Dashboard), DashboardRefreshCmd(m.dash.gen))
	case ScreenLibrary:
		if !m.lib.loaded {
			return m.startCatalogSync(false)
		}
	case ScreenPlaylists:
		m.loading++
		return LoadPlaylistsCmd(m.svc.Playlists, false)
	case ScreenSchedule:
		return m.openSchedule()
	}
	return nil
}

// showLogin puts the login form up, with reason shown as an error
func (m *Model) showLogin(reason string) tea.Cmd {
	m.screen = ScreenLogin
	m.confirm = nil
	m.showHelp = false
	m.SortModal.Hide()
	m.AddModal.Hide()
	m.QuickAdd.Hide()
	username := ""
	if m.InputModal.Purpose() == purposeLogin {
		username = m.InputModal.Value()
	}
	m.InputModal.Show(purposeLogin, "Log in to "+m.serverName(),
		components.Field{Label: "Username", Value: username, Placeholder: "admin"},
		components.Field{Label: "Password", Secret: true},
	)
	if reason == "" {
		return nil
	}
	return m.setStatus(reason, true)
}

func (m Model) serverName() string {
	if m.opts.ServerURL == "" {
		return "station"
	}
	return m.opts.ServerURL
}

// setStatus shows a message in the footer until it times out
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusIsErr = isErr
	m.statusSeq++
	d := statusDuration
	if isErr {
		d = errorDuration
	}
	return ClearStatusCmd(m.statusSeq, d)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.frame++
		m.lib.list.SetLoading(m.lib.syncing && len(m.lib.list.Items()) == 0, m.frame)
		return m, TickCmd(tickInterval)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsErr = false
		}
		return m, nil

	case StatusMsg:
		cmd := m.setStatus(msg.Message, msg.IsError)
		return m, cmd

	case ErrMsg:
		return m.handleError(msg)

	case SessionChangedMsg:
		cmd := WaitForEventCmd(m.relay.Events())
		if msg.Session.Token != "" || m.screen == ScreenLogin {
			return m, cmd
		}
		reason := "Session expired, please log in again"
		if m.loggingOut {
			reason = ""
			m.loggingOut = false
		}
		m.expireTo(m.screen)
		login := m.showLogin(reason)
		return m, tea.Batch(cmd, login)

	case PlaybackChangedMsg:
		m.playback = msg.State
		return m, WaitForEventCmd(m.relay.Events())

	case LoggedInMsg:
		m.doneLoading()
		m.InputModal.Hide()
		m.screen = ScreenLogin
		target := m.afterLogin
		cmd := m.switchTo(target)
		status := m.setStatus("Logged in as "+msg.Session.User.Username, false)
		return m, tea.Batch(cmd, status)

	case LoggedOutMsg:
		m.loggingOut = false
		m.lib.reset()
		m.lists.reset()
		m.build.discard()
		m.afterLogin = ParseScreen(m.opts.DefaultScreen)
		cmd := m.showLogin("")
		return m, cmd
	}

	if cmd, ok := m.updateDashboard(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.updateLibrary(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.updatePlaylists(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.updateBuilder(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.updateSchedule(msg); ok {
		return m, cmd
	}

	// route anything else (cursor blink) to the focused input
	return m.routeToInputs(msg)
}

func (m Model) handleError(msg ErrMsg) (tea.Model, tea.Cmd) {
	m.loading = 0
	if m.lists.preview.IsLoading() {
		// the next selection change retries
		m.lists.preview.SetLoading(false, m.frame)
		m.lists.previewID = 0
	}
	if domain.IsAuth(msg.Err) {
		if m.screen == ScreenLogin {
			cmd := m.showLogin("Login failed: invalid username or password")
			return m, cmd
		}
		m.expireTo(m.screen)
		cmd := m.showLogin("Session expired, please log in again")
		return m, cmd
	}
	m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
	cmd := m.setStatus(describeError(msg), true)
	return m, cmd
}

// expireTo remembers where to return after the next login. An open
// builder draft cannot survive the lost session, so it returns to the list.
func (m *Model) expireTo(s Screen) {
	switch s {
	case ScreenLogin:
		return
	case ScreenBuilder:
		s = ScreenPlaylists
	}
	m.afterLogin = s
}

// describeError renders an error for the footer
func describeError(msg ErrMsg) string {
	switch {
	case errors.Is(msg.Err, domain.ErrServerOffline):
		return "Station server is unreachable"
	case domain.IsValidation(msg.Err):
		return msg.Err.Error()
	}
	return msg.Error()
}

// routeToInputs forwards non-key messages to visible text inputs
func (m Model) routeToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.InputModal.IsVisible():
		m.InputModal, cmd, _ = m.InputModal.Update(msg)
	case m.QuickAdd.IsVisible():
		m.QuickAdd, cmd, _ = m.QuickAdd.Update(msg)
	}
	return m, cmd
}
