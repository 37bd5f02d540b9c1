package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/dnd"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/schedule"
	"github.com/mmcdole/onair/internal/search"
	"github.com/mmcdole/onair/internal/tui/components"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// Grid geometry
const (
	slotMinutes     = 30
	slotsPerDay     = 24 * 60 / slotMinutes
	timeColumnWidth = 6
	sidebarWidth    = 28
	gridHeaderLines = 2
	dayStartSlot    = 6 * 60 / slotMinutes // first row shown on open
)

// gridCell is a day column and half-hour row of the week grid
type gridCell struct {
	day  int
	slot int
}

type scheduleScreen struct {
	mondayFirst     bool
	sidebar         *components.ListColumn[domain.Playlist]
	matches         map[int64][]int
	focusGrid       bool
	cursor          gridCell
	top             int
	rows            int
	drag            dnd.Gesture[int64, gridCell]
	window          schedule.Window
	playlistsLoaded bool
	loading         bool
	placing         bool
	placeID         int64
}

func newScheduleScreen(mondayFirst bool) *scheduleScreen {
	s := &scheduleScreen{
		mondayFirst: mondayFirst,
		matches:     map[int64][]int{},
		cursor:      gridCell{slot: dayStartSlot},
		top:         dayStartSlot,
	}
	s.sidebar = components.NewListColumn("Playlists", s.renderPlaylist, s.filter)
	s.sidebar.SetEmptyText("No playlists")
	s.sidebar.SetFocused(true)
	return s
}

// filter records the matched name positions for highlighting
func (s *scheduleScreen) filter(query string, items []domain.Playlist) []int {
	pos := make(map[int64]int, len(items))
	for i, p := range items {
		pos[p.ID] = i
	}
	s.matches = map[int64][]int{}
	results := search.Playlists(query, items)
	idx := make([]int, 0, len(results))
	for _, r := range results {
		idx = append(idx, pos[r.Playlist.ID])
		s.matches[r.Playlist.ID] = r.MatchedIndexes
	}
	return idx
}

func (s *scheduleScreen) renderPlaylist(p domain.Playlist, selected bool, width int) string {
	color := lipgloss.Color(p.DisplayColor())
	parts := []styles.RowPart{{Text: "■ ", Foreground: &color}}
	name := styles.Truncate(p.Name, max(4, width-4))
	if s.sidebar.IsFiltering() {
		parts = append(parts, components.MatchParts(name, s.matches[p.ID])...)
	} else {
		parts = append(parts, styles.RowPart{Text: name})
	}
	return styles.RenderListRow(parts, selected, width)
}

func (s *scheduleScreen) setFocusGrid(grid bool) {
	s.focusGrid = grid
	s.sidebar.SetFocused(!grid)
}

// moveCursor steps the grid cursor, keeping it on screen
func (s *scheduleScreen) moveCursor(dDay, dSlot int) {
	s.cursor.day = max(0, min(6, s.cursor.day+dDay))
	s.cursor.slot = max(0, min(slotsPerDay-1, s.cursor.slot+dSlot))
	s.scrollToCursor()
	if s.drag.Active() {
		s.drag.Move(s.cursor)
	}
}

func (s *scheduleScreen) scrollToCursor() {
	rows := max(1, s.rows)
	if s.cursor.slot < s.top {
		s.top = s.cursor.slot
	}
	if s.cursor.slot >= s.top+rows {
		s.top = s.cursor.slot - rows + 1
	}
	s.top = max(0, min(s.top, slotsPerDay-rows))
}

// cellStart is the station-local instant a cell begins at
func cellStart(w schedule.Window, c gridCell) time.Time {
	day := w.Start.AddDate(0, 0, c.day)
	mins := c.slot * slotMinutes
	return time.Date(day.Year(), day.Month(), day.Day(), mins/60, mins%60, 0, 0, w.Start.Location())
}

// blockAt returns the first block covering cell c
func blockAt(blocks []schedule.Block, w schedule.Window, c gridCell) (schedule.Block, bool) {
	from := cellStart(w, c)
	to := from.Add(slotMinutes * time.Minute)
	for _, b := range blocks {
		if b.Overlaps(from, to) {
			return b, true
		}
	}
	return schedule.Block{}, false
}

func (m *Model) openSchedule() tea.Cmd {
	p := m.svc.Planner
	if p == nil {
		return nil
	}
	s := m.sched
	if s.window.IsZero() {
		s.window = schedule.WeekOf(time.Now(), p.Location(), s.mondayFirst)
	}
	cmds := []tea.Cmd{m.loadWeek()}
	if !s.playlistsLoaded {
		cmds = append(cmds, LoadSchedulePlaylistsCmd(p))
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadWeek() tea.Cmd {
	m.sched.loading = true
	return LoadScheduleCmd(m.svc.Planner, m.sched.window)
}

func (m *Model) shiftWeek(weeks int) tea.Cmd {
	if weeks == 0 {
		m.sched.window = schedule.WeekOf(time.Now(), m.svc.Planner.Location(), m.sched.mondayFirst)
	} else {
		m.sched.window = m.sched.window.Shift(weeks)
	}
	return m.loadWeek()
}

func (m *Model) updateSchedule(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case SchedulePlaylistsMsg:
		if msg.Err != nil {
			return errCmd(msg.Err, "loading playlists"), true
		}
		m.sched.playlistsLoaded = true
		m.sched.sidebar.SetItems(m.svc.Planner.Playlists())
		return nil, true

	case ScheduleLoadedMsg:
		if errors.Is(msg.Err, schedule.ErrSuperseded) {
			return nil, true
		}
		m.sched.loading = false
		if msg.Err != nil {
			return errCmd(msg.Err, "loading schedule"), true
		}
		return nil, true

	case PlacementDoneMsg:
		m.sched.placing = false
		m.sched.drag.Cancel()
		var placeErr *schedule.PlacementError
		switch {
		case msg.Err == nil:
			return m.setStatus("Playlist scheduled", false), true
		case errors.As(msg.Err, &placeErr):
			if domain.IsAuth(placeErr.Err) {
				return errCmd(placeErr.Err, "scheduling playlist"), true
			}
			return m.setStatus(schedule.PlacementFailedMessage, true), true
		case errors.Is(msg.Err, domain.ErrGestureInProgress), errors.Is(msg.Err, domain.ErrNoGesture):
			return m.setStatus(msg.Err.Error(), true), true
		}
		return errCmd(msg.Err, "scheduling playlist"), true

	case SlotRemovedMsg:
		if msg.Err != nil {
			return errCmd(msg.Err, "removing slot"), true
		}
		return m.setStatus("Slot removed", false), true
	}
	return nil, false
}

func (m *Model) scheduleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.sched
	p := m.svc.Planner
	if p == nil {
		return nil
	}

	switch {
	case key.Matches(msg, Keys.PrevWeek) && !s.sidebar.IsFilterTyping():
		return m.shiftWeek(-1)
	case key.Matches(msg, Keys.NextWeek) && !s.sidebar.IsFilterTyping():
		return m.shiftWeek(1)
	case key.Matches(msg, Keys.Today) && !s.sidebar.IsFilterTyping():
		return m.shiftWeek(0)
	}

	if !s.focusGrid {
		return m.scheduleSidebarKey(msg)
	}
	return m.scheduleGridKey(msg)
}

func (m *Model) scheduleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	s := m.sched
	if s.sidebar.HandlesKey(msg) {
		return s.sidebar.Update(msg)
	}
	switch {
	case key.Matches(msg, Keys.Filter):
		s.sidebar.ToggleFilter()
	case key.Matches(msg, Keys.Escape):
		if s.sidebar.IsFiltering() {
			s.sidebar.ClearFilter()
		}
	case key.Matches(msg, Keys.Tab, Keys.Right):
		s.setFocusGrid(true)
	case key.Matches(msg, Keys.Refresh):
		s.playlistsLoaded = false
		return tea.Batch(LoadSchedulePlaylistsCmd(m.svc.Planner), m.loadWeek())
	case key.Matches(msg, Keys.Grab, Keys.Enter):
		pl, ok := s.sidebar.Selected()
		if !ok {
			return nil
		}
		return m.pickPlaylist(pl)
	case key.Matches(msg, Keys.Place):
		if pl, ok := s.sidebar.Selected(); ok {
			m.showPlaceForm(pl)
		}
	}
	return nil
}

// pickPlaylist starts carrying pl onto the grid
func (m *Model) pickPlaylist(pl domain.Playlist) tea.Cmd {
	s := m.sched
	if err := m.svc.Planner.Pick(pl.ID); err != nil {
		return m.setStatus(err.Error(), true)
	}
	s.drag.Cancel()
	if err := s.drag.Pick(pl.ID, s.cursor); err != nil {
		return m.setStatus(err.Error(), true)
	}
	s.setFocusGrid(true)
	return m.setStatus(fmt.Sprintf("Placing %q: move to a time and press m", pl.Name), false)
}

func (m *Model) scheduleGridKey(msg tea.KeyMsg) tea.Cmd {
	s := m.sched
	p := m.svc.Planner
	switch {
	case key.Matches(msg, Keys.Up):
		s.moveCursor(0, -1)
	case key.Matches(msg, Keys.Down):
		s.moveCursor(0, 1)
	case key.Matches(msg, Keys.Left):
		s.moveCursor(-1, 0)
	case key.Matches(msg, Keys.Right):
		s.moveCursor(1, 0)
	case key.Matches(msg, Keys.Tab):
		if !s.drag.Active() {
			s.setFocusGrid(false)
		}
	case key.Matches(msg, Keys.Escape):
		if s.drag.Active() && p.Cancel() {
			s.drag.Cancel()
			return m.setStatus("Placement cancelled", false)
		}
		if !s.drag.Active() {
			s.setFocusGrid(false)
		}
	case key.Matches(msg, Keys.Grab, Keys.Enter):
		if !s.drag.Active() || s.placing {
			return nil
		}
		drop, ok := s.drag.Drop()
		if !ok {
			return nil
		}
		s.placing = true
		return DropCmd(p, cellStart(s.window, drop.To))
	case key.Matches(msg, Keys.Delete):
		b, ok := blockAt(p.Blocks(), s.window, s.cursor)
		if !ok || b.Event.Ghost || b.Event.PendingDelete {
			return nil
		}
		ev := b.Event
		detail := fmt.Sprintf("%q at %s", ev.Title, b.Start.Format("Mon Jan 2 15:04"))
		if ev.Type == domain.ScheduleRecurring {
			detail = fmt.Sprintf("%q every %s at %s", ev.Title, domain.FormatWeekdays(ev.DaysOfWeek), ev.StartTime)
		}
		m.confirm = &confirmation{
			prompt: "Remove slot?",
			detail: detail,
			onYes: func(m *Model) tea.Cmd {
				return RemoveSlotCmd(m.svc.Planner, ev.SlotID)
			},
		}
	case key.Matches(msg, Keys.Place):
		if pl, ok := s.sidebar.Selected(); ok {
			m.showPlaceForm(pl)
		}
	case key.Matches(msg, Keys.Refresh):
		return m.loadWeek()
	}
	return nil
}

// showPlaceForm asks for a date and time to place pl at
func (m *Model) showPlaceForm(pl domain.Playlist) {
	s := m.sched
	if s.placing {
		return
	}
	s.placeID = pl.ID
	start := cellStart(s.window, s.cursor)
	m.InputModal.Show(purposePlaceAt, "Schedule "+pl.Name,
		components.Field{Label: "Date", Value: start.Format(time.DateOnly), Placeholder: "YYYY-MM-DD"},
		components.Field{Label: "Time", Value: start.Format("15:04"), Placeholder: "HH:MM"},
	)
}

// parsePlacement reads a station-local date and time
func parsePlacement(values []string, loc *time.Location) (time.Time, error) {
	if len(values) < 2 {
		return time.Time{}, domain.Invalid("time", errors.New("missing date or time"))
	}
	date := strings.TrimSpace(values[0])
	clock, err := domain.ParseTimeOfDay(strings.TrimSpace(values[1]))
	if err != nil {
		return time.Time{}, domain.Invalid("time", err)
	}
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, domain.Invalid("date", fmt.Errorf("%q is not YYYY-MM-DD", date))
	}
	return clock.On(day, loc), nil
}

func (m *Model) submitPlacement(values []string) tea.Cmd {
	p := m.svc.Planner
	start, err := parsePlacement(values, p.Location())
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.InputModal.Hide()
	s := m.sched
	s.drag.Cancel()
	s.placing = true
	// show the target week so the ghost is visible
	s.window = schedule.WeekOf(start, p.Location(), s.mondayFirst)
	return PlaceDropCmd(p, s.placeID, start)
}

func (m Model) renderSchedule(width, height int) string {
	s := m.sched
	gridWidth := max(20, width-sidebarWidth)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.sidebar.View(),
		m.renderGrid(gridWidth, height))
}

func (m Model) renderGrid(width, height int) string {
	s := m.sched
	p := m.svc.Planner
	if p == nil || s.window.IsZero() {
		return ""
	}
	colWidth := max(4, (width-timeColumnWidth)/7)
	days := s.window.Days()
	blocks := p.Blocks()

	var b strings.Builder
	title := fmt.Sprintf("%s – %s", s.window.Start.Format("Jan 2"), s.window.End.AddDate(0, 0, -1).Format("Jan 2, 2006"))
	if s.loading {
		title += " " + styles.Spinner(m.frame)
	}
	switch p.State() {
	case schedule.Dragging:
		title += styles.AccentStyle.Render("  placing")
	case schedule.PendingCreate:
		title += styles.WarningStyle.Render("  saving placement")
	}
	b.WriteString(styles.TitleStyle.Render(title) + "\n")

	b.WriteString(strings.Repeat(" ", timeColumnWidth))
	today := time.Now().In(p.Location()).Format(time.DateOnly)
	for _, d := range days {
		label := styles.Pad(d.Format("Mon 2"), colWidth)
		if d.Format(time.DateOnly) == today {
			label = styles.AccentStyle.Render(label)
		} else {
			label = styles.SubtitleStyle.Render(label)
		}
		b.WriteString(label)
	}

	rows := max(1, height-gridHeaderLines)
	end := min(slotsPerDay, s.top+rows)
	var picked domain.Playlist
	if s.drag.Active() {
		for _, pl := range p.Playlists() {
			if pl.ID == s.drag.Item() {
				picked = pl
			}
		}
	}
	for slot := s.top; slot < end; slot++ {
		b.WriteString("\n")
		mins := slot * slotMinutes
		label := "      "
		if mins%60 == 0 {
			label = fmt.Sprintf("%02d:00 ", mins/60)
		}
		b.WriteString(styles.DimStyle.Render(label))
		for day := range days {
			c := gridCell{day: day, slot: slot}
			b.WriteString(m.renderCell(blocks, c, colWidth, picked))
		}
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (m Model) renderCell(blocks []schedule.Block, c gridCell, width int, picked domain.Playlist) string {
	s := m.sched
	cursor := s.focusGrid && c == s.cursor
	style := lipgloss.NewStyle()
	text := ""

	if blk, ok := blockAt(blocks, s.window, c); ok {
		ev := blk.Event
		style = style.Background(lipgloss.Color(ev.Color)).Foreground(styles.White)
		from := cellStart(s.window, c)
		to := from.Add(slotMinutes * time.Minute)
		startsHere := !blk.Start.Before(from) && blk.Start.Before(to)
		if startsHere || (blk.Start.Before(from) && c.slot == s.top) {
			text = ev.Title
		}
		switch {
		case ev.Ghost:
			style = style.Faint(true)
			if text != "" {
				text = "… " + text
			}
		case ev.PendingDelete:
			style = style.Strikethrough(true).Faint(true)
		}
	} else if c.slot%2 == 0 {
		text = "·"
		style = style.Foreground(styles.SlateLight)
	}

	if cursor {
		if s.drag.Active() && picked.ID != 0 {
			style = lipgloss.NewStyle().Background(lipgloss.Color(picked.DisplayColor())).Foreground(styles.White).Bold(true)
			text = picked.Name
		} else {
			style = style.Reverse(true)
		}
	}
	return style.Render(styles.Pad(text, width))
}
