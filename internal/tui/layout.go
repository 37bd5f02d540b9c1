package tui

// Layout constants
const (
	// ChromeHeight is the header, player bar and footer lines
	ChromeHeight = 3

	// PlaylistsListPercent is the playlist list's share of the playlists screen
	PlaylistsListPercent = 40

	// MinColumnWidth keeps a pane readable on narrow terminals
	MinColumnWidth = 20
)

// contentSize is the area between the header and the player bar
func (m Model) contentSize() (int, int) {
	return m.Width, max(1, m.Height-ChromeHeight)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	width, height := m.contentSize()

	m.lib.list.SetSize(width, height)

	left := max(MinColumnWidth, width*PlaylistsListPercent/100)
	m.lists.list.SetSize(left, height)
	m.lists.preview.SetSize(max(MinColumnWidth, width-left), height)

	m.build.list.SetSize(width, max(3, height-builderHeaderHeight))

	m.sched.sidebar.SetSize(sidebarWidth, height)
	m.sched.rows = max(1, height-gridHeaderLines)
	m.sched.scrollToCursor()

	m.QuickAdd.SetSize(m.Width, m.Height)
	m.AddModal.SetSize(m.Width)
}
