package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/library"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// SortModal is a small popup for choosing the catalog order
type SortModal struct {
	visible bool
	options []library.SortKey
	cursor  int
	active  library.SortKey
}

// NewSortModal creates a new sort modal
func NewSortModal() SortModal {
	return SortModal{options: library.SortKeys}
}

// Show displays the modal with the cursor on the active order
func (m *SortModal) Show(active library.SortKey) {
	m.visible = true
	m.active = active
	m.cursor = 0
	for i, opt := range m.options {
		if opt == active {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the modal
func (m *SortModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m SortModal) IsVisible() bool {
	return m.visible
}

// HandleKey processes a key press, returns (handled, selection).
// A non-nil selection means the user confirmed a choice.
func (m *SortModal) HandleKey(key string) (handled bool, selection *library.SortKey) {
	if !m.visible {
		return false, nil
	}

	switch {
	case matchesName(key, SortKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case matchesName(key, SortKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case matchesName(key, SortKeys.Choose):
		chosen := m.options[m.cursor]
		m.visible = false
		return true, &chosen
	case matchesName(key, SortKeys.Close):
		m.visible = false
	}
	// consume all keys when visible
	return true, nil
}

// View renders the sort modal
func (m SortModal) View() string {
	if !m.visible || len(m.options) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		prefix := "  "
		if opt == m.active {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+opt.String(), 20)

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		switch {
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		case opt == m.active:
			style = lipgloss.NewStyle().Foreground(styles.OnAirRed)
		}
		lines = append(lines, style.Render(text))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OnAirRed).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Sort by") + "\n" + strings.Join(lines, "\n") +
			"\n\n" + styles.DimStyle.Render(HintLine(SortKeys.ShortHelp())))
}
