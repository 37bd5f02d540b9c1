package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// QuickAddResults is how many catalog matches the picker shows
const QuickAddResults = 10

// QuickAdd is the type-ahead picker that adds catalog tracks to the
// playlist being built. It stays open after a pick so several tracks can
// be added in a row.
type QuickAdd struct {
	input     textinput.Model
	results   []domain.Track
	contains  func(int64) bool
	cursor    int
	visible   bool
	width     int
	height    int
	prevQuery string
}

// NewQuickAdd creates a new picker
func NewQuickAdd() QuickAdd {
	ti := textinput.New()
	ti.Placeholder = "Artist or title..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "+ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return QuickAdd{input: ti}
}

// Show makes the picker visible and focuses the input. contains marks
// tracks already in the playlist.
func (o *QuickAdd) Show(contains func(int64) bool) {
	o.visible = true
	o.contains = contains
	o.input.Focus()
	o.input.SetValue("")
	o.results = nil
	o.cursor = 0
	o.prevQuery = ""
}

// Hide hides the picker
func (o *QuickAdd) Hide() {
	o.visible = false
	o.input.Blur()
}

// IsVisible returns true if the picker is visible
func (o QuickAdd) IsVisible() bool {
	return o.visible
}

// SetResults sets the ranked matches
func (o *QuickAdd) SetResults(results []domain.Track) {
	o.results = results
	o.cursor = min(o.cursor, max(0, len(results)-1))
}

// SetSize updates the component dimensions
func (o *QuickAdd) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.input.Width = max(20, width/2)
}

// Query returns the current query
func (o QuickAdd) Query() string {
	return o.input.Value()
}

// QueryChanged returns true if the query changed since last check and updates prevQuery
func (o *QuickAdd) QueryChanged() bool {
	current := o.input.Value()
	if current != o.prevQuery {
		o.prevQuery = current
		o.cursor = 0
		return true
	}
	return false
}

// Selected returns the highlighted track
func (o QuickAdd) Selected() (domain.Track, bool) {
	if o.cursor >= len(o.results) {
		return domain.Track{}, false
	}
	return o.results[o.cursor], true
}

// Update handles messages, returns (picker, cmd, picked)
func (o QuickAdd) Update(msg tea.Msg) (QuickAdd, tea.Cmd, bool) {
	if !o.visible {
		return o, nil, false
	}

	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, PickerKeys.Escape):
			o.Hide()
			return o, nil, false
		case key.Matches(msg, PickerKeys.Enter):
			return o, nil, len(o.results) > 0
		case key.Matches(msg, PickerKeys.Down):
			if o.cursor < len(o.results)-1 {
				o.cursor++
			}
			return o, nil, false
		case key.Matches(msg, PickerKeys.Up):
			if o.cursor > 0 {
				o.cursor--
			}
			return o, nil, false
		}
	}

	o.input, cmd = o.input.Update(msg)
	return o, cmd, false
}

// View renders the picker
func (o QuickAdd) View() string {
	if !o.visible {
		return ""
	}

	modalWidth := max(40, min(o.width*2/3, 80))
	rowWidth := modalWidth - 6

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Add Tracks"))
	b.WriteString("\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")

	switch {
	case len(o.results) == 0 && strings.TrimSpace(o.input.Value()) != "":
		b.WriteString(styles.DimStyle.Render("No matches found"))
	case len(o.results) > 0:
		for i, t := range o.results {
			added := o.contains != nil && o.contains(t.ID)
			mark := "  "
			if added {
				mark = "✓ "
			}
			label := styles.Truncate(t.DisplayArtist()+" - "+t.Title, rowWidth-10)
			line := styles.Pad(mark+label, rowWidth-8) + " " + fmt.Sprintf("%7s", t.FormattedDuration())

			style := lipgloss.NewStyle().Foreground(styles.LightGray)
			switch {
			case i == o.cursor:
				style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
			case added:
				style = lipgloss.NewStyle().Foreground(styles.DimGray)
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(HintLine(PickerKeys.ShortHelp())))

	return styles.ModalStyle.
		Width(modalWidth).
		Render(b.String())
}

// MatchParts splits text into row parts with the matched runes in the
// accent color, for use with styles.RenderListRow.
func MatchParts(text string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: text}}
	}
	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}

	// batch consecutive runes with the same state
	var parts []styles.RowPart
	runes := []rune(text)
	for i := 0; i < len(runes); {
		isMatch := set[i]
		start := i
		for i < len(runes) && set[i] == isMatch {
			i++
		}
		part := styles.RowPart{Text: string(runes[start:i])}
		if isMatch {
			part.Foreground = &styles.OnAirRed
		}
		parts = append(parts, part)
	}
	return parts
}
