package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// RenderFunc draws one row of a list.
type RenderFunc[T any] func(item T, selected bool, width int) string

// FilterFunc returns the indexes of items matching query, best first.
type FilterFunc[T any] func(query string, items []T) []int

// ListColumn is a bordered, scrollable list with an optional filter bar.
type ListColumn[T any] struct {
	items  []T
	render RenderFunc[T]
	filter FilterFunc[T]

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title   string
	empty   string
	loading bool
	frame   int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewListColumn creates a list drawing rows with render. A nil filter
// disables the filter bar.
func NewListColumn[T any](title string, render RenderFunc[T], filter FilterFunc[T]) *ListColumn[T] {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &ListColumn[T]{
		title:       title,
		render:      render,
		filter:      filter,
		empty:       "No items",
		filterInput: ti,
	}
}

// Update handles list navigation and the filter input.
func (c *ListColumn[T]) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	// Typing into the filter
	if c.filterActive && c.filterInput.Focused() {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			c.clearFilter()
			return nil
		case key.Matches(keyMsg, ListKeys.Enter):
			c.filterInput.Blur()
			return nil
		case keyMsg.String() == "backspace" && c.filterInput.Value() == "":
			c.clearFilter()
			return nil
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return cmd
	}

	count := c.ItemCount()
	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
		}
	case key.Matches(keyMsg, ListKeys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(keyMsg, ListKeys.Home):
		c.cursor = 0
	case key.Matches(keyMsg, ListKeys.End):
		c.cursor = max(0, count-1)
	case key.Matches(keyMsg, ListKeys.HalfDown):
		c.cursor = min(c.cursor+c.maxVisible/2, max(0, count-1))
	case key.Matches(keyMsg, ListKeys.HalfUp):
		c.cursor = max(c.cursor-c.maxVisible/2, 0)
	}
	c.ensureVisible()
	return nil
}

// HandlesKey reports whether the list wants k for itself: everything
// while the filter is being typed, navigation keys otherwise.
func (c *ListColumn[T]) HandlesKey(k tea.KeyMsg) bool {
	if c.IsFilterTyping() {
		return true
	}
	return key.Matches(k, ListKeys.Up, ListKeys.Down, ListKeys.Home, ListKeys.End, ListKeys.HalfUp, ListKeys.HalfDown)
}

func (c *ListColumn[T]) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(c.width - frameW).
		Height(c.height - frameH).
		Render(c.renderContent())
}

func (c *ListColumn[T]) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *ListColumn[T]) SetFocused(focused bool) { c.focused = focused }
func (c *ListColumn[T]) SetTitle(title string)   { c.title = title }
func (c *ListColumn[T]) SetEmptyText(s string)   { c.empty = s }

// SetLoading shows a spinner instead of the rows.
func (c *ListColumn[T]) SetLoading(loading bool, frame int) {
	c.loading = loading
	c.frame = frame
}

func (c *ListColumn[T]) IsLoading() bool { return c.loading }

// SetItems replaces the rows, keeping the cursor in range and the filter applied.
func (c *ListColumn[T]) SetItems(items []T) {
	c.items = items
	if c.filterActive && c.filterQuery != "" {
		cursor := c.cursor
		c.applyFilter()
		c.cursor = cursor
	}
	c.clampCursor()
	c.ensureVisible()
}

func (c *ListColumn[T]) Items() []T { return c.items }

// Visible returns the rows in display order, after the filter.
func (c *ListColumn[T]) Visible() []T {
	if c.filteredIdx == nil {
		return c.items
	}
	out := make([]T, len(c.filteredIdx))
	for i, idx := range c.filteredIdx {
		out[i] = c.items[idx]
	}
	return out
}

// Selected returns the item under the cursor.
func (c *ListColumn[T]) Selected() (T, bool) {
	var zero T
	if c.ItemCount() == 0 {
		return zero, false
	}
	return c.items[c.mapIndex(c.cursor)], true
}

// SelectedIndex is the cursor position in the unfiltered items, -1 when empty.
func (c *ListColumn[T]) SelectedIndex() int {
	if c.ItemCount() == 0 {
		return -1
	}
	return c.mapIndex(c.cursor)
}

// Cursor is the cursor position among the visible rows.
func (c *ListColumn[T]) Cursor() int { return c.cursor }

// SetCursor moves the cursor to a visible row.
func (c *ListColumn[T]) SetCursor(i int) {
	c.cursor = i
	c.clampCursor()
	c.ensureVisible()
}

// ItemCount is the number of visible rows.
func (c *ListColumn[T]) ItemCount() int {
	if c.filteredIdx != nil {
		return len(c.filteredIdx)
	}
	return len(c.items)
}

// ToggleFilter activates the filter input
func (c *ListColumn[T]) ToggleFilter() {
	if c.filter == nil {
		return
	}
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (c *ListColumn[T]) IsFiltering() bool { return c.filterActive }

// IsFilterTyping returns true if filter is active and input is focused
func (c *ListColumn[T]) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (c *ListColumn[T]) ClearFilter() { c.clearFilter() }

func (c *ListColumn[T]) recalcMaxVisible() {
	// title line plus the two scroll indicators
	c.maxVisible = c.height - BorderHeight - ScrollIndicatorLines - 1
	if c.filterActive {
		c.maxVisible--
	}
	c.maxVisible = max(c.maxVisible, 1)
}

func (c *ListColumn[T]) clampCursor() {
	c.cursor = max(0, min(c.cursor, c.ItemCount()-1))
}

func (c *ListColumn[T]) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
	c.offset = max(0, min(c.offset, c.ItemCount()-c.maxVisible))
}

func (c *ListColumn[T]) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.filteredIdx = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
	c.clampCursor()
	c.ensureVisible()
}

func (c *ListColumn[T]) applyFilter() {
	c.filterQuery = c.filterInput.Value()
	if strings.TrimSpace(c.filterQuery) == "" {
		c.filteredIdx = nil
	} else {
		c.filteredIdx = c.filter(c.filterQuery, c.items)
		if c.filteredIdx == nil {
			c.filteredIdx = []int{}
		}
	}
	c.cursor = 0
	c.offset = 0
}

func (c *ListColumn[T]) mapIndex(i int) int {
	if c.filteredIdx != nil && i < len(c.filteredIdx) {
		return c.filteredIdx[i]
	}
	return i
}

func (c *ListColumn[T]) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	if c.loading {
		loadingLine := styles.Spinner(c.frame) + styles.DimStyle.Render(" Loading...")
		return titleLine + "\n \n" + loadingLine
	}

	count := c.ItemCount()
	if count == 0 {
		msg := c.empty
		if c.filterActive && c.filterQuery != "" {
			msg = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(msg)
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.render(c.items[c.mapIndex(i)], i == c.cursor && c.focused, itemWidth))
	}

	// header and footer lines are always reserved so the layout does not shift
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func (c *ListColumn[T]) renderFilterBar() string {
	countStr := ""
	if c.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", c.ItemCount(), len(c.items)))
	}
	return c.filterInput.View() + countStr
}
