package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/onair/internal/tui/styles"
)

// Field is one labelled line of an InputModal
type Field struct {
	Label       string
	Value       string
	Placeholder string
	Secret      bool
}

// InputModal is a small form of one or more text inputs. Tab moves
// between fields, Enter submits.
type InputModal struct {
	visible bool
	title   string
	labels  []string
	inputs  []textinput.Model
	focus   int
	purpose string
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	return InputModal{}
}

func newInput(f Field) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = f.Placeholder
	ti.CharLimit = 200
	ti.Width = 34
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	if f.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.SetValue(f.Value)
	return ti
}

// Show displays the modal. purpose is returned untouched by Purpose so the
// caller can tell forms apart on submit.
func (m *InputModal) Show(purpose, title string, fields ...Field) {
	m.visible = true
	m.purpose = purpose
	m.title = title
	m.labels = m.labels[:0]
	m.inputs = m.inputs[:0]
	for _, f := range fields {
		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, newInput(f))
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
		m.inputs[0].CursorEnd()
	}
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Purpose returns the tag given to Show
func (m InputModal) Purpose() string {
	return m.purpose
}

// Value returns the first field's value
func (m InputModal) Value() string {
	if len(m.inputs) == 0 {
		return ""
	}
	return m.inputs[0].Value()
}

// Values returns every field's value in order
func (m InputModal) Values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

func (m *InputModal) moveFocus(delta int) {
	if len(m.inputs) < 2 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		case "tab", "down":
			m.moveFocus(1)
			return m, nil, false
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 40

	bg := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)
	titleStyle := bg.Foreground(styles.White).Bold(true)
	labelStyle := bg.Foreground(styles.LightGray)
	focusLabel := bg.Foreground(styles.OnAirRed)

	rows := []string{titleStyle.Render(m.title), bg.Render("")}
	for i, in := range m.inputs {
		if len(m.inputs) > 1 || m.labels[i] != "" {
			ls := labelStyle
			if i == m.focus {
				ls = focusLabel
			}
			rows = append(rows, ls.Render(m.labels[i]))
		}
		rows = append(rows, bg.Render(in.View()))
	}
	if len(m.inputs) > 1 {
		rows = append(rows, bg.Render(""), bg.Foreground(styles.DimGray).Render("tab: next field  enter: save  esc: cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OnAirRed).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
