package tui

import (
	"strings"

	"shiftmap-cli/internal/projector"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type inputPurpose int

const (
	inputRename inputPurpose = iota
	inputValue
	inputAddAbove
	inputAddBelow
	inputAddRoot
)

func (p inputPurpose) title() string {
	switch p {
	case inputRename:
		return "Rename"
	case inputValue:
		return "Set value"
	case inputAddAbove:
		return "Add above"
	case inputAddBelow:
		return "Add below"
	default:
		return "Add field"
	}
}

// inputModal is a one-line prompt shown over the mapping view. It keeps the
// pane and row it was opened on so the result lands there even if the
// cursor moved underneath.
type inputModal struct {
	purpose inputPurpose
	pane    *pane
	row     *projector.FlatNode
	input   textinput.Model
	width   int
}

func newInputModal(purpose inputPurpose, p *pane, row *projector.FlatNode, initial string, width int) *inputModal {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 256
	in.SetValue(initial)
	in.CursorEnd()
	in.Focus()
	if width < 24 {
		width = 24
	}
	in.Width = width - 6
	return &inputModal{purpose: purpose, pane: p, row: row, input: in, width: width}
}

func (m *inputModal) Value() string { return m.input.Value() }

func (m *inputModal) Init() tea.Cmd { return textinput.Blink }

func (m *inputModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModal) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(m.purpose.title())
	hint := styleMuted().Render("enter: save  esc: cancel")
	return modalBox(m.width, strings.Join([]string{head, "", m.input.View(), "", hint}, "\n"))
}

func modalBox(width int, body string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(width).
		Render(body)
}

// staticView adapts pre-rendered text to tea.Model for the overlay.
type staticView string

func (v staticView) Init() tea.Cmd                       { return nil }
func (v staticView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v staticView) View() string                        { return string(v) }
