package tui

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"shiftmap-cli/internal/projector"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

// externalEdit tracks the row whose value is out in $VISUAL/$EDITOR.
type externalEdit struct {
	pane   *pane
	row    *projector.FlatNode
	path   string
	before string
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

func (m *appModel) openExternalEditor(p *pane, row *projector.FlatNode) (tea.Cmd, error) {
	n, err := p.ed.Node(row)
	if err != nil {
		return nil, err
	}
	if n.Children != nil {
		return nil, errors.New("only leaf values can be edited in " + externalEditorName())
	}

	args := splitShellWords(externalEditorName())
	if len(args) == 0 {
		args = []string{"vi"}
	}

	f, err := os.CreateTemp("", "shiftmap-value-*.txt")
	if err != nil {
		return nil, err
	}
	path := f.Name()

	before := valueText(row.Item.Value)
	if _, err := f.WriteString(before + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	m.extEdit = &externalEdit{pane: p, row: row, path: path, before: before}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) {
	edit := m.extEdit
	m.extEdit = nil
	if edit == nil {
		return
	}
	defer func() { _ = os.Remove(edit.path) }()

	if msg.err != nil {
		m.setError(fmt.Errorf("editor failed: %w", msg.err))
		return
	}

	b, err := os.ReadFile(edit.path)
	if err != nil {
		m.setError(fmt.Errorf("editor read failed: %w", err))
		return
	}

	after := strings.TrimRight(string(b), "\r\n")
	if after == edit.before {
		m.setStatus("no changes from " + externalEditorName())
		return
	}
	var v any = after
	if !strings.Contains(after, "\n") {
		v = parseValue(after)
	}
	if err := edit.pane.ed.SetValue(edit.row, v); err != nil {
		m.setError(err)
		return
	}
	m.afterChange()
	m.setStatus(fmt.Sprintf("%s updated from %s", edit.row.Key(), externalEditorName()))
}
