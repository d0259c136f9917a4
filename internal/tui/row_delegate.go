package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/projector"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowItem is one visible tree row.
type rowItem struct {
	row *projector.FlatNode
}

func (it rowItem) FilterValue() string { return it.row.Key() }

func rowItems(rows []*projector.FlatNode) []list.Item {
	out := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowItem{row: r})
	}
	return out
}

type rowDelegate struct {
	p *pane

	normal   lipgloss.Style
	selected lipgloss.Style
	target   lipgloss.Style
}

func newRowDelegate(p *pane) rowDelegate {
	return rowDelegate{
		p:      p,
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		target: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorDropTarget),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	it, ok := item.(rowItem)
	if !ok || width < 4 {
		return
	}
	line := d.rowText(it.row)

	style := d.normal
	switch {
	case d.p.dropRow == it.row && d.p.dropZone != dragdrop.ZoneNone:
		style = d.target
		line = zoneMark(d.p.dropZone) + line
	case index == m.Index() && d.p.focused:
		style = d.selected
	}
	fmt.Fprint(w, renderRow(width, style, line))
}

func (d rowDelegate) rowText(f *projector.FlatNode) string {
	ed := d.p.ed
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", f.Level))
	switch {
	case !f.Expandable:
		b.WriteString(" ")
	case ed.IsExpanded(f):
		b.WriteString(glyphTwistyExpanded())
	default:
		b.WriteString(glyphTwistyCollapsed())
	}
	b.WriteByte(' ')
	if d.p.checklist {
		switch {
		case ed.IsSelected(f):
			b.WriteString(glyphChecked())
		case ed.DescendantsPartiallySelected(f):
			b.WriteString(glyphPartial())
		default:
			b.WriteString(glyphUnchecked())
		}
		b.WriteByte(' ')
	}
	if f.SelectConcat {
		b.WriteString(glyphConcat())
		b.WriteByte(' ')
	}
	key := f.Key()
	if f.Item.IsArray {
		key = "[" + key + "]"
	}
	b.WriteString(key)
	if !ed.ShowAsLabels() {
		if v := valueText(f.Item.Value); v != "" {
			b.WriteString(": ")
			b.WriteString(v)
		}
	}
	if d.p.anchored[ed.ConnectorID(f)] {
		b.WriteByte(' ')
		b.WriteString(glyphAnchor())
	}
	return b.String()
}

func valueText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func zoneMark(z dragdrop.Zone) string {
	switch z {
	case dragdrop.ZoneAbove:
		return "↑ "
	case dragdrop.ZoneBelow:
		return "↓ "
	default:
		return "◆ "
	}
}

// renderRow pads or cuts line to width so the background covers the row.
func renderRow(width int, style lipgloss.Style, line string) string {
	w := xansi.StringWidth(line)
	if w < width {
		line += strings.Repeat(" ", width-w)
	} else if w > width {
		line = xansi.Cut(line, 0, width)
	}
	return style.Render(line)
}
