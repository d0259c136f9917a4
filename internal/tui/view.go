package tui

import (
	"fmt"
	"strings"

	"shiftmap-cli/internal/dragdrop"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	main := m.mainView()

	var fg string
	switch {
	case m.modal != nil:
		return overlay.New(m.modal, staticView(main), overlay.Center, overlay.Center, 0, 0).View()
	case m.showHelp:
		fg = modalBox(m.width*2/3, m.helpView())
	case m.showPreview:
		hint := styleMuted().Render("p/esc: close  arrows: scroll")
		fg = modalBox(m.preview.Width, m.preview.View()+"\n"+hint)
	default:
		return main
	}
	return overlay.New(staticView(fg), staticView(main), overlay.Center, overlay.Center, 0, 0).View()
}

func (m appModel) mainView() string {
	_, h := m.paneSize()
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneView(m.src, "Source"),
		// One blank line lines the gutter up with the rows inside the border.
		"\n"+m.gutter.View(gutterWidth, h),
		m.paneView(m.dst, "Destination"),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		panes,
		m.statusView(),
		m.help.View(m.keys),
	)
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("shiftmap")
	parts := []string{title}
	if rec := m.sess.Record(); rec != nil {
		parts = append(parts, styleMuted().Render(rec.ID))
	}
	parts = append(parts, styleMuted().Render(fmt.Sprintf("%d link(s)", len(m.sess.Pairs()))))
	if m.sess.Dragging() {
		zone := m.dst.dropZone
		if zone == dragdrop.ZoneNone {
			zone = dragdrop.ZoneCenter
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(colorDropTarget).Render("dragging: "+zone.String()))
	}
	return renderRow(m.width, lipgloss.NewStyle(), strings.Join(parts, "  "))
}

func (m appModel) paneView(p *pane, title string) string {
	edge := colorBorder
	if p.focused {
		edge = colorFocusEdge
	}
	body := p.list.View()
	if len(p.list.Items()) == 0 {
		body = styleMuted().Render("(empty, press a to add a field)")
	}
	w, h := m.paneSize()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(edge).
		Width(w).
		Height(h).
		Render(body)
	// Put the pane title into the top border.
	lines := strings.SplitN(box, "\n", 2)
	if len(lines) == 2 {
		label := lipgloss.NewStyle().Bold(p.focused).Render(" " + title + " ")
		lines[0] = lipgloss.NewStyle().Foreground(edge).Render("╭─") + label +
			lipgloss.NewStyle().Foreground(edge).Render(strings.Repeat("─", max(0, w-lipgloss.Width(label)-1))+"╮")
		box = lines[0] + "\n" + lines[1]
	}
	return box
}

func (m appModel) statusView() string {
	st := styleMuted()
	if m.statusErr {
		st = lipgloss.NewStyle().Foreground(colorError)
	}
	return renderRow(m.width, st, m.status)
}

func (m appModel) helpView() string {
	h := m.help
	h.ShowAll = true
	head := lipgloss.NewStyle().Bold(true).Render("Keys")
	return head + "\n\n" + h.View(m.keys) + "\n\n" +
		styleMuted().Render("Mouse: press a source row, move onto a destination row, release to link.\nClick a line in the gutter to remove it.")
}
