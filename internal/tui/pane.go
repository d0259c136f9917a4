package tui

import (
	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/editor"
	"shiftmap-cli/internal/projector"

	"github.com/charmbracelet/bubbles/list"
)

// pane is one side's tree list plus the render state its delegate reads.
type pane struct {
	ed   *editor.Editor
	list list.Model

	focused   bool
	checklist bool
	// anchored holds the anchor ids that currently have a connector.
	anchored map[string]bool

	dropRow  *projector.FlatNode
	dropZone dragdrop.Zone
}

func newPane(ed *editor.Editor) *pane {
	p := &pane{ed: ed, anchored: map[string]bool{}}
	l := list.New(nil, newRowDelegate(p), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)
	l.DisableQuitKeybindings()
	p.list = l
	return p
}

// refresh reloads the rows from the editor, keeping the cursor on the same
// row when it is still visible.
func (p *pane) refresh() {
	cur := p.current()
	rows := p.ed.Rows()
	p.list.SetItems(rowItems(rows))
	if cur != nil {
		p.selectRow(cur)
	}
	if n := len(rows); n > 0 && p.list.Index() >= n {
		p.list.Select(n - 1)
	}
}

func (p *pane) current() *projector.FlatNode {
	if it, ok := p.list.SelectedItem().(rowItem); ok {
		return it.row
	}
	return nil
}

func (p *pane) selectRow(f *projector.FlatNode) bool {
	for i, it := range p.list.Items() {
		if ri, ok := it.(rowItem); ok && ri.row == f {
			p.list.Select(i)
			return true
		}
	}
	return false
}

// start is the index of the first row on the current page.
func (p *pane) start() int {
	start, _ := p.list.Paginator.GetSliceBounds(len(p.list.Items()))
	return start
}

// rowAt returns the row on line y of the current page.
func (p *pane) rowAt(y int) (*projector.FlatNode, bool) {
	if y < 0 || y >= p.list.Paginator.PerPage {
		return nil, false
	}
	i := p.start() + y
	items := p.list.Items()
	if i >= len(items) {
		return nil, false
	}
	it, ok := items[i].(rowItem)
	return it.row, ok
}

func (p *pane) setSize(w, h int) {
	p.list.SetSize(w, h)
}

func (p *pane) clearDrop() {
	p.dropRow = nil
	p.dropZone = dragdrop.ZoneNone
}
