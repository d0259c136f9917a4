package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/editor"
	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/session"
	"shiftmap-cli/internal/store"
	"shiftmap-cli/internal/tree"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"
)

const (
	headerHeight = 1
	footerHeight = 2
	gutterWidth  = 9
)

// Options configures Run.
type Options struct {
	Name    string
	Source  any
	Dest    any
	Dwell   time.Duration
	Journal *store.Journal
	Theme   string
	Glyphs  string
}

// dwellMsg re-hovers row once the expand dwell has passed, so a drag resting
// on a collapsed row opens it without further pointer movement.
type dwellMsg struct {
	row *projector.FlatNode
}

type appModel struct {
	ctx    context.Context
	sess   *session.Session
	gutter *gutter
	keys   keyMap
	help   help.Model

	src   *pane
	dst   *pane
	focus editor.Side
	dwell time.Duration

	width  int
	height int

	modal       *inputModal
	showHelp    bool
	showPreview bool
	preview     viewport.Model

	extEdit *externalEdit

	mouseDrag bool
	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options) (appModel, error) {
	g := &gutter{}
	s := session.New(session.Options{
		Name:     opts.Name,
		Dwell:    opts.Dwell,
		Resolver: g,
		Renderer: g,
		Journal:  opts.Journal,
	})
	g.bind(s.Source, s.Dest)
	s.Load(opts.Source, opts.Dest)

	dwell := opts.Dwell
	if dwell <= 0 {
		dwell = dragdrop.DefaultExpandDwell
	}
	m := appModel{
		ctx:    ctx,
		sess:   s,
		gutter: g,
		keys:   defaultKeyMap(),
		help:   help.New(),
		src:    newPane(s.Source),
		dst:    newPane(s.Dest),
		focus:  editor.Source,
		dwell:  dwell,
	}
	m.src.focused = true

	n, err := s.Restore(ctx)
	if err != nil && !isUnresolved(err) {
		return appModel{}, err
	}
	if n > 0 {
		m.setStatus(fmt.Sprintf("restored %d link(s)", n))
	}
	m.afterChange()
	return m, nil
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.sess.Resize()
		return m, nil

	case dwellMsg:
		if !m.sess.Dragging() || m.dst.dropRow != msg.row {
			return m, nil
		}
		return m, m.hover(msg.row, zoneOffset(m.dst.dropZone))

	case externalEditorDoneMsg:
		m.applyExternalEditorResult(msg)
		return m, nil

	case tea.MouseMsg:
		if m.modal != nil || m.showHelp || m.showPreview {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case m.modal != nil:
			return m.updateModal(msg)
		case m.showHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		case m.showPreview:
			if key.Matches(msg, m.keys.Preview, m.keys.Cancel, m.keys.Quit) {
				m.closePreview()
				return m, nil
			}
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) focused() *pane {
	if m.focus == editor.Dest {
		return m.dst
	}
	return m.src
}

func (m *appModel) setFocus(side editor.Side) {
	m.focus = side
	m.src.focused = side == editor.Source
	m.dst.focused = side == editor.Dest
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *appModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	logging.Debug("tui action failed", "err", err)
}

func (m *appModel) paneSize() (w, h int) {
	w = (m.width-gutterWidth)/2 - 2
	h = m.height - headerHeight - footerHeight - 2
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (m *appModel) layout() {
	w, h := m.paneSize()
	m.src.setSize(w, h)
	m.dst.setSize(w, h)
	m.help.Width = m.width
	m.syncGutter()
}

// afterChange reloads both panes from their editors and redraws the links.
func (m *appModel) afterChange() {
	m.src.refresh()
	m.dst.refresh()
	m.syncGutter()
}

// syncGutter tells the gutter which rows are on screen and redraws every
// connector against them.
func (m *appModel) syncGutter() {
	_, h := m.paneSize()
	m.gutter.setPage(m.src.start(), m.dst.start(), h)

	m.src.anchored = map[string]bool{}
	m.dst.anchored = map[string]bool{}
	for _, p := range m.sess.Pairs() {
		m.src.anchored[p.Source] = true
		m.dst.anchored[p.Dest] = true
	}
	if err := m.sess.Scroll(); err != nil {
		logging.Debug("connectors not fully drawn", "err", err)
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.focused()
	cur := p.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == editor.Source {
			m.setFocus(editor.Dest)
		} else {
			m.setFocus(editor.Source)
		}
		return m, m.hoverCurrent()

	case key.Matches(msg, m.keys.Toggle):
		p.ed.ToggleExpand(cur)
		m.afterChange()
		return m, nil

	case key.Matches(msg, m.keys.ToggleAll):
		p.ed.ToggleCollapse()
		m.afterChange()
		return m, nil

	case key.Matches(msg, m.keys.PickUp):
		return m.pickUp(cur)

	case key.Matches(msg, m.keys.DropCenter):
		return m.drop(dragdrop.ZoneCenter)
	case key.Matches(msg, m.keys.DropAbove):
		return m.drop(dragdrop.ZoneAbove)
	case key.Matches(msg, m.keys.DropBelow):
		return m.drop(dragdrop.ZoneBelow)

	case key.Matches(msg, m.keys.Cancel):
		if m.sess.Dragging() {
			m.cancelDrag()
			m.setStatus("drag cancelled")
		}
		return m, nil

	case key.Matches(msg, m.keys.Disconnect):
		n := len(m.sess.Pairs())
		if n == 0 {
			m.setStatus("no links")
			return m, nil
		}
		m.disconnect(n - 1)
		return m, nil

	case key.Matches(msg, m.keys.DisconnectAll):
		if err := m.sess.DisconnectAll(m.ctx); err != nil {
			m.setError(err)
		} else {
			m.setStatus("all links removed")
		}
		m.afterChange()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if err := p.ed.DeleteItem(cur); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("deleted " + cur.Key())
		m.afterChange()
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		n, err := p.ed.Undo()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.afterChange()
		m.selectNode(p, n)
		m.setStatus("restored " + n.Key())
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if err := p.ed.CopyNode(cur); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("copied " + cur.Key())
		return m, nil

	case key.Matches(msg, m.keys.Paste):
		n, err := p.ed.PasteNode(cur)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		if n == nil {
			m.setStatus("nothing copied")
			return m, nil
		}
		m.afterChange()
		m.selectNode(p, n)
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		if cur == nil {
			return m, nil
		}
		return m.openModal(inputRename, cur, cur.Key())

	case key.Matches(msg, m.keys.SetValue):
		if cur == nil {
			return m, nil
		}
		return m.openModal(inputValue, cur, valueText(cur.Item.Value))

	case key.Matches(msg, m.keys.EditExternal):
		if cur == nil {
			return m, nil
		}
		cmd, err := m.openExternalEditor(p, cur)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m, cmd

	case key.Matches(msg, m.keys.AddChild):
		if cur == nil {
			return m.openModal(inputAddRoot, nil, "")
		}
		n, err := p.ed.AddNewItem(cur)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.afterChange()
		m.selectNode(p, n)
		return m, nil

	case key.Matches(msg, m.keys.AddAbove):
		if cur == nil {
			return m, nil
		}
		return m.openModal(inputAddAbove, cur, "")

	case key.Matches(msg, m.keys.AddBelow):
		if cur == nil {
			return m, nil
		}
		return m.openModal(inputAddBelow, cur, "")

	case key.Matches(msg, m.keys.Select):
		if cur == nil {
			return m, nil
		}
		p.checklist = true
		p.ed.ToggleSelection(cur)
		return m, nil

	case key.Matches(msg, m.keys.Concat):
		if m.focus != editor.Source || cur == nil {
			return m, nil
		}
		p.ed.ToggleConcat(cur)
		return m, nil

	case key.Matches(msg, m.keys.Yank):
		b, err := json.MarshalIndent(m.sess.Script(), "", "  ")
		if err == nil {
			err = copyToClipboard(string(b))
		}
		if err != nil {
			m.setError(fmt.Errorf("copy script: %w", err))
			return m, nil
		}
		m.setStatus("script copied")
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		m.openPreview()
		return m, nil
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	m.syncGutter()
	return m, tea.Batch(cmd, m.hoverCurrent())
}

func (m *appModel) selectNode(p *pane, n *tree.Node) {
	if n == nil {
		return
	}
	for _, f := range p.ed.Rows() {
		if f.Handle() == n.Handle() {
			p.selectRow(f)
			m.syncGutter()
			return
		}
	}
}

func (m appModel) pickUp(row *projector.FlatNode) (tea.Model, tea.Cmd) {
	if m.focus != editor.Source {
		m.setStatus("pick up from the source pane")
		return m, nil
	}
	if row == nil {
		return m, nil
	}
	if err := m.sess.BeginDrag(row); err != nil {
		m.setError(err)
		return m, nil
	}
	m.setStatus("picked up " + m.sess.Source.QualifiedID(row) + ", drop it on a destination row")
	m.setFocus(editor.Dest)
	return m, m.hoverCurrent()
}

// hoverCurrent moves a pending drag over the destination cursor row.
func (m *appModel) hoverCurrent() tea.Cmd {
	if !m.sess.Dragging() || m.focus != editor.Dest {
		return nil
	}
	row := m.dst.current()
	if row == nil {
		m.dst.clearDrop()
		return nil
	}
	return m.hover(row, zoneOffset(dragdrop.ZoneCenter))
}

func (m *appModel) hover(row *projector.FlatNode, offset float64) tea.Cmd {
	h, err := m.sess.HoverDrag(row, offset, 1)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.dst.dropRow = row
	m.dst.dropZone = h.Zone
	if h.Expanded {
		m.afterChange()
		return nil
	}
	if row.Expandable && !m.sess.Dest.IsExpanded(row) {
		return tea.Tick(m.dwell+10*time.Millisecond, func(time.Time) tea.Msg {
			return dwellMsg{row: row}
		})
	}
	return nil
}

// zoneOffset is a pointer offset, within a unit-height row, that lands in z.
func zoneOffset(z dragdrop.Zone) float64 {
	switch z {
	case dragdrop.ZoneAbove:
		return 0.1
	case dragdrop.ZoneBelow:
		return 0.9
	default:
		return 0.5
	}
}

func (m appModel) drop(zone dragdrop.Zone) (tea.Model, tea.Cmd) {
	if !m.sess.Dragging() {
		m.setStatus("nothing picked up; press m on a source row first")
		return m, nil
	}
	row := m.dst.current()
	if row == nil {
		m.setStatus("no destination row to drop on")
		return m, nil
	}
	return m.dropOn(row, zone)
}

func (m appModel) dropOn(row *projector.FlatNode, zone dragdrop.Zone) (tea.Model, tea.Cmd) {
	if _, err := m.sess.HoverDrag(row, zoneOffset(zone), 1); err != nil {
		m.setError(err)
		return m, nil
	}
	res, err := m.sess.EndDrag(m.ctx, row)
	m.dst.clearDrop()
	m.afterChange()
	if err != nil && !isUnresolved(err) {
		m.setError(err)
		return m, nil
	}
	if res.Node != nil {
		m.selectNode(m.dst, res.Node)
	}
	m.setStatus(fmt.Sprintf("linked %s -> %s (%s)", res.Pair.SourceQID(), res.Pair.DestQID(), res.Zone))
	return m, nil
}

func (m *appModel) cancelDrag() {
	m.sess.CancelDrag()
	m.dst.clearDrop()
	m.mouseDrag = false
}

func (m *appModel) disconnect(i int) {
	p, err := m.sess.Disconnect(m.ctx, i)
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus(fmt.Sprintf("removed link %s -> %s", p.SourceQID(), p.DestQID()))
	}
	m.afterChange()
}

func (m appModel) openModal(purpose inputPurpose, row *projector.FlatNode, initial string) (tea.Model, tea.Cmd) {
	w := m.width / 2
	if w > 60 {
		w = 60
	}
	m.modal = newInputModal(purpose, m.focused(), row, initial, w)
	return m, m.modal.Init()
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = nil
		return m, nil
	case tea.KeyEnter:
		md := m.modal
		m.modal = nil
		if err := m.applyModal(md); err != nil {
			m.setError(err)
		}
		m.afterChange()
		return m, nil
	}
	_, cmd := m.modal.Update(msg)
	return m, cmd
}

func (m *appModel) applyModal(md *inputModal) error {
	ed := md.pane.ed
	text := strings.TrimSpace(md.Value())
	switch md.purpose {
	case inputRename:
		return ed.SaveNode(md.row, text)
	case inputValue:
		if md.row.Key() == editor.OperationKey {
			return ed.SelectOperation(md.row, text)
		}
		return ed.SetValue(md.row, parseValue(text))
	case inputAddAbove:
		n, err := ed.InsertAbove(md.row, text, nil)
		if err != nil {
			return err
		}
		m.afterChange()
		m.selectNode(md.pane, n)
	case inputAddBelow:
		n, err := ed.InsertBelow(md.row, text, nil)
		if err != nil {
			return err
		}
		m.afterChange()
		m.selectNode(md.pane, n)
	case inputAddRoot:
		if text == "" {
			return errors.New("a field needs a name")
		}
		n := ed.InsertBaseItem(text)
		m.afterChange()
		m.selectNode(md.pane, n)
	}
	return nil
}

// parseValue reads typed scalars the way documents are parsed: numbers,
// booleans and null keep their type, anything else is a string.
func parseValue(s string) any {
	if s == "" {
		return nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return v
}

// openPreview hides the connectors while the script covers the panes.
func (m *appModel) openPreview() {
	if err := m.sess.Deactivate(); err != nil {
		logging.Debug("deactivate connectors", "err", err)
	}
	w, h := m.width*3/4, m.height*3/4
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	body, err := json.MarshalIndent(m.sess.Script(), "", "  ")
	if err != nil {
		m.setError(err)
		return
	}
	vp := viewport.New(w, h)
	vp.SetContent(RenderMarkdown(scriptMarkdown("Shift script", body), w-2))
	m.preview = vp
	m.showPreview = true
}

func (m *appModel) closePreview() {
	m.showPreview = false
	if err := m.sess.Activate(); err != nil {
		logging.Debug("activate connectors", "err", err)
	}
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	w, _ := m.paneSize()
	outer := w + 2
	y := msg.Y - headerHeight - 1

	var p *pane
	inGutter := false
	switch {
	case msg.X < outer:
		p = m.src
	case msg.X < outer+gutterWidth:
		inGutter = true
	default:
		p = m.dst
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if p == nil {
			return m, nil
		}
		if msg.Button == tea.MouseButtonWheelUp {
			p.list.CursorUp()
		} else {
			p.list.CursorDown()
		}
		m.syncGutter()
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if inGutter {
			if i, ok := connectorAt(m.sess.Connectors(), y); ok {
				m.disconnect(i)
			}
			return m, nil
		}
		row, ok := p.rowAt(y)
		if !ok {
			return m, nil
		}
		p.selectRow(row)
		m.setFocus(p.ed.Side())
		if p == m.src {
			if err := m.sess.BeginDrag(row); err != nil {
				m.setError(err)
				return m, nil
			}
			m.mouseDrag = true
		}
		m.syncGutter()
		return m, nil

	case tea.MouseActionMotion:
		if !m.mouseDrag || p != m.dst {
			return m, nil
		}
		row, ok := p.rowAt(y)
		if !ok {
			m.dst.clearDrop()
			return m, nil
		}
		return m, m.hover(row, zoneOffset(dragdrop.ZoneCenter))

	case tea.MouseActionRelease:
		if !m.mouseDrag {
			return m, nil
		}
		m.mouseDrag = false
		if p == m.dst {
			if row, ok := p.rowAt(y); ok {
				m.dst.selectRow(row)
				m.setFocus(editor.Dest)
				return m.dropOn(row, dragdrop.ZoneCenter)
			}
		}
		m.cancelDrag()
		return m, nil
	}
	return m, nil
}

func isUnresolved(err error) bool {
	var ue connector.UnresolvedAnchorError
	return errors.As(err, &ue)
}

// Run starts the interactive mapping view on the two documents.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)

	m, err := newAppModel(ctx, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}
