// Package session is the mapping wizard: a source and a destination editor,
// the connectors drawn between them, and the shift script those connectors
// produce.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/editor"
	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/rules"
	"shiftmap-cli/internal/store"
)

// ErrNoDrag is returned when a drop or hover arrives without a pick-up.
var ErrNoDrag = errors.New("no drag in progress")

type Options struct {
	Name  string
	Dwell time.Duration
	Clock func() time.Time

	// Resolver defaults to RowAnchors over the two editors.
	Resolver connector.AnchorResolver
	// Renderer defaults to NopRenderer.
	Renderer connector.Renderer
	// Journal is optional.
	Journal *store.Journal
}

type Session struct {
	Source *editor.Editor
	Dest   *editor.Editor

	name    string
	conns   *connector.Model
	script  *rules.Script
	preview doc.Object

	journal *store.Journal
	record  *store.Session

	// dragging holds the serialized payload between pick-up and drop.
	dragging []byte
}

func New(opts Options) *Session {
	var dd []dragdrop.Option
	if opts.Dwell > 0 {
		dd = append(dd, dragdrop.WithDwell(opts.Dwell))
	}
	if opts.Clock != nil {
		dd = append(dd, dragdrop.WithClock(opts.Clock))
	}
	s := &Session{
		Source:  editor.New(editor.Source, dd...),
		Dest:    editor.New(editor.Dest, dd...),
		name:    opts.Name,
		script:  rules.NewScript(),
		preview: doc.Object{},
		journal: opts.Journal,
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = RowAnchors{Source: s.Source, Dest: s.Dest}
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	s.conns = connector.NewModel(resolver, renderer)
	s.Source.OnRestructure(s.redraw)
	s.Dest.OnRestructure(s.redraw)
	return s
}

func (s *Session) redraw() {
	if err := s.conns.Redraw(); err != nil {
		logging.Debug("redraw after restructure", "err", err)
	}
}

// Load replaces both documents. Connectors, script and preview are cleared.
func (s *Session) Load(source, dest any) {
	s.conns.RemoveAll()
	s.script.Reset()
	s.preview = doc.Object{}
	s.record = nil
	s.dragging = nil
	s.Source.Load(source)
	s.Dest.Load(dest)
}

func (s *Session) Connectors() *connector.Model { return s.conns }
func (s *Session) Script() *rules.Script        { return s.script }

// Pairs returns the registered connectors in order.
func (s *Session) Pairs() []connector.Pair { return s.conns.Pairs() }

// Preview is the live destQid -> sourceQid mapping.
func (s *Session) Preview() doc.Object {
	out := make(doc.Object, len(s.preview))
	copy(out, s.preview)
	return out
}

// Destination materializes the destination tree as currently edited.
func (s *Session) Destination() any {
	return rules.Materialize(s.Dest.Store().Roots(), s.Dest.RootIsArray())
}

// Apply runs the current script against a source document.
func (s *Session) Apply(input any) doc.Object {
	return rules.Apply(s.script, input)
}

// Record is the journal session, nil when there is no journal or Restore has
// not run.
func (s *Session) Record() *store.Session { return s.record }

// Connect registers a connector from an event of the form
// <prefixedSourceId>|<prefixedDestId>, recording the shift and the preview
// entry. A connector whose anchors cannot be drawn is still registered; the
// UnresolvedAnchorError comes back alongside.
func (s *Session) Connect(ctx context.Context, event string) (connector.Pair, error) {
	p, err := connector.ParseEvent(event)
	if err != nil {
		return connector.Pair{}, err
	}
	if err := s.forget(ctx, p); err != nil {
		return p, err
	}
	drawErr := s.connect(p)
	if err := s.journalAppend(ctx, p); err != nil {
		return p, err
	}
	return p, drawErr
}

// forget drops an identical pair registered earlier, so connecting it again
// moves it to the end of the list instead of adding a second copy.
func (s *Session) forget(ctx context.Context, p connector.Pair) error {
	for i, q := range s.conns.Pairs() {
		if q != p {
			continue
		}
		if _, err := s.conns.Remove(i); err != nil {
			logging.Debug("connector not fully drawn", "event", p.Event(), "err", err)
		}
		if s.journal != nil && s.record != nil {
			return s.journal.DeleteConnector(ctx, s.record.ID, p.Source, p.Dest)
		}
		return nil
	}
	return nil
}

func (s *Session) connect(p connector.Pair) error {
	s.preview.Set(p.DestQID(), p.SourceQID())
	s.script.RecordShift(p.DestQID(), p.SourceQID())
	err := s.conns.Register(p)
	if err != nil {
		logging.Debug("connector not fully drawn", "event", p.Event(), "err", err)
	}
	return err
}

// BeginDrag picks up a source row.
func (s *Session) BeginDrag(row *projector.FlatNode) error {
	payload, err := s.Source.DragStart(row)
	if err != nil {
		return err
	}
	b, err := payload.Marshal()
	if err != nil {
		return err
	}
	s.dragging = b
	return nil
}

// Dragging reports whether a pick-up is waiting for a drop.
func (s *Session) Dragging() bool { return s.dragging != nil }

// HoverDrag moves the drag over a destination row.
func (s *Session) HoverDrag(row *projector.FlatNode, offsetY, height float64) (dragdrop.Hover, error) {
	if s.dragging == nil {
		return dragdrop.Hover{}, ErrNoDrag
	}
	return s.Dest.DragOver(row, offsetY, height), nil
}

// EndDrag drops the picked-up row on a destination row and connects the two.
func (s *Session) EndDrag(ctx context.Context, row *projector.FlatNode) (editor.DropResult, error) {
	b := s.dragging
	defer s.CancelDrag()
	if b == nil {
		return editor.DropResult{}, ErrNoDrag
	}
	payload, err := dragdrop.UnmarshalPayload(b)
	if err != nil {
		return editor.DropResult{}, err
	}
	res, err := s.Dest.Drop(row, payload)
	if err != nil {
		return editor.DropResult{}, err
	}
	_, err = s.Connect(ctx, res.Event())
	return res, err
}

// CancelDrag ends the gesture on both sides without dropping.
func (s *Session) CancelDrag() {
	s.dragging = nil
	s.Source.DragEnd()
	s.Dest.DragEnd()
}

// Transfer performs a whole drag gesture: pick up srcRow, hover dstRow at
// offsetY of height, drop.
func (s *Session) Transfer(ctx context.Context, srcRow, dstRow *projector.FlatNode, offsetY, height float64) (editor.DropResult, error) {
	if err := s.BeginDrag(srcRow); err != nil {
		return editor.DropResult{}, err
	}
	if _, err := s.HoverDrag(dstRow, offsetY, height); err != nil {
		s.CancelDrag()
		return editor.DropResult{}, err
	}
	return s.EndDrag(ctx, dstRow)
}

// Link is Transfer addressed by qualified ids, with a center drop.
func (s *Session) Link(ctx context.Context, sourceQID, destQID string) (editor.DropResult, error) {
	src, ok := s.Source.Find(sourceQID)
	if !ok {
		return editor.DropResult{}, fmt.Errorf("source field not found: %s", sourceQID)
	}
	dst, ok := s.Dest.Find(destQID)
	if !ok {
		return editor.DropResult{}, fmt.Errorf("destination field not found: %s", destQID)
	}
	return s.Transfer(ctx, src, dst, 0.5, 1)
}

// Disconnect removes connector i. The shift entry and preview for its
// destination fall back to the newest remaining connector on that
// destination, or go away when there is none.
func (s *Session) Disconnect(ctx context.Context, i int) (connector.Pair, error) {
	p, err := s.conns.Remove(i)
	if err != nil {
		return connector.Pair{}, err
	}
	s.rebindDest(p.DestQID())
	if s.journal != nil && s.record != nil {
		if err := s.journal.DeleteConnector(ctx, s.record.ID, p.Source, p.Dest); err != nil {
			return p, err
		}
		if err := s.saveScript(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *Session) rebindDest(destQID string) {
	pairs := s.conns.Pairs()
	for i := len(pairs) - 1; i >= 0; i-- {
		if pairs[i].DestQID() == destQID {
			s.preview.Set(destQID, pairs[i].SourceQID())
			s.script.RecordShift(destQID, pairs[i].SourceQID())
			return
		}
	}
	s.preview.Delete(destQID)
	s.script.RemoveShift(destQID)
}

// DisconnectAll removes every connector and empties the script.
func (s *Session) DisconnectAll(ctx context.Context) error {
	s.conns.RemoveAll()
	s.script.Reset()
	s.preview = doc.Object{}
	if s.journal != nil && s.record != nil {
		if err := s.journal.DeleteConnectors(ctx, s.record.ID); err != nil {
			return err
		}
		return s.saveScript(ctx)
	}
	return nil
}

// Scroll redraws every connector against the new row positions.
func (s *Session) Scroll() error { return s.conns.Redraw() }

// Resize recomputes line geometry without re-resolving anchors.
func (s *Session) Resize() { s.conns.Reposition() }

// Activate resumes drawing when the mapping view regains focus.
func (s *Session) Activate() error { return s.conns.SetActive(true) }

// Deactivate stops drawing while the mapping view is hidden.
func (s *Session) Deactivate() error { return s.conns.SetActive(false) }

// Restore binds the session to the journal. The newest journaled session for
// the same document pair is reopened and its connectors re-registered; when
// there is none a new journal session starts. It returns how many connectors
// were restored.
func (s *Session) Restore(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	srcFP, err := fingerprint(s.Source.Value())
	if err != nil {
		return 0, err
	}
	dstFP, err := fingerprint(s.Dest.Value())
	if err != nil {
		return 0, err
	}
	rec, ok, err := s.journal.FindSession(ctx, srcFP, dstFP)
	if err != nil {
		return 0, err
	}
	if !ok {
		rec, err = s.journal.CreateSession(ctx, s.name, srcFP, dstFP)
		if err != nil {
			return 0, err
		}
		s.record = &rec
		return 0, nil
	}
	s.record = &rec

	recs, err := s.journal.Connectors(ctx, rec.ID)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, c := range recs {
		p, err := connector.ParseEvent(c.SourceID + connector.EventSeparator + c.DestID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.connect(p); err != nil {
			errs = append(errs, err)
		}
	}
	logging.Info("session restored", "session", rec.ID, "connectors", len(recs))
	return len(recs), errors.Join(errs...)
}

func (s *Session) journalAppend(ctx context.Context, p connector.Pair) error {
	if s.journal == nil || s.record == nil {
		return nil
	}
	if _, err := s.journal.AppendConnector(ctx, s.record.ID, p.Source, p.Dest); err != nil {
		return fmt.Errorf("journal connector: %w", err)
	}
	return s.saveScript(ctx)
}

func (s *Session) saveScript(ctx context.Context) error {
	b, err := json.Marshal(s.script)
	if err != nil {
		return err
	}
	if err := s.journal.SaveScript(ctx, s.record.ID, b); err != nil {
		return fmt.Errorf("journal script: %w", err)
	}
	return nil
}

func fingerprint(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return store.Fingerprint(b)
}
