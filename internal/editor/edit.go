package editor

import (
	"strconv"

	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

func operationChild() *tree.Node { return tree.NewNode(OperationKey, nil) }

// AddNewItem adds a child under row. Under an array the child is keyed by its
// index and carries an operation placeholder; under an object it is a blank
// placeholder awaiting a key. The row is expanded.
func (e *Editor) AddNewItem(row *projector.FlatNode) (*tree.Node, error) {
	parent, err := e.Node(row)
	if err != nil {
		return nil, err
	}
	var n *tree.Node
	if row.Item.IsArray {
		item := tree.NewNode(strconv.Itoa(len(parent.Children)), nil)
		item.Children = []*tree.Node{operationChild()}
		n, err = e.store.InsertNode(parent, item)
	} else {
		n, err = e.store.Insert(parent, "", nil)
	}
	if err != nil {
		return nil, err
	}
	e.Expand(row)
	return n, nil
}

// InsertBaseItem appends a root item named name with an operation placeholder.
func (e *Editor) InsertBaseItem(name string) *tree.Node {
	n := tree.NewNode(name, nil)
	n.Children = []*tree.Node{operationChild()}
	return e.store.AppendRoot(n)
}

func (e *Editor) InsertAbove(row *projector.FlatNode, key string, value any) (*tree.Node, error) {
	n, err := e.Node(row)
	if err != nil {
		return nil, err
	}
	return e.store.InsertAbove(n, key, value)
}

func (e *Editor) InsertBelow(row *projector.FlatNode, key string, value any) (*tree.Node, error) {
	n, err := e.Node(row)
	if err != nil {
		return nil, err
	}
	return e.store.InsertBelow(n, key, value)
}

// SaveNode renames row's key.
func (e *Editor) SaveNode(row *projector.FlatNode, key string) error {
	n, err := e.Node(row)
	if err != nil {
		return err
	}
	return e.store.Update(n, key)
}

func (e *Editor) SetValue(row *projector.FlatNode, value any) error {
	n, err := e.Node(row)
	if err != nil {
		return err
	}
	return e.store.SetValue(n, value)
}

// SelectOperation reacts to choosing an operation for an "operation" row.
// Choosing "script" adds script and destination placeholders beside it.
func (e *Editor) SelectOperation(row *projector.FlatNode, op string) error {
	n, err := e.Node(row)
	if err != nil {
		return err
	}
	if err := e.store.SetValue(n, op); err != nil {
		return err
	}
	if op != "script" {
		return nil
	}
	parent, ok := e.store.Parent(n)
	if !ok {
		return tree.InvalidParentError{Handle: n.Handle()}
	}
	if _, err := e.store.Insert(parent, "script", nil); err != nil {
		return err
	}
	_, err = e.store.Insert(parent, "destination", nil)
	return err
}

// DeleteItem removes row's node and remembers it for Undo.
func (e *Editor) DeleteItem(row *projector.FlatNode) error {
	n, err := e.Node(row)
	if err != nil {
		return err
	}
	parent, _ := e.store.Parent(n)
	if err := e.store.Delete(n); err != nil {
		return err
	}
	e.undo.Record(tree.Activity{Type: tree.ActivityDeleted, Node: n, Parent: parent})
	if e.copied == n {
		e.copied = nil
	}
	logging.Debug("node deleted", "side", string(e.side), "key", n.Key())
	return nil
}

// Undo restores the most recent deletion by re-appending it to its former
// parent.
func (e *Editor) Undo() (*tree.Node, error) {
	return e.undo.Undo(e.store)
}

// CanUndo reports whether a deletion is remembered.
func (e *Editor) CanUndo() bool {
	_, ok := e.undo.Recent()
	return ok
}

// CopyNode puts row's node in the copy buffer.
func (e *Editor) CopyNode(row *projector.FlatNode) error {
	n, err := e.Node(row)
	if err != nil {
		return err
	}
	e.copied = n
	return nil
}

// HasCopy reports whether the copy buffer holds a node.
func (e *Editor) HasCopy() bool { return e.copied != nil }

// PasteNode clones the copy buffer as a new child of row and expands the
// clone. It is a no-op with an empty buffer.
func (e *Editor) PasteNode(row *projector.FlatNode) (*tree.Node, error) {
	if e.copied == nil {
		return nil, nil
	}
	to, err := e.Node(row)
	if err != nil {
		return nil, err
	}
	n, err := e.store.CopySubtree(e.copied, to)
	if err != nil {
		return nil, err
	}
	e.exp.Expand(row)
	if f, ok := e.Row(n); ok {
		e.exp.ExpandDescendants(e.proj, f)
	}
	e.restructured()
	return n, nil
}

// IsSelected reports the checklist state of row.
func (e *Editor) IsSelected(row *projector.FlatNode) bool {
	return row != nil && e.selected[row.Handle()]
}

// ToggleSelection flips row and sets every descendant to the same state.
func (e *Editor) ToggleSelection(row *projector.FlatNode) {
	if row == nil {
		return
	}
	on := !e.IsSelected(row)
	for _, f := range append([]*projector.FlatNode{row}, e.proj.Descendants(row)...) {
		if on {
			e.selected[f.Handle()] = true
		} else {
			delete(e.selected, f.Handle())
		}
	}
}

// DescendantsAllSelected reports whether every descendant of row is
// selected. Leaves report true.
func (e *Editor) DescendantsAllSelected(row *projector.FlatNode) bool {
	for _, f := range e.proj.Descendants(row) {
		if !e.selected[f.Handle()] {
			return false
		}
	}
	return true
}

// DescendantsPartiallySelected reports some but not all descendants selected.
func (e *Editor) DescendantsPartiallySelected(row *projector.FlatNode) bool {
	some := false
	for _, f := range e.proj.Descendants(row) {
		if e.selected[f.Handle()] {
			some = true
			break
		}
	}
	return some && !e.DescendantsAllSelected(row)
}

// ToggleConcat flips the concat mark of a source row.
func (e *Editor) ToggleConcat(row *projector.FlatNode) {
	if row != nil {
		row.SelectConcat = !row.SelectConcat
	}
}
