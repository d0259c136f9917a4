package tree

import "errors"

type ActivityType int

const (
	ActivityAdded ActivityType = iota
	ActivityDeleted
)

func (t ActivityType) String() string {
	switch t {
	case ActivityAdded:
		return "added"
	case ActivityDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Activity records one structural change. Parent is nil for root nodes.
type Activity struct {
	Type   ActivityType
	Node   *Node
	Parent *Node
}

// ErrNothingToUndo is returned by Undo when no deletion is recorded.
var ErrNothingToUndo = errors.New("nothing to undo")

// UndoLog keeps only the most recent deletion. It is a single slot, not a
// stack: recording replaces whatever was there.
type UndoLog struct {
	recent *Activity
}

// Record remembers a; only deletions are kept.
func (u *UndoLog) Record(a Activity) {
	if a.Type != ActivityDeleted {
		return
	}
	u.recent = &a
}

// Recent returns the remembered activity, if any.
func (u *UndoLog) Recent() (Activity, bool) {
	if u.recent == nil {
		return Activity{}, false
	}
	return *u.recent, true
}

// Undo re-appends the deleted node to its former parent (or the roots). The
// node goes to the end of the sibling list, not back to its old index. The
// slot is cleared whether or not the restore succeeds.
func (u *UndoLog) Undo(s *Store) (*Node, error) {
	a := u.recent
	u.recent = nil
	if a == nil {
		return nil, ErrNothingToUndo
	}
	if a.Parent == nil {
		return s.AppendRoot(a.Node), nil
	}
	return s.InsertNode(a.Parent, a.Node)
}
