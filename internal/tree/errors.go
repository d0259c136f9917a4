package tree

import "fmt"

// InvalidParentError is returned when an insert targets a node that is not
// part of the store's current tree.
type InvalidParentError struct {
	Handle Handle
}

func (e InvalidParentError) Error() string {
	return fmt.Sprintf("invalid parent: node %d is not part of the tree", e.Handle)
}

// NotFoundError is returned when an operation's subject is not in the tree.
type NotFoundError struct {
	Kind   string
	Handle Handle
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.Handle)
}
