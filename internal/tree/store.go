package tree

// Store owns the root sequence of a tree and publishes the whole sequence to
// subscribers after every mutation. Consumers rebuild their views from it;
// there is no diff stream.
type Store struct {
	roots []*Node
	subs  map[int]func([]*Node)
	seq   int
}

func NewStore() *Store {
	return &Store{subs: map[int]func([]*Node){}}
}

// Roots returns the live root sequence.
func (s *Store) Roots() []*Node { return s.roots }

// Subscribe registers fn for change notifications and calls it once with the
// current roots. The returned func unsubscribes.
func (s *Store) Subscribe(fn func([]*Node)) func() {
	s.seq++
	id := s.seq
	s.subs[id] = fn
	fn(s.roots)
	return func() { delete(s.subs, id) }
}

func (s *Store) publish() {
	for i := 1; i <= s.seq; i++ {
		if fn, ok := s.subs[i]; ok {
			fn(s.roots)
		}
	}
}

// Load replaces the tree with one built from a document value.
func (s *Store) Load(v any) {
	s.roots = Build(v)
	s.publish()
}

// SetRoots replaces the tree with nodes as-is.
func (s *Store) SetRoots(nodes []*Node) {
	s.roots = nodes
	s.publish()
}

// Touch republishes the unchanged tree (after an in-place edit made elsewhere).
func (s *Store) Touch() { s.publish() }

// Contains reports whether n is reachable from the roots.
func (s *Store) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	found := false
	Walk(s.roots, func(x *Node, _ int) bool {
		if x == n {
			found = true
			return false
		}
		return true
	})
	return found
}

// Parent returns n's parent by scanning the tree. Roots (and unknown nodes)
// report ok=false.
func (s *Store) Parent(n *Node) (*Node, bool) {
	for _, r := range s.roots {
		if p := parentIn(r, n); p != nil {
			return p, true
		}
	}
	return nil, false
}

func parentIn(cur, n *Node) *Node {
	for _, ch := range cur.Children {
		if ch == n {
			return cur
		}
		if p := parentIn(ch, n); p != nil {
			return p
		}
	}
	return nil
}

// Insert appends a new leaf under parent.
func (s *Store) Insert(parent *Node, key string, value any) (*Node, error) {
	return s.InsertNode(parent, NewNode(key, value))
}

// InsertNode appends an existing (detached) node under parent.
func (s *Store) InsertNode(parent, n *Node) (*Node, error) {
	if !s.Contains(parent) {
		return nil, InvalidParentError{Handle: parent.Handle()}
	}
	if parent.Children == nil {
		parent.Children = []*Node{}
	}
	parent.Children = append(parent.Children, n)
	s.publish()
	return n, nil
}

// AppendRoot appends n to the root sequence.
func (s *Store) AppendRoot(n *Node) *Node {
	s.roots = append(s.roots, n)
	s.publish()
	return n
}

// InsertAbove splices a new sibling immediately before node.
func (s *Store) InsertAbove(node *Node, key string, value any) (*Node, error) {
	return s.insertSibling(node, NewNode(key, value), 0)
}

// InsertBelow splices a new sibling immediately after node.
func (s *Store) InsertBelow(node *Node, key string, value any) (*Node, error) {
	return s.insertSibling(node, NewNode(key, value), 1)
}

func (s *Store) insertSibling(node, n *Node, offset int) (*Node, error) {
	if p, ok := s.Parent(node); ok {
		p.Children = spliceAt(p.Children, indexOf(p.Children, node)+offset, n)
		s.publish()
		return n, nil
	}
	i := indexOf(s.roots, node)
	if i < 0 {
		return nil, NotFoundError{Kind: "node", Handle: node.Handle()}
	}
	s.roots = spliceAt(s.roots, i+offset, n)
	s.publish()
	return n, nil
}

// Delete removes the first occurrence of node (by identity) from the tree.
func (s *Store) Delete(node *Node) error {
	var ok bool
	s.roots, ok = deleteFrom(s.roots, node)
	if !ok {
		return NotFoundError{Kind: "node", Handle: node.Handle()}
	}
	s.publish()
	return nil
}

func deleteFrom(nodes []*Node, target *Node) ([]*Node, bool) {
	if i := indexOf(nodes, target); i >= 0 {
		return append(nodes[:i:i], nodes[i+1:]...), true
	}
	for _, n := range nodes {
		if len(n.Children) == 0 {
			continue
		}
		next, ok := deleteFrom(n.Children, target)
		if ok {
			n.Children = next
			return nodes, true
		}
	}
	return nodes, false
}

// Update renames node in place.
func (s *Store) Update(node *Node, key string) error {
	if !s.Contains(node) {
		return NotFoundError{Kind: "node", Handle: node.Handle()}
	}
	node.Item.Key = key
	s.publish()
	return nil
}

// SetValue replaces node's scalar value in place.
func (s *Store) SetValue(node *Node, value any) error {
	if !s.Contains(node) {
		return NotFoundError{Kind: "node", Handle: node.Handle()}
	}
	node.Item.Value = value
	s.publish()
	return nil
}

// CopySubtree deep-clones from as a new last child of to.
func (s *Store) CopySubtree(from, to *Node) (*Node, error) {
	return s.InsertNode(to, from.Clone())
}

// CopySubtreeAbove deep-clones from as the sibling immediately before to.
func (s *Store) CopySubtreeAbove(from, to *Node) (*Node, error) {
	return s.insertSibling(to, from.Clone(), 0)
}

// CopySubtreeBelow deep-clones from as the sibling immediately after to.
func (s *Store) CopySubtreeBelow(from, to *Node) (*Node, error) {
	return s.insertSibling(to, from.Clone(), 1)
}

// CopyValueOnly pastes onto an existing field instead of into it: to's value
// becomes from's key, marking to as fed by that field. to is returned.
func (s *Store) CopyValueOnly(from, to *Node) (*Node, error) {
	if !s.Contains(to) {
		return nil, NotFoundError{Kind: "node", Handle: to.Handle()}
	}
	to.Item.Value = from.Item.Key
	s.publish()
	return to, nil
}

func indexOf(nodes []*Node, n *Node) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return -1
}

func spliceAt(nodes []*Node, i int, n *Node) []*Node {
	if i < 0 {
		i = 0
	}
	if i > len(nodes) {
		i = len(nodes)
	}
	out := make([]*Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}
