package ast

// Action tells Walk how to continue after visiting a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// Skip leaves the node's children unvisited.
	Skip
	// Replaced means the visitor rewrote the node into a shape that must
	// not be revisited; traversal resumes at the next sibling.
	Replaced
	// Stop aborts the whole traversal.
	Stop
)

// Visitor is called once per visited node.
type Visitor func(id NodeID) Action

// Walk visits every node reachable from root depth-first, pre-order. The
// node's operands are read after the visitor returns, so in-place rewrites
// of the current node are what the walk descends into, and later siblings
// observe rewrites made at earlier positions. No node is visited twice.
//
// Walk reports false if a visitor returned Stop.
func (a *Arena) Walk(root NodeID, fn Visitor) bool {
	w := &walker{arena: a, fn: fn, seen: make(map[NodeID]bool)}
	return w.walk(root)
}

// WalkTag is Walk restricted to nodes tagged tag. Non-matching nodes are
// still descended through.
func (a *Arena) WalkTag(root NodeID, tag Tag, fn Visitor) bool {
	return a.Walk(root, func(id NodeID) Action {
		if a.Node(id).Tag != tag {
			return Continue
		}
		return fn(id)
	})
}

type walker struct {
	arena *Arena
	fn    Visitor
	seen  map[NodeID]bool
}

func (w *walker) walk(id NodeID) bool {
	if w.seen[id] {
		return true
	}
	w.seen[id] = true

	switch w.fn(id) {
	case Stop:
		return false
	case Skip, Replaced:
		return true
	}

	n := w.arena.Node(id)
	// Index loop: operands may be rewritten by visits of earlier children.
	for i := 0; i < len(n.Args); i++ {
		v := n.Args[i]
		if !v.IsNode() {
			continue
		}
		if !w.walk(v.Node) {
			return false
		}
	}
	return true
}
