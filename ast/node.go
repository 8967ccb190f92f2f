package ast

import "fmt"

// ---------------------------------------------------------------------------
// Arena tree: nodes addressed by index, mutated in place by passes.
// ---------------------------------------------------------------------------

// NodeID addresses a node inside an Arena. The zero ID is never valid.
type NodeID int32

// Position represents a source location.
type Position struct {
	File   string
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String formats the position the way diagnostics print it.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s: line %d, column %d", p.File, p.Line, p.Column)
}

// Kind discriminates the operand variants of a Value.
type Kind byte

const (
	KindNil Kind = iota
	KindSymbol
	KindString
	KindInt
	KindNode
)

// Value is one operand of a node: nil, a symbol, a string literal, an
// integer literal, or a reference to a child node.
type Value struct {
	Kind Kind
	Text string // symbol name or string contents
	Int  int64
	Node NodeID
}

// Nil is the absent operand.
var Nil = Value{}

// Sym makes a symbol operand.
func Sym(name string) Value { return Value{Kind: KindSymbol, Text: name} }

// Str makes a string literal operand.
func Str(s string) Value { return Value{Kind: KindString, Text: s} }

// Int makes an integer literal operand.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Ref makes an operand referring to a child node.
func Ref(id NodeID) Value { return Value{Kind: KindNode, Node: id} }

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsSymbol() bool { return v.Kind == KindSymbol }
func (v Value) IsString() bool { return v.Kind == KindString }
func (v Value) IsInt() bool    { return v.Kind == KindInt }
func (v Value) IsNode() bool   { return v.Kind == KindNode }

// Is reports whether v is the symbol name.
func (v Value) Is(name string) bool {
	return v.Kind == KindSymbol && v.Text == name
}

// Node is one s-expression: a tag plus operands.
type Node struct {
	Tag   Tag
	Args  []Value
	Pos   Position
	Extra map[string]any // annotation side-table (e.g. "varfreq")
}

// Arg returns operand i, or Nil when the node is shorter.
func (n *Node) Arg(i int) Value {
	if i < 0 || i >= len(n.Args) {
		return Nil
	}
	return n.Args[i]
}

// Set rewrites the node's shape in place, keeping its identity.
func (n *Node) Set(tag Tag, args ...Value) {
	n.Tag = tag
	n.Args = args
}

// Annotate stores an annotation on the node.
func (n *Node) Annotate(key string, value any) {
	if n.Extra == nil {
		n.Extra = make(map[string]any)
	}
	n.Extra[key] = value
}

// Arena owns every node of one compilation unit.
//
// Pointers returned by Node stay valid for the life of the arena; Replace
// swaps slot contents rather than the slot itself.
type Arena struct {
	nodes []*Node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	// Slot 0 is reserved so the zero NodeID is never a real node.
	return &Arena{nodes: []*Node{nil}}
}

// New allocates a node and returns its ID.
func (a *Arena) New(tag Tag, pos Position, args ...Value) NodeID {
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, &Node{Tag: tag, Args: args, Pos: pos})
	return id
}

// List allocates an untagged sequence node.
func (a *Arena) List(pos Position, elems ...Value) NodeID {
	return a.New(TagList, pos, elems...)
}

// Node returns the node behind id. It panics on an invalid ID, which is
// always an internal bug.
func (a *Arena) Node(id NodeID) *Node {
	if id <= 0 || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("ast: invalid node id %d", id))
	}
	return a.nodes[id]
}

// Valid reports whether id refers to a node of this arena.
func (a *Arena) Valid(id NodeID) bool {
	return id > 0 && int(id) < len(a.nodes)
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Replace splices src into the tree at id's position: id takes src's tag,
// operands, and annotations. The parent's reference to id stays valid.
// Position is kept unless src carries one.
func (a *Arena) Replace(id, src NodeID) {
	dst := a.Node(id)
	s := a.Node(src)
	pos := dst.Pos
	*dst = *s
	if s.Pos == (Position{}) {
		dst.Pos = pos
	}
	dst.Args = append([]Value(nil), s.Args...)
	dst.Extra = nil
	for k, v := range s.Extra {
		dst.Annotate(k, v)
	}
}

// Children returns the IDs of the node's direct child nodes, in operand
// order.
func (a *Arena) Children(id NodeID) []NodeID {
	var out []NodeID
	for _, v := range a.Node(id).Args {
		if v.IsNode() {
			out = append(out, v.Node)
		}
	}
	return out
}

// Elems returns the operands of a sequence operand. A TagList node yields
// its elements; any other value is treated as a one-element sequence, and
// Nil as an empty one. This absorbs the parser's habit of leaving
// single-element argument lists bare.
func (a *Arena) Elems(v Value) []Value {
	switch {
	case v.IsNil():
		return nil
	case v.IsNode() && a.Node(v.Node).Tag == TagList:
		return a.Node(v.Node).Args
	default:
		return []Value{v}
	}
}

// Symbols returns the symbol names of a sequence operand, skipping
// anything that is not a symbol.
func (a *Arena) Symbols(v Value) []string {
	var out []string
	for _, e := range a.Elems(v) {
		if e.IsSymbol() {
			out = append(out, e.Text)
		}
	}
	return out
}

// Clone deep-copies the subtree rooted at id into fresh nodes of the same
// arena. Passes never copy trees; this exists for tooling and tests.
func (a *Arena) Clone(id NodeID) NodeID {
	n := a.Node(id)
	args := make([]Value, len(n.Args))
	for i, v := range n.Args {
		if v.IsNode() {
			v = Ref(a.Clone(v.Node))
		}
		args[i] = v
	}
	out := a.New(n.Tag, n.Pos, args...)
	for k, v := range n.Extra {
		a.Node(out).Annotate(k, v)
	}
	return out
}
