// Package transform implements the rewrite passes that lower a parsed
// tree into the core form the code generator consumes.
//
// Every pass takes the compilation Context and the root of the tree and
// mutates the tree in place. Passes run in the fixed order given by
// Pipeline; later passes assume the shapes earlier passes produce.
package transform

import (
	"fmt"

	"github.com/chazu/xform/ast"
	"github.com/chazu/xform/scope"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("xform.transform")

// Options controls the pipeline.
type Options struct {
	// WordSize is the byte size of one environment slot.
	WordSize int
	// LabelPrefix prefixes generated literal and function labels.
	LabelPrefix string
	// Disabled names passes to skip. Debugging aid only: the output of a
	// partial pipeline is not valid code generator input.
	Disabled []string
	// Reserved method names are interned before anything else and take
	// the lowest vtable offsets, in order.
	Reserved []string
}

// DefaultOptions returns the options the pipeline runs with when nothing
// is configured.
func DefaultOptions() Options {
	return Options{
		WordSize:    4,
		LabelPrefix: ".L",
	}
}

func (o Options) disabled(name string) bool {
	for _, d := range o.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Context is the state of one compilation unit. It is created by the
// driver, handed to every pass, and read by the code generator afterwards.
type Context struct {
	Arena    *ast.Arena
	Literals *Literals
	Classes  *scope.Table

	// Hoisted lists the defun nodes produced by closure conversion, in
	// creation order.
	Hoisted []ast.NodeID
	Options Options

	nextLabel int
}

// NewContext creates a context over arena. Zero-valued options fall back
// to the defaults.
func NewContext(arena *ast.Arena, opts Options) *Context {
	def := DefaultOptions()
	if opts.WordSize <= 0 {
		opts.WordSize = def.WordSize
	}
	if opts.LabelPrefix == "" {
		opts.LabelPrefix = def.LabelPrefix
	}
	return &Context{
		Arena:    arena,
		Literals: newLiterals(),
		Classes:  scope.NewTable(opts.Reserved...),
		Options:  opts,
	}
}

// NewLabel returns a fresh label. Literal labels and hoisted function
// names share the sequence.
func (c *Context) NewLabel() string {
	c.nextLabel++
	return fmt.Sprintf("%s%d", c.Options.LabelPrefix, c.nextLabel)
}

// walk runs fn over the tree rooted at root and returns the first error a
// visit reported.
func (c *Context) walk(root ast.NodeID, fn func(id ast.NodeID, n *ast.Node) (ast.Action, error)) error {
	var err error
	c.Arena.Walk(root, func(id ast.NodeID) ast.Action {
		act, e := fn(id, c.Arena.Node(id))
		if e != nil {
			err = e
			return ast.Stop
		}
		return act
	})
	return err
}

// sexpCall builds (sexp (call fn args...)).
func (c *Context) sexpCall(pos ast.Position, fn string, args ...ast.Value) ast.NodeID {
	call := c.Arena.New(ast.TagCall, pos, append([]ast.Value{ast.Sym(fn)}, args...)...)
	return c.Arena.New(ast.TagSexp, pos, ast.Ref(call))
}

// list builds an untagged sequence node and returns a reference to it.
func (c *Context) list(pos ast.Position, elems ...ast.Value) ast.Value {
	return ast.Ref(c.Arena.List(pos, elems...))
}

// node builds a tagged node and returns a reference to it.
func (c *Context) node(tag ast.Tag, pos ast.Position, args ...ast.Value) ast.Value {
	return ast.Ref(c.Arena.New(tag, pos, args...))
}

// ---------------------------------------------------------------------------
// Literal table
// ---------------------------------------------------------------------------

// Literal is one interned constant.
type Literal struct {
	Label string
	Kind  ast.Kind // ast.KindString or ast.KindInt
	Text  string
	Int   int64
}

// Literals interns string and integer constants. Identical values share a
// label; the first occurrence picks it. Strings and integers are separate
// key spaces.
type Literals struct {
	strings map[string]string
	ints    map[int64]string
	byLabel map[string]int // label -> index into all
	all     []Literal
}

func newLiterals() *Literals {
	return &Literals{
		strings: make(map[string]string),
		ints:    make(map[int64]string),
		byLabel: make(map[string]int),
	}
}

func (l *Literals) add(lit Literal) {
	l.byLabel[lit.Label] = len(l.all)
	l.all = append(l.all, lit)
}

// String returns the label for s, allocating one from newLabel on first
// sight.
func (l *Literals) String(s string, newLabel func() string) string {
	if lab, ok := l.strings[s]; ok {
		return lab
	}
	lab := newLabel()
	l.strings[s] = lab
	l.add(Literal{Label: lab, Kind: ast.KindString, Text: s})
	return lab
}

// Int is String for integers.
func (l *Literals) Int(i int64, newLabel func() string) string {
	if lab, ok := l.ints[i]; ok {
		return lab
	}
	lab := newLabel()
	l.ints[i] = lab
	l.add(Literal{Label: lab, Kind: ast.KindInt, Int: i})
	return lab
}

// Len returns the number of interned literals.
func (l *Literals) Len() int { return len(l.all) }

// All returns every literal in interning order.
func (l *Literals) All() []Literal {
	return append([]Literal(nil), l.all...)
}

// Lookup finds a literal by label.
func (l *Literals) Lookup(label string) (Literal, bool) {
	i, ok := l.byLabel[label]
	if !ok {
		return Literal{}, false
	}
	return l.all[i], true
}
