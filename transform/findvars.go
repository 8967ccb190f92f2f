package transform

import (
	"fmt"
	"sort"

	"github.com/chazu/xform/ast"
)

// IsSpecialName reports whether name can never be a variable binding:
// nil, self, true, false, instance variables (leading @), and any name
// whose first byte sorts below 'a'.
//
// The last rule is how constants and type names are told apart from
// variables. It also makes every name starting with '_' special and lets
// non-ASCII names through. It is an approximation, kept in this one
// predicate so a parser-supplied identifier kind can replace it later.
func IsSpecialName(name string) bool {
	switch name {
	case "nil", "self", "true", "false":
		return true
	}
	return name == "" || name[0] == '@' || name[0] < 'a'
}

// ---------------------------------------------------------------------------
// Scope/closure resolver
// ---------------------------------------------------------------------------

// frame is one lexical level: the function body, or one lambda/proc.
type frame struct {
	closure bool
	id      ast.NodeID // the lambda/proc node; 0 for the function frame
	params  map[string]bool
	bound   map[string]bool
	vars    []string // bound names in binding order
	exports []string // params captured by a deeper closure
}

func newFrame(closure bool, params []string) *frame {
	f := &frame{
		closure: closure,
		params:  make(map[string]bool, len(params)),
		bound:   make(map[string]bool),
	}
	for _, p := range params {
		f.params[p] = true
	}
	return f
}

func (f *frame) bind(name string) {
	if !f.bound[name] {
		f.bound[name] = true
		f.vars = append(f.vars, name)
	}
}

func (f *frame) unbind(name string) {
	if !f.bound[name] {
		return
	}
	delete(f.bound, name)
	for i, v := range f.vars {
		if v == name {
			f.vars = append(f.vars[:i], f.vars[i+1:]...)
			return
		}
	}
}

func (f *frame) export(name string) {
	for _, e := range f.exports {
		if e == name {
			return
		}
	}
	f.exports = append(f.exports, name)
}

// resolution is what the resolver learns about one function body.
type resolution struct {
	// locals are the names bound in the function's own frame and never
	// captured, in binding order. Parameters are not included.
	locals []string
	// captures are every captured name in first-capture order. A name's
	// environment slot is its index here plus one. A closure parameter
	// captured by a deeper closure is listed under its exportKey, so it
	// never shares a slot with a same-named outer variable.
	captures []string
	// capturedParams are the function's parameters among captures.
	capturedParams map[string]bool
	// closures lists the lambda/proc literals of the body, outermost
	// first. Nested functions are not entered.
	closures []ast.NodeID
	// exports maps a closure to its parameters captured by a deeper
	// closure.
	exports map[ast.NodeID][]string
	// varfreq is every non-special name, most used first. Ties keep
	// first-occurrence order.
	varfreq []string
}

type resolver struct {
	arena    *ast.Arena
	frames   []*frame
	captured map[string]bool
	res      *resolution
	counts   map[string]int
	order    []string
}

// resolve analyzes one function body. params are the function's
// parameter names; body is its statement list.
//
// Lookup goes from the innermost frame outwards. A reference that
// resolves to a frame outside the nearest enclosing closure is captured:
// it leaves that frame's bindings (parameters stay parameters) and joins
// the capture list once. A reference that resolves nowhere is free and
// left alone. An assignment target that resolves nowhere is bound in the
// innermost frame after its value has been analyzed.
//
// Each closure's body is wrapped in (let (<locals>) body...) as it is
// left, so the closure declares its own bindings.
func resolve(arena *ast.Arena, params []string, body []ast.Value) (*resolution, error) {
	r := &resolver{
		arena:    arena,
		frames:   []*frame{newFrame(false, params)},
		captured: make(map[string]bool),
		counts:   make(map[string]int),
		res: &resolution{
			capturedParams: make(map[string]bool),
			exports:        make(map[ast.NodeID][]string),
		},
	}
	for _, stmt := range body {
		if err := r.value(stmt); err != nil {
			return nil, err
		}
	}
	r.res.locals = append([]string(nil), r.frames[0].vars...)
	r.res.varfreq = r.frequencies()
	return r.res, nil
}

func (r *resolver) top() *frame { return r.frames[len(r.frames)-1] }

// lookup returns the index of the innermost frame that binds name, and
// whether it binds it as a parameter; -1 if none does.
func (r *resolver) lookup(name string) (int, bool) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		f := r.frames[i]
		if f.params[name] {
			return i, true
		}
		if f.bound[name] {
			return i, false
		}
	}
	return -1, false
}

// crosses reports whether a closure boundary lies between frame i and the
// innermost frame.
func (r *resolver) crosses(i int) bool {
	for j := i + 1; j < len(r.frames); j++ {
		if r.frames[j].closure {
			return true
		}
	}
	return false
}

func (r *resolver) count(name string) {
	if r.counts[name] == 0 {
		r.order = append(r.order, name)
	}
	r.counts[name]++
}

// ref handles a use of name. It reports whether the name is known: bound
// somewhere, a parameter, captured, or special.
func (r *resolver) ref(name string) bool {
	if IsSpecialName(name) {
		return true
	}
	r.count(name)
	i, isParam := r.lookup(name)
	if i < 0 {
		return r.captured[name]
	}
	if r.crosses(i) {
		r.capture(name, i, isParam)
	}
	return true
}

func (r *resolver) capture(name string, i int, isParam bool) {
	f := r.frames[i]
	key := name
	switch {
	case !isParam:
		f.unbind(name)
	case f.closure:
		f.export(name)
		key = exportKey(name, f.id)
	default:
		r.res.capturedParams[name] = true
	}
	if !r.captured[key] {
		r.captured[key] = true
		r.res.captures = append(r.res.captures, key)
	}
}

// exportKey is the environment key of parameter name of closure id. '#'
// never occurs in an identifier.
func exportKey(name string, id ast.NodeID) string {
	return fmt.Sprintf("%s#%d", name, id)
}

func (r *resolver) value(v ast.Value) error {
	switch {
	case v.IsSymbol():
		r.ref(v.Text)
	case v.IsNode():
		return r.node(v.Node)
	}
	return nil
}

func (r *resolver) values(vs []ast.Value) error {
	for _, v := range vs {
		if err := r.value(v); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) node(id ast.NodeID) error {
	n := r.arena.Node(id)
	switch n.Tag {
	case ast.TagSexp, ast.TagDefm, ast.TagDefun:
		// Lowered, or a function of its own.
		return nil

	case ast.TagAssign:
		if err := checkShape(n); err != nil {
			return err
		}
		return r.assign(n)

	case ast.TagCallm:
		if err := checkShape(n); err != nil {
			return err
		}
		// Operand 1 is the method name, not a variable.
		if err := r.value(n.Args[0]); err != nil {
			return err
		}
		return r.values(n.Args[2:])

	case ast.TagLet:
		if err := checkShape(n); err != nil {
			return err
		}
		return r.values(n.Args[1:])

	case ast.TagLambda, ast.TagProc:
		if err := checkShape(n); err != nil {
			return err
		}
		return r.closure(id, n)
	}

	if err := checkShape(n); err != nil {
		return err
	}
	return r.values(n.Args)
}

func (r *resolver) assign(n *ast.Node) error {
	target := n.Args[0]
	pending := ""
	if target.IsSymbol() {
		if !r.ref(target.Text) {
			pending = target.Text
		}
	} else if err := r.value(target); err != nil {
		return err
	}

	if err := r.value(n.Args[1]); err != nil {
		return err
	}

	// The value may have captured or bound the name in the meantime.
	if pending != "" {
		if i, _ := r.lookup(pending); i < 0 && !r.captured[pending] {
			r.top().bind(pending)
		}
	}
	return nil
}

func (r *resolver) closure(id ast.NodeID, n *ast.Node) error {
	r.res.closures = append(r.res.closures, id)

	f := newFrame(true, paramNames(r.arena, n.Arg(0)))
	f.id = id
	r.frames = append(r.frames, f)
	body := r.arena.Elems(n.Arg(1))
	for _, stmt := range body {
		if err := r.value(stmt); err != nil {
			return err
		}
	}
	r.frames = r.frames[:len(r.frames)-1]

	if len(f.exports) > 0 {
		r.res.exports[id] = f.exports
		n.Annotate("exports", append([]string(nil), f.exports...))
	}
	if len(n.Args) > 1 && !n.Args[1].IsNil() {
		vars := make([]ast.Value, len(f.vars))
		for i, v := range f.vars {
			vars[i] = ast.Sym(v)
		}
		let := r.arena.New(ast.TagLet, n.Pos, append([]ast.Value{ast.Ref(r.arena.List(n.Pos, vars...))}, body...)...)
		n.Args[1] = ast.Ref(let)
	}
	return nil
}

func (r *resolver) frequencies() []string {
	out := append([]string(nil), r.order...)
	sort.SliceStable(out, func(i, j int) bool {
		return r.counts[out[i]] > r.counts[out[j]]
	})
	return out
}

// paramNames returns the declared names of a parameter list. A parameter
// is a bare symbol or a list whose head is the name, as in (b default nil)
// or (args rest).
func paramNames(a *ast.Arena, params ast.Value) []string {
	var names []string
	for _, p := range a.Elems(params) {
		switch {
		case p.IsSymbol():
			names = append(names, p.Text)
		case p.IsNode():
			if head := a.Node(p.Node).Arg(0); head.IsSymbol() {
				names = append(names, head.Text)
			}
		}
	}
	return names
}
