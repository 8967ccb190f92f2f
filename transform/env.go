package transform

import (
	"github.com/chazu/xform/ast"
)

// Reserved names of the environment layout and its helpers.
const (
	envName        = "__env__"
	tmpProcName    = "__tmp_proc"
	closureName    = "__closure__"
	stackframeName = "__stackframe__"
	splatName      = "__splat"
)

// environment is the slot layout of one function's heap environment:
// slot 0 holds the caller's stack frame, slots 1..n the captured
// variables in first-capture order, and slot n+1 the closure reference.
type environment struct {
	names []string
	slots map[string]int
}

func newEnvironment(captures []string) *environment {
	e := &environment{slots: make(map[string]int)}
	e.add(stackframeName)
	for _, name := range captures {
		e.add(name)
	}
	e.add(closureName)
	return e
}

func (e *environment) add(name string) {
	if _, ok := e.slots[name]; ok {
		return
	}
	e.slots[name] = len(e.names)
	e.names = append(e.names, name)
}

func (e *environment) slot(name string) (int, bool) {
	i, ok := e.slots[name]
	return i, ok
}

func (e *environment) size() int { return len(e.names) }

// function is a body the materializer rewrites: a defm/defun, or the
// top-level statements when they hold a closure literal.
type function struct {
	node   *ast.Node
	pos    ast.Position
	params []string // declared names, the rest parameter by its own name
	rest   string   // rest parameter name, "" if none
	fixed  int      // number of plain (non-list) parameters
	body   []ast.Value
	// topLevel marks the implicit function around top-level statements,
	// which has no incoming closure.
	topLevel bool
	// install puts the finished let node in place of the body.
	install func(let ast.NodeID)
}

// RewriteLetEnv resolves every function body and materializes its
// environment:
//
//	(let (<locals> __env__ __tmp_proc [rest])
//	  [(sexp (assign rest (__splat_to_Array __splat (sub numargs <fixed>))))]
//	  (sexp (assign __env__ (call malloc (<slots * word size>))))
//	  (assign (index __env__ k) <captured param>)...
//	  (assign (index __env__ n+1) __closure__)
//	  body...)
//
// with every captured name in the body, nested closures included,
// replaced by (index __env__ <slot>). When nothing is captured and the
// body holds no closure literal, only the let wrapper is added.
//
// Top-level statements are treated as a function without parameters, but
// only when a closure literal appears outside every function. There is no
// incoming closure there, so its slot is allocated but not filled.
func RewriteLetEnv(c *Context, root ast.NodeID) error {
	var funcs []ast.NodeID
	c.Arena.Walk(root, func(id ast.NodeID) ast.Action {
		switch c.Arena.Node(id).Tag {
		case ast.TagSexp:
			return ast.Skip
		case ast.TagDefm, ast.TagDefun:
			funcs = append(funcs, id)
		}
		return ast.Continue
	})

	for _, id := range funcs {
		fn, err := methodFunction(c, id)
		if err != nil {
			return err
		}
		if err := materialize(c, fn); err != nil {
			return err
		}
	}

	if topLevelClosure(c.Arena, root) {
		log.Debugf("materializing top-level environment")
		return materialize(c, topFunction(c, root))
	}
	return nil
}

// methodFunction prepares a defm/defun for materialization. A rest
// parameter, (name rest) among the last two parameters, is renamed to
// __splat in place.
func methodFunction(c *Context, id ast.NodeID) (*function, error) {
	n := c.Arena.Node(id)
	if err := checkShape(n); err != nil {
		return nil, err
	}
	fn := &function{
		node:   n,
		pos:    n.Pos,
		params: paramNames(c.Arena, n.Args[1]),
		body:   c.Arena.Elems(n.Args[2]),
		install: func(let ast.NodeID) {
			n.Args[2] = ast.Ref(let)
		},
	}

	params := c.Arena.Elems(n.Args[1])
	for _, p := range params {
		if !p.IsNode() {
			fn.fixed++
		}
	}
	for i := len(params) - 1; i >= 0 && i >= len(params)-2; i-- {
		if !params[i].IsNode() {
			continue
		}
		pn := c.Arena.Node(params[i].Node)
		if len(pn.Args) >= 2 && pn.Args[len(pn.Args)-1].Is("rest") && pn.Args[0].IsSymbol() {
			fn.rest = pn.Args[0].Text
			pn.Args[0] = ast.Sym(splatName)
			break
		}
	}
	return fn, nil
}

// topFunction moves the root's contents to a fresh node so the root can
// become the let wrapper.
func topFunction(c *Context, root ast.NodeID) *function {
	n := c.Arena.Node(root)
	moved := c.Arena.New(n.Tag, n.Pos, n.Args...)
	for k, v := range n.Extra {
		c.Arena.Node(moved).Annotate(k, v)
	}
	return &function{
		node:     n,
		pos:      n.Pos,
		body:     []ast.Value{ast.Ref(moved)},
		topLevel: true,
		install: func(let ast.NodeID) {
			c.Arena.Replace(root, let)
		},
	}
}

// topLevelClosure reports whether a lambda/proc literal appears outside
// every function definition.
func topLevelClosure(a *ast.Arena, root ast.NodeID) bool {
	found := false
	a.Walk(root, func(id ast.NodeID) ast.Action {
		switch tag := a.Node(id).Tag; {
		case tag == ast.TagSexp, tag == ast.TagDefm, tag == ast.TagDefun:
			return ast.Skip
		case tag.IsClosure():
			found = true
			return ast.Stop
		}
		return ast.Continue
	})
	return found
}

func materialize(c *Context, fn *function) error {
	res, err := resolve(c.Arena, fn.params, fn.body)
	if err != nil {
		return err
	}
	pos := fn.pos
	stmts := append([]ast.Value(nil), fn.body...)

	if len(res.captures) > 0 || len(res.closures) > 0 {
		env := newEnvironment(res.captures)
		w := &envRewriter{ctx: c, env: env}
		for i, stmt := range stmts {
			stmts[i] = w.value(stmt, pos, nil)
		}
		if err := insertExportCopies(c, env, res); err != nil {
			return err
		}

		alloc := c.node(ast.TagAssign, pos, ast.Sym(envName),
			c.node(ast.TagCall, pos, ast.Sym("malloc"), c.list(pos, ast.Int(int64(env.size()*c.Options.WordSize)))))
		prologue := []ast.Value{c.node(ast.TagSexp, pos, alloc)}
		for _, name := range env.names {
			switch {
			case res.capturedParams[name]:
			case name == closureName && !fn.topLevel:
			default:
				continue
			}
			cp, err := copyIn(c, env, fn.node, pos, name, name)
			if err != nil {
				return err
			}
			prologue = append(prologue, cp)
		}
		if len(stmts) == 0 {
			stmts = []ast.Value{ast.Sym("nil")}
		}
		stmts = append(prologue, stmts...)
		log.Debugf("environment of %d slots: %v", env.size(), env.names)
	}

	vars := make([]ast.Value, 0, len(res.locals)+3)
	for _, name := range res.locals {
		vars = append(vars, ast.Sym(name))
	}
	vars = append(vars, ast.Sym(envName), ast.Sym(tmpProcName))

	args := []ast.Value{ast.Nil}
	if fn.rest != "" {
		vars = append(vars, ast.Sym(fn.rest))
		sub := c.node(ast.TagSub, pos, ast.Sym("numargs"), ast.Int(int64(fn.fixed)))
		toArray := c.list(pos, ast.Sym("__splat_to_Array"), ast.Sym(splatName), sub)
		args = append(args, c.node(ast.TagSexp, pos, c.node(ast.TagAssign, pos, ast.Sym(fn.rest), toArray)))
	}
	args[0] = c.list(pos, vars...)
	args = append(args, stmts...)

	let := c.Arena.New(ast.TagLet, pos, args...)
	c.Arena.Node(let).Annotate("varfreq", res.varfreq)
	fn.install(let)
	return nil
}

// copyIn builds (assign (index __env__ <slot of key>) name).
func copyIn(c *Context, env *environment, at *ast.Node, pos ast.Position, key, name string) (ast.Value, error) {
	slot, ok := env.slot(key)
	if !ok {
		return ast.Nil, errorAt(ScopeConsistency, at, "%s has no environment slot", key)
	}
	index := c.node(ast.TagIndex, pos, ast.Sym(envName), ast.Int(int64(slot)))
	return c.node(ast.TagAssign, pos, index, ast.Sym(name)), nil
}

// insertExportCopies puts, at the top of each closure that has parameters
// captured by a deeper closure, the copies of those parameters into the
// shared environment.
func insertExportCopies(c *Context, env *environment, res *resolution) error {
	for _, id := range res.closures {
		exports := res.exports[id]
		if len(exports) == 0 {
			continue
		}
		n := c.Arena.Node(id)
		body := n.Arg(1)
		if !body.IsNode() || c.Arena.Node(body.Node).Tag != ast.TagLet {
			return errorAt(ScopeConsistency, n, "%s exports %v but has no body", n.Tag, exports)
		}
		let := c.Arena.Node(body.Node)
		args := []ast.Value{let.Args[0]}
		for _, name := range exports {
			cp, err := copyIn(c, env, n, n.Pos, exportKey(name, id), name)
			if err != nil {
				return err
			}
			args = append(args, cp)
		}
		let.Args = append(args, let.Args[1:]...)
	}
	return nil
}

// envRewriter replaces references to captured names with environment
// slot reads.
type envRewriter struct {
	ctx *Context
	env *environment
}

// value returns v with captured names rewritten. keys maps the names a
// nested closure binds to their environment key, or to "" when the
// closure keeps the name to itself.
func (w *envRewriter) value(v ast.Value, pos ast.Position, keys map[string]string) ast.Value {
	switch {
	case v.IsSymbol():
		key, bound := keys[v.Text]
		if !bound {
			key = v.Text
		}
		if key == "" {
			return v
		}
		if slot, ok := w.env.slot(key); ok {
			return w.ctx.node(ast.TagIndex, pos, ast.Sym(envName), ast.Int(int64(slot)))
		}
	case v.IsNode():
		w.node(v.Node, keys)
	}
	return v
}

func (w *envRewriter) node(id ast.NodeID, keys map[string]string) {
	n := w.ctx.Arena.Node(id)
	first := 0
	switch n.Tag {
	case ast.TagSexp, ast.TagDefm, ast.TagDefun:
		return
	case ast.TagCallm:
		n.Args[0] = w.value(n.Args[0], n.Pos, keys)
		first = 2
	case ast.TagLet:
		first = 1
	case ast.TagLambda, ast.TagProc:
		if len(n.Args) < 2 {
			return
		}
		w.closure(id, n, keys)
		return
	}
	for i := first; i < len(n.Args); i++ {
		n.Args[i] = w.value(n.Args[i], n.Pos, keys)
	}
}

// closure rewrites a closure body. Its own locals and its parameters
// shadow captured names; exported parameters read their own slot.
func (w *envRewriter) closure(id ast.NodeID, n *ast.Node, keys map[string]string) {
	a := w.ctx.Arena
	inner := make(map[string]string, len(keys))
	for k, v := range keys {
		inner[k] = v
	}
	exported := make(map[string]bool)
	if ex, ok := n.Extra["exports"].([]string); ok {
		for _, name := range ex {
			exported[name] = true
		}
	}
	for _, p := range paramNames(a, n.Args[0]) {
		if exported[p] {
			inner[p] = exportKey(p, id)
		} else {
			inner[p] = ""
		}
	}
	if body := n.Args[1]; body.IsNode() && a.Node(body.Node).Tag == ast.TagLet {
		for _, name := range a.Symbols(a.Node(body.Node).Args[0]) {
			inner[name] = ""
		}
	}
	n.Args[1] = w.value(n.Args[1], n.Pos, inner)
}
