package transform

import "github.com/chazu/xform/ast"

// RewriteLambda converts every lambda/proc literal into a hoisted function
// plus a closure constructor call at the literal's position:
//
//	(do (assign (index __env__ 0) (stackframe))
//	    (assign __tmp_proc (defun <label> (__closure__ __env__ self (x default nil)) body))
//	    (sexp (call __new_proc (__tmp_proc __env__ self <arity>))))
//
// Slot 0 of the environment receives the current stack frame so that a
// preturn inside the block can unwind the defining function. Proc bodies
// have their return statements turned into preturn first. The defun
// nodes are also recorded in c.Hoisted.
//
// A block that escapes its defining function and executes preturn after
// that function has returned is not detected.
func RewriteLambda(c *Context, root ast.NodeID) error {
	converted := 0
	err := c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if !n.Tag.IsClosure() {
			return ast.Continue, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}

		pos := n.Pos
		body := n.Arg(1)
		if n.Tag == ast.TagProc && body.IsNode() {
			rewriteProcReturn(c.Arena, body.Node)
		}

		names := paramNames(c.Arena, n.Arg(0))
		params := []ast.Value{ast.Sym(closureName), ast.Sym(envName), ast.Sym("self")}
		for _, p := range names {
			params = append(params, c.list(pos, ast.Sym(p), ast.Sym("default"), ast.Sym("nil")))
		}
		defun := c.Arena.New(ast.TagDefun, pos, ast.Sym(c.NewLabel()), c.list(pos, params...), body)
		c.Hoisted = append(c.Hoisted, defun)

		frame := c.node(ast.TagIndex, pos, ast.Sym(envName), ast.Int(0))
		newProc := c.sexpCall(pos, "__new_proc",
			c.list(pos, ast.Sym(tmpProcName), ast.Sym(envName), ast.Sym("self"), ast.Int(int64(len(names)))))
		n.Set(ast.TagDo,
			c.node(ast.TagAssign, pos, frame, c.node(ast.TagStackframe, pos)),
			c.node(ast.TagAssign, pos, ast.Sym(tmpProcName), ast.Ref(defun)),
			ast.Ref(newProc),
		)
		converted++
		return ast.Continue, nil
	})
	log.Debugf("converted %d closures", converted)
	return err
}

// rewriteProcReturn turns return into preturn throughout a proc body.
// Lambdas and nested functions keep their own returns. Nested procs are
// entered since their returns unwind the same defining function.
func rewriteProcReturn(a *ast.Arena, body ast.NodeID) {
	a.Walk(body, func(id ast.NodeID) ast.Action {
		n := a.Node(id)
		switch n.Tag {
		case ast.TagSexp, ast.TagLambda, ast.TagDefm, ast.TagDefun:
			return ast.Skip
		case ast.TagReturn:
			n.Tag = ast.TagPreturn
		}
		return ast.Continue
	})
}
