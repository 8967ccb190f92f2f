package transform

import "github.com/chazu/xform/ast"

// ---------------------------------------------------------------------------
// Structural desugaring: destructuring, concatenation, ranges, operators,
// yield. Each pass is one traversal; none of them enters a sexp subtree.
// ---------------------------------------------------------------------------

// RewriteDestruct turns multiple assignment into a temporary plus indexed
// extraction:
//
//	(assign (destruct a b) r)
//	=> (let (__destruct) (do (assign __destruct r)
//	                         (assign a (callm __destruct [] (0)))
//	                         (assign b (callm __destruct [] (1)))))
func RewriteDestruct(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if n.Tag != ast.TagAssign {
			return ast.Continue, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}
		lhs := n.Args[0]
		if !lhs.IsNode() || c.Arena.Node(lhs.Node).Tag != ast.TagDestruct {
			return ast.Continue, nil
		}
		d := c.Arena.Node(lhs.Node)
		if err := checkShape(d); err != nil {
			return ast.Stop, err
		}

		pos := n.Pos
		tmp := ast.Sym("__destruct")
		stmts := []ast.Value{c.node(ast.TagAssign, pos, tmp, n.Args[1])}
		for i, target := range d.Args {
			get := c.node(ast.TagCallm, pos, tmp, ast.Sym("[]"), c.list(pos, ast.Int(int64(i))))
			stmts = append(stmts, c.node(ast.TagAssign, pos, target, get))
		}
		n.Set(ast.TagLet, c.list(pos, tmp), c.node(ast.TagDo, pos, stmts...))
		return ast.Continue, nil
	})
}

// RewriteConcat turns (concat a b c) into to_s/concat method calls, left
// associative.
func RewriteConcat(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if n.Tag != ast.TagConcat {
			return ast.Continue, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}
		top := buildConcat(c, n.Pos, n.Args)
		c.Arena.Replace(id, top)
		return ast.Continue, nil
	})
}

// buildConcat returns the node for parts, which is never empty.
func buildConcat(c *Context, pos ast.Position, parts []ast.Value) ast.NodeID {
	last := len(parts) - 1
	right := c.Arena.New(ast.TagCallm, pos, parts[last], ast.Sym("to_s"))
	if last == 0 {
		return right
	}
	left := buildConcat(c, pos, parts[:last])
	return c.Arena.New(ast.TagCallm, pos, ast.Ref(left), ast.Sym("concat"), c.list(pos, ast.Ref(right)))
}

// RewriteRange turns (range a b) into (callm Range new (a b)).
func RewriteRange(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if n.Tag != ast.TagRange {
			return ast.Continue, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}
		n.Set(ast.TagCallm, ast.Sym("Range"), ast.Sym("new"), c.list(n.Pos, n.Args...))
		return ast.Continue, nil
	})
}

// RewriteOperators turns operator nodes into method calls: the left
// operand is the receiver, the operator the method name, and the right
// operand, if any, the sole argument.
func RewriteOperators(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if !n.Tag.IsOperator() {
			return ast.Continue, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}
		method := ast.Sym(n.Tag.Method())
		if len(n.Args) == 2 {
			n.Set(ast.TagCallm, n.Args[0], method, c.list(n.Pos, n.Args[1]))
		} else {
			n.Set(ast.TagCallm, n.Args[0], method)
		}
		return ast.Continue, nil
	})
}

// RewriteYield turns both (yield args...) and (call yield args) into a
// call on the implicit block parameter:
//
//	(callm __closure__ call (args...))
func RewriteYield(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		switch n.Tag {
		case ast.TagSexp:
			return ast.Skip, nil
		case ast.TagYield:
			args := []ast.Value{ast.Sym("__closure__"), ast.Sym("call")}
			if len(n.Args) > 0 {
				args = append(args, c.list(n.Pos, n.Args...))
			}
			n.Set(ast.TagCallm, args...)
		case ast.TagCall:
			if err := checkShape(n); err != nil {
				return ast.Stop, err
			}
			if !n.Args[0].Is("yield") {
				return ast.Continue, nil
			}
			args := []ast.Value{ast.Sym("__closure__"), ast.Sym("call")}
			n.Set(ast.TagCallm, append(args, n.Args[1:]...)...)
		}
		return ast.Continue, nil
	})
}
