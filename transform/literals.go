package transform

import "github.com/chazu/xform/ast"

// RewriteStrings replaces every string literal outside a sexp subtree
// with (sexp (call __get_string <label>)). Identical strings share a
// label.
func RewriteStrings(c *Context, root ast.NodeID) error {
	return hoistLiterals(c, root, ast.KindString, "__get_string", func(v ast.Value) string {
		return c.Literals.String(v.Text, c.NewLabel)
	})
}

// RewriteInts replaces every integer literal outside a sexp subtree with
// (sexp (call __get_fixnum <label>)). Identical integers share a label.
func RewriteInts(c *Context, root ast.NodeID) error {
	return hoistLiterals(c, root, ast.KindInt, "__get_fixnum", func(v ast.Value) string {
		return c.Literals.Int(v.Int, c.NewLabel)
	})
}

func hoistLiterals(c *Context, root ast.NodeID, kind ast.Kind, helper string, intern func(ast.Value) string) error {
	hoisted := 0
	err := c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		isCall := n.Tag == ast.TagCall || n.Tag == ast.TagCallm
		for i, v := range n.Args {
			if v.Kind != kind {
				continue
			}
			lit := ast.Ref(c.sexpCall(n.Pos, helper, ast.Sym(intern(v))))
			// The parser leaves a lone call argument bare; keep the
			// argument list a list once the literal becomes a node.
			if isCall && i > 0 {
				lit = c.list(n.Pos, lit)
			}
			n.Args[i] = lit
			hoisted++
		}
		return ast.Continue, nil
	})
	log.Debugf("%s: hoisted %d literals", helper, hoisted)
	return err
}
