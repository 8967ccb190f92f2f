package transform

import "github.com/chazu/xform/ast"

// surfaceForms are the tags no pass may leave behind.
var surfaceForms = map[ast.Tag]bool{
	ast.TagDestruct: true,
	ast.TagConcat:   true,
	ast.TagRange:    true,
	ast.TagYield:    true,
	ast.TagLambda:   true,
	ast.TagProc:     true,
}

// Validate checks the finished tree against what the code generator
// accepts: every node fits its operand shape, no surface form or operator
// survived, and literals only appear inside sexp. The one exception is
// the slot number of an (index __env__ <slot>) read.
func Validate(c *Context, root ast.NodeID) error {
	return c.walk(root, func(id ast.NodeID, n *ast.Node) (ast.Action, error) {
		if n.Tag == ast.TagSexp {
			return ast.Skip, nil
		}
		if err := checkShape(n); err != nil {
			return ast.Stop, err
		}
		if surfaceForms[n.Tag] || n.Tag.IsOperator() {
			return ast.Stop, errorAt(UnresolvedForm, n, "%s form left after all passes", n.Tag)
		}
		if n.Tag == ast.TagCall && n.Args[0].Is("yield") {
			return ast.Stop, errorAt(UnresolvedForm, n, "call to yield left after all passes")
		}
		for i, v := range n.Args {
			switch {
			case v.IsString():
				return ast.Stop, errorAt(UnresolvedForm, n, "string literal %q outside sexp", v.Text)
			case v.IsInt() && !(n.Tag == ast.TagIndex && i == 1):
				return ast.Stop, errorAt(UnresolvedForm, n, "integer literal %d outside sexp", v.Int)
			}
		}
		return ast.Continue, nil
	})
}
