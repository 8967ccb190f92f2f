package transform

import (
	"fmt"

	"github.com/chazu/xform/ast"
)

// arity bounds the operand count of a tag. max < 0 means unbounded.
type arity struct {
	min, max int
}

var shapes = map[ast.Tag]arity{
	ast.TagAssign:   {2, 2},
	ast.TagCall:     {1, 3},
	ast.TagCallm:    {2, 4},
	ast.TagLambda:   {0, 2},
	ast.TagProc:     {0, 2},
	ast.TagDefm:     {3, 3},
	ast.TagDefun:    {3, 3},
	ast.TagLet:      {1, -1},
	ast.TagClass:    {1, 3},
	ast.TagModule:   {1, 2},
	ast.TagIndex:    {2, 2},
	ast.TagRange:    {2, 2},
	ast.TagSexp:     {1, 1},
	ast.TagDestruct: {1, -1},
	ast.TagConcat:   {1, -1},
}

// checkShape reports a Malformed error if n's operands do not fit its tag.
// Tags without a contract always pass.
func checkShape(n *ast.Node) error {
	ar, ok := shapes[n.Tag]
	if !ok {
		if !n.Tag.IsOperator() {
			return nil
		}
		ar = arity{1, 2}
	}
	count := len(n.Args)
	if count < ar.min || (ar.max >= 0 && count > ar.max) {
		return errorAt(Malformed, n, "%s: %s", n.Tag, arityText(ar, count))
	}

	switch n.Tag {
	case ast.TagCallm:
		if !n.Args[1].IsSymbol() {
			return errorAt(Malformed, n, "callm: method name must be a symbol")
		}
	case ast.TagDefm, ast.TagDefun, ast.TagClass, ast.TagModule:
		if !n.Args[0].IsSymbol() {
			return errorAt(Malformed, n, "%s: name must be a symbol", n.Tag)
		}
	}
	return nil
}

func arityText(ar arity, got int) string {
	switch {
	case ar.min == ar.max:
		return fmt.Sprintf("want %d operands, got %d", ar.min, got)
	case ar.max < 0:
		return fmt.Sprintf("want at least %d operands, got %d", ar.min, got)
	}
	return fmt.Sprintf("want %d to %d operands, got %d", ar.min, ar.max, got)
}
