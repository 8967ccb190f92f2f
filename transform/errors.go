package transform

import (
	"fmt"

	"github.com/chazu/xform/ast"
)

// ErrorKind classifies a transform failure. Every kind is fatal for the
// compilation unit.
type ErrorKind int

const (
	// Malformed: a node's operands do not fit its tag.
	Malformed ErrorKind = iota + 1
	// UnresolvedForm: a surface form survived every pass.
	UnresolvedForm
	// ScopeConsistency: a captured name has no environment slot at
	// rewrite time. Always an internal bug.
	ScopeConsistency
)

func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed node"
	case UnresolvedForm:
		return "unresolved form"
	case ScopeConsistency:
		return "scope consistency"
	}
	return "unknown"
}

// Error is a positioned transform failure.
type Error struct {
	Kind ErrorKind
	Pos  ast.Position
	Tag  ast.Tag
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func errorAt(kind ErrorKind, n *ast.Node, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Pos:  n.Pos,
		Tag:  n.Tag,
		Msg:  fmt.Sprintf(format, args...),
	}
}
