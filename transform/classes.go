package transform

import (
	"strings"

	"github.com/chazu/xform/ast"
	"github.com/chazu/xform/scope"
)

// BuildClassScopes fills the class table from class and module bodies:
// method names get vtable offsets, instance variables are recorded,
// attr_accessor/attr_reader/attr_writer become explicit methods, and each
// class or module is registered with its lexical parent and the global
// scope.
//
// Scopes persist in c.Classes, so a class re-opened anywhere in the unit
// keeps accumulating into the same table.
func BuildClassScopes(c *Context, root ast.NodeID) error {
	b := &classBuilder{ctx: c, arena: c.Arena}
	return b.build(ast.Ref(root), c.Classes.Global())
}

type classBuilder struct {
	ctx   *Context
	arena *ast.Arena
}

func (b *classBuilder) build(v ast.Value, s scope.Scope) error {
	if !v.IsNode() {
		return nil
	}
	n := b.arena.Node(v.Node)

	switch n.Tag {
	case ast.TagSexp:
		return nil

	case ast.TagDefm:
		if err := checkShape(n); err != nil {
			return err
		}
		s.AddMethod(n.Args[0].Text)
		if s.Kind() != scope.KindGlobal {
			b.scanIVars(n.Args[2], s)
			return nil
		}

	case ast.TagCall:
		if err := checkShape(n); err != nil {
			return err
		}
		if kind, ok := attrKind(n.Args[0]); ok {
			b.expandAttr(n, kind, s)
			return nil
		}

	case ast.TagClass:
		if err := checkShape(n); err != nil {
			return err
		}
		super := ""
		if sup := n.Arg(1); sup.IsSymbol() {
			super = sup.Text
		}
		cs := b.ctx.Classes.Open(scope.KindClass, n.Args[0].Text, s, super)
		log.Debugf("class %s (super %q)", cs.FullName(), super)
		return b.build(n.Arg(2), cs)

	case ast.TagModule:
		if err := checkShape(n); err != nil {
			return err
		}
		super := ""
		if b.ctx.Classes.Lookup("Object") != nil {
			super = "Object"
		}
		cs := b.ctx.Classes.Open(scope.KindModule, n.Args[0].Text, s, super)
		log.Debugf("module %s", cs.FullName())
		return b.build(n.Arg(1), cs)
	}

	for i := 0; i < len(n.Args); i++ {
		if err := b.build(n.Args[i], s); err != nil {
			return err
		}
	}
	return nil
}

// scanIVars registers every @name symbol in a method body. @@ class
// variables are not instance state.
func (b *classBuilder) scanIVars(body ast.Value, s scope.Scope) {
	if !body.IsNode() {
		if isIVar(body) {
			s.AddIVar(body.Text)
		}
		return
	}
	b.arena.Walk(body.Node, func(id ast.NodeID) ast.Action {
		for _, v := range b.arena.Node(id).Args {
			if isIVar(v) {
				s.AddIVar(v.Text)
			}
		}
		return ast.Continue
	})
}

func isIVar(v ast.Value) bool {
	return v.IsSymbol() && strings.HasPrefix(v.Text, "@") && !strings.HasPrefix(v.Text, "@@")
}

type attr int

const (
	attrReader attr = 1 << iota
	attrWriter
	attrAccessor = attrReader | attrWriter
)

func attrKind(fn ast.Value) (attr, bool) {
	switch {
	case fn.Is("attr_reader"):
		return attrReader, true
	case fn.Is("attr_writer"):
		return attrWriter, true
	case fn.Is("attr_accessor"):
		return attrAccessor, true
	}
	return 0, false
}

// expandAttr replaces an attr_* call with the getter and setter
// definitions it stands for:
//
//	(call attr_accessor (:foo))
//	=> (do (defm foo () (@foo)) (defm foo= (value) ((assign @foo value))))
func (b *classBuilder) expandAttr(n *ast.Node, kind attr, s scope.Scope) {
	c, pos := b.ctx, n.Pos
	var defs []ast.Value
	for _, name := range b.arena.Symbols(n.Arg(1)) {
		name = strings.TrimPrefix(name, ":")
		ivar := ast.Sym("@" + name)
		s.AddIVar(ivar.Text)
		if kind&attrReader != 0 {
			s.AddMethod(name)
			defs = append(defs, c.node(ast.TagDefm, pos, ast.Sym(name), c.list(pos), c.list(pos, ivar)))
		}
		if kind&attrWriter != 0 {
			s.AddMethod(name + "=")
			set := c.node(ast.TagAssign, pos, ivar, ast.Sym("value"))
			defs = append(defs, c.node(ast.TagDefm, pos, ast.Sym(name+"="), c.list(pos, ast.Sym("value")), c.list(pos, set)))
		}
	}
	n.Set(ast.TagDo, defs...)
}
