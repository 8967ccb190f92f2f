// Package scope holds the persistent class and module symbol tables that
// the class scope builder fills in before any rewrite pass runs.
//
// A compilation unit has one Table. Every class or module name maps to
// exactly one ClassScope for the life of the table, so methods, instance
// variables, and nested constants accumulate across re-openings that are
// far apart in the source.
package scope

import "strings"

// Kind distinguishes the scope flavours.
type Kind int

const (
	KindGlobal Kind = iota
	KindModule
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	}
	return "unknown"
}

// Scope is a node of the constant namespace: the global scope or a
// class/module scope.
type Scope interface {
	Name() string
	Kind() Kind
	// Parent is the lexically enclosing scope; nil for the global scope.
	Parent() Scope
	// AddMethod registers a method name and returns its vtable offset.
	AddMethod(name string) int
	// AddIVar registers an instance variable. No-op outside classes.
	AddIVar(name string)
	AddConstant(name string, c *ClassScope)
	// Constant looks up a constant defined directly in this scope.
	Constant(name string) (*ClassScope, bool)
	// Resolve looks a constant up lexically, ending at the global scope.
	// nil means "unknown at compile time, fall back to dynamic lookup".
	Resolve(name string) *ClassScope
}

// constants is an insertion-ordered constant table.
type constants struct {
	byName map[string]*ClassScope
	order  []string
}

func (c *constants) add(name string, s *ClassScope) {
	if c.byName == nil {
		c.byName = make(map[string]*ClassScope)
	}
	if _, ok := c.byName[name]; !ok {
		c.order = append(c.order, name)
	}
	c.byName[name] = s
}

func (c *constants) get(name string) (*ClassScope, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// ---------------------------------------------------------------------------
// Global scope
// ---------------------------------------------------------------------------

// GlobalScope is the root of the constant namespace and the fallback
// resolver for every nested scope.
type GlobalScope struct {
	offsets   *Offsets
	constants constants
}

// NewGlobalScope creates an empty global scope sharing offsets.
func NewGlobalScope(offsets *Offsets) *GlobalScope {
	return &GlobalScope{offsets: offsets}
}

func (g *GlobalScope) Name() string  { return "" }
func (g *GlobalScope) Kind() Kind    { return KindGlobal }
func (g *GlobalScope) Parent() Scope { return nil }

// AddMethod interns the name so top-level definitions still get a stable
// offset.
func (g *GlobalScope) AddMethod(name string) int { return g.offsets.Intern(name) }

func (g *GlobalScope) AddIVar(string) {}

func (g *GlobalScope) AddConstant(name string, c *ClassScope) { g.constants.add(name, c) }

func (g *GlobalScope) Constant(name string) (*ClassScope, bool) { return g.constants.get(name) }

func (g *GlobalScope) Resolve(name string) *ClassScope {
	c, _ := g.constants.get(name)
	return c
}

// Constants returns the global constant names in registration order.
func (g *GlobalScope) Constants() []string {
	return append([]string(nil), g.constants.order...)
}

// ---------------------------------------------------------------------------
// Class and module scopes
// ---------------------------------------------------------------------------

// ClassScope is the symbol table of one class or module.
type ClassScope struct {
	name       string
	kind       Kind
	parent     Scope
	superclass *ClassScope // nil: no known superclass scope yet
	global     *GlobalScope
	offsets    *Offsets

	methods   []string
	methodSet map[string]bool
	ivars     []string
	ivarSet   map[string]bool
	constants constants
}

func newClassScope(kind Kind, name string, parent Scope, super *ClassScope, global *GlobalScope, offsets *Offsets) *ClassScope {
	return &ClassScope{
		name:       name,
		kind:       kind,
		parent:     parent,
		superclass: super,
		global:     global,
		offsets:    offsets,
		methodSet:  make(map[string]bool),
		ivarSet:    make(map[string]bool),
	}
}

func (c *ClassScope) Name() string  { return c.name }
func (c *ClassScope) Kind() Kind    { return c.kind }
func (c *ClassScope) Parent() Scope { return c.parent }

// Superclass returns the superclass scope, or nil when the superclass was
// unknown when the class was first opened.
func (c *ClassScope) Superclass() *ClassScope { return c.superclass }

// FullName is the lexically qualified name, e.g. "Foo::Bar".
func (c *ClassScope) FullName() string {
	parts := []string{c.name}
	for p := c.parent; p != nil && p.Kind() != KindGlobal; p = p.Parent() {
		parts = append(parts, p.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// AddMethod registers name in the class's method table and returns its
// vtable offset. Registering the same name again is a no-op.
func (c *ClassScope) AddMethod(name string) int {
	off := c.offsets.Intern(name)
	if !c.methodSet[name] {
		c.methodSet[name] = true
		c.methods = append(c.methods, name)
	}
	return off
}

// AddIVar registers an instance variable (including its @ prefix).
func (c *ClassScope) AddIVar(name string) {
	if c.ivarSet[name] {
		return
	}
	c.ivarSet[name] = true
	c.ivars = append(c.ivars, name)
}

func (c *ClassScope) AddConstant(name string, s *ClassScope) { c.constants.add(name, s) }

func (c *ClassScope) Constant(name string) (*ClassScope, bool) { return c.constants.get(name) }

// Resolve looks name up in this scope, then each lexical parent, then the
// superclass chain, and finally the global scope.
func (c *ClassScope) Resolve(name string) *ClassScope {
	for s := Scope(c); s != nil; s = s.Parent() {
		if found, ok := s.Constant(name); ok {
			return found
		}
	}
	for sup := c.superclass; sup != nil; sup = sup.superclass {
		if found, ok := sup.Constant(name); ok {
			return found
		}
	}
	return c.global.Resolve(name)
}

// Methods returns the class's own method names in registration order.
func (c *ClassScope) Methods() []string {
	return append([]string(nil), c.methods...)
}

// HasMethod reports whether the class itself defines name.
func (c *ClassScope) HasMethod(name string) bool { return c.methodSet[name] }

// Offset returns the vtable offset of name, or -1 if neither the class nor
// any known superclass defines it.
func (c *ClassScope) Offset(name string) int {
	for s := c; s != nil; s = s.superclass {
		if s.methodSet[name] {
			return s.offsets.Lookup(name)
		}
	}
	return -1
}

// IVars returns instance variable names in first-seen order, superclass
// variables first. The position of a name is its slot in the object
// layout.
func (c *ClassScope) IVars() []string {
	var out []string
	seen := make(map[string]bool)
	var chain []*ClassScope
	for s := c; s != nil; s = s.superclass {
		chain = append(chain, s)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, v := range chain[i].ivars {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Constants returns the names defined directly in this scope.
func (c *ClassScope) Constants() []string {
	return append([]string(nil), c.constants.order...)
}
