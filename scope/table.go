package scope

// Table is the class-scope table of one compilation unit: every class and
// module scope keyed by bare name, the global scope, and the shared
// vtable offsets.
type Table struct {
	offsets *Offsets
	global  *GlobalScope
	byName  map[string]*ClassScope
	order   []*ClassScope
}

// NewTable creates an empty table. Reserved method names are interned
// first and take the lowest offsets.
func NewTable(reserved ...string) *Table {
	offsets := NewOffsets(reserved...)
	return &Table{
		offsets: offsets,
		global:  NewGlobalScope(offsets),
		byName:  make(map[string]*ClassScope),
	}
}

// Global returns the root scope.
func (t *Table) Global() *GlobalScope { return t.global }

// Offsets returns the compilation-unit-wide vtable offset table.
func (t *Table) Offsets() *Offsets { return t.offsets }

// Lookup returns the scope registered for name, or nil.
func (t *Table) Lookup(name string) *ClassScope { return t.byName[name] }

// Len returns the number of class and module scopes.
func (t *Table) Len() int { return len(t.order) }

// Classes returns every scope in creation order.
func (t *Table) Classes() []*ClassScope {
	return append([]*ClassScope(nil), t.order...)
}

// Open returns the scope for name, creating it on first sight. The scope
// is registered as a constant of parent and of the global scope either
// way.
//
// super names the superclass ("" for none). It is resolved from parent
// first and then the table; a name that is not known yet leaves the
// superclass nil. A re-opening may fill in a superclass that was unknown
// before but never replaces a known one.
func (t *Table) Open(kind Kind, name string, parent Scope, super string) *ClassScope {
	var sup *ClassScope
	if super != "" {
		if parent != nil {
			sup = parent.Resolve(super)
		}
		if sup == nil {
			sup = t.byName[super]
		}
	}

	c, ok := t.byName[name]
	if !ok {
		c = newClassScope(kind, name, parent, sup, t.global, t.offsets)
		t.byName[name] = c
		t.order = append(t.order, c)
	} else if c.superclass == nil && sup != nil && sup != c {
		c.superclass = sup
	}

	t.global.AddConstant(name, c)
	if parent != nil {
		parent.AddConstant(name, c)
	}
	return c
}
