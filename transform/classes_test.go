package transform

import (
	"reflect"
	"testing"
)

func TestBuildClassScopesReopen(t *testing.T) {
	c, root := runPasses(t,
		`(do (class Foo _ ((defm hello () ((call puts @greeting))) (call attr_accessor (:name))))`+
			` (class Foo _ ((defm world () ((assign @count 1))))))`,
		"classes")

	if c.Classes.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Classes.Len())
	}
	foo := c.Classes.Lookup("Foo")
	if got, want := foo.Methods(), []string{"hello", "name", "name=", "world"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
	if got, want := foo.IVars(), []string{"@greeting", "@name", "@count"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IVars() = %v, want %v", got, want)
	}

	want := `(do (class Foo _ ((defm hello () ((call puts @greeting)))` +
		` (do (defm name () (@name)) (defm name= (value) ((assign @name value))))))` +
		` (class Foo _ ((defm world () ((assign @count 1))))))`
	if got := c.Arena.Format(root); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildClassScopesAttrKinds(t *testing.T) {
	c, _ := runPasses(t, `(class P _ ((call attr_reader (:a :b)) (call attr_writer (:c))))`, "classes")
	p := c.Classes.Lookup("P")
	if got, want := p.Methods(), []string{"a", "b", "c="}; !reflect.DeepEqual(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
	if got, want := p.IVars(), []string{"@a", "@b", "@c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IVars() = %v, want %v", got, want)
	}
}

func TestBuildClassScopesNesting(t *testing.T) {
	c, _ := runPasses(t, `(module Outer ((class Inner _ ((defm go () ())))))`, "classes")

	outer, inner := c.Classes.Lookup("Outer"), c.Classes.Lookup("Inner")
	if outer == nil || inner == nil {
		t.Fatalf("Outer = %v, Inner = %v", outer, inner)
	}
	if inner.FullName() != "Outer::Inner" {
		t.Errorf("FullName() = %q, want %q", inner.FullName(), "Outer::Inner")
	}
	if got, ok := outer.Constant("Inner"); !ok || got != inner {
		t.Errorf("Outer has no Inner constant")
	}
	if inner.Resolve("Outer") != outer {
		t.Errorf("Inner cannot resolve Outer")
	}
	if !inner.HasMethod("go") || outer.HasMethod("go") {
		t.Errorf("go registered in the wrong scope")
	}
}

func TestBuildClassScopesSuperclass(t *testing.T) {
	c, _ := runPasses(t,
		`(do (class Object _ ()) (class Base Object ((defm id () (@id)))) (class Child Base ((defm name () (@name)))) (module M ()))`,
		"classes")

	base, child, m := c.Classes.Lookup("Base"), c.Classes.Lookup("Child"), c.Classes.Lookup("M")
	if child.Superclass() != base {
		t.Errorf("Child superclass = %v, want Base", child.Superclass())
	}
	if m.Superclass() != c.Classes.Lookup("Object") {
		t.Errorf("module superclass = %v, want Object", m.Superclass())
	}
	if got, want := child.IVars(), []string{"@id", "@name"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IVars() = %v, want %v", got, want)
	}
	if child.Offset("id") < 0 {
		t.Errorf("Child.Offset(id) = %d, want inherited offset", child.Offset("id"))
	}
}

func TestBuildClassScopesModuleWithoutObject(t *testing.T) {
	c, _ := runPasses(t, `(module M ())`, "classes")
	if sup := c.Classes.Lookup("M").Superclass(); sup != nil {
		t.Errorf("superclass = %v, want none", sup.Name())
	}
}

func TestBuildClassScopesSkipsSexp(t *testing.T) {
	c, _ := runPasses(t, `(class Foo _ ((sexp (defm hidden () ())) (defm shown () ())))`, "classes")
	if got := c.Classes.Lookup("Foo").Methods(); !reflect.DeepEqual(got, []string{"shown"}) {
		t.Errorf("Methods() = %v, want [shown]", got)
	}
}

func TestBuildClassScopesGlobalDefm(t *testing.T) {
	c, _ := runPasses(t, `(defm helper () ((defm inner () ())))`, "classes")
	offsets := c.Classes.Offsets()
	if offsets.Lookup("helper") < 0 || offsets.Lookup("inner") < 0 {
		t.Errorf("offsets = %v, want helper and inner interned", offsets.Names())
	}
	if c.Classes.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Classes.Len())
	}
}
