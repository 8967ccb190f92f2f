package scope

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"
)

// LayoutVersion is bumped whenever the encoded shape of Layout changes.
const LayoutVersion = 1

// Layout is what the code generator needs from the class-scope table:
// every vtable offset, and per class the method slots and the instance
// variable layout.
type Layout struct {
	Version int           `cbor:"1,keyasint" yaml:"version"`
	Offsets []string      `cbor:"2,keyasint" yaml:"offsets"`
	Classes []ClassLayout `cbor:"3,keyasint" yaml:"classes"`
}

// ClassLayout describes one class or module.
type ClassLayout struct {
	Name      string       `cbor:"1,keyasint" yaml:"name"`
	Kind      string       `cbor:"2,keyasint" yaml:"kind"`
	Super     string       `cbor:"3,keyasint,omitempty" yaml:"super,omitempty"`
	Methods   []MethodSlot `cbor:"4,keyasint,omitempty" yaml:"methods,omitempty"`
	IVars     []string     `cbor:"5,keyasint,omitempty" yaml:"ivars,omitempty"`
	Constants []string     `cbor:"6,keyasint,omitempty" yaml:"constants,omitempty"`
}

// MethodSlot binds a method name to its vtable offset.
type MethodSlot struct {
	Name   string `cbor:"1,keyasint" yaml:"name"`
	Offset int    `cbor:"2,keyasint" yaml:"offset"`
}

var layoutEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("scope: failed to create CBOR enc mode: %v", err))
	}
	layoutEncMode = em
}

// Layout exports the table. Classes appear in creation order; names are
// lexically qualified.
func (t *Table) Layout() *Layout {
	l := &Layout{
		Version: LayoutVersion,
		Offsets: t.offsets.Names(),
	}
	for _, c := range t.order {
		cl := ClassLayout{
			Name:  c.FullName(),
			Kind:  c.kind.String(),
			IVars: c.IVars(),
		}
		if c.superclass != nil {
			cl.Super = c.superclass.FullName()
		}
		for _, m := range c.methods {
			cl.Methods = append(cl.Methods, MethodSlot{Name: m, Offset: t.offsets.Lookup(m)})
		}
		for _, name := range c.constants.order {
			cl.Constants = append(cl.Constants, c.constants.byName[name].FullName())
		}
		l.Classes = append(l.Classes, cl)
	}
	return l
}

// MarshalCBOR encodes the layout canonically.
func (l *Layout) MarshalCBOR() ([]byte, error) {
	type plain Layout
	return layoutEncMode.Marshal((*plain)(l))
}

// MarshalYAML renders the layout for humans.
func (l *Layout) MarshalYAML() ([]byte, error) {
	type plain Layout
	return yaml.MarshalWithOptions((*plain)(l), yaml.Indent(2))
}

// DecodeLayout reads a layout written by MarshalCBOR.
func DecodeLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	if l.Version != LayoutVersion {
		return nil, fmt.Errorf("layout version %d, want %d", l.Version, LayoutVersion)
	}
	return &l, nil
}
