package scope

import "sync"

// Offsets maps method names to vtable offsets for one compilation unit.
// Offsets are handed out on first sight and never move, so every class
// agrees on the slot of a given name.
type Offsets struct {
	mu    sync.Mutex
	slots map[string]int
	names []string // in offset order
}

// NewOffsets creates an offset table with the reserved names at offsets
// 0..len(reserved)-1.
func NewOffsets(reserved ...string) *Offsets {
	o := &Offsets{slots: make(map[string]int)}
	for _, name := range reserved {
		o.Intern(name)
	}
	return o
}

// Intern returns the offset of name, assigning the next free one on first
// use. Safe for concurrent use.
func (o *Offsets) Intern(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	off, ok := o.slots[name]
	if !ok {
		off = len(o.names)
		o.slots[name] = off
		o.names = append(o.names, name)
	}
	return off
}

// Lookup returns the offset of name, or -1.
func (o *Offsets) Lookup(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if off, ok := o.slots[name]; ok {
		return off
	}
	return -1
}

// Names returns the interned names indexed by offset.
func (o *Offsets) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.names...)
}
