package scope

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestOffsetsIntern(t *testing.T) {
	o := NewOffsets("new", "initialize")

	if got := o.Lookup("new"); got != 0 {
		t.Errorf("Lookup(new) = %d, want 0", got)
	}
	if got := o.Lookup("initialize"); got != 1 {
		t.Errorf("Lookup(initialize) = %d, want 1", got)
	}

	off := o.Intern("foo")
	if off != 2 {
		t.Errorf("Intern(foo) = %d, want 2", off)
	}
	if again := o.Intern("foo"); again != off {
		t.Errorf("Intern(foo) again = %d, want %d", again, off)
	}
	if got := o.Lookup("bar"); got != -1 {
		t.Errorf("Lookup(bar) = %d, want -1", got)
	}
	if got, want := o.Names(), []string{"new", "initialize", "foo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestOffsetsConcurrentIntern(t *testing.T) {
	o := NewOffsets()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				o.Intern(fmt.Sprintf("m%d", i))
			}
		}()
	}
	wg.Wait()

	names := o.Names()
	if len(names) != 100 {
		t.Fatalf("len(Names()) = %d, want 100", len(names))
	}
	seen := make(map[string]bool)
	for i, name := range names {
		if seen[name] {
			t.Errorf("name %q interned twice", name)
		}
		seen[name] = true
		if o.Lookup(name) != i {
			t.Errorf("Lookup(%q) = %d, want %d", name, o.Lookup(name), i)
		}
	}
}
