package ast

import (
	"strings"
	"testing"
)

func TestReadFormatRoundTrip(t *testing.T) {
	tests := []string{
		`(assign x 1)`,
		`(callm (sexp (call __get_fixnum .L1)) + ((sexp (call __get_fixnum .L2))))`,
		`(defm foo (a (b default nil) (c rest)) ((return "hi\n")))`,
		`(lambda _ ((yield)))`,
		`(do (list do x) ())`,
		`(callm __destruct [] (-3))`,
	}
	for _, src := range tests {
		a, root := MustParse(src)
		if got := a.Format(root); got != src {
			t.Errorf("Format(Read(%s)) = %s", src, got)
		}
	}
}

func TestReadTags(t *testing.T) {
	a, root := MustParse(`(assign (destruct a b) (array 1 2))`)
	n := a.Node(root)
	if n.Tag != TagAssign {
		t.Fatalf("root tag = %v, want assign", n.Tag)
	}
	lhs := a.Node(n.Args[0].Node)
	if lhs.Tag != TagDestruct || len(lhs.Args) != 2 {
		t.Errorf("lhs = %s, want (destruct a b)", a.Format(n.Args[0].Node))
	}
	rhs := a.Node(n.Args[1].Node)
	if rhs.Tag != TagArray || !rhs.Args[0].IsInt() || rhs.Args[0].Int != 1 {
		t.Errorf("rhs = %s, want (array 1 2)", a.Format(n.Args[1].Node))
	}
}

func TestReadPositions(t *testing.T) {
	a, root, err := Parse("prog.sx", "(do\n  (assign x 1))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inner := a.Node(a.Node(root).Args[0].Node)
	if inner.Pos.Line != 2 || inner.Pos.Column != 3 || inner.Pos.File != "prog.sx" {
		t.Errorf("pos = %+v, want prog.sx 2:3", inner.Pos)
	}
}

func TestReadWrapsMultipleForms(t *testing.T) {
	a, root := MustParse(`(assign x 1) (assign y 2)`)
	if got := a.Format(root); got != `(do (assign x 1) (assign y 2))` {
		t.Errorf("got %s", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`(assign x`, "unterminated list"},
		{`)`, "unexpected ')'"},
		{`(call puts "oops)`, "unterminated string"},
	}
	for _, tt := range tests {
		_, _, err := Parse("", tt.src)
		if err == nil {
			t.Errorf("Parse(%q): expected error", tt.src)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Parse(%q) error = %v, want %q", tt.src, err, tt.want)
		}
	}
}
