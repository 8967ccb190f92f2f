package ast

import (
	"reflect"
	"testing"
)

func collectTags(a *Arena, root NodeID, fn func(id NodeID) Action) []string {
	var seen []string
	a.Walk(root, func(id NodeID) Action {
		seen = append(seen, a.Node(id).Tag.String())
		if fn != nil {
			return fn(id)
		}
		return Continue
	})
	return seen
}

func TestWalkPreOrder(t *testing.T) {
	a, root := MustParse(`(do (assign x (+ 1 2)) (return x))`)
	got := collectTags(a, root, nil)
	want := []string{"do", "assign", "+", "return"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visit order = %v, want %v", got, want)
	}
}

func TestWalkSkip(t *testing.T) {
	a, root := MustParse(`(do (sexp (call f (g))) (call h))`)
	got := collectTags(a, root, func(id NodeID) Action {
		if a.Node(id).Tag == TagSexp {
			return Skip
		}
		return Continue
	})
	want := []string{"do", "sexp", "call"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visit order = %v, want %v", got, want)
	}
}

func TestWalkObservesInPlaceRewrite(t *testing.T) {
	a, root := MustParse(`(do (range 1 2) (call f))`)
	var tags []string
	a.Walk(root, func(id NodeID) Action {
		n := a.Node(id)
		tags = append(tags, n.Tag.String())
		if n.Tag == TagRange {
			args := a.List(n.Pos, n.Args...)
			n.Set(TagCallm, Sym("Range"), Sym("new"), Ref(args))
		}
		return Continue
	})
	// The rewritten node's new children are descended into.
	want := []string{"do", "range", "list", "call"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("visit order = %v, want %v", tags, want)
	}
	if got := a.Format(root); got != `(do (callm Range new (1 2)) (call f))` {
		t.Errorf("tree = %s", got)
	}
}

func TestWalkReplacedDoesNotDescend(t *testing.T) {
	a, root := MustParse(`(do (lambda () ((lambda () ()))))`)
	count := 0
	a.Walk(root, func(id NodeID) Action {
		if a.Node(id).Tag == TagLambda {
			count++
			return Replaced
		}
		return Continue
	})
	if count != 1 {
		t.Errorf("visited %d lambdas, want 1", count)
	}
}

func TestWalkStop(t *testing.T) {
	a, root := MustParse(`(do (call a) (call b) (call c))`)
	visited := 0
	ok := a.Walk(root, func(id NodeID) Action {
		visited++
		if a.Node(id).Tag == TagCall {
			return Stop
		}
		return Continue
	})
	if ok {
		t.Error("Walk returned true after Stop")
	}
	if visited != 2 {
		t.Errorf("visited %d nodes, want 2", visited)
	}
}

func TestWalkTagFilter(t *testing.T) {
	a, root := MustParse(`(do (assign a 1) (call f (assign b 2)))`)
	var targets []string
	a.WalkTag(root, TagAssign, func(id NodeID) Action {
		targets = append(targets, a.Node(id).Args[0].Text)
		return Continue
	})
	if !reflect.DeepEqual(targets, []string{"a", "b"}) {
		t.Errorf("assign targets = %v", targets)
	}
}

func TestWalkVisitsSharedNodeOnce(t *testing.T) {
	a := NewArena()
	shared := a.New(TagCall, Position{}, Sym("f"))
	root := a.New(TagDo, Position{}, Ref(shared), Ref(shared))
	visits := 0
	a.Walk(root, func(id NodeID) Action {
		if id == shared {
			visits++
		}
		return Continue
	})
	if visits != 1 {
		t.Errorf("shared node visited %d times, want 1", visits)
	}
}

func TestReplaceKeepsIdentity(t *testing.T) {
	a, root := MustParse(`(do (concat a b))`)
	target := a.Node(root).Args[0].Node
	repl := a.New(TagCallm, Position{}, Sym("a"), Sym("concat"))
	a.Replace(target, repl)

	if a.Node(root).Args[0].Node != target {
		t.Fatal("parent reference changed")
	}
	if got := a.Format(root); got != `(do (callm a concat))` {
		t.Errorf("tree = %s", got)
	}
	if a.Node(target).Pos.Line != 1 {
		t.Errorf("position lost: %+v", a.Node(target).Pos)
	}
}

func TestReplaceCopiesAnnotations(t *testing.T) {
	a, root := MustParse(`(do (let () x))`)
	target := a.Node(root).Args[0].Node
	repl := a.New(TagLet, Position{}, Ref(a.List(Position{})))
	a.Node(repl).Annotate("varfreq", []string{"x"})
	a.Replace(target, repl)

	a.Node(target).Annotate("exports", []string{"y"})
	if _, ok := a.Node(repl).Extra["exports"]; ok {
		t.Error("annotation on the replaced node leaked into its source")
	}
	if got, _ := a.Node(target).Extra["varfreq"].([]string); len(got) != 1 {
		t.Errorf("varfreq = %v, want copied from source", got)
	}
}
