package transform

import (
	"strings"
	"testing"

	"github.com/chazu/xform/ast"
)

func TestRewriteLambda(t *testing.T) {
	c, root := runPasses(t, `(defm f () ((return (lambda (a b) ((return a))))))`, "lambda")

	want := `(defm f () ((return (do` +
		` (assign (index __env__ 0) (stackframe))` +
		` (assign __tmp_proc (defun .L1 (__closure__ __env__ self (a default nil) (b default nil)) ((return a))))` +
		` (sexp (call __new_proc (__tmp_proc __env__ self 2)))))))`
	if got := c.Arena.Format(root); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteProcReturnsBecomePreturn(t *testing.T) {
	c, _ := runPasses(t, `(defm f () ((return (proc (x) ((return x))))))`, "lambda")
	if len(c.Hoisted) != 1 {
		t.Fatalf("Hoisted = %v, want one defun", c.Hoisted)
	}
	want := `(defun .L1 (__closure__ __env__ self (x default nil)) ((preturn x)))`
	if got := c.Arena.Format(c.Hoisted[0]); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRewriteProcReturnScope(t *testing.T) {
	a, root := ast.MustParse(`(proc () ((return a) (lambda () ((return b))) (proc () ((return c))) (defm g () ((return d)))))`)
	body := a.Node(root).Args[1].Node
	rewriteProcReturn(a, body)

	want := `((preturn a) (lambda () ((return b))) (proc () ((preturn c))) (defm g () ((return d))))`
	if got := a.Format(body); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRewriteLambdaHoistOrder(t *testing.T) {
	c, root := runPasses(t, `(do (assign p (lambda () ((lambda () ())))) (assign q (proc () ())))`, "lambda")

	var labels []string
	for _, id := range c.Hoisted {
		labels = append(labels, c.Arena.Node(id).Args[0].Text)
	}
	if strings.Join(labels, " ") != ".L1 .L2 .L3" {
		t.Errorf("hoisted labels = %v, want [.L1 .L2 .L3]", labels)
	}
	if out := c.Arena.Format(root); strings.Contains(out, "(lambda ") || strings.Contains(out, "(proc ") {
		t.Errorf("closure literal left behind: %s", out)
	}
}

func TestRewriteLambdaSkipsSexp(t *testing.T) {
	c, root := runPasses(t, `(sexp (lambda () ()))`, "lambda")
	if got := c.Arena.Format(root); got != `(sexp (lambda () ()))` {
		t.Errorf("got %s", got)
	}
	if len(c.Hoisted) != 0 {
		t.Errorf("Hoisted = %v, want none", c.Hoisted)
	}
}
