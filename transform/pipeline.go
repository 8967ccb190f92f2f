package transform

import (
	"fmt"

	"github.com/chazu/xform/ast"
)

// Pass is one stage of the pipeline.
type Pass struct {
	Name string
	Run  func(c *Context, root ast.NodeID) error
}

// Pipeline returns every pass in the order they must run.
func Pipeline() []Pass {
	return []Pass{
		{"classes", BuildClassScopes},
		{"destruct", RewriteDestruct},
		{"concat", RewriteConcat},
		{"range", RewriteRange},
		{"strings", RewriteStrings},
		{"ints", RewriteInts},
		{"operators", RewriteOperators},
		{"yield", RewriteYield},
		{"env", RewriteLetEnv},
		{"lambda", RewriteLambda},
		{"validate", Validate},
	}
}

// normalization names the passes that must be no-ops on their own output.
var normalization = []string{"destruct", "concat", "range", "strings", "ints", "operators", "yield"}

// PassNames returns the names Options.Disabled accepts.
func PassNames() []string {
	var names []string
	for _, p := range Pipeline() {
		names = append(names, p.Name)
	}
	return names
}

// Run applies the pipeline to the tree at root and stops at the first
// error. Disabled passes are skipped, and so is validation whenever any
// pass was skipped.
func (c *Context) Run(root ast.NodeID) error {
	for _, name := range c.Options.Disabled {
		if !knownPass(name) {
			return fmt.Errorf("unknown pass %q", name)
		}
	}

	partial := false
	for _, p := range Pipeline() {
		if c.Options.disabled(p.Name) {
			log.Infof("pass %s disabled", p.Name)
			partial = true
			continue
		}
		if p.Name == "validate" && partial {
			log.Infof("skipping validation of a partial pipeline")
			continue
		}
		if err := c.runPass(p, root); err != nil {
			return err
		}
	}
	return nil
}

// RunPasses applies only the named passes, in pipeline order.
func (c *Context) RunPasses(root ast.NodeID, names ...string) error {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if !knownPass(name) {
			return fmt.Errorf("unknown pass %q", name)
		}
		want[name] = true
	}
	for _, p := range Pipeline() {
		if !want[p.Name] {
			continue
		}
		if err := c.runPass(p, root); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) runPass(p Pass, root ast.NodeID) error {
	log.Debugf("pass %s: start", p.Name)
	if err := p.Run(c, root); err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	log.Debugf("pass %s: done, %d nodes, fingerprint %016x", p.Name, c.Arena.Len(), c.Arena.Fingerprint(root))
	return nil
}

// CheckIdempotent runs the class builder and the normalization passes,
// then the normalization passes again, and reports whether the second
// round left the tree unchanged.
func (c *Context) CheckIdempotent(root ast.NodeID) (bool, error) {
	if err := c.RunPasses(root, append([]string{"classes"}, normalization...)...); err != nil {
		return false, err
	}
	before := c.Arena.Fingerprint(root)
	if err := c.RunPasses(root, normalization...); err != nil {
		return false, err
	}
	after := c.Arena.Fingerprint(root)
	log.Debugf("idempotence: %016x -> %016x", before, after)
	return before == after, nil
}

func knownPass(name string) bool {
	for _, p := range Pipeline() {
		if p.Name == name {
			return true
		}
	}
	return false
}
