// xform CLI - runs the rewrite pipeline over s-expression trees
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/xform/ast"
	"github.com/chazu/xform/manifest"
	"github.com/chazu/xform/scope"
	"github.com/chazu/xform/transform"
)

var log = commonlog.GetLogger("xform.cmd")

// CLI is the top-level command-line interface.
type CLI struct {
	Verbose int    `help:"Increase log verbosity (repeatable)." short:"v" type:"counter"`
	Config  string `help:"Path to xform.toml (default: nearest one above the input)." type:"existingfile"`

	Run   RunCmd   `cmd:"" help:"Run the pipeline and print the rewritten tree."`
	Check CheckCmd `cmd:"" help:"Verify the normalization passes are idempotent."`
}

// RunCmd runs every enabled pass over one file.
type RunCmd struct {
	Classes  string   `help:"Write the class layout here (.cbor or .yaml)." placeholder:"PATH"`
	Snapshot string   `help:"Write a CBOR snapshot of the rewritten tree here." placeholder:"PATH"`
	Disable  []string `help:"Skip the named passes." placeholder:"PASS"`

	File string `arg:"" help:"Source file, or '-' for stdin." default:"-"`
}

// CheckCmd checks one file for normalization idempotence.
type CheckCmd struct {
	File string `arg:"" help:"Source file, or '-' for stdin." default:"-"`
}

func main() {
	var cli CLI
	ktx := kong.Parse(&cli,
		kong.Name("xform"),
		kong.Description("AST-rewriting middle-end: scope resolution, closure conversion and desugaring."),
		kong.UsageOnError(),
	)

	commonlog.Configure(cli.Verbose, nil)

	if err := ktx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Run executes the run command.
func (r *RunCmd) Run(cli *CLI) error {
	m, err := loadManifest(cli.Config, r.File)
	if err != nil {
		return err
	}
	opts := m.Options()
	opts.Disabled = append(opts.Disabled, r.Disable...)

	c, root, err := parseFile(r.File, opts)
	if err != nil {
		return err
	}
	if err := c.Run(root); err != nil {
		return err
	}

	fmt.Println(c.Arena.Format(root))
	for _, id := range c.Hoisted {
		fmt.Println(c.Arena.Format(id))
	}
	for _, lit := range c.Literals.All() {
		switch lit.Kind {
		case ast.KindString:
			fmt.Printf("; %s string %q\n", lit.Label, lit.Text)
		case ast.KindInt:
			fmt.Printf("; %s int %d\n", lit.Label, lit.Int)
		}
	}

	classes := r.Classes
	if classes == "" {
		classes = m.ClassesPath()
	}
	if classes != "" {
		if err := writeLayout(classes, m.Output.Format, c.Classes.Layout()); err != nil {
			return err
		}
	}

	snapshot := r.Snapshot
	if snapshot == "" {
		snapshot = m.SnapshotPath()
	}
	if snapshot != "" {
		data, err := ast.MarshalSnapshot(c.Arena, root)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := os.WriteFile(snapshot, data, 0644); err != nil {
			return err
		}
		log.Infof("wrote snapshot %s (%d bytes)", snapshot, len(data))
	}
	return nil
}

// Run executes the check command.
func (k *CheckCmd) Run(cli *CLI) error {
	m, err := loadManifest(cli.Config, k.File)
	if err != nil {
		return err
	}
	c, root, err := parseFile(k.File, m.Options())
	if err != nil {
		return err
	}
	ok, err := c.CheckIdempotent(root)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: normalization is not idempotent", k.File)
	}
	fmt.Printf("%s: ok (%016x)\n", k.File, c.Arena.Fingerprint(root))
	return nil
}

// loadManifest returns the explicit config, the nearest xform.toml above
// the input file, or the defaults, in that order.
func loadManifest(config, file string) (*manifest.Manifest, error) {
	if config != "" {
		return manifest.LoadFile(config)
	}
	start := "."
	if file != "-" {
		start = filepath.Dir(file)
	}
	m, err := manifest.FindAndLoad(start)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	log.Infof("using %s", filepath.Join(m.Dir, manifest.FileName))
	return m, nil
}

func parseFile(file string, opts transform.Options) (*transform.Context, ast.NodeID, error) {
	var (
		src []byte
		err error
	)
	if file == "-" {
		src, err = io.ReadAll(os.Stdin)
		file = "<stdin>"
	} else {
		src, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, 0, err
	}
	arena, root, err := ast.Parse(file, string(src))
	if err != nil {
		return nil, 0, err
	}
	return transform.NewContext(arena, opts), root, nil
}

// writeLayout writes the class layout, choosing the encoding from the
// file extension and falling back to the configured format.
func writeLayout(path, format string, layout *scope.Layout) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		format = manifest.FormatCBOR
	case ".yaml", ".yml":
		format = manifest.FormatYAML
	}

	var (
		data []byte
		err  error
	)
	if format == manifest.FormatCBOR {
		data, err = layout.MarshalCBOR()
	} else {
		data, err = layout.MarshalYAML()
	}
	if err != nil {
		return fmt.Errorf("encoding class layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Infof("wrote %s class layout %s (%d classes)", format, path, len(layout.Classes))
	return nil
}
