// Package manifest handles xform.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/chazu/xform/transform"
)

// FileName is the configuration file Load and FindAndLoad look for.
const FileName = "xform.toml"

// Manifest represents an xform.toml project configuration.
type Manifest struct {
	Pipeline Pipeline `toml:"pipeline"`
	Output   Output   `toml:"output"`

	// Dir is the directory containing the xform.toml file (set at load time).
	Dir string `toml:"-"`
}

// Pipeline configures the rewrite passes.
type Pipeline struct {
	Disabled    []string `toml:"disabled"`
	WordSize    int      `toml:"word-size"`
	LabelPrefix string   `toml:"label-prefix"`
	Reserved    []string `toml:"reserved-methods"`
}

// Output configures what the driver writes besides the rewritten tree.
type Output struct {
	Classes  string `toml:"classes"`
	Format   string `toml:"format"`
	Snapshot string `toml:"snapshot"`
}

// Layout formats accepted by [output] format.
const (
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Load parses an xform.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Relative output paths
// are later resolved against the file's directory.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an xform.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Default returns the manifest used when no xform.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	def := transform.DefaultOptions()
	if m.Pipeline.WordSize == 0 {
		m.Pipeline.WordSize = def.WordSize
	}
	if m.Pipeline.LabelPrefix == "" {
		m.Pipeline.LabelPrefix = def.LabelPrefix
	}
	if m.Output.Format == "" {
		m.Output.Format = FormatYAML
	}
}

func (m *Manifest) validate() error {
	switch m.Pipeline.WordSize {
	case 4, 8:
	default:
		return fmt.Errorf("word-size must be 4 or 8, got %d", m.Pipeline.WordSize)
	}
	switch m.Output.Format {
	case FormatYAML, FormatCBOR:
	default:
		return fmt.Errorf("unknown class layout format %q", m.Output.Format)
	}

	known := make(map[string]bool)
	for _, name := range transform.PassNames() {
		known[name] = true
	}
	for _, name := range m.Pipeline.Disabled {
		if !known[name] {
			return fmt.Errorf("unknown pass %q in disabled", name)
		}
	}
	return nil
}

// Options converts the [pipeline] table to transform options.
func (m *Manifest) Options() transform.Options {
	return transform.Options{
		WordSize:    m.Pipeline.WordSize,
		LabelPrefix: m.Pipeline.LabelPrefix,
		Disabled:    append([]string(nil), m.Pipeline.Disabled...),
		Reserved:    append([]string(nil), m.Pipeline.Reserved...),
	}
}

// ClassesPath returns the absolute class layout output path, or "" if
// none is configured.
func (m *Manifest) ClassesPath() string { return m.resolve(m.Output.Classes) }

// SnapshotPath returns the absolute snapshot output path, or "" if none
// is configured.
func (m *Manifest) SnapshotPath() string { return m.resolve(m.Output.Snapshot) }

func (m *Manifest) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}
