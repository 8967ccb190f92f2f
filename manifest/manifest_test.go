package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[pipeline]
disabled = ["validate"]
word-size = 8
label-prefix = ".LC"
reserved-methods = ["__send__", "class"]

[output]
classes = "build/classes.cbor"
format = "cbor"
snapshot = "/tmp/tree.snap"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Pipeline.WordSize != 8 {
		t.Errorf("word-size = %d, want 8", m.Pipeline.WordSize)
	}
	if m.Pipeline.LabelPrefix != ".LC" {
		t.Errorf("label-prefix = %q, want .LC", m.Pipeline.LabelPrefix)
	}
	if len(m.Pipeline.Disabled) != 1 || m.Pipeline.Disabled[0] != "validate" {
		t.Errorf("disabled = %v, want [validate]", m.Pipeline.Disabled)
	}
	if m.Output.Format != FormatCBOR {
		t.Errorf("format = %q, want cbor", m.Output.Format)
	}
	if got, want := m.ClassesPath(), filepath.Join(m.Dir, "build", "classes.cbor"); got != want {
		t.Errorf("ClassesPath() = %q, want %q", got, want)
	}
	if got := m.SnapshotPath(); got != "/tmp/tree.snap" {
		t.Errorf("SnapshotPath() = %q, want /tmp/tree.snap", got)
	}

	opts := m.Options()
	if opts.WordSize != 8 || opts.LabelPrefix != ".LC" {
		t.Errorf("Options() = %+v", opts)
	}
	if !reflect.DeepEqual(opts.Reserved, []string{"__send__", "class"}) {
		t.Errorf("Options().Reserved = %v", opts.Reserved)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[output]
classes = "classes.yaml"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Pipeline.WordSize != 4 {
		t.Errorf("default word-size = %d, want 4", m.Pipeline.WordSize)
	}
	if m.Pipeline.LabelPrefix != ".L" {
		t.Errorf("default label-prefix = %q, want .L", m.Pipeline.LabelPrefix)
	}
	if m.Output.Format != FormatYAML {
		t.Errorf("default format = %q, want yaml", m.Output.Format)
	}
	if m.SnapshotPath() != "" {
		t.Errorf("SnapshotPath() = %q, want empty", m.SnapshotPath())
	}
}

func TestLoadManifestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"word size", "[pipeline]\nword-size = 3\n", "word-size"},
		{"format", "[output]\nformat = \"json\"\n", "format"},
		{"unknown pass", "[pipeline]\ndisabled = [\"inline\"]\n", "unknown pass"},
		{"unknown key", "[pipeline]\nwordsize = 8\n", "unknown key"},
		{"syntax", "[pipeline\n", "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, "[pipeline]\nlabel-prefix = \".Lfound\"\n")

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Pipeline.LabelPrefix != ".Lfound" {
		t.Errorf("label-prefix = %q, want .Lfound", m.Pipeline.LabelPrefix)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no xform.toml exists")
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	opts := m.Options()
	if opts.WordSize != 4 || opts.LabelPrefix != ".L" || len(opts.Disabled) != 0 {
		t.Errorf("Default().Options() = %+v", opts)
	}
	if m.ClassesPath() != "" {
		t.Errorf("ClassesPath() = %q, want empty", m.ClassesPath())
	}
}
