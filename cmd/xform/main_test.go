package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/xform/manifest"
	"github.com/chazu/xform/scope"
)

func TestWriteLayoutByExtension(t *testing.T) {
	tbl := scope.NewTable()
	tbl.Open(scope.KindClass, "Foo", tbl.Global(), "").AddMethod("bar")
	layout := tbl.Layout()
	dir := t.TempDir()

	cborPath := filepath.Join(dir, "classes.cbor")
	if err := writeLayout(cborPath, manifest.FormatYAML, layout); err != nil {
		t.Fatalf("writeLayout: %v", err)
	}
	data, err := os.ReadFile(cborPath)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := scope.DecodeLayout(data)
	if err != nil {
		t.Fatalf("DecodeLayout: %v", err)
	}
	if len(decoded.Classes) != 1 || decoded.Classes[0].Name != "Foo" {
		t.Errorf("decoded classes = %+v", decoded.Classes)
	}

	yamlPath := filepath.Join(dir, "classes.yml")
	if err := writeLayout(yamlPath, manifest.FormatCBOR, layout); err != nil {
		t.Fatalf("writeLayout: %v", err)
	}
	text, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "Foo") {
		t.Errorf("yaml layout does not mention Foo:\n%s", text)
	}
}

func TestLoadManifestFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := loadManifest("", filepath.Join(dir, "input.sx"))
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if m.Pipeline.WordSize != 4 {
		t.Errorf("word-size = %d, want 4", m.Pipeline.WordSize)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input.sx")
	if err := os.WriteFile(src, []byte(`(class Foo _ ((defm hello () ((return "hi")))))`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, manifest.FileName)
	if err := os.WriteFile(cfg, []byte("[output]\nclasses = \"classes.yaml\"\nsnapshot = \"tree.snap\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &RunCmd{File: src}
	if err := cmd.Run(&CLI{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"classes.yaml", "tree.snap"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}
