package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindReturnsNilWhenNoManifestExists(t *testing.T) {
	dir := t.TempDir()
	m, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if m != nil {
		t.Fatalf("expected no manifest, got %+v", m)
	}
}

func TestFindWalksUpwardToLocateManifest(t *testing.T) {
	root := t.TempDir()
	manifest := "[package]\nname = \"demo\"\n\n[import]\nroots = [\"vendor\"]\n"
	if err := os.WriteFile(filepath.Join(root, "buzz.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	m, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if m == nil {
		t.Fatalf("expected to find the manifest at %s", root)
	}
	if m.Package.Name != "demo" {
		t.Fatalf("expected package name demo, got %q", m.Package.Name)
	}
	roots := m.SearchRoots()
	if len(roots) != 1 || roots[0] != filepath.Join(root, "vendor") {
		t.Fatalf("expected roots resolved against manifest dir, got %v", roots)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buzz.toml")
	if err := os.WriteFile(path, []byte("this is not [valid toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error loading malformed toml")
	}
}
