package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemSource(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.py")
	if err := os.WriteFile(path, []byte("def a():\n    pass\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src := NewFilesystem()
	content, err := src.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(content) == 0 {
		t.Error("Read returned empty content")
	}

	if _, err := src.Read(filepath.Join(tmpDir, "missing.py")); err == nil {
		t.Error("Read of missing file should error")
	}
}

func TestMemorySource(t *testing.T) {
	src := NewMemory(map[string][]byte{
		"b.py": []byte("def b(): pass"),
		"a.py": []byte("def a(): pass"),
	})

	content, err := src.Read("a.py")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(content) != "def a(): pass" {
		t.Errorf("Read = %q", content)
	}

	if _, err := src.Read("c.py"); err == nil {
		t.Error("Read of unknown path should error")
	}

	paths := src.Paths()
	if len(paths) != 2 || paths[0] != "a.py" || paths[1] != "b.py" {
		t.Errorf("Paths = %v, want sorted [a.py b.py]", paths)
	}
}
