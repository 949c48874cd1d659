// Package source abstracts where file content comes from, so analyzers can
// run against the filesystem in production and in-memory trees in tests.
package source

import (
	"fmt"
	"os"
	"sort"
)

// ContentSource provides file content.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemorySource serves content from an in-memory map. Used by tests.
type MemorySource struct {
	files map[string][]byte
}

// NewMemory creates a source backed by the given path -> content map.
func NewMemory(files map[string][]byte) *MemorySource {
	return &MemorySource{files: files}
}

// Read implements ContentSource.
func (m *MemorySource) Read(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

// Paths returns the sorted paths known to the source.
func (m *MemorySource) Paths() []string {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
