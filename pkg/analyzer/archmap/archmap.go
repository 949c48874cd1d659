// Package archmap builds the architecture map: per-file function, class,
// and import records with resolved call edges, assembled deterministically
// so repeated runs over the same tree marshal to byte-identical JSON.
//
// Analysis is two-pass. Pass 1 extracts every file independently on a
// bounded worker pool; pass 2 builds the project-wide symbol table and
// resolves calls single-threaded. Cross-file name collisions resolve to the
// lexicographically-first defining file, which is a documented
// approximation rather than scope-aware resolution.
package archmap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codelantern/lantern/internal/fileproc"
	"github.com/codelantern/lantern/pkg/analyzer"
	"github.com/codelantern/lantern/pkg/config"
	"github.com/codelantern/lantern/pkg/parser"
	"github.com/codelantern/lantern/pkg/scanner"
	"github.com/codelantern/lantern/pkg/source"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Map] = (*Analyzer)(nil)

// errEmptyFile marks files with no content worth mapping. Not a failure.
var errEmptyFile = errors.New("empty file")

// Analyzer builds architecture maps.
type Analyzer struct {
	config     *config.Config
	src        source.ContentSource
	root       string
	onProgress func()
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithSource overrides where file content is read from.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.src = src
	}
}

// WithRoot sets the project root used to relativize paths when Analyze is
// called with an explicit file list.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithProgress registers a callback invoked once per completed file.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates an architecture-map analyzer.
func New(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Analyzer{
		config: cfg,
		src:    source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeProject discovers source files under root and builds the map. A
// missing or unreadable root fails fast; everything after discovery
// recovers per file.
func (a *Analyzer) AnalyzeProject(ctx context.Context, root string) (*Map, error) {
	files, err := scanner.New(a.config).ScanDir(root)
	if err != nil {
		return nil, err
	}
	files, _ = scanner.FilterBySize(files, a.config.Analysis.MaxFileSize)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, files, absRoot)
}

// Analyze builds the map for an explicit file list. Paths are reported
// relative to the root set via WithRoot, or as given.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Map, error) {
	return a.analyze(ctx, files, a.root)
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {}

func (a *Analyzer) analyze(ctx context.Context, files []string, root string) (*Map, error) {
	opts := fileproc.Options{
		MaxWorkers:  a.config.Analysis.Workers,
		FileTimeout: time.Duration(a.config.Analysis.FileTimeoutSec) * time.Second,
		OnProgress:  a.onProgress,
	}

	records, errs := fileproc.MapFiles(ctx, files, opts, func(fctx context.Context, psr *parser.Parser, path string) (FileRecord, error) {
		return a.extractOne(fctx, psr, path, root)
	})

	sort.Slice(records, func(i, j int) bool {
		return records[i].FilePath < records[j].FilePath
	})

	m := &Map{
		Files:      records,
		TotalFiles: len(records),
	}
	if m.Files == nil {
		m.Files = []FileRecord{}
	}
	m.Edges = resolveCalls(m.Files)
	for _, rec := range m.Files {
		m.TotalFunctions += rec.TotalFunctions
	}

	if errs != nil {
		for _, pe := range errs.Errors {
			if errors.Is(pe.Err, errEmptyFile) {
				continue
			}
			m.FailedFiles = append(m.FailedFiles, relativePath(root, pe.Path))
		}
		sort.Strings(m.FailedFiles)
	}

	return m, nil
}

// extractOne reads, parses, and extracts a single file under its per-file
// context deadline.
func (a *Analyzer) extractOne(ctx context.Context, psr *parser.Parser, path, root string) (FileRecord, error) {
	content, err := a.src.Read(path)
	if err != nil {
		return FileRecord{}, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return FileRecord{}, errEmptyFile
	}

	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return FileRecord{}, fmt.Errorf("unsupported language: %s", path)
	}

	res, err := psr.Parse(ctx, content, lang, path)
	if err != nil {
		return FileRecord{}, err
	}

	return extractFile(res, relativePath(root, path)), nil
}

// relativePath reports a path relative to root with forward slashes; paths
// outside the root keep their given form.
func relativePath(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

// JSON marshals the map with stable two-space indentation.
func (m *Map) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
