// Package scanner discovers source files under a project root, applying the
// configured exclusion rules and optional .gitignore patterns.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/codelantern/lantern/pkg/config"
	"github.com/codelantern/lantern/pkg/parser"
)

// Scanner finds source files in a directory tree.
type Scanner struct {
	config   *config.Config
	excluded map[string]bool
	matchers []gitignore.Matcher
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	excluded := make(map[string]bool, len(cfg.Exclude.Dirs))
	for _, dir := range cfg.Exclude.Dirs {
		excluded[dir] = true
	}
	return &Scanner{config: cfg, excluded: excluded}
}

// loadGitignore reads .gitignore patterns below root plus the config's
// exclude patterns, all parsed as gitignore syntax.
func (s *Scanner) loadGitignore(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		bfs := osfs.New(root)
		if gitPatterns, err := gitignore.ReadPatterns(bfs, nil); err == nil {
			patterns = append(patterns, gitPatterns...)
		}
	}

	if len(patterns) > 0 {
		s.matchers = []gitignore.Matcher{gitignore.NewMatcher(patterns)}
	}
}

// isIgnored checks a relative path against the gitignore matchers.
func (s *Scanner) isIgnored(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans root for supported source files. The returned
// paths are absolute and sorted. A missing or unreadable root is a fatal
// error: no meaningful partial result exists without a root.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root unreadable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, the root itself was already checked.
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			name := d.Name()
			if s.excluded[name] || strings.HasPrefix(name, ".") || s.isIgnored(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || s.isIgnored(relPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

// FilterBySize drops files larger than maxSize bytes. Returns the filtered
// list and the count skipped. A maxSize of 0 disables the filter.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}

// GroupByLanguage groups files by their detected language.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		if lang := parser.DetectLanguage(f); lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}
