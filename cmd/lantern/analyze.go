package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/codelantern/lantern/internal/cache"
	"github.com/codelantern/lantern/internal/output"
	"github.com/codelantern/lantern/internal/progress"
	"github.com/codelantern/lantern/pkg/analyzer/archmap"
	"github.com/codelantern/lantern/pkg/scanner"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"map"},
		Usage:     "Build the architecture map for a project",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Check the result against the output contract schema",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	m, err := buildMap(c)
	if err != nil {
		return err
	}

	if c.Bool("validate") {
		if err := m.Validate(); err != nil {
			return err
		}
		if c.Bool("verbose") {
			color.Green("Output contract satisfied")
		}
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(mapTable(m))
}

// buildMap discovers files, consults the cache, and runs the analyzer.
// Shared by every command that needs an architecture map.
func buildMap(c *cli.Context) (*archmap.Map, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(getPath(c))
	if err != nil {
		return nil, err
	}

	files, err := scanner.New(cfg).ScanDir(root)
	if err != nil {
		return nil, err
	}
	files, skipped := scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)
	if c.Bool("verbose") && skipped > 0 {
		color.Yellow("Skipped %d oversized files", skipped)
	}

	cacheEnabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	store, err := cache.New(filepath.Join(root, cfg.Cache.Dir), cfg.Cache.TTL, cacheEnabled)
	if err != nil {
		return nil, err
	}
	key := cache.ProjectKey(root)
	digest := cache.DigestFiles(files)

	if data, ok := store.Get(key, digest); ok {
		var m archmap.Map
		if err := json.Unmarshal(data, &m); err == nil {
			if c.Bool("verbose") {
				color.Cyan("Using cached result")
			}
			return &m, nil
		}
	}

	tracker := progress.NewTracker("Analyzing files...", len(files))
	a := archmap.New(cfg,
		archmap.WithRoot(root),
		archmap.WithProgress(tracker.Tick),
	)
	defer a.Close()

	m, err := a.Analyze(c.Context, files)
	tracker.Finish()
	if err != nil {
		return nil, err
	}

	if data, err := m.JSON(); err == nil {
		if err := store.Set(key, digest, data); err != nil && c.Bool("verbose") {
			color.Yellow("Cache write failed: %v", err)
		}
	}

	if c.Bool("verbose") && len(m.FailedFiles) > 0 {
		color.Yellow("Failed to extract %d files", len(m.FailedFiles))
	}

	return m, nil
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}

// mapTable renders the map as one row per file; structured formats get the
// full map.
func mapTable(m *archmap.Map) *output.Table {
	rows := make([][]string, 0, len(m.Files))
	for _, f := range m.Files {
		rows = append(rows, []string{
			f.FilePath,
			f.Language,
			fmt.Sprintf("%d", f.TotalFunctions),
			fmt.Sprintf("%d", len(f.Classes)),
			fmt.Sprintf("%d", f.TotalLines),
		})
	}

	table := output.NewTable(
		"Architecture Map",
		[]string{"File", "Language", "Functions", "Classes", "Lines"},
		rows,
		m,
	)
	table.Footer = []string{
		fmt.Sprintf("Files: %d", m.TotalFiles),
		"",
		fmt.Sprintf("Functions: %d", m.TotalFunctions),
		fmt.Sprintf("Edges: %d", len(m.Edges)),
		fmt.Sprintf("Failed: %d", len(m.FailedFiles)),
	}
	return table
}
