package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/codelantern/lantern/internal/output"
	"github.com/codelantern/lantern/pkg/analyzer/stats"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Summarize project statistics and health",
		ArgsUsage: "[path]",
		Action:    runStats,
	}
}

func runStats(c *cli.Context) error {
	m, err := buildMap(c)
	if err != nil {
		return err
	}
	s := stats.Aggregate(m)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(statsTable(s))
}

func statsTable(s *stats.Stats) *output.Table {
	rows := [][]string{
		{"Files", fmt.Sprintf("%d", s.Files.TotalFiles)},
		{"Lines of code", fmt.Sprintf("%d", s.Files.EstimatedLinesOfCode)},
		{"Functions", fmt.Sprintf("%d", s.Functions.TotalFunctions)},
		{"Function calls", fmt.Sprintf("%d", s.Functions.TotalFunctionCalls)},
		{"Functions per file", fmt.Sprintf("%.2f", s.Functions.FunctionsPerFile)},
		{"Avg complexity", fmt.Sprintf("%.2f", s.Functions.AverageComplexity)},
		{"Max complexity", fmt.Sprintf("%d", s.Functions.MaxComplexity)},
		{"Primary language", s.Languages.PrimaryLanguage},
	}

	langs := make([]string, 0, len(s.Languages.Languages))
	for name := range s.Languages.Languages {
		langs = append(langs, name)
	}
	sort.Strings(langs)
	for _, name := range langs {
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d files (%.1f%%)", s.Languages.Languages[name], s.Languages.LanguagePercentages[name]),
		})
	}

	rows = append(rows,
		[]string{"Project size", s.Complexity.ProjectSize},
		[]string{"Architecture", s.Complexity.ArchitectureComplexity},
		[]string{"Health score", fmt.Sprintf("%d/100", s.Complexity.CodeHealthScore)},
	)

	return output.NewTable("Project Statistics", []string{"Metric", "Value"}, rows, s)
}
