package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/codelantern/lantern/internal/output"
	"github.com/codelantern/lantern/pkg/analyzer/archmap"
)

func filesCmd() *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "List extracted functions per file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Limit output to a single file (project-relative path)",
			},
		},
		Action: runFiles,
	}
}

func runFiles(c *cli.Context) error {
	m, err := buildMap(c)
	if err != nil {
		return err
	}

	if path := c.String("file"); path != "" {
		f := m.File(path)
		if f == nil {
			return fmt.Errorf("file %q not found in project", path)
		}
		m = &archmap.Map{
			Files:          []archmap.FileRecord{*f},
			Edges:          []archmap.Edge{},
			TotalFiles:     1,
			TotalFunctions: f.TotalFunctions,
		}
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(functionsTable(m))
}

func functionsTable(m *archmap.Map) *output.Table {
	var rows [][]string
	for _, f := range m.Files {
		for _, fn := range f.Functions {
			rows = append(rows, []string{
				f.FilePath,
				fn.Name,
				fmt.Sprintf("%d", fn.Line),
				fmt.Sprintf("%d", fn.Complexity),
				strings.Join(fn.Args, ", "),
				fmt.Sprintf("%d", len(fn.Calls)),
			})
		}
	}

	table := output.NewTable(
		"Functions",
		[]string{"File", "Function", "Line", "Complexity", "Args", "Calls"},
		rows,
		m,
	)
	table.Footer = []string{
		fmt.Sprintf("Files: %d", m.TotalFiles),
		fmt.Sprintf("Functions: %d", m.TotalFunctions),
		"", "", "", "",
	}
	return table
}
