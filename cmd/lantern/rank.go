package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codelantern/lantern/internal/output"
	"github.com/codelantern/lantern/pkg/analyzer/graphrank"
)

func rankCmd() *cli.Command {
	return &cli.Command{
		Name:      "rank",
		Usage:     "Rank functions by call-graph centrality",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 20,
				Usage: "Number of functions to show",
			},
		},
		Action: runRank,
	}
}

func runRank(c *cli.Context) error {
	m, err := buildMap(c)
	if err != nil {
		return err
	}
	ranking := graphrank.Rank(m)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(rankTable(ranking, c.Int("top")))
}

func rankTable(r *graphrank.Ranking, top int) *output.Table {
	ranked := r.Top(top)
	rows := make([][]string, 0, len(ranked))
	for _, fn := range ranked {
		rows = append(rows, []string{
			fn.FunctionName,
			fn.FilePath,
			fmt.Sprintf("%.4f", fn.PageRank),
			fmt.Sprintf("%d", fn.InDegree),
			fmt.Sprintf("%d", fn.OutDegree),
		})
	}

	table := output.NewTable(
		"Call Graph Ranking",
		[]string{"Function", "File", "PageRank", "In", "Out"},
		rows,
		r,
	)
	table.Footer = []string{
		fmt.Sprintf("Functions: %d", len(r.Functions)),
		"",
		fmt.Sprintf("Edges: %d", r.TotalEdges),
		"",
		"",
	}
	return table
}
