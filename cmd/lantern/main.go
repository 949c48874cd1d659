// Command lantern builds architecture maps from source trees: per-file
// functions, classes, imports, and resolved call edges across Python,
// JavaScript, TypeScript, Java, C++, and Rust.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/codelantern/lantern/pkg/config"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "lantern",
		Usage:   "Multi-language architecture-map analyzer",
		Version: version,
		Description: `Lantern statically extracts functions, classes, imports, and call
relationships from a source tree and assembles them into a deterministic
architecture map for visualization and further analysis.

Supports: Python, JavaScript, TypeScript, Java, C++, Rust`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"LANTERN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, yaml, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable result caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			statsCmd(),
			rankCmd(),
			filesCmd(),
			initCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getPath returns the project root from positional args, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig loads the --config file or searches standard locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}
