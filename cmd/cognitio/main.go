package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "cognitio",
		Usage:   "Browse, search and watch a forest of Markdown cheatsheets",
		Version: version,
		Action:  listCheatsheets,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "$COGNITIO_HOME/cognitio.yaml",
				Sources:     cli.EnvVars("COGNITIO_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug messages to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Print the cheatsheet forest with shorthand ids",
				Action:  listCheatsheets,
			},
			{
				Name:      "show",
				Usage:     "Print a cheatsheet, or the tree below a directory",
				ArgsUsage: "<path|shorthand>",
				Action:    showCheatsheet,
			},
			{
				Name:      "copy",
				Usage:     "Copy a cheatsheet to the system clipboard",
				ArgsUsage: "<path|shorthand>",
				Action:    copyCheatsheet,
			},
			{
				Name:      "edit",
				Usage:     "Open a cheatsheet, or the config file, in the editor",
				ArgsUsage: "[path|shorthand]",
				Action:    editCheatsheet,
			},
			{
				Name:      "search",
				Usage:     "Full-text search through every root",
				ArgsUsage: "<query>",
				Action:    searchCheatsheets,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 20,
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Print change events as JSON lines until interrupted",
				Action: watchForest,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live updates",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
