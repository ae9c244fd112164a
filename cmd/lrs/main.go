package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata"
)

// newApp defines the CLI application.
func newApp() *cli.Command {
	return &cli.Command{
		Name:  "lrs",
		Usage: "Leverage Rotation Strategy signal for the next trading day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` (defaults to .env when present)",
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker symbol",
			},
			&cli.IntFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Moving average period, one of %v", indicator.SupportedPeriods),
			},
			&cli.IntFlag{
				Name:  "lookback",
				Usage: "Years of daily history to fetch",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use, one of %v", marketdata.GetSupportedProviders()),
			},
			&cli.StringFlag{
				Name:  "snapshot-dir",
				Usage: "Directory for daily Parquet snapshots of fetched prices",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "signal",
				Usage: "Print the signal report once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, json)",
						Value:   "text",
					},
					&cli.IntFlag{
						Name:  "rows",
						Usage: "Number of recent sessions in the text report",
						Value: report.DefaultTableRows,
					},
					&cli.BoolFlag{
						Name:  "overlay",
						Usage: "Include the close and SMA series in JSON output",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Do not draw the fetch progress bar",
					},
				},
				Action: signalAction,
			},
			{
				Name:  "dashboard",
				Usage: "Interactive terminal dashboard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write logs to `FILE` instead of discarding them",
					},
				},
				Action: dashboardAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the signal over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
				},
				Action: serveAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
			{
				Name:  "init",
				Usage: "Write the config schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory",
						Value: "./config",
					},
				},
				Action: initAction,
			},
			{
				Name:   "providers",
				Usage:  "List supported market data providers",
				Action: providersAction,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: versionAction,
			},
		},
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newApp().Run(ctx, args)
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
