package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/louak/exposure/internal/app"
	"github.com/louak/exposure/internal/browser"
	"github.com/louak/exposure/internal/collect"
	"github.com/louak/exposure/internal/netutil"
	"github.com/louak/exposure/internal/report"
)

// scanCommand returns the "scan" CLI subcommand: one full collection cycle.
func scanCommand() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "scan",
		Usage: "Collect a single snapshot of everything a page can observe",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Write the report as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			session, err := browser.NewSession(ctx, cfg.Browser)
			if err != nil {
				return fmt.Errorf("opening probe session: %w", err)
			}
			defer session.Close()

			collector := collect.New(session, netutil.NewHTTPClient(10*time.Second))
			snap := collector.Collect(ctx)

			out, closeOut, err := reportWriter(cfg)
			if err != nil {
				return err
			}
			defer closeOut()

			if asJSON || cfg.Output.Format == "json" {
				return report.WriteJSON(out, snap)
			}
			return report.WriteText(out, snap)
		},
	}
}

// reportWriter resolves the configured output destination.
func reportWriter(cfg *app.Config) (io.Writer, func(), error) {
	if cfg.Output.Path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
