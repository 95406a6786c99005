package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/louak/exposure/internal/app"
	"github.com/louak/exposure/internal/browser"
	"github.com/louak/exposure/internal/collect"
	"github.com/louak/exposure/internal/monitor"
	"github.com/louak/exposure/internal/netutil"
	"github.com/louak/exposure/internal/report"
)

// watchCommand returns the "watch" CLI subcommand: periodic re-collection
// with change events.
func watchCommand() *cli.Command {
	var interval time.Duration

	return &cli.Command{
		Name:  "watch",
		Usage: "Re-collect periodically and report when the observable surface changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "interval",
				Usage:       "Override the collection interval",
				Destination: &interval,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			opt := monitor.Options{
				Interval: cfg.Watch.Interval,
				Timeout:  cfg.Watch.Timeout,
			}
			if interval > 0 {
				opt.Interval = interval
			}

			session, err := browser.NewSession(ctx, cfg.Browser)
			if err != nil {
				return fmt.Errorf("opening probe session: %w", err)
			}
			defer session.Close()

			collector := collect.New(session, netutil.NewHTTPClient(10*time.Second))

			slog.Info("watching", "interval", opt.Interval)
			monitor.Run(ctx, collector, opt, func(ev monitor.Event) {
				slog.Warn("observable surface changed", "at", ev.At)
				if err := report.WriteText(os.Stdout, *ev.Current); err != nil {
					slog.Error("writing change report", "error", err)
				}
			})
			return nil
		},
	}
}
