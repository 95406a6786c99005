package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/louak/exposure/internal/netutil"
	"github.com/louak/exposure/internal/probe"
	"github.com/louak/exposure/internal/report"
)

// speedCommand returns the "speed" CLI subcommand: sequential latency
// measurement against a fixed server list with progressive output.
func speedCommand() *cli.Command {
	var quiet bool

	return &cli.Command{
		Name:  "speed",
		Usage: "Measure round-trip latency to well-known endpoints",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "Only print the final table",
				Destination: &quiet,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sp := probe.NewSpeedProbe(netutil.NewHTTPClient(10 * time.Second))

			var onUpdate func([]probe.SpeedTestEntry)
			if !quiet {
				onUpdate = func(entries []probe.SpeedTestEntry) {
					for _, e := range entries {
						if e.Status == probe.SpeedTesting {
							fmt.Fprintf(os.Stderr, "testing %s...\n", e.Server)
						}
					}
				}
			}

			final := sp.Run(ctx, onUpdate)
			return report.WriteSpeed(os.Stdout, final)
		},
	}
}
