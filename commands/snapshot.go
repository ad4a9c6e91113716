package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penwyp/go-offset-monitor/internal/application/monitor"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/display"
	"github.com/penwyp/go-offset-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

// formatterRenderer prints one matrix with a formatter and reports
// unreachable sources on the error stream
type formatterRenderer struct {
	f      formatter.Formatter
	errOut io.Writer
}

func (r *formatterRenderer) Render(m model.Matrix, status display.Status) error {
	if len(status.Failed) > 0 {
		fmt.Fprintf(r.errOut, "warning: unreachable sources: %s\n", strings.Join(status.Failed, ", "))
	}
	return r.f.Format(m)
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch every source once and print the offset matrix",
		Long: `Runs a single poll cycle and prints the result. Every value is seen for the
first time, so offsets carry no freshness information here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := formatter.ParseKind(output)
			if err != nil {
				return err
			}
			return runSnapshot(cmd, opts, kind)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(formatter.KindTable),
		"Output format (table, json, csv)")

	return cmd
}

func runSnapshot(cmd *cobra.Command, opts *options, kind formatter.Kind) error {
	cfg := opts.cfg

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	colors := false
	if kind == formatter.KindTable {
		if colors, err = resolveColors(cfg, os.Stdout.Fd()); err != nil {
			return err
		}
	}

	f, err := formatter.NewFormatter(kind, cmd.OutOrStdout(), colors)
	if err != nil {
		return err
	}

	orch, err := monitor.NewOrchestrator(&monitor.MonitorConfig{Interval: cfg.Interval},
		p.fetcher, p.builder, &formatterRenderer{f: f, errOut: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	_, err = orch.RunCycle(ctx)
	return err
}
