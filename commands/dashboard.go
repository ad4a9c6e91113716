package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-offset-monitor/internal/application/monitor"
	"github.com/penwyp/go-offset-monitor/internal/config"
	"github.com/penwyp/go-offset-monitor/internal/core/matrix"
	"github.com/penwyp/go-offset-monitor/internal/core/tracker"
	"github.com/penwyp/go-offset-monitor/internal/data/fetcher"
	"github.com/penwyp/go-offset-monitor/internal/presentation/display"
	"github.com/penwyp/go-offset-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-offset-monitor/internal/presentation/layout"
	"github.com/penwyp/go-offset-monitor/internal/presentation/style"
	"github.com/penwyp/go-offset-monitor/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// pipeline is the fetch and classify chain shared by the dashboard and
// the snapshot command
type pipeline struct {
	fetcher *fetcher.Fetcher
	tracker *tracker.Tracker
	builder *matrix.Builder
}

func newPipeline(cfg *config.Config, opts ...fetcher.Option) (*pipeline, error) {
	tr, err := tracker.NewWithThresholds(cfg.TrackerThresholds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	f := fetcher.New(cfg, opts...)
	return &pipeline{
		fetcher: f,
		tracker: tr,
		builder: matrix.NewBuilder(f.SourceIDs(), tr),
	}, nil
}

func resolveColors(cfg *config.Config, fd uintptr) (bool, error) {
	mode, err := style.ParseColorMode(cfg.Output.Colors)
	if err != nil {
		return false, err
	}
	return style.ResolveColors(mode, term.IsTerminal(int(fd))), nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runDashboard(cmd *cobra.Command, opts *options) error {
	cfg := opts.cfg

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	colors, err := resolveColors(cfg, os.Stdout.Fd())
	if err != nil {
		return err
	}
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))

	var keyboard *interaction.KeyboardReader
	if stdoutTTY && term.IsTerminal(int(os.Stdin.Fd())) {
		keyboard, err = interaction.NewKeyboardReader()
		if err != nil {
			util.LogWarn("Keyboard input unavailable", util.F("error", err))
			keyboard = nil
		}
	}

	sizer := layout.FixedSizer(layout.DefaultWidth)
	if stdoutTTY {
		sizer = layout.NewSizer(int(os.Stdout.Fd()))
	}
	td := display.NewTerminalDisplay(display.DisplayConfig{
		Out:      cmd.OutOrStdout(),
		Colors:   colors,
		Sizer:    sizer,
		KeyHints: keyboard != nil,
	})

	monitorOpts := []monitor.Option{monitor.WithTrackedCounter(p.tracker.Len)}
	if keyboard != nil {
		monitorOpts = append(monitorOpts, monitor.WithInput(keyboard))
	}

	orch, err := monitor.NewOrchestrator(&monitor.MonitorConfig{
		Interval:        cfg.Interval,
		AlternateScreen: stdoutTTY,
	}, p.fetcher, p.builder, td, monitorOpts...)
	if err != nil {
		if keyboard != nil {
			_ = keyboard.Close()
		}
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return orch.Run(ctx)
}
