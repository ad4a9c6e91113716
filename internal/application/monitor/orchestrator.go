package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/display"
	"github.com/penwyp/go-offset-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-offset-monitor/internal/util"
)

// errQuit is returned by handleKey when the user asked to leave
var errQuit = errors.New("quit requested")

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithInput attaches a keyboard to the loop
func WithInput(in InputHandler) Option {
	return func(o *Orchestrator) { o.input = in }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithTrackedCounter reports the tracker size in the status line
func WithTrackedCounter(fn func() int) Option {
	return func(o *Orchestrator) { o.tracked = fn }
}

// Orchestrator runs fetch, build and render cycles one at a time
type Orchestrator struct {
	config *MonitorConfig

	source   SnapshotSource
	builder  MatrixBuilder
	renderer Renderer
	input    InputHandler

	state   *StateManager
	now     func() time.Time
	tracked func() int
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *MonitorConfig, source SnapshotSource, builder MatrixBuilder, renderer Renderer, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil || builder == nil || renderer == nil {
		return nil, errors.New("orchestrator requires a source, a builder and a renderer")
	}

	o := &Orchestrator{
		config:   config,
		source:   source,
		builder:  builder,
		renderer: renderer,
		state:    NewStateManager(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// State exposes the last cycle outcome
func (o *Orchestrator) State() *StateManager {
	return o.state
}

// RunCycle fetches every source, builds the matrix once all fetches have
// finished and renders it. A cancelled context aborts before the build.
func (o *Orchestrator) RunCycle(ctx context.Context) (model.Matrix, error) {
	cycle := o.state.NextCycle()
	start := o.now()

	results := o.source.FetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return model.Matrix{}, err
	}

	now := o.now()
	matrix := o.builder.Build(results, now)

	status := display.Status{
		Cycle:    cycle,
		At:       now,
		Interval: o.config.Interval,
		Elapsed:  now.Sub(start),
		Failed:   o.failedSources(results),
	}
	if o.tracked != nil {
		status.Tracked = o.tracked()
	}

	if err := o.renderer.Render(matrix, status); err != nil {
		return matrix, fmt.Errorf("render cycle %d: %w", cycle, err)
	}
	o.state.SetResult(matrix, status)

	util.LogDebug("Cycle completed",
		util.F("cycle", cycle),
		util.F("targets", len(matrix.Rows)),
		util.F("failed", len(status.Failed)),
		util.F("elapsed", status.Elapsed))
	return matrix, nil
}

// failedSources lists unsuccessful sources in configured order
func (o *Orchestrator) failedSources(results map[string]model.FetchResult) []string {
	var failed []string
	for _, id := range o.source.SourceIDs() {
		r, ok := results[id]
		if !ok || !r.OK() {
			failed = append(failed, id)
		}
	}
	return failed
}

// Run starts the poll loop and blocks until ctx is done or the user quits.
// The first cycle runs immediately. Ticks that arrive while a cycle is
// running are coalesced by the ticker, so cycles never overlap.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting offset monitor",
		util.F("interval", o.config.Interval),
		util.F("sources", len(o.source.SourceIDs())))

	if sc, ok := o.renderer.(ScreenController); ok && o.config.AlternateScreen {
		sc.EnterAlternateScreen()
		defer sc.ExitAlternateScreen()
	}
	if o.input != nil {
		defer o.input.Close()
	}

	if err := o.cycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(o.config.Interval)
	defer ticker.Stop()

	var keys <-chan interaction.KeyEvent
	if o.input != nil {
		keys = o.input.Events()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down offset monitor")
			return nil

		case <-ticker.C:
			if err := o.cycle(ctx); err != nil {
				return err
			}

		case ev, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if err := o.handleKey(ctx, ev, ticker); err != nil {
				if errors.Is(err, errQuit) {
					util.LogInfo("Quit requested from keyboard")
					return nil
				}
				return err
			}
		}
	}
}

func (o *Orchestrator) cycle(ctx context.Context) error {
	_, err := o.RunCycle(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (o *Orchestrator) handleKey(ctx context.Context, ev interaction.KeyEvent, ticker *time.Ticker) error {
	switch interaction.ActionFor(ev) {
	case interaction.ActionQuit:
		return errQuit
	case interaction.ActionRefresh:
		util.LogDebug("Manual refresh")
		if err := o.cycle(ctx); err != nil {
			return err
		}
		ticker.Reset(o.config.Interval)
	}
	return nil
}
