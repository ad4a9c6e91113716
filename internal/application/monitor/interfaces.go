package monitor

import (
	"context"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/display"
	"github.com/penwyp/go-offset-monitor/internal/presentation/interaction"
)

// SnapshotSource reads every configured source once per cycle
type SnapshotSource interface {
	// FetchAll returns one result per configured source, failures included
	FetchAll(ctx context.Context) map[string]model.FetchResult
	// SourceIDs returns the configured source ids in display order
	SourceIDs() []string
}

// MatrixBuilder turns fetch results into the displayed matrix
type MatrixBuilder interface {
	Build(results map[string]model.FetchResult, now time.Time) model.Matrix
}

// Renderer shows one matrix
type Renderer interface {
	Render(m model.Matrix, status display.Status) error
}

// ScreenController is implemented by renderers that own the whole terminal
type ScreenController interface {
	EnterAlternateScreen()
	ExitAlternateScreen()
}

// InputHandler processes keyboard input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}
