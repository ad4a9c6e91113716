package tracker

import (
	"fmt"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/constants"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

// Thresholds are the decay boundaries measured from the last observed change.
// Each boundary is inclusive on the fresher side.
type Thresholds struct {
	JustChanged time.Duration
	Recent      time.Duration
	Aging       time.Duration
}

// DefaultThresholds returns the 10s/30s/120s decay boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		JustChanged: constants.JustChangedWindow,
		Recent:      constants.RecentWindow,
		Aging:       constants.AgingWindow,
	}
}

// Validate checks that boundaries are positive and strictly increasing
func (t Thresholds) Validate() error {
	if t.JustChanged <= 0 {
		return fmt.Errorf("just-changed threshold must be positive, got %s", t.JustChanged)
	}
	if t.Recent <= t.JustChanged {
		return fmt.Errorf("recent threshold (%s) must be greater than just-changed threshold (%s)", t.Recent, t.JustChanged)
	}
	if t.Aging <= t.Recent {
		return fmt.Errorf("aging threshold (%s) must be greater than recent threshold (%s)", t.Aging, t.Recent)
	}
	return nil
}

// Tracker keeps one HistoryEntry per observed pair and derives freshness
// tiers from it. It is not safe for concurrent use.
type Tracker struct {
	thresholds Thresholds
	history    map[model.TrackedKey]*model.HistoryEntry
}

// New creates a Tracker with the default thresholds
func New() *Tracker {
	return &Tracker{
		thresholds: DefaultThresholds(),
		history:    make(map[model.TrackedKey]*model.HistoryEntry),
	}
}

// NewWithThresholds creates a Tracker with custom decay boundaries
func NewWithThresholds(th Thresholds) (*Tracker, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	t := New()
	t.thresholds = th
	return t, nil
}

// Thresholds returns the decay boundaries in use
func (t *Tracker) Thresholds() Thresholds {
	return t.thresholds
}

// Classify records an observation of key and returns its freshness tier.
// The first sighting and any repeat of a value that never changed are
// UnknownFirstSeen; a changed value is JustChanged; otherwise the tier
// decays with the time elapsed since the last change.
func (t *Tracker) Classify(key model.TrackedKey, value int64, now time.Time) model.FreshnessTier {
	entry, ok := t.history[key]
	if !ok {
		t.history[key] = &model.HistoryEntry{LastValue: value}
		return model.UnknownFirstSeen
	}

	if value != entry.LastValue {
		changedAt := now
		entry.LastValue = value
		entry.LastChangeAt = &changedAt
		return model.JustChanged
	}

	if entry.LastChangeAt == nil {
		return model.UnknownFirstSeen
	}

	return t.tierFor(now.Sub(*entry.LastChangeAt))
}

func (t *Tracker) tierFor(elapsed time.Duration) model.FreshnessTier {
	switch {
	case elapsed <= t.thresholds.JustChanged:
		return model.JustChanged
	case elapsed <= t.thresholds.Recent:
		return model.Recent
	case elapsed <= t.thresholds.Aging:
		return model.Aging
	default:
		return model.Idle
	}
}

// Len returns the number of tracked pairs
func (t *Tracker) Len() int {
	return len(t.history)
}
