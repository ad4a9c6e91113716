package matrix

import (
	"sort"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

// TargetColumn is the header of the first column
const TargetColumn = "target"

// Classifier records an observation and returns its freshness tier
type Classifier interface {
	Classify(key model.TrackedKey, value int64, now time.Time) model.FreshnessTier
}

// Builder merges per-source fetch results into one table, classifying every
// observed cell. Columns follow the configured source order.
type Builder struct {
	sources    []string
	classifier Classifier
}

// NewBuilder creates a Builder for the given ordered sources
func NewBuilder(sources []string, classifier Classifier) *Builder {
	ordered := make([]string, len(sources))
	copy(ordered, sources)
	return &Builder{
		sources:    ordered,
		classifier: classifier,
	}
}

// Sources returns the configured column order
func (b *Builder) Sources() []string {
	out := make([]string, len(b.sources))
	copy(out, b.sources)
	return out
}

// Build produces the matrix for one cycle. A source that failed, is absent
// from results, or lacks a target yields a Missing cell without touching
// history; only present, well-formed offsets reach the classifier.
func (b *Builder) Build(results map[string]model.FetchResult, now time.Time) model.Matrix {
	header := make([]string, 0, len(b.sources)+1)
	header = append(header, TargetColumn)
	header = append(header, b.sources...)

	targets := b.collectTargets(results)
	rows := make([]model.Row, 0, len(targets))

	for _, target := range targets {
		row := model.Row{
			Target: target,
			Cells:  make([]model.Cell, len(b.sources)),
		}

		for i, sourceID := range b.sources {
			row.Cells[i] = b.buildCell(results, sourceID, target, now)
		}
		rows = append(rows, row)
	}

	return model.Matrix{
		Header:      header,
		Rows:        rows,
		GeneratedAt: now,
	}
}

func (b *Builder) buildCell(results map[string]model.FetchResult, sourceID, target string, now time.Time) model.Cell {
	missing := model.Cell{Tier: model.Missing}

	result, ok := results[sourceID]
	if !ok || !result.OK() {
		return missing
	}

	value, ok := result.Snapshot.Offsets[target]
	if !ok {
		return missing
	}

	key := model.TrackedKey{SourceID: sourceID, TargetURL: target}
	return model.Cell{
		Tier:     b.classifier.Classify(key, value, now),
		Value:    value,
		HasValue: true,
	}
}

// collectTargets returns the sorted union of targets reported by successful
// configured sources
func (b *Builder) collectTargets(results map[string]model.FetchResult) []string {
	seen := make(map[string]struct{})
	for _, sourceID := range b.sources {
		result, ok := results[sourceID]
		if !ok || !result.OK() {
			continue
		}
		for _, target := range result.Snapshot.Targets() {
			seen[target] = struct{}{}
		}
	}

	targets := make([]string, 0, len(seen))
	for target := range seen {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}
