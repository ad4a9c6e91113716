package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/penwyp/go-offset-monitor/internal/config"
	"github.com/penwyp/go-offset-monitor/internal/core/constants"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/util"
	"golang.org/x/sync/errgroup"
)

// closeTimeout bounds the connection shutdown after the query context may
// already have expired
const closeTimeout = 2 * time.Second

// Conn is the part of *pgx.Conn the fetcher needs
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

// Dialer opens one connection to a source
type Dialer func(ctx context.Context, connString string) (Conn, error)

// PgxDialer connects with pgx
func PgxDialer(ctx context.Context, connString string) (Conn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithDialer replaces the connection factory
func WithDialer(d Dialer) Option {
	return func(f *Fetcher) { f.dial = d }
}

// WithClock replaces the time source used to stamp snapshots
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// Fetcher reads target offsets from the configured sources. Every call opens
// and releases its own connection.
type Fetcher struct {
	sources     []config.SourceConfig
	index       map[string]config.SourceConfig
	timeout     time.Duration
	concurrency int
	dial        Dialer
	now         func() time.Time
}

// New creates a Fetcher for cfg's sources
func New(cfg *config.Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		sources:     append([]config.SourceConfig(nil), cfg.Sources...),
		index:       make(map[string]config.SourceConfig, len(cfg.Sources)),
		timeout:     cfg.QueryTimeout,
		concurrency: cfg.Concurrency,
		dial:        PgxDialer,
		now:         time.Now,
	}
	for _, s := range cfg.Sources {
		f.index[s.ID] = s
	}
	if f.timeout <= 0 {
		f.timeout = constants.DefaultQueryTimeout
	}
	if f.concurrency <= 0 {
		f.concurrency = constants.DefaultFetchConcurrency
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OffsetQuery returns the SELECT used for a source
func OffsetQuery(src config.SourceConfig) string {
	table := pgx.Identifier{src.Schema, src.Table}.Sanitize()
	return fmt.Sprintf("SELECT target_node_url, target_offset FROM %s ORDER BY target_node_url", table)
}

// Fetch reads one source. Failures are returned inside the result, never
// as a separate error.
func (f *Fetcher) Fetch(ctx context.Context, sourceID string) model.FetchResult {
	start := f.now()
	result := model.FetchResult{SourceID: sourceID}

	src, ok := f.index[sourceID]
	if !ok {
		result.Err = sourceErr(sourceID, "lookup", ErrUnknownSource)
		return result
	}

	qctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	snap, err := f.query(qctx, src, start)
	result.Duration = f.now().Sub(start)
	if err != nil {
		util.LogWarn("Source fetch failed",
			util.F("source", sourceID),
			util.F("duration", result.Duration),
			util.F("error", err))
		result.Err = err
		return result
	}

	util.LogDebug("Source fetched",
		util.F("source", sourceID),
		util.F("targets", len(snap.Offsets)),
		util.F("malformed", len(snap.Malformed)),
		util.F("duration", result.Duration))
	result.Snapshot = snap
	return result
}

func (f *Fetcher) query(ctx context.Context, src config.SourceConfig, fetchedAt time.Time) (*model.Snapshot, error) {
	conn, err := f.dial(ctx, src.ConnString())
	if err != nil {
		return nil, sourceErr(src.ID, "connect", err)
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := conn.Close(cctx); cerr != nil {
			util.LogDebug("Closing source connection failed", util.F("source", src.ID), util.F("error", cerr))
		}
	}()

	rows, err := conn.Query(ctx, OffsetQuery(src))
	if err != nil {
		return nil, sourceErr(src.ID, "query", err)
	}
	defer rows.Close()

	snap := model.NewSnapshot(src.ID, fetchedAt)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, sourceErr(src.ID, "scan", err)
		}
		if len(values) < 2 {
			return nil, sourceErr(src.ID, "scan", fmt.Errorf("expected 2 columns, got %d", len(values)))
		}

		target, ok := values[0].(string)
		if !ok || target == "" {
			util.LogWarn("Skipping row without target url", util.F("source", src.ID), util.F("value", values[0]))
			continue
		}

		offset, err := NormalizeOffset(values[1])
		if err != nil {
			util.LogWarn("Malformed offset", util.F("source", src.ID), util.F("target", target), util.F("error", err))
			delete(snap.Offsets, target)
			snap.Malformed[target] = err
			continue
		}
		delete(snap.Malformed, target)
		snap.Offsets[target] = offset
	}
	if err := rows.Err(); err != nil {
		return nil, sourceErr(src.ID, "query", err)
	}

	return snap, nil
}

// FetchAll reads every configured source concurrently and returns once all
// of them have either succeeded or failed
func (f *Fetcher) FetchAll(ctx context.Context) map[string]model.FetchResult {
	results := make([]model.FetchResult, len(f.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range f.sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = f.Fetch(gctx, src.ID)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]model.FetchResult, len(results))
	for _, r := range results {
		out[r.SourceID] = r
	}
	return out
}

// SourceIDs returns the configured source ids in order
func (f *Fetcher) SourceIDs() []string {
	ids := make([]string, len(f.sources))
	for i, s := range f.sources {
		ids[i] = s.ID
	}
	return ids
}
