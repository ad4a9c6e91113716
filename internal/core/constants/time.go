package constants

import "time"

const (
	// Freshness decay boundaries, measured from the last observed offset change.
	// A boundary value belongs to the fresher tier.
	JustChangedWindow = 10 * time.Second
	RecentWindow      = 30 * time.Second
	AgingWindow       = 120 * time.Second

	// Poll cadence and per-source query budget
	DefaultPollInterval = 10 * time.Second
	DefaultQueryTimeout = 5 * time.Second
	MinPollInterval     = 1 * time.Second

	// Upper bound on sources fetched at the same time
	DefaultFetchConcurrency = 8
)
