package model

import "time"

// TrackedKey identifies one monitored (source, target) pair
type TrackedKey struct {
	SourceID  string
	TargetURL string
}

// HistoryEntry is the per-pair state kept by the tracker.
// LastChangeAt is nil until the first observed delta; the first sighting
// itself is not a change.
type HistoryEntry struct {
	LastValue    int64
	LastChangeAt *time.Time
}

// Snapshot holds one source's offsets for a single poll cycle
type Snapshot struct {
	SourceID  string
	Offsets   map[string]int64 // targetURL -> offset
	Malformed map[string]error // targetURL -> why the offset was rejected
	FetchedAt time.Time
}

// NewSnapshot creates an empty snapshot for sourceID
func NewSnapshot(sourceID string, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		SourceID:  sourceID,
		Offsets:   make(map[string]int64),
		Malformed: make(map[string]error),
		FetchedAt: fetchedAt,
	}
}

// Targets returns every target URL mentioned by the snapshot, valid or not
func (s *Snapshot) Targets() []string {
	targets := make([]string, 0, len(s.Offsets)+len(s.Malformed))
	for url := range s.Offsets {
		targets = append(targets, url)
	}
	for url := range s.Malformed {
		if _, ok := s.Offsets[url]; !ok {
			targets = append(targets, url)
		}
	}
	return targets
}

// FetchResult is either a Snapshot or a failure for one source
type FetchResult struct {
	SourceID string
	Snapshot *Snapshot
	Err      error
	Duration time.Duration
}

// OK reports whether the fetch produced a snapshot
func (r FetchResult) OK() bool {
	return r.Err == nil && r.Snapshot != nil
}

// Cell is one (target, source) position in the matrix
type Cell struct {
	Tier     FreshnessTier `json:"tier"`
	Value    int64         `json:"value"`
	HasValue bool          `json:"has_value"`
}

// Row holds the cells of one target in configured source order
type Row struct {
	Target string `json:"target"`
	Cells  []Cell `json:"cells"`
}

// Matrix is the point-in-time table produced once per cycle
type Matrix struct {
	Header      []string  `json:"header"`
	Rows        []Row     `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Sources returns the source columns of the header
func (m *Matrix) Sources() []string {
	if len(m.Header) <= 1 {
		return nil
	}
	return m.Header[1:]
}
