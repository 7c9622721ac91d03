package store

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gxscan/gxscan/internal/token"
	"go.uber.org/zap"
)

// Store is the canonical mapping from token address to record. It is
// mutated only through Merge and Clear; every read hands out copies.
type Store struct {
	mu      sync.RWMutex
	records map[string]token.Record
	logger  *zap.Logger

	// version increments on every observable mutation so downstream
	// consumers can recompute projections only when it changes.
	version atomic.Uint64

	// Statistics (accessed atomically)
	merged  uint64
	dropped uint64
}

// New creates an empty token store.
func New(logger *zap.Logger) *Store {
	return &Store{
		records: make(map[string]token.Record),
		logger:  logger,
	}
}

// Merge upserts a batch of records. Each record's risk level is derived
// before install, and the install replaces the previous record for that
// address entirely. Later duplicates within one batch win. Records
// without an address are dropped and logged; this is recoverable, not
// fatal. Re-merging an identical batch leaves the store observably
// unchanged.
func (s *Store) Merge(records []token.Record) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, rec := range records {
		if !rec.Valid() {
			atomic.AddUint64(&s.dropped, 1)
			s.logger.Warn("Dropping record without address",
				zap.String("symbol", rec.Symbol))
			continue
		}

		rec.Risk = token.ClassifyRisk(&rec)
		s.records[rec.Address] = rec
		atomic.AddUint64(&s.merged, 1)
		changed = true
	}

	if changed {
		s.version.Add(1)
	}
}

// Clear empties the store. Invoked on the connected→disconnected
// transition so stale risk data is never presented as live.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return
	}
	s.records = make(map[string]token.Record)
	s.version.Add(1)
}

// Get returns a copy of the record for the address.
func (s *Store) Get(address string) (token.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[address]
	return rec, ok
}

// Snapshot returns a copy of all records in canonical address order.
// The deterministic base order makes the downstream stable sort
// reproducible across recomputes.
func (s *Store) Snapshot() []token.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]token.Record, 0, len(s.records))
	for _, rec := range s.records {
		snapshot = append(snapshot, rec)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Address < snapshot[j].Address
	})
	return snapshot
}

// Len returns the number of distinct addresses held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version returns the monotonic mutation counter.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Stats returns merge/drop counters for diagnostics.
func (s *Store) Stats() (merged, dropped uint64) {
	return atomic.LoadUint64(&s.merged), atomic.LoadUint64(&s.dropped)
}
