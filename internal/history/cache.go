package history

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gxscan/gxscan/internal/trend"
	"go.uber.org/zap"
)

// DefaultTTL is how long a cached series stays fresh.
const DefaultTTL = 5 * time.Minute

// ErrNotFound is returned by Get for absent or expired entries.
var ErrNotFound = errors.New("history: not cached")

// Metric selects which tracked series of a point feeds the trend.
type Metric int

const (
	MetricLiquidity Metric = iota
	MetricHolders
)

// Point is one sample of a token's tracked metrics. The metric fields
// are pointers because upstream may deliver either one alone; a point
// missing both is invalid and discarded.
type Point struct {
	Timestamp      int64    `json:"timestamp"`
	TotalLiquidity *float64 `json:"total_liquidity,omitempty"`
	HolderCount    *float64 `json:"holder_count,omitempty"`
}

// Valid reports whether the point carries a usable timestamp and at
// least one tracked metric.
func (p Point) Valid() bool {
	return p.Timestamp > 0 && (p.TotalLiquidity != nil || p.HolderCount != nil)
}

// Values extracts the selected metric from a series, skipping points
// that do not carry it. Order is preserved.
func Values(points []Point, metric Metric) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		switch metric {
		case MetricLiquidity:
			if p.TotalLiquidity != nil {
				out = append(out, *p.TotalLiquidity)
			}
		case MetricHolders:
			if p.HolderCount != nil {
				out = append(out, *p.HolderCount)
			}
		}
	}
	return out
}

// BlobStore is the opaque persistence boundary for history blobs.
// Implementations never have to succeed; the cache treats every
// failure as a cold start.
type BlobStore interface {
	GetBlob(key string) (data []byte, storedAt int64, err error)
	PutBlob(key string, data []byte, storedAt int64) error
}

type entry struct {
	points    []Point
	fetchedAt time.Time

	// Trend per metric, computed once per populate and served from
	// here until the series changes.
	trends map[Metric]trend.Direction
}

// Cache holds per-token history series with a TTL. It is owned by the
// render loop but safe for concurrent use, since stale fetch responses
// may land from worker goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	store   BlobStore
	logger  *zap.Logger

	// clock is swappable for expiry tests.
	clock func() time.Time
}

// NewCache creates a history cache. store may be nil to disable
// persistence.
func NewCache(ttl time.Duration, store BlobStore, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		store:   store,
		logger:  logger,
		clock:   time.Now,
	}
}

// Get returns the cached series for the address, or ErrNotFound when
// absent or expired. An expired entry is left in place so a failed
// refetch can keep showing the old data.
func (c *Cache) Get(address string) ([]Point, error) {
	c.mu.RLock()
	e, ok := c.entries[address]
	c.mu.RUnlock()

	if ok && c.clock().Sub(e.fetchedAt) < c.ttl {
		return e.points, nil
	}

	if !ok && c.store != nil {
		if pts, at, found := c.loadBlob(address); found && c.clock().Sub(at) < c.ttl {
			c.install(address, pts, at)
			return pts, nil
		}
	}

	return nil, ErrNotFound
}

// Has reports whether a fresh entry exists without touching
// persistence. Used by the visibility-driven populate policy.
func (c *Cache) Has(address string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[address]
	return ok && c.clock().Sub(e.fetchedAt) < c.ttl
}

// Populate validates, sorts, and stores a freshly fetched series with
// a new TTL stamp. Invalid points are discarded individually; an all-
// invalid series still installs as empty, which is a valid state.
func (c *Cache) Populate(address string, points []Point) {
	valid := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		} else {
			c.logger.Warn("Dropping invalid history point",
				zap.String("token", address),
				zap.Int64("timestamp", p.Timestamp))
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp < valid[j].Timestamp
	})

	now := c.clock()
	c.install(address, valid, now)

	if c.store != nil {
		c.saveBlob(address, valid, now)
	}
}

// Trend returns the cached trend classification for the address and
// metric, computing it on first use after a populate. The second
// return is false when no series is cached at all.
func (c *Cache) Trend(address string, metric Metric) (trend.Direction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[address]
	if !ok {
		return trend.Stagnant, false
	}

	if d, done := e.trends[metric]; done {
		return d, true
	}

	d := trend.Classify(Values(e.points, metric))
	e.trends[metric] = d
	return d, true
}

// Clear drops every cached series. Used on disconnect together with
// the store clear so no stale data survives a new connection epoch.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of cached series, fresh or expired.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) install(address string, points []Point, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = &entry{
		points:    points,
		fetchedAt: at,
		trends:    make(map[Metric]trend.Direction),
	}
}

func (c *Cache) loadBlob(address string) ([]Point, time.Time, bool) {
	data, storedAt, err := c.store.GetBlob(blobKey(address))
	if err != nil || len(data) == 0 {
		return nil, time.Time{}, false
	}

	var pts []Point
	if err := json.Unmarshal(data, &pts); err != nil {
		c.logger.Warn("Discarding corrupt history blob",
			zap.String("token", address), zap.Error(err))
		return nil, time.Time{}, false
	}
	return pts, time.Unix(storedAt, 0), true
}

func (c *Cache) saveBlob(address string, points []Point, at time.Time) {
	data, err := json.Marshal(points)
	if err != nil {
		return
	}
	if err := c.store.PutBlob(blobKey(address), data, at.Unix()); err != nil {
		c.logger.Warn("History blob write failed",
			zap.String("token", address), zap.Error(err))
	}
}

func blobKey(address string) string {
	return "history:" + address
}
