// Package cache implements content-keyed memoization for the three
// buckets the kernel recomputes most often: surface grids, grid
// triangulations, and curve polylines (spec.md §3/§4.14). The cache is
// an explicit, caller-owned object — never a global — and mirrors the
// bucket names and stats shape of the original implementation's
// GeomCache/GeomCacheStats (see DESIGN.md).
package cache

import (
	"sync"

	"github.com/chazu/ghx/pkg/geom"
)

// SurfaceGridKey identifies a cached adaptive surface grid sizing by
// the surface's content hash and the resulting counts (spec.md §3).
type SurfaceGridKey struct {
	SurfaceKey uint64
	UCount     int
	VCount     int
}

// GridTriangulationKey identifies a cached regular-grid index buffer.
type GridTriangulationKey struct {
	UCount int
	VCount int
	WrapU  bool
	WrapV  bool
}

// CurvePolylineKey identifies a cached adaptive curve tessellation.
type CurvePolylineKey struct {
	CurveHash     uint64
	SegmentCount  int
	AdaptiveFlag  bool
}

// bucketStats tracks hit/miss counters for one bucket.
type bucketStats struct {
	hits   int64
	misses int64
}

func (b *bucketStats) hitRate() float64 {
	total := b.hits + b.misses
	if total == 0 {
		return 0
	}
	return float64(b.hits) / float64(total)
}

// perEntryOverheadBytes approximates map/refcount bookkeeping overhead
// per cache entry for the byte-usage estimate (spec.md §4.14); not a
// precise accounting, just a stable order-of-magnitude figure.
const perEntryOverheadBytes = 48

// Cache is the caller-owned memoization store. It is not safe for
// concurrent use without external synchronization — per spec.md §5,
// the cache is "thread-local-by-design (single owner; callers hold it
// explicitly)"; the internal mutex here only guards against accidental
// concurrent misuse, not a promise of safe sharing.
type Cache struct {
	mu sync.Mutex

	surfaceGrids       map[SurfaceGridKey]*sharedInts2
	gridTriangulations map[GridTriangulationKey]*sharedInts
	curvePolylines     map[CurvePolylineKey]*sharedPoints

	surfaceGridStats       bucketStats
	gridTriangulationStats bucketStats
	curvePolylineStats     bucketStats
}

type sharedInts struct{ data []int }
type sharedInts2 struct{ u, v int }
type sharedPoints struct{ data []geom.Point3 }

// New constructs an empty cache.
func New() *Cache {
	return &Cache{
		surfaceGrids:       make(map[SurfaceGridKey]*sharedInts2),
		gridTriangulations: make(map[GridTriangulationKey]*sharedInts),
		curvePolylines:     make(map[CurvePolylineKey]*sharedPoints),
	}
}

// GetOrInsertSurfaceGrid returns the cached (u,v) grid size for key, or
// calls build and stores its result on a miss.
func (c *Cache) GetOrInsertSurfaceGrid(key SurfaceGridKey, build func() (int, int)) (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.surfaceGrids[key]; ok {
		c.surfaceGridStats.hits++
		return entry.u, entry.v
	}
	c.surfaceGridStats.misses++
	u, v := build()
	c.surfaceGrids[key] = &sharedInts2{u: u, v: v}
	return u, v
}

// GetOrInsertGridTriangulation returns a clone of the cached index
// buffer for key, or calls build and stores a fresh buffer on a miss.
func (c *Cache) GetOrInsertGridTriangulation(key GridTriangulationKey, build func() []int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.gridTriangulations[key]; ok {
		c.gridTriangulationStats.hits++
		return append([]int(nil), entry.data...)
	}
	c.gridTriangulationStats.misses++
	data := build()
	c.gridTriangulations[key] = &sharedInts{data: data}
	return append([]int(nil), data...)
}

// GetOrInsertCurvePolyline returns a clone of the cached polyline for
// key, or calls build and stores a fresh polyline on a miss.
func (c *Cache) GetOrInsertCurvePolyline(key CurvePolylineKey, build func() []geom.Point3) []geom.Point3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.curvePolylines[key]; ok {
		c.curvePolylineStats.hits++
		return append([]geom.Point3(nil), entry.data...)
	}
	c.curvePolylineStats.misses++
	data := build()
	c.curvePolylines[key] = &sharedPoints{data: data}
	return append([]geom.Point3(nil), data...)
}

// Bucket names the three memoization buckets for Clear/Stats.
type Bucket int

const (
	BucketSurfaceGrids Bucket = iota
	BucketGridTriangulations
	BucketCurvePolylines
)

// Clear coarsely empties one bucket — the cache never evicts
// selectively (spec.md §4.14).
func (c *Cache) Clear(bucket Bucket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch bucket {
	case BucketSurfaceGrids:
		c.surfaceGrids = make(map[SurfaceGridKey]*sharedInts2)
	case BucketGridTriangulations:
		c.gridTriangulations = make(map[GridTriangulationKey]*sharedInts)
	case BucketCurvePolylines:
		c.curvePolylines = make(map[CurvePolylineKey]*sharedPoints)
	}
}

// ClearAll empties every bucket.
func (c *Cache) ClearAll() {
	c.Clear(BucketSurfaceGrids)
	c.Clear(BucketGridTriangulations)
	c.Clear(BucketCurvePolylines)
}

// BucketStats is a snapshot of one bucket's hit/miss counters.
type BucketStats struct {
	Hits    int64
	Misses  int64
	Entries int
	HitRate float64
}

// Stats is the aggregate snapshot returned by Cache.Stats.
type Stats struct {
	SurfaceGrids       BucketStats
	GridTriangulations BucketStats
	CurvePolylines     BucketStats
}

// TotalHits returns hits summed across all buckets.
func (s Stats) TotalHits() int64 {
	return s.SurfaceGrids.Hits + s.GridTriangulations.Hits + s.CurvePolylines.Hits
}

// TotalMisses returns misses summed across all buckets.
func (s Stats) TotalMisses() int64 {
	return s.SurfaceGrids.Misses + s.GridTriangulations.Misses + s.CurvePolylines.Misses
}

// HitRate returns the aggregate hit rate across all buckets.
func (s Stats) HitRate() float64 {
	total := s.TotalHits() + s.TotalMisses()
	if total == 0 {
		return 0
	}
	return float64(s.TotalHits()) / float64(total)
}

// EstimatedBytes returns a rough byte-usage estimate: entry count times
// an approximate element size, plus a constant per-entry overhead
// (spec.md §4.14).
func (s Stats) EstimatedBytes() int64 {
	const intSize = 8
	const point3Size = 24
	const gridPairSize = 16
	surfaceBytes := int64(s.SurfaceGrids.Entries) * (gridPairSize + perEntryOverheadBytes)
	triBytes := int64(s.GridTriangulations.Entries) * (intSize + perEntryOverheadBytes)
	curveBytes := int64(s.CurvePolylines.Entries) * (point3Size + perEntryOverheadBytes)
	return surfaceBytes + triBytes + curveBytes
}

// Stats returns a snapshot of per-bucket hit/miss counters, entry
// counts, and an estimated byte footprint.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		SurfaceGrids: BucketStats{
			Hits: c.surfaceGridStats.hits, Misses: c.surfaceGridStats.misses,
			Entries: len(c.surfaceGrids), HitRate: c.surfaceGridStats.hitRate(),
		},
		GridTriangulations: BucketStats{
			Hits: c.gridTriangulationStats.hits, Misses: c.gridTriangulationStats.misses,
			Entries: len(c.gridTriangulations), HitRate: c.gridTriangulationStats.hitRate(),
		},
		CurvePolylines: BucketStats{
			Hits: c.curvePolylineStats.hits, Misses: c.curvePolylineStats.misses,
			Entries: len(c.curvePolylines), HitRate: c.curvePolylineStats.hitRate(),
		},
	}
}

// ResetCounters zeroes the hit/miss counters without clearing cached
// entries, matching the "since last reset_counters()" wording of
// spec.md §8's testable property.
func (c *Cache) ResetCounters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaceGridStats = bucketStats{}
	c.gridTriangulationStats = bucketStats{}
	c.curvePolylineStats = bucketStats{}
}
