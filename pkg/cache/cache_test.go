package cache

import (
	"testing"

	"github.com/chazu/ghx/pkg/geom"
)

func TestGetOrInsertCurvePolylineHitsOnSecondCall(t *testing.T) {
	c := New()
	builds := 0
	build := func() []geom.Point3 {
		builds++
		return []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0)}
	}
	key := CurvePolylineKey{CurveHash: 42, SegmentCount: 8, AdaptiveFlag: true}

	first := c.GetOrInsertCurvePolyline(key, build)
	second := c.GetOrInsertCurvePolyline(key, build)

	if builds != 1 {
		t.Fatalf("expected build to run once, ran %d times", builds)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both results to have 2 points")
	}

	stats := c.Stats()
	if stats.CurvePolylines.Hits != 1 || stats.CurvePolylines.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %+v", stats.CurvePolylines)
	}
}

func TestGetOrInsertClonesStoredBuffer(t *testing.T) {
	c := New()
	key := GridTriangulationKey{UCount: 4, VCount: 4}
	build := func() []int { return []int{0, 1, 2} }

	a := c.GetOrInsertGridTriangulation(key, build)
	a[0] = 999
	b := c.GetOrInsertGridTriangulation(key, build)

	if b[0] != 0 {
		t.Fatalf("mutating a returned buffer corrupted the cached entry: got %d", b[0])
	}
}

func TestStatsMatchCallCount(t *testing.T) {
	c := New()
	key := SurfaceGridKey{SurfaceKey: 1, UCount: 8, VCount: 8}
	build := func() (int, int) { return 8, 8 }

	calls := 5
	for i := 0; i < calls; i++ {
		c.GetOrInsertSurfaceGrid(key, build)
	}

	stats := c.Stats()
	if stats.TotalHits()+stats.TotalMisses() != int64(calls) {
		t.Fatalf("hits+misses should equal call count: got %d want %d", stats.TotalHits()+stats.TotalMisses(), calls)
	}
}

func TestResetCountersClearsOnlyCounters(t *testing.T) {
	c := New()
	key := GridTriangulationKey{UCount: 2, VCount: 2}
	c.GetOrInsertGridTriangulation(key, func() []int { return []int{0, 1, 2} })

	c.ResetCounters()
	stats := c.Stats()
	if stats.TotalHits() != 0 || stats.TotalMisses() != 0 {
		t.Fatalf("expected counters reset to zero, got hits=%d misses=%d", stats.TotalHits(), stats.TotalMisses())
	}
	if stats.GridTriangulations.Entries != 1 {
		t.Fatalf("ResetCounters should not clear entries, got %d", stats.GridTriangulations.Entries)
	}
}

func TestClearRemovesEntries(t *testing.T) {
	c := New()
	key := CurvePolylineKey{CurveHash: 7}
	c.GetOrInsertCurvePolyline(key, func() []geom.Point3 { return []geom.Point3{geom.Origin} })

	c.Clear(BucketCurvePolylines)
	stats := c.Stats()
	if stats.CurvePolylines.Entries != 0 {
		t.Fatalf("expected bucket cleared, got %d entries", stats.CurvePolylines.Entries)
	}
}
