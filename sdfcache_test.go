package regionfx

import (
	"testing"

	"github.com/vttfx/regionfx/render"
)

func buildTestSDF(t *testing.T, pool *render.Pool, region *Region) *SDFEntry {
	t.Helper()
	e := BuildSDF(region, sdfViewport(), pool)
	if e == nil {
		t.Fatal("expected a distance field")
	}
	return e
}

func TestSDFCacheHit(t *testing.T) {
	pool := render.NewPool()
	defer pool.Drain()
	c := NewSDFCache(pool)
	defer c.Close()

	region := polygonSquare(40)
	entry := buildTestSDF(t, pool, region)
	c.Store(region.ID, region.Generation, entry)

	got, ok := c.Lookup(region.ID, region.Generation, region.GeometryHash())
	if !ok || got != entry {
		t.Error("expected a cache hit for the stored generation")
	}
}

func TestSDFCacheGenerationMiss(t *testing.T) {
	pool := render.NewPool()
	defer pool.Drain()
	c := NewSDFCache(pool)
	defer c.Close()

	region := polygonSquare(40)
	entry := buildTestSDF(t, pool, region)
	c.Store(region.ID, 1, entry)

	// Generation bumped with a real shape change: miss.
	changed := polygonSquare(60)
	if _, ok := c.Lookup(region.ID, 2, changed.GeometryHash()); ok {
		t.Error("expected a miss after a structural edit")
	}
}

func TestSDFCacheHashRestamp(t *testing.T) {
	pool := render.NewPool()
	defer pool.Drain()
	c := NewSDFCache(pool)
	defer c.Close()

	region := polygonSquare(40)
	entry := buildTestSDF(t, pool, region)
	c.Store(region.ID, 1, entry)

	// Generation bumped without a structural change (a gate edit, say):
	// the unchanged geometry hash rescues the entry.
	got, ok := c.Lookup(region.ID, 2, region.GeometryHash())
	if !ok || got != entry {
		t.Fatal("expected the unchanged hash to rescue the entry")
	}
	// The slot is re-stamped: the next lookup hits on generation alone.
	if _, ok := c.Lookup(region.ID, 2, region.GeometryHash()); !ok {
		t.Error("expected a hit after re-stamping")
	}
}

func TestSDFCacheStoreReleasesStale(t *testing.T) {
	pool := render.NewPoolWithCap(4)
	defer pool.Drain()
	c := NewSDFCache(pool)

	region := polygonSquare(40)
	old := buildTestSDF(t, pool, region)
	oldTexture := old.Texture
	c.Store(region.ID, 1, old)

	fresh := buildTestSDF(t, pool, polygonSquare(40))
	c.Store(region.ID, 2, fresh)

	// The stale entry's texture went back to the pool.
	if old.Texture != nil {
		t.Error("stale entry still holds its texture")
	}
	if got := pool.Acquire(oldTexture.Width(), oldTexture.Height(), 1); got != oldTexture {
		t.Error("expected the stale texture back from the pool")
	}
}

func TestSDFCacheInvalidate(t *testing.T) {
	pool := render.NewPool()
	defer pool.Drain()
	c := NewSDFCache(pool)

	region := polygonSquare(40)
	c.Store(region.ID, 1, buildTestSDF(t, pool, region))

	c.Invalidate(region.ID)
	if c.Len() != 0 {
		t.Errorf("expected an empty cache, got %d entries", c.Len())
	}
	if _, ok := c.Lookup(region.ID, 1, region.GeometryHash()); ok {
		t.Error("expected a miss after invalidation")
	}
}

func TestSDFCacheClose(t *testing.T) {
	pool := render.NewPool()
	defer pool.Drain()
	c := NewSDFCache(pool)

	c.Store("a", 1, buildTestSDF(t, pool, polygonSquare(40)))
	c.Store("b", 1, buildTestSDF(t, pool, polygonSquare(50)))

	c.Close()
	if c.Len() != 0 {
		t.Errorf("expected an empty cache after close, got %d entries", c.Len())
	}
}
