package regionfx

import "github.com/vttfx/regionfx/render"

// sdfSlot holds one region's cached field with the generation it was
// built from.
type sdfSlot struct {
	generation uint64
	entry      *SDFEntry
}

// SDFCache is an arena of distance field entries indexed by stable
// region identifier. Invalidation is O(1): a shape edit bumps the
// region's generation counter and the stale slot is simply rebuilt on
// the next lookup. The geometry hash is kept as a fingerprint so a slot
// whose generation was bumped without a structural change still reuses
// its field.
//
// Pure camera motion never touches the cache: fields live in the
// region's own world-space box.
type SDFCache struct {
	slots map[string]*sdfSlot
	pool  *render.Pool
}

// NewSDFCache creates a cache whose entries allocate textures from pool.
func NewSDFCache(pool *render.Pool) *SDFCache {
	return &SDFCache{
		slots: make(map[string]*sdfSlot),
		pool:  pool,
	}
}

// Lookup returns the cached entry for a region if it is current: same
// generation, same geometry hash. A miss is not an error; the caller
// rebuilds via Store.
func (c *SDFCache) Lookup(regionID string, generation, hash uint64) (*SDFEntry, bool) {
	slot, ok := c.slots[regionID]
	if !ok || slot.entry == nil {
		return nil, false
	}
	if slot.generation == generation {
		return slot.entry, true
	}
	// Generation moved but the structure may be unchanged (for
	// example a pure gate edit also bumps generation in some hosts).
	if slot.entry.hash == hash {
		slot.generation = generation
		return slot.entry, true
	}
	return nil, false
}

// Store caches a freshly built entry for a region, releasing any stale
// entry it replaces.
func (c *SDFCache) Store(regionID string, generation uint64, entry *SDFEntry) {
	if old, ok := c.slots[regionID]; ok && old.entry != nil && old.entry != entry {
		old.entry.release(c.pool)
	}
	c.slots[regionID] = &sdfSlot{generation: generation, entry: entry}
}

// Invalidate drops a region's cached entry, releasing its texture.
// Used when the region is deleted.
func (c *SDFCache) Invalidate(regionID string) {
	if slot, ok := c.slots[regionID]; ok {
		if slot.entry != nil {
			slot.entry.release(c.pool)
		}
		delete(c.slots, regionID)
	}
}

// Len returns the number of cached entries.
func (c *SDFCache) Len() int { return len(c.slots) }

// Close releases every cached entry.
func (c *SDFCache) Close() {
	for id, slot := range c.slots {
		if slot.entry != nil {
			slot.entry.release(c.pool)
		}
		delete(c.slots, id)
	}
}
