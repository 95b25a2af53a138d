package render

import "math"

// DefaultFreeListCap is the default maximum number of free targets kept
// per (width, height, resolution) bucket. Excess targets are destroyed
// immediately on release so the pool cannot grow unbounded across
// resize events.
const DefaultFreeListCap = 8

// poolKey buckets targets by their allocation parameters.
type poolKey struct {
	width      int
	height     int
	resolution uint64 // float bits, exact match required
}

func keyFor(width, height int, resolution float64) poolKey {
	return poolKey{
		width:      width,
		height:     height,
		resolution: math.Float64bits(resolution),
	}
}

// Pool recycles render targets by (width, height, resolution) bucket to
// avoid per-frame allocation.
//
// The pool is the only cross-region shared mutable state in the
// pipeline; all access happens on the single render goroutine, so no
// locking is needed, only correct acquire/release pairing.
type Pool struct {
	free map[poolKey][]*Target
	cap  int
}

// NewPool creates a pool with the default per-bucket free list cap.
func NewPool() *Pool {
	return NewPoolWithCap(DefaultFreeListCap)
}

// NewPoolWithCap creates a pool with a custom per-bucket free list cap.
// A cap below 1 is raised to 1.
func NewPoolWithCap(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		free: make(map[poolKey][]*Target),
		cap:  capacity,
	}
}

// Cap returns the per-bucket free list capacity.
func (p *Pool) Cap() int { return p.cap }

// FreeLen returns the current free list length for a bucket.
func (p *Pool) FreeLen(width, height int, resolution float64) int {
	return len(p.free[keyFor(width, height, resolution)])
}

// Acquire returns a cleared target of the requested dimensions, reusing
// a free one when available. The caller owns the target exclusively
// until Release.
func (p *Pool) Acquire(width, height int, resolution float64) *Target {
	key := keyFor(width, height, resolution)
	list := p.free[key]

	var t *Target
	if n := len(list); n > 0 {
		t = list[n-1]
		p.free[key] = list[:n-1]
		t.Clear(0)
	} else {
		t = newTarget(width, height, resolution)
	}
	t.checkedOut = true
	return t
}

// Release returns a target to its bucket's free list. If the list is at
// capacity, the oldest free target is destroyed to make room.
//
// Releasing a target twice is a caller bug; the second release is
// ignored with a warning.
func (p *Pool) Release(t *Target) {
	if t == nil {
		return
	}
	if !t.checkedOut {
		logger().Warn("double release of render target",
			"width", t.width, "height", t.height)
		return
	}
	t.checkedOut = false

	key := keyFor(t.width, t.height, t.resolution)
	list := p.free[key]
	if len(list) >= p.cap {
		// Destroy the oldest free target, keep the most recently
		// used ones warm.
		list[0].destroy()
		copy(list, list[1:])
		list = list[:len(list)-1]
	}
	p.free[key] = append(list, t)
}

// Drain destroys every pooled target. Used on full teardown. Destroy
// failures are absorbed per target so teardown always completes.
func (p *Pool) Drain() {
	for key, list := range p.free {
		for _, t := range list {
			t.destroy()
		}
		delete(p.free, key)
	}
}
