package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestPoolReuse(t *testing.T) {
	p := NewPool()

	a := p.Acquire(64, 64, 1)
	a.Clear(255)
	p.Release(a)

	b := p.Acquire(64, 64, 1)
	if b != a {
		t.Error("expected the released target to be reused")
	}
	for i, v := range b.Pixels() {
		if v != 0 {
			t.Fatalf("reused target pixel %d not cleared: %d", i, v)
		}
	}
}

func TestPoolBucketsByParams(t *testing.T) {
	p := NewPool()

	a := p.Acquire(64, 64, 1)
	p.Release(a)

	if got := p.Acquire(64, 64, 2); got == a {
		t.Error("target reused across different resolutions")
	}
	if got := p.Acquire(32, 64, 1); got == a {
		t.Error("target reused across different dimensions")
	}
}

func TestPoolCap(t *testing.T) {
	p := NewPoolWithCap(2)

	targets := make([]*Target, 5)
	for i := range targets {
		targets[i] = p.Acquire(16, 16, 1)
	}
	for _, tg := range targets {
		p.Release(tg)
	}

	if got := p.FreeLen(16, 16, 1); got != 2 {
		t.Errorf("free list length: expected 2, got %d", got)
	}
	// The two most recently released targets survive, returned in
	// last-in-first-out order.
	if got := p.Acquire(16, 16, 1); got != targets[4] {
		t.Error("expected the last released target first")
	}
	if got := p.Acquire(16, 16, 1); got != targets[3] {
		t.Error("expected the second most recently released target next")
	}
}

func TestPoolDoubleRelease(t *testing.T) {
	p := NewPool()
	a := p.Acquire(8, 8, 1)
	p.Release(a)
	p.Release(a) // ignored

	if got := p.FreeLen(8, 8, 1); got != 1 {
		t.Errorf("free list length after double release: expected 1, got %d", got)
	}
}

func TestPoolReleaseNil(t *testing.T) {
	p := NewPool()
	p.Release(nil) // no panic
}

func TestPoolDrain(t *testing.T) {
	p := NewPool()
	p.Release(p.Acquire(8, 8, 1))
	p.Release(p.Acquire(16, 16, 1))

	p.Drain()

	if got := p.FreeLen(8, 8, 1); got != 0 {
		t.Errorf("free list after drain: expected 0, got %d", got)
	}
	if got := p.FreeLen(16, 16, 1); got != 0 {
		t.Errorf("free list after drain: expected 0, got %d", got)
	}
}

func TestTargetAlphaSharesMemory(t *testing.T) {
	p := NewPool()
	tg := p.Acquire(4, 4, 1)
	defer p.Release(tg)

	img := tg.Alpha()
	img.Pix[5] = 200
	if got := tg.Pixels()[5]; got != 200 {
		t.Errorf("alpha view does not share memory: got %d", got)
	}
	if img.Stride != 4 {
		t.Errorf("alpha stride: expected 4, got %d", img.Stride)
	}
}

func TestTargetCopySizeMismatch(t *testing.T) {
	p := NewPool()
	tg := p.Acquire(4, 4, 1)
	defer p.Release(tg)

	tg.Clear(7)
	tg.Copy(make([]uint8, 3)) // wrong size, ignored
	if got := tg.Pixels()[0]; got != 7 {
		t.Errorf("mismatched copy modified pixels: got %d", got)
	}

	src := make([]uint8, 16)
	src[0] = 42
	tg.Copy(src)
	if got := tg.Pixels()[0]; got != 42 {
		t.Errorf("copy: expected 42, got %d", got)
	}
}

type fakeTexture struct {
	width, height uint32
	uploads       int
	destroyed     bool
	last          []byte
}

func (f *fakeTexture) Width() uint32  { return f.width }
func (f *fakeTexture) Height() uint32 { return f.height }
func (f *fakeTexture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatR8Unorm
}
func (f *fakeTexture) Upload(data []byte) error {
	f.uploads++
	f.last = append(f.last[:0], data...)
	return nil
}
func (f *fakeTexture) Destroy() { f.destroyed = true }

func TestTargetSyncUploads(t *testing.T) {
	p := NewPool()
	tg := p.Acquire(2, 2, 1)

	tex := &fakeTexture{width: 2, height: 2}
	tg.AttachTexture(tex)
	tg.Clear(9)

	if err := tg.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if tex.uploads != 1 {
		t.Errorf("uploads: expected 1, got %d", tex.uploads)
	}
	if tex.last[3] != 9 {
		t.Errorf("uploaded byte: expected 9, got %d", tex.last[3])
	}

	// Replacing the texture destroys the old one.
	tg.AttachTexture(&fakeTexture{width: 2, height: 2})
	if !tex.destroyed {
		t.Error("expected the replaced texture to be destroyed")
	}
	p.Release(tg)
}
