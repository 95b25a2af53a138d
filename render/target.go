package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Target is a render texture: a CPU-addressable single-channel pixel
// buffer in device-pixel space, optionally mirrored by a GPU texture
// attached by the host.
//
// Targets are created through a Pool and must be released back to it.
// A target must never be read after release.
type Target struct {
	width      int
	height     int
	resolution float64
	format     gputypes.TextureFormat
	pix        []uint8

	texture    Texture
	checkedOut bool
	destroyed  bool
}

// newTarget allocates a CPU-backed target. Internal: use Pool.Acquire.
func newTarget(width, height int, resolution float64) *Target {
	return &Target{
		width:      width,
		height:     height,
		resolution: resolution,
		format:     gputypes.TextureFormatR8Unorm,
		pix:        make([]uint8, width*height),
	}
}

// Width returns the target width in device pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in device pixels.
func (t *Target) Height() int { return t.height }

// Resolution returns the device-pixel ratio the target was built for.
func (t *Target) Resolution() float64 { return t.resolution }

// Format returns the texture pixel format (R8Unorm for masks).
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// Pixels returns the raw single-channel pixel data.
func (t *Target) Pixels() []uint8 { return t.pix }

// Alpha wraps the pixel data as an *image.Alpha sharing memory.
func (t *Target) Alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    t.pix,
		Stride: t.width,
		Rect:   image.Rect(0, 0, t.width, t.height),
	}
}

// Clear fills the target with a single value.
func (t *Target) Clear(value uint8) {
	for i := range t.pix {
		t.pix[i] = value
	}
}

// Copy overwrites the target's pixels from src, which must have length
// width*height. Extra or missing bytes are a programming error and are
// ignored with a warning rather than panicking mid-frame.
func (t *Target) Copy(src []uint8) {
	if len(src) != len(t.pix) {
		logger().Warn("target copy size mismatch",
			"want", len(t.pix), "got", len(src))
		return
	}
	copy(t.pix, src)
}

// AttachTexture associates a host GPU texture with the target. Any
// previously attached texture is destroyed first.
func (t *Target) AttachTexture(tex Texture) {
	if t.texture != nil && t.texture != tex {
		destroyTexture(t.texture)
	}
	t.texture = tex
}

// Texture returns the attached GPU texture, or nil for CPU-only targets.
func (t *Target) Texture() Texture { return t.texture }

// Sync uploads the CPU pixels into the attached GPU texture, if any.
func (t *Target) Sync() error {
	if t.texture == nil {
		return nil
	}
	return t.texture.Upload(t.pix)
}

// destroy releases the target's resources. Internal: the pool calls this
// when a free list overflows or drains.
func (t *Target) destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.texture != nil {
		destroyTexture(t.texture)
		t.texture = nil
	}
	t.pix = nil
}

// destroyTexture destroys a texture, absorbing panics from host
// backends so one failed destroy cannot abort the rest of teardown.
func destroyTexture(tex Texture) {
	defer func() {
		if r := recover(); r != nil {
			logger().Warn("texture destroy failed", "panic", r)
		}
	}()
	tex.Destroy()
}
