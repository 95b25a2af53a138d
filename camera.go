package regionfx

import "math"

// alignEpsilon is the tolerance used when comparing two aligned camera
// matrices. Translations are snapped to whole device pixels, so any real
// camera motion moves the matrix by at least one pixel; the epsilon only
// absorbs floating point noise in the scale terms.
const alignEpsilon = 1e-9

// Viewport describes the output surface masks are built for.
type Viewport struct {
	// Width and Height are the viewport size in CSS pixels.
	Width, Height int

	// Resolution is the device-pixel ratio. A resolution of 2 means each
	// CSS pixel maps to a 2x2 block of device pixels.
	Resolution float64

	// MaxTextureSize is the renderer's maximum single-dimension texture
	// size. Zero means unlimited. Mask and SDF resolutions are capped to
	// this limit rather than failing.
	MaxTextureSize int
}

// IsValid reports whether the viewport has drawable extent.
func (v Viewport) IsValid() bool {
	return v.Width > 0 && v.Height > 0 && v.Resolution > 0
}

// DeviceWidth returns the viewport width in device pixels.
func (v Viewport) DeviceWidth() int {
	return int(math.Ceil(float64(v.Width) * v.Resolution))
}

// DeviceHeight returns the viewport height in device pixels.
func (v Viewport) DeviceHeight() int {
	return int(math.Ceil(float64(v.Height) * v.Resolution))
}

// ClampTextureDim caps a requested texture dimension to the renderer limit.
// Returns the dimension unchanged when no limit is set.
func (v Viewport) ClampTextureDim(dim int) int {
	if v.MaxTextureSize > 0 && dim > v.MaxTextureSize {
		return v.MaxTextureSize
	}
	return dim
}

// Camera describes the continuous (unsnapped) view over the world:
// the world point at the viewport center and a uniform zoom factor.
type Camera struct {
	Position Point
	Zoom     float64
}

// Aligned produces the pixel-snapped world-to-device transform for the
// given viewport. The translation is rounded to whole device pixels so
// that two masks built in different frames under the same logical view
// rasterize bit-identically; otherwise fades and cutouts shimmer by
// sub-pixel amounts during a static camera.
//
// Every component that rasterizes must consume this matrix, never the raw
// camera transform.
func (c Camera) Aligned(vp Viewport) Matrix {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	scale := zoom * vp.Resolution

	// Place the camera position at the viewport center, in device pixels.
	tx := float64(vp.DeviceWidth())/2 - c.Position.X*scale
	ty := float64(vp.DeviceHeight())/2 - c.Position.Y*scale

	return Matrix{
		A: scale, B: 0, C: math.Round(tx),
		D: 0, E: scale, F: math.Round(ty),
	}
}

// AlignedChanged reports whether two aligned matrices differ enough to
// require a mask rebuild.
func AlignedChanged(old, now Matrix) bool {
	return !old.Approx(now, alignEpsilon)
}
