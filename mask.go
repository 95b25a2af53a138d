package regionfx

import (
	"bytes"
	"image"

	"github.com/vttfx/regionfx/internal/raster"
)

// Mask is a screen-space alpha buffer in device pixels: 255 where a
// region's effects apply, 0 where they are suppressed. Masks are the CPU
// compositing surface; finished masks are copied into pooled render
// targets for consumption by effect renderers.
type Mask struct {
	width  int
	height int
	data   []uint8
}

// NewMask creates an all-transparent mask with the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// maskOver wraps an existing pixel buffer as a Mask sharing memory.
// Used to composite directly over render-target pixels.
func maskOver(width, height int, data []uint8) *Mask {
	return &Mask{width: width, height: height, data: data}
}

// Width returns the mask width in device pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in device pixels.
func (m *Mask) Height() int { return m.height }

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = value
}

// Fill fills the entire mask with a value.
func (m *Mask) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Clear clears the mask (sets all values to 0).
func (m *Mask) Clear() {
	m.Fill(0)
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	clone := NewMask(m.width, m.height)
	copy(clone.data, m.data)
	return clone
}

// Equal reports whether two masks have identical dimensions and data.
func (m *Mask) Equal(o *Mask) bool {
	return m.width == o.width && m.height == o.height &&
		bytes.Equal(m.data, o.data)
}

// Union adds o's coverage to the mask. Masks with mismatched
// dimensions are left unchanged.
func (m *Mask) Union(o *Mask) {
	if m.width != o.width || m.height != o.height {
		return
	}
	for i, v := range o.data {
		if v > m.data[i] {
			m.data[i] = v
		}
	}
}

// Intersect clears every pixel not covered in o. Masks with mismatched
// dimensions are left unchanged.
func (m *Mask) Intersect(o *Mask) {
	if m.width != o.width || m.height != o.height {
		return
	}
	for i := range m.data {
		if o.data[i] == 0 {
			m.data[i] = 0
		}
	}
}

// Data returns the underlying mask data slice.
func (m *Mask) Data() []uint8 {
	return m.data
}

// Alpha wraps the mask as an *image.Alpha sharing memory.
func (m *Mask) Alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    m.data,
		Stride: m.width,
		Rect:   m.Bounds(),
	}
}

// FillRings rasterizes device-space rings into the mask additively
// (union with existing coverage).
func (m *Mask) FillRings(rings [][]Point) {
	raster.Fill(m.data, m.width, m.height, toRasterRings(rings), raster.NonZero, raster.OpSet)
}

// EraseRings rasterizes device-space rings subtractively, clearing
// coverage inside them.
func (m *Mask) EraseRings(rings [][]Point) {
	raster.Fill(m.data, m.width, m.height, toRasterRings(rings), raster.NonZero, raster.OpErase)
}

// transformRings maps world-space rings into device space.
func transformRings(rings [][]Point, worldToDevice Matrix) [][]Point {
	out := make([][]Point, len(rings))
	for i, ring := range rings {
		mapped := make([]Point, len(ring))
		for j, p := range ring {
			mapped[j] = worldToDevice.TransformPoint(p)
		}
		out[i] = mapped
	}
	return out
}

// toRasterRings converts rings into the rasterizer's point type.
func toRasterRings(rings [][]Point) [][]raster.Point {
	out := make([][]raster.Point, len(rings))
	for i, ring := range rings {
		rr := make([]raster.Point, len(ring))
		for j, p := range ring {
			rr[j] = raster.Point{X: p.X, Y: p.Y}
		}
		out[i] = rr
	}
	return out
}
