// Package raster provides scanline polygon rasterization for mask
// building. It fills closed rings into 8-bit alpha buffers with either
// non-zero or even-odd winding, and supports both additive (union) and
// erase (subtract) composition so hole shapes can be carved out of an
// already-filled mask.
//
// Rasterization is deliberately unantialiased: pixel centers are tested
// against the polygon, nothing else. Masks must be bit-identical across
// rebuilds with unchanged inputs, and edge softness is the fade
// evaluator's job, not the rasterizer's.
package raster

import (
	"math"
	"sort"
)

// Point is a 2D point in device pixels.
type Point struct {
	X, Y float64
}

// FillRule selects the winding rule used to decide interior pixels.
type FillRule int

const (
	// NonZero fills pixels whose winding number is non-zero.
	NonZero FillRule = iota

	// EvenOdd fills pixels crossed by an odd number of edges.
	EvenOdd
)

// Op selects how filled spans combine with the destination buffer.
type Op int

const (
	// OpSet writes full coverage (255) into filled spans.
	OpSet Op = iota

	// OpErase writes zero coverage into filled spans.
	OpErase
)

// Epsilon is the minimum Y extent for an edge to participate in
// scanline conversion. Horizontal edges never cross a scanline.
const Epsilon = 1e-9

// Edge is a non-horizontal line segment prepared for scanline
// conversion: normalized so YMin <= YMax, with the inverse slope
// precomputed and the original direction kept as a winding sign.
type Edge struct {
	YMin    float64
	YMax    float64
	XAtYMin float64
	DXDY    float64
	Winding int8
}

// XAtY returns the edge's X coordinate at scanline y.
func (e *Edge) XAtY(y float64) float64 {
	return e.XAtYMin + (y-e.YMin)*e.DXDY
}

// newEdge builds a normalized edge from a segment, or returns false for
// horizontal segments.
func newEdge(x0, y0, x1, y1 float64) (Edge, bool) {
	var winding int8 = 1
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		winding = -1
	}
	dy := y1 - y0
	if dy < Epsilon {
		return Edge{}, false
	}
	return Edge{
		YMin:    y0,
		YMax:    y1,
		XAtYMin: x0,
		DXDY:    (x1 - x0) / dy,
		Winding: winding,
	}, true
}

// BuildEdges converts closed rings into an edge list.
func BuildEdges(rings [][]Point) []Edge {
	var edges []Edge
	for _, ring := range rings {
		n := len(ring)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a := ring[i]
			b := ring[(i+1)%n]
			if e, ok := newEdge(a.X, a.Y, b.X, b.Y); ok {
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// crossing is an edge intersection with the current scanline.
type crossing struct {
	x       float64
	winding int8
}

// Fill rasterizes rings into an 8-bit buffer of the given dimensions.
// Pixels whose center is interior under the fill rule are combined into
// the buffer according to op. Rings outside the buffer clip naturally.
func Fill(buf []uint8, w, h int, rings [][]Point, rule FillRule, op Op) {
	edges := BuildEdges(rings)
	if len(edges) == 0 {
		return
	}

	// Restrict the scanline sweep to the edges' vertical extent.
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i := range edges {
		yMin = math.Min(yMin, edges[i].YMin)
		yMax = math.Max(yMax, edges[i].YMax)
	}
	y0 := int(math.Floor(yMin))
	y1 := int(math.Ceil(yMax))
	if y0 < 0 {
		y0 = 0
	}
	if y1 > h {
		y1 = h
	}

	crossings := make([]crossing, 0, 16)
	for y := y0; y < y1; y++ {
		cy := float64(y) + 0.5
		crossings = crossings[:0]
		for i := range edges {
			e := &edges[i]
			if cy < e.YMin || cy >= e.YMax {
				continue
			}
			crossings = append(crossings, crossing{x: e.XAtY(cy), winding: e.Winding})
		}
		if len(crossings) == 0 {
			continue
		}
		sort.Slice(crossings, func(i, j int) bool {
			return crossings[i].x < crossings[j].x
		})

		row := buf[y*w : (y+1)*w]
		fillScanline(row, w, crossings, rule, op)
	}
}

// fillScanline walks the sorted crossings and writes interior spans.
func fillScanline(row []uint8, w int, crossings []crossing, rule FillRule, op Op) {
	winding := 0
	for i := 0; i < len(crossings)-1; i++ {
		winding += int(crossings[i].winding)

		var inside bool
		if rule == NonZero {
			inside = winding != 0
		} else {
			inside = winding%2 != 0
		}
		if !inside {
			continue
		}

		x0 := crossings[i].x
		x1 := crossings[i+1].x
		// Pixel centers: x+0.5 in [x0, x1).
		px0 := int(math.Ceil(x0 - 0.5))
		px1 := int(math.Ceil(x1 - 0.5))
		if px0 < 0 {
			px0 = 0
		}
		if px1 > w {
			px1 = w
		}
		for x := px0; x < px1; x++ {
			if op == OpErase {
				row[x] = 0
			} else {
				row[x] = 255
			}
		}
	}
}

// FillBinary rasterizes fill rings minus hole rings into a boolean
// inside/outside bitmap, used as the seed image for distance transforms.
func FillBinary(w, h int, fills, holes [][]Point, rule FillRule) []bool {
	buf := make([]uint8, w*h)
	Fill(buf, w, h, fills, rule, OpSet)
	Fill(buf, w, h, holes, rule, OpErase)
	inside := make([]bool, w*h)
	for i, v := range buf {
		inside[i] = v != 0
	}
	return inside
}
