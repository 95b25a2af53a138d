package regionfx

import "math"

// DefaultMaxFadeEdges caps the live boundary edge list handed to
// shaders. Uniform arrays have a fixed size; rings denser than the
// budget are decimated proportionally rather than truncated.
const DefaultMaxFadeEdges = 128

// lseTemperatureFactor scales the fade band width into the log-sum-exp
// temperature for percent-mode polygon fades.
const lseTemperatureFactor = 0.25

// FadeEdge is one world-space boundary segment of a polygon region.
type FadeEdge struct {
	A, B Point
}

// BoundaryEdges extracts the world-space boundary edge list of a
// region's traced geometry, hole boundaries included. If the total edge
// count exceeds max, every ring is decimated by the same stride so the
// budget holds while coverage stays uniform around the boundary.
func BoundaryEdges(trace Trace, max int) []FadeEdge {
	if max <= 0 {
		max = DefaultMaxFadeEdges
	}
	rings := make([][]Point, 0, len(trace.Fills)+len(trace.Holes))
	rings = append(rings, trace.Fills...)
	rings = append(rings, trace.Holes...)

	total := 0
	for _, ring := range rings {
		total += len(ring)
	}
	stride := 1
	if total > max {
		stride = (total + max - 1) / max
	}

	var edges []FadeEdge
	for _, ring := range rings {
		n := len(ring)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i += stride {
			j := i + stride
			if j >= n {
				j = 0
			}
			edges = append(edges, FadeEdge{A: ring[i], B: ring[j]})
			if j == 0 {
				break
			}
		}
	}
	return edges
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq == 0 {
		return ap.Length()
	}
	t := ap.Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(a.Add(ab.Mul(t)))
}

// minEdgeDistance returns the hard minimum distance from p to the
// boundary edge list.
func minEdgeDistance(p Point, edges []FadeEdge) float64 {
	d := math.Inf(1)
	for _, e := range edges {
		if sd := segmentDistance(p, e.A, e.B); sd < d {
			d = sd
		}
	}
	return d
}

// smoothMinEdgeDistance combines per-edge distances with a numerically
// stable log-sum-exp smooth minimum. Where two edges are nearly
// equidistant (near a vertex) the result blends continuously instead of
// creasing. The temperature controls the blend radius; a non-positive
// temperature degenerates to the hard minimum.
func smoothMinEdgeDistance(p Point, edges []FadeEdge, temperature float64) float64 {
	if temperature <= 0 || len(edges) == 0 {
		return minEdgeDistance(p, edges)
	}
	// Subtract the minimum before exponentiating so the largest term
	// is exp(0); distant edges underflow harmlessly to zero.
	m := minEdgeDistance(p, edges)
	sum := 0.0
	for _, e := range edges {
		d := segmentDistance(p, e.A, e.B)
		sum += math.Exp(-(d - m) / temperature)
	}
	return m - temperature*math.Log(sum)
}
