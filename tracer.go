package regionfx

import "math"

// Ellipse discretization limits. Segment count scales with the
// screen-space circumference so zoomed-in ellipses stay smooth without
// wasting segments when zoomed out.
const (
	minEllipseSegments = 64
	maxEllipseSegments = 512
)

// Trace is the tracer's output: the region's fill and hole geometry as
// closed world-space rings. Rings convert to a GPU draw-command path via
// FillPath/HolePath, or rasterize on the CPU through the mask builders.
type Trace struct {
	Fills [][]Point
	Holes [][]Point
}

// IsEmpty reports whether the trace has no drawable fill geometry.
func (t Trace) IsEmpty() bool {
	return len(t.Fills) == 0
}

// FillPath returns the non-hole geometry as a draw-command path.
func (t Trace) FillPath() *Path {
	p := NewPath()
	for _, ring := range t.Fills {
		p.Ring(ring)
	}
	return p
}

// HolePath returns the hole geometry as a draw-command path.
func (t Trace) HolePath() *Path {
	p := NewPath()
	for _, ring := range t.Holes {
		p.Ring(ring)
	}
	return p
}

// TraceShapes converts a region's shape list into fillable geometry.
// Rotation is applied by rotating each shape's defining points around its
// own centroid. The world-to-screen matrix is consulted only for ellipse
// segment counts (screen-space adaptivity); the emitted rings stay in
// world units. Degenerate shapes contribute an empty fill.
func TraceShapes(shapes []Shape, worldToScreen Matrix) Trace {
	var t Trace
	for _, s := range shapes {
		ring := TraceShape(s, worldToScreen)
		if len(ring) < 3 {
			continue
		}
		if s.Hole {
			t.Holes = append(t.Holes, ring)
		} else {
			t.Fills = append(t.Fills, ring)
		}
	}
	return t
}

// TraceShape converts a single shape into a closed world-space ring.
// Returns nil for degenerate shapes.
func TraceShape(s Shape, worldToScreen Matrix) []Point {
	if s.IsDegenerate() {
		return nil
	}
	switch s.Type {
	case ShapeRectangle:
		return traceRectangle(s)
	case ShapeEllipse:
		return traceEllipse(s, worldToScreen)
	case ShapePolygon:
		return tracePolygon(s)
	}
	return nil
}

func traceRectangle(s Shape) []Point {
	ring := []Point{
		Pt(s.X, s.Y),
		Pt(s.X+s.W, s.Y),
		Pt(s.X+s.W, s.Y+s.H),
		Pt(s.X, s.Y+s.H),
	}
	if s.Rotation != 0 {
		c := s.Centroid()
		for i := range ring {
			ring[i] = ring[i].RotateAround(c, s.Rotation)
		}
	}
	return ring
}

func traceEllipse(s Shape, worldToScreen Matrix) []Point {
	n := ellipseSegments(s.RX, s.RY, worldToScreen)
	ring := make([]Point, n)
	cos, sin := math.Cos(s.Rotation), math.Sin(s.Rotation)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := s.RX * math.Cos(a)
		y := s.RY * math.Sin(a)
		ring[i] = Pt(
			s.CX+x*cos-y*sin,
			s.CY+x*sin+y*cos,
		)
	}
	return ring
}

func tracePolygon(s Shape) []Point {
	ring := make([]Point, len(s.Points))
	copy(ring, s.Points)
	if s.Rotation != 0 {
		c := s.Centroid()
		for i := range ring {
			ring[i] = ring[i].RotateAround(c, s.Rotation)
		}
	}
	return ring
}

// ellipseSegments chooses the segment count from the screen-space scaled
// radii, stepping between minEllipseSegments and maxEllipseSegments in
// proportion to the approximate screen-space circumference.
func ellipseSegments(rx, ry float64, worldToScreen Matrix) int {
	// Uniform-scale approximation of the matrix is enough here; the
	// aligned camera matrix never shears.
	scale := math.Hypot(worldToScreen.A, worldToScreen.D)
	if scale <= 0 {
		scale = 1
	}
	srx := rx * scale
	sry := ry * scale

	// Ramanujan's circumference approximation.
	h := (srx - sry) * (srx - sry) / ((srx + sry) * (srx + sry))
	circumference := math.Pi * (srx + sry) * (1 + 3*h/(10+math.Sqrt(4-3*h)))

	// Roughly one segment per four screen pixels of arc.
	n := int(math.Ceil(circumference / 4))
	if n < minEllipseSegments {
		return minEllipseSegments
	}
	if n > maxEllipseSegments {
		return maxEllipseSegments
	}
	return n
}
