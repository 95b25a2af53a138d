package regionfx

// PathElement represents a single element in a fill path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path is the draw-command representation of traced region geometry,
// suitable for handing to a GPU path renderer. Region shapes only ever
// produce straight segments (ellipses are discretized by the tracer), so
// the element set is move/line/close.
type Path struct {
	elements []PathElement
	start    Point
	current  Point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// Close closes the current subpath by drawing a line to the start point.
func (p *Path) Close() {
	p.elements = append(p.elements, Close{})
	p.current = p.start
}

// Ring appends a closed polygon ring to the path.
// Rings with fewer than three points are ignored.
func (p *Path) Ring(points []Point) {
	if len(points) < 3 {
		return
	}
	p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// IsEmpty reports whether the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Transform returns a copy of the path with every point transformed by m.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case Close:
			result.Close()
		}
	}
	return result
}

// Rings converts the path back into closed polygon rings.
func (p *Path) Rings() [][]Point {
	var rings [][]Point
	var ring []Point
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
			ring = []Point{e.Point}
		case LineTo:
			ring = append(ring, e.Point)
		case Close:
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
			ring = nil
		}
	}
	if len(ring) >= 3 {
		rings = append(rings, ring)
	}
	return rings
}
