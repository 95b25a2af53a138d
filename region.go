package regionfx

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"math"
)

// ShapeType identifies the geometric primitive of a Shape.
type ShapeType uint8

const (
	// ShapeRectangle is an axis-aligned rectangle, optionally rotated
	// around its own center.
	ShapeRectangle ShapeType = iota

	// ShapeEllipse is an ellipse (or circle when RX == RY), optionally
	// rotated around its own center.
	ShapeEllipse

	// ShapePolygon is a closed polygon given by its vertex list,
	// optionally rotated around its own centroid.
	ShapePolygon
)

// Shape is one primitive in a region's shape list.
//
// Only the fields of the active Type are meaningful: X/Y/W/H for
// rectangles, CX/CY/RX/RY for ellipses, Points for polygons. Rotation is
// in radians and always applies around the shape's own centroid. A Hole
// shape subtracts from the union of non-hole shapes; the order of shapes
// never affects final coverage.
type Shape struct {
	Type ShapeType

	// Rectangle: origin and size in world units.
	X, Y, W, H float64

	// Ellipse: center and semi-axes in world units.
	CX, CY, RX, RY float64

	// Polygon: vertices in world units.
	Points []Point

	// Rotation around the shape's own centroid, in radians.
	Rotation float64

	// Hole marks the shape as subtractive.
	Hole bool
}

// RectShape creates a rectangle shape.
func RectShape(x, y, w, h, rotation float64) Shape {
	return Shape{Type: ShapeRectangle, X: x, Y: y, W: w, H: h, Rotation: rotation}
}

// EllipseShape creates an ellipse shape.
func EllipseShape(cx, cy, rx, ry, rotation float64) Shape {
	return Shape{Type: ShapeEllipse, CX: cx, CY: cy, RX: rx, RY: ry, Rotation: rotation}
}

// PolygonShape creates a polygon shape from its vertex list.
func PolygonShape(points []Point, rotation float64) Shape {
	return Shape{Type: ShapePolygon, Points: points, Rotation: rotation}
}

// Centroid returns the rotation pivot of the shape.
// For polygons this is the vertex average, matching how hosts report
// polygon rotation handles.
func (s Shape) Centroid() Point {
	switch s.Type {
	case ShapeRectangle:
		return Pt(s.X+s.W/2, s.Y+s.H/2)
	case ShapeEllipse:
		return Pt(s.CX, s.CY)
	case ShapePolygon:
		if len(s.Points) == 0 {
			return Point{}
		}
		var sum Point
		for _, p := range s.Points {
			sum = sum.Add(p)
		}
		return sum.Mul(1 / float64(len(s.Points)))
	}
	return Point{}
}

// IsDegenerate reports whether the shape has zero or near-zero extent.
// Degenerate shapes contribute an empty fill instead of crashing the
// tracer.
func (s Shape) IsDegenerate() bool {
	const minExtent = 1e-9
	switch s.Type {
	case ShapeRectangle:
		return s.W < minExtent || s.H < minExtent
	case ShapeEllipse:
		return s.RX < minExtent || s.RY < minExtent
	case ShapePolygon:
		if len(s.Points) < 3 {
			return true
		}
		b := boundsOf(s.Points)
		return b.Dx() < minExtent || b.Dy() < minExtent
	}
	return true
}

// Bounds returns the world-space bounding box of the shape, rotation
// applied.
func (s Shape) Bounds() Rect {
	if s.IsDegenerate() {
		return Rect{}
	}
	switch s.Type {
	case ShapeRectangle:
		r := RectFromSize(s.X, s.Y, s.W, s.H)
		if s.Rotation == 0 {
			return r
		}
		c := s.Centroid()
		corners := []Point{
			r.Min.RotateAround(c, s.Rotation),
			Pt(r.Max.X, r.Min.Y).RotateAround(c, s.Rotation),
			r.Max.RotateAround(c, s.Rotation),
			Pt(r.Min.X, r.Max.Y).RotateAround(c, s.Rotation),
		}
		return boundsOf(corners)
	case ShapeEllipse:
		if s.Rotation == 0 {
			return Rect{
				Min: Pt(s.CX-s.RX, s.CY-s.RY),
				Max: Pt(s.CX+s.RX, s.CY+s.RY),
			}
		}
		// Extent of a rotated ellipse along each axis.
		cos, sin := math.Cos(s.Rotation), math.Sin(s.Rotation)
		ex := math.Hypot(s.RX*cos, s.RY*sin)
		ey := math.Hypot(s.RX*sin, s.RY*cos)
		return Rect{
			Min: Pt(s.CX-ex, s.CY-ey),
			Max: Pt(s.CX+ex, s.CY+ey),
		}
	case ShapePolygon:
		if s.Rotation == 0 {
			return boundsOf(s.Points)
		}
		c := s.Centroid()
		rotated := make([]Point, len(s.Points))
		for i, p := range s.Points {
			rotated[i] = p.RotateAround(c, s.Rotation)
		}
		return boundsOf(rotated)
	}
	return Rect{}
}

// GeometryHash returns a fingerprint of the shape's structure: type,
// dimensions, points, rotation and hole flag. The hash deliberately
// excludes any camera state, so pure camera motion never invalidates
// geometry-keyed caches.
func (s Shape) GeometryHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}

	h.Write([]byte{byte(s.Type)})
	if s.Hole {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	writeF(s.Rotation)
	switch s.Type {
	case ShapeRectangle:
		writeF(s.X)
		writeF(s.Y)
		writeF(s.W)
		writeF(s.H)
	case ShapeEllipse:
		writeF(s.CX)
		writeF(s.CY)
		writeF(s.RX)
		writeF(s.RY)
	case ShapePolygon:
		for _, p := range s.Points {
			writeF(p.X)
			writeF(p.Y)
		}
	}
	return h.Sum64()
}

// GeometryHash combines the geometry hashes of a shape list.
func GeometryHash(shapes []Shape) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, s := range shapes {
		binary.LittleEndian.PutUint64(buf[:], s.GeometryHash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

// ElevationRange is a closed interval of elevations. Either bound may be
// NaN or infinite, meaning that side is unbounded.
type ElevationRange struct {
	Bottom, Top float64
}

// OpenElevation returns a range with both bounds open.
func OpenElevation() ElevationRange {
	return ElevationRange{Bottom: math.Inf(-1), Top: math.Inf(1)}
}

// Contains reports whether e lies inside the range. Open (NaN or
// infinite) bounds do not constrain.
func (r ElevationRange) Contains(e float64) bool {
	if !math.IsNaN(r.Bottom) && e < r.Bottom {
		return false
	}
	if !math.IsNaN(r.Top) && e > r.Top {
		return false
	}
	return true
}

// GateMode selects how a region's visibility gate chooses relevant tokens.
type GateMode uint8

const (
	// GateNone disables token-based gating.
	GateNone GateMode = iota

	// GatePOV gates on the viewing user's controlled tokens.
	GatePOV

	// GateTargets gates on an explicit token id allow-list.
	GateTargets
)

// EventGateMode selects how enter/exit region events latch visibility.
type EventGateMode uint8

const (
	// EventNone ignores enter/exit events.
	EventNone EventGateMode = iota

	// EventEnter shows the effect once latched on by an enter event; it
	// is never auto-hidden by geometry alone afterwards.
	EventEnter

	// EventEnterExit shows the effect exactly while the latch is set:
	// on while any gating token is inside the region, off when none are.
	EventEnterExit

	// EventExitOnly shows the effect until an exit event clears the
	// latch.
	EventExitOnly
)

// GateConfig is a region's visibility gate configuration.
type GateConfig struct {
	Mode GateMode

	// Targets is the token id/uuid allow-list for GateTargets mode.
	Targets []string

	// GMAlwaysVisible makes the region pass unconditionally for
	// privileged viewers.
	GMAlwaysVisible bool

	// EventMode selects enter/exit event latching.
	EventMode EventGateMode
}

// Region is a read-only snapshot of a host region, pulled at rebuild time.
type Region struct {
	// ID is a stable identifier assigned by the host.
	ID string

	// Generation is incremented by the host on every shape edit. It
	// drives O(1) invalidation of geometry-keyed caches.
	Generation uint64

	// Shapes is the ordered shape list. Order does not affect coverage:
	// the result is always union(non-holes) minus union(holes).
	Shapes []Shape

	// Elevation is the region's elevation window.
	Elevation ElevationRange

	// Gate is the visibility gate configuration.
	Gate GateConfig

	// SuppressScene marks the region as a suppression zone: scene-wide
	// effects are masked out inside it.
	SuppressScene bool
}

// Bounds returns the union of the region's non-hole shape bounds.
func (r *Region) Bounds() Rect {
	var b Rect
	for _, s := range r.Shapes {
		if s.Hole || s.IsDegenerate() {
			continue
		}
		b = b.Union(s.Bounds())
	}
	return b
}

// GeometryHash returns the combined geometry hash of the region's shapes.
func (r *Region) GeometryHash() uint64 {
	return GeometryHash(r.Shapes)
}

// Token is a read-only snapshot of a host token, pulled per rebuild.
type Token struct {
	// ID is a stable identifier assigned by the host.
	ID string

	// Center is the token's world position.
	Center Point

	// Width and Height are the token's world-unit footprint.
	Width, Height float64

	// Elevation is the token's current elevation.
	Elevation float64

	// Hidden marks GM-hidden tokens: they never cut out of masks.
	Hidden bool

	// Visible reports whether the current viewer can see the token.
	Visible bool

	// Controlled reports whether the current viewer controls the token.
	Controlled bool

	// Occluded marks tokens hidden behind higher-elevation overhead
	// geometry; occlusion-aware cutouts skip them.
	Occluded bool

	// HasRing marks tokens with a dynamic ring decoration, which
	// inflates the silhouette footprint.
	HasRing bool

	// Silhouette is the token's sprite alpha, if the host provides one.
	// When nil, an elliptical footprint is used instead.
	Silhouette *image.Alpha
}
