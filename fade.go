package regionfx

import (
	"fmt"
	"math"
)

// FadeMode selects how a region's edge fade width is expressed.
type FadeMode uint8

const (
	// FadeOff disables edge fading.
	FadeOff FadeMode = iota

	// FadePercent expresses the fade band as a fraction of the
	// region's inradius.
	FadePercent

	// FadeAbsolute expresses the fade band in world units.
	FadeAbsolute
)

// FadeConfig is a region's fade request, supplied by the host effect
// configuration. Fraction and Width are mutually exclusive: Fraction
// applies in FadePercent mode, Width in FadeAbsolute mode.
type FadeConfig struct {
	Mode     FadeMode
	Fraction float64 // 0..1, percent of inradius
	Width    float64 // world units
}

// FadeShape tags the evaluation strategy of a FadeDescriptor.
type FadeShape uint8

const (
	// FadeShapeNone means no fade: the descriptor evaluates to 1
	// everywhere.
	FadeShapeNone FadeShape = iota

	// FadeShapeRect evaluates analytically against a single rotated
	// rectangle.
	FadeShapeRect

	// FadeShapeEllipse evaluates analytically against a single rotated
	// ellipse.
	FadeShapeEllipse

	// FadeShapePolygonSDF samples a cached signed distance field.
	FadeShapePolygonSDF

	// FadeShapePolygonEdges evaluates a live boundary edge list.
	FadeShapePolygonEdges
)

// FadeDescriptor carries everything an effect shader (or the CPU
// evaluator Fade) needs for per-pixel edge fading: the shape-mode tag
// plus either analytic parameters, an SDF texture with its decode
// parameters, or a boundary edge list.
//
// Fade values are only meaningful where the region mask is non-zero;
// consumers multiply mask coverage by fade, so the descriptor never
// needs an inside/outside sign of its own.
type FadeDescriptor struct {
	Shape FadeShape
	Mode  FadeMode

	// Band is the resolved fade band width in world units.
	Band float64

	// Rect/ellipse parameters: center, half extents and rotation.
	Center   Point
	Half     Point
	Rotation float64

	// SDF is set for FadeShapePolygonSDF.
	SDF *SDFEntry

	// Edges is set for FadeShapePolygonEdges.
	Edges []FadeEdge
}

// NoFade is the descriptor used when fading is disabled.
var NoFade = FadeDescriptor{Shape: FadeShapeNone}

// NewFadeDescriptor builds the fade descriptor for a region.
//
// Exactly one non-hole rectangle or ellipse gets a purely analytic
// descriptor. Polygon regions get an SDF-backed descriptor in percent
// mode (the entry must be supplied by the caller, usually from the
// SDFCache) and a live edge list in absolute mode. Mixed multi-shape
// regions fall back to the edge list in both modes.
func NewFadeDescriptor(region *Region, cfg FadeConfig, sdf *SDFEntry, maxEdges int) (FadeDescriptor, error) {
	if cfg.Mode == FadeOff {
		return NoFade, nil
	}

	if s, ok := soleShape(region); ok {
		switch s.Type {
		case ShapeRectangle:
			half := Pt(s.W/2, s.H/2)
			return FadeDescriptor{
				Shape:    FadeShapeRect,
				Mode:     cfg.Mode,
				Band:     resolveBand(cfg, math.Min(half.X, half.Y)),
				Center:   s.Centroid(),
				Half:     half,
				Rotation: s.Rotation,
			}, nil
		case ShapeEllipse:
			half := Pt(s.RX, s.RY)
			return FadeDescriptor{
				Shape:    FadeShapeEllipse,
				Mode:     cfg.Mode,
				Band:     resolveBand(cfg, math.Min(half.X, half.Y)),
				Center:   s.Centroid(),
				Half:     half,
				Rotation: s.Rotation,
			}, nil
		}
	}

	if cfg.Mode == FadePercent {
		if sdf == nil {
			return NoFade, fmt.Errorf("regionfx: percent fade for region %q requires a distance field", region.ID)
		}
		return FadeDescriptor{
			Shape: FadeShapePolygonSDF,
			Mode:  cfg.Mode,
			Band:  resolveBand(cfg, sdf.Inradius),
			SDF:   sdf,
		}, nil
	}

	trace := TraceShapes(region.Shapes, Identity())
	return FadeDescriptor{
		Shape: FadeShapePolygonEdges,
		Mode:  cfg.Mode,
		Band:  cfg.Width,
		Edges: BoundaryEdges(trace, maxEdges),
	}, nil
}

// soleShape returns the region's only shape if it is a single non-hole
// rectangle or ellipse, the precondition for analytic fading.
func soleShape(region *Region) (Shape, bool) {
	if len(region.Shapes) != 1 {
		return Shape{}, false
	}
	s := region.Shapes[0]
	if s.Hole || s.IsDegenerate() {
		return Shape{}, false
	}
	if s.Type != ShapeRectangle && s.Type != ShapeEllipse {
		return Shape{}, false
	}
	return s, true
}

// resolveBand converts a fade config into a world-unit band width given
// the shape's inradius. A percent fade spans the stated fraction of the
// inscribed diameter, so a 10% fade on a 100-unit square is a 10-unit
// band.
func resolveBand(cfg FadeConfig, inradius float64) float64 {
	if cfg.Mode == FadeAbsolute {
		return cfg.Width
	}
	f := cfg.Fraction
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return f * 2 * inradius
}

// Fade evaluates the descriptor at a world point, returning a value in
// [0,1]: 0 at the region edge, ramping linearly to 1 a full band width
// inside. This is the CPU reference for the shader-side expression.
func (d *FadeDescriptor) Fade(p Point) float64 {
	if d.Shape == FadeShapeNone || d.Band <= 0 {
		return 1
	}
	var depth float64
	switch d.Shape {
	case FadeShapeRect:
		depth = d.rectDepth(p)
	case FadeShapeEllipse:
		depth = d.ellipseDepth(p)
	case FadeShapePolygonSDF:
		depth = -d.SDF.Distance(p)
	case FadeShapePolygonEdges:
		if d.Mode == FadePercent {
			depth = smoothMinEdgeDistance(p, d.Edges, d.Band*lseTemperatureFactor)
		} else {
			depth = minEdgeDistance(p, d.Edges)
		}
	}
	return clamp01(depth / d.Band)
}

// rectDepth returns the interior depth of p in the descriptor's rotated
// rectangle: positive inside, negative outside. In percent mode the two
// axis-aligned distances combine through a smooth minimum whose radius
// equals the band width, so corners fade smoothly instead of mitering.
func (d *FadeDescriptor) rectDepth(p Point) float64 {
	q := p.Sub(d.Center).Rotate(-d.Rotation)
	ax := d.Half.X - math.Abs(q.X)
	ay := d.Half.Y - math.Abs(q.Y)
	if ax < 0 || ay < 0 {
		// Outside: fold |q|-half into one scalar via max/length.
		dx := math.Max(-ax, 0)
		dy := math.Max(-ay, 0)
		return -math.Hypot(dx, dy)
	}
	if d.Mode == FadePercent {
		return smoothMin(ax, ay, d.Band)
	}
	return math.Min(ax, ay)
}

// ellipseDepth approximates the interior depth of p in the descriptor's
// rotated ellipse via the normalized-radius ratio scaled by the larger
// semi-axis.
func (d *FadeDescriptor) ellipseDepth(p Point) float64 {
	q := p.Sub(d.Center).Rotate(-d.Rotation)
	r := math.Hypot(q.X/d.Half.X, q.Y/d.Half.Y)
	return (1 - r) * math.Max(d.Half.X, d.Half.Y)
}

// smoothMin is the polynomial smooth minimum with smoothing radius k.
func smoothMin(a, b, k float64) float64 {
	if k <= 0 {
		return math.Min(a, b)
	}
	h := clamp01(0.5 + 0.5*(b-a)/k)
	return b*(1-h) + a*h - k*h*(1-h)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
