package regionfx

// BuildRegionMask rasterizes a region's traced geometry into a
// screen-space alpha mask sized to the viewport: 255 where any non-hole
// shape covers the pixel and no hole shape does, else 0.
//
// All non-hole shapes render with additive fill first, then all hole
// shapes erase on top, so shape order never affects coverage. A region
// with zero drawable shapes yields an all-transparent mask: its effects
// are fully suppressed, not a no-op.
func BuildRegionMask(region *Region, aligned Matrix, vp Viewport) *Mask {
	w := vp.ClampTextureDim(vp.DeviceWidth())
	h := vp.ClampTextureDim(vp.DeviceHeight())
	mask := NewMask(w, h)

	trace := TraceShapes(region.Shapes, aligned)
	if trace.IsEmpty() {
		return mask
	}

	mask.FillRings(transformRings(trace.Fills, aligned))
	mask.EraseRings(transformRings(trace.Holes, aligned))
	return mask
}

// BuildSceneMask rasterizes the allow-mask for scene-wide effects: the
// entire visible scene rectangle, minus every suppression region's
// shapes, with suppression-region holes added back so a hole in a
// suppression region still passes effects through.
func BuildSceneMask(sceneRect Rect, suppress []*Region, aligned Matrix, vp Viewport) *Mask {
	w := vp.ClampTextureDim(vp.DeviceWidth())
	h := vp.ClampTextureDim(vp.DeviceHeight())
	mask := NewMask(w, h)

	if sceneRect.IsEmpty() {
		return mask
	}

	sceneRing := []Point{
		sceneRect.Min,
		Pt(sceneRect.Max.X, sceneRect.Min.Y),
		sceneRect.Max,
		Pt(sceneRect.Min.X, sceneRect.Max.Y),
	}
	sceneRings := transformRings([][]Point{sceneRing}, aligned)
	mask.FillRings(sceneRings)

	var sceneCoverage *Mask
	for _, region := range suppress {
		trace := TraceShapes(region.Shapes, aligned)
		mask.EraseRings(transformRings(trace.Fills, aligned))
		if len(trace.Holes) == 0 {
			continue
		}
		// A hole can extend past the scene rectangle. Clip its re-add
		// so the mask stays a subset of the starting scene fill.
		if sceneCoverage == nil {
			sceneCoverage = NewMask(w, h)
			sceneCoverage.FillRings(sceneRings)
		}
		holes := NewMask(w, h)
		holes.FillRings(transformRings(trace.Holes, aligned))
		holes.Intersect(sceneCoverage)
		mask.Union(holes)
	}
	return mask
}
