// Package regionfx implements the mask and distance-field pipeline that
// region-scoped and scene-scoped visual effects on a 2D tabletop canvas
// depend on.
//
// # Overview
//
// A host application owns regions (ordered lists of rectangle, ellipse and
// polygon shapes, each optionally a hole) and tokens (movable sprites).
// regionfx turns that geometry into the GPU-ready resources an effect
// renderer needs every frame:
//
//   - screen-space alpha masks (white inside the region, holes subtracted)
//   - inverse "allow" masks for scene-wide effects with suppression regions
//   - signed distance fields for proportional polygon edge fades
//   - analytic fade parameters for rectangle and ellipse regions
//   - below-token mask variants with token silhouettes cut out
//
// # Quick Start
//
//	p := regionfx.NewPipeline(regions, tokens)
//	p.SetViewport(regionfx.Viewport{Width: 1920, Height: 1080, Resolution: 1})
//	p.SetCamera(regionfx.Camera{Position: regionfx.Pt(0, 0), Zoom: 1})
//
//	// Once per displayed frame:
//	p.Tick()
//	set, ok := p.Masks("region-id", regionfx.KindFilters)
//	if ok {
//	    bindMask(set.Base)
//	}
//
// # Architecture
//
// The pipeline is a set of explicitly constructed services with no package
// level singletons:
//
//   - Public API: Pipeline, Region, Shape, Token, Camera, Mask, FadeDescriptor
//   - render/: pooled render targets and the host device integration point
//   - internal/raster: scanline polygon rasterization with hole support
//   - internal/edt: exact Euclidean distance transform
//
// # Coordinate System
//
// World coordinates use standard computer graphics conventions: origin at
// top-left, X increases right, Y increases down, angles in radians. Masks
// are built in device pixels at the current viewport resolution, using a
// camera transform whose translation is snapped to whole device pixels so
// that rebuilds under a static camera are bit-identical.
//
// # Concurrency
//
// The pipeline is single-threaded by contract: all calls happen on the
// render goroutine, driven by a once-per-frame Tick. Nothing in this
// package blocks.
package regionfx
