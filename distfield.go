package regionfx

import (
	"math"

	"github.com/vttfx/regionfx/internal/edt"
	"github.com/vttfx/regionfx/internal/raster"
	"github.com/vttfx/regionfx/render"
)

// Distance field sizing. The padded bounding box maps to a texture with
// its longer side around sdfLongSide texels, hard-capped at sdfMaxSide
// and further capped by the renderer's maximum texture dimension.
const (
	sdfPadFraction = 0.05
	sdfPadMin      = 16.0
	sdfPadMax      = 256.0
	sdfLongSide    = 768
	sdfMaxSide     = 1024
)

// SDFEntry is a built signed distance field for a polygon region,
// reusable across camera movement: the field lives in the region's own
// world-space box and only structural shape changes invalidate it.
type SDFEntry struct {
	// Texture holds the normalized field, one byte per texel.
	Texture *render.Target

	// WorldToUV maps world coordinates into [0,1] texture coordinates.
	WorldToUV Matrix

	// DecodeScale and DecodeOffset decode a normalized sample v in
	// [0,1] back to a signed world-unit distance: v*DecodeScale +
	// DecodeOffset. Negative inside the region, positive outside.
	DecodeScale  float64
	DecodeOffset float64

	// TexelSize is the world-unit size of one field texel.
	TexelSize float64

	// Inradius is the maximum interior distance found in the field,
	// used to convert a fade fraction into a world-unit band width.
	Inradius float64

	// hash fingerprints the geometry the field was built from.
	hash uint64

	width, height int
	worldToField  Matrix
}

// BuildSDF computes the signed Euclidean distance field for a region's
// geometry. Returns nil when the region has no drawable shapes.
//
// The field is exact (Felzenszwalb-Huttenlocher squared distance
// transform run on both polarities of the rasterized shape), dilated by
// one texel on the interior to remove the boundary seam, then
// normalized into 8 bits with a linear decode.
func BuildSDF(region *Region, vp Viewport, pool *render.Pool) *SDFEntry {
	bounds := region.Bounds()
	if bounds.IsEmpty() {
		return nil
	}

	// Pad outward so the field has room before it saturates.
	pad := bounds.Diagonal() * sdfPadFraction
	pad = math.Max(sdfPadMin, math.Min(sdfPadMax, pad))
	box := bounds.Pad(pad)

	// Choose a texel size targeting the long-side budget, then apply
	// the hard and renderer caps by coarsening rather than failing.
	longWorld := math.Max(box.Dx(), box.Dy())
	texel := longWorld / float64(sdfLongSide)
	maxSide := sdfMaxSide
	if capped := vp.ClampTextureDim(maxSide); capped < maxSide {
		maxSide = capped
		Logger().Warn("sdf resolution capped by renderer limit",
			"region", region.ID, "maxSide", maxSide)
	}
	minTexel := longWorld / float64(maxSide)
	if texel < minTexel {
		texel = minTexel
	}

	w := int(math.Ceil(box.Dx() / texel))
	h := int(math.Ceil(box.Dy() / texel))
	if w < 1 || h < 1 {
		return nil
	}

	worldToField := Scale(1/texel, 1/texel).Multiply(Translate(-box.Min.X, -box.Min.Y))

	// Rasterize the shape into a binary inside/outside bitmap at field
	// resolution, holes subtracted.
	trace := TraceShapes(region.Shapes, worldToField)
	if trace.IsEmpty() {
		return nil
	}
	fills := toRasterRings(transformRings(trace.Fills, worldToField))
	holes := toRasterRings(transformRings(trace.Holes, worldToField))
	inside := raster.FillBinary(w, h, fills, holes, raster.NonZero)

	// Exact signed field in texel units, then the interior dilation
	// that removes the one-texel boundary seam.
	signed := edt.SignedField(inside, w, h)
	edt.DilateInterior(signed, inside, w, h)

	// Convert to world units and find the normalization range and the
	// interior radius estimate.
	minV, maxV := math.Inf(1), math.Inf(-1)
	inradius := 0.0
	for i := range signed {
		signed[i] *= texel
		minV = math.Min(minV, signed[i])
		maxV = math.Max(maxV, signed[i])
		if d := -signed[i]; d > inradius {
			inradius = d
		}
	}
	if maxV <= minV {
		maxV = minV + 1
	}

	// Normalize into the 8-bit channel.
	target := pool.Acquire(w, h, 1)
	pix := target.Pixels()
	scale := maxV - minV
	for i, v := range signed {
		pix[i] = uint8(math.Round((v - minV) / scale * 255))
	}

	uvScale := Scale(1/float64(w), 1/float64(h))
	return &SDFEntry{
		Texture:      target,
		WorldToUV:    uvScale.Multiply(worldToField),
		DecodeScale:  scale,
		DecodeOffset: minV,
		TexelSize:    texel,
		Inradius:     inradius,
		hash:         region.GeometryHash(),
		width:        w,
		height:       h,
		worldToField: worldToField,
	}
}

// Distance samples the field at a world point with bilinear filtering
// and decodes it back to a signed world-unit distance. Points beyond the
// field's padded box clamp to the border, so the value saturates rather
// than extrapolating.
func (e *SDFEntry) Distance(p Point) float64 {
	fp := e.worldToField.TransformPoint(p)
	// Sample at texel centers.
	fx := fp.X - 0.5
	fy := fp.Y - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	s00 := e.sample(x0, y0)
	s10 := e.sample(x0+1, y0)
	s01 := e.sample(x0, y0+1)
	s11 := e.sample(x0+1, y0+1)

	top := s00 + (s10-s00)*tx
	bot := s01 + (s11-s01)*tx
	v := top + (bot-top)*ty
	return v*e.DecodeScale + e.DecodeOffset
}

// sample returns the normalized field value at a texel, clamped to the
// field borders.
func (e *SDFEntry) sample(x, y int) float64 {
	if x < 0 {
		x = 0
	}
	if x >= e.width {
		x = e.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= e.height {
		y = e.height - 1
	}
	return float64(e.Texture.Pixels()[y*e.width+x]) / 255
}

// release returns the entry's texture to the pool.
func (e *SDFEntry) release(pool *render.Pool) {
	if e.Texture != nil {
		pool.Release(e.Texture)
		e.Texture = nil
	}
}
