package regionfx

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// tokenRingInflation inflates a token's silhouette footprint when the
// host reports a dynamic ring decoration, so the ring area is cut out
// along with the sprite.
const tokenRingInflation = 0.125

// ComposeCutout subtracts the silhouette of every currently visible,
// non-hidden token from a base mask, producing the "render beneath
// tokens" variant. Token sprites are transformed into the same aligned
// screen space as the base mask; soft sprite edges erase
// proportionally (alpha-erase blend).
//
// When occlusionAware is set, tokens occluded by higher-elevation
// overhead geometry are excluded from the silhouette.
//
// With no eligible tokens the result is a bit-identical copy of base.
func ComposeCutout(base *Mask, tokens []Token, aligned Matrix, occlusionAware bool) *Mask {
	out := base.Clone()

	sil := silhouetteLayer(base.Width(), base.Height(), tokens, aligned, occlusionAware)
	if sil == nil {
		return out
	}

	data := out.Data()
	for i, a := range sil.Pix {
		if a == 0 {
			continue
		}
		data[i] = uint8(int(data[i]) * int(255-a) / 255)
	}
	return out
}

// ComposeTokensOnly restricts a base mask to the token-covered area:
// base minus cutout. Consumers use it for effects that render on top of
// tokens only.
func ComposeTokensOnly(base, cutout *Mask) *Mask {
	out := NewMask(base.Width(), base.Height())
	bd := base.Data()
	cd := cutout.Data()
	od := out.Data()
	for i := range od {
		if bd[i] > cd[i] {
			od[i] = bd[i] - cd[i]
		}
	}
	return out
}

// silhouetteLayer accumulates all eligible token silhouettes into one
// device-space alpha layer. Returns nil when no token contributes.
func silhouetteLayer(w, h int, tokens []Token, aligned Matrix, occlusionAware bool) *image.Alpha {
	var layer *image.Alpha
	for i := range tokens {
		tok := &tokens[i]
		if tok.Hidden || !tok.Visible {
			continue
		}
		if occlusionAware && tok.Occluded {
			continue
		}
		if tok.Width <= 0 || tok.Height <= 0 {
			continue
		}
		if layer == nil {
			layer = image.NewAlpha(image.Rect(0, 0, w, h))
		}
		drawTokenSilhouette(layer, tok, aligned)
	}
	return layer
}

// drawTokenSilhouette renders one token's silhouette into the layer.
func drawTokenSilhouette(layer *image.Alpha, tok *Token, aligned Matrix) {
	fw, fh := tok.Width, tok.Height
	if tok.HasRing {
		fw *= 1 + tokenRingInflation
		fh *= 1 + tokenRingInflation
	}

	if tok.Silhouette != nil {
		sb := tok.Silhouette.Bounds()
		sw, sh := float64(sb.Dx()), float64(sb.Dy())
		if sw <= 0 || sh <= 0 {
			return
		}
		// Sprite pixels -> world footprint -> aligned device space.
		spriteToWorld := Translate(tok.Center.X-fw/2, tok.Center.Y-fh/2).
			Multiply(Scale(fw/sw, fh/sh))
		m := aligned.Multiply(spriteToWorld)
		draw.ApproxBiLinear.Transform(layer, m.Aff3(), tok.Silhouette, sb, draw.Over, nil)
		return
	}

	// Default elliptical footprint, rasterized as a polygon ring in
	// device space so it stays pixel-aligned with the base mask.
	ring := tokenFootprintRing(tok.Center, fw/2, fh/2, aligned)
	fillAlphaRing(layer, ring)
}

// tokenFootprintRing discretizes the token's elliptical footprint
// directly into device space.
func tokenFootprintRing(center Point, rx, ry float64, aligned Matrix) []Point {
	shape := EllipseShape(center.X, center.Y, rx, ry, 0)
	ring := TraceShape(shape, aligned)
	for i := range ring {
		ring[i] = aligned.TransformPoint(ring[i])
	}
	return ring
}

// fillAlphaRing fills a device-space ring into the alpha layer at full
// opacity, leaving existing coverage in place.
func fillAlphaRing(layer *image.Alpha, ring []Point) {
	if len(ring) < 3 {
		return
	}
	b := layer.Bounds()
	scratch := NewMask(b.Dx(), b.Dy())
	scratch.FillRings([][]Point{ring})
	for i, v := range scratch.Data() {
		if v > layer.Pix[i] {
			layer.Pix[i] = v
		}
	}
}

// tokenStateFingerprint hashes the cutout-relevant state of the token
// list so the compositor only reruns when positions or visibility
// actually changed. Camera motion is folded in by the caller via the
// aligned matrix, since sub-pixel translation changes which texels a
// silhouette touches even when tokens have not moved in world space.
func tokenStateFingerprint(tokens []Token, occlusionAware bool) uint64 {
	// FNV-1a over the fields that influence silhouettes.
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	mix := func(v uint64) {
		for i := 0; i < 8; i++ {
			h ^= v & 0xff
			h *= prime64
			v >>= 8
		}
	}
	for i := range tokens {
		tok := &tokens[i]
		if tok.Hidden || !tok.Visible {
			continue
		}
		if occlusionAware && tok.Occluded {
			continue
		}
		for j := 0; j < len(tok.ID); j++ {
			h ^= uint64(tok.ID[j])
			h *= prime64
		}
		mix(math.Float64bits(tok.Center.X))
		mix(math.Float64bits(tok.Center.Y))
		mix(math.Float64bits(tok.Width))
		mix(math.Float64bits(tok.Height))
		if tok.HasRing {
			mix(1)
		}
		if tok.Silhouette != nil {
			mix(uint64(tok.Silhouette.Rect.Dx()))
			mix(uint64(tok.Silhouette.Rect.Dy()))
			// Sprite pixels feed the hash too: hosts may repaint a
			// sprite in place without resizing it.
			for _, b := range tok.Silhouette.Pix {
				h ^= uint64(b)
				h *= prime64
			}
		}
	}
	return h
}
