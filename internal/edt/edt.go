// Package edt implements the exact squared Euclidean distance transform
// of Felzenszwalb and Huttenlocher ("Distance Transforms of Sampled
// Functions", 2012): a two-pass separable method that computes, for each
// sample, the exact squared distance to the nearest feature sample.
//
// Each 1D pass computes the lower envelope of parabolas anchored at the
// feature columns in O(n) using a monotonic stack of envelope
// breakpoints; running the pass over rows and then over columns of the
// row result yields the exact 2D transform. Unlike chamfer or 8SSEDT
// approaches, this is not an approximation.
package edt

import "math"

// Inf is the sentinel for "no feature here". Kept far below MaxFloat64
// so breakpoint arithmetic cannot overflow.
const Inf = math.MaxFloat64 / 4

// Transform replaces f, a w*h row-major grid holding 0 at feature
// samples and Inf elsewhere, with the squared Euclidean distance from
// each sample to its nearest feature. Distances are in sample units.
func Transform(f []float64, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}

	n := w
	if h > n {
		n = h
	}
	// Scratch shared by both passes.
	d := make([]float64, n)
	g := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	// Pass 1: rows.
	for y := 0; y < h; y++ {
		row := f[y*w : (y+1)*w]
		copy(g[:w], row)
		transform1D(d[:w], g[:w], v[:w], z[:w+1])
		copy(row, d[:w])
	}

	// Pass 2: columns of the row-transformed result.
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			g[y] = f[y*w+x]
		}
		transform1D(d[:h], g[:h], v[:h], z[:h+1])
		for y := 0; y < h; y++ {
			f[y*w+x] = d[y]
		}
	}
}

// transform1D computes the 1D squared distance transform of g into d.
// v and z are caller-provided scratch: v holds the parabola vertices of
// the current lower envelope, z the breakpoints between consecutive
// envelope parabolas.
func transform1D(d, g []float64, v []int, z []float64) {
	n := len(g)
	k := 0
	v[0] = 0
	z[0] = -Inf
	z[1] = Inf

	for q := 1; q < n; q++ {
		// Intersection of the parabola at q with the rightmost
		// envelope parabola; pop parabolas it dominates.
		var s float64
		for {
			p := v[k]
			s = ((g[q] + float64(q*q)) - (g[p] + float64(p*p))) / float64(2*q-2*p)
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = Inf
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + g[v[k]]
	}
}

// SignedField computes the signed Euclidean distance field of a binary
// inside/outside bitmap, in sample units: negative inside, positive
// outside, magnitude the exact distance to the nearest opposite sample.
//
// Two transforms run: one with the inside samples as features (distance
// seen by outside samples) and one with the outside samples as features
// (distance seen by inside samples).
func SignedField(inside []bool, w, h int) []float64 {
	toInside := make([]float64, w*h)
	toOutside := make([]float64, w*h)
	for i, in := range inside {
		if in {
			toInside[i] = 0
			toOutside[i] = Inf
		} else {
			toInside[i] = Inf
			toOutside[i] = 0
		}
	}
	Transform(toInside, w, h)
	Transform(toOutside, w, h)

	signed := make([]float64, w*h)
	for i := range signed {
		if inside[i] {
			signed[i] = -math.Sqrt(toOutside[i])
		} else {
			signed[i] = math.Sqrt(toInside[i])
		}
	}
	return signed
}

// DilateInterior applies a +-1 sample separable max-dilation of the
// interior (negative) magnitudes, restricted to interior samples. This
// removes the one-sample seam where an interior boundary sample would
// otherwise decode to a distance of zero.
func DilateInterior(signed []float64, inside []bool, w, h int) {
	// Interior magnitude: positive inside, zero outside.
	mag := make([]float64, w*h)
	for i := range signed {
		if inside[i] {
			mag[i] = -signed[i]
		}
	}

	// Horizontal pass.
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if x > 0 && mag[i-1] > m {
				m = mag[i-1]
			}
			if x < w-1 && mag[i+1] > m {
				m = mag[i+1]
			}
			tmp[i] = m
		}
	}
	// Vertical pass, written back only for interior samples.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !inside[i] {
				continue
			}
			m := tmp[i]
			if y > 0 && tmp[i-w] > m {
				m = tmp[i-w]
			}
			if y < h-1 && tmp[i+w] > m {
				m = tmp[i+w]
			}
			signed[i] = -m
		}
	}
}
