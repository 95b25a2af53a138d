package raster

import "testing"

func rect(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func countFilled(buf []uint8) int {
	n := 0
	for _, v := range buf {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestFillRect(t *testing.T) {
	const w, h = 10, 10
	buf := make([]uint8, w*h)
	Fill(buf, w, h, [][]Point{rect(2, 2, 8, 8)}, NonZero, OpSet)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inside := x >= 2 && x < 8 && y >= 2 && y < 8
			got := buf[y*w+x]
			if inside && got != 255 {
				t.Errorf("pixel (%d,%d): expected 255, got %d", x, y, got)
			}
			if !inside && got != 0 {
				t.Errorf("pixel (%d,%d): expected 0, got %d", x, y, got)
			}
		}
	}
}

func TestFillErase(t *testing.T) {
	const w, h = 10, 10
	buf := make([]uint8, w*h)
	Fill(buf, w, h, [][]Point{rect(0, 0, 10, 10)}, NonZero, OpSet)
	Fill(buf, w, h, [][]Point{rect(3, 3, 7, 7)}, NonZero, OpErase)

	if got := buf[5*w+5]; got != 0 {
		t.Errorf("erased center: expected 0, got %d", got)
	}
	if got := buf[1*w+1]; got != 255 {
		t.Errorf("outside erase: expected 255, got %d", got)
	}
	if got := countFilled(buf); got != 100-16 {
		t.Errorf("expected %d filled pixels, got %d", 100-16, got)
	}
}

func TestFillEvenOddHole(t *testing.T) {
	const w, h = 12, 12
	buf := make([]uint8, w*h)
	// Outer and inner ring with the same orientation: even-odd treats
	// the overlap as a hole, non-zero does not.
	rings := [][]Point{rect(1, 1, 11, 11), rect(4, 4, 8, 8)}

	Fill(buf, w, h, rings, EvenOdd, OpSet)
	if got := buf[6*w+6]; got != 0 {
		t.Errorf("even-odd hole center: expected 0, got %d", got)
	}
	if got := buf[2*w+2]; got != 255 {
		t.Errorf("even-odd ring: expected 255, got %d", got)
	}

	for i := range buf {
		buf[i] = 0
	}
	Fill(buf, w, h, rings, NonZero, OpSet)
	if got := buf[6*w+6]; got != 255 {
		t.Errorf("non-zero overlap center: expected 255, got %d", got)
	}
}

func TestFillNonZeroOppositeWinding(t *testing.T) {
	const w, h = 12, 12
	buf := make([]uint8, w*h)
	outer := rect(1, 1, 11, 11)
	// Reversed inner ring: winding cancels under non-zero.
	inner := []Point{{4, 4}, {4, 8}, {8, 8}, {8, 4}}

	Fill(buf, w, h, [][]Point{outer, inner}, NonZero, OpSet)
	if got := buf[6*w+6]; got != 0 {
		t.Errorf("cancelled winding center: expected 0, got %d", got)
	}
	if got := buf[2*w+2]; got != 255 {
		t.Errorf("ring: expected 255, got %d", got)
	}
}

func TestFillClipsToBuffer(t *testing.T) {
	const w, h = 8, 8
	buf := make([]uint8, w*h)
	Fill(buf, w, h, [][]Point{rect(-5, -5, 4, 4)}, NonZero, OpSet)

	if got := countFilled(buf); got != 16 {
		t.Errorf("expected 16 filled pixels, got %d", got)
	}
	if got := buf[0]; got != 255 {
		t.Errorf("corner: expected 255, got %d", got)
	}
}

func TestFillDeterministic(t *testing.T) {
	const w, h = 16, 16
	ring := []Point{{2.3, 1.7}, {13.6, 4.2}, {9.1, 14.8}, {3.4, 11.2}}

	a := make([]uint8, w*h)
	b := make([]uint8, w*h)
	Fill(a, w, h, [][]Point{ring}, NonZero, OpSet)
	Fill(b, w, h, [][]Point{ring}, NonZero, OpSet)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs between identical fills: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestFillDegenerateRings(t *testing.T) {
	const w, h = 8, 8
	buf := make([]uint8, w*h)
	Fill(buf, w, h, [][]Point{{{1, 1}, {5, 5}}}, NonZero, OpSet)
	Fill(buf, w, h, [][]Point{{{1, 2}, {5, 2}, {7, 2}}}, NonZero, OpSet)

	if got := countFilled(buf); got != 0 {
		t.Errorf("degenerate rings filled %d pixels", got)
	}
}

func TestFillBinary(t *testing.T) {
	inside := FillBinary(10, 10, [][]Point{rect(1, 1, 9, 9)}, [][]Point{rect(4, 4, 6, 6)}, NonZero)

	if !inside[2*10+2] {
		t.Error("fill interior: expected inside")
	}
	if inside[5*10+5] {
		t.Error("hole center: expected outside")
	}
	if inside[0] {
		t.Error("outside fill: expected outside")
	}
}
