package regionfx

import "testing"

func TestPathRing(t *testing.T) {
	p := NewPath()
	p.Ring([]Point{{0, 0}, {10, 0}, {10, 10}})

	elems := p.Elements()
	if len(elems) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(elems))
	}
	if _, ok := elems[0].(MoveTo); !ok {
		t.Errorf("element 0: expected MoveTo, got %T", elems[0])
	}
	if _, ok := elems[3].(Close); !ok {
		t.Errorf("element 3: expected Close, got %T", elems[3])
	}
}

func TestPathRingTooShort(t *testing.T) {
	p := NewPath()
	p.Ring([]Point{{0, 0}, {1, 1}})
	if !p.IsEmpty() {
		t.Error("two-point ring should be ignored")
	}
}

func TestPathTransform(t *testing.T) {
	p := NewPath()
	p.Ring([]Point{{0, 0}, {10, 0}, {10, 10}})

	moved := p.Transform(Translate(5, 7))
	mt, ok := moved.Elements()[0].(MoveTo)
	if !ok {
		t.Fatalf("expected MoveTo, got %T", moved.Elements()[0])
	}
	if mt.Point != Pt(5, 7) {
		t.Errorf("expected (5, 7), got %+v", mt.Point)
	}
	// The original path is untouched.
	if p.Elements()[0].(MoveTo).Point != Pt(0, 0) {
		t.Error("transform mutated the source path")
	}
}

func TestPathRingsRoundTrip(t *testing.T) {
	in := [][]Point{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		{{20, 20}, {30, 20}, {25, 30}},
	}
	p := NewPath()
	for _, ring := range in {
		p.Ring(ring)
	}

	out := p.Rings()
	if len(out) != len(in) {
		t.Fatalf("expected %d rings, got %d", len(in), len(out))
	}
	for i := range in {
		if len(out[i]) != len(in[i]) {
			t.Fatalf("ring %d: expected %d points, got %d", i, len(in[i]), len(out[i]))
		}
		for j := range in[i] {
			if out[i][j] != in[i][j] {
				t.Errorf("ring %d point %d: expected %+v, got %+v", i, j, in[i][j], out[i][j])
			}
		}
	}
}
