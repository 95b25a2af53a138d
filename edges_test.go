package regionfx

import (
	"math"
	"testing"
)

func TestBoundaryEdgesNoDecimation(t *testing.T) {
	trace := Trace{
		Fills: [][]Point{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		Holes: [][]Point{{{2, 2}, {8, 2}, {8, 8}, {2, 8}}},
	}
	edges := BoundaryEdges(trace, 128)
	if len(edges) != 8 {
		t.Fatalf("expected 8 edges, got %d", len(edges))
	}
	// Rings close: the last edge of the fill ring ends at its start.
	if edges[3].B != Pt(0, 0) {
		t.Errorf("fill ring not closed: last edge ends at %+v", edges[3].B)
	}
}

func TestBoundaryEdgesDecimation(t *testing.T) {
	// A 256-vertex ring against a 64-edge budget.
	ring := make([]Point, 256)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / 256
		ring[i] = Pt(math.Cos(a)*100, math.Sin(a)*100)
	}
	edges := BoundaryEdges(Trace{Fills: [][]Point{ring}}, 64)

	if len(edges) > 64 {
		t.Fatalf("edge budget exceeded: %d > 64", len(edges))
	}
	// Decimation keeps the boundary closed.
	if edges[len(edges)-1].B != ring[0] {
		t.Errorf("decimated ring not closed: last edge ends at %+v", edges[len(edges)-1].B)
	}
	// Consecutive edges share endpoints.
	for i := 0; i < len(edges)-1; i++ {
		if edges[i].B != edges[i+1].A {
			t.Fatalf("gap between edges %d and %d: %+v vs %+v", i, i+1, edges[i].B, edges[i+1].A)
		}
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	tests := []struct {
		p    Point
		want float64
	}{
		{Pt(5, 3), 3},           // above the middle
		{Pt(-4, 0), 4},          // past endpoint a
		{Pt(13, 4), 5},          // past endpoint b, diagonal
		{Pt(7, 0), 0},           // on the segment
		{Pt(0, -2), 2},          // below endpoint a
	}
	for _, tt := range tests {
		if got := segmentDistance(tt.p, a, b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("segmentDistance(%+v): expected %v, got %v", tt.p, tt.want, got)
		}
	}

	// Degenerate segment collapses to point distance.
	if got := segmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)); got != 5 {
		t.Errorf("degenerate segment: expected 5, got %v", got)
	}
}

func TestMinEdgeDistance(t *testing.T) {
	edges := []FadeEdge{
		{A: Pt(0, 0), B: Pt(10, 0)},
		{A: Pt(10, 0), B: Pt(10, 10)},
	}
	if got := minEdgeDistance(Pt(9, 2), edges); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := minEdgeDistance(Pt(0, 0), nil); !math.IsInf(got, 1) {
		t.Errorf("no edges: expected +Inf, got %v", got)
	}
}

func TestSmoothMinEdgeDistance(t *testing.T) {
	square := []FadeEdge{
		{A: Pt(0, 0), B: Pt(100, 0)},
		{A: Pt(100, 0), B: Pt(100, 100)},
		{A: Pt(100, 100), B: Pt(0, 100)},
		{A: Pt(0, 100), B: Pt(0, 0)},
	}

	// Far from any vertex the smooth minimum tracks the hard minimum.
	p := Pt(50, 10)
	hard := minEdgeDistance(p, square)
	smooth := smoothMinEdgeDistance(p, square, 2.5)
	if math.Abs(hard-smooth) > 0.1 {
		t.Errorf("mid-edge: smooth %v strays from hard %v", smooth, hard)
	}

	// Near a corner the smooth minimum dips below the hard minimum,
	// blending the two edges instead of creasing.
	c := Pt(8, 8)
	hardC := minEdgeDistance(c, square)
	smoothC := smoothMinEdgeDistance(c, square, 2.5)
	if smoothC > hardC {
		t.Errorf("corner: smooth %v above hard %v", smoothC, hardC)
	}

	// Zero temperature degenerates to the hard minimum.
	if got := smoothMinEdgeDistance(c, square, 0); got != hardC {
		t.Errorf("zero temperature: expected %v, got %v", hardC, got)
	}
}
