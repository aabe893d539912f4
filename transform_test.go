package collide

import (
	"math"
	"testing"
)

func TestTransformPosition(t *testing.T) {
	pose := NewTransformRigid(Vector{3, -2}, 0.5)
	if pose.Position() != (Vector{3, -2}) {
		t.Errorf("Position: %v", pose.Position())
	}
	if !pose.Point(Vector{}).Equal(pose.Position()) {
		t.Error("origin must map to the position")
	}
}

func TestTransformInverseRoundTrip(t *testing.T) {
	pose := NewTransformRigid(Vector{1, 2}, 0.8)
	p := Vector{-3, 5}
	if got := pose.Inverse().Point(pose.Point(p)); !got.Near(p, 1e-9) {
		t.Errorf("round trip: %v", got)
	}
}

func TestTransformBB(t *testing.T) {
	bb := BB{L: -2, B: -1, R: 2, T: 1}

	// A quarter turn swaps the extents.
	got := NewTransformRotate(math.Pi / 2).BB(bb)
	want := BB{L: -1, B: -2, R: 1, T: 2}
	if math.Abs(got.L-want.L) > 1e-9 || math.Abs(got.B-want.B) > 1e-9 ||
		math.Abs(got.R-want.R) > 1e-9 || math.Abs(got.T-want.T) > 1e-9 {
		t.Errorf("rotated: got %+v, want %+v", got, want)
	}

	// The transformed bound always contains the transformed corners.
	pose := NewTransformRigid(Vector{1, 1}, 0.3)
	got = pose.BB(bb)
	for _, corner := range []Vector{{bb.L, bb.B}, {bb.R, bb.B}, {bb.R, bb.T}, {bb.L, bb.T}} {
		if !got.ContainsVect(pose.Point(corner)) {
			t.Errorf("corner %v escapes %+v", corner, got)
		}
	}
}
