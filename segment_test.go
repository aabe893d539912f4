package collide

import (
	"math"
	"testing"
)

func TestSegmentBB(t *testing.T) {
	seg := Segment{A: Vector{-2, 0}, B: Vector{2, 1}, Radius: 0.5}
	bb := seg.BB(NewTransformIdentity())
	want := BB{L: -2.5, B: -0.5, R: 2.5, T: 1.5}
	if bb != want {
		t.Errorf("got %+v, want %+v", bb, want)
	}

	// Rotating a quarter turn swaps the extents.
	bb = seg.BB(NewTransformRotate(math.Pi / 2))
	if math.Abs(bb.T-2.5) > 1e-9 || math.Abs(bb.B+2.5) > 1e-9 {
		t.Errorf("rotated bound: %+v", bb)
	}
}

func TestBallSegmentContact(t *testing.T) {
	det := newBallSegmentContact(Ball{1}, Segment{A: Vector{-5, 0}, B: Vector{5, 0}, Radius: 0.5})
	identity := NewTransformIdentity()

	// Ball hovering over the middle of the segment.
	if !det.Update(NewTransformTranslate(Vector{0, 1.2}), identity, 0) {
		t.Fatal("update failed")
	}
	if det.Count() != 1 {
		t.Fatal("expected a contact")
	}

	var contacts []Contact
	det.Collect(&contacts)
	c := contacts[0]
	if c.Normal != (Vector{0, -1}) {
		t.Errorf("normal: %v", c.Normal)
	}
	if c.PointA != (Vector{0, 0.2}) || c.PointB != (Vector{0, 0.5}) {
		t.Errorf("surface points: %+v", c)
	}
	if math.Abs(c.Depth-0.3) > 1e-9 {
		t.Errorf("depth: %v", c.Depth)
	}

	// Past the rounded end cap.
	det.Update(NewTransformTranslate(Vector{7, 0}), identity, 0)
	if det.Count() != 0 {
		t.Error("ball past the end cap must not touch")
	}

	// Against the end cap the closest feature is the endpoint.
	det.Update(NewTransformTranslate(Vector{6.2, 0}), identity, 0)
	if det.Count() != 1 {
		t.Fatal("expected an end cap contact")
	}
	contacts = contacts[:0]
	det.Collect(&contacts)
	if contacts[0].Normal != (Vector{-1, 0}) {
		t.Errorf("end cap normal: %v", contacts[0].Normal)
	}
}

func TestBallSegmentProximity(t *testing.T) {
	det := newBallSegmentProximity(Ball{1}, Segment{A: Vector{-5, 0}, B: Vector{5, 0}, Radius: 0.5})
	identity := NewTransformIdentity()

	cases := []struct {
		pos  Vector
		want Proximity
	}{
		{Vector{0, 1.2}, ProximityIntersecting},
		{Vector{0, 1.8}, ProximityWithinMargin},
		{Vector{0, 3}, ProximityDisjoint},
		{Vector{6.8, 0}, ProximityWithinMargin},
	}
	for _, tc := range cases {
		got, ok := det.Update(NewTransformTranslate(tc.pos), identity, 0.5)
		if !ok || got != tc.want {
			t.Errorf("pos %v: got %v, want %v", tc.pos, got, tc.want)
		}
	}
}
