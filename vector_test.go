package collide

import (
	"math"
	"testing"
)

func TestVectorBasics(t *testing.T) {
	v := Vector{3, 4}
	if !v.Equal(Vector{3, 4}) || v.Equal(Vector{4, 3}) {
		t.Error("Equal")
	}
	if v.Perp() != (Vector{-4, 3}) {
		t.Errorf("Perp: %v", v.Perp())
	}
	if v.ReversePerp() != (Vector{4, -3}) {
		t.Errorf("ReversePerp: %v", v.ReversePerp())
	}
	if v.Perp().Dot(v) != 0 || v.ReversePerp().Dot(v) != 0 {
		t.Error("perpendiculars must be orthogonal")
	}
}

func TestVectorAngles(t *testing.T) {
	for _, a := range []float64{0, 0.5, math.Pi / 2, -2.5} {
		if got := ForAngle(a).ToAngle(); math.Abs(got-a) > 1e-9 {
			t.Errorf("angle %v round-tripped to %v", a, got)
		}
	}

	// Rotating by a unit rotor matches the rotation transform.
	v := Vector{2, 1}
	rot := ForAngle(0.7)
	want := NewTransformRotate(0.7).Vect(v)
	if got := v.Rotate(rot); !got.Near(want, 1e-9) {
		t.Errorf("Rotate: got %v, want %v", got, want)
	}
}

func TestScalarHelpers(t *testing.T) {
	if Lerp(2, 6, 0.25) != 3 {
		t.Errorf("Lerp: %v", Lerp(2, 6, 0.25))
	}
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("Clamp")
	}
}
