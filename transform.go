package collide

import "math"

// Transform is a 2D affine transform in column-major order.
type Transform struct {
	a, b, c, d, tx, ty float64
}

func NewTransformIdentity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

func NewTransformTranspose(a, c, tx, b, d, ty float64) Transform {
	return Transform{a, b, c, d, tx, ty}
}

func NewTransformTranslate(translate Vector) Transform {
	return NewTransformTranspose(
		1, 0, translate.X,
		0, 1, translate.Y,
	)
}

func NewTransformRotate(radians float64) Transform {
	rot := ForAngle(radians)
	return NewTransformTranspose(
		rot.X, -rot.Y, 0,
		rot.Y, rot.X, 0,
	)
}

func NewTransformRigid(translate Vector, radians float64) Transform {
	rot := ForAngle(radians)
	return NewTransformTranspose(
		rot.X, -rot.Y, translate.X,
		rot.Y, rot.X, translate.Y,
	)
}

// NewTransformRotateAbout rotates about an arbitrary pivot point instead of
// the origin.
func NewTransformRotateAbout(pivot Vector, radians float64) Transform {
	return NewTransformTranslate(pivot).
		Mult(NewTransformRotate(radians)).
		Mult(NewTransformTranslate(pivot.Neg()))
}

func (t Transform) Inverse() Transform {
	invDet := 1.0 / (t.a*t.d - t.c*t.b)
	return NewTransformTranspose(
		t.d*invDet, -t.c*invDet, (t.c*t.ty-t.tx*t.d)*invDet,
		-t.b*invDet, t.a*invDet, (t.tx*t.b-t.a*t.ty)*invDet,
	)
}

func (t Transform) Mult(t2 Transform) Transform {
	return NewTransformTranspose(
		t.a*t2.a+t.c*t2.b, t.a*t2.c+t.c*t2.d, t.a*t2.tx+t.c*t2.ty+t.tx,
		t.b*t2.a+t.d*t2.b, t.b*t2.c+t.d*t2.d, t.b*t2.tx+t.d*t2.ty+t.ty,
	)
}

func (t Transform) Point(p Vector) Vector {
	return Vector{X: t.a*p.X + t.c*p.Y + t.tx, Y: t.b*p.X + t.d*p.Y + t.ty}
}

func (t Transform) Vect(v Vector) Vector {
	return Vector{t.a*v.X + t.c*v.Y, t.b*v.X + t.d*v.Y}
}

func (t Transform) Position() Vector {
	return Vector{t.tx, t.ty}
}

func (t Transform) BB(bb BB) BB {
	hw := (bb.R - bb.L) * 0.5
	hh := (bb.T - bb.B) * 0.5

	a := t.a * hw
	b := t.c * hh
	d := t.b * hw
	e := t.d * hh
	hwMax := math.Max(math.Abs(a+b), math.Abs(a-b))
	hhMax := math.Max(math.Abs(d+e), math.Abs(d-e))
	return NewBBForExtents(t.Point(bb.Center()), hwMax, hhMax)
}
