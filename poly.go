package collide

import "math"

// Poly is a convex polygon, wound counterclockwise in the object's local
// frame. Radius rounds the corners outward.
type Poly struct {
	Verts  []Vector
	Radius float64
}

// NewBoxPoly returns an axis-aligned box polygon centered on the local
// origin.
func NewBoxPoly(width, height float64) Poly {
	hw, hh := width/2, height/2
	return Poly{Verts: []Vector{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}}
}

func (p Poly) Kind() ShapeKind {
	return KindPoly
}

func (p Poly) BB(pose Transform) BB {
	l, b := Infinity, Infinity
	r, t := -Infinity, -Infinity
	for _, v := range p.Verts {
		w := pose.Point(v)
		l = math.Min(l, w.X)
		r = math.Max(r, w.X)
		b = math.Min(b, w.Y)
		t = math.Max(t, w.Y)
	}
	return BB{l - p.Radius, b - p.Radius, r + p.Radius, t + p.Radius}
}

// closestOnPoly finds the point of the polygon core nearest to c. dist is
// signed, negative when c is inside, and n points from c toward the
// polygon.
func closestOnPoly(c Vector, verts []Vector) (q, n Vector, dist float64) {
	imax := 0
	smax := -Infinity
	for i := range verts {
		v0 := verts[i]
		v1 := verts[(i+1)%len(verts)]
		ni := v1.Sub(v0).Normalize().ReversePerp()
		if s := c.Sub(v0).Dot(ni); s > smax {
			smax = s
			imax = i
		}
	}

	v0 := verts[imax]
	v1 := verts[(imax+1)%len(verts)]
	nmax := v1.Sub(v0).Normalize().ReversePerp()

	if smax <= 0 {
		// Inside: the deepest edge plane is the nearest exit.
		return c.Sub(nmax.Mult(smax)), nmax.Neg(), smax
	}

	q = c.ClosestPointOnSegment(v0, v1)
	dist = c.Distance(q)
	if dist > magicEpsilon {
		n = q.Sub(c).Mult(1 / dist)
	} else {
		n = nmax.Neg()
	}
	return q, n, dist
}

type ballPolyContact struct {
	ball Ball
	poly Poly

	count   int
	contact Contact

	verts []Vector
}

func newBallPolyContact(ball Ball, poly Poly) *ballPolyContact {
	return &ballPolyContact{
		ball:  ball,
		poly:  poly,
		verts: make([]Vector, len(poly.Verts)),
	}
}

func (d *ballPolyContact) Update(poseA, poseB Transform, prediction float64) bool {
	if len(d.poly.Verts) < 3 {
		return false
	}

	c := poseA.Point(Vector{})
	for i, v := range d.poly.Verts {
		d.verts[i] = poseB.Point(v)
	}

	q, n, dist := closestOnPoly(c, d.verts)
	rsum := d.ball.Radius + d.poly.Radius

	if dist > rsum+prediction {
		d.count = 0
		return true
	}

	d.contact = Contact{
		PointA: c.Add(n.Mult(d.ball.Radius)),
		PointB: q.Sub(n.Mult(d.poly.Radius)),
		Normal: n,
		Depth:  rsum - dist,
	}
	d.count = 1
	return true
}

func (d *ballPolyContact) Count() int {
	return d.count
}

func (d *ballPolyContact) Collect(out *[]Contact) {
	if d.count > 0 {
		*out = append(*out, d.contact)
	}
}

type ballPolyProximity struct {
	ball Ball
	poly Poly

	verts []Vector
}

func newBallPolyProximity(ball Ball, poly Poly) *ballPolyProximity {
	return &ballPolyProximity{
		ball:  ball,
		poly:  poly,
		verts: make([]Vector, len(poly.Verts)),
	}
}

func (d *ballPolyProximity) Update(poseA, poseB Transform, margin float64) (Proximity, bool) {
	if len(d.poly.Verts) < 3 {
		return ProximityDisjoint, false
	}

	c := poseA.Point(Vector{})
	for i, v := range d.poly.Verts {
		d.verts[i] = poseB.Point(v)
	}

	_, _, dist := closestOnPoly(c, d.verts)
	rsum := d.ball.Radius + d.poly.Radius

	switch {
	case dist <= rsum:
		return ProximityIntersecting, true
	case dist <= rsum+margin:
		return ProximityWithinMargin, true
	default:
		return ProximityDisjoint, true
	}
}
