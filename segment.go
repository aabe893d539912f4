package collide

// Segment is a thick line segment between two endpoints in the object's
// local frame. Radius rounds the ends, so a zero-radius segment is an
// infinitely thin wall.
type Segment struct {
	A, B   Vector
	Radius float64
}

func (s Segment) Kind() ShapeKind {
	return KindSegment
}

func (s Segment) BB(pose Transform) BB {
	ta := pose.Point(s.A)
	tb := pose.Point(s.B)

	var l, r float64
	if ta.X < tb.X {
		l, r = ta.X, tb.X
	} else {
		l, r = tb.X, ta.X
	}
	var b, t float64
	if ta.Y < tb.Y {
		b, t = ta.Y, tb.Y
	} else {
		b, t = tb.Y, ta.Y
	}
	return BB{l - s.Radius, b - s.Radius, r + s.Radius, t + s.Radius}
}

// normal returns the unit normal of the untransformed segment.
func (s Segment) normal() Vector {
	return s.B.Sub(s.A).Normalize().ReversePerp()
}

type ballSegmentContact struct {
	ball Ball
	seg  Segment

	count   int
	contact Contact
}

func newBallSegmentContact(ball Ball, seg Segment) *ballSegmentContact {
	return &ballSegmentContact{ball: ball, seg: seg}
}

func (d *ballSegmentContact) Update(poseA, poseB Transform, prediction float64) bool {
	c := poseA.Point(Vector{})
	ta := poseB.Point(d.seg.A)
	tb := poseB.Point(d.seg.B)

	closest := c.ClosestPointOnSegment(ta, tb)
	delta := closest.Sub(c)
	dist := delta.Length()
	rsum := d.ball.Radius + d.seg.Radius

	if dist > rsum+prediction {
		d.count = 0
		return true
	}

	var n Vector
	if dist > magicEpsilon {
		n = delta.Mult(1 / dist)
	} else {
		// Center on the spine; fall back to the segment normal.
		n = poseB.Vect(d.seg.normal())
	}

	d.contact = Contact{
		PointA: c.Add(n.Mult(d.ball.Radius)),
		PointB: closest.Sub(n.Mult(d.seg.Radius)),
		Normal: n,
		Depth:  rsum - dist,
	}
	d.count = 1
	return true
}

func (d *ballSegmentContact) Count() int {
	return d.count
}

func (d *ballSegmentContact) Collect(out *[]Contact) {
	if d.count > 0 {
		*out = append(*out, d.contact)
	}
}

type ballSegmentProximity struct {
	ball Ball
	seg  Segment
}

func newBallSegmentProximity(ball Ball, seg Segment) *ballSegmentProximity {
	return &ballSegmentProximity{ball, seg}
}

func (d *ballSegmentProximity) Update(poseA, poseB Transform, margin float64) (Proximity, bool) {
	c := poseA.Point(Vector{})
	closest := c.ClosestPointOnSegment(poseB.Point(d.seg.A), poseB.Point(d.seg.B))
	dist := c.Distance(closest)
	rsum := d.ball.Radius + d.seg.Radius

	switch {
	case dist <= rsum:
		return ProximityIntersecting, true
	case dist <= rsum+margin:
		return ProximityWithinMargin, true
	default:
		return ProximityDisjoint, true
	}
}
