package collide

// Ball is a circle centered on its object's position. It is the built-in
// reference shape; everything else plugs in through the Dispatcher.
type Ball struct {
	Radius float64
}

func (b Ball) Kind() ShapeKind {
	return KindBall
}

func (b Ball) BB(pose Transform) BB {
	return NewBBForCircle(pose.Point(Vector{}), b.Radius)
}

// ballBallContact produces at most one contact point per update. Manifold
// accumulation is the reducer's job.
type ballBallContact struct {
	a, b Ball

	count   int
	contact Contact
}

func newBallBallContact(a, b Ball) *ballBallContact {
	return &ballBallContact{a: a, b: b}
}

func (d *ballBallContact) Update(poseA, poseB Transform, prediction float64) bool {
	ca := poseA.Point(Vector{})
	cb := poseB.Point(Vector{})

	delta := cb.Sub(ca)
	dist := delta.Length()
	rsum := d.a.Radius + d.b.Radius

	if dist > rsum+prediction {
		d.count = 0
		return true
	}

	var n Vector
	if dist > magicEpsilon {
		n = delta.Mult(1 / dist)
	} else {
		// Concentric balls have no separating axis; pick one.
		n = Vector{0, 1}
	}

	d.contact = Contact{
		PointA: ca.Add(n.Mult(d.a.Radius)),
		PointB: cb.Sub(n.Mult(d.b.Radius)),
		Normal: n,
		Depth:  rsum - dist,
	}
	d.count = 1
	return true
}

func (d *ballBallContact) Count() int {
	return d.count
}

func (d *ballBallContact) Collect(out *[]Contact) {
	if d.count > 0 {
		*out = append(*out, d.contact)
	}
}

type ballBallProximity struct {
	a, b Ball
}

func newBallBallProximity(a, b Ball) *ballBallProximity {
	return &ballBallProximity{a, b}
}

func (d *ballBallProximity) Update(poseA, poseB Transform, margin float64) (Proximity, bool) {
	dist := poseA.Point(Vector{}).Distance(poseB.Point(Vector{}))
	rsum := d.a.Radius + d.b.Radius

	switch {
	case dist <= rsum:
		return ProximityIntersecting, true
	case dist <= rsum+margin:
		return ProximityWithinMargin, true
	default:
		return ProximityDisjoint, true
	}
}
