package collide

import "math"

// Manifold point caps. Two points pin down a planar contact region, four a
// volumetric one.
const (
	ManifoldPoints2D = 2
	ManifoldPoints3D = 4
)

// defaultManifoldTolerance is the positional tolerance under which a new
// candidate point merges into a stored one instead of growing the manifold.
const defaultManifoldTolerance = 0.02

type manifoldPoint struct {
	contact Contact

	// Anchors in each shape's local frame, used to track the stored points
	// under motion between updates.
	localA, localB Vector

	age uint
}

// IncrementalManifold decorates a detector that produces at most one contact
// point per update and accumulates the points into a bounded manifold.
// Stored points follow their shapes between updates and are dropped once
// they separate or slide too far; new points merge into nearby stored ones
// or evict the least useful point when the manifold is full.
type IncrementalManifold struct {
	inner     ContactDetector
	cap       int
	tolerance float64

	points  []manifoldPoint
	stamp   uint
	scratch []Contact
}

func NewIncrementalManifold(inner ContactDetector, cap int) *IncrementalManifold {
	assert(cap >= 1, "manifold cap must be at least one point")
	return &IncrementalManifold{
		inner:     inner,
		cap:       cap,
		tolerance: defaultManifoldTolerance,
	}
}

// SetTolerance overrides the merge/drop tolerance.
func (m *IncrementalManifold) SetTolerance(tol float64) {
	m.tolerance = tol
}

func (m *IncrementalManifold) Update(poseA, poseB Transform, prediction float64) bool {
	m.refresh(poseA, poseB)
	return m.absorb(poseA, poseB, prediction)
}

func (m *IncrementalManifold) Count() int {
	return len(m.points)
}

func (m *IncrementalManifold) Collect(out *[]Contact) {
	for i := range m.points {
		*out = append(*out, m.points[i].contact)
	}
}

// refresh re-anchors the stored points under the current poses and drops
// points that separated past the tolerance or slid too far tangentially.
func (m *IncrementalManifold) refresh(poseA, poseB Transform) {
	kept := m.points[:0]
	for _, p := range m.points {
		wa := poseA.Point(p.localA)
		wb := poseB.Point(p.localB)

		ab := wb.Sub(wa)
		separation := ab.Dot(p.contact.Normal)
		tangential := ab.Sub(p.contact.Normal.Mult(separation))

		if separation > m.tolerance || tangential.Length() > m.tolerance {
			continue
		}

		p.contact.PointA = wa
		p.contact.PointB = wb
		p.contact.Depth = -separation
		kept = append(kept, p)
	}
	m.points = kept
}

// absorb runs the wrapped detector once and folds its candidate point into
// the manifold, enforcing the cap after the insertion.
func (m *IncrementalManifold) absorb(poseA, poseB Transform, prediction float64) bool {
	if !m.inner.Update(poseA, poseB, prediction) {
		return false
	}

	m.scratch = m.scratch[:0]
	m.inner.Collect(&m.scratch)

	for _, c := range m.scratch {
		if i, ok := m.nearest(c); ok {
			age := m.points[i].age
			m.points[i] = m.newPoint(c, poseA, poseB, age)
			continue
		}

		m.stamp++
		m.points = append(m.points, m.newPoint(c, poseA, poseB, m.stamp))
		if len(m.points) > m.cap {
			m.evict()
		}
	}
	return true
}

func (m *IncrementalManifold) newPoint(c Contact, poseA, poseB Transform, age uint) manifoldPoint {
	return manifoldPoint{
		contact: c,
		localA:  poseA.Inverse().Point(c.PointA),
		localB:  poseB.Inverse().Point(c.PointB),
		age:     age,
	}
}

func (m *IncrementalManifold) nearest(c Contact) (int, bool) {
	for i := range m.points {
		if m.points[i].contact.PointA.Near(c.PointA, m.tolerance) {
			return i, true
		}
	}
	return 0, false
}

// evict removes the point whose removal least reduces the area (or
// perimeter, below three points) spanned by the remainder. Ties discard the
// oldest point.
func (m *IncrementalManifold) evict() {
	best := -1
	bestSpan := -1.0
	remaining := make([]Vector, 0, len(m.points)-1)

	for i := range m.points {
		remaining = remaining[:0]
		for j := range m.points {
			if j != i {
				remaining = append(remaining, m.points[j].contact.PointA)
			}
		}

		span := spanMeasure(remaining)
		if span > bestSpan || (span == bestSpan && m.points[i].age < m.points[best].age) {
			best = i
			bestSpan = span
		}
	}

	m.points = append(m.points[:best], m.points[best+1:]...)
}

// spanMeasure is the extent covered by a point set: segment length for two
// points, triangle area for three, convex hull area beyond that.
func spanMeasure(pts []Vector) float64 {
	switch len(pts) {
	case 0, 1:
		return 0
	case 2:
		return pts[0].Distance(pts[1])
	case 3:
		return math.Abs(pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))) / 2
	default:
		return convexArea(pts)
	}
}

func convexArea(pts []Vector) float64 {
	hull := convexHull(pts)
	if len(hull) < 3 {
		return 0
	}
	var area float64
	for i := range hull {
		j := (i + 1) % len(hull)
		area += hull[i].Cross(hull[j])
	}
	return math.Abs(area) / 2
}

// convexHull builds the hull with a monotone chain; the inputs are tiny
// (at most cap+1 points) so a scratch sort is fine.
func convexHull(pts []Vector) []Vector {
	sorted := make([]Vector, len(pts))
	copy(sorted, pts)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0; j-- {
			if sorted[j].X < sorted[j-1].X ||
				(sorted[j].X == sorted[j-1].X && sorted[j].Y < sorted[j-1].Y) {
				sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			} else {
				break
			}
		}
	}

	var hull []Vector
	for _, p := range sorted {
		for len(hull) >= 2 && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// Angles (radians) of the simulated rotations the one-shot pass applies to
// shape A around the first contact point.
var oneShotAngles = []float64{-0.1, -0.05, 0.05, 0.1}

// OneShotManifold fills a manifold in a single pass: on the first detected
// contact it re-runs the wrapped detector under small rotations of shape A
// about the contact point, collecting up to the cap immediately. From then
// on it behaves incrementally. While no contact has been seen it passes
// through with zero stored points.
type OneShotManifold struct {
	inner *IncrementalManifold
	shot  bool
}

func NewOneShotManifold(inner ContactDetector, cap int) *OneShotManifold {
	return &OneShotManifold{inner: NewIncrementalManifold(inner, cap)}
}

func (m *OneShotManifold) SetTolerance(tol float64) {
	m.inner.SetTolerance(tol)
}

func (m *OneShotManifold) Update(poseA, poseB Transform, prediction float64) bool {
	if m.shot {
		return m.inner.Update(poseA, poseB, prediction)
	}

	if !m.inner.Update(poseA, poseB, prediction) {
		return false
	}
	if m.inner.Count() == 0 {
		return true
	}

	pivot := m.inner.points[0].contact.PointA.Lerp(m.inner.points[0].contact.PointB, 0.5)
	for _, angle := range oneShotAngles {
		perturbed := NewTransformRotateAbout(pivot, angle).Mult(poseA)
		m.inner.absorb(perturbed, poseB, prediction)
	}
	m.shot = true
	return true
}

func (m *OneShotManifold) Count() int {
	return m.inner.Count()
}

func (m *OneShotManifold) Collect(out *[]Contact) {
	m.inner.Collect(out)
}
