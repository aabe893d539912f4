package collide

// ShapeKind tags the closed set of shape classes the dispatch table knows
// about.
type ShapeKind int

const (
	KindBall ShapeKind = iota
	KindSegment
	KindPoly
	shapeKindNum
)

// Shape is the minimal surface the pipeline needs from exact geometry: a
// dispatch tag and a bound under a pose. The exact per-pair math lives in
// the detectors behind the Dispatcher.
type Shape interface {
	Kind() ShapeKind
	BB(pose Transform) BB
}

// ContactFactory builds a persistent contact detector for two shapes.
type ContactFactory func(a, b Shape) ContactDetector

// ProximityFactory builds a persistent proximity detector for two shapes.
type ProximityFactory func(a, b Shape) ProximityDetector

// Dispatcher resolves a shape pair to detector instances. A miss is not an
// error; the pair is simply not tracked by the narrow phase. Implementations
// must be read-only after construction so they can be shared.
type Dispatcher interface {
	ContactDetector(a, b Shape) (ContactDetector, bool)
	ProximityDetector(a, b Shape) (ProximityDetector, bool)
}

type kindPair struct {
	a, b ShapeKind
}

// DispatchTable maps shape kind pairs to detector factories. Factories
// registered for (a, b) also serve (b, a) through a swapping adapter.
type DispatchTable struct {
	contacts    map[kindPair]ContactFactory
	proximities map[kindPair]ProximityFactory
}

func NewDispatchTable() *DispatchTable {
	return &DispatchTable{
		contacts:    map[kindPair]ContactFactory{},
		proximities: map[kindPair]ProximityFactory{},
	}
}

// NewDefaultDispatch returns a table with the built-in detectors
// registered: ball against ball, segment and poly. Ball-ball contacts
// accumulate incrementally; contacts against extended shapes fill their
// manifold with a one-shot pass since the region can be conforming from
// the first frame.
func NewDefaultDispatch(manifoldCap int) *DispatchTable {
	table := NewDispatchTable()
	table.RegisterContact(KindBall, KindBall, func(a, b Shape) ContactDetector {
		return NewIncrementalManifold(newBallBallContact(a.(Ball), b.(Ball)), manifoldCap)
	})
	table.RegisterContact(KindBall, KindSegment, func(a, b Shape) ContactDetector {
		return NewOneShotManifold(newBallSegmentContact(a.(Ball), b.(Segment)), manifoldCap)
	})
	table.RegisterContact(KindBall, KindPoly, func(a, b Shape) ContactDetector {
		return NewOneShotManifold(newBallPolyContact(a.(Ball), b.(Poly)), manifoldCap)
	})
	table.RegisterProximity(KindBall, KindBall, func(a, b Shape) ProximityDetector {
		return newBallBallProximity(a.(Ball), b.(Ball))
	})
	table.RegisterProximity(KindBall, KindSegment, func(a, b Shape) ProximityDetector {
		return newBallSegmentProximity(a.(Ball), b.(Segment))
	})
	table.RegisterProximity(KindBall, KindPoly, func(a, b Shape) ProximityDetector {
		return newBallPolyProximity(a.(Ball), b.(Poly))
	})
	return table
}

func (t *DispatchTable) RegisterContact(a, b ShapeKind, f ContactFactory) {
	t.contacts[kindPair{a, b}] = f
}

func (t *DispatchTable) RegisterProximity(a, b ShapeKind, f ProximityFactory) {
	t.proximities[kindPair{a, b}] = f
}

func (t *DispatchTable) ContactDetector(a, b Shape) (ContactDetector, bool) {
	if f, ok := t.contacts[kindPair{a.Kind(), b.Kind()}]; ok {
		return f(a, b), true
	}
	if f, ok := t.contacts[kindPair{b.Kind(), a.Kind()}]; ok {
		return &swappedContact{f(b, a)}, true
	}
	return nil, false
}

func (t *DispatchTable) ProximityDetector(a, b Shape) (ProximityDetector, bool) {
	if f, ok := t.proximities[kindPair{a.Kind(), b.Kind()}]; ok {
		return f(a, b), true
	}
	if f, ok := t.proximities[kindPair{b.Kind(), a.Kind()}]; ok {
		return &swappedProximity{f(b, a)}, true
	}
	return nil, false
}

// swappedContact adapts a detector built for (b, a) to serve (a, b).
type swappedContact struct {
	inner ContactDetector
}

func (d *swappedContact) Update(poseA, poseB Transform, prediction float64) bool {
	return d.inner.Update(poseB, poseA, prediction)
}

func (d *swappedContact) Count() int {
	return d.inner.Count()
}

func (d *swappedContact) Collect(out *[]Contact) {
	start := len(*out)
	d.inner.Collect(out)
	for i := start; i < len(*out); i++ {
		c := &(*out)[i]
		c.PointA, c.PointB = c.PointB, c.PointA
		c.Normal = c.Normal.Neg()
	}
}

type swappedProximity struct {
	inner ProximityDetector
}

func (d *swappedProximity) Update(poseA, poseB Transform, margin float64) (Proximity, bool) {
	return d.inner.Update(poseB, poseA, margin)
}
