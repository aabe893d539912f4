package collide

// Contact is a single contact point between two shapes. Depth is positive
// when the shapes overlap at that point.
type Contact struct {
	PointA, PointB Vector
	Normal         Vector
	Depth          float64
}

// Proximity classifies the distance relationship reported by a proximity
// detector.
type Proximity int

const (
	ProximityDisjoint Proximity = iota
	ProximityWithinMargin
	ProximityIntersecting
)

func (p Proximity) String() string {
	switch p {
	case ProximityIntersecting:
		return "Intersecting"
	case ProximityWithinMargin:
		return "WithinMargin"
	default:
		return "Disjoint"
	}
}

// ContactDetector computes contact points for one persistent shape pair.
// Instances keep state between updates to exploit frame coherence. Update
// reports false on a detector failure (degenerate geometry and the like);
// a failed update reads as no active contact for that tick.
type ContactDetector interface {
	Update(poseA, poseB Transform, prediction float64) bool
	Count() int
	Collect(out *[]Contact)
}

// ProximityDetector decides whether one persistent shape pair is within a
// margin of each other. The bool result reports detector failure.
type ProximityDetector interface {
	Update(poseA, poseB Transform, margin float64) (Proximity, bool)
}

// InteractionKind tells which detector family serves a pair.
type InteractionKind int

const (
	InteractionContact InteractionKind = iota
	InteractionProximity
)

func (k InteractionKind) String() string {
	if k == InteractionProximity {
		return "Proximity"
	}
	return "Contact"
}

// QueryType is what an object asks of the narrow phase: full contact point
// computation within a prediction distance, or a cheap proximity test
// within a margin.
type QueryType struct {
	kind      InteractionKind
	threshold float64
}

func Contacts(prediction float64) QueryType {
	return QueryType{InteractionContact, prediction}
}

func ProximityQuery(margin float64) QueryType {
	return QueryType{InteractionProximity, margin}
}

func (q QueryType) Kind() InteractionKind {
	return q.kind
}

func (q QueryType) Threshold() float64 {
	return q.threshold
}

// CombineQuery resolves the query types of two objects into the pair's
// interaction. If either side asks for proximity the pair is downgraded to
// a proximity interaction, a contact side contributing its prediction
// distance as margin. Otherwise the pair does contact queries with the
// predictions summed.
func CombineQuery(a, b QueryType) (InteractionKind, float64) {
	if a.kind == InteractionProximity || b.kind == InteractionProximity {
		return InteractionProximity, a.threshold + b.threshold
	}
	return InteractionContact, a.threshold + b.threshold
}
