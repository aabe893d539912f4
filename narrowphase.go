package collide

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Object is the per-object record the narrow phase works from: a shape for
// dispatch, a pose detectors read, and the query type the object asks for.
type Object struct {
	ID    ObjectId
	Shape Shape
	Pose  Transform
	Query QueryType
}

// EventFunc receives interaction start/stop notifications. Both the contact
// and the proximity signal use it.
type EventFunc func(a, b ObjectId, started bool)

type interactionRecord struct {
	a, b *Object

	kind      InteractionKind
	threshold float64

	contact   ContactDetector
	proximity ProximityDetector

	// Whether the pair has externally-visible geometry right now (some
	// contact points, or a proximity other than disjoint).
	active bool
}

// NarrowPhase keeps one persistent detector per broad-phase pair and turns
// raw detector output into exactly-once start/stop events. A pair with no
// detector in the dispatch table is silently ignored.
type NarrowPhase struct {
	logger *zap.Logger

	records map[PairKey]*interactionRecord

	contactListeners   []EventFunc
	proximityListeners []EventFunc

	locked bool
}

func NewNarrowPhase() *NarrowPhase {
	return &NarrowPhase{
		logger:  zap.NewNop(),
		records: map[PairKey]*interactionRecord{},
	}
}

func (np *NarrowPhase) SetLogger(logger *zap.Logger) {
	np.logger = logger
}

// OnContact registers a listener for contact start/stop events. Listeners
// run synchronously inside Update in registration order.
func (np *NarrowPhase) OnContact(f EventFunc) {
	np.contactListeners = append(np.contactListeners, f)
}

// OnProximity registers a listener for proximity start/stop events.
func (np *NarrowPhase) OnProximity(f EventFunc) {
	np.proximityListeners = append(np.proximityListeners, f)
}

// HandleInteraction reacts to a broad-phase pair event. On start it resolves
// the pair's interaction kind, asks the dispatcher for a detector and
// creates the persistent record; a dispatch miss leaves the pair untracked.
// On stop the record is torn down, firing a stop event if the pair ever
// reported active geometry.
func (np *NarrowPhase) HandleInteraction(dispatcher Dispatcher, a, b *Object, started bool) {
	if np.locked {
		np.logger.Panic("reentrant narrow phase call during Update")
	}
	if a.ID == b.ID {
		np.logger.Panic("pair with identical endpoints", zap.Uint64("id", uint64(a.ID)))
	}

	if b.ID < a.ID {
		a, b = b, a
	}
	key := PairKey{a.ID, b.ID}

	if !started {
		rec, ok := np.records[key]
		if !ok {
			return
		}
		delete(np.records, key)
		if rec.active {
			np.fire(rec.kind, key, false)
		}
		return
	}

	if _, ok := np.records[key]; ok {
		return
	}

	kind, threshold := CombineQuery(a.Query, b.Query)
	rec := &interactionRecord{a: a, b: b, kind: kind, threshold: threshold}

	switch kind {
	case InteractionContact:
		det, ok := dispatcher.ContactDetector(a.Shape, b.Shape)
		if !ok {
			np.logger.Debug("no contact detector for pair",
				zap.Uint64("a", uint64(a.ID)), zap.Uint64("b", uint64(b.ID)))
			return
		}
		rec.contact = det
	case InteractionProximity:
		det, ok := dispatcher.ProximityDetector(a.Shape, b.Shape)
		if !ok {
			np.logger.Debug("no proximity detector for pair",
				zap.Uint64("a", uint64(a.ID)), zap.Uint64("b", uint64(b.ID)))
			return
		}
		rec.proximity = det
	}

	np.records[key] = rec
}

// Update runs every persistent detector against the current poses and fires
// start/stop events only on activity transitions. Records are independent
// of each other; a detector failure reads as no active geometry this tick.
func (np *NarrowPhase) Update() {
	if np.locked {
		np.logger.Panic("reentrant narrow phase Update")
	}
	np.locked = true
	defer func() { np.locked = false }()

	keys := maps.Keys(np.records)
	slices.SortFunc(keys, comparePairKeys)

	for _, key := range keys {
		rec := np.records[key]

		var active bool
		switch rec.kind {
		case InteractionContact:
			if rec.contact.Update(rec.a.Pose, rec.b.Pose, rec.threshold) {
				active = rec.contact.Count() > 0
			}
		case InteractionProximity:
			if prox, ok := rec.proximity.Update(rec.a.Pose, rec.b.Pose, rec.threshold); ok {
				active = prox != ProximityDisjoint
			}
		}

		if active != rec.active {
			rec.active = active
			np.fire(rec.kind, key, active)
		}
	}
}

// fire delivers one event to a snapshot of the listener list so listeners
// may register or remove listeners from inside a callback.
func (np *NarrowPhase) fire(kind InteractionKind, key PairKey, started bool) {
	var listeners []EventFunc
	if kind == InteractionContact {
		listeners = slices.Clone(np.contactListeners)
	} else {
		listeners = slices.Clone(np.proximityListeners)
	}
	for _, f := range listeners {
		f(key.A, key.B, started)
	}
}

// ContactPairs returns the contact pairs with active geometry, in canonical
// key order.
func (np *NarrowPhase) ContactPairs() []PairKey {
	return np.activePairs(InteractionContact)
}

// ProximityPairs returns the proximity pairs currently within their margin,
// in canonical key order.
func (np *NarrowPhase) ProximityPairs() []PairKey {
	return np.activePairs(InteractionProximity)
}

func (np *NarrowPhase) activePairs(kind InteractionKind) []PairKey {
	var out []PairKey
	for key, rec := range np.records {
		if rec.kind == kind && rec.active {
			out = append(out, key)
		}
	}
	slices.SortFunc(out, comparePairKeys)
	return out
}

// ContactManifold copies out the current manifold for an active contact
// pair.
func (np *NarrowPhase) ContactManifold(a, b ObjectId) ([]Contact, bool) {
	rec, ok := np.records[MakePairKey(a, b)]
	if !ok || rec.kind != InteractionContact || !rec.active {
		return nil, false
	}
	var out []Contact
	rec.contact.Collect(&out)
	return out, true
}

// PairCount returns the number of pairs with a live detector, active or
// idle.
func (np *NarrowPhase) PairCount() int {
	return len(np.records)
}
