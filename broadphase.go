package collide

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// PairKey identifies an unordered pair of objects. A is always the smaller
// id so a pair has exactly one key.
type PairKey struct {
	A, B ObjectId
}

func MakePairKey(a, b ObjectId) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{a, b}
}

func (k PairKey) Other(id ObjectId) ObjectId {
	if k.A == id {
		return k.B
	}
	return k.A
}

func comparePairKeys(a, b PairKey) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// FilterFunc decides whether a candidate pair should be tracked at all.
// It is evaluated when a pair first starts overlapping and again on a full
// recompute.
type FilterFunc func(a, b ObjectId) bool

// PairFunc receives pair start/stop events. Payloads are the ones supplied
// to DeferredAdd; a stop event for a removed object still carries its
// payload.
type PairFunc func(a, b ObjectId, payloadA, payloadB interface{}, started bool)

type addOp struct {
	id      ObjectId
	bb      BB
	payload interface{}
}

type trackedPair struct {
	payloadA, payloadB interface{}
}

// BroadPhase owns a DBVT plus deferred-operation queues. Mutations are
// enqueued in O(1) and committed atomically by Update in a fixed phase
// order: removals, additions, bound updates, full recompute. After Update
// the tracked pair set is exactly the set of pairs whose loose bounds
// overlap and that pass the filter; loose overlap is a superset of true
// shape overlap, so there are no false negatives.
type BroadPhase struct {
	tree   *DBVT
	logger *zap.Logger

	payloads map[ObjectId]interface{}

	adds        []addOp
	pendingAdds map[ObjectId]int // index into adds
	removes     []ObjectId
	pendingRems map[ObjectId]struct{}
	moves       map[ObjectId]BB
	recompute   bool

	tracked   map[PairKey]*trackedPair
	neighbors map[ObjectId]map[ObjectId]struct{}

	locked bool
}

func NewBroadPhase(margin float64) *BroadPhase {
	return &BroadPhase{
		tree:        NewDBVT(margin),
		logger:      zap.NewNop(),
		payloads:    map[ObjectId]interface{}{},
		pendingAdds: map[ObjectId]int{},
		pendingRems: map[ObjectId]struct{}{},
		moves:       map[ObjectId]BB{},
		tracked:     map[PairKey]*trackedPair{},
		neighbors:   map[ObjectId]map[ObjectId]struct{}{},
	}
}

// SetLogger replaces the no-op default. Usage errors are logged at panic
// level through it.
func (bp *BroadPhase) SetLogger(logger *zap.Logger) {
	bp.logger = logger
}

// DeferredAdd queues insertion of a new object. Adding an id that is alive
// or already queued is a fatal usage error; an id pending removal stays
// alive until the removal commits, so it cannot be reused yet either.
func (bp *BroadPhase) DeferredAdd(id ObjectId, bb BB, payload interface{}) {
	bp.checkUnlocked("DeferredAdd")
	if _, alive := bp.payloads[id]; alive {
		bp.logger.Panic("deferred add of live id", zap.Uint64("id", uint64(id)))
	}
	if _, queued := bp.pendingAdds[id]; queued {
		bp.logger.Panic("deferred add of already queued id", zap.Uint64("id", uint64(id)))
	}

	bp.pendingAdds[id] = len(bp.adds)
	bp.adds = append(bp.adds, addOp{id, bb, payload})
}

// DeferredRemove queues removal of a live object. Removing an unknown id is
// a fatal usage error; a second remove of the same id before commit is a
// no-op.
func (bp *BroadPhase) DeferredRemove(id ObjectId) {
	bp.checkUnlocked("DeferredRemove")
	if _, alive := bp.payloads[id]; !alive {
		bp.logger.Panic("deferred remove of unknown id", zap.Uint64("id", uint64(id)))
	}
	if _, queued := bp.pendingRems[id]; queued {
		return
	}

	bp.pendingRems[id] = struct{}{}
	bp.removes = append(bp.removes, id)
}

// DeferredSetBB queues a bound update. The id must be alive or itself
// pending addition; anything else is a fatal usage error.
func (bp *BroadPhase) DeferredSetBB(id ObjectId, bb BB) {
	bp.checkUnlocked("DeferredSetBB")
	if i, queued := bp.pendingAdds[id]; queued {
		bp.adds[i].bb = bb
		return
	}
	if _, alive := bp.payloads[id]; !alive {
		bp.logger.Panic("deferred bound update of unknown id", zap.Uint64("id", uint64(id)))
	}

	bp.moves[id] = bb
}

// DeferredRecomputeAll queues a full re-evaluation of overlap and filter for
// every current and potential pair at the next Update.
func (bp *BroadPhase) DeferredRecomputeAll() {
	bp.checkUnlocked("DeferredRecomputeAll")
	bp.recompute = true
}

// Update commits all queued operations and reconciles the tracked pair set,
// then reports the net transitions through onPair in canonical key order.
// Each pair fires at most one start or stop event per Update no matter how
// many queued operations contributed to it. The filter and onPair callbacks
// must not call back into this BroadPhase.
func (bp *BroadPhase) Update(filter FilterFunc, onPair PairFunc) {
	bp.checkUnlocked("Update")
	bp.locked = true
	defer func() { bp.locked = false }()

	before := make(map[PairKey]*trackedPair, len(bp.tracked))
	maps.Copy(before, bp.tracked)

	// Phase 1: removals. Every tracked pair touching a removed id is
	// dropped; the net diff below turns that into a stop event.
	for _, id := range bp.removes {
		for other := range bp.neighbors[id] {
			bp.untrack(MakePairKey(id, other))
		}
		bp.tree.Remove(id)
		delete(bp.payloads, id)
		// A bound update queued for the same id in this batch is moot.
		delete(bp.moves, id)
	}

	// Phase 2: additions. New leaves report candidate pairs immediately.
	for _, op := range bp.adds {
		bp.tree.Insert(op.id, op.bb)
		bp.payloads[op.id] = op.payload
	}
	for _, op := range bp.adds {
		bp.reconcileObject(op.id, filter)
	}

	// Phase 3: bound updates. Only leaves whose tight bound escaped the
	// loose bound move in the tree and can change overlap topology.
	moved := maps.Keys(bp.moves)
	slices.Sort(moved)
	for _, id := range moved {
		if bp.tree.SetBB(id, bp.moves[id]) {
			bp.reconcileObject(id, filter)
		}
	}

	// Phase 4: full recompute on request.
	if bp.recompute {
		bp.reconcileAll(filter)
	}

	bp.adds = bp.adds[:0]
	maps.Clear(bp.pendingAdds)
	bp.removes = bp.removes[:0]
	maps.Clear(bp.pendingRems)
	maps.Clear(bp.moves)
	bp.recompute = false

	bp.fireDiff(before, onPair)
}

// reconcileObject diffs one object's overlap set against the pairs currently
// tracked for it. Pairs keep their original filter verdict while they
// persist; only new candidates are filtered.
func (bp *BroadPhase) reconcileObject(id ObjectId, filter FilterFunc) {
	_, loose, ok := bp.tree.Bounds(id)
	assert(ok, "reconciling unknown id")

	overlaps := map[ObjectId]struct{}{}
	for _, other := range bp.tree.QueryBB(loose) {
		if other == id {
			continue
		}
		overlaps[other] = struct{}{}

		key := MakePairKey(id, other)
		if _, tracked := bp.tracked[key]; tracked {
			continue
		}
		if filter == nil || filter(key.A, key.B) {
			bp.track(key)
		}
	}

	for other := range bp.neighbors[id] {
		if _, still := overlaps[other]; !still {
			bp.untrack(MakePairKey(id, other))
		}
	}
}

// reconcileAll rebuilds the tracked set from scratch, re-running the filter
// even for pairs that were already tracked.
func (bp *BroadPhase) reconcileAll(filter FilterFunc) {
	desired := map[PairKey]struct{}{}
	bp.tree.Each(func(id ObjectId, loose BB) {
		for _, other := range bp.tree.QueryBB(loose) {
			if other == id {
				continue
			}
			key := MakePairKey(id, other)
			if _, seen := desired[key]; seen {
				continue
			}
			if filter == nil || filter(key.A, key.B) {
				desired[key] = struct{}{}
			}
		}
	})

	for key := range bp.tracked {
		if _, keep := desired[key]; !keep {
			bp.untrack(key)
		}
	}
	for key := range desired {
		if _, tracked := bp.tracked[key]; !tracked {
			bp.track(key)
		}
	}
}

func (bp *BroadPhase) track(key PairKey) {
	bp.tracked[key] = &trackedPair{
		payloadA: bp.payloads[key.A],
		payloadB: bp.payloads[key.B],
	}
	bp.link(key.A, key.B)
	bp.link(key.B, key.A)
}

func (bp *BroadPhase) untrack(key PairKey) {
	if _, ok := bp.tracked[key]; !ok {
		return
	}
	delete(bp.tracked, key)
	bp.unlink(key.A, key.B)
	bp.unlink(key.B, key.A)
}

func (bp *BroadPhase) link(id, other ObjectId) {
	set := bp.neighbors[id]
	if set == nil {
		set = map[ObjectId]struct{}{}
		bp.neighbors[id] = set
	}
	set[other] = struct{}{}
}

func (bp *BroadPhase) unlink(id, other ObjectId) {
	set := bp.neighbors[id]
	delete(set, other)
	if len(set) == 0 {
		delete(bp.neighbors, id)
	}
}

func (bp *BroadPhase) fireDiff(before map[PairKey]*trackedPair, onPair PairFunc) {
	if onPair == nil {
		return
	}

	var started, stopped []PairKey
	for key := range bp.tracked {
		if _, was := before[key]; !was {
			started = append(started, key)
		}
	}
	for key := range before {
		if _, is := bp.tracked[key]; !is {
			stopped = append(stopped, key)
		}
	}
	slices.SortFunc(started, comparePairKeys)
	slices.SortFunc(stopped, comparePairKeys)

	for _, key := range stopped {
		pair := before[key]
		onPair(key.A, key.B, pair.payloadA, pair.payloadB, false)
	}
	for _, key := range started {
		pair := bp.tracked[key]
		onPair(key.A, key.B, pair.payloadA, pair.payloadB, true)
	}
}

// PairCount returns the number of currently tracked pairs.
func (bp *BroadPhase) PairCount() int {
	return len(bp.tracked)
}

// EachPair visits the tracked pairs in canonical key order.
func (bp *BroadPhase) EachPair(f func(key PairKey, payloadA, payloadB interface{})) {
	keys := maps.Keys(bp.tracked)
	slices.SortFunc(keys, comparePairKeys)
	for _, key := range keys {
		pair := bp.tracked[key]
		f(key, pair.payloadA, pair.payloadB)
	}
}

// InterferencesWithBB queries the committed tree snapshot; pending deferred
// operations are not visible.
func (bp *BroadPhase) InterferencesWithBB(bb BB) []ObjectId {
	return bp.tree.QueryBB(bb)
}

func (bp *BroadPhase) InterferencesWithSegment(a, b Vector) []ObjectId {
	return bp.tree.QuerySegment(a, b)
}

func (bp *BroadPhase) InterferencesWithPoint(p Vector) []ObjectId {
	return bp.tree.QueryPoint(p)
}

// Tree exposes the committed spatial index for read-only use.
func (bp *BroadPhase) Tree() *DBVT {
	return bp.tree
}

func (bp *BroadPhase) checkUnlocked(op string) {
	if bp.locked {
		bp.logger.Panic("reentrant broad phase call during Update", zap.String("op", op))
	}
}
