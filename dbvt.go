package collide

// ObjectId is an opaque key chosen by the caller. It must be unique among
// live objects in any one structure.
type ObjectId uint64

type node struct {
	bb     BB // loose bound for leaves, child union for internals
	parent *node

	// internal nodes
	a, b *node

	// leaves
	id    ObjectId
	tight BB
	leaf  bool
}

func (n *node) isLeaf() bool {
	return n.leaf
}

func (n *node) other(child *node) *node {
	if n.a == child {
		return n.b
	}
	return n.a
}

func nodeSetA(n, value *node) {
	n.a = value
	value.parent = n
}

func nodeSetB(n, value *node) {
	n.b = value
	value.parent = n
}

const pooledBufferSize = 32

// DBVT is a dynamic bounding volume tree. Leaves hold per-object bounds
// loosened by a fixed margin; internal nodes tightly bound their subtrees.
// Small motion that stays inside a leaf's loose bound updates in place
// without touching the tree structure.
type DBVT struct {
	margin float64

	root   *node
	leaves map[ObjectId]*node

	pooledNodes *node
}

func NewDBVT(margin float64) *DBVT {
	return &DBVT{
		margin: margin,
		leaves: map[ObjectId]*node{},
	}
}

func (tree *DBVT) Margin() float64 {
	return tree.margin
}

func (tree *DBVT) Count() int {
	return len(tree.leaves)
}

func (tree *DBVT) Contains(id ObjectId) bool {
	_, ok := tree.leaves[id]
	return ok
}

// Each visits every leaf with its loose bound.
func (tree *DBVT) Each(f func(id ObjectId, loose BB)) {
	for id, leaf := range tree.leaves {
		f(id, leaf.bb)
	}
}

// Bounds returns the tight and loose bounds stored for id.
func (tree *DBVT) Bounds(id ObjectId) (tight, loose BB, ok bool) {
	leaf, ok := tree.leaves[id]
	if !ok {
		return BB{}, BB{}, false
	}
	return leaf.tight, leaf.bb, true
}

func (tree *DBVT) Insert(id ObjectId, bb BB) {
	assert(tree.leaves[id] == nil, "duplicate leaf id")

	leaf := tree.newLeaf(id, bb)
	tree.leaves[id] = leaf
	tree.root = tree.subtreeInsert(tree.root, leaf)
}

func (tree *DBVT) Remove(id ObjectId) {
	leaf := tree.leaves[id]
	assert(leaf != nil, "removing unknown leaf id")

	delete(tree.leaves, id)
	tree.root = tree.subtreeRemove(tree.root, leaf)
	tree.recycleNode(leaf)
}

// SetBB updates the exact bound stored for id. If the new bound still fits
// inside the leaf's loose bound only the tight bound changes and SetBB
// reports false. Otherwise the leaf is detached, its loose bound recomputed
// from the new tight bound plus the margin, and reinserted; that is the only
// path that can change overlap topology.
func (tree *DBVT) SetBB(id ObjectId, bb BB) bool {
	leaf := tree.leaves[id]
	assert(leaf != nil, "updating unknown leaf id")

	if leaf.bb.Contains(bb) {
		leaf.tight = bb
		return false
	}

	leaf.tight = bb
	leaf.bb = bb.Expanded(tree.margin)

	root := tree.subtreeRemove(tree.root, leaf)
	tree.root = tree.subtreeInsert(root, leaf)
	return true
}

// QueryBB returns the ids of all leaves whose loose bounds intersect bb.
func (tree *DBVT) QueryBB(bb BB) []ObjectId {
	var out []ObjectId
	if tree.root != nil {
		tree.root.subtreeQuery(bb, &out)
	}
	return out
}

// QuerySegment returns the ids of all leaves whose loose bounds are hit by
// the segment from a to b.
func (tree *DBVT) QuerySegment(a, b Vector) []ObjectId {
	var out []ObjectId
	if tree.root != nil {
		tree.root.subtreeSegmentQuery(a, b, &out)
	}
	return out
}

// QueryPoint returns the ids of all leaves whose loose bounds contain p.
func (tree *DBVT) QueryPoint(p Vector) []ObjectId {
	var out []ObjectId
	if tree.root != nil {
		tree.root.subtreePointQuery(p, &out)
	}
	return out
}

func (tree *DBVT) subtreeInsert(subtree, leaf *node) *node {
	if subtree == nil {
		return leaf
	}
	if subtree.isLeaf() {
		return tree.newNode(leaf, subtree)
	}

	costA := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	costB := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if costA == costB {
		costA = subtree.a.bb.Proximity(leaf.bb)
		costB = subtree.b.bb.Proximity(leaf.bb)
	}

	if costB < costA {
		nodeSetB(subtree, tree.subtreeInsert(subtree.b, leaf))
	} else {
		nodeSetA(subtree, tree.subtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

func (tree *DBVT) subtreeRemove(subtree, leaf *node) *node {
	if leaf == subtree {
		return nil
	}

	parent := leaf.parent
	if parent == subtree {
		other := subtree.other(leaf)
		other.parent = subtree.parent
		tree.recycleNode(subtree)
		return other
	}

	tree.replaceChild(parent.parent, parent, parent.other(leaf))
	return subtree
}

func (tree *DBVT) replaceChild(parent, child, value *node) {
	if parent.a == child {
		tree.recycleNode(parent.a)
		nodeSetA(parent, value)
	} else {
		tree.recycleNode(parent.b)
		nodeSetB(parent, value)
	}

	for n := parent; n != nil; n = n.parent {
		n.bb = n.a.bb.Merge(n.b.bb)
	}
}

func (subtree *node) subtreeQuery(bb BB, out *[]ObjectId) {
	if subtree.bb.Intersects(bb) {
		if subtree.isLeaf() {
			*out = append(*out, subtree.id)
		} else {
			subtree.a.subtreeQuery(bb, out)
			subtree.b.subtreeQuery(bb, out)
		}
	}
}

func (subtree *node) subtreeSegmentQuery(a, b Vector, out *[]ObjectId) {
	if subtree.bb.IntersectsSegment(a, b) {
		if subtree.isLeaf() {
			*out = append(*out, subtree.id)
		} else {
			subtree.a.subtreeSegmentQuery(a, b, out)
			subtree.b.subtreeSegmentQuery(a, b, out)
		}
	}
}

func (subtree *node) subtreePointQuery(p Vector, out *[]ObjectId) {
	if subtree.bb.ContainsVect(p) {
		if subtree.isLeaf() {
			*out = append(*out, subtree.id)
		} else {
			subtree.a.subtreePointQuery(p, out)
			subtree.b.subtreePointQuery(p, out)
		}
	}
}

func (tree *DBVT) newNode(a, b *node) *node {
	n := tree.nodeFromPool()
	n.leaf = false
	n.id = 0
	n.bb = a.bb.Merge(b.bb)
	n.parent = nil

	nodeSetA(n, a)
	nodeSetB(n, b)
	return n
}

func (tree *DBVT) newLeaf(id ObjectId, bb BB) *node {
	n := tree.nodeFromPool()
	n.leaf = true
	n.id = id
	n.tight = bb
	n.bb = bb.Expanded(tree.margin)
	n.parent = nil
	n.a = nil
	n.b = nil

	return n
}

func (tree *DBVT) nodeFromPool() *node {
	n := tree.pooledNodes

	if n != nil {
		tree.pooledNodes = n.parent
		n.parent = nil
		return n
	}

	// Pool is exhausted make more
	for i := 0; i < pooledBufferSize; i++ {
		tree.recycleNode(&node{})
	}

	return &node{}
}

func (tree *DBVT) recycleNode(n *node) {
	n.a = nil
	n.b = nil
	n.parent = tree.pooledNodes
	tree.pooledNodes = n
}
