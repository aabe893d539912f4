package collide

import (
	"math/rand"
	"testing"
)

func sortedIds(ids []ObjectId) map[ObjectId]bool {
	set := map[ObjectId]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestDBVTInsertQuery(t *testing.T) {
	tree := NewDBVT(0)

	bbs := []BB{
		{0, 0, 1, 1},
		{1, 0, 2, 1},
		{10, 0, 11, 1},
		{11, 0, 12, 1},
		{100, 0, 101, 1},
		{-1, -1, 1, 1},
	}
	for i, bb := range bbs {
		tree.Insert(ObjectId(i), bb)
	}

	if tree.Count() != len(bbs) {
		t.Fatalf("expected %d leaves, got %d", len(bbs), tree.Count())
	}

	hits := sortedIds(tree.QueryBB(BB{0.25, 0.25, 0.75, 0.75}))
	if !hits[0] || !hits[5] || len(hits) != 2 {
		t.Errorf("unexpected bb query result: %v", hits)
	}

	hits = sortedIds(tree.QueryPoint(Vector{10.5, 0.5}))
	if !hits[2] || len(hits) != 1 {
		t.Errorf("unexpected point query result: %v", hits)
	}

	hits = sortedIds(tree.QuerySegment(Vector{-5, 0.5}, Vector{15, 0.5}))
	for _, want := range []ObjectId{0, 1, 2, 3, 5} {
		if !hits[want] {
			t.Errorf("segment query missed %d: %v", want, hits)
		}
	}
	if hits[4] {
		t.Errorf("segment query hit leaf far beyond its end: %v", hits)
	}
}

func TestDBVTRemove(t *testing.T) {
	tree := NewDBVT(0)
	for i := 0; i < 10; i++ {
		tree.Insert(ObjectId(i), NewBBForExtents(Vector{float64(i) * 3, 0}, 1, 1))
	}

	for i := 0; i < 10; i += 2 {
		tree.Remove(ObjectId(i))
	}

	if tree.Count() != 5 {
		t.Fatalf("expected 5 leaves, got %d", tree.Count())
	}
	for i := 0; i < 10; i++ {
		hits := sortedIds(tree.QueryPoint(Vector{float64(i) * 3, 0}))
		if hits[ObjectId(i)] != (i%2 == 1) {
			t.Errorf("leaf %d present=%v after removals", i, hits[ObjectId(i)])
		}
	}
}

func TestDBVTHysteresis(t *testing.T) {
	tree := NewDBVT(0.2)
	tree.Insert(1, NewBBForCircle(Vector{}, 1))

	// Motion below the margin only rewrites the tight bound.
	if tree.SetBB(1, NewBBForCircle(Vector{0.1, 0}, 1)) {
		t.Error("move below the margin must not change the tree")
	}
	tight, loose, _ := tree.Bounds(1)
	if tight.R != 1.1 {
		t.Errorf("tight bound not updated in place: %+v", tight)
	}
	if loose.R != 1.2 {
		t.Errorf("loose bound must not move on a small update: %+v", loose)
	}

	// Escaping the loose bound detaches and reinserts exactly once.
	if !tree.SetBB(1, NewBBForCircle(Vector{0.35, 0}, 1)) {
		t.Error("move past the margin must reinsert the leaf")
	}
	_, loose, _ = tree.Bounds(1)
	if loose.R != 1.55 || loose.L != -0.85 {
		t.Errorf("loose bound not recomputed from the new tight bound: %+v", loose)
	}

	// The fresh loose bound buys another round of in-place updates.
	if tree.SetBB(1, NewBBForCircle(Vector{0.4, 0}, 1)) {
		t.Error("move inside the fresh loose bound must be in place")
	}
}

func TestDBVTRandomSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tree := NewDBVT(0.1)

	bbs := map[ObjectId]BB{}
	for i := 0; i < 200; i++ {
		bb := NewBBForExtents(Vector{rng.Float64() * 100, rng.Float64() * 100}, 2, 2)
		bbs[ObjectId(i)] = bb
		tree.Insert(ObjectId(i), bb)
	}

	// Shake everything a little, twice, so mixed in-place/reinsert paths
	// both get exercised.
	for round := 0; round < 2; round++ {
		for id := range bbs {
			d := Vector{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
			bb := bbs[id].Offset(d)
			bbs[id] = bb
			tree.SetBB(id, bb)
		}
	}

	for id, bb := range bbs {
		hits := sortedIds(tree.QueryBB(bb))
		for other, otherBB := range bbs {
			if bb.Intersects(otherBB) && !hits[other] {
				t.Fatalf("tree missed overlap %d-%d", id, other)
			}
		}
	}
}

func TestDBVTDegenerateBB(t *testing.T) {
	tree := NewDBVT(0)
	point := Vector{3, 4}
	tree.Insert(7, NewBBForExtents(point, 0, 0))

	if hits := tree.QueryPoint(point); len(hits) != 1 || hits[0] != 7 {
		t.Errorf("point-sized bound must be queryable: %v", hits)
	}
}
