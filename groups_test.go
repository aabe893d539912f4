package collide

import "testing"

func TestCollisionGroupsDefaults(t *testing.T) {
	a := NewCollisionGroups()
	b := NewCollisionGroups()

	if !a.CanInteract(b) || !b.CanInteract(a) {
		t.Error("default groups must interact")
	}
	if a.CanInteractWithSelf() {
		t.Error("self collision must be off by default")
	}

	a.EnableSelfCollision(true)
	if !a.CanInteractWithSelf() {
		t.Error("self collision did not enable")
	}
}

func TestCollisionGroupsMasks(t *testing.T) {
	a := NewCollisionGroups()
	a.SetMemberships(1, 3, 6)
	a.SetWhitelists(6, 7)
	a.SetBlacklists(1)

	b := NewCollisionGroups()
	b.SetMemberships(1, 3, 7)
	b.SetWhitelists(3, 7)

	c := NewCollisionGroups()
	c.SetMemberships(6, 9)
	c.SetWhitelists(3, 7)

	// B is a member of 1, which A blacklists.
	if a.CanInteract(b) || b.CanInteract(a) {
		t.Error("blacklist must veto the pair")
	}
	// No membership of C is on B's whitelist.
	if b.CanInteract(c) || c.CanInteract(b) {
		t.Error("pair without mutual whitelist must not interact")
	}
	// A is whitelisted through 3, C through 6, and no blacklist hits.
	if !a.CanInteract(c) || !c.CanInteract(a) {
		t.Error("mutually whitelisted pair must interact")
	}
}

func TestCollisionGroupsIncrementalEdits(t *testing.T) {
	a := NewCollisionGroups()
	b := NewCollisionGroups()
	a.SetMemberships(2)
	b.SetMemberships(5)

	b.SetBlacklist(2, true)
	if a.CanInteract(b) {
		t.Error("blacklist edit must take effect")
	}
	b.SetBlacklist(2, false)
	if !a.CanInteract(b) {
		t.Error("clearing the blacklist must restore the pair")
	}

	// b is only a member of 5, so dropping 5 from a's whitelist cuts it off.
	a.SetWhitelist(5, false)
	if a.CanInteract(b) {
		t.Error("removing the sole whitelist slot must veto the pair")
	}
}

func TestCollisionGroupsSlotRange(t *testing.T) {
	g := NewCollisionGroups()
	for _, slot := range []int{-1, GroupSlots} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("slot %d must panic", slot)
				}
			}()
			g.SetMembership(slot, true)
		}()
	}

	// The highest valid slot works.
	g.SetMembership(GroupSlots-1, true)
}

func TestGroupFilter(t *testing.T) {
	loner := NewCollisionGroups()
	loner.SetBlacklists(0)

	self := NewCollisionGroups()
	self.EnableSelfCollision(true)

	groups := map[ObjectId]CollisionGroups{
		1: NewCollisionGroups(),
		2: NewCollisionGroups(),
		3: loner,
		4: self,
	}
	filter := GroupFilter(groups)

	if !filter(1, 2) {
		t.Error("default pair must pass")
	}
	if filter(1, 3) {
		t.Error("blacklisted pair must not pass")
	}
	if filter(1, 1) {
		t.Error("self pair must not pass without the self flag")
	}
	if !filter(4, 4) {
		t.Error("self pair with the self flag must pass")
	}
	if filter(1, 9) {
		t.Error("unknown ids must not pass")
	}
}
