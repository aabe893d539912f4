package collide

// GroupSlots is the number of usable group slots per object.
const GroupSlots = 30

// CollisionGroups restricts which pairs of objects may interact. Two
// objects interact only if each is a member of a group the other
// whitelists, and neither is a member of a group the other blacklists.
// Blacklists win over whitelists.
type CollisionGroups struct {
	membership uint32
	whitelist  uint32
	blacklist  uint32

	selfCollision bool
}

const allGroups = (1 << GroupSlots) - 1

// NewCollisionGroups returns groups that are member of every slot, whitelist
// every slot, blacklist nothing, and do not collide with themselves.
func NewCollisionGroups() CollisionGroups {
	return CollisionGroups{
		membership: allGroups,
		whitelist:  allGroups,
	}
}

func checkSlot(slot int) {
	if slot < 0 || slot >= GroupSlots {
		panic("collision group slot out of range")
	}
}

func setBit(mask uint32, slot int, on bool) uint32 {
	checkSlot(slot)
	if on {
		return mask | 1<<slot
	}
	return mask &^ (1 << slot)
}

func (g *CollisionGroups) SetMembership(slot int, on bool) {
	g.membership = setBit(g.membership, slot, on)
}

func (g *CollisionGroups) SetWhitelist(slot int, on bool) {
	g.whitelist = setBit(g.whitelist, slot, on)
}

func (g *CollisionGroups) SetBlacklist(slot int, on bool) {
	g.blacklist = setBit(g.blacklist, slot, on)
}

// SetMemberships replaces the membership mask with exactly the given slots.
func (g *CollisionGroups) SetMemberships(slots ...int) {
	g.membership = 0
	for _, slot := range slots {
		g.SetMembership(slot, true)
	}
}

// SetWhitelists replaces the whitelist mask with exactly the given slots.
func (g *CollisionGroups) SetWhitelists(slots ...int) {
	g.whitelist = 0
	for _, slot := range slots {
		g.SetWhitelist(slot, true)
	}
}

// SetBlacklists replaces the blacklist mask with exactly the given slots.
func (g *CollisionGroups) SetBlacklists(slots ...int) {
	g.blacklist = 0
	for _, slot := range slots {
		g.SetBlacklist(slot, true)
	}
}

func (g *CollisionGroups) EnableSelfCollision(on bool) {
	g.selfCollision = on
}

func (g CollisionGroups) CanInteract(other CollisionGroups) bool {
	return g.membership&other.whitelist != 0 &&
		other.membership&g.whitelist != 0 &&
		g.membership&other.blacklist == 0 &&
		other.membership&g.blacklist == 0
}

// CanInteractWithSelf reports whether two parts of the same object may
// interact with each other.
func (g CollisionGroups) CanInteractWithSelf() bool {
	return g.selfCollision
}

// GroupFilter adapts a per-object groups table into a broad phase filter.
// Pairs with an object missing from the table are rejected.
func GroupFilter(groups map[ObjectId]CollisionGroups) FilterFunc {
	return func(a, b ObjectId) bool {
		ga, oka := groups[a]
		gb, okb := groups[b]
		if !oka || !okb {
			return false
		}
		if a == b {
			return ga.CanInteractWithSelf()
		}
		return ga.CanInteract(gb)
	}
}
