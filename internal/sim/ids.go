package sim

import "fmt"

// WorldID is a flat address for groups and agents. Group IDs are non-zero
// multiples of GroupCapacity; agent IDs are group + local index + 1. Zero is
// the whole-world wildcard.
type WorldID uint64

// GroupCapacity bounds the agent-local address space of one group. A group
// holds strictly fewer agents than this.
const GroupCapacity WorldID = 256

// WildcardID addresses the whole world.
const WildcardID WorldID = 0

// CompositeIDBase is where composite IDs start, far above any group ID, so
// composites never consume group numbers.
const CompositeIDBase WorldID = GroupCapacity << 32

// IsCompositeID reports whether id is in the composite range.
func IsCompositeID(id WorldID) bool {
	return id >= CompositeIDBase
}

func (id WorldID) String() string {
	if id == WildcardID {
		return "*"
	}
	if IsCompositeID(id) {
		return fmt.Sprintf("C%d", (id-CompositeIDBase)/GroupCapacity)
	}
	if IsContainer(id) {
		return fmt.Sprintf("G%d", id/GroupCapacity)
	}
	g, ok := GroupOf(id)
	if !ok {
		return fmt.Sprintf("?%d", uint64(id))
	}
	return fmt.Sprintf("G%d.%d", g/GroupCapacity, id-g-1)
}

// IsContainer reports whether id addresses a group (or the wildcard).
func IsContainer(id WorldID) bool {
	return id%GroupCapacity == 0
}

// GroupOf returns the group that owns id. A group ID owns itself. IDs below
// GroupCapacity have no owner.
func GroupOf(id WorldID) (WorldID, bool) {
	g := id - id%GroupCapacity
	if g < GroupCapacity {
		return 0, false
	}
	return g, true
}

// AgentID returns the ID of agent local in group.
func AgentID(group WorldID, local int) WorldID {
	return group + WorldID(local) + 1
}

// LocalIndex returns the agent index inside its group. Group IDs and
// unowned IDs report false.
func LocalIndex(id WorldID) (int, bool) {
	if IsContainer(id) {
		return 0, false
	}
	g, ok := GroupOf(id)
	if !ok {
		return 0, false
	}
	return int(id - g - 1), true
}

// IsAgentOf reports whether agent belongs to group.
func IsAgentOf(agent, group WorldID) bool {
	if IsContainer(agent) {
		return false
	}
	g, ok := GroupOf(agent)
	return ok && g == group
}

// IDAllocator hands out container IDs. The n-th call to Next (counting from
// zero) returns base + GroupCapacity*(n+1); the zero value allocates groups.
type IDAllocator struct {
	base   WorldID
	issued uint64
}

func (a *IDAllocator) Next() WorldID {
	a.issued++
	return a.base + GroupCapacity*WorldID(a.issued)
}

// Issued returns how many IDs have been handed out.
func (a *IDAllocator) Issued() uint64 {
	return a.issued
}

// Reserve makes sure id is never handed out again. Used when restoring
// snapshots.
func (a *IDAllocator) Reserve(id WorldID) {
	if id < a.base {
		return
	}
	if n := uint64((id - a.base) / GroupCapacity); n > a.issued {
		a.issued = n
	}
}

// checkCapacity panics when count cannot be addressed by one group.
func checkCapacity(count int) {
	if count < 0 || WorldID(count) >= GroupCapacity {
		panic(fmt.Sprintf("sim: group of %d agents exceeds capacity %d", count, GroupCapacity))
	}
}
