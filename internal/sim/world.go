package sim

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrUnknownID is returned when an ID does not resolve to anything in the
// world.
var ErrUnknownID = errors.New("unknown world id")

// World owns an ordered list of units and the allocator that names them.
type World struct {
	units []Unit
	ids   IDAllocator // groups
	cids  IDAllocator // composites
	rng   *rand.Rand
	log   *SimLog
	tick  int
}

// NewWorld returns an empty world. rng drives spawning and random
// formations; log may be nil.
func NewWorld(rng *rand.Rand, log *SimLog) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 -- simulation only
	}
	return &World{cids: IDAllocator{base: CompositeIDBase}, rng: rng, log: log}
}

func (w *World) Tick() int        { return w.tick }
func (w *World) Units() []Unit    { return w.units }
func (w *World) Log() *SimLog     { return w.log }
func (w *World) Rand() *rand.Rand { return w.rng }

// Groups returns every group in stepping order, composite members included.
func (w *World) Groups() []*Group {
	var out []*Group
	for _, u := range w.units {
		out = append(out, u.Groups()...)
	}
	return out
}

// SpawnGroup creates count randomly scattered agents around origin. It panics
// when count is not below GroupCapacity.
func (w *World) SpawnGroup(origin Vec2, count int) *Group {
	checkCapacity(count)
	return w.AddGroup(origin, RandomEntities(w.rng, origin, count))
}

// AddGroup wraps an existing store into a new group idling at origin. It
// panics when the store holds GroupCapacity agents or more.
func (w *World) AddGroup(origin Vec2, entities *Entities) *Group {
	checkCapacity(entities.Len())
	g := newGroup(w.ids.Next(), origin, entities, w.rng)
	w.attach(g)
	w.units = append(w.units, basicUnit(g))
	w.emit(g.id.String(), "world", "spawn", fmt.Sprintf("%d agents at (%.0f,%.0f)", entities.Len(), origin.X, origin.Y), float64(entities.Len()))
	return g
}

func (w *World) attach(g *Group) {
	g.rng = w.rng
	g.log = w.log
	g.clock = &w.tick
}

// FormComposite moves the given top-level groups into a new composite unit,
// which takes the position of the first of them.
func (w *World) FormComposite(ids ...WorldID) (*Composite, error) {
	if len(ids) == 0 {
		return nil, errors.New("composite: no groups given")
	}
	pos := make(map[WorldID]int, len(w.units))
	for i, u := range w.units {
		if u.Kind == UnitBasic {
			pos[u.ID()] = i
		}
	}
	members := make([]*Group, 0, len(ids))
	seen := make(map[WorldID]bool, len(ids))
	first := -1
	for _, id := range ids {
		i, ok := pos[id]
		if !ok || seen[id] {
			return nil, fmt.Errorf("composite: group %s: %w", id, ErrUnknownID)
		}
		seen[id] = true
		if first < 0 || i < first {
			first = i
		}
		members = append(members, w.units[i].Basic)
	}
	c := newComposite(w.cids.Next(), members)
	kept := w.units[:0]
	for i, u := range w.units {
		switch {
		case i == first:
			kept = append(kept, compositeUnit(c))
		case u.Kind == UnitBasic && seen[u.ID()]:
			// absorbed into c
		default:
			kept = append(kept, u)
		}
	}
	w.units = kept
	w.emit(c.id.String(), "world", "composite", fmt.Sprintf("%d groups", len(members)), float64(len(members)))
	return c, nil
}

// Remove drops the unit or composite member with the given container ID.
// Removing a composite removes its members with it; removing its last member
// removes the composite.
func (w *World) Remove(id WorldID) error {
	for i, u := range w.units {
		if u.ID() == id {
			w.units = append(w.units[:i], w.units[i+1:]...)
			w.emit(id.String(), "world", "remove", "", 0)
			return nil
		}
		if u.Kind != UnitComposite {
			continue
		}
		c := u.Composite
		for j, g := range c.members {
			if g.id != id {
				continue
			}
			c.members = append(c.members[:j], c.members[j+1:]...)
			if len(c.members) == 0 {
				w.units = append(w.units[:i], w.units[i+1:]...)
			} else {
				c.updateBounds()
			}
			w.emit(id.String(), "world", "remove", "from "+c.id.String(), 0)
			return nil
		}
	}
	return fmt.Errorf("remove %s: %w", id, ErrUnknownID)
}

// Unit returns the top-level unit that contains id, which may address the
// unit itself, one of its groups or one of their agents.
func (w *World) Unit(id WorldID) (Unit, bool) {
	gid, ok := GroupOf(id)
	if !ok {
		return Unit{}, false
	}
	for _, u := range w.units {
		if u.ID() == gid {
			return u, true
		}
		for _, g := range u.Groups() {
			if g.id == gid {
				return u, true
			}
		}
	}
	return Unit{}, false
}

// Group returns the group that owns id. Agent IDs resolve to their group.
func (w *World) Group(id WorldID) (*Group, bool) {
	gid, ok := GroupOf(id)
	if !ok {
		return nil, false
	}
	for _, u := range w.units {
		for _, g := range u.Groups() {
			if g.id == gid {
				return g, true
			}
		}
	}
	return nil, false
}

// Assign routes an action to whatever id addresses: a composite, a group, or
// (through its owning group) an agent.
func (w *World) Assign(id WorldID, a Action) error {
	gid, ok := GroupOf(id)
	if !ok {
		return fmt.Errorf("assign %s: %w", id, ErrUnknownID)
	}
	for _, u := range w.units {
		if u.ID() == gid {
			u.Assign(a)
			return nil
		}
	}
	if g, ok := w.Group(gid); ok {
		g.Assign(a)
		return nil
	}
	return fmt.Errorf("assign %s: %w", id, ErrUnknownID)
}

// Select marks exactly the units and groups in ids as selected and clears
// everything else. Agent IDs are ignored; agent selection is the caller's.
func (w *World) Select(ids []WorldID) {
	for _, u := range w.units {
		u.SetSelected(false)
	}
	for _, id := range ids {
		if u, ok := w.Unit(id); ok && u.ID() == id {
			u.SetSelected(true)
			continue
		}
		if !IsContainer(id) {
			continue
		}
		if g, ok := w.Group(id); ok {
			g.selected = true
		}
	}
}

// Step advances the world one frame: every unit in list order.
func (w *World) Step(dt float64) {
	w.tick++
	for _, u := range w.units {
		u.Step(dt)
	}
}

// IDsAt returns every ID hit at p. For each unit the container comes before
// the agent so callers can drill down on repeated clicks.
func (w *World) IDsAt(p Vec2) []WorldID {
	var out []WorldID
	for _, u := range w.units {
		out = u.idsAt(p, out)
	}
	return out
}

// IDsInRect is the drag-select counterpart of IDsAt.
func (w *World) IDsInRect(p0, p1 Vec2) []WorldID {
	lo, hi := rectBounds(p0, p1)
	var out []WorldID
	for _, u := range w.units {
		out = u.idsInRect(lo, hi, out)
	}
	return out
}

func (w *World) emit(unit, category, key, value string, num float64) {
	if w.log == nil {
		return
	}
	w.log.Add(w.tick, unit, category, key, value, num)
}
