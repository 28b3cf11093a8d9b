package sim

import "math"

// UnitKind tags the variant held in a Unit.
type UnitKind uint8

const (
	UnitBasic     UnitKind = iota // a single Group
	UnitComposite                 // several Groups commanded together
)

// Unit is the closed set of things a World steps. Exactly one of Basic and
// Composite is set, matching Kind.
type Unit struct {
	Kind      UnitKind
	Basic     *Group
	Composite *Composite
}

func basicUnit(g *Group) Unit         { return Unit{Kind: UnitBasic, Basic: g} }
func compositeUnit(c *Composite) Unit { return Unit{Kind: UnitComposite, Composite: c} }

// ID returns the unit's container ID.
func (u Unit) ID() WorldID {
	switch u.Kind {
	case UnitComposite:
		return u.Composite.id
	default:
		return u.Basic.id
	}
}

// Groups returns the groups the unit is made of.
func (u Unit) Groups() []*Group {
	switch u.Kind {
	case UnitComposite:
		return u.Composite.members
	default:
		return []*Group{u.Basic}
	}
}

// Step advances the unit by dt.
func (u Unit) Step(dt float64) {
	switch u.Kind {
	case UnitComposite:
		u.Composite.ProcessBoids(dt)
	default:
		u.Basic.ProcessBoids(dt)
	}
}

// Assign hands an action to the unit.
func (u Unit) Assign(a Action) {
	switch u.Kind {
	case UnitComposite:
		u.Composite.Assign(a)
	default:
		u.Basic.Assign(a)
	}
}

// SetSelected marks the unit and, for composites, every member.
func (u Unit) SetSelected(s bool) {
	switch u.Kind {
	case UnitComposite:
		u.Composite.selected = s
		for _, g := range u.Composite.members {
			g.selected = s
		}
	default:
		u.Basic.selected = s
	}
}

// idsAt appends the IDs hit at p in drill-down order: the unit, then the
// group, then the agent.
func (u Unit) idsAt(p Vec2, out []WorldID) []WorldID {
	switch u.Kind {
	case UnitComposite:
		c := u.Composite
		var inner []WorldID
		for _, g := range c.members {
			inner = groupIDsAt(g, p, inner)
		}
		if c.IsInBounds(p) || len(inner) > 0 {
			out = append(out, c.id)
		}
		return append(out, inner...)
	default:
		return groupIDsAt(u.Basic, p, out)
	}
}

func groupIDsAt(g *Group, p Vec2, out []WorldID) []WorldID {
	agent, hit := g.AgentAt(p)
	if g.IsInBounds(p) || hit {
		out = append(out, g.id)
	}
	if hit {
		out = append(out, agent)
	}
	return out
}

// idsInRect appends the IDs of every group whose center and every agent whose
// position lies inside the box. A composite is included when all of its
// members are.
func (u Unit) idsInRect(lo, hi Vec2, out []WorldID) []WorldID {
	switch u.Kind {
	case UnitComposite:
		c := u.Composite
		all := len(c.members) > 0
		var inner []WorldID
		for _, g := range c.members {
			if !inRect(g.center, lo, hi) {
				all = false
			}
			inner = groupIDsInRect(g, lo, hi, inner)
		}
		if all {
			out = append(out, c.id)
		}
		return append(out, inner...)
	default:
		return groupIDsInRect(u.Basic, lo, hi, out)
	}
}

func groupIDsInRect(g *Group, lo, hi Vec2, out []WorldID) []WorldID {
	if inRect(g.center, lo, hi) {
		out = append(out, g.id)
	}
	return append(out, g.AgentsInRect(lo, hi)...)
}

// Composite commands several groups as one. Members keep their own goal
// queues; the composite only fans orders out and tracks an enclosing circle.
type Composite struct {
	id       WorldID
	members  []*Group
	center   Vec2
	radius   float64
	selected bool
}

func newComposite(id WorldID, members []*Group) *Composite {
	c := &Composite{id: id, members: members}
	c.updateBounds()
	return c
}

func (c *Composite) ID() WorldID       { return c.id }
func (c *Composite) Members() []*Group { return c.members }
func (c *Composite) Center() Vec2      { return c.center }
func (c *Composite) Radius() float64   { return c.radius }
func (c *Composite) Selected() bool    { return c.selected }

// IsInBounds reports whether p lies inside the enclosing circle.
func (c *Composite) IsInBounds(p Vec2) bool {
	return p.Sub(c.center).Len() < c.radius
}

// ProcessBoids steps every member in order and refreshes the bounds.
func (c *Composite) ProcessBoids(dt float64) {
	for _, g := range c.members {
		g.ProcessBoids(dt)
	}
	c.updateBounds()
}

// updateBounds sets center to the agent-weighted mean of member centers and
// radius to the smallest circle around it that encloses every member circle.
func (c *Composite) updateBounds() {
	var sum Vec2
	total := 0
	for _, g := range c.members {
		n := g.Len()
		sum = sum.Add(g.center.Mul(float64(n)))
		total += n
	}
	if total == 0 {
		return
	}
	c.center = sum.Mul(1 / float64(total))
	r := 0.0
	for _, g := range c.members {
		r = math.Max(r, g.center.Sub(c.center).Len()+g.radius)
	}
	c.radius = r
}

// Assign fans the action out to the members. Moves keep each member's offset
// from the composite center; form-ups split the front into one equal segment
// per member, in member order.
func (c *Composite) Assign(a Action) {
	k := len(c.members)
	if k == 0 {
		return
	}
	switch a.Kind {
	case ActionMove, ActionAddMove, ActionColumn, ActionAddColumn:
		for _, g := range c.members {
			sub := a
			sub.Pos = a.Pos.Add(g.center.Sub(c.center))
			g.Assign(sub)
		}
	case ActionFormUp, ActionAddFormUp:
		step := a.Pos2.Sub(a.Pos).Mul(1 / float64(k))
		for i, g := range c.members {
			sub := a
			sub.Pos = a.Pos.Add(step.Mul(float64(i)))
			sub.Pos2 = sub.Pos.Add(step)
			g.Assign(sub)
		}
	}
}
