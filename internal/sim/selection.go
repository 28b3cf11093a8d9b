package sim

import (
	"slices"
)

// Selection is the set of IDs the player currently has selected. It only
// holds IDs, never references into groups.
type Selection struct {
	ids []WorldID
}

func (s *Selection) IDs() []WorldID { return slices.Clone(s.ids) }
func (s *Selection) Empty() bool    { return len(s.ids) == 0 }
func (s *Selection) Clear()         { s.ids = s.ids[:0] }

func (s *Selection) Contains(id WorldID) bool {
	return slices.Contains(s.ids, id)
}

// Set replaces the selection.
func (s *Selection) Set(ids ...WorldID) {
	s.ids = append(s.ids[:0], ids...)
}

func (s *Selection) toggle(id WorldID) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// Click applies a left click that hit ids (as returned by World.IDsAt).
//
// With toggle set every hit ID is flipped in or out. Otherwise a click on
// nothing clears, a first click selects the outermost hit, and repeated
// clicks drill: a selected agent yields its group, a selected container
// yields the hit agent inside it, and a click elsewhere in a crowd moves to
// a neighbouring agent.
func (s *Selection) Click(ids []WorldID, toggle bool) {
	if toggle {
		for _, id := range ids {
			s.toggle(id)
		}
		return
	}
	if len(ids) == 0 {
		s.Clear()
		return
	}
	if s.Empty() {
		s.Set(ids[0])
		return
	}

	var containers, agents []WorldID
	for _, id := range ids {
		if IsContainer(id) {
			containers = append(containers, id)
		} else {
			agents = append(agents, id)
		}
	}

	for _, a := range agents {
		if s.Contains(a) {
			g, _ := GroupOf(a)
			s.Set(g)
			return
		}
	}

	for i, c := range containers {
		if !s.Contains(c) {
			continue
		}
		for _, a := range agents {
			if IsAgentOf(a, c) {
				s.Set(a)
				return
			}
		}
		// composites list their hit member right after themselves
		if i+1 < len(containers) {
			s.Set(containers[i+1])
			return
		}
		s.Clear()
		return
	}

	for _, a := range agents {
		if !s.Contains(a) {
			s.Set(a)
			return
		}
	}
	s.Set(ids[0])
}

// Drag applies a rectangle selection that hit ids (as returned by
// World.IDsInRect). Containers win over agents; agents are only selected
// when no container was fully enclosed.
func (s *Selection) Drag(ids []WorldID, add bool) {
	var containers, agents []WorldID
	for _, id := range ids {
		if IsContainer(id) {
			containers = append(containers, id)
		} else {
			agents = append(agents, id)
		}
	}
	pick := containers
	if len(pick) == 0 {
		pick = agents
	}
	if !add {
		s.Set(pick...)
		return
	}
	for _, id := range pick {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
}

// Targets returns the container IDs orders should go to: selected containers
// plus the groups of selected agents, deduplicated in selection order.
func (s *Selection) Targets() []WorldID {
	var out []WorldID
	for _, id := range s.ids {
		g, ok := GroupOf(id)
		if !ok {
			continue
		}
		if IsContainer(id) {
			g = id
		}
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

// GestureOrder turns a command-button press/release pair into an order for a
// unit centred at from. A release within ClickPrecision of the press is a
// move to the release point; anything longer is a form-up along the dragged
// line, facing away from the unit.
func GestureOrder(press, release, from Vec2, queue bool) Action {
	if release.Sub(press).Man() < ClickPrecision {
		kind := ActionMove
		if queue {
			kind = ActionAddMove
		}
		return Action{Kind: kind, Pos: release}
	}
	kind := ActionFormUp
	if queue {
		kind = ActionAddFormUp
	}
	facing := release.Sub(press).Perp().Normalise()
	mid := press.Add(release).Mul(0.5)
	if mid.Sub(from).Dot(facing) < 0 {
		facing = facing.Neg()
	}
	return Action{Kind: kind, Pos: press, Pos2: release, Dir: facing}
}
