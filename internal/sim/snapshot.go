package sim

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// GroupState is the persisted form of a Group. Slots holds the cached slot
// offsets of the active goal, so random formations keep their targets across
// a reload; it is empty when no plan was cached.
type GroupState struct {
	ID        WorldID   `yaml:"id"`
	Center    Vec2      `yaml:"center"`
	Direction Vec2      `yaml:"direction"`
	Radius    float64   `yaml:"radius"`
	Entities  *Entities `yaml:"entities"`
	Goals     []Goal    `yaml:"goals"`
	Formation Formation `yaml:"formation"`
	Slots     []Vec2    `yaml:"slots,omitempty,flow"`
	Selected  bool      `yaml:"selected,omitempty"`
}

// CompositeState is the persisted form of a Composite.
type CompositeState struct {
	ID       WorldID      `yaml:"id"`
	Members  []GroupState `yaml:"members"`
	Selected bool         `yaml:"selected,omitempty"`
}

// UnitState holds exactly one of Group and Composite.
type UnitState struct {
	Group     *GroupState     `yaml:"group,omitempty"`
	Composite *CompositeState `yaml:"composite,omitempty"`
}

// WorldState is the persisted form of a World.
type WorldState struct {
	Tick             int         `yaml:"tick"`
	Issued           uint64      `yaml:"next_group"`
	IssuedComposites uint64      `yaml:"next_composite,omitempty"`
	Units            []UnitState `yaml:"units"`
}

// Snapshot captures g. The entity store is deep-copied.
func (g *Group) Snapshot() GroupState {
	var slots []Vec2
	if g.planned {
		slots = append([]Vec2(nil), g.slots...)
	}
	return GroupState{
		ID:        g.id,
		Center:    g.center,
		Direction: g.direction,
		Radius:    g.radius,
		Entities:  g.entities.Clone(),
		Goals:     g.goals.Items(),
		Formation: g.march,
		Slots:     slots,
		Selected:  g.selected,
	}
}

func (st GroupState) restore(rng *rand.Rand) (*Group, error) {
	if st.ID == WildcardID || !IsContainer(st.ID) || IsCompositeID(st.ID) {
		return nil, fmt.Errorf("group %d: not a group id", uint64(st.ID))
	}
	if st.Entities == nil {
		st.Entities = ZeroEntities(0)
	}
	if err := st.Entities.Validate(); err != nil {
		return nil, fmt.Errorf("group %s: %w", st.ID, err)
	}
	if WorldID(st.Entities.Len()) >= GroupCapacity {
		return nil, fmt.Errorf("group %s: %d agents exceeds capacity %d", st.ID, st.Entities.Len(), GroupCapacity)
	}
	g := newGroup(st.ID, st.Center, st.Entities, rng)
	g.radius = st.Radius
	if !st.Direction.IsZero() {
		g.direction = st.Direction
	}
	g.march = st.Formation
	g.selected = st.Selected
	g.SetGoals(st.Goals)
	if len(st.Slots) > 0 {
		if len(st.Slots) != st.Entities.Len() {
			return nil, fmt.Errorf("group %s: %d slots for %d agents", st.ID, len(st.Slots), st.Entities.Len())
		}
		g.plan = g.resolve(g.goals.Front())
		g.formation = g.plan.formation
		g.slots = st.Slots
		g.planned = true
	}
	return g, nil
}

// Snapshot captures the whole world in stepping order.
func (w *World) Snapshot() WorldState {
	st := WorldState{Tick: w.tick, Issued: w.ids.Issued(), IssuedComposites: w.cids.Issued()}
	for _, u := range w.units {
		switch u.Kind {
		case UnitComposite:
			cs := &CompositeState{ID: u.Composite.id, Selected: u.Composite.selected}
			for _, g := range u.Composite.members {
				cs.Members = append(cs.Members, g.Snapshot())
			}
			st.Units = append(st.Units, UnitState{Composite: cs})
		default:
			gs := u.Basic.Snapshot()
			st.Units = append(st.Units, UnitState{Group: &gs})
		}
	}
	return st
}

// Save writes the world as YAML.
func (w *World) Save(out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(w.Snapshot()); err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	w.emit("--", "snapshot", "save", fmt.Sprintf("%d units", len(w.units)), float64(len(w.units)))
	return nil
}

// RestoreWorld rebuilds a world from st. IDs are kept, and the allocator
// never reissues any of them.
func RestoreWorld(st WorldState, rng *rand.Rand, log *SimLog) (*World, error) {
	w := NewWorld(rng, log)
	w.tick = st.Tick
	w.ids.Reserve(GroupCapacity * WorldID(st.Issued))
	w.cids.Reserve(CompositeIDBase + GroupCapacity*WorldID(st.IssuedComposites))
	seen := map[WorldID]bool{}
	claim := func(id WorldID) error {
		if seen[id] {
			return fmt.Errorf("duplicate id %s", id)
		}
		seen[id] = true
		if IsCompositeID(id) {
			w.cids.Reserve(id)
		} else {
			w.ids.Reserve(id)
		}
		return nil
	}
	for i, us := range st.Units {
		switch {
		case us.Group != nil && us.Composite == nil:
			g, err := us.Group.restore(w.rng)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", i, err)
			}
			if err := claim(g.id); err != nil {
				return nil, fmt.Errorf("unit %d: %w", i, err)
			}
			w.attach(g)
			w.units = append(w.units, basicUnit(g))
		case us.Composite != nil && us.Group == nil:
			cs := us.Composite
			if !IsContainer(cs.ID) || !IsCompositeID(cs.ID) {
				return nil, fmt.Errorf("unit %d: composite %d: not a composite id", i, uint64(cs.ID))
			}
			if err := claim(cs.ID); err != nil {
				return nil, fmt.Errorf("unit %d: %w", i, err)
			}
			members := make([]*Group, 0, len(cs.Members))
			for _, ms := range cs.Members {
				g, err := ms.restore(w.rng)
				if err != nil {
					return nil, fmt.Errorf("unit %d: %w", i, err)
				}
				if err := claim(g.id); err != nil {
					return nil, fmt.Errorf("unit %d: %w", i, err)
				}
				w.attach(g)
				members = append(members, g)
			}
			c := newComposite(cs.ID, members)
			c.selected = cs.Selected
			w.units = append(w.units, compositeUnit(c))
		default:
			return nil, fmt.Errorf("unit %d: %w", i, errBadUnit)
		}
	}
	w.emit("--", "snapshot", "load", fmt.Sprintf("%d units", len(w.units)), float64(len(w.units)))
	return w, nil
}

var errBadUnit = errors.New("exactly one of group and composite must be set")

// LoadWorld reads a YAML world written by Save.
func LoadWorld(in io.Reader, rng *rand.Rand, log *SimLog) (*World, error) {
	var st WorldState
	if err := yaml.NewDecoder(in).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return RestoreWorld(st, rng, log)
}

// MarshalGroup renders one group as YAML, for clipboard export.
func MarshalGroup(g *Group) ([]byte, error) {
	return yaml.Marshal(g.Snapshot())
}

// AgentState is the exported form of one agent.
type AgentState struct {
	ID      WorldID     `yaml:"id"`
	Pos     Vec2        `yaml:"pos"`
	Vel     Vec2        `yaml:"vel"`
	Heading float64     `yaml:"heading"`
	State   MotionState `yaml:"state"`
	Color   Color       `yaml:"color,flow"`
}

// MarshalAgent renders the agent addressed by id as YAML.
func MarshalAgent(g *Group, id WorldID) ([]byte, error) {
	a, err := g.Agent(id)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(AgentState{
		ID:      id,
		Pos:     *a.Pos,
		Vel:     *a.Vel,
		Heading: *a.Heading,
		State:   *a.State,
		Color:   *a.Color,
	})
}
