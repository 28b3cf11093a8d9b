package sim

import (
	"fmt"
	"iter"
	"math/rand"
)

// MotionState is the per-agent locomotion state.
type MotionState uint8

const (
	Stationary   MotionState = iota // at its slot, velocity zeroed
	Accelerating                    // reserved for the renderer; not set by the step
	Decelerating                    // reserved for the renderer; not set by the step
	Marching                        // steering toward its slot
	Idle                            // no directive
)

var motionStateNames = [...]string{
	Stationary:   "stationary",
	Accelerating: "accelerating",
	Decelerating: "decelerating",
	Marching:     "marching",
	Idle:         "idle",
}

func (s MotionState) String() string {
	if int(s) < len(motionStateNames) {
		return motionStateNames[s]
	}
	return fmt.Sprintf("MotionState(%d)", s)
}

func (s MotionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *MotionState) UnmarshalText(b []byte) error {
	for i, name := range motionStateNames {
		if name == string(b) {
			*s = MotionState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown motion state %q", b)
}

// Color is an RGBA colour in [0,1], only consumed by renderers.
type Color [4]float32

// Spawn spreads for RandomEntities.
const (
	spawnSpread    = 600.0
	spawnVelSpread = 500.0
)

// Entities stores agent attributes column-wise. Index i across all columns is
// one agent; every column always has the same length.
type Entities struct {
	Pos     []Vec2        `yaml:"pos"`
	Vel     []Vec2        `yaml:"vel"`
	Heading []float64     `yaml:"heading"`
	State   []MotionState `yaml:"state"`
	Color   []Color       `yaml:"color,flow"`
}

// Agent is a view of one row of an Entities store. The pointers alias the
// columns, so writes through them mutate the store.
type Agent struct {
	Index   int
	Pos     *Vec2
	Vel     *Vec2
	Heading *float64
	State   *MotionState
	Color   *Color
}

func newEntities(count int) *Entities {
	return &Entities{
		Pos:     make([]Vec2, count),
		Vel:     make([]Vec2, count),
		Heading: make([]float64, count),
		State:   make([]MotionState, count),
		Color:   make([]Color, count),
	}
}

// ZeroEntities allocates count agents with every field zeroed.
func ZeroEntities(count int) *Entities {
	return newEntities(count)
}

// RandomEntities allocates count agents scattered around origin with random
// velocities. Heading is drawn from [0,1) radians, not the full circle.
func RandomEntities(rng *rand.Rand, origin Vec2, count int) *Entities {
	e := newEntities(count)
	for i := 0; i < count; i++ {
		c := float32(i) / float32(count)
		e.Pos[i] = Vec2{
			X: origin.X + (rng.Float64()-0.5)*spawnSpread,
			Y: origin.Y + (rng.Float64()-0.5)*spawnSpread,
		}
		e.Vel[i] = Vec2{
			X: (rng.Float64() - 0.5) * spawnVelSpread,
			Y: (rng.Float64() - 0.5) * spawnVelSpread,
		}
		e.Heading[i] = rng.Float64()
		e.State[i] = Stationary
		e.Color[i] = Color{c, c, c, 1.2 - c}
	}
	return e
}

// Len returns the number of agents.
func (e *Entities) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Pos)
}

// Agent returns the view for row i.
func (e *Entities) Agent(i int) Agent {
	return Agent{
		Index:   i,
		Pos:     &e.Pos[i],
		Vel:     &e.Vel[i],
		Heading: &e.Heading[i],
		State:   &e.State[i],
		Color:   &e.Color[i],
	}
}

// All yields every agent view in index order. The sequence can be ranged
// over any number of times.
func (e *Entities) All() iter.Seq2[int, Agent] {
	return func(yield func(int, Agent) bool) {
		for i := 0; i < e.Len(); i++ {
			if !yield(i, e.Agent(i)) {
				return
			}
		}
	}
}

// Halt zeroes every velocity and marks every agent Stationary.
func (e *Entities) Halt() {
	for i := range e.Pos {
		e.Vel[i] = Vec2{}
		e.State[i] = Stationary
	}
}

// Validate reports a column whose length differs from Pos.
func (e *Entities) Validate() error {
	n := len(e.Pos)
	cols := []struct {
		name string
		l    int
	}{
		{"vel", len(e.Vel)},
		{"heading", len(e.Heading)},
		{"state", len(e.State)},
		{"color", len(e.Color)},
	}
	for _, c := range cols {
		if c.l != n {
			return fmt.Errorf("entities: column %s has %d rows, pos has %d", c.name, c.l, n)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (e *Entities) Clone() *Entities {
	out := newEntities(e.Len())
	copy(out.Pos, e.Pos)
	copy(out.Vel, e.Vel)
	copy(out.Heading, e.Heading)
	copy(out.State, e.State)
	copy(out.Color, e.Color)
	return out
}
