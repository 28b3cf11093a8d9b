package sim

import (
	"fmt"
	"math/rand"
)

// Formation identifies how a group lays its agents out around the goal point.
type Formation uint8

const (
	FormationDefault     Formation = iota // loose random jitter
	FormationIdle                         // circular scatter
	FormationPhalanx                      // axis-aligned block, rowWidth columns wide
	FormationDirectional                  // block whose rows follow the goal's front line
)

var formationNames = [...]string{
	FormationDefault:     "default",
	FormationIdle:        "idle",
	FormationPhalanx:     "phalanx",
	FormationDirectional: "directional",
}

// FormationSpacing is the world-unit gap between adjacent slots. Formation
// offsets are in slot units and get multiplied by it exactly once.
const FormationSpacing = 24.0

func (f Formation) String() string {
	if int(f) < len(formationNames) {
		return formationNames[f]
	}
	return fmt.Sprintf("Formation(%d)", f)
}

func (f Formation) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText never fails: names it does not know come back as
// FormationDefault.
func (f *Formation) UnmarshalText(b []byte) error {
	*f = FormationDefault
	for i, name := range formationNames {
		if name == string(b) {
			*f = Formation(i)
			break
		}
	}
	return nil
}

// DefaultFormation returns a random offset inside one slot.
func DefaultFormation(rng *rand.Rand) Vec2 {
	return Vec2{X: rng.Float64(), Y: rng.Float64()}
}

// PhalanxFormation places index at column index%width, row index/width.
// A zero width yields (0,0).
func PhalanxFormation(index, width int) Vec2 {
	if width <= 0 {
		return Vec2{}
	}
	return Vec2{X: float64(index % width), Y: float64(index / width)}
}

// IdleFormation rejection-samples a point inside the unit disk.
func IdleFormation(rng *rand.Rand) Vec2 {
	for {
		x := rng.Float64()*2 - 1
		y := rng.Float64()*2 - 1
		if x*x+y*y <= 1 {
			return Vec2{X: x, Y: y}
		}
	}
}

// DirectionalFormation is PhalanxFormation with the column and row axes
// replaced by xdir and ydir, which callers pass already normalised.
func DirectionalFormation(index, width int, xdir, ydir Vec2) Vec2 {
	if width <= 0 {
		return Vec2{}
	}
	col := float64(index % width)
	row := float64(index / width)
	return xdir.Mul(col).Add(ydir.Mul(row))
}

// Offset dispatches to the formation function for f.
func (f Formation) Offset(rng *rand.Rand, index, width int, xdir, ydir Vec2) Vec2 {
	switch f {
	case FormationIdle:
		return IdleFormation(rng)
	case FormationPhalanx:
		return PhalanxFormation(index, width)
	case FormationDirectional:
		return DirectionalFormation(index, width, xdir, ydir)
	default:
		return DefaultFormation(rng)
	}
}

// formationSlots returns the spacing-scaled offset of every agent slot.
func formationSlots(f Formation, rng *rand.Rand, count, width int, xdir, ydir Vec2) []Vec2 {
	slots := make([]Vec2, count)
	for i := range slots {
		slots[i] = f.Offset(rng, i, width, xdir, ydir).Mul(FormationSpacing)
	}
	return slots
}
