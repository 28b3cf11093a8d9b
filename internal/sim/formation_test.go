package sim

import (
	"math/rand"
	"testing"
)

func TestPhalanxFormation(t *testing.T) {
	if got := PhalanxFormation(7, 3); got != V(1, 2) {
		t.Fatalf("expected (1,2), got %v", got)
	}
	if got := PhalanxFormation(7, 0); got != (Vec2{}) {
		t.Fatalf("zero width should give origin, got %v", got)
	}
	if got := PhalanxFormation(0, 4); got != (Vec2{}) {
		t.Fatalf("first slot should be origin, got %v", got)
	}
}

func TestDirectionalFormation_FollowsAxes(t *testing.T) {
	got := DirectionalFormation(4, 2, V(0, 1), V(-1, 0))
	if !near(got, V(-2, 0)) {
		t.Fatalf("expected (-2,0), got %v", got)
	}
	if got := DirectionalFormation(5, 0, V(1, 0), V(0, 1)); got != (Vec2{}) {
		t.Fatalf("zero width should give origin, got %v", got)
	}
}

func TestIdleFormation_InsideUnitDisk(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		if p := IdleFormation(rng); p.Len() > 1 {
			t.Fatalf("sample %d outside unit disk: %v", i, p)
		}
	}
}

func TestDefaultFormation_InsideUnitSquare(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		p := DefaultFormation(rng)
		if p.X < 0 || p.X >= 1 || p.Y < 0 || p.Y >= 1 {
			t.Fatalf("sample %d outside [0,1)^2: %v", i, p)
		}
	}
}

func TestFormationSlots_ScaledOnce(t *testing.T) {
	slots := formationSlots(FormationPhalanx, nil, 4, 2, Vec2{}, Vec2{})
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if slots[3] != V(FormationSpacing, FormationSpacing) {
		t.Fatalf("expected (%v,%v), got %v", FormationSpacing, FormationSpacing, slots[3])
	}
}

func TestFormationUnmarshal_UnknownFallsBack(t *testing.T) {
	f := FormationPhalanx
	if err := f.UnmarshalText([]byte("wedge")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != FormationDefault {
		t.Fatalf("expected default, got %v", f)
	}
	if err := f.UnmarshalText([]byte("directional")); err != nil || f != FormationDirectional {
		t.Fatalf("expected directional, got %v (%v)", f, err)
	}
}
