package sim

import (
	"math"
	"math/rand"
	"testing"
)

func near(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestVec2Clamp_NeverExceedsMax(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := V((rng.Float64()-0.5)*1000, (rng.Float64()-0.5)*1000)
		max := rng.Float64() * 300
		v.Clamp(max)
		if v.Len() > max+1e-9 {
			t.Fatalf("clamp(%.3f) left length %.6f", max, v.Len())
		}
	}
}

func TestVec2Clamp_ShortVectorUnchanged(t *testing.T) {
	v := V(3, 4)
	v.Clamp(10)
	if v != V(3, 4) {
		t.Fatalf("expected (3,4) untouched, got %v", v)
	}
	v.Clamp(1)
	if !near(v, V(0.6, 0.8)) {
		t.Fatalf("expected (0.6,0.8), got %v", v)
	}
}

func TestVec2Clamp_ZeroAndNegative(t *testing.T) {
	z := Vec2{}
	z.Clamp(5)
	if !z.IsZero() {
		t.Fatalf("zero vector changed: %v", z)
	}
	v := V(1, 1)
	v.Clamp(-3)
	if !v.IsZero() {
		t.Fatalf("negative max should collapse to zero, got %v", v)
	}
}

func TestVec2RotAlign(t *testing.T) {
	v := V(2, 1)
	if got := v.RotAlign(V(1, 0)); !near(got, v) {
		t.Fatalf("align to +x should be identity, got %v", got)
	}
	if got := v.RotAlign(Vec2{}); got != v {
		t.Fatalf("align to zero should be identity, got %v", got)
	}
	if got := V(1, 0).RotAlign(V(0, 2)); !near(got, V(0, 1)) {
		t.Fatalf("expected (0,1), got %v", got)
	}
	if got := V(1, 0).RotAlign(V(-3, 0)); !near(got, V(-1, 0)) {
		t.Fatalf("expected (-1,0), got %v", got)
	}
}

func TestVec2Normalise_ZeroStaysZero(t *testing.T) {
	if got := (Vec2{}).Normalise(); !got.IsZero() || !got.IsFinite() {
		t.Fatalf("expected finite zero, got %v", got)
	}
	if got := V(0, -5).Normalise(); !near(got, V(0, -1)) {
		t.Fatalf("expected (0,-1), got %v", got)
	}
}

func TestVec2PerpAndMan(t *testing.T) {
	if got := V(1, 0).Perp(); got != V(0, 1) {
		t.Fatalf("perp of +x should be +y, got %v", got)
	}
	if got := V(-3, 4).Man(); got != 7 {
		t.Fatalf("expected manhattan 7, got %v", got)
	}
	if V(math.NaN(), 0).IsFinite() || V(0, math.Inf(1)).IsFinite() {
		t.Fatal("NaN and Inf vectors must not be finite")
	}
}
