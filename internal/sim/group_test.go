package sim

import (
	"math"
	"testing"
)

func moveTo(x, y float64) Action {
	return Action{Kind: ActionMove, Pos: V(x, y), Dir: V(1, 0)}
}

func TestProcessBoids_SingleAgentArrives(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 1),
		WithAction(0, moveTo(100, 0)),
	)
	tick := ts.RunUntil((*TestSim).AllHolding, 10000)
	if tick < 0 {
		t.Fatalf("group never arrived\n%s", ts.SimLog.Format())
	}
	g := ts.Group(0)
	if d := g.Entities().Pos[0].Sub(V(100, 0)).Len(); d >= ArrivalMargin {
		t.Fatalf("agent %.3f from target after arrival", d)
	}
	if g.Entities().State[0] != Stationary || !g.Entities().Vel[0].IsZero() {
		t.Fatalf("arrived agent should be stationary with zero velocity, got %v %v",
			g.Entities().State[0], g.Entities().Vel[0])
	}
	if !ts.SimLog.HasEntry("goal", "pop", "move(100,0") {
		t.Fatalf("expected a move pop\n%s", ts.SimLog.Format())
	}
	if ts.SimLog.CountCategory("goal", "hold") != 1 {
		t.Fatalf("expected exactly one hold entry\n%s", ts.SimLog.Format())
	}
}

func TestProcessBoids_FourAgentsGather(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 4),
		WithAction(0, moveTo(100, 0)),
	)
	if ts.RunUntil((*TestSim).AllHolding, 10000) < 0 {
		t.Fatalf("move never completed\n%s", ts.World.Log().Summary(ts.World))
	}
	g := ts.Group(0)
	if d := g.Center().Sub(V(100, 0)).Len(); d >= ArrivalMargin {
		t.Fatalf("center %.3f from target", d)
	}
	for i, s := range g.Entities().State {
		if s != Stationary {
			t.Fatalf("agent %d is %v after hold", i, s)
		}
	}
	if g.Direction() != V(1, 0) {
		t.Fatalf("expected direction (1,0), got %v", g.Direction())
	}
}

func TestProcessBoids_HoldFreezesPositions(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 3),
		WithAction(0, moveTo(40, 0)),
	)
	if ts.RunUntil((*TestSim).AllHolding, 10000) < 0 {
		t.Fatal("move never completed")
	}
	before := ts.Group(0).Entities().Clone()
	ts.RunTicks(200)
	after := ts.Group(0).Entities()
	for i := range before.Pos {
		if before.Pos[i] != after.Pos[i] {
			t.Fatalf("agent %d moved while holding: %v -> %v", i, before.Pos[i], after.Pos[i])
		}
	}
	if ts.SimLog.CountCategory("goal", "pop") != 1 {
		t.Fatalf("hold must never pop\n%s", ts.SimLog.Format())
	}
}

func TestProcessBoids_QueuedGoalsRunInOrder(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 1),
		WithAction(0, moveTo(50, 0)),
		WithAction(0, Action{Kind: ActionAddMove, Pos: V(50, 50)}),
	)
	if n := len(ts.Group(0).Goals()); n != 2 {
		t.Fatalf("expected two queued goals, got %d", n)
	}
	if ts.RunUntil((*TestSim).AllHolding, 20000) < 0 {
		t.Fatalf("queue never drained\n%s", ts.SimLog.Format())
	}
	if d := ts.Group(0).Entities().Pos[0].Sub(V(50, 50)).Len(); d >= ArrivalMargin {
		t.Fatalf("agent %.3f from last waypoint", d)
	}
	pops := ts.SimLog.Filter("goal", "pop")
	if len(pops) != 2 || pops[0].Tick >= pops[1].Tick {
		t.Fatalf("expected two ordered pops\n%s", ts.SimLog.Format())
	}
}

func TestProcessBoids_EmptyGroupIsSafe(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(5, 5, 0),
		WithAction(0, moveTo(100, 0)),
	)
	ts.RunTicks(50)
	g := ts.Group(0)
	if g.Center() != V(5, 5) || g.Radius() != 0 {
		t.Fatalf("empty group bounds changed: %v r=%v", g.Center(), g.Radius())
	}
	if g.ActiveGoal().Kind != GoalMove {
		t.Fatalf("empty group should keep its goal, got %v", g.ActiveGoal())
	}
}

func TestProcessBoids_DegenerateFrontStaysFinite(t *testing.T) {
	ts := NewTestSim(
		WithSeed(11),
		WithGroup(0, 0, 12),
		WithAction(0, Action{Kind: ActionFormUp, Pos: V(50, 50), Pos2: V(50, 50)}),
		WithGroup(300, 0, 6),
		WithGoals(1, FrontGoal(V(300, 0), V(348, 0), Vec2{})),
	)
	ts.RunTicks(300)
	for _, g := range ts.World.Groups() {
		for i, p := range g.Entities().Pos {
			if !p.IsFinite() || !g.Entities().Vel[i].IsFinite() {
				t.Fatalf("%s agent %d went non-finite: %v", g.ID(), i, p)
			}
			if math.IsNaN(g.Entities().Heading[i]) {
				t.Fatalf("%s agent %d heading is NaN", g.ID(), i)
			}
		}
	}
	if f := ts.Group(1).Formation(); f != FormationPhalanx {
		t.Fatalf("front without a facing should use phalanx, got %v", f)
	}
}

func TestProcessBoids_HeadingSkipsZero(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 1),
		WithAction(0, moveTo(100, 0)),
	)
	ts.Group(0).Entities().Heading[0] = 1.5
	ts.RunTicks(20)
	if h := ts.Group(0).Entities().Heading[0]; h != 1.5 {
		t.Fatalf("heading along +x computes to 0 and must be skipped, got %v", h)
	}
	ts.World.Assign(ts.Group(0).ID(), Action{Kind: ActionMove, Pos: V(0, 500), Dir: V(0, 1)})
	ts.RunTicks(400)
	if h := ts.Group(0).Entities().Heading[0]; h <= 0 || h >= math.Pi {
		t.Fatalf("heading should point into the upper half plane, got %v", h)
	}
}

func TestColumnGoal_SlotsTrailBehindHead(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 5),
		WithAction(0, Action{Kind: ActionColumn, Pos: V(200, 0)}),
	)
	ts.RunTicks(1)
	slots := ts.Group(0).Slots()
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	for i, s := range slots {
		want := V(200-FormationSpacing*float64(i), 0)
		if !near(s, want) {
			t.Fatalf("slot %d: expected %v, got %v", i, want, s)
		}
	}
}

func TestFrontGoal_SlotsAndDirection(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 8),
		WithAction(0, Action{Kind: ActionFormUp, Pos: V(0, 100), Pos2: V(96, 100), Dir: V(0, 1)}),
	)
	ts.RunTicks(1)
	g := ts.Group(0)
	if g.Direction() != V(0, 1) {
		t.Fatalf("expected direction (0,1), got %v", g.Direction())
	}
	if g.Formation() != FormationDirectional {
		t.Fatalf("expected directional, got %v", g.Formation())
	}
	slots := g.Slots()
	if want := V(24, 124); !near(slots[5], want) {
		t.Fatalf("slot 5: expected %v, got %v", want, slots[5])
	}
	if ts.RunUntil((*TestSim).AllHolding, 30000) < 0 {
		t.Fatalf("front never formed\n%s", ts.World.Log().Summary(ts.World))
	}
}

func TestIdleGoal_SlotsWithinSpacing(t *testing.T) {
	ts := NewTestSim(WithSeed(5), WithGroup(100, 100, 20))
	ts.RunTicks(1)
	for i, s := range ts.Group(0).Slots() {
		if d := s.Sub(V(100, 100)).Len(); d > FormationSpacing+1e-9 {
			t.Fatalf("idle slot %d is %.2f from origin", i, d)
		}
	}
	if ts.Group(0).Formation() != FormationIdle {
		t.Fatalf("expected idle formation, got %v", ts.Group(0).Formation())
	}
}

func TestGroupAgent_LookupAndErrors(t *testing.T) {
	ts := NewTestSim(WithZeroGroup(0, 0, 2))
	g := ts.Group(0)
	a, err := g.Agent(AgentID(g.ID(), 1))
	if err != nil || a.Index != 1 {
		t.Fatalf("expected agent 1, got %+v (%v)", a, err)
	}
	*a.Pos = V(9, 9)
	if g.Entities().Pos[1] != V(9, 9) {
		t.Fatal("agent view must alias the store")
	}
	if _, err := g.Agent(AgentID(g.ID(), 2)); err == nil {
		t.Fatal("expected error for out-of-range agent")
	}
	if _, err := g.Agent(AgentID(g.ID()+GroupCapacity, 0)); err == nil {
		t.Fatal("expected error for foreign agent")
	}
}

func TestProcessBoids_SeparationPushesApart(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 2),
		WithAction(0, moveTo(1000, 0)),
	)
	e := ts.Group(0).Entities()
	e.Pos[0] = V(0, -2.5)
	e.Pos[1] = V(0, 2.5)
	ts.RunTicks(1)
	// Seeking alone would pull both toward y=0; the neighbour push wins.
	if e.Vel[0].Y >= 0 || e.Vel[1].Y <= 0 {
		t.Fatalf("agents 5 apart should move apart, vel0=%v vel1=%v", e.Vel[0], e.Vel[1])
	}
	if math.Abs(e.Vel[0].Y+e.Vel[1].Y) > 1e-12 {
		t.Fatalf("push should be symmetric, vel0=%v vel1=%v", e.Vel[0], e.Vel[1])
	}
}

func TestProcessBoids_BoundsUsePreStepPositions(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(10, 10, 3),
		WithAction(0, moveTo(1000, 10)),
	)
	g := ts.Group(0)
	e := g.Entities()
	e.Pos[0] = V(13, 10)
	e.Pos[1] = V(10, 6)
	e.Pos[2] = V(9, 10)
	ts.RunTicks(1)
	// Radius is measured from the center before the step (10,10), not from
	// the new centroid.
	if math.Abs(g.Radius()-4) > 1e-9 {
		t.Fatalf("expected radius 4, got %v", g.Radius())
	}
	want := V(32.0/3, 26.0/3)
	if g.Center().Sub(want).Len() > 1e-9 {
		t.Fatalf("expected center %v, got %v", want, g.Center())
	}
}

func TestSetGoals_DropsBlockingHold(t *testing.T) {
	ts := NewTestSim(WithZeroGroup(0, 0, 1))
	g := ts.Group(0)
	g.SetGoals([]Goal{HoldGoal(), MoveGoal(V(40, 0), V(1, 0))})
	if g.ActiveGoal().Kind != GoalMove || len(g.Goals()) != 1 {
		t.Fatalf("expected lone move, got %v", g.Goals())
	}
	if ts.RunUntil((*TestSim).AllHolding, 10000) < 0 {
		t.Fatalf("group never moved\n%s", ts.SimLog.Format())
	}
	if d := g.Entities().Pos[0].Sub(V(40, 0)).Len(); d >= ArrivalMargin {
		t.Fatalf("agent %.3f from target", d)
	}

	g.SetGoals([]Goal{MoveGoal(V(0, 0), V(1, 0)), HoldGoal(), ColumnGoal(V(9, 9)), HoldGoal()})
	got := g.Goals()
	if len(got) != 3 || got[0].Kind != GoalMove || got[1].Kind != GoalColumn || got[2].Kind != GoalHold {
		t.Fatalf("expected move, column, hold; got %v", got)
	}
	g.SetGoals(nil)
	if g.ActiveGoal().Kind != GoalHold {
		t.Fatalf("empty list should leave hold, got %v", g.ActiveGoal())
	}
}
