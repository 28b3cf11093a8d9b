package game

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Garsondee/Boid-Drill/internal/config"
	"github.com/Garsondee/Boid-Drill/internal/sim"
)

// newTestGame builds a Game without any ebiten images so input handling can
// be exercised headless.
func newTestGame(t *testing.T, opts ...sim.SimOption) (*Game, *sim.TestSim) {
	t.Helper()
	ts := sim.NewTestSim(opts...)
	cfg := config.Defaults()
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "snap.yaml")
	g := &Game{
		cfg:       cfg,
		log:       zap.NewNop(),
		world:     ts.World,
		feed:      NewThoughtLog(),
		simSpeed:  1,
		lastSpeed: 1,
		gameWidth: 800, gameHeight: 600,
	}
	g.cam = newCamera(800, 600, 1)
	return g, ts
}

func TestCamera_RoundTrip(t *testing.T) {
	c := newCamera(800, 600, 2)
	c.x, c.y = 100, 50
	p := c.toWorld(424, 324, 24, 24)
	if p != sim.V(100, 50) {
		t.Fatalf("viewport centre should map to camera centre, got %v", p)
	}
	sx, sy := c.toScreen(sim.V(110, 50), 24, 24)
	if sx != 444 || sy != 324 {
		t.Fatalf("expected (444,324), got (%v,%v)", sx, sy)
	}
	c.zoomBy(100)
	if c.zoom != zoomMax {
		t.Fatalf("zoom should clamp to %v, got %v", zoomMax, c.zoom)
	}
	c.zoomBy(0)
	if c.zoom != zoomMax {
		t.Fatal("non-positive factor must be ignored")
	}
}

func TestApplyLeft_ClickDrillsIntoAgent(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(10, 10, 1))
	grp := ts.Group(0)
	g.applyLeft(sim.V(10, 10), sim.V(11, 10), false, false)
	if !g.sel.Contains(grp.ID()) || !grp.Selected() {
		t.Fatalf("first click should select the group, got %v", g.sel.IDs())
	}
	g.applyLeft(sim.V(10, 10), sim.V(10, 10), false, false)
	agent := sim.AgentID(grp.ID(), 0)
	if !g.sel.Contains(agent) || g.inspector.target != agent {
		t.Fatalf("second click should select the agent, got %v", g.sel.IDs())
	}
}

func TestApplyLeft_DragSelectsGroups(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(10, 10, 2), sim.WithZeroGroup(100, 10, 2))
	g.applyLeft(sim.V(0, 0), sim.V(200, 50), false, false)
	want := []sim.WorldID{ts.Group(0).ID(), ts.Group(1).ID()}
	got := g.sel.IDs()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
	g.applyLeft(sim.V(500, 500), sim.V(501, 500), false, false)
	if !g.sel.Empty() || ts.Group(0).Selected() {
		t.Fatal("click on empty ground should deselect")
	}
}

func TestApplyRight_OrdersSelection(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 3), sim.WithZeroGroup(300, 0, 3))
	g.sel.Set(ts.Group(0).ID())
	g.applyRight(sim.V(50, 50), sim.V(50, 50), false)
	if goal := ts.Group(0).ActiveGoal(); goal.Kind != sim.GoalMove || goal.A != sim.V(50, 50) {
		t.Fatalf("expected move to (50,50), got %v", goal)
	}
	if ts.Group(1).ActiveGoal().Kind != sim.GoalIdle {
		t.Fatal("unselected group must keep idling")
	}
	g.applyRight(sim.V(0, 100), sim.V(96, 100), true)
	if goals := ts.Group(0).Goals(); len(goals) != 2 || goals[1].Kind != sim.GoalFront {
		t.Fatalf("expected queued front, got %v", goals)
	}
}

func TestIssueColumn_AgentSelectionOrdersGroup(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 3))
	g.sel.Set(sim.AgentID(ts.Group(0).ID(), 1))
	g.issueColumn(sim.V(100, 0), false)
	if goal := ts.Group(0).ActiveGoal(); goal.Kind != sim.GoalColumn {
		t.Fatalf("expected column, got %v", goal)
	}
}

func TestToggleMarch(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 3))
	g.sel.Set(ts.Group(0).ID())
	g.toggleMarch()
	if ts.Group(0).MarchFormation() != sim.FormationDefault {
		t.Fatalf("expected loose march, got %v", ts.Group(0).MarchFormation())
	}
	g.toggleMarch()
	if ts.Group(0).MarchFormation() != sim.FormationDirectional {
		t.Fatalf("expected ranked march, got %v", ts.Group(0).MarchFormation())
	}
}

func TestCombine_FormsComposite(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 2), sim.WithZeroGroup(100, 0, 2))
	g.sel.Set(ts.Group(0).ID())
	g.combine()
	if len(g.world.Units()) != 2 || !strings.Contains(g.status, "two or more") {
		t.Fatalf("one group must not combine, status=%q", g.status)
	}
	g.sel.Set(ts.Group(0).ID(), ts.Group(1).ID())
	g.combine()
	units := g.world.Units()
	if len(units) != 1 || units[0].Kind != sim.UnitComposite {
		t.Fatalf("expected one composite unit, got %d units", len(units))
	}
	if ids := g.sel.IDs(); len(ids) != 1 || ids[0] != units[0].ID() {
		t.Fatalf("composite should be selected, got %v", ids)
	}
}

func TestSaveLoad_RestoresWorld(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 2))
	ts.World.Assign(ts.Group(0).ID(), sim.Action{Kind: sim.ActionMove, Pos: sim.V(80, 0)})
	ts.RunTicks(10)
	g.save()
	if !strings.HasPrefix(g.status, "saved") {
		t.Fatalf("save failed: %q", g.status)
	}
	savedPos := ts.Group(0).Entities().Pos[0]
	ts.RunTicks(50)

	g.sel.Set(ts.Group(0).ID())
	g.load()
	if !strings.HasPrefix(g.status, "loaded") {
		t.Fatalf("load failed: %q", g.status)
	}
	if g.World() == ts.World || g.World().Tick() != 10 {
		t.Fatalf("expected a fresh world at tick 10, got tick %d", g.World().Tick())
	}
	grp, ok := g.World().Group(ts.Group(0).ID())
	if !ok || grp.Entities().Pos[0] != savedPos {
		t.Fatal("loaded agent position differs from the saved one")
	}
	if !g.sel.Empty() {
		t.Fatal("loading must clear the selection")
	}
}

func TestLoad_MissingFileKeepsWorld(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 2))
	g.load()
	if g.World() != ts.World || g.status != "load failed" {
		t.Fatalf("expected world untouched, status=%q", g.status)
	}
}

func TestCopyInspector(t *testing.T) {
	g, ts := newTestGame(t, sim.WithZeroGroup(0, 0, 2))
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	var got string
	writeClipboard = func(s string) error { got = s; return nil }

	g.copyInspector()
	if g.status != "nothing to copy" || got != "" {
		t.Fatalf("nothing inspected yet, status=%q", g.status)
	}

	g.inspector.target = ts.Group(0).ID()
	g.copyInspector()
	if !strings.Contains(got, "formation: directional") {
		t.Fatalf("expected group yaml, got:\n%s", got)
	}

	writeClipboard = func(string) error { return errors.New("no xclip") }
	g.copyInspector()
	if g.status != "clipboard unavailable" {
		t.Fatalf("expected clipboard failure status, got %q", g.status)
	}
}

func TestInspectLines(t *testing.T) {
	ts := sim.NewTestSim(
		sim.WithZeroGroup(0, 0, 2),
		sim.WithZeroGroup(50, 0, 1),
		sim.WithZeroGroup(90, 0, 1),
		sim.WithComposite(1, 2),
	)
	w := ts.World
	grp := ts.Group(0)
	if lines := inspectLines(w, grp.ID()); len(lines) == 0 || !strings.Contains(lines[0], "GROUP G1") {
		t.Fatalf("unexpected group lines %v", lines)
	}
	if lines := inspectLines(w, sim.AgentID(grp.ID(), 1)); len(lines) == 0 || !strings.Contains(lines[0], "AGENT G1.1") {
		t.Fatalf("unexpected agent lines %v", lines)
	}
	c := w.Units()[1]
	if lines := inspectLines(w, c.ID()); len(lines) != 7 || !strings.Contains(lines[0], "COMPOSITE") {
		t.Fatalf("unexpected composite lines %v", lines)
	}
	if inspectLines(w, sim.WildcardID) != nil || inspectLines(w, sim.AgentID(grp.ID(), 5)) != nil {
		t.Fatal("unresolvable ids should give no lines")
	}
	out, err := inspectYAML(w, c.ID())
	if err != nil || strings.Count(string(out), "---") != 2 {
		t.Fatalf("expected two member documents, err=%v:\n%s", err, out)
	}
}

func TestSpeedControls(t *testing.T) {
	g, _ := newTestGame(t)
	g.stepSpeed(1)
	if g.simSpeed != 2 {
		t.Fatalf("expected 2x, got %v", g.simSpeed)
	}
	g.togglePause()
	if g.simSpeed != 0 {
		t.Fatal("expected paused")
	}
	g.togglePause()
	if g.simSpeed != 2 {
		t.Fatalf("unpause should restore 2x, got %v", g.simSpeed)
	}
	for i := 0; i < 20; i++ {
		g.stepSpeed(-1)
	}
	if g.simSpeed != 0 {
		t.Fatalf("slowest speed is paused, got %v", g.simSpeed)
	}
	if speedLabel(0.25) != "0.25x" || speedLabel(4) != "4x" || speedLabel(0) != "PAUSED" {
		t.Fatal("unexpected speed labels")
	}
}

func TestThoughtLog_RingAndSync(t *testing.T) {
	tl := NewThoughtLog()
	for i := 0; i < logMaxEntries+5; i++ {
		tl.Add(sim.SimLogEntry{Tick: i})
	}
	recent := tl.Recent()
	if len(recent) != logMaxEntries || recent[0].Tick != 5 || recent[len(recent)-1].Tick != logMaxEntries+4 {
		t.Fatalf("ring kept the wrong window: first=%d last=%d", recent[0].Tick, recent[len(recent)-1].Tick)
	}

	g, _ := newTestGame(t, sim.WithZeroGroup(0, 0, 1), sim.WithZeroGroup(9, 9, 1))
	g.syncFeed()
	g.syncFeed()
	if n := len(g.feed.Recent()); n != 2 {
		t.Fatalf("expected two spawn lines exactly once, got %d", n)
	}
	if line := feedLine(g.feed.Recent()[0]); !strings.Contains(line, "world.spawn") {
		t.Fatalf("unexpected feed line %q", line)
	}
}
