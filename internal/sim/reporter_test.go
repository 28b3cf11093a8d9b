package sim

import (
	"strings"
	"testing"
)

func TestSimReporter_CollectCountsGroupsAndAgents(t *testing.T) {
	ts := NewTestSim(
		WithZeroGroup(0, 0, 3),
		WithZeroGroup(200, 0, 2),
		WithAction(0, moveTo(100, 0)),
	)
	ts.RunTicks(ReportInterval)

	latest := ts.Reporter.Latest()
	if latest == nil || latest.Tick != ReportInterval {
		t.Fatalf("expected a report at tick %d, got %+v", ReportInterval, latest)
	}
	if latest.Agents != 5 || len(latest.Groups) != 2 {
		t.Fatalf("expected 5 agents in 2 groups, got %d in %d", latest.Agents, len(latest.Groups))
	}
	if latest.Goals[GoalMove] != 1 || latest.Goals[GoalIdle] != 1 {
		t.Fatalf("unexpected goal counts %v", latest.Goals)
	}
	if latest.States[Marching] < 3 {
		t.Fatalf("moving group should be marching, states=%v", latest.States)
	}
	if g := latest.Groups[0]; g.Moving != 3 || g.Formation != FormationDirectional {
		t.Fatalf("unexpected first group report %+v", g)
	}
}

func TestSimReporter_WindowSummary(t *testing.T) {
	r := NewSimReporter(100)
	if r.WindowSummary() != nil {
		t.Fatal("empty reporter should have no summary")
	}
	if !strings.Contains((*WindowReport)(nil).Format(), "No data") {
		t.Fatal("nil window should format as no data")
	}

	// An empty group never completes its idle goal.
	ts := NewTestSim(WithZeroGroup(0, 0, 0))
	ts.Reporter = r
	ts.RunTicks(5 * ReportInterval)

	wr := r.WindowSummary()
	if wr.SampleCount != 2 || wr.FromTick != 4*ReportInterval || wr.ToTick != 5*ReportInterval {
		t.Fatalf("window should hold the last two samples, got %+v", wr)
	}
	if wr.GoalPct[GoalIdle] != 100 {
		t.Fatalf("idle group should be 100%% idle, got %v", wr.GoalPct)
	}
	if out := wr.Format(); !strings.Contains(out, "idle") || !strings.Contains(out, "2 samples") {
		t.Fatalf("unexpected format:\n%s", out)
	}
	if out := r.FormatLatest(); !strings.Contains(out, "G1") {
		t.Fatalf("latest snapshot should list G1:\n%s", out)
	}
}
