package sim

import (
	"math/rand"
)

// TestSim is a headless harness for tests and batch reports. It owns a World
// and steps it at a fixed dt with deterministic seeding.
type TestSim struct {
	World    *World
	SimLog   *SimLog
	Reporter *SimReporter
	DT       float64

	rng    *rand.Rand
	groups []*Group // in the order the options created them
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra     simOptionKind = iota // seed, verbose, dt; applied first
	simOptGroup                          // spawn groups once the world exists
	simOptComposite                      // merge groups spawned above
	simOptOrder                          // assign actions last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose records per-agent events as well.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithDT sets the step length in seconds.
func WithDT(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.DT = dt
	}}
}

// WithGroup spawns count randomly scattered agents around (x,y).
func WithGroup(x, y float64, count int) SimOption {
	return SimOption{simOptGroup, func(ts *TestSim) {
		ts.groups = append(ts.groups, ts.World.SpawnGroup(V(x, y), count))
	}}
}

// WithZeroGroup adds count agents all standing still at (x,y).
func WithZeroGroup(x, y float64, count int) SimOption {
	return SimOption{simOptGroup, func(ts *TestSim) {
		e := ZeroEntities(count)
		for i := range e.Pos {
			e.Pos[i] = V(x, y)
		}
		ts.groups = append(ts.groups, ts.World.AddGroup(V(x, y), e))
	}}
}

// WithComposite merges the groups at the given creation indices.
func WithComposite(indices ...int) SimOption {
	return SimOption{simOptComposite, func(ts *TestSim) {
		ids := make([]WorldID, 0, len(indices))
		for _, i := range indices {
			if i < len(ts.groups) {
				ids = append(ids, ts.groups[i].ID())
			}
		}
		if _, err := ts.World.FormComposite(ids...); err != nil {
			panic(err)
		}
	}}
}

// WithAction assigns a to the unit holding the group at creation index i.
func WithAction(i int, a Action) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		if i >= len(ts.groups) {
			return
		}
		u, ok := ts.World.Unit(ts.groups[i].ID())
		if !ok {
			return
		}
		if err := ts.World.Assign(u.ID(), a); err != nil {
			panic(err)
		}
	}}
}

// WithGoals replaces the queue of the group at creation index i.
func WithGoals(i int, goals ...Goal) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		if i < len(ts.groups) {
			ts.groups[i].SetGoals(goals)
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (seed, verbose, dt)
//  2. Groups
//  3. Composites
//  4. Orders
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog:   NewSimLog(false),
		Reporter: NewSimReporter(0),
		DT:       0.01,
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.World = NewWorld(ts.rng, ts.SimLog)
	for _, kind := range []simOptionKind{simOptGroup, simOptComposite, simOptOrder} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}
	return ts
}

// Group returns the group created by the i-th group option.
func (ts *TestSim) Group(i int) *Group {
	return ts.groups[i]
}

// RunTicks advances the world n steps.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// step advances one tick and collects a report every ReportInterval ticks.
func (ts *TestSim) step() {
	ts.World.Step(ts.DT)
	if ts.World.Tick()%ReportInterval == 0 {
		ts.Reporter.Collect(ts.World)
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which it was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.Tick()
}

// AllHolding reports whether every group has exhausted its goals.
func (ts *TestSim) AllHolding() bool {
	for _, g := range ts.World.Groups() {
		if g.ActiveGoal().Kind != GoalHold {
			return false
		}
	}
	return true
}
