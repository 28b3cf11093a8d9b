package sim

import (
	"fmt"
	"strings"
)

// ReportInterval is how often, in ticks, callers collect a report (~1s at
// 60TPS).
const ReportInterval = 60

// reportWindowTicks is the default sliding window for recent-behaviour
// reports (~10s at 60TPS).
const reportWindowTicks = 600

// GroupReport captures one group's state at one point in time.
type GroupReport struct {
	ID        WorldID
	Agents    int
	Goal      GoalKind
	Queued    int
	Formation Formation
	Spread    float64
	Radius    float64
	Moving    int // agents not yet Stationary
}

// SimReport is a snapshot of the whole world at one tick.
type SimReport struct {
	Tick   int
	Agents int

	// Active goal per group, and motion state per agent.
	Goals  map[GoalKind]int
	States map[MotionState]int

	AvgSpread float64
	MaxRadius float64

	Groups []GroupReport
}

// SimReporter collects periodic reports from the world and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size. A
// non-positive size uses the default.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current world state.
func (r *SimReporter) Collect(w *World) {
	report := SimReport{
		Tick:   w.Tick(),
		Goals:  make(map[GoalKind]int),
		States: make(map[MotionState]int),
	}
	groups := w.Groups()
	for _, g := range groups {
		gr := GroupReport{
			ID:        g.ID(),
			Agents:    g.Len(),
			Goal:      g.ActiveGoal().Kind,
			Queued:    g.goals.Len(),
			Formation: g.Formation(),
			Spread:    g.Spread(),
			Radius:    g.Radius(),
		}
		for _, s := range g.Entities().State {
			report.States[s]++
			if s != Stationary {
				gr.Moving++
			}
		}
		report.Goals[gr.Goal]++
		report.Agents += gr.Agents
		report.AvgSpread += gr.Spread
		report.MaxRadius = max(report.MaxRadius, gr.Radius)
		report.Groups = append(report.Groups, gr)
	}
	if len(groups) > 0 {
		report.AvgSpread /= float64(len(groups))
	}
	r.history = append(r.history, report)
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// Distributions as percentages (0-100): goals over groups, motion
	// states over agents.
	GoalPct  map[GoalKind]float64
	StatePct map[MotionState]float64

	AvgSpread float64
	AvgRadius float64 // mean of each sample's largest radius
}

// WindowSummary averages the reports collected in the most recent window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		GoalPct:     make(map[GoalKind]float64),
		StatePct:    make(map[MotionState]float64),
	}

	var goalTotal, stateTotal float64
	for _, rpt := range window {
		for g, c := range rpt.Goals {
			wr.GoalPct[g] += float64(c)
			goalTotal += float64(c)
		}
		for s, c := range rpt.States {
			wr.StatePct[s] += float64(c)
			stateTotal += float64(c)
		}
		wr.AvgSpread += rpt.AvgSpread
		wr.AvgRadius += rpt.MaxRadius
	}
	for g := range wr.GoalPct {
		wr.GoalPct[g] = wr.GoalPct[g] / goalTotal * 100
	}
	for s := range wr.StatePct {
		wr.StatePct[s] = wr.StatePct[s] / stateTotal * 100
	}
	wr.AvgSpread /= n
	wr.AvgRadius /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Drill Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("--- Goal Distribution ---\n")
	for k := range goalKindNames {
		if pct := wr.GoalPct[GoalKind(k)]; pct > 0.5 {
			fmt.Fprintf(&sb, "  %-8s %5.1f%%\n", GoalKind(k), pct)
		}
	}
	sb.WriteString("--- Motion States ---\n")
	for s := range motionStateNames {
		if pct := wr.StatePct[MotionState(s)]; pct > 0.5 {
			fmt.Fprintf(&sb, "  %-12s %5.1f%%\n", MotionState(s), pct)
		}
	}
	fmt.Fprintf(&sb, "--- Shape ---\n  spread=%.2f  radius=%.2f\n", wr.AvgSpread, wr.AvgRadius)
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d agents=%d ---\n", rpt.Tick, rpt.Agents)
	for _, g := range rpt.Groups {
		fmt.Fprintf(&sb, "%-5s n=%-3d %-7s q=%d %-11s moving=%-3d spread=%.1f radius=%.1f\n",
			g.ID, g.Agents, g.Goal, g.Queued, g.Formation, g.Moving, g.Spread, g.Radius)
	}
	return sb.String()
}
