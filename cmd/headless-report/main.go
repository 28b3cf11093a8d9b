package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Boid-Drill/internal/config"
	"github.com/Garsondee/Boid-Drill/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64
	agents   int

	firstArrivalTick int
	firstPopTick     int
	holdTick         int

	assigns  int
	goalPops int
	arrivals int

	finalCenter sim.Vec2
	finalSpread float64
	finalRadius float64

	window *sim.WindowReport
}

// scenario builds the harness options for one run. The first group is the
// one measured.
type scenario func(count int) []sim.SimOption

var scenarios = map[string]scenario{
	"gather": func(count int) []sim.SimOption {
		return []sim.SimOption{
			sim.WithGroup(100, 100, count),
			sim.WithAction(0, sim.Action{Kind: sim.ActionMove, Pos: sim.V(600, 400), Dir: sim.V(1, 0)}),
		}
	},
	"front": func(count int) []sim.SimOption {
		return []sim.SimOption{
			sim.WithGroup(200, 300, count),
			sim.WithAction(0, sim.Action{Kind: sim.ActionFormUp, Pos: sim.V(500, 200), Pos2: sim.V(500, 400), Dir: sim.V(1, 0)}),
		}
	},
	"column": func(count int) []sim.SimOption {
		return []sim.SimOption{
			sim.WithGroup(200, 300, count),
			sim.WithAction(0, sim.Action{Kind: sim.ActionColumn, Pos: sim.V(800, 300)}),
		}
	},
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var name string
	var cfgPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 0, "tick budget per run (0 uses the config's sim.ticks)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&name, "scenario", "gather", "scenario name")
	flag.StringVar(&cfgPath, "config", "", "TOML config supplying dt, ticks and group size")
	flag.Parse()

	cfg := config.Defaults()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if ticks == 0 {
		ticks = cfg.Sim.Ticks
	}

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	build, ok := scenarios[name]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: %s)\n", name, scenarioNames())
		return
	}
	count := 32
	if len(cfg.Groups) > 0 && cfg.Groups[0].Count > 0 {
		count = cfg.Groups[0].Count
	}

	fmt.Printf("=== Headless Drill Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d agents=%d dt=%g seed_base=%d seed_step=%d\n\n",
		name, runs, ticks, count, cfg.Sim.DT, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runScenario(build, i+1, seed, cfg.Sim.DT, count, ticks)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runScenario steps one seeded run until every group holds or the tick
// budget runs out.
func runScenario(build scenario, runIndex int, seed int64, dt float64, count, ticks int) runStats {
	opts := append([]sim.SimOption{
		sim.WithSeed(seed),
		sim.WithDT(dt),
		sim.WithVerbose(true),
	}, build(count)...)
	ts := sim.NewTestSim(opts...)
	hold := ts.RunUntil((*sim.TestSim).AllHolding, ticks)

	g := ts.Group(0)
	entries := ts.SimLog.Entries()
	return runStats{
		runIndex:         runIndex,
		seed:             seed,
		agents:           g.Len(),
		firstArrivalTick: firstTick(entries, "agent", "arrived", ""),
		firstPopTick:     firstTick(entries, "goal", "pop", ""),
		holdTick:         hold,
		assigns:          ts.SimLog.CountCategory("goal", "assign"),
		goalPops:         ts.SimLog.CountCategory("goal", "pop"),
		arrivals:         ts.SimLog.CountCategory("agent", "arrived"),
		finalCenter:      g.Center(),
		finalSpread:      g.Spread(),
		finalRadius:      g.Radius(),
		window:           ts.Reporter.WindowSummary(),
	}
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_arrival=%d first_pop=%d hold=%d\n",
		rs.firstArrivalTick, rs.firstPopTick, rs.holdTick)
	fmt.Printf("event_totals: assign=%d goal_pop=%d arrived=%d agents=%d\n",
		rs.assigns, rs.goalPops, rs.arrivals, rs.agents)
	fmt.Printf("final: center=(%.1f,%.1f) spread=%.2f radius=%.2f\n",
		rs.finalCenter.X, rs.finalCenter.Y, rs.finalSpread, rs.finalRadius)
	if rs.window != nil {
		fmt.Printf("window_samples=%d window_tick_range=%d..%d\n",
			rs.window.SampleCount, rs.window.FromTick, rs.window.ToTick)
		fmt.Printf("window_avg: marching=%.1f%% stationary=%.1f%% spread=%.2f radius=%.2f\n",
			rs.window.StatePct[sim.Marching], rs.window.StatePct[sim.Stationary],
			rs.window.AvgSpread, rs.window.AvgRadius)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalPops := 0
	totalArrivals := 0
	settled := 0
	spreadSum := 0.0

	arrivalTicks := make([]int, 0, len(all))
	popTicks := make([]int, 0, len(all))
	holdTicks := make([]int, 0, len(all))

	for _, rs := range all {
		totalPops += rs.goalPops
		totalArrivals += rs.arrivals
		spreadSum += rs.finalSpread
		if rs.firstArrivalTick >= 0 {
			arrivalTicks = append(arrivalTicks, rs.firstArrivalTick)
		}
		if rs.firstPopTick >= 0 {
			popTicks = append(popTicks, rs.firstPopTick)
		}
		if rs.holdTick >= 0 {
			holdTicks = append(holdTicks, rs.holdTick)
			settled++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d settled=%d\n", len(all), settled)
	fmt.Printf("avg_events_per_run: goal_pop=%.1f arrived=%.1f\n",
		avg(totalPops, len(all)), avg(totalArrivals, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_arrival=%s first_pop=%s hold=%s\n",
		avgTickString(arrivalTicks), avgTickString(popTicks), avgTickString(holdTicks))
	if len(all) > 0 {
		fmt.Printf("avg_final_spread=%.2f\n", spreadSum/float64(len(all)))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
