package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// Steering constants for ProcessBoids.
const (
	AccMax         = 1000.0 // hard cap on combined steering acceleration
	AccSoftFactor  = 0.25   // fraction of AccMax allowed for pure goal seeking
	VelMax         = 100.0  // hard cap on agent speed
	RepelRadius    = 20.0   // Manhattan distance inside which agents push apart
	RepelStrength  = 0.5    // separation gain, divided by group size
	ArrivalMargin  = 1.0    // an agent closer than this to its slot has arrived
	ClickPrecision = 12.0   // Manhattan pick radius for AgentAt
)

// Group is a set of agents sharing one goal queue and formation. It owns its
// entity store exclusively.
type Group struct {
	id        WorldID
	center    Vec2
	radius    float64
	direction Vec2
	selected  bool
	goals     GoalQueue
	formation Formation
	march     Formation
	entities  *Entities

	// Slot offsets for the active goal, rebuilt whenever it changes.
	slots   []Vec2
	planned bool
	plan    goalPlan

	rng   *rand.Rand
	log   *SimLog
	clock *int
}

// goalPlan is the active goal resolved into step inputs.
type goalPlan struct {
	formation Formation
	pos1      Vec2
	pos2      Vec2
	dir       Vec2
	rowWidth  int
}

// newGroup wraps entities into a group idling at origin. It panics when the
// store holds GroupCapacity agents or more.
func newGroup(id WorldID, origin Vec2, entities *Entities, rng *rand.Rand) *Group {
	checkCapacity(entities.Len())
	g := &Group{
		id:        id,
		center:    origin,
		direction: Vec2{X: 1},
		goals:     NewGoalQueue(IdleGoal(origin)),
		formation: FormationDefault,
		march:     FormationDirectional,
		entities:  entities,
		rng:       rng,
	}
	return g
}

func (g *Group) ID() WorldID               { return g.id }
func (g *Group) Center() Vec2              { return g.center }
func (g *Group) Radius() float64           { return g.radius }
func (g *Group) Direction() Vec2           { return g.direction }
func (g *Group) Selected() bool            { return g.selected }
func (g *Group) SetSelected(s bool)        { g.selected = s }
func (g *Group) Formation() Formation      { return g.formation }
func (g *Group) MarchFormation() Formation { return g.march }
func (g *Group) Entities() *Entities       { return g.entities }
func (g *Group) Len() int                  { return g.entities.Len() }
func (g *Group) ActiveGoal() Goal          { return g.goals.Front() }
func (g *Group) Goals() []Goal             { return g.goals.Items() }

// SetMarchFormation chooses the formation used for Move goals.
func (g *Group) SetMarchFormation(f Formation) {
	g.march = f
	g.planned = false
}

// Slots returns the world-space target of every agent under the active goal.
// It is empty until the first step after a goal change.
func (g *Group) Slots() []Vec2 {
	if !g.planned {
		return nil
	}
	out := make([]Vec2, len(g.slots))
	for i, s := range g.slots {
		out[i] = g.plan.pos1.Add(s)
	}
	return out
}

// Assign applies a player action to the goal queue.
func (g *Group) Assign(a Action) {
	goal, ok := a.goal(g.direction)
	if !ok {
		return
	}
	if a.Queued() {
		before := g.goals.Front()
		g.goals.Push(goal)
		if g.goals.Front() != before {
			g.planned = false
		}
	} else {
		g.goals.Replace(goal)
		g.planned = false
	}
	g.emit("goal", "assign", goal.String(), float64(g.goals.Len()))
}

// SetGoals replaces the whole queue. Hold never completes, so a Hold with
// goals behind it is dropped; an empty list leaves Hold.
func (g *Group) SetGoals(goals []Goal) {
	kept := make([]Goal, 0, len(goals))
	for i, goal := range goals {
		if goal.Kind == GoalHold && i < len(goals)-1 {
			continue
		}
		kept = append(kept, goal)
	}
	if len(kept) == 0 {
		g.goals.Replace(HoldGoal())
	} else {
		g.goals.Replace(kept[0])
		g.goals.items = append(g.goals.items, kept[1:]...)
	}
	g.planned = false
}

// resolve turns the active goal into formation and reference points.
func (g *Group) resolve(goal Goal) goalPlan {
	var p goalPlan
	switch goal.Kind {
	case GoalIdle:
		p = goalPlan{formation: FormationIdle, pos1: goal.A, pos2: goal.A, dir: g.direction}
	case GoalMove:
		p = goalPlan{formation: g.march, pos1: goal.A, pos2: goal.A, dir: goal.Dir}
	case GoalColumn:
		head := g.direction.Normalise()
		p = goalPlan{
			formation: FormationDirectional,
			pos1:      goal.A,
			pos2:      goal.A.Add(head.Perp().Mul(FormationSpacing)),
			dir:       head.Neg(),
		}
	case GoalFront:
		p = goalPlan{formation: FormationDirectional, pos1: goal.A, pos2: goal.B, dir: goal.Dir}
		if goal.Dir.IsZero() {
			p.formation = FormationPhalanx
		}
	default:
		p = goalPlan{formation: FormationDefault, pos1: g.center, pos2: g.center, dir: g.direction}
	}
	p.rowWidth = int(math.Round(p.pos2.Sub(p.pos1).Len() / FormationSpacing))
	return p
}

// replan rebuilds the slot cache for the active goal.
func (g *Group) replan() {
	goal := g.goals.Front()
	g.plan = g.resolve(goal)
	g.formation = g.plan.formation
	if (goal.Kind == GoalMove || goal.Kind == GoalFront) && !goal.Dir.IsZero() {
		g.direction = goal.Dir.Normalise()
	}
	xdir := g.plan.pos2.Sub(g.plan.pos1).Normalise()
	ydir := g.plan.dir.Normalise()
	g.slots = formationSlots(g.plan.formation, g.rng, g.entities.Len(), g.plan.rowWidth, xdir, ydir)
	g.planned = true
}

// ProcessBoids advances every agent by dt seconds toward its slot under the
// active goal. It never fails; degenerate inputs are absorbed by guards.
func (g *Group) ProcessBoids(dt float64) {
	if g.goals.Front().Kind == GoalHold {
		return
	}
	if !g.planned {
		g.replan()
	}

	e := g.entities
	n := e.Len()
	if n == 0 {
		return
	}
	invN := 1.0 / float64(n)

	var centroid Vec2
	maxDist := 0.0
	cumDist := 0.0
	softCap := AccMax * AccSoftFactor

	for cur := 0; cur < n; cur++ {
		pos := e.Pos[cur]
		centroid = centroid.Add(pos)
		if d := pos.Sub(g.center).Len(); d > maxDist {
			maxDist = d
		}

		target := g.plan.pos1.Add(g.slots[cur])
		steer := target.Sub(pos)
		dist := steer.Len()
		cumDist += dist

		if dist < ArrivalMargin {
			if e.State[cur] != Stationary {
				g.emit("agent", "arrived", AgentID(g.id, cur).String(), dist)
			}
			e.State[cur] = Stationary
			e.Vel[cur] = Vec2{}
			continue
		}
		e.State[cur] = Marching
		steer.Clamp(softCap)

		for other := 0; other < n; other++ {
			if other == cur {
				continue
			}
			delta := pos.Sub(e.Pos[other])
			if delta.Man() < RepelRadius {
				steer = steer.Add(delta.Mul(RepelStrength * invN))
			}
		}

		steer.Clamp(AccMax)
		vel := e.Vel[cur].Add(steer.Mul(dt))
		vel.Clamp(math.Min(VelMax, dist))
		e.Vel[cur] = vel
		e.Pos[cur] = pos.Add(vel.Mul(dt))

		heading := math.Atan2(vel.Y, vel.X)
		if !math.IsNaN(heading) && !math.IsInf(heading, 0) && heading != 0 {
			e.Heading[cur] = heading
		}
	}

	g.center = centroid.Mul(invN)
	g.radius = maxDist

	if cumDist < float64(n)*ArrivalMargin {
		g.completeGoal(cumDist)
	}
}

// completeGoal pops the active goal. Running out of goals halts the group.
func (g *Group) completeGoal(cumDist float64) {
	done := g.goals.Front()
	_, hold := g.goals.Pop()
	g.planned = false
	g.emit("goal", "pop", done.String(), cumDist)
	if hold {
		g.entities.Halt()
		g.emit("goal", "hold", "queue empty", 0)
	}
}

// IsInBounds reports whether p lies inside the group's bounding circle.
func (g *Group) IsInBounds(p Vec2) bool {
	return p.Sub(g.center).Len() < g.radius
}

// AgentAt returns the ID of the first agent within ClickPrecision
// (Manhattan) of p.
func (g *Group) AgentAt(p Vec2) (WorldID, bool) {
	for i, pos := range g.entities.Pos {
		if pos.Sub(p).Man() < ClickPrecision {
			return AgentID(g.id, i), true
		}
	}
	return 0, false
}

// AgentsInRect returns the IDs of agents inside the axis-aligned box spanned
// by p0 and p1.
func (g *Group) AgentsInRect(p0, p1 Vec2) []WorldID {
	lo, hi := rectBounds(p0, p1)
	var out []WorldID
	for i, pos := range g.entities.Pos {
		if inRect(pos, lo, hi) {
			out = append(out, AgentID(g.id, i))
		}
	}
	return out
}

// Agent returns the view of the agent addressed by id.
func (g *Group) Agent(id WorldID) (Agent, error) {
	if !IsAgentOf(id, g.id) {
		return Agent{}, fmt.Errorf("agent %s: %w", id, ErrUnknownID)
	}
	i, _ := LocalIndex(id)
	if i >= g.entities.Len() {
		return Agent{}, fmt.Errorf("agent %s: %w", id, ErrUnknownID)
	}
	return g.entities.Agent(i), nil
}

// Spread returns the mean distance of agents from the group center.
func (g *Group) Spread() float64 {
	n := g.entities.Len()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range g.entities.Pos {
		sum += p.Sub(g.center).Len()
	}
	return sum / float64(n)
}

func (g *Group) emit(category, key, value string, num float64) {
	if g.log == nil {
		return
	}
	tick := 0
	if g.clock != nil {
		tick = *g.clock
	}
	g.log.Add(tick, g.id.String(), category, key, value, num)
}

func rectBounds(p0, p1 Vec2) (lo, hi Vec2) {
	return Vec2{X: math.Min(p0.X, p1.X), Y: math.Min(p0.Y, p1.Y)},
		Vec2{X: math.Max(p0.X, p1.X), Y: math.Max(p0.Y, p1.Y)}
}

func inRect(p, lo, hi Vec2) bool {
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}
