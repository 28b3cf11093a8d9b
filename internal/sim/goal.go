package sim

import "fmt"

// GoalKind tags the variant held in a Goal.
type GoalKind uint8

const (
	GoalIdle   GoalKind = iota // loiter around A
	GoalHold                   // stand still until replaced
	GoalMove                   // gather on A facing Dir
	GoalColumn                 // single file headed at A
	GoalFront                  // line from A to B, ranks stacking along Dir
)

var goalKindNames = [...]string{
	GoalIdle:   "idle",
	GoalHold:   "hold",
	GoalMove:   "move",
	GoalColumn: "column",
	GoalFront:  "front",
}

func (k GoalKind) String() string {
	if int(k) < len(goalKindNames) {
		return goalKindNames[k]
	}
	return fmt.Sprintf("GoalKind(%d)", k)
}

func (k GoalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GoalKind) UnmarshalText(b []byte) error {
	for i, name := range goalKindNames {
		if name == string(b) {
			*k = GoalKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown goal kind %q", b)
}

// Goal is a group directive. Which of A, B and Dir are meaningful depends on
// Kind; build goals with the constructors below.
type Goal struct {
	Kind GoalKind `yaml:"kind"`
	A    Vec2     `yaml:"a,omitempty"`
	B    Vec2     `yaml:"b,omitempty"`
	Dir  Vec2     `yaml:"dir,omitempty"`
}

func IdleGoal(p Vec2) Goal          { return Goal{Kind: GoalIdle, A: p} }
func HoldGoal() Goal                { return Goal{Kind: GoalHold} }
func MoveGoal(p, dir Vec2) Goal     { return Goal{Kind: GoalMove, A: p, Dir: dir} }
func ColumnGoal(p Vec2) Goal        { return Goal{Kind: GoalColumn, A: p} }
func FrontGoal(a, b, dir Vec2) Goal { return Goal{Kind: GoalFront, A: a, B: b, Dir: dir} }

func (g Goal) String() string {
	switch g.Kind {
	case GoalIdle, GoalColumn:
		return fmt.Sprintf("%s(%.0f,%.0f)", g.Kind, g.A.X, g.A.Y)
	case GoalMove:
		return fmt.Sprintf("move(%.0f,%.0f -> %.2f,%.2f)", g.A.X, g.A.Y, g.Dir.X, g.Dir.Y)
	case GoalFront:
		return fmt.Sprintf("front(%.0f,%.0f - %.0f,%.0f)", g.A.X, g.A.Y, g.B.X, g.B.Y)
	}
	return g.Kind.String()
}

// GoalQueue is a FIFO of goals whose front is the active one. It is never
// empty: popping the last goal leaves Hold behind.
type GoalQueue struct {
	items []Goal
}

// NewGoalQueue returns a queue holding first.
func NewGoalQueue(first Goal) GoalQueue {
	return GoalQueue{items: []Goal{first}}
}

// Front returns the active goal.
func (q *GoalQueue) Front() Goal {
	if len(q.items) == 0 {
		q.items = append(q.items, HoldGoal())
	}
	return q.items[0]
}

func (q *GoalQueue) Len() int { return len(q.items) }

// Items returns a copy of the queued goals, active first.
func (q *GoalQueue) Items() []Goal {
	return append([]Goal(nil), q.items...)
}

// Replace clears the queue and makes g the only goal.
func (q *GoalQueue) Replace(g Goal) {
	q.items = append(q.items[:0], g)
}

// Push appends g behind the queued goals. A lone Hold is replaced rather than
// queued behind, since Hold never completes on its own.
func (q *GoalQueue) Push(g Goal) {
	if len(q.items) == 1 && q.items[0].Kind == GoalHold {
		q.items[0] = g
		return
	}
	q.items = append(q.items, g)
}

// Pop removes the active goal and returns the new one. It reports true when
// the queue ran dry and Hold was pushed.
func (q *GoalQueue) Pop() (Goal, bool) {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	if len(q.items) == 0 {
		q.items = append(q.items, HoldGoal())
		return q.items[0], true
	}
	return q.items[0], false
}

// ActionKind is a resolved player intent.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionAddMove
	ActionFormUp
	ActionAddFormUp
	ActionColumn
	ActionAddColumn
)

// Action is a player order addressed to one unit. Pos is the click point or
// the first drag corner, Pos2 the second drag corner. A zero Dir means the
// caller did not choose a facing and the unit's current direction is used.
type Action struct {
	Kind ActionKind
	Pos  Vec2
	Pos2 Vec2
	Dir  Vec2
}

// Queued reports whether the action appends instead of replacing.
func (a Action) Queued() bool {
	return a.Kind == ActionAddMove || a.Kind == ActionAddFormUp || a.Kind == ActionAddColumn
}

// goal translates the action into a goal. ok is false for ActionNone.
func (a Action) goal(direction Vec2) (Goal, bool) {
	dir := a.Dir
	if dir.IsZero() {
		dir = direction
	}
	switch a.Kind {
	case ActionMove, ActionAddMove:
		return MoveGoal(a.Pos, dir), true
	case ActionFormUp, ActionAddFormUp:
		return FrontGoal(a.Pos, a.Pos2, dir), true
	case ActionColumn, ActionAddColumn:
		return ColumnGoal(a.Pos), true
	}
	return Goal{}, false
}
