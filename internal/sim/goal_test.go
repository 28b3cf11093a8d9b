package sim

import "testing"

func TestGoalQueue_PopLastLeavesHold(t *testing.T) {
	q := NewGoalQueue(IdleGoal(V(1, 2)))
	next, held := q.Pop()
	if !held || next.Kind != GoalHold {
		t.Fatalf("expected hold after last pop, got %v (held=%v)", next, held)
	}
	if q.Len() != 1 {
		t.Fatalf("queue must never be empty, len=%d", q.Len())
	}
}

func TestGoalQueue_ZeroValueFrontIsHold(t *testing.T) {
	var q GoalQueue
	if g := q.Front(); g.Kind != GoalHold {
		t.Fatalf("expected hold, got %v", g)
	}
}

func TestGoalQueue_PushReplacesLoneHold(t *testing.T) {
	q := NewGoalQueue(HoldGoal())
	q.Push(ColumnGoal(V(5, 5)))
	if q.Len() != 1 || q.Front().Kind != GoalColumn {
		t.Fatalf("expected lone column goal, got %v", q.Items())
	}
	q.Push(MoveGoal(V(1, 1), V(1, 0)))
	if q.Len() != 2 || q.Front().Kind != GoalColumn {
		t.Fatalf("expected column then move, got %v", q.Items())
	}
	next, held := q.Pop()
	if held || next.Kind != GoalMove {
		t.Fatalf("expected move next, got %v (held=%v)", next, held)
	}
}

func TestGoalQueue_ReplaceClears(t *testing.T) {
	q := NewGoalQueue(IdleGoal(Vec2{}))
	q.Push(ColumnGoal(Vec2{}))
	q.Replace(HoldGoal())
	if q.Len() != 1 || q.Front().Kind != GoalHold {
		t.Fatalf("expected only hold, got %v", q.Items())
	}
}

func TestAction_ZeroDirUsesGroupDirection(t *testing.T) {
	g, ok := Action{Kind: ActionMove, Pos: V(10, 0)}.goal(V(0, 1))
	if !ok || g.Dir != V(0, 1) {
		t.Fatalf("expected dir (0,1), got %v ok=%v", g, ok)
	}
	g, _ = Action{Kind: ActionFormUp, Pos: V(0, 0), Pos2: V(48, 0), Dir: V(0, -1)}.goal(V(0, 1))
	if g.Kind != GoalFront || g.B != V(48, 0) || g.Dir != V(0, -1) {
		t.Fatalf("unexpected front goal %v", g)
	}
	if _, ok := (Action{}).goal(V(1, 0)); ok {
		t.Fatal("ActionNone must not produce a goal")
	}
}

func TestAction_Queued(t *testing.T) {
	for _, k := range []ActionKind{ActionAddMove, ActionAddFormUp, ActionAddColumn} {
		if !(Action{Kind: k}).Queued() {
			t.Fatalf("kind %d should queue", k)
		}
	}
	for _, k := range []ActionKind{ActionNone, ActionMove, ActionFormUp, ActionColumn} {
		if (Action{Kind: k}).Queued() {
			t.Fatalf("kind %d should replace", k)
		}
	}
}

func TestGoalString_ASCII(t *testing.T) {
	cases := map[string]Goal{
		"move(10,20 -> 1.00,0.00)": MoveGoal(V(10, 20), V(1, 0)),
		"front(0,0 - 48,0)":        FrontGoal(V(0, 0), V(48, 0), V(0, 1)),
		"column(5,5)":              ColumnGoal(V(5, 5)),
		"hold":                     HoldGoal(),
	}
	for want, g := range cases {
		if got := g.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
		for _, r := range g.String() {
			if r > 0x7f {
				t.Fatalf("%q contains non-ASCII rune %q", g.String(), r)
			}
		}
	}
}
