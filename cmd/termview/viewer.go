package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	cellAspect    = 2.0                   // terminal cells are about twice as tall as wide
	panCells      = 4
	scaleMin      = 1.0
	scaleMax      = 64.0
)

var (
	agentStyle    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	selectedStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	centerStyle   = tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	slotStyle     = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

type mouseDrag struct {
	button tcell.ButtonMask
	start  sim.Vec2
	active bool
}

// Viewer draws the world into a terminal and turns key and mouse events into
// selection changes and orders.
type Viewer struct {
	screen tcell.Screen
	world  *sim.World
	log    *zap.Logger
	dt     float64

	sel    sim.Selection
	camX   float64 // world position of the screen centre
	camY   float64
	scale  float64 // world units per column
	paused bool
	drag   mouseDrag
	cursor sim.Vec2
	status string
}

// NewViewer wraps an initialised screen. scale is world units per column.
func NewViewer(screen tcell.Screen, world *sim.World, log *zap.Logger, dt, scale float64) *Viewer {
	v := &Viewer{
		screen: screen,
		world:  world,
		log:    log,
		dt:     dt,
		scale:  min(max(scale, scaleMin), scaleMax),
	}
	if groups := world.Groups(); len(groups) > 0 {
		var sum sim.Vec2
		for _, g := range groups {
			sum = sum.Add(g.Center())
		}
		mid := sum.Mul(1 / float64(len(groups)))
		v.camX, v.camY = mid.X, mid.Y
	}
	return v
}

// toWorld maps the centre of cell (cx, cy) to world space.
func (v *Viewer) toWorld(cx, cy int) sim.Vec2 {
	w, h := v.screen.Size()
	return sim.V(
		v.camX+(float64(cx-w/2)+0.5)*v.scale,
		v.camY+(float64(cy-h/2)+0.5)*v.scale*cellAspect,
	)
}

func (v *Viewer) toCell(p sim.Vec2) (int, int) {
	w, h := v.screen.Size()
	return int(math.Floor((p.X-v.camX)/v.scale)) + w/2,
		int(math.Floor((p.Y-v.camY)/(v.scale*cellAspect))) + h/2
}

func (v *Viewer) put(p sim.Vec2, r rune, style tcell.Style) {
	x, y := v.toCell(p)
	w, h := v.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}

func (v *Viewer) draw() {
	v.screen.Clear()
	for _, g := range v.world.Groups() {
		if g.Selected() {
			for _, s := range g.Slots() {
				v.put(s, '·', slotStyle)
			}
		}
		v.put(g.Center(), '+', centerStyle)
		for i, pos := range g.Entities().Pos {
			style := agentStyle
			if g.Selected() || v.sel.Contains(sim.AgentID(g.ID(), i)) {
				style = selectedStyle
			}
			v.put(pos, headingRune(g.Entities().Heading[i]), style)
		}
	}
	v.drawStatus()
	v.screen.Show()
}

// headingRune picks an arrow for a heading in radians; y points down.
func headingRune(h float64) rune {
	arrows := [...]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	i := int(math.Round(h/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return arrows[i]
}

func (v *Viewer) statusLine() string {
	state := "running"
	if v.paused {
		state = "paused"
	}
	line := fmt.Sprintf(" tick %d  %s  units %d  selected %v  %.0fu/col", v.world.Tick(), state, len(v.world.Units()), v.sel.IDs(), v.scale)
	if v.status != "" {
		line += "  | " + v.status
	}
	return line
}

func (v *Viewer) drawStatus() {
	w, h := v.screen.Size()
	x := 0
	for _, r := range v.statusLine() {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, statusStyle)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, statusStyle)
	}
}

// handleEvent applies one terminal event. It returns false when the viewer
// should quit.
func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.camY -= panCells * v.scale * cellAspect
		case tcell.KeyDown:
			v.camY += panCells * v.scale * cellAspect
		case tcell.KeyLeft:
			v.camX -= panCells * v.scale
		case tcell.KeyRight:
			v.camX += panCells * v.scale
		case tcell.KeyRune:
			return v.command(ev.Rune())
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		v.mouse(v.toWorld(x, y), ev.Buttons(), ev.Modifiers())
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// command runs a single-key command. Upper-case order keys queue.
func (v *Viewer) command(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		v.paused = !v.paused
	case '+', '=':
		v.scale = max(v.scale/1.25, scaleMin)
	case '-':
		v.scale = min(v.scale*1.25, scaleMax)
	case 'c', 'C':
		kind := sim.ActionColumn
		if r == 'C' {
			kind = sim.ActionAddColumn
		}
		v.order(func(sim.WorldID) sim.Action { return sim.Action{Kind: kind, Pos: v.cursor} })
	case 'f':
		for _, id := range v.sel.Targets() {
			if g, ok := v.world.Group(id); ok {
				if g.MarchFormation() == sim.FormationDirectional {
					g.SetMarchFormation(sim.FormationDefault)
				} else {
					g.SetMarchFormation(sim.FormationDirectional)
				}
			}
		}
	}
	return true
}

// mouse tracks press and release; tcell reports a release as an event with
// no buttons held.
func (v *Viewer) mouse(p sim.Vec2, buttons tcell.ButtonMask, mods tcell.ModMask) {
	v.cursor = p
	held := buttons & (tcell.ButtonPrimary | tcell.ButtonSecondary)
	if held != 0 {
		if !v.drag.active {
			v.drag = mouseDrag{button: held, start: p, active: true}
		}
		return
	}
	if !v.drag.active {
		return
	}
	d := v.drag
	v.drag = mouseDrag{}
	shift := mods&tcell.ModShift != 0
	if d.button&tcell.ButtonPrimary != 0 {
		if p.Sub(d.start).Man() < sim.ClickPrecision {
			v.sel.Click(v.world.IDsAt(p), mods&tcell.ModCtrl != 0)
		} else {
			v.sel.Drag(v.world.IDsInRect(d.start, p), shift)
		}
		v.world.Select(v.sel.IDs())
		return
	}
	v.order(func(id sim.WorldID) sim.Action {
		return sim.GestureOrder(d.start, p, v.unitCenter(id), shift)
	})
}

func (v *Viewer) order(build func(sim.WorldID) sim.Action) {
	targets := v.sel.Targets()
	if len(targets) == 0 {
		v.status = "nothing selected"
		return
	}
	for _, id := range targets {
		a := build(id)
		if err := v.world.Assign(id, a); err != nil {
			v.log.Warn("order dropped", zap.Stringer("id", id), zap.Error(err))
			continue
		}
		v.status = fmt.Sprintf("%s ordered", id)
	}
}

func (v *Viewer) unitCenter(id sim.WorldID) sim.Vec2 {
	if u, ok := v.world.Unit(id); ok && u.ID() == id && u.Kind == sim.UnitComposite {
		return u.Composite.Center()
	}
	if g, ok := v.world.Group(id); ok {
		return g.Center()
	}
	return sim.Vec2{}
}

// Run polls events on a goroutine and steps the world on a ticker until the
// player quits.
func (v *Viewer) Run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !v.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				v.world.Step(v.dt)
			}
			v.draw()
		}
	}
}
