package game

import (
	"fmt"
	"math"
	"os"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

// writeClipboard is swapped out by tests.
var writeClipboard = clipboard.WriteAll

// dragState tracks a mouse button held down over the playfield.
type dragState struct {
	button ebiten.MouseButton
	start  sim.Vec2
	active bool
}

// handleInput polls ebiten once per frame and turns edges into commands.
func (g *Game) handleInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	// Camera pan: WASD or arrow keys. Ctrl is reserved for file commands.
	const panSpeed = 6.0
	if !ctrl {
		if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			g.cam.pan(0, -panSpeed)
		}
		if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			g.cam.pan(0, panSpeed)
		}
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			g.cam.pan(-panSpeed, 0)
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			g.cam.pan(panSpeed, 0)
		}
	}

	// Camera zoom: mouse wheel or =/- keys.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.zoomBy(math.Pow(1.12, wy))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.cam.zoomBy(1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.cam.zoomBy(1 / 1.25)
	}

	// Sim speed: Space pause/resume, ,=slower, .=faster.
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		g.stepSpeed(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.stepSpeed(1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.showSlots = !g.showSlots
	}

	mx, my := ebiten.CursorPosition()
	cursor := g.cam.toWorld(mx, my, g.offX, g.offY)

	if ctrl {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyS):
			g.save()
		case inpututil.IsKeyJustPressed(ebiten.KeyL):
			g.load()
		case inpututil.IsKeyJustPressed(ebiten.KeyC):
			g.copyInspector()
		}
	} else {
		if inpututil.IsKeyJustPressed(ebiten.KeyC) {
			g.issueColumn(cursor, shift)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF) {
			g.toggleMarch()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyG) {
			g.combine()
		}
	}

	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustPressed(b) && !g.drag.active && g.inPlayfield(mx, my) {
			g.drag = dragState{button: b, start: cursor, active: true}
		}
	}
	if g.drag.active && inpututil.IsMouseButtonJustReleased(g.drag.button) {
		d := g.drag
		g.drag = dragState{}
		if start := d.start; d.button == ebiten.MouseButtonLeft {
			g.applyLeft(start, cursor, ctrl, shift)
		} else {
			g.applyRight(start, cursor, shift)
		}
	}
}

func (g *Game) inPlayfield(mx, my int) bool {
	return mx >= g.offX && mx < g.offX+g.gameWidth && my >= g.offY && my < g.offY+g.gameHeight
}

func (g *Game) togglePause() {
	if g.simSpeed > 0 {
		g.lastSpeed = g.simSpeed
		g.simSpeed = 0
		return
	}
	g.simSpeed = g.lastSpeed
	if g.simSpeed <= 0 {
		g.simSpeed = 1
	}
}

// stepSpeed moves to the next slower (dir<0) or faster (dir>0) speed.
func (g *Game) stepSpeed(dir int) {
	i := 0
	for j, s := range simSpeeds {
		if s <= g.simSpeed {
			i = j
		}
	}
	i = min(max(i+dir, 0), len(simSpeeds)-1)
	g.simSpeed = simSpeeds[i]
}

// applyLeft finishes a left click or drag. A release within ClickPrecision
// of the press counts as a click.
func (g *Game) applyLeft(press, release sim.Vec2, toggle, add bool) {
	if release.Sub(press).Man() < sim.ClickPrecision {
		g.sel.Click(g.world.IDsAt(release), toggle)
	} else {
		g.sel.Drag(g.world.IDsInRect(press, release), add)
	}
	g.world.Select(g.sel.IDs())
	g.inspector.target = sim.WildcardID
	if ids := g.sel.IDs(); len(ids) > 0 {
		g.inspector.target = ids[0]
	}
}

// applyRight issues a move (click) or form-up (drag) to every selected unit.
func (g *Game) applyRight(press, release sim.Vec2, queue bool) {
	for _, id := range g.sel.Targets() {
		g.assign(id, sim.GestureOrder(press, release, g.unitCenter(id), queue))
	}
}

func (g *Game) issueColumn(at sim.Vec2, queue bool) {
	kind := sim.ActionColumn
	if queue {
		kind = sim.ActionAddColumn
	}
	for _, id := range g.sel.Targets() {
		g.assign(id, sim.Action{Kind: kind, Pos: at})
	}
}

func (g *Game) assign(id sim.WorldID, a sim.Action) {
	if err := g.world.Assign(id, a); err != nil {
		g.log.Warn("order dropped", zap.Stringer("id", id), zap.Error(err))
	}
}

// unitCenter returns the centre of whatever id addresses.
func (g *Game) unitCenter(id sim.WorldID) sim.Vec2 {
	if u, ok := g.world.Unit(id); ok && u.ID() == id && u.Kind == sim.UnitComposite {
		return u.Composite.Center()
	}
	if grp, ok := g.world.Group(id); ok {
		return grp.Center()
	}
	return sim.Vec2{}
}

// targetGroups expands the order targets into groups; composites contribute
// every member.
func (g *Game) targetGroups() []*sim.Group {
	var out []*sim.Group
	for _, id := range g.sel.Targets() {
		if u, ok := g.world.Unit(id); ok && u.ID() == id {
			out = append(out, u.Groups()...)
			continue
		}
		if grp, ok := g.world.Group(id); ok {
			out = append(out, grp)
		}
	}
	return out
}

// toggleMarch flips the selected groups between the ranked and the loose
// marching formation.
func (g *Game) toggleMarch() {
	for _, grp := range g.targetGroups() {
		if grp.MarchFormation() == sim.FormationDirectional {
			grp.SetMarchFormation(sim.FormationDefault)
		} else {
			grp.SetMarchFormation(sim.FormationDirectional)
		}
	}
}

// combine merges the selected top-level groups into one composite and
// selects it.
func (g *Game) combine() {
	var ids []sim.WorldID
	for _, id := range g.sel.Targets() {
		if u, ok := g.world.Unit(id); ok && u.ID() == id && u.Kind == sim.UnitBasic {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		g.status = "combine: select two or more groups"
		return
	}
	c, err := g.world.FormComposite(ids...)
	if err != nil {
		g.log.Warn("combine failed", zap.Error(err))
		g.status = "combine failed"
		return
	}
	g.sel.Set(c.ID())
	g.world.Select(g.sel.IDs())
	g.inspector.target = c.ID()
	g.status = fmt.Sprintf("combined %d groups into %s", len(ids), c.ID())
}

func (g *Game) save() {
	path := g.cfg.Snapshot.Path
	f, err := os.Create(path)
	if err != nil {
		g.log.Error("save failed", zap.String("path", path), zap.Error(err))
		g.status = "save failed"
		return
	}
	defer f.Close()
	if err := g.world.Save(f); err != nil {
		g.log.Error("save failed", zap.String("path", path), zap.Error(err))
		g.status = "save failed"
		return
	}
	g.log.Info("world saved", zap.String("path", path), zap.Int("tick", g.world.Tick()))
	g.status = "saved " + path
}

func (g *Game) load() {
	path := g.cfg.Snapshot.Path
	f, err := os.Open(path)
	if err != nil {
		g.log.Error("load failed", zap.String("path", path), zap.Error(err))
		g.status = "load failed"
		return
	}
	defer f.Close()
	w, err := sim.LoadWorld(f, g.world.Rand(), g.world.Log())
	if err != nil {
		g.log.Error("load failed", zap.String("path", path), zap.Error(err))
		g.status = "load failed"
		return
	}
	g.setWorld(w)
	g.log.Info("world loaded", zap.String("path", path), zap.Int("tick", w.Tick()))
	g.status = "loaded " + path
}

// copyInspector puts the inspected group or agent on the clipboard as YAML.
func (g *Game) copyInspector() {
	out, err := inspectYAML(g.world, g.inspector.target)
	if err != nil {
		g.status = "nothing to copy"
		return
	}
	if err := writeClipboard(string(out)); err != nil {
		g.log.Warn("clipboard write failed", zap.Error(err))
		g.status = "clipboard unavailable"
		return
	}
	g.status = "copied " + g.inspector.target.String()
}
