package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

const agentRadius = 4.0 // world units

var (
	selectedCol = color.RGBA{R: 255, G: 220, B: 90, A: 255}
	boundsCol   = color.RGBA{R: 120, G: 160, B: 220, A: 60}
	slotCol     = color.RGBA{R: 90, G: 220, B: 140, A: 70}
)

// agentColor converts the stored float colour, clamping the alpha the
// spawner lets drift above 1.
func agentColor(c sim.Color) color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}

// drawGroup renders the bounding circle, facing arrow and every agent.
func (g *Game) drawGroup(screen *ebiten.Image, grp *sim.Group) {
	z := float32(g.cam.zoom)
	cx, cy := g.cam.toScreen(grp.Center(), g.offX, g.offY)

	ring := boundsCol
	if grp.Selected() {
		ring = color.RGBA{R: 255, G: 220, B: 90, A: 110}
	}
	if r := float32(grp.Radius()) * z; r > 1 {
		vector.StrokeCircle(screen, cx, cy, r, 1.0, ring, true)
	}
	tip := grp.Center().Add(grp.Direction().Normalise().Mul(3 * sim.FormationSpacing))
	tx, ty := g.cam.toScreen(tip, g.offX, g.offY)
	vector.StrokeLine(screen, cx, cy, tx, ty, 1.5, ring, true)

	e := grp.Entities()
	for i, a := range e.All() {
		ax, ay := g.cam.toScreen(*a.Pos, g.offX, g.offY)
		vector.FillCircle(screen, ax, ay, agentRadius*z, agentColor(*a.Color), true)

		hx := ax + float32(math.Cos(*a.Heading))*agentRadius*2*z
		hy := ay + float32(math.Sin(*a.Heading))*agentRadius*2*z
		vector.StrokeLine(screen, ax, ay, hx, hy, 1.0, color.RGBA{R: 230, G: 230, B: 230, A: 160}, true)

		if g.sel.Contains(sim.AgentID(grp.ID(), i)) {
			vector.StrokeCircle(screen, ax, ay, (agentRadius+3)*z, 1.5, selectedCol, true)
		}
	}
}

func (g *Game) drawComposite(screen *ebiten.Image, c *sim.Composite) {
	cx, cy := g.cam.toScreen(c.Center(), g.offX, g.offY)
	col := color.RGBA{R: 200, G: 120, B: 220, A: 50}
	if c.Selected() {
		col = color.RGBA{R: 255, G: 170, B: 255, A: 120}
	}
	if r := float32(c.Radius() * g.cam.zoom); r > 1 {
		vector.StrokeCircle(screen, cx, cy, r+4, 2.0, col, true)
	}
}

// drawFormationSlots renders a faint diamond at every slot of the selected
// groups, with a line from each agent to its slot.
func (g *Game) drawFormationSlots(screen *ebiten.Image) {
	d := float32(4.0)
	for _, grp := range g.world.Groups() {
		if !grp.Selected() {
			continue
		}
		pos := grp.Entities().Pos
		for i, s := range grp.Slots() {
			sx, sy := g.cam.toScreen(s, g.offX, g.offY)
			vector.StrokeLine(screen, sx-d, sy, sx, sy-d, 1.0, slotCol, false)
			vector.StrokeLine(screen, sx, sy-d, sx+d, sy, 1.0, slotCol, false)
			vector.StrokeLine(screen, sx+d, sy, sx, sy+d, 1.0, slotCol, false)
			vector.StrokeLine(screen, sx, sy+d, sx-d, sy, 1.0, slotCol, false)
			if i < len(pos) {
				ax, ay := g.cam.toScreen(pos[i], g.offX, g.offY)
				vector.StrokeLine(screen, ax, ay, sx, sy, 1.0, color.RGBA{R: 255, G: 255, B: 255, A: 18}, false)
			}
		}
	}
}

// drawDragPreview shows the box being dragged out, or the front line and its
// facing for a right-button form-up.
func (g *Game) drawDragPreview(screen *ebiten.Image) {
	if !g.drag.active {
		return
	}
	mx, my := ebiten.CursorPosition()
	cur := g.cam.toWorld(mx, my, g.offX, g.offY)
	if cur.Sub(g.drag.start).Man() < sim.ClickPrecision {
		return
	}
	x0, y0 := g.cam.toScreen(g.drag.start, g.offX, g.offY)
	x1, y1 := float32(mx), float32(my)

	if g.drag.button == ebiten.MouseButtonLeft {
		vector.FillRect(screen, min(x0, x1), min(y0, y1), abs32(x1-x0), abs32(y1-y0), color.RGBA{R: 90, G: 140, B: 220, A: 30}, false)
		vector.StrokeRect(screen, min(x0, x1), min(y0, y1), abs32(x1-x0), abs32(y1-y0), 1.0, color.RGBA{R: 120, G: 170, B: 255, A: 160}, false)
		return
	}

	vector.StrokeLine(screen, x0, y0, x1, y1, 2.0, selectedCol, true)
	for _, id := range g.sel.Targets() {
		a := sim.GestureOrder(g.drag.start, cur, g.unitCenter(id), false)
		mid := a.Pos.Add(a.Pos2).Mul(0.5)
		tip := mid.Add(a.Dir.Mul(2 * sim.FormationSpacing))
		mx0, my0 := g.cam.toScreen(mid, g.offX, g.offY)
		tx, ty := g.cam.toScreen(tip, g.offX, g.offY)
		vector.StrokeLine(screen, mx0, my0, tx, ty, 1.5, selectedCol, true)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// drawGridOffset draws world-aligned grid lines across the playfield.
func drawGridOffset(screen *ebiten.Image, cam camera, offX, offY, w, h int, spacing float64, c color.Color) {
	if spacing <= 0 {
		return
	}
	lo := cam.toWorld(offX, offY, offX, offY)
	hi := cam.toWorld(offX+w, offY+h, offX, offY)
	ox, oy := float32(offX), float32(offY)
	for x := math.Ceil(lo.X/spacing) * spacing; x <= hi.X; x += spacing {
		xf, _ := cam.toScreen(sim.V(x, 0), offX, offY)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := math.Ceil(lo.Y/spacing) * spacing; y <= hi.Y; y += spacing {
		_, yf := cam.toScreen(sim.V(0, y), offX, offY)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}
