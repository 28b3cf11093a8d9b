package game

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

// Inspector panel: rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2
	inspBufW  = 240
	inspBufH  = 300
	inspPad   = 4
	inspLineH = 14
)

// Inspector tracks which ID the panel describes.
type Inspector struct {
	target sim.WorldID
}

var errNothingInspected = errors.New("nothing inspected")

// inspectLines describes id for the panel. It returns nil when id resolves
// to nothing.
func inspectLines(w *sim.World, id sim.WorldID) []string {
	if id == sim.WildcardID {
		return nil
	}
	if u, ok := w.Unit(id); ok && u.ID() == id && u.Kind == sim.UnitComposite {
		return compositeLines(u.Composite)
	}
	grp, ok := w.Group(id)
	if !ok {
		return nil
	}
	if sim.IsContainer(id) {
		return groupLines(grp)
	}
	a, err := grp.Agent(id)
	if err != nil {
		return nil
	}
	return []string{
		fmt.Sprintf("[ AGENT %s ]", id),
		"",
		fmt.Sprintf("state:   %s", *a.State),
		fmt.Sprintf("pos:     (%.1f, %.1f)", a.Pos.X, a.Pos.Y),
		fmt.Sprintf("vel:     (%.1f, %.1f) |%.1f|", a.Vel.X, a.Vel.Y, a.Vel.Len()),
		fmt.Sprintf("heading: %.2f rad", *a.Heading),
		fmt.Sprintf("group:   %s", grp.ID()),
		fmt.Sprintf("goal:    %s", grp.ActiveGoal()),
	}
}

func groupLines(g *sim.Group) []string {
	counts := map[sim.MotionState]int{}
	for _, s := range g.Entities().State {
		counts[s]++
	}
	lines := []string{
		fmt.Sprintf("[ GROUP %s ]", g.ID()),
		"",
		fmt.Sprintf("agents:    %d", g.Len()),
		fmt.Sprintf("center:    (%.1f, %.1f)", g.Center().X, g.Center().Y),
		fmt.Sprintf("radius:    %.1f  spread: %.1f", g.Radius(), g.Spread()),
		fmt.Sprintf("direction: (%.2f, %.2f)", g.Direction().X, g.Direction().Y),
		fmt.Sprintf("formation: %s  march: %s", g.Formation(), g.MarchFormation()),
		fmt.Sprintf("marching:  %s %d", bar(float64(counts[sim.Marching])/float64(max(g.Len(), 1))), counts[sim.Marching]),
		"-- goals --",
	}
	for i, goal := range g.Goals() {
		if i >= 6 {
			lines = append(lines, fmt.Sprintf("  +%d more", len(g.Goals())-6))
			break
		}
		lines = append(lines, fmt.Sprintf("%d %s", i, goal))
	}
	return lines
}

func compositeLines(c *sim.Composite) []string {
	lines := []string{
		fmt.Sprintf("[ COMPOSITE %s ]", c.ID()),
		"",
		fmt.Sprintf("center: (%.1f, %.1f)", c.Center().X, c.Center().Y),
		fmt.Sprintf("radius: %.1f", c.Radius()),
		"-- members --",
	}
	for _, g := range c.Members() {
		lines = append(lines, fmt.Sprintf("%-5s n=%-3d %s", g.ID(), g.Len(), g.ActiveGoal()))
	}
	return lines
}

// bar renders v in [0,1] as a fixed-width text gauge.
func bar(v float64) string {
	const width = 12
	filled := min(max(int(v*width), 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// inspectYAML exports the inspected group or agent. Composites export every
// member group in turn.
func inspectYAML(w *sim.World, id sim.WorldID) ([]byte, error) {
	if id == sim.WildcardID {
		return nil, errNothingInspected
	}
	if u, ok := w.Unit(id); ok && u.ID() == id && u.Kind == sim.UnitComposite {
		var out []byte
		for _, g := range u.Groups() {
			b, err := sim.MarshalGroup(g)
			if err != nil {
				return nil, err
			}
			out = append(append(out, "---\n"...), b...)
		}
		return out, nil
	}
	grp, ok := w.Group(id)
	if !ok {
		return nil, fmt.Errorf("inspect %s: %w", id, sim.ErrUnknownID)
	}
	if sim.IsContainer(id) {
		return sim.MarshalGroup(grp)
	}
	return sim.MarshalAgent(grp, id)
}

// drawInspector renders the inspector panel into an offscreen buffer at 1x,
// then blits it onto the screen at inspScale for readability.
func (g *Game) drawInspector(screen *ebiten.Image) {
	lines := inspectLines(g.world, g.inspector.target)
	if lines == nil {
		return
	}

	g.inspBuf.Clear()
	buf := g.inspBuf
	bw := float32(inspBufW)
	bh := float32(inspBufH)

	panelBg := color.RGBA{R: 14, G: 16, B: 20, A: 230}
	panelBorder := color.RGBA{R: 55, G: 70, B: 100, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, panelBg, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)
	vector.StrokeLine(buf, 1, 1, bw-1, 1, 1.0, color.RGBA{R: 70, G: 100, B: 140, A: 60}, false)

	ly := inspPad
	for i, l := range lines {
		clr := color.Color(color.RGBA{R: 200, G: 210, B: 220, A: 255})
		if i == 0 {
			clr = color.White
		}
		g.drawText(buf, l, inspPad, ly, clr)
		ly += inspLineH
		if ly > inspBufH-inspLineH {
			break
		}
	}
	g.drawText(buf, "Ctrl+C copy as YAML", inspPad, inspBufH-inspLineH-inspPad, color.RGBA{R: 120, G: 130, B: 150, A: 255})

	// Bottom-right of the playfield.
	px := g.offX + g.gameWidth - inspBufW*inspScale - 8
	py := g.offY + g.gameHeight - inspBufH*inspScale - 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(inspScale), float64(inspScale))
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}
