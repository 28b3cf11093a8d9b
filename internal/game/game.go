package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Boid-Drill/internal/config"
	"github.com/Garsondee/Boid-Drill/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 24

// hudScale is the integer upscale factor applied to all HUD text.
const hudScale = 2

// simSpeeds are the selectable speed multipliers; 0 is paused.
var simSpeeds = []float64{0, 0.25, 0.5, 1, 2, 4, 8}

// Game is the ebiten front end over a sim.World. It owns no simulation state
// of its own beyond the player's selection.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	world *sim.World
	sel   sim.Selection

	width      int
	height     int
	gameWidth  int // playfield width (log panel takes the rest)
	gameHeight int
	offX       int // pixel offset from window left to playfield left
	offY       int

	cam camera

	feed      *ThoughtLog
	feedSeen  int
	inspector Inspector
	reporter  *sim.SimReporter

	showHUD   bool
	showSlots bool
	status    string

	drag dragState

	// Simulation speed control.
	simSpeed  float64
	lastSpeed float64 // restored when unpausing
	tickAccum float64

	face    *text.GoXFace
	hudBuf  *ebiten.Image
	inspBuf *ebiten.Image
}

// New builds a viewer for world. log receives operational messages.
func New(cfg *config.Config, world *sim.World, log *zap.Logger) *Game {
	w, h := cfg.View.Width, cfg.View.Height
	g := &Game{
		cfg:        cfg,
		log:        log,
		world:      world,
		width:      w,
		height:     h,
		gameWidth:  max(w-2*borderWidth-logPanelWidth, 1),
		gameHeight: max(h-2*borderWidth, 1),
		offX:       borderWidth,
		offY:       borderWidth,
		feed:       NewThoughtLog(),
		reporter:   sim.NewSimReporter(0),
		showHUD:    true,
		showSlots:  true,
		simSpeed:   float64(cfg.View.Speed),
		lastSpeed:  float64(cfg.View.Speed),
		face:       text.NewGoXFace(basicfont.Face7x13),
	}
	g.cam = newCamera(g.gameWidth, g.gameHeight, cfg.View.Zoom)
	g.cam.centerOn(world)
	g.hudBuf = ebiten.NewImage(max(w/hudScale, 1), max(h/hudScale, 1))
	g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	return g
}

// World returns the world currently shown; loading a snapshot replaces it.
func (g *Game) World() *sim.World {
	return g.world
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.simSpeed > 0 {
		// For speeds > 1 run multiple sim steps per frame; below 1 accumulate.
		g.tickAccum += g.simSpeed
		for g.tickAccum >= 1.0 {
			g.tickAccum -= 1.0
			g.world.Step(g.cfg.Sim.DT)
			if g.world.Tick()%sim.ReportInterval == 0 {
				g.reporter.Collect(g.world)
			}
		}
	}
	g.syncFeed()
	return nil
}

// syncFeed copies new SimLog entries into the on-screen feed.
func (g *Game) syncFeed() {
	sl := g.world.Log()
	if sl == nil {
		return
	}
	for _, e := range sl.Since(g.feedSeen) {
		g.feed.Add(e)
	}
	g.feedSeen = sl.Total()
}

// setWorld swaps in a freshly loaded world and resets everything that
// pointed into the old one. The new world must share the old one's SimLog.
func (g *Game) setWorld(w *sim.World) {
	g.world = w
	g.reporter = sim.NewSimReporter(0)
	g.sel.Clear()
	g.inspector.target = sim.WildcardID
	g.drag = dragState{}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 16, A: 255})

	g.drawWorld(screen)

	// Playfield border frame.
	ox := float32(g.offX)
	oy := float32(g.offY)
	gw := float32(g.gameWidth)
	gh := float32(g.gameHeight)
	borderCol := color.RGBA{R: 65, G: 80, B: 95, A: 255}
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, borderCol, false)
	vector.StrokeRect(screen, ox-3, oy-3, gw+6, gh+6, 1.0, color.RGBA{R: 40, G: 50, B: 65, A: 100}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.feed.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.cam.zoom != 1.0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom: %.1fx", g.cam.zoom), g.offX+6, g.offY+6)
	}
	g.drawInspector(screen)
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	drawGridOffset(screen, g.cam, g.offX, g.offY, g.gameWidth, g.gameHeight, 96, color.RGBA{R: 255, G: 255, B: 255, A: 10})

	for _, u := range g.world.Units() {
		if u.Kind == sim.UnitComposite {
			g.drawComposite(screen, u.Composite)
		}
		for _, grp := range u.Groups() {
			g.drawGroup(screen, grp)
		}
	}
	if g.showSlots {
		g.drawFormationSlots(screen)
	}
	g.drawDragPreview(screen)
}

// speedLabel renders the speed multiplier for the HUD.
func speedLabel(s float64) string {
	switch {
	case s == 0:
		return "PAUSED"
	case s == float64(int(s)):
		return fmt.Sprintf("%dx", int(s))
	default:
		return fmt.Sprintf("%.2gx", s)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("SIM: %s  T=%d  Space=pause  ,/. speed", speedLabel(g.simSpeed), g.world.Tick()),
		fmt.Sprintf("units=%d groups=%d selected=%d", len(g.world.Units()), len(g.world.Groups()), len(g.sel.IDs())),
		"LMB select/drill  drag=box  Ctrl=toggle",
		"RMB move  drag=form up  Shift=queue",
		"C column  F loose march  G combine",
		"Ctrl+S save  Ctrl+L load  Ctrl+C copy",
		"O slots  H HUD  WASD/scroll camera",
	}
	if wr := g.reporter.WindowSummary(); wr != nil {
		lines = append(lines, fmt.Sprintf("T%d..%d marching=%.0f%% spread=%.1f",
			wr.FromTick, wr.ToTick, wr.StatePct[sim.Marching], wr.AvgSpread))
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	const lineH = 14
	const charW = 7
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	bufH := float32(g.height / hudScale)
	bx := float32(4)
	by := bufH - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 110, A: 180}, false)
	vector.StrokeLine(g.hudBuf, bx+1, by+1, bx+boxW-1, by+1, 1.0, color.RGBA{R: 80, G: 110, B: 150, A: 80}, false)

	for i, line := range lines {
		g.drawText(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH, color.White)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) drawText(dst *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, g.face, op)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// GameWidth returns the playfield width (excluding log panel).
func (g *Game) GameWidth() int {
	return g.gameWidth
}
