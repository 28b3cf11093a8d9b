package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 16 // DebugPrint glyphs are 16px tall
)

// categoryColors tints the marker beside each feed line.
var categoryColors = map[string]color.RGBA{
	"goal":     {R: 90, G: 200, B: 120, A: 255},
	"agent":    {R: 150, G: 150, B: 150, A: 255},
	"world":    {R: 90, G: 140, B: 230, A: 255},
	"snapshot": {R: 230, G: 190, B: 70, A: 255},
}

// ThoughtLog is a fixed-size ring buffer of recent simulation events shown in
// the side panel. The full history stays in sim.SimLog.
type ThoughtLog struct {
	entries []sim.SimLogEntry
	head    int
	count   int
}

// NewThoughtLog creates a feed with a fixed capacity.
func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{
		entries: make([]sim.SimLogEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (tl *ThoughtLog) Add(e sim.SimLogEntry) {
	tl.entries[tl.head] = e
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []sim.SimLogEntry {
	result := make([]sim.SimLogEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}

// Draw renders the feed panel on the right side of the screen.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 16, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 26, B: 36, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 70, B: 100, A: 200}, false)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3 // how many latest entries to highlight

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 36, B: 48, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 200, G: 200, B: 200, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 5, dot, false)

		ebitenutil.DebugPrintAt(screen, feedLine(e), panelX+12, y)
		y += logLineHeight
	}
}

// feedLine is the one-line text shown for e.
func feedLine(e sim.SimLogEntry) string {
	line := fmt.Sprintf("%5d %-6s %s.%s %s", e.Tick, e.Unit, e.Category, e.Key, e.Value)
	const maxChars = (logPanelWidth - 16) / 6
	if r := []rune(line); len(r) > maxChars {
		line = string(r[:maxChars-1]) + "~"
	}
	return line
}
