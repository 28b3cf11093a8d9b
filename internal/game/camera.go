package game

import (
	"math"

	"github.com/Garsondee/Boid-Drill/internal/sim"
)

const (
	zoomMin = 0.25
	zoomMax = 4.0
)

// camera maps world coordinates onto the playfield viewport:
//
//	screen = (world - cam) * zoom + vpHalf + offset
//	world  = (screen - offset - vpHalf) / zoom + cam
type camera struct {
	x, y float64 // world-space centre of the view
	zoom float64
	vpW  float64
	vpH  float64
}

func newCamera(vpW, vpH int, zoom float64) camera {
	c := camera{vpW: float64(vpW), vpH: float64(vpH), zoom: 1}
	c.zoomBy(zoom)
	return c
}

// centerOn points the camera at the mean of all group centres.
func (c *camera) centerOn(w *sim.World) {
	groups := w.Groups()
	if len(groups) == 0 {
		return
	}
	var sum sim.Vec2
	for _, g := range groups {
		sum = sum.Add(g.Center())
	}
	mid := sum.Mul(1 / float64(len(groups)))
	c.x, c.y = mid.X, mid.Y
}

// toWorld converts a window pixel to world space. offX/offY is the
// playfield's offset inside the window.
func (c camera) toWorld(sx, sy, offX, offY int) sim.Vec2 {
	return sim.V(
		(float64(sx)-float64(offX)-c.vpW/2)/c.zoom+c.x,
		(float64(sy)-float64(offY)-c.vpH/2)/c.zoom+c.y,
	)
}

func (c camera) toScreen(p sim.Vec2, offX, offY int) (float32, float32) {
	return float32((p.X-c.x)*c.zoom + c.vpW/2 + float64(offX)),
		float32((p.Y-c.y)*c.zoom + c.vpH/2 + float64(offY))
}

func (c *camera) pan(dx, dy float64) {
	c.x += dx / c.zoom
	c.y += dy / c.zoom
}

// zoomBy multiplies the zoom factor, clamped to [zoomMin, zoomMax].
func (c *camera) zoomBy(f float64) {
	if f <= 0 || math.IsNaN(f) {
		return
	}
	c.zoom = math.Min(math.Max(c.zoom*f, zoomMin), zoomMax)
}
