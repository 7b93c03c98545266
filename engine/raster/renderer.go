package raster

import (
	"github.com/chewxy/math32"

	"sharpengine/engine/geom"
)

// Mode selects the rasterization mode.
type Mode uint8

const (
	ModeFill Mode = iota
	ModeWireframe
)

// Renderer draws NDC triangle lists into a Target.
//
// Create it once and reuse it.
type Renderer struct {
	Mode       Mode
	ClearColor Color
	FillColor  Color
}

// NewRenderer returns a filling renderer with a black background.
func NewRenderer(fill Color) *Renderer {
	return &Renderer{
		Mode:       ModeFill,
		ClearColor: RGB(0, 0, 0),
		FillColor:  fill,
	}
}

// Draw clears t and draws pts as a triangle list. A trailing partial triangle
// is ignored. Points are in NDC: x and y in [-1, 1] cover the target, +y up.
func (r *Renderer) Draw(t Target, pts []geom.Point) {
	if r == nil || t == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(r.ClearColor)

	for i := 0; i+2 < len(pts); i += 3 {
		x0, y0, ok0 := ndcToScreen(pts[i+0], w, h)
		x1, y1, ok1 := ndcToScreen(pts[i+1], w, h)
		x2, y2, ok2 := ndcToScreen(pts[i+2], w, h)
		if !ok0 || !ok1 || !ok2 {
			continue
		}

		switch r.Mode {
		case ModeWireframe:
			r.drawLine(t, x0, y0, x1, y1, r.FillColor)
			r.drawLine(t, x1, y1, x2, y2, r.FillColor)
			r.drawLine(t, x2, y2, x0, y0, r.FillColor)
		default:
			r.fillTriangle(t, w, h, x0, y0, x1, y1, x2, y2, r.FillColor)
		}
	}
}

// screenLimit keeps far off-screen vertices from overflowing int math.
const screenLimit = 1 << 20

func ndcToScreen(p geom.Point, w, h int) (x, y int, ok bool) {
	if math32.IsNaN(p.X) || math32.IsNaN(p.Y) || math32.IsInf(p.X, 0) || math32.IsInf(p.Y, 0) {
		return 0, 0, false
	}
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	if math32.Abs(sx) > screenLimit || math32.Abs(sy) > screenLimit {
		return 0, 0, false
	}
	return int(math32.Floor(sx + 0.5)), int(math32.Floor(sy + 0.5)), true
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *Renderer) fillTriangle(t Target, w, h int, x0, y0, x1, y1, x2, y2 int, c Color) {
	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	// Either winding fills; normalize to positive area.
	if area < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	minX, maxX := min3(x0, x1, x2), max3(x0, x1, x2)
	minY, maxY := min3(y0, y1, y2), max3(y0, y1, y2)
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min3(a, b, c int) int {
	if a > b {
		a = b
	}
	if a > c {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if a < b {
		a = b
	}
	if a < c {
		a = c
	}
	return a
}
