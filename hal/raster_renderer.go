package hal

import (
	"sync"

	"sharpengine/engine/geom"
	"sharpengine/engine/hud"
	"sharpengine/engine/raster"
)

// Styler is implemented by renderers whose fill color and raster mode can
// change at runtime.
type Styler interface {
	SetFill(c raster.Color)
	SetMode(m raster.Mode)
}

var hudColor = raster.RGB(0xFF, 0xD0, 0x40)

// rasterRenderer draws into a software target and hands the result to
// present. It backs the headless and terminal runners.
type rasterRenderer struct {
	mu      sync.Mutex
	target  raster.Target
	r       *raster.Renderer
	overlay *hud.Overlay
	pts     []geom.Point
	notes   []string
	frames  uint64

	present func() error
	closing func() bool
}

func newRasterRenderer(t raster.Target, present func() error) *rasterRenderer {
	return &rasterRenderer{
		target:  t,
		r:       raster.NewRenderer(raster.RGB(0xFF, 0xFF, 0xFF)),
		overlay: hud.New(hudColor),
		present: present,
	}
}

func (r *rasterRenderer) Upload(pts []geom.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pts = append(r.pts[:0], pts...)
}

func (r *rasterRenderer) Annotate(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes[:0], lines...)
}

func (r *rasterRenderer) SetFill(c raster.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.FillColor = c
}

func (r *rasterRenderer) SetMode(m raster.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Mode = m
}

func (r *rasterRenderer) DrawFrame() error {
	r.mu.Lock()
	r.r.Draw(r.target, r.pts)
	if len(r.notes) > 0 {
		r.overlay.Draw(r.target, r.notes)
	}
	r.frames++
	r.mu.Unlock()

	if r.present != nil {
		return r.present()
	}
	return nil
}

func (r *rasterRenderer) ShouldClose() bool {
	return r.closing != nil && r.closing()
}

func (r *rasterRenderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
