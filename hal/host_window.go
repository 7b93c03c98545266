//go:build cgo && !gl

package hal

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"sharpengine/engine/geom"
	"sharpengine/engine/hud"
	"sharpengine/engine/raster"
	"sharpengine/internal/buildinfo"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	Hz     int
}

// RunWindow opens a desktop window, runs one app step per tick, and draws the
// uploaded triangles with the GPU. It blocks until the window closes or the
// app stops.
func RunWindow(newApp AppFunc, cfg WindowConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1024, 768
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Title == "" {
		cfg.Title = "SharpEngine"
	}

	r := newEbitenRenderer(cfg.Width, cfg.Height)
	h := newHostHAL(nil, r, nil, newHostAudio())
	step, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, r: r, step: step}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(cfg.Hz)
	err = ebiten.RunGame(g)
	if aud := h.Audio(); aud != nil {
		_ = aud.Stop()
	}
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	h    *hostHAL
	r    *ebitenRenderer
	step func() error
}

func (g *hostGame) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.r.requestClose()
	}
	g.h.kbd.pollEbiten()
	if done, err := runStep(g.step); done {
		if err != nil {
			return err
		}
		return ebiten.Termination
	}
	if g.r.ShouldClose() {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	g.r.draw(screen)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.r.width, g.r.height
}

const maxVertices = 0xFFFF - 0xFFFF%3

// ebitenRenderer turns the uploaded NDC triangle list into ebiten vertices
// at DrawFrame and draws them on the next Draw.
type ebitenRenderer struct {
	width, height int

	mu      sync.Mutex
	pts     []geom.Point
	verts   []ebiten.Vertex
	idx     []uint16
	fill    raster.Color
	mode    raster.Mode
	notes   []string
	closing bool

	white   *ebiten.Image
	overlay *hud.Overlay
	hudTgt  *raster.ImageTarget
	hudImg  *ebiten.Image
}

func newEbitenRenderer(width, height int) *ebitenRenderer {
	return &ebitenRenderer{
		width:   width,
		height:  height,
		fill:    raster.RGB(0xFF, 0xFF, 0xFF),
		overlay: hud.New(hudColor),
	}
}

func (r *ebitenRenderer) Upload(pts []geom.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pts = append(r.pts[:0], pts...)
}

func (r *ebitenRenderer) Annotate(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes[:0], lines...)
}

func (r *ebitenRenderer) SetFill(c raster.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fill = c
}

func (r *ebitenRenderer) SetMode(m raster.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

func (r *ebitenRenderer) DrawFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.pts) - len(r.pts)%3
	if n > maxVertices {
		n = maxVertices
	}
	cr, cg, cb, ca := r.fill.Floats()
	w, h := float32(r.width), float32(r.height)

	r.verts = r.verts[:0]
	r.idx = r.idx[:0]
	for i := 0; i < n; i++ {
		p := r.pts[i]
		r.verts = append(r.verts, ebiten.Vertex{
			DstX:   (p.X + 1) / 2 * w,
			DstY:   (1 - p.Y) / 2 * h,
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
		r.idx = append(r.idx, uint16(i))
	}
	return nil
}

func (r *ebitenRenderer) ShouldClose() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closing
}

func (r *ebitenRenderer) requestClose() {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()
}

func (r *ebitenRenderer) draw(screen *ebiten.Image) {
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	screen.Fill(color.Black)
	switch {
	case len(r.verts) == 0:
	case r.mode == raster.ModeWireframe:
		r.drawEdges(screen)
	default:
		screen.DrawTriangles(r.verts, r.idx, r.white, &ebiten.DrawTrianglesOptions{})
	}
	if len(r.notes) > 0 {
		r.drawNotes(screen)
	}
}

func (r *ebitenRenderer) drawEdges(screen *ebiten.Image) {
	c := r.fill.RGBA8()
	for i := 0; i+2 < len(r.verts); i += 3 {
		tri := r.verts[i : i+3]
		for j := range tri {
			a, b := tri[j], tri[(j+1)%3]
			vector.StrokeLine(screen, a.DstX, a.DstY, b.DstX, b.DstY, 1, c, true)
		}
	}
}

func (r *ebitenRenderer) drawNotes(screen *ebiten.Image) {
	const scale = 2
	if r.hudTgt == nil {
		w, h := r.width/scale, r.height/scale
		r.hudTgt = raster.NewImageTarget(w, h)
		r.hudImg = ebiten.NewImage(w, h)
	}
	r.hudTgt.Clear(raster.Color{})
	r.overlay.Draw(r.hudTgt, r.notes)
	r.hudImg.WritePixels(r.hudTgt.Img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(r.hudImg, op)
}
