package app

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"sharpengine/engine/geom"
	"sharpengine/engine/raster"
	"sharpengine/engine/scene"
	"sharpengine/hal"
)

type fakeRenderer struct {
	calls   []string
	pts     []geom.Point
	notes   []string
	fill    raster.Color
	mode    raster.Mode
	drawErr error
}

func (r *fakeRenderer) Upload(pts []geom.Point) {
	r.calls = append(r.calls, "upload")
	r.pts = append(r.pts[:0], pts...)
}

func (r *fakeRenderer) DrawFrame() error {
	r.calls = append(r.calls, "draw")
	return r.drawErr
}

func (r *fakeRenderer) ShouldClose() bool       { return false }
func (r *fakeRenderer) Annotate(lines []string) { r.notes = append(r.notes[:0], lines...) }
func (r *fakeRenderer) SetFill(c raster.Color)  { r.fill = c }
func (r *fakeRenderer) SetMode(m raster.Mode)   { r.mode = m }

type fakeLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *fakeLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *fakeLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type fakeKeyboard struct{ ch chan hal.KeyEvent }

func (k fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakeHAL struct {
	log *fakeLogger
	r   *fakeRenderer
	kbd fakeKeyboard
	aud hal.Audio
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log: &fakeLogger{},
		r:   &fakeRenderer{},
		kbd: fakeKeyboard{ch: make(chan hal.KeyEvent, 8)},
	}
}

func (h *fakeHAL) Logger() hal.Logger     { return h.log }
func (h *fakeHAL) Renderer() hal.Renderer { return h.r }
func (h *fakeHAL) Input() hal.Input       { return h }
func (h *fakeHAL) Keyboard() hal.Keyboard { return h.kbd }
func (h *fakeHAL) Audio() hal.Audio       { return h.aud }

func (h *fakeHAL) press(r rune) { h.kbd.ch <- hal.KeyEvent{Press: true, Rune: r} }

func (h *fakeHAL) pressCode(code hal.KeyCode) {
	h.kbd.ch <- hal.KeyEvent{Press: true, Code: code}
}

func mustApp(t *testing.T, h *fakeHAL, cfg Config) *App {
	t.Helper()
	if cfg.Scene.Points == nil {
		cfg.Scene = scene.Default()
	}
	a, err := New(h, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewUploadsSeed(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	if len(h.r.calls) != 1 || h.r.calls[0] != "upload" {
		t.Fatalf("calls %v", h.r.calls)
	}
	if len(h.r.pts) != 3 || h.r.pts[2] != geom.P(0, 0.1, 0) {
		t.Fatalf("seed %+v", h.r.pts)
	}
	if h.r.fill != raster.RGB(0xFF, 0xFF, 0xFF) {
		t.Fatalf("fill %+v", h.r.fill)
	}
	if !h.log.contains("3 points") {
		t.Fatalf("missing banner: %q", h.log.lines)
	}
	if a.PointSet().Ticks() != 0 {
		t.Fatalf("ticked during New")
	}
}

func TestNewRejectsEmptyScene(t *testing.T) {
	c := scene.Default()
	c.Points = []scene.Vec3{}
	if _, err := New(newFakeHAL(), Config{Scene: c}); err == nil {
		t.Fatalf("expected error for empty scene")
	}
}

func TestStepOrder(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	h.r.calls = nil
	for i := 0; i < 2; i++ {
		if err := a.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	want := []string{"draw", "upload", "draw", "upload"}
	if strings.Join(h.r.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls %v want %v", h.r.calls, want)
	}
	if a.PointSet().Ticks() != 2 {
		t.Fatalf("ticks %d", a.PointSet().Ticks())
	}
	// Uploaded positions are the ticked ones.
	if h.r.pts[0] != a.PointSet().Points()[0] {
		t.Fatalf("upload lags the point set")
	}
}

func TestStepStopsOnEscapeAndQ(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	h.pressCode(hal.KeyEscape)
	if err := a.Step(); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("expected ErrStop, got %v", err)
	}
	h.press('q')
	if err := a.Step(); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("expected ErrStop, got %v", err)
	}
}

func TestPauseAndReset(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{HUD: true})
	for i := 0; i < 3; i++ {
		if err := a.Step(); err != nil {
			t.Fatal(err)
		}
	}

	h.press(' ')
	h.r.calls = nil
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if !a.Paused() || a.PointSet().Ticks() != 3 {
		t.Fatalf("paused=%v ticks=%d", a.Paused(), a.PointSet().Ticks())
	}
	if len(h.r.calls) != 1 || h.r.calls[0] != "draw" {
		t.Fatalf("paused frame calls %v", h.r.calls)
	}
	if !strings.Contains(strings.Join(h.r.notes, "\n"), "paused") {
		t.Fatalf("hud %q", h.r.notes)
	}

	h.press('r')
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if a.PointSet().Ticks() != 0 || h.r.pts[0] != geom.P(-0.1, -0.1, 0) {
		t.Fatalf("reset did not restore the seed: ticks=%d pts=%+v", a.PointSet().Ticks(), h.r.pts)
	}

	h.press(' ')
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if a.Paused() || a.PointSet().Ticks() != 1 {
		t.Fatalf("paused=%v ticks=%d", a.Paused(), a.PointSet().Ticks())
	}
}

func TestEnterStepsOnceWhilePaused(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	h.pressCode(hal.KeyEnter)
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if a.PointSet().Ticks() != 1 {
		t.Fatalf("enter while running changed the tick count: %d", a.PointSet().Ticks())
	}

	h.press(' ')
	h.pressCode(hal.KeyEnter)
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if !a.Paused() || a.PointSet().Ticks() != 2 {
		t.Fatalf("paused=%v ticks=%d", a.Paused(), a.PointSet().Ticks())
	}
	if h.r.pts[0] != a.PointSet().Points()[0] {
		t.Fatalf("single step not uploaded")
	}
	for i := 0; i < 3; i++ {
		if err := a.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if a.PointSet().Ticks() != 2 {
		t.Fatalf("kept ticking after a single step: %d", a.PointSet().Ticks())
	}
}

func TestStepPropagatesDrawError(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	boom := errors.New("boom")
	h.r.drawErr = boom
	if err := a.Step(); !errors.Is(err, boom) {
		t.Fatalf("expected draw error, got %v", err)
	}
}

func TestReloadReplacesPointSet(t *testing.T) {
	h := newFakeHAL()
	reload := make(chan scene.Config, 1)
	a := mustApp(t, h, Config{Reload: reload})
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}

	c := scene.Default()
	c.Points = append(c.Points, scene.Vec3{0, 0, 0}, scene.Vec3{0.1, 0, 0}, scene.Vec3{0, 0.1, 0})
	c.Fill = [3]uint8{0xFF, 0, 0}
	reload <- c
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if a.PointSet().Len() != 6 || len(h.r.pts) != 6 {
		t.Fatalf("len=%d uploaded=%d", a.PointSet().Len(), len(h.r.pts))
	}
	if h.r.fill != raster.RGB(0xFF, 0, 0) {
		t.Fatalf("fill not applied: %+v", h.r.fill)
	}
	if !h.log.contains("reloaded scene") {
		t.Fatalf("reload not logged: %q", h.log.lines)
	}

	close(reload)
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
}

// rasterOut draws into a real image so tests can look at pixels.
type rasterOut struct {
	*fakeRenderer
	target *raster.ImageTarget
	r      *raster.Renderer
}

func newRasterOut(w, h int) *rasterOut {
	return &rasterOut{
		fakeRenderer: &fakeRenderer{},
		target:       raster.NewImageTarget(w, h),
		r:            raster.NewRenderer(raster.RGB(0xFF, 0xFF, 0xFF)),
	}
}

func (o *rasterOut) SetFill(c raster.Color) { o.r.FillColor = c }
func (o *rasterOut) SetMode(m raster.Mode)  { o.r.Mode = m }

func (o *rasterOut) DrawFrame() error {
	o.r.Draw(o.target, o.pts)
	return nil
}

func TestWireframeSceneLeavesInteriorEmpty(t *testing.T) {
	white := raster.RGB(0xFF, 0xFF, 0xFF)
	for _, wire := range []bool{false, true} {
		c := scene.Default()
		c.Points = []scene.Vec3{{-0.8, -0.8, 0}, {0.8, -0.8, 0}, {0, 0.8, 0}}
		c.Wireframe = wire

		h := newFakeHAL()
		out := newRasterOut(64, 64)
		a, err := New(&rasterHAL{fakeHAL: h, out: out}, Config{Scene: c})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := a.Step(); err != nil {
			t.Fatal(err)
		}

		centre := out.target.At(32, 40) == white
		if centre == wire {
			t.Fatalf("wireframe=%v: centre lit=%v", wire, centre)
		}
		lit := 0
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				if out.target.At(x, y) == white {
					lit++
				}
			}
		}
		if lit == 0 {
			t.Fatalf("wireframe=%v: nothing drawn", wire)
		}
	}
}

type rasterHAL struct {
	*fakeHAL
	out *rasterOut
}

func (h *rasterHAL) Renderer() hal.Renderer { return h.out }

func TestHUDLines(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{HUD: true})
	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if len(h.r.notes) != 4 || h.r.notes[0] != "tick 1" {
		t.Fatalf("hud %q", h.r.notes)
	}
}

func TestSoundWithoutDevice(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{Sound: true})
	if !h.log.contains("no audio device") {
		t.Fatalf("expected fallback log, got %q", h.log.lines)
	}
	a.Close()
	if !h.log.contains("stopped after 0 ticks") {
		t.Fatalf("missing close log: %q", h.log.lines)
	}
}

type countingAudio struct {
	mu      sync.Mutex
	started uint32
	n       int
}

func (c *countingAudio) Start(rate uint32) error { c.started = rate; return nil }
func (c *countingAudio) Stop() error             { return nil }
func (c *countingAudio) SetVolume(uint8)         {}
func (c *countingAudio) PendingSamples() int     { return 0 }
func (c *countingAudio) WriteSample(int16) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func TestSoundStartsDevice(t *testing.T) {
	h := newFakeHAL()
	aud := &countingAudio{}
	h.aud = aud
	a := mustApp(t, h, Config{Sound: true})
	defer a.Close()
	if aud.started == 0 {
		t.Fatalf("audio device not started")
	}
}

type panicRenderer struct{ *fakeRenderer }

func (panicRenderer) DrawFrame() error { panic("lost context") }

func TestPanicBecomesError(t *testing.T) {
	h := newFakeHAL()
	a := mustApp(t, h, Config{})
	a.r = panicRenderer{h.r}
	err := a.Step()
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if !h.log.contains("SharpEngine panic") {
		t.Fatalf("panic not logged")
	}
}
