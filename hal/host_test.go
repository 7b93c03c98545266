package hal

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sharpengine/engine/geom"
	"sharpengine/engine/raster"
)

var cover = []geom.Point{geom.P(-1, -1, 0), geom.P(3, -1, 0), geom.P(-1, 3, 0)}

func TestRasterRendererCopiesOnUpload(t *testing.T) {
	tgt := raster.NewImageTarget(16, 16)
	presented := 0
	r := newRasterRenderer(tgt, func() error { presented++; return nil })
	r.SetFill(raster.RGB(0x10, 0x20, 0x30))

	pts := append([]geom.Point(nil), cover...)
	r.Upload(pts)
	for i := range pts {
		pts[i] = geom.P(5, 5, 0)
	}
	if err := r.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if presented != 1 || r.Frames() != 1 {
		t.Fatalf("presented=%d frames=%d", presented, r.Frames())
	}
	if got := tgt.At(8, 8); got != raster.RGB(0x10, 0x20, 0x30) {
		t.Fatalf("center pixel %+v", got)
	}
}

func TestRasterRendererWireframeMode(t *testing.T) {
	tgt := raster.NewImageTarget(64, 64)
	r := newRasterRenderer(tgt, nil)
	var _ Styler = r
	r.SetMode(raster.ModeWireframe)
	r.Upload([]geom.Point{geom.P(-0.8, -0.8, 0), geom.P(0.8, -0.8, 0), geom.P(0, 0.8, 0)})
	if err := r.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if got := tgt.At(32, 40); got != raster.RGB(0, 0, 0) {
		t.Fatalf("interior drawn in wireframe mode: %+v", got)
	}
	if got := tgt.At(32, 57); got != raster.RGB(0xFF, 0xFF, 0xFF) {
		t.Fatalf("bottom edge missing: %+v", got)
	}
}

func TestRasterRendererIgnoresPartialTriple(t *testing.T) {
	tgt := raster.NewImageTarget(8, 8)
	r := newRasterRenderer(tgt, nil)
	r.Upload(cover[:2])
	if err := r.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := tgt.At(x, y); got != raster.RGB(0, 0, 0) {
				t.Fatalf("pixel %d,%d drawn: %+v", x, y, got)
			}
		}
	}
}

func TestRasterRendererAnnotates(t *testing.T) {
	tgt := raster.NewImageTarget(64, 32)
	r := newRasterRenderer(tgt, nil)
	r.Annotate([]string{"tick 1"})
	if err := r.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	found := false
	for y := 0; y < 32 && !found; y++ {
		for x := 0; x < 64; x++ {
			if tgt.At(x, y) == hudColor {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("overlay text not drawn")
	}
}

func TestRingLoggerKeepsNewest(t *testing.T) {
	l := newRingLogger(3)
	if got := l.Lines(); len(got) != 0 {
		t.Fatalf("expected empty, got %q", got)
	}
	for _, s := range []string{"a", "b", "c", "d"} {
		l.WriteLineString(s)
	}
	l.WriteLineBytes([]byte("e"))
	got := l.Lines()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}

func TestRunStep(t *testing.T) {
	if done, err := runStep(nil); done || err != nil {
		t.Fatalf("nil step: done=%v err=%v", done, err)
	}
	if done, err := runStep(func() error { return ErrStop }); !done || err != nil {
		t.Fatalf("ErrStop: done=%v err=%v", done, err)
	}
	boom := errors.New("boom")
	if done, err := runStep(func() error { return boom }); !done || !errors.Is(err, boom) {
		t.Fatalf("failure: done=%v err=%v", done, err)
	}
}

type recordingApp struct {
	h     HAL
	steps int
}

func (a *recordingApp) step() error {
	a.steps++
	a.h.Renderer().Upload(cover)
	return a.h.Renderer().DrawFrame()
}

func TestRunHeadlessTicksAndSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	rec := &recordingApp{}
	err := RunHeadless(context.Background(), func(h HAL) (func() error, error) {
		rec.h = h
		if h.Audio() != nil {
			t.Errorf("headless should not expose audio")
		}
		return rec.step, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 5, Width: 32, Height: 24, Snapshot: path})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if rec.steps != 5 {
		t.Fatalf("expected 5 steps, got %d", rec.steps)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 32, 24) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	r, g, b, _ := img.At(16, 12).RGBA()
	if r>>8 != 0xFF || g>>8 != 0xFF || b>>8 != 0xFF {
		t.Fatalf("expected white center, got %x %x %x", r>>8, g>>8, b>>8)
	}
}

func TestRunHeadlessStopsOnErrStop(t *testing.T) {
	n := 0
	err := RunHeadless(context.Background(), func(h HAL) (func() error, error) {
		return func() error {
			n++
			if n == 3 {
				return ErrStop
			}
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000})
	if err != nil || n != 3 {
		t.Fatalf("err=%v steps=%d", err, n)
	}
}

func TestRunHeadlessPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(h HAL) (func() error, error) {
		return nil, boom
	}, HeadlessConfig{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}

	err = RunHeadless(context.Background(), func(h HAL) (func() error, error) {
		return func() error { return boom }, nil
	}, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, boom) {
		t.Fatalf("expected step error, got %v", err)
	}
}

func TestRunHeadlessHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := RunHeadless(ctx, func(h HAL) (func() error, error) {
		return func() error { return nil }, nil
	}, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestCellTarget(t *testing.T) {
	var c cellTarget
	c.resize(4, 6)
	if w, h := c.Size(); w != 4 || h != 6 {
		t.Fatalf("size %dx%d", w, h)
	}
	red := raster.RGB(0xFF, 0, 0)
	c.Clear(red)
	c.SetPixel(-1, 0, raster.RGB(0, 0xFF, 0))
	c.SetPixel(3, 5, raster.RGB(0, 0, 0xFF))
	if c.pix[0] != red || c.pix[23] != raster.RGB(0, 0, 0xFF) {
		t.Fatalf("unexpected pixels %+v", c.pix)
	}
	c.resize(2, 2)
	if len(c.pix) != 4 {
		t.Fatalf("resize kept %d pixels", len(c.pix))
	}
}

func TestExpandRGB565(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	fb.target().Clear(raster.RGB(0xFF, 0, 0))
	img := fb.image()
	r, g, b, a := img.At(1, 0).RGBA()
	if r>>8 != 0xFF || g != 0 || b != 0 || a>>8 != 0xFF {
		t.Fatalf("got %x %x %x %x", r, g, b, a)
	}
}
