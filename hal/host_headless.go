package hal

import (
	"context"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz     int
	Ticks  uint64
	Width  int
	Height int
	// Snapshot, when set, receives the last frame as a PNG on exit.
	Snapshot string
}

// RunHeadless runs the app against a software framebuffer without opening a
// window. It returns after cfg.Ticks frames (0 = run forever), when the app
// stops, or when ctx is done.
func RunHeadless(ctx context.Context, newApp AppFunc, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 320, 240
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	fb := newHostFramebuffer(cfg.Width, cfg.Height)
	r := newRasterRenderer(fb.target(), nil)
	h := newHostHAL(newHostLogger(os.Stdout), r, nil, nil)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	err = headlessLoop(ctx, step, r, d, cfg.Ticks)
	if cfg.Snapshot != "" {
		if serr := fb.writePNG(cfg.Snapshot); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func headlessLoop(ctx context.Context, step func() error, r Renderer, d time.Duration, ticks uint64) error {
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if done, err := runStep(step); done {
				return err
			}
			tick++
			if ticks > 0 && tick >= ticks {
				return nil
			}
			if r.ShouldClose() {
				return nil
			}
		}
	}
}
