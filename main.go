package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sharpengine/app"
	"sharpengine/engine/scene"
	"sharpengine/hal"
	"sharpengine/internal/buildinfo"
)

func main() {
	var (
		backend   = flag.String("backend", "window", "Output backend: window|gl|term|headless.")
		hz        = flag.Int("hz", 60, "Tick rate.")
		ticks     = flag.Uint64("ticks", 0, "Stop after N ticks in headless and term mode (0 = run forever).")
		scenePath = flag.String("scene", "", "Scene file (TOML). Built-in triangle when empty.")
		watch     = flag.Bool("watch", false, "Reload the scene file when it changes.")
		literal   = flag.Bool("literal-bounds", false, "Use the literal (min=max(p0,pN), max=p0) bounding box.")
		sound     = flag.Bool("sound", false, "Play a blip on each bounce.")
		hud       = flag.Bool("hud", false, "Show tick, scale, and velocity.")
		snapshot  = flag.String("snapshot", "", "Write the last headless frame to this PNG file.")
		verbose   = flag.Bool("verbose", false, "Log every bounce.")
		dump      = flag.Bool("dump-scene", false, "Print the effective scene as TOML and exit.")
		version   = flag.Bool("version", false, "Print build info and exit.")
	)
	flag.Parse()

	if *version {
		fmt.Println(buildinfo.String())
		return
	}

	sc := scene.Default()
	if *scenePath != "" {
		var err error
		if sc, err = scene.Load(*scenePath); err != nil {
			fatal(err)
		}
	}
	if *literal {
		sc.BoundsMode = "literal"
	}
	if *dump {
		if err := scene.Encode(os.Stdout, sc); err != nil {
			fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := app.Config{Scene: sc, HUD: *hud, Sound: *sound, Verbose: *verbose}
	if *watch {
		if *scenePath == "" {
			fatal(errors.New("-watch needs -scene"))
		}
		ch, err := scene.Watch(ctx, *scenePath, func(err error) {
			fmt.Fprintln(os.Stderr, err)
		})
		if err != nil {
			fatal(err)
		}
		cfg.Reload = forceMode(ch, *literal)
	}

	var a *app.App
	newApp := func(h hal.HAL) (func() error, error) {
		var err error
		if a, err = app.New(h, cfg); err != nil {
			return nil, err
		}
		return a.Step, nil
	}

	win := hal.WindowConfig{Width: sc.Window.Width, Height: sc.Window.Height, Title: sc.Window.Title, Hz: *hz}
	var err error
	switch *backend {
	case "window":
		err = hal.RunWindow(newApp, win)
	case "gl":
		err = hal.RunGL(newApp, win)
	case "term":
		err = hal.RunTerminal(ctx, newApp, hal.TermConfig{Hz: *hz, Ticks: *ticks})
	case "headless":
		err = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:       *hz,
			Ticks:    *ticks,
			Width:    sc.Window.Width,
			Height:   sc.Window.Height,
			Snapshot: *snapshot,
		})
	default:
		err = fmt.Errorf("unknown backend %q", *backend)
	}
	a.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

// forceMode keeps -literal-bounds in effect across reloads.
func forceMode(in <-chan scene.Config, literal bool) <-chan scene.Config {
	if !literal {
		return in
	}
	return scene.Rewrite(in, func(c scene.Config) scene.Config {
		c.BoundsMode = "literal"
		return c
	})
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
