package app

import (
	"errors"
	"fmt"

	"sharpengine/engine/anim"
	"sharpengine/engine/scene"
	"sharpengine/engine/sound"
	"sharpengine/hal"
	"sharpengine/internal/buildinfo"
)

// Config selects the scene and the optional extras of a run.
type Config struct {
	Scene   scene.Config
	HUD     bool
	Sound   bool
	Verbose bool
	// Reload delivers replacement scenes. It may be nil.
	Reload <-chan scene.Config
}

// App drives one AnimatedPointSet against a HAL renderer.
type App struct {
	h    hal.HAL
	log  hal.Logger
	r    hal.Renderer
	keys <-chan hal.KeyEvent
	cfg  Config

	seed    anim.Config
	set     *anim.AnimatedPointSet
	paused  bool
	advance bool
	bounces uint64
	bouncer *sound.Bouncer
	notes   []string
}

// New builds the point set from cfg.Scene and uploads the seed geometry.
func New(h hal.HAL, cfg Config) (*App, error) {
	if h == nil || h.Renderer() == nil {
		return nil, errors.New("app: no renderer")
	}
	a := &App{h: h, log: h.Logger(), r: h.Renderer(), cfg: cfg}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			a.keys = kbd.Events()
		}
	}

	if err := a.load(cfg.Scene); err != nil {
		return nil, err
	}
	a.logf("SharpEngine %s: %d points, bounds %s", buildinfo.Short(), a.set.Len(), a.set.Mode())

	if cfg.Sound {
		a.startSound()
	}
	a.annotate()
	a.r.Upload(a.set.Points())
	return a, nil
}

// Step runs one frame: input, reload, draw, tick, upload. While paused only
// the draw runs, unless Enter asked for a single tick.
func (a *App) Step() (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = a.panicked(v)
		}
	}()

	if err := a.drainKeys(); err != nil {
		return err
	}
	a.applyReload()

	if err := a.r.DrawFrame(); err != nil {
		return fmt.Errorf("app: draw: %w", err)
	}
	if a.paused && !a.advance {
		return nil
	}
	a.advance = false

	ev, err := a.set.Tick()
	if err != nil {
		return fmt.Errorf("app: tick: %w", err)
	}
	a.observe(ev)
	a.annotate()
	a.r.Upload(a.set.Points())
	return nil
}

// Close releases the sound worker and logs the final tick count. Call it once
// the runner has returned.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.bouncer.Close()
	a.bouncer = nil
	if a.set != nil {
		a.logf("stopped after %d ticks, %d bounces", a.set.Ticks(), a.bounces)
	}
}

func (a *App) Paused() bool                     { return a.paused }
func (a *App) PointSet() *anim.AnimatedPointSet { return a.set }

func (a *App) load(c scene.Config) error {
	seed, err := c.Anim()
	if err != nil {
		return fmt.Errorf("app: scene: %w", err)
	}
	set, err := anim.New(seed)
	if err != nil {
		return fmt.Errorf("app: scene: %w", err)
	}
	a.seed, a.set = seed, set
	if s, ok := a.r.(hal.Styler); ok {
		s.SetFill(c.FillColor())
		s.SetMode(c.RasterMode())
	}
	return nil
}

func (a *App) reset() {
	set, err := anim.New(a.seed)
	if err != nil {
		a.logf("reset: %v", err)
		return
	}
	a.set = set
	a.bounces = 0
	a.r.Upload(a.set.Points())
	a.logf("reset")
}

func (a *App) drainKeys() error {
	for {
		select {
		case ev := <-a.keys:
			if !ev.Press {
				continue
			}
			switch {
			case ev.Code == hal.KeyEscape, ev.Rune == 'q', ev.Rune == 'Q':
				return hal.ErrStop
			case ev.Rune == ' ':
				a.paused = !a.paused
				if a.paused {
					a.logf("paused at tick %d", a.set.Ticks())
				} else {
					a.logf("resumed")
				}
				a.annotate()
			case ev.Rune == 'r', ev.Rune == 'R':
				a.reset()
			case ev.Code == hal.KeyEnter:
				// Single step while paused.
				a.advance = a.paused
			}
		default:
			return nil
		}
	}
}

func (a *App) applyReload() {
	if a.cfg.Reload == nil {
		return
	}
	select {
	case c, ok := <-a.cfg.Reload:
		if !ok {
			a.cfg.Reload = nil
			return
		}
		if err := a.load(c); err != nil {
			a.logf("reload: %v", err)
			return
		}
		a.bounces = 0
		a.r.Upload(a.set.Points())
		a.logf("reloaded scene: %d points, bounds %s", a.set.Len(), a.set.Mode())
	default:
	}
}

func (a *App) observe(ev anim.Events) {
	if ev.PhaseChanged {
		a.logf("tick %d: %s at scale %.4f", a.set.Ticks(), ev.Phase, a.set.ScaleState().Scale)
	}
	if !ev.Bounced() {
		return
	}
	a.bounces++
	a.bouncer.Bounce(ev.BounceX, ev.BounceY)
	if a.cfg.Verbose {
		v := a.set.Velocity()
		a.logf("tick %d: bounce x=%t y=%t velocity (%.5f, %.5f)", a.set.Ticks(), ev.BounceX, ev.BounceY, v.X, v.Y)
	}
}

func (a *App) startSound() {
	aud := a.h.Audio()
	if aud == nil {
		a.logf("sound: no audio device, continuing without sound")
		return
	}
	b, err := sound.NewBouncer(aud, sound.DefaultSampleRate, 0.3)
	if err != nil {
		a.logf("sound: %v", err)
		return
	}
	a.bouncer = b
}

func (a *App) annotate() {
	an, ok := a.r.(hal.Annotator)
	if !ok || !a.cfg.HUD {
		return
	}
	s := a.set.ScaleState()
	v := a.set.Velocity()
	state := s.Phase().String()
	if a.paused {
		state = "paused"
	}
	a.notes = append(a.notes[:0],
		fmt.Sprintf("tick %d", a.set.Ticks()),
		fmt.Sprintf("scale %.3f %s", s.Scale, state),
		fmt.Sprintf("vel %.5f %.5f", v.X, v.Y),
		fmt.Sprintf("bounces %d", a.bounces),
	)
	an.Annotate(a.notes)
}

func (a *App) logf(format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.WriteLineString(fmt.Sprintf(format, args...))
}
