package hal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"sharpengine/engine/raster"
)

// TermConfig controls the terminal runner.
type TermConfig struct {
	Hz       int
	Ticks    uint64
	LogLines int
}

// RunTerminal draws the app into the current terminal with half-block cells,
// two pixels per character. Log lines are shown below the picture.
func RunTerminal(ctx context.Context, newApp AppFunc, cfg TermConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	if cfg.LogLines <= 0 {
		cfg.LogLines = 4
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid terminal hz: %d", cfg.Hz)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer s.Fini()
	s.HideCursor()

	logs := newRingLogger(cfg.LogLines)
	term := &termPresenter{screen: s, logs: logs, logRows: cfg.LogLines}
	term.resize()

	var quit atomic.Bool
	r := newRasterRenderer(term.cells, term.present)
	r.closing = quit.Load
	kbd := newHostKeyboard()
	h := newHostHAL(logs, r, kbd, nil)

	step, err := newApp(h)
	if err != nil {
		return err
	}

	var resized atomic.Bool
	go pollTerm(s, kbd, &quit, &resized)

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if resized.Swap(false) {
				term.resize()
			}
			if done, err := runStep(step); done {
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
			if r.ShouldClose() {
				return nil
			}
		}
	}
}

// pollTerm forwards terminal events until the screen is finalized.
func pollTerm(s tcell.Screen, kbd *hostKeyboard, quit, resized *atomic.Bool) {
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			resized.Store(true)
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyCtrlC:
				quit.Store(true)
			case tcell.KeyEscape:
				kbd.emit(KeyEvent{Code: KeyEscape, Press: true})
			case tcell.KeyEnter:
				kbd.emit(KeyEvent{Code: KeyEnter, Press: true})
			case tcell.KeyRune:
				kbd.emit(KeyEvent{Press: true, Rune: ev.Rune()})
			}
		}
	}
}

type termPresenter struct {
	screen  tcell.Screen
	logs    *ringLogger
	logRows int
	cells   *cellTarget
}

// resize matches the cell grid to the screen. Runs on the loop goroutine so
// it never overlaps a draw.
func (p *termPresenter) resize() {
	w, h := p.screen.Size()
	rows := h - p.logRows
	if rows < 1 {
		rows = 1
	}
	if p.cells == nil {
		p.cells = &cellTarget{}
	}
	p.cells.resize(w, rows*2)
	p.screen.Clear()
}

func (p *termPresenter) present() error {
	c := p.cells
	rows := c.h / 2
	for y := 0; y < rows; y++ {
		for x := 0; x < c.w; x++ {
			top := c.pix[(2*y)*c.w+x]
			bot := c.pix[(2*y+1)*c.w+x]
			st := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bot))
			p.screen.SetContent(x, y, '▀', nil, st)
		}
	}

	lines := p.logs.Lines()
	for i := 0; i < p.logRows; i++ {
		var line []rune
		if i < len(lines) {
			line = []rune(lines[i])
		}
		for x := 0; x < c.w; x++ {
			ch := ' '
			if x < len(line) {
				ch = line[x]
			}
			p.screen.SetContent(x, rows+i, ch, nil, tcell.StyleDefault)
		}
	}
	p.screen.Show()
	return nil
}

func tcellColor(c raster.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// cellTarget is a plain color grid sized to the terminal.
type cellTarget struct {
	w, h int
	pix  []raster.Color
}

func (t *cellTarget) resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	t.w, t.h = w, h
	if cap(t.pix) >= w*h {
		t.pix = t.pix[:w*h]
	} else {
		t.pix = make([]raster.Color, w*h)
	}
}

func (t *cellTarget) Size() (w, h int) { return t.w, t.h }

func (t *cellTarget) SetPixel(x, y int, c raster.Color) {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return
	}
	t.pix[y*t.w+x] = c
}

func (t *cellTarget) Clear(c raster.Color) {
	for i := range t.pix {
		t.pix[i] = c
	}
}
