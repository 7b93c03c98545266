package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	logger Logger
	r      Renderer
	kbd    *hostKeyboard
	aud    Audio
}

func newHostHAL(logger Logger, r Renderer, kbd *hostKeyboard, aud Audio) *hostHAL {
	if logger == nil {
		logger = newHostLogger(os.Stdout)
	}
	if kbd == nil {
		kbd = newHostKeyboard()
	}
	return &hostHAL{logger: logger, r: r, kbd: kbd, aud: aud}
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) Renderer() Renderer { return h.r }
func (h *hostHAL) Input() Input       { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Audio() Audio       { return h.aud }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func newHostLogger(w io.Writer) *hostLogger { return &hostLogger{w: w} }

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// ringLogger keeps the last lines in memory for backends that own stdout.
type ringLogger struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func newRingLogger(n int) *ringLogger {
	if n <= 0 {
		n = 1
	}
	return &ringLogger{lines: make([]string, n)}
}

func (l *ringLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[l.next] = s
	l.next++
	if l.next == len(l.lines) {
		l.next = 0
		l.full = true
	}
}

func (l *ringLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

// Lines returns the retained lines, oldest first.
func (l *ringLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		return append([]string(nil), l.lines[:l.next]...)
	}
	out := make([]string, 0, len(l.lines))
	out = append(out, l.lines[l.next:]...)
	return append(out, l.lines[:l.next]...)
}

// runStep runs one app step. done is set when the app asked to stop or failed.
func runStep(step func() error) (done bool, err error) {
	if step == nil {
		return false, nil
	}
	if err := step(); err != nil {
		if errors.Is(err, ErrStop) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}
