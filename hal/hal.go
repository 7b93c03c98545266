package hal

import (
	"errors"

	"sharpengine/engine/geom"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrStop is returned by an app step to end the run cleanly.
var ErrStop = errors.New("hal: stop")

// Renderer draws a triangle list of NDC positions.
//
// Upload copies pts; the caller may reuse the slice as soon as it returns.
// DrawFrame clears and draws the last uploaded positions as consecutive
// triples. ShouldClose reports that the user asked to close the output.
type Renderer interface {
	Upload(pts []geom.Point)
	DrawFrame() error
	ShouldClose() bool
}

// Annotator is implemented by renderers that can show a text overlay.
type Annotator interface {
	Annotate(lines []string)
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeyEnter
)

// KeyEvent is a keyboard event. Printable keys carry Rune with Code unset.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Audio is a mono PCM16 output stream.
//
// WriteSample blocks while the internal buffer is full. PendingSamples is the
// number of written samples not yet handed to the device.
type Audio interface {
	Start(sampleRate uint32) error
	Stop() error
	SetVolume(vol uint8)
	WriteSample(sample int16)
	PendingSamples() int
}

// HAL provides the only contact point between the app and the outside world.
// Audio may be nil when the backend has no sound device.
type HAL interface {
	Logger() Logger
	Renderer() Renderer
	Input() Input
	Audio() Audio
}

// AppFunc builds the per-frame step for a HAL. A step returning ErrStop ends
// the run without error.
type AppFunc func(h HAL) (step func() error, err error)
