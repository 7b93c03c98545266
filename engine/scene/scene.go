// Package scene loads the seed geometry and animation constants from TOML.
//
// A scene file only needs the keys it wants to change; everything else keeps
// the built-in defaults:
//
//	bounds_mode = "literal"
//	points = [[-0.1, -0.1, 0.0], [0.1, -0.1, 0.0], [0.0, 0.1, 0.0]]
//	velocity = [0.0001, 0.0001, 0.0]
//	wireframe = true
//
//	[scale]
//	shrink = 0.995
//	grow = 1.005
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	"sharpengine/engine/anim"
	"sharpengine/engine/geom"
	"sharpengine/engine/raster"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("scene: invalid")

type Vec3 [3]float32

// Config is the on-disk scene description.
type Config struct {
	Points     []Vec3   `toml:"points"`
	Velocity   Vec3     `toml:"velocity"`
	BoundsMode string   `toml:"bounds_mode"`
	Fill       [3]uint8 `toml:"fill"`
	Wireframe  bool     `toml:"wireframe"`

	Scale  Scale  `toml:"scale"`
	Bounds Bounds `toml:"bounds"`
	Window Window `toml:"window"`
}

type Scale struct {
	Initial float32 `toml:"initial"`
	Shrink  float32 `toml:"shrink"`
	Grow    float32 `toml:"grow"`
	Low     float32 `toml:"low"`
	High    float32 `toml:"high"`
}

type Bounds struct {
	Min float32 `toml:"min"`
	Max float32 `toml:"max"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Default returns the built-in scene.
func Default() Config {
	def := anim.DefaultConfig()
	c := Config{
		Velocity:   Vec3(def.Velocity.Array()),
		BoundsMode: def.Mode.String(),
		Fill:       [3]uint8{0xFF, 0xFF, 0xFF},
		Scale: Scale{
			Initial: def.Scale.Scale,
			Shrink:  def.Scale.Shrink,
			Grow:    def.Scale.Grow,
			Low:     def.Scale.Low,
			High:    def.Scale.High,
		},
		Bounds: Bounds{Min: def.Bounds.Min, Max: def.Bounds.Max},
		Window: Window{Width: 1024, Height: 768, Title: "SharpEngine"},
	}
	for _, p := range def.Points {
		c.Points = append(c.Points, Vec3(p.Array()))
	}
	return c
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("scene: %s", strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return Config{}, fmt.Errorf("scene: line %d col %d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("scene: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the scene file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("scene: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Encode writes c as TOML.
func Encode(w io.Writer, c Config) error {
	enc := toml.NewEncoder(w)
	enc.SetArraysMultiline(false)
	return enc.Encode(c)
}

// Validate checks the ranges the animation relies on.
func (c Config) Validate() error {
	for i, p := range c.Points {
		if !finite(p[:]...) {
			return fmt.Errorf("%w: points[%d] is not finite: %v", ErrInvalid, i, p)
		}
	}
	s, b := c.Scale, c.Bounds
	switch {
	case !finite(c.Velocity[:]...):
		return fmt.Errorf("%w: velocity is not finite: %v", ErrInvalid, c.Velocity)
	case !finite(s.Initial, s.Shrink, s.Grow, s.Low, s.High):
		return fmt.Errorf("%w: scale values must be finite, got %+v", ErrInvalid, s)
	case !finite(b.Min, b.Max):
		return fmt.Errorf("%w: bounds must be finite, got %v/%v", ErrInvalid, b.Min, b.Max)
	case len(c.Points) == 0:
		return fmt.Errorf("%w: at least one point is required", ErrInvalid)
	case !(c.Scale.Initial > 0):
		return fmt.Errorf("%w: scale.initial must be > 0, got %v", ErrInvalid, c.Scale.Initial)
	case !(c.Scale.Shrink > 0 && c.Scale.Shrink < 1):
		return fmt.Errorf("%w: scale.shrink must be in (0, 1), got %v", ErrInvalid, c.Scale.Shrink)
	case !(c.Scale.Grow > 1):
		return fmt.Errorf("%w: scale.grow must be > 1, got %v", ErrInvalid, c.Scale.Grow)
	case !(c.Scale.Low > 0 && c.Scale.Low < c.Scale.High):
		return fmt.Errorf("%w: need 0 < scale.low < scale.high, got %v/%v", ErrInvalid, c.Scale.Low, c.Scale.High)
	case !(c.Bounds.Min < c.Bounds.Max):
		return fmt.Errorf("%w: need bounds.min < bounds.max, got %v/%v", ErrInvalid, c.Bounds.Min, c.Bounds.Max)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := anim.ParseBoundsMode(c.BoundsMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Anim converts the scene into an animation seed. The set starts shrinking.
func (c Config) Anim() (anim.Config, error) {
	mode, err := anim.ParseBoundsMode(c.BoundsMode)
	if err != nil {
		return anim.Config{}, err
	}
	pts := make([]geom.Point, len(c.Points))
	for i, p := range c.Points {
		pts[i] = geom.FromArray(p)
	}
	return anim.Config{
		Points:   pts,
		Velocity: geom.FromArray(c.Velocity),
		Scale: anim.ScaleState{
			Scale:      c.Scale.Initial,
			Multiplier: c.Scale.Shrink,
			Shrink:     c.Scale.Shrink,
			Grow:       c.Scale.Grow,
			Low:        c.Scale.Low,
			High:       c.Scale.High,
		},
		Bounds: anim.Bounds{Min: c.Bounds.Min, Max: c.Bounds.Max},
		Mode:   mode,
	}, nil
}

// FillColor returns the flat triangle color.
func (c Config) FillColor() raster.Color {
	return raster.RGB(c.Fill[0], c.Fill[1], c.Fill[2])
}

// RasterMode returns the triangle drawing mode.
func (c Config) RasterMode() raster.Mode {
	if c.Wireframe {
		return raster.ModeWireframe
	}
	return raster.ModeFill
}
