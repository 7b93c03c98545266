// Package hud draws a few lines of status text over a raster target.
package hud

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"sharpengine/engine/raster"
)

// Overlay renders text lines in the top-left corner of a target.
type Overlay struct {
	Font       tinyfont.Fonter
	Color      raster.Color
	LineHeight int16
	Margin     int16
}

// New returns an overlay using the small proggy font.
func New(c raster.Color) *Overlay {
	return &Overlay{
		Font:       &proggy.TinySZ8pt7b,
		Color:      c,
		LineHeight: 10,
		Margin:     2,
	}
}

// Draw writes lines onto t, one per row, clipping anything past the bottom.
func (o *Overlay) Draw(t raster.Target, lines []string) {
	if o == nil || t == nil || o.Font == nil || len(lines) == 0 {
		return
	}
	d := display{t: t}
	_, h := d.Size()
	fg := o.Color.RGBA8()
	y := o.Margin + o.LineHeight
	for _, line := range lines {
		if y > h {
			return
		}
		tinyfont.WriteLine(d, o.Font, o.Margin, y, line, fg)
		y += o.LineHeight
	}
}

// display adapts a raster.Target to the tinyfont drawing interface.
type display struct {
	t raster.Target
}

var _ drivers.Displayer = display{}

func (d display) Size() (x, y int16) {
	w, h := d.t.Size()
	return int16(w), int16(h)
}

func (d display) SetPixel(x, y int16, c color.RGBA) {
	d.t.SetPixel(int(x), int(y), raster.FromRGBA(c))
}

func (d display) Display() error { return nil }
