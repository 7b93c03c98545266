package hal

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"sharpengine/engine/raster"
)

// hostFramebuffer is an RGB565 pixel buffer owned by the runner goroutine.
type hostFramebuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int       { return f.width }
func (f *hostFramebuffer) Height() int      { return f.height }
func (f *hostFramebuffer) StrideBytes() int { return f.stride }
func (f *hostFramebuffer) Buffer() []byte   { return f.buf }

// target returns a raster target drawing straight into the buffer.
func (f *hostFramebuffer) target() *raster.RGB565Target {
	return &raster.RGB565Target{Buf: f.buf, Stride: f.stride, W: f.width, H: f.height}
}

func (f *hostFramebuffer) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	expandRGB565(img, f.buf, f.stride)
	return img
}

// writePNG stores the current frame at path.
func (f *hostFramebuffer) writePNG(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(out, f.image()); err != nil {
		out.Close()
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return nil
}
