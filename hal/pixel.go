package hal

import "image"

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// expandRGB565 converts a little-endian RGB565 buffer into dst.
func expandRGB565(dst *image.RGBA, src []byte, stride int) {
	b := dst.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := src[y*stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx() && x*2+1 < len(row); x++ {
			r, g, bb := rgb888From565(uint16(row[x*2]) | uint16(row[x*2+1])<<8)
			j := x * 4
			out[j+0] = r
			out[j+1] = g
			out[j+2] = bb
			out[j+3] = 0xFF
		}
	}
}
