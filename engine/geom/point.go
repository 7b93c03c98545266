// Package geom holds the vector type shared by the animation core and the
// renderers.
package geom

import "github.com/chewxy/math32"

// Point is a 3-component float32 vector.
//
// A []Point is laid out as packed x,y,z float32 triples, which is also the
// vertex buffer layout the renderers upload.
type Point struct {
	X, Y, Z float32
}

func P(x, y, z float32) Point { return Point{X: x, Y: y, Z: z} }

func (p Point) Add(o Point) Point   { return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p Point) Sub(o Point) Point   { return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p Point) Mul(s float32) Point { return Point{p.X * s, p.Y * s, p.Z * s} }
func (p Point) Div(s float32) Point { return Point{p.X / s, p.Y / s, p.Z / s} }
func (p Point) Array() [3]float32   { return [3]float32{p.X, p.Y, p.Z} }
func FromArray(a [3]float32) Point  { return Point{a[0], a[1], a[2]} }

// Min returns the component-wise minimum of a and b.
func Min(a, b Point) Point {
	return Point{math32.Min(a.X, b.X), math32.Min(a.Y, b.Y), math32.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Point) Point {
	return Point{math32.Max(a.X, b.X), math32.Max(a.Y, b.Y), math32.Max(a.Z, b.Z)}
}

// ApproxEqual reports whether every component of p and o differs by at most eps.
func (p Point) ApproxEqual(o Point, eps float32) bool {
	return math32.Abs(p.X-o.X) <= eps &&
		math32.Abs(p.Y-o.Y) <= eps &&
		math32.Abs(p.Z-o.Z) <= eps
}

// Flatten appends the x,y,z components of pts to dst.
func Flatten(dst []float32, pts []Point) []float32 {
	for _, p := range pts {
		dst = append(dst, p.X, p.Y, p.Z)
	}
	return dst
}
