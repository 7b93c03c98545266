// Package anim advances a bouncing, breathing point set one frame at a time.
//
// Each Tick translates the points by the velocity, scales them about the
// centre of their bounding box, and reflects the velocity on any axis where a
// point left the viewport. The package never touches a renderer; callers pass
// Points() to whatever draws them.
package anim

import (
	"errors"
	"fmt"

	"sharpengine/engine/geom"
)

// ErrEmptyPointSet is returned when a point set has no points to animate.
var ErrEmptyPointSet = errors.New("anim: empty point set")

// BoundsMode selects how the per-tick bounding box is computed.
type BoundsMode uint8

const (
	// BoundsCorrected uses the true component-wise min and max.
	BoundsCorrected BoundsMode = iota
	// BoundsLiteral reproduces the original engine, whose max loop wrote its
	// result into the min accumulator. The effective box is
	// min=Max(p[0], p[n-1]), max=p[0].
	BoundsLiteral
)

func (m BoundsMode) String() string {
	switch m {
	case BoundsCorrected:
		return "corrected"
	case BoundsLiteral:
		return "literal"
	default:
		return fmt.Sprintf("BoundsMode(%d)", uint8(m))
	}
}

// ParseBoundsMode maps "corrected" (or "") and "literal" to a BoundsMode.
func ParseBoundsMode(s string) (BoundsMode, error) {
	switch s {
	case "", "corrected":
		return BoundsCorrected, nil
	case "literal":
		return BoundsLiteral, nil
	default:
		return 0, fmt.Errorf("anim: unknown bounds mode %q", s)
	}
}

// Bounds are the per-axis viewport limits used for bouncing.
type Bounds struct {
	Min float32
	Max float32
}

// Config seeds an AnimatedPointSet.
type Config struct {
	Points   []geom.Point
	Velocity geom.Point
	Scale    ScaleState
	Bounds   Bounds
	Mode     BoundsMode
}

// DefaultConfig returns the classic scene: a small triangle drifting up and
// right while breathing between half and full size.
func DefaultConfig() Config {
	return Config{
		Points: []geom.Point{
			geom.P(-0.1, -0.1, 0),
			geom.P(0.1, -0.1, 0),
			geom.P(0, 0.1, 0),
		},
		Velocity: geom.P(0.0001, 0.0001, 0),
		Scale:    DefaultScaleState(),
		Bounds:   Bounds{Min: -1, Max: 1},
		Mode:     BoundsCorrected,
	}
}

// Events reports what happened during a Tick.
type Events struct {
	BounceX bool
	BounceY bool
	// PhaseChanged is set when the oscillator switched between shrinking
	// and growing.
	PhaseChanged bool
	Phase        Phase
}

// Bounced reports whether either axis reflected.
func (e Events) Bounced() bool { return e.BounceX || e.BounceY }

// AnimatedPointSet owns a fixed-length point sequence plus its velocity and
// scale oscillator. It is not safe for concurrent use.
type AnimatedPointSet struct {
	points   []geom.Point
	velocity geom.Point
	scale    ScaleState
	bounds   Bounds
	mode     BoundsMode
	ticks    uint64
}

// New copies cfg.Points into a new point set.
func New(cfg Config) (*AnimatedPointSet, error) {
	if len(cfg.Points) == 0 {
		return nil, ErrEmptyPointSet
	}
	pts := make([]geom.Point, len(cfg.Points))
	copy(pts, cfg.Points)
	return &AnimatedPointSet{
		points:   pts,
		velocity: cfg.Velocity,
		scale:    cfg.Scale,
		bounds:   cfg.Bounds,
		mode:     cfg.Mode,
	}, nil
}

// Points returns the current positions. The slice is owned by the point set:
// callers may read it until the next Tick and must not modify it.
func (a *AnimatedPointSet) Points() []geom.Point { return a.points }

func (a *AnimatedPointSet) Len() int               { return len(a.points) }
func (a *AnimatedPointSet) Velocity() geom.Point   { return a.velocity }
func (a *AnimatedPointSet) ScaleState() ScaleState { return a.scale }
func (a *AnimatedPointSet) Mode() BoundsMode       { return a.mode }
func (a *AnimatedPointSet) Ticks() uint64          { return a.ticks }

// Tick advances the set by one frame.
func (a *AnimatedPointSet) Tick() (Events, error) {
	if a == nil || len(a.points) == 0 {
		return Events{}, ErrEmptyPointSet
	}
	pts := a.points

	for i := range pts {
		pts[i] = pts[i].Add(a.velocity)
	}

	lo, hi := BoundingBox(pts, a.mode)
	center := lo.Add(hi).Div(2)

	for i := range pts {
		pts[i] = pts[i].Sub(center)
	}
	for i := range pts {
		pts[i] = pts[i].Mul(a.scale.Multiplier)
	}

	before := a.scale.Phase()
	a.scale.advance()
	ev := Events{Phase: a.scale.Phase()}
	ev.PhaseChanged = ev.Phase != before

	for i := range pts {
		pts[i] = pts[i].Add(center)
	}

	for _, p := range pts {
		if a.outX(p) {
			a.velocity.X = -a.velocity.X
			ev.BounceX = true
			break
		}
	}
	for _, p := range pts {
		if a.outY(p) {
			a.velocity.Y = -a.velocity.Y
			ev.BounceY = true
			break
		}
	}

	a.ticks++
	return ev, nil
}

func (a *AnimatedPointSet) outX(p geom.Point) bool {
	return p.X >= a.bounds.Max && a.velocity.X > 0 || p.X <= a.bounds.Min && a.velocity.X < 0
}

func (a *AnimatedPointSet) outY(p geom.Point) bool {
	return p.Y >= a.bounds.Max && a.velocity.Y > 0 || p.Y <= a.bounds.Min && a.velocity.Y < 0
}

// BoundingBox returns the box of pts under mode. pts must not be empty.
func BoundingBox(pts []geom.Point, mode BoundsMode) (lo, hi geom.Point) {
	lo = pts[0]
	for _, p := range pts {
		lo = geom.Min(lo, p)
	}
	hi = pts[0]
	if mode == BoundsLiteral {
		for _, p := range pts {
			lo = geom.Max(hi, p)
		}
		return lo, hi
	}
	for _, p := range pts {
		hi = geom.Max(hi, p)
	}
	return lo, hi
}

// Center returns the centre of the current bounding box.
func (a *AnimatedPointSet) Center() (geom.Point, error) {
	if a == nil || len(a.points) == 0 {
		return geom.Point{}, ErrEmptyPointSet
	}
	lo, hi := BoundingBox(a.points, a.mode)
	return lo.Add(hi).Div(2), nil
}
