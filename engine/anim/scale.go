package anim

// Phase is the direction the scale oscillator is moving in.
type Phase uint8

const (
	Shrinking Phase = iota
	Growing
)

func (p Phase) String() string {
	if p == Growing {
		return "growing"
	}
	return "shrinking"
}

// ScaleState is a two-phase oscillator between Low and High.
//
// Scale is the running product of applied multipliers, not a measurement of
// the geometry, so it drifts from the real extent over long runs.
type ScaleState struct {
	Scale      float32
	Multiplier float32

	Shrink float32 // applied while shrinking, < 1
	Grow   float32 // applied while growing, > 1
	Low    float32 // switch to Grow at or below
	High   float32 // switch to Shrink at or above
}

// DefaultScaleState starts at full size, shrinking by 0.1% per tick.
func DefaultScaleState() ScaleState {
	return ScaleState{
		Scale:      1,
		Multiplier: 0.999,
		Shrink:     0.999,
		Grow:       1.001,
		Low:        0.5,
		High:       1,
	}
}

func (s ScaleState) Phase() Phase {
	if s.Multiplier > 1 {
		return Growing
	}
	return Shrinking
}

func (s *ScaleState) advance() {
	s.Scale *= s.Multiplier
	if s.Scale <= s.Low {
		s.Multiplier = s.Grow
	} else if s.Scale >= s.High {
		s.Multiplier = s.Shrink
	}
}
