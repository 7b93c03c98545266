// Package sound synthesizes the short blip played when the point set bounces
// off a viewport edge.
package sound

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Sink receives mono PCM16 samples. It may block when its buffer is full.
// PendingSamples reports how many written samples have not been played yet.
type Sink interface {
	Start(sampleRate uint32) error
	WriteSample(sample int16)
	PendingSamples() int
}

const (
	DefaultSampleRate = beep.SampleRate(22050)

	freqX   = 660.0
	freqY   = 880.0
	blipLen = 40 * time.Millisecond
)

// Tone renders d of a sine at freq, scaled by volume (0..1), with a linear
// fade-out so the blip does not click.
func Tone(rate beep.SampleRate, freq float64, d time.Duration, volume float64) ([]int16, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("sound: sine %vHz: %w", freq, err)
	}
	n := rate.N(d)
	s := withVolume(beep.Take(n, sine), volume)

	out := make([]int16, 0, n)
	buf := make([][2]float64, 512)
	for len(out) < n {
		got, ok := s.Stream(buf)
		for i := 0; i < got; i++ {
			fade := 1 - float64(len(out))/float64(n)
			out = append(out, toPCM16(buf[i][0]*fade))
		}
		if !ok || got == 0 {
			break
		}
	}
	return out, nil
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func toPCM16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(v * math.MaxInt16)
}

// Blips renders the horizontal and vertical bounce sounds.
func Blips(rate beep.SampleRate, volume float64) (x, y []int16, err error) {
	if x, err = Tone(rate, freqX, blipLen, volume); err != nil {
		return nil, nil, err
	}
	if y, err = Tone(rate, freqY, blipLen, volume); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Bouncer plays one blip per bounce on a background goroutine so the frame
// loop never waits on audio.
type Bouncer struct {
	sink Sink
	reqs chan []int16
	done chan struct{}
	x, y []int16
}

// NewBouncer prepares the blips and starts the sink at rate.
func NewBouncer(sink Sink, rate beep.SampleRate, volume float64) (*Bouncer, error) {
	if sink == nil {
		return nil, fmt.Errorf("sound: no audio sink")
	}
	x, y, err := Blips(rate, volume)
	if err != nil {
		return nil, err
	}
	if err := sink.Start(uint32(rate)); err != nil {
		return nil, fmt.Errorf("sound: start sink: %w", err)
	}
	b := &Bouncer{sink: sink, reqs: make(chan []int16, 4), done: make(chan struct{}), x: x, y: y}
	go b.run()
	return b, nil
}

func (b *Bouncer) run() {
	defer close(b.done)
	for samples := range b.reqs {
		// A blip queued behind more than one other would play late.
		if b.sink.PendingSamples() > len(samples) {
			continue
		}
		for _, s := range samples {
			b.sink.WriteSample(s)
		}
	}
}

// Bounce queues the blip for each axis that bounced. Requests are dropped
// while the queue is full.
func (b *Bouncer) Bounce(x, y bool) {
	if b == nil {
		return
	}
	if x {
		b.enqueue(b.x)
	}
	if y {
		b.enqueue(b.y)
	}
}

func (b *Bouncer) enqueue(s []int16) {
	select {
	case b.reqs <- s:
	default:
	}
}

// Close stops the playback goroutine and waits for it to finish writing.
func (b *Bouncer) Close() {
	if b == nil {
		return
	}
	close(b.reqs)
	<-b.done
}
