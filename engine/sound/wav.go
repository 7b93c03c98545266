package sound

import (
	"io"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// pcmStreamer replays mono PCM16 samples as a beep stream.
type pcmStreamer struct {
	samples []int16
	pos     int
}

func (p *pcmStreamer) Stream(buf [][2]float64) (int, bool) {
	if p.pos >= len(p.samples) {
		return 0, false
	}
	n := 0
	for n < len(buf) && p.pos < len(p.samples) {
		v := float64(p.samples[p.pos]) / math.MaxInt16
		buf[n] = [2]float64{v, v}
		n++
		p.pos++
	}
	return n, true
}

func (p *pcmStreamer) Err() error { return nil }

// WriteWAV encodes samples as a mono 16-bit WAV file.
func WriteWAV(w io.WriteSeeker, rate beep.SampleRate, samples []int16) error {
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	return wav.Encode(w, &pcmStreamer{samples: samples}, format)
}
