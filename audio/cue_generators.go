package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// ChirpGenerator sweeps linearly from one frequency to another over one tenth of a second
type ChirpGenerator struct {
	sr       beep.SampleRate
	from, to float64
	phase    float64
	pos      int
}

func NewChirpGenerator(sr beep.SampleRate, from, to float64) *ChirpGenerator {
	return &ChirpGenerator{sr: sr, from: from, to: to}
}

func (g *ChirpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	sweep := float64(g.sr) / 10
	for i := range samples {
		k := math.Min(float64(g.pos)/sweep, 1)
		freq := g.from + (g.to-g.from)*k
		g.phase += 2 * math.Pi * freq / float64(g.sr)

		env := math.Exp(-float64(g.pos) / float64(g.sr) * 30)
		s := 0.2 * env * math.Sin(g.phase)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *ChirpGenerator) Err() error { return nil }

// BurstGenerator is decaying noise over a low rumble
// Seeded explicitly so identical cues sound identical
type BurstGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

func NewBurstGenerator(sr beep.SampleRate, seed int64) *BurstGenerator {
	return &BurstGenerator{sr: sr, seed: seed}
}

func (g *BurstGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := math.Exp(-t * 12)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		rumble := 0.3 * math.Sin(2*math.Pi*70*t)

		s := env * (0.25*noise + rumble)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *BurstGenerator) Err() error { return nil }

// BuzzGenerator is a harmonic-rich tone with a short fade-in
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		s := 0.3*math.Sin(2*math.Pi*g.freq*t) +
			0.15*math.Sin(2*math.Pi*g.freq*2*t) +
			0.075*math.Sin(2*math.Pi*g.freq*3*t)
		s *= math.Min(t/0.02, 1) * 0.2

		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error { return nil }
