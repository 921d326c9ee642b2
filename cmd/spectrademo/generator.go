package main

import (
	"context"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/gogpu/spectra"
)

// toneGenerator produces a slowly drifting tone over white noise, paced
// at the sample rate.
type toneGenerator struct {
	rate    float64
	tone    float64
	block   []complex64
	phase   float64
	rng     *rand.Rand
	dropped atomic.Uint64
}

func newToneGenerator(rate, tone float64, blockLen int) *toneGenerator {
	return &toneGenerator{
		rate:  rate,
		tone:  tone,
		block: make([]complex64, blockLen),
		rng:   rand.New(rand.NewPCG(1, 2)),
	}
}

func (g *toneGenerator) fill(t float64) {
	// The tone wobbles by 5% of its offset with a 4 s period.
	freq := g.tone * (1 + 0.05*math.Sin(2*math.Pi*t/4))
	step := 2 * math.Pi * freq / g.rate
	for i := range g.block {
		g.phase += step
		s, c := math.Sincos(g.phase)
		n := complex(g.rng.NormFloat64()*0.01, g.rng.NormFloat64()*0.01)
		g.block[i] = complex64(complex(0.5*c, 0.5*s) + n)
	}
	g.phase = math.Mod(g.phase, 2*math.Pi)
}

func (g *toneGenerator) run(ctx context.Context, sink *spectra.Sink) {
	period := time.Duration(float64(len(g.block)) / g.rate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.fill(now.Sub(start).Seconds())
			if n := sink.Write(g.block); n < len(g.block) {
				g.dropped.Add(uint64(len(g.block) - n))
			}
		}
	}
}
