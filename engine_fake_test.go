package spectra

import (
	"errors"
	"sync"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/render"
)

// fakeEngine records the calls made by the render loop.
type fakeEngine struct {
	mu        sync.Mutex
	fftLen    int
	processed []int
	draws     []render.Descriptor
	refLevel  int
	dbPerDiv  int
	freq      render.FrequencyRange
	windowLen []int
	released  bool
	lookups   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{fftLen: compute.DefaultFFTLength}
}

func (e *fakeEngine) factory() compute.Factory {
	return func(render.DeviceHandle, render.Canvas) (compute.Engine, error) {
		return e, nil
	}
}

func (e *fakeEngine) Release() {
	e.mu.Lock()
	e.released = true
	e.mu.Unlock()
}

func (e *fakeEngine) Process(samples []complex64) {
	e.mu.Lock()
	e.processed = append(e.processed, len(samples))
	e.mu.Unlock()
}

func (e *fakeEngine) Draw(d *render.Descriptor) error {
	e.mu.Lock()
	e.draws = append(e.draws, *d)
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) SetPowerRange(refLevel, dbPerDiv int) {
	e.mu.Lock()
	e.refLevel, e.dbPerDiv = refLevel, dbPerDiv
	e.mu.Unlock()
}

func (e *fakeEngine) SetFrequencyRange(center, span float64) {
	e.mu.Lock()
	e.freq = render.FrequencyRange{Center: center, Span: span}
	e.mu.Unlock()
}

func (e *fakeEngine) SetWindow(coeffs []float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(coeffs) != e.fftLen {
		return errors.New("fake: window length mismatch")
	}
	e.windowLen = append(e.windowLen, len(coeffs))
	return nil
}

func (e *fakeEngine) SetFFTLength(n int) error {
	if !compute.ValidFFTLength(n) {
		return compute.ErrInvalidFFTLength
	}
	e.mu.Lock()
	e.fftLen = n
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) FFTLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fftLen
}

func (e *fakeEngine) PosToFrequency(d *render.Descriptor, x float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lookups++
	return d.PosToFrequency(x, e.freq)
}

func (e *fakeEngine) HitTest(d *render.Descriptor, x, y float64) render.Hit {
	return d.PosInside(x, y)
}

func (e *fakeEngine) processCalls() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.processed...)
}

func (e *fakeEngine) lookupCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookups
}

func (e *fakeEngine) isReleased() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

var _ compute.Engine = (*fakeEngine)(nil)
