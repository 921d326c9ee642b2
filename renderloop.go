package spectra

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/render"
)

// IdleInterval is how long the render loop sleeps per iteration while the
// surface is hidden.
const IdleInterval = 10 * time.Millisecond

// bootMu serializes engine creation across every sink in the process.
var bootMu sync.Mutex

// run is the render goroutine. Every exit path funnels through the
// deferred teardown, which releases what was acquired in reverse order.
func (s *Sink) run(done chan struct{}) {
	var release []func()
	defer func() {
		s.setState(StateDraining)
		for i := len(release) - 1; i >= 0; i-- {
			release[i]()
		}
		s.renderMu.Lock()
		s.engine = nil
		s.renderMu.Unlock()
		s.setState(StateIdle)
		s.log.Info("spectra: render loop stopped")
		close(done)
	}()

	s.setState(StateInitializing)

	if err := s.surf.Init(); err != nil {
		s.fail(fmt.Errorf("%w: %w", ErrSurfaceInit, err))
		return
	}
	release = append(release, func() {
		if err := s.surf.Close(); err != nil {
			s.log.Warn("spectra: close surface", "err", err)
		}
	})

	eng, err := s.bootEngine()
	if err != nil {
		s.fail(fmt.Errorf("%w: %w", ErrNoEngine, err))
		return
	}
	s.renderMu.Lock()
	s.engine = eng
	s.renderMu.Unlock()
	release = append(release, eng.Release)

	s.width, s.height = s.surf.Size()
	s.applySettings(SettingAll&^SettingDimensions, s.snapshot())

	s.setState(StateRunning)
	s.log.Info("spectra: render loop started", "fft", eng.FFTLength(), "width", s.width, "height", s.height)

	for s.active.Load() {
		s.renderFrame()
		s.surf.Poll()
	}
}

func (s *Sink) bootEngine() (compute.Engine, error) {
	bootMu.Lock()
	defer bootMu.Unlock()
	return s.factory(s.surf.Device(), s.surf.Canvas())
}

func (s *Sink) fail(err error) {
	s.log.Error("spectra: render loop initialization failed", "err", err)
	s.metrics.InitFailures.Inc()
	s.setErr(err)
}

// snapshot returns the current configuration values without draining.
func (s *Sink) snapshot() params {
	var p params
	s.settings.Update(0, func() bool {
		p = s.params
		return false
	})
	return p
}

// applySettings pushes the categories in set to the surface, the engine
// and the pane layout. Dimensions go first since the layout depends on
// them.
func (s *Sink) applySettings(set Setting, p params) {
	if set == 0 {
		return
	}
	s.log.Debug("spectra: applying settings", "settings", set)

	if set.Has(SettingDimensions) {
		s.width, s.height = s.surf.Update()
	}

	if set.Has(SettingPowerRange) {
		s.renderMu.Lock()
		ui := s.ui
		s.renderMu.Unlock()
		s.engine.SetPowerRange(ui.RefLevel, ui.DBPerDiv())
	}

	if set.Has(SettingFrequencyRange) {
		s.renderMu.Lock()
		s.engine.SetFrequencyRange(p.freq.Center, p.freq.Span)
		s.renderMu.Unlock()
	}

	if set.Has(SettingFFTWindow) {
		s.setWindow(p.window)
	}

	if set.Has(SettingFFTSize) {
		if err := s.engine.SetFFTLength(p.fftSize); err != nil {
			s.log.Warn("spectra: set FFT length", "size", p.fftSize, "err", err)
		}
		s.setWindow(p.window)
	}

	if set.Any(SettingDimensions | SettingRenderOptions) {
		s.renderMu.Lock()
		layoutOf(s.width, s.height, s.ui).Apply(&s.main, &s.zoom)
		s.renderMu.Unlock()
	}
}

func (s *Sink) setWindow(k compute.WindowKind) {
	coeffs := compute.BuildWindow(k, s.engine.FFTLength())
	if err := s.engine.SetWindow(coeffs); err != nil {
		s.log.Warn("spectra: set FFT window", "window", k, "err", err)
	}
}

// renderFrame runs one iteration of the render loop.
func (s *Sink) renderFrame() {
	var p params
	set := s.settings.DrainFunc(func(Setting) { p = s.params })
	s.applySettings(set, p)

	s.renderMu.Lock()
	frozen := s.ui.Frozen
	s.renderMu.Unlock()

	s.drainFifo(frozen)

	s.renderMu.Lock()
	visible := s.visible
	if visible {
		s.drawFrame()
	}
	s.renderMu.Unlock()

	if !visible {
		s.metrics.IdleSleeps.Inc()
		time.Sleep(IdleInterval)
	}
}

// drainFifo hands queued samples to the engine in batches aligned to
// BatchMult FFT blocks. An unaligned remainder stays queued. While frozen
// the batches are discarded unprocessed.
func (s *Sink) drainFifo(frozen bool) {
	fftLen := s.engine.FFTLength()
	align := compute.BatchMult*fftLen - 1
	limit := compute.BatchMax * fftLen

	total := s.fifo.Used()
	for i := 0; i < compute.MaxIterations && total > 0; i++ {
		n := min(total, s.fifo.ReadMaxSize())
		n &^= align
		n = min(n, limit)
		total -= n
		if n == 0 {
			break
		}

		if frozen {
			s.metrics.BatchesSkipped.Inc()
		} else {
			s.engine.Process(s.fifo.ReadPeek(n))
			s.metrics.BatchesProcessed.Inc()
		}
		s.fifo.ReadDiscard(n)
	}
	s.metrics.FifoFill.Set(float64(s.fifo.Used()) / float64(s.fifo.Cap()))
}

// drawFrame draws both panes and presents. Called with renderMu held.
func (s *Sink) drawFrame() {
	if cv := s.surf.Canvas(); cv != nil {
		cv.Clear(render.Transparent)
	}
	if err := s.engine.Draw(&s.main); err != nil {
		s.log.Warn("spectra: draw main pane", "err", err)
	}
	if s.ui.Zoom {
		if err := s.engine.Draw(&s.zoom); err != nil {
			s.log.Warn("spectra: draw zoom pane", "err", err)
		}
	}
	if err := s.surf.Swap(); err != nil {
		s.log.Warn("spectra: swap", "err", err)
		return
	}
	s.metrics.FramesDrawn.Inc()
}
