package spectra

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/compute/cpu"
	"github.com/gogpu/spectra/events"
	"github.com/gogpu/spectra/fifo"
	"github.com/gogpu/spectra/render"
	"github.com/gogpu/spectra/surface"
)

// Errors recorded by the render loop and returned by Sink.Err.
var (
	ErrSurfaceInit = errors.New("spectra: surface initialization failed")
	ErrNoEngine    = errors.New("spectra: engine initialization failed")
)

// Option configures a Sink.
type Option func(*sinkOptions)

type sinkOptions struct {
	cfg      Config
	factory  compute.Factory
	surf     surface.Surface
	pub      events.Publisher
	reg      prometheus.Registerer
	log      *slog.Logger
	instance string
}

// WithConfig sets the initial configuration. It is not validated again.
func WithConfig(cfg Config) Option {
	return func(o *sinkOptions) {
		o.cfg = cfg
	}
}

// WithEngine sets the engine factory. The default is the software engine.
func WithEngine(f compute.Factory) Option {
	return func(o *sinkOptions) {
		o.factory = f
	}
}

// WithSurface sets the draw surface. The default is the highest priority
// surface available in the surface registry.
func WithSurface(s surface.Surface) Option {
	return func(o *sinkOptions) {
		o.surf = s
	}
}

// WithPublisher sets where frequency selections go.
func WithPublisher(p events.Publisher) Option {
	return func(o *sinkOptions) {
		o.pub = p
	}
}

// WithRegisterer registers the sink metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *sinkOptions) {
		o.reg = reg
	}
}

// WithLogger overrides the package logger for this sink.
func WithLogger(l *slog.Logger) Option {
	return func(o *sinkOptions) {
		o.log = l
	}
}

// WithInstanceID names the sink in logs and metrics.
func WithInstanceID(id string) Option {
	return func(o *sinkOptions) {
		o.instance = id
	}
}

// params are the configuration values announced through the settings
// register. Guarded by the register lock.
type params struct {
	freq    render.FrequencyRange
	window  compute.WindowKind
	fftSize int
}

// Sink is a live spectrum display. Samples written with Write are drained
// by a render goroutine started with Start, processed by a compute engine
// and drawn onto a surface.
type Sink struct {
	id      string
	log     *slog.Logger
	metrics *Metrics
	factory compute.Factory
	surf    surface.Surface
	pub     events.Publisher

	fifo *fifo.Fifo[complex64]

	settings Settings
	params   params

	// renderMu guards the fields below.
	renderMu   sync.Mutex
	visible    bool
	ui         UIState
	main, zoom render.Descriptor
	// engine is set and cleared by the render goroutine with renderMu
	// held, so that goroutine alone may read it unlocked.
	engine compute.Engine

	startMu sync.Mutex
	active  atomic.Bool
	done    chan struct{}
	state   atomic.Int32

	errMu sync.Mutex
	err   error

	// Owned by the render goroutine.
	width, height int
}

// New creates a sink. The render goroutine does not run until Start.
func New(opts ...Option) (*Sink, error) {
	o := sinkOptions{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	id := o.instance
	if id == "" {
		id = o.cfg.InstanceID
	}
	if id == "" {
		id = uuid.NewString()
	}
	log := o.log
	if log == nil {
		log = Logger()
	}
	log = log.With("sink", id)

	if o.factory == nil {
		o.factory = cpu.Factory(cpu.WithLogger(log), cpu.WithFFTLength(o.cfg.FFTSize))
	}
	if o.surf == nil {
		s, err := surface.NewSurface(surface.Options{Width: o.cfg.Width, Height: o.cfg.Height})
		if err != nil {
			return nil, fmt.Errorf("spectra: create surface: %w", err)
		}
		o.surf = s
	}
	window, err := compute.ParseWindowKind(o.cfg.Window)
	if err != nil {
		window = compute.DefaultWindow
	}
	fftSize := o.cfg.FFTSize
	if !compute.ValidFFTLength(fftSize) {
		fftSize = compute.DefaultFFTLength
	}
	fifoSize := o.cfg.FifoSize
	if fifoSize <= 0 {
		fifoSize = DefaultFifoSize
	}

	s := &Sink{
		id:      id,
		log:     log,
		metrics: NewMetrics(o.reg, id),
		factory: o.factory,
		surf:    o.surf,
		pub:     o.pub,
		fifo:    fifo.New[complex64](fifoSize),
		params: params{
			freq:    render.FrequencyRange{Center: o.cfg.Frequency.Center, Span: o.cfg.Frequency.Span},
			window:  window,
			fftSize: fftSize,
		},
		ui: o.cfg.UIState(),
	}
	s.main, s.zoom = newPanes()
	s.surf.SetCallbacks(surface.Callbacks{
		OnResize:     s.OnResize,
		OnVisibility: s.OnVisibility,
	})
	return s, nil
}

// ID returns the sink instance ID.
func (s *Sink) ID() string { return s.id }

// Metrics returns the sink collectors.
func (s *Sink) Metrics() *Metrics { return s.metrics }

// Surface returns the draw surface.
func (s *Sink) Surface() surface.Surface { return s.surf }

// Write queues samples for the render goroutine and returns how many were
// accepted. Samples that do not fit are dropped. Write never blocks and
// must be called from one goroutine at a time.
func (s *Sink) Write(samples []complex64) int {
	n := s.fifo.Write(samples)
	if n > 0 && n < len(samples) {
		// The first write stopped at the wrap point.
		n += s.fifo.Write(samples[n:])
	}
	s.metrics.SamplesAccepted.Add(float64(n))
	if dropped := len(samples) - n; dropped > 0 {
		s.metrics.SamplesDropped.Add(float64(dropped))
	}
	return n
}

// SetFrequencyRange sets the absolute center and span, in Hz.
func (s *Sink) SetFrequencyRange(center, span float64) {
	s.settings.Update(SettingFrequencyRange, func() bool {
		s.params.freq = render.FrequencyRange{Center: center, Span: span}
		return true
	})
}

// SetFrequencyCenter sets the absolute center frequency, in Hz.
func (s *Sink) SetFrequencyCenter(center float64) {
	s.settings.Update(SettingFrequencyRange, func() bool {
		s.params.freq.Center = center
		return true
	})
}

// SetFrequencySpan sets the displayed span, in Hz.
func (s *Sink) SetFrequencySpan(span float64) {
	s.settings.Update(SettingFrequencyRange, func() bool {
		s.params.freq.Span = span
		return true
	})
}

// SetFFTWindow selects the FFT window. Selecting the active window does
// nothing.
func (s *Sink) SetFFTWindow(k compute.WindowKind) {
	s.settings.Update(SettingFFTWindow, func() bool {
		if k == s.params.window {
			return false
		}
		s.params.window = k
		return true
	})
}

// SetFFTSize selects the FFT length. Unsupported lengths and the active
// length are ignored.
func (s *Sink) SetFFTSize(n int) {
	if !compute.ValidFFTLength(n) {
		s.log.Warn("spectra: ignoring unsupported FFT size", "size", n)
		return
	}
	s.settings.Update(SettingFFTSize, func() bool {
		if n == s.params.fftSize {
			return false
		}
		s.params.fftSize = n
		return true
	})
}

// FrequencyRange returns the configured absolute frequency range.
func (s *Sink) FrequencyRange() render.FrequencyRange {
	var fr render.FrequencyRange
	s.settings.Update(0, func() bool {
		fr = s.params.freq
		return false
	})
	return fr
}

// OnResize is the surface resize callback.
func (s *Sink) OnResize(width, height int) {
	s.settings.Mark(SettingDimensions)
}

// OnVisibility is the surface visibility callback.
func (s *Sink) OnVisibility(visible bool) {
	s.renderMu.Lock()
	s.visible = visible
	s.renderMu.Unlock()
}

// ExecuteAction applies a UI action and schedules the power range and
// layout for the next frame.
func (s *Sink) ExecuteAction(a Action) {
	s.renderMu.Lock()
	s.ui = s.ui.Apply(a)
	s.renderMu.Unlock()
	s.settings.Mark(SettingPowerRange | SettingRenderOptions)
}

// UIState returns the current UI state.
func (s *Sink) UIState() UIState {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.ui
}

// locate maps (x, y) on pane d to a frequency when it hits the plot. The
// running engine answers with the range it was last given; without one the
// descriptor maps against fr. Called with renderMu held.
func (s *Sink) locate(d *render.Descriptor, x, y float64, fr render.FrequencyRange) (float64, bool) {
	if s.engine != nil {
		if s.engine.HitTest(d, x, y)&render.HitPlot == 0 {
			return 0, false
		}
		return s.engine.PosToFrequency(d, x), true
	}
	if d.PosInside(x, y)&render.HitPlot == 0 {
		return 0, false
	}
	return d.PosToFrequency(x, fr), true
}

// Click resolves a pointer click at window pixel (x, y), origin at the
// bottom-left corner, to a frequency. On a hit the frequency is published
// and returned with true. The zoom pane is only considered while zoomed.
func (s *Sink) Click(x, y float64) (float64, bool) {
	fr := s.FrequencyRange()

	s.renderMu.Lock()
	freq, hit := s.locate(&s.main, x, y, fr)
	if !hit && s.ui.Zoom {
		freq, hit = s.locate(&s.zoom, x, y, fr)
	}
	s.renderMu.Unlock()

	if !hit {
		return 0, false
	}
	s.log.Debug("spectra: frequency selected", "freq", freq)
	if s.pub != nil {
		s.pub.Publish(events.FrequencySelected{Frequency: freq})
	}
	return freq, true
}

// Panes returns copies of the main and zoom pane descriptors.
func (s *Sink) Panes() (main, zoom render.Descriptor) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.main, s.zoom
}

// State returns the render loop phase.
func (s *Sink) State() State {
	return State(s.state.Load())
}

func (s *Sink) setState(st State) {
	s.state.Store(int32(st))
	s.log.Debug("spectra: render loop state", "state", st)
}

// Err returns the error that stopped the last render loop, if any.
func (s *Sink) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Sink) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// Start launches the render goroutine. Calling Start on a running sink
// does nothing.
func (s *Sink) Start() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.active.Load() {
		return
	}
	s.setErr(nil)
	s.active.Store(true)
	s.done = make(chan struct{})
	go s.run(s.done)
}

// Stop asks the render goroutine to exit and waits until it has released
// the engine and the surface.
func (s *Sink) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if !s.active.Load() {
		return
	}
	s.active.Store(false)
	<-s.done
}
