package spectra

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/render"
	"github.com/gogpu/spectra/surface"
)

const block = compute.BatchMult * compute.DefaultFFTLength

func TestRenderFrameOneBatch(t *testing.T) {
	s, eng, _ := newTestSink(t)
	boot(t, s)

	if n := s.Write(make([]complex64, block)); n != block {
		t.Fatalf("Write() = %d, want %d", n, block)
	}
	s.renderFrame()

	if got := eng.processCalls(); !slices.Equal(got, []int{block}) {
		t.Errorf("Process calls = %v, want [%d]", got, block)
	}
	if s.fifo.Used() != 0 {
		t.Errorf("fifo Used() = %d, want 0", s.fifo.Used())
	}
}

func TestRenderFrameFrozen(t *testing.T) {
	s, eng, _ := newTestSink(t)
	boot(t, s)
	s.ExecuteAction(ActionFreezeToggle)

	s.Write(make([]complex64, block))
	s.renderFrame()

	if got := eng.processCalls(); len(got) != 0 {
		t.Errorf("Process calls while frozen = %v, want none", got)
	}
	if s.fifo.Used() != 0 {
		t.Errorf("fifo Used() = %d, want 0", s.fifo.Used())
	}
	if got := testutil.ToFloat64(s.Metrics().BatchesSkipped); got != 1 {
		t.Errorf("batches skipped = %v, want 1", got)
	}
}

func TestRenderFrameKeepsRemainder(t *testing.T) {
	s, eng, _ := newTestSink(t)
	boot(t, s)

	s.Write(make([]complex64, 2*block+100))
	s.renderFrame()

	if got := eng.processCalls(); !slices.Equal(got, []int{2 * block}) {
		t.Errorf("Process calls = %v, want [%d]", got, 2*block)
	}
	if s.fifo.Used() != 100 {
		t.Errorf("fifo Used() = %d, want 100", s.fifo.Used())
	}

	s.renderFrame()
	if got := eng.processCalls(); len(got) != 1 {
		t.Errorf("Process calls after an unaligned frame = %v, want one", got)
	}
}

func TestRenderFrameBatchCap(t *testing.T) {
	s, eng, _ := newTestSink(t)
	boot(t, s)

	limit := compute.BatchMax * compute.DefaultFFTLength
	if n := s.Write(make([]complex64, s.fifo.Cap())); n != s.fifo.Cap() {
		t.Fatalf("Write(cap) = %d, want %d", n, s.fifo.Cap())
	}
	s.renderFrame()

	want := []int{limit, limit}
	if got := eng.processCalls(); !slices.Equal(got, want) {
		t.Errorf("Process calls = %v, want %v", got, want)
	}
}

func TestRenderFrameWrappedFifo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FifoSize = 4 * block
	s, eng, _ := newTestSink(t, WithConfig(cfg))
	boot(t, s)

	s.Write(make([]complex64, 2*block))
	s.renderFrame()

	// 3 blocks from the middle: 2 up to the end, 1 wrapped to the start.
	if n := s.Write(make([]complex64, 3*block)); n != 3*block {
		t.Fatalf("Write() across the wrap = %d, want %d", n, 3*block)
	}
	s.renderFrame()

	want := []int{2 * block, 2 * block, block}
	if got := eng.processCalls(); !slices.Equal(got, want) {
		t.Errorf("Process calls = %v, want %v", got, want)
	}
	if s.fifo.Used() != 0 {
		t.Errorf("fifo Used() = %d, want 0", s.fifo.Used())
	}
}

func TestRenderFrameDraws(t *testing.T) {
	s, eng, surf := newTestSink(t)
	boot(t, s)

	s.renderFrame()
	if surf.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", surf.Frames())
	}
	if len(eng.draws) != 1 || eng.draws[0].Width != 800 {
		t.Fatalf("draws = %d, want the 800 px main pane only", len(eng.draws))
	}
	frame := surf.LastFrame()
	if len(frame) == 0 || frame[0].Type != render.CmdClear {
		t.Errorf("frame does not start with a clear: %v", frame)
	}

	s.ExecuteAction(ActionZoomToggle)
	s.renderFrame()
	if len(eng.draws) != 3 {
		t.Fatalf("draws after zoom = %d, want 3", len(eng.draws))
	}
	main, zoom := eng.draws[1], eng.draws[2]
	if main.Width != 520 || zoom.Width != 290 || zoom.PosX != 510 {
		t.Errorf("zoomed panes = %d and %d@%d, want 520 and 290@510", main.Width, zoom.Width, zoom.PosX)
	}
}

func TestRenderFrameHidden(t *testing.T) {
	s, eng, surf := newTestSink(t)
	boot(t, s)
	surf.SetVisible(false)

	s.renderFrame()
	if surf.Frames() != 0 || len(eng.draws) != 0 {
		t.Errorf("hidden frame drew: frames %d, draws %d", surf.Frames(), len(eng.draws))
	}
	if got := testutil.ToFloat64(s.Metrics().IdleSleeps); got != 1 {
		t.Errorf("idle sleeps = %v, want 1", got)
	}
}

func TestApplySettings(t *testing.T) {
	s, eng, surf := newTestSink(t)
	s.SetFrequencyRange(433.92e6, 1e6)
	boot(t, s)

	if eng.refLevel != 0 || eng.dbPerDiv != 10 {
		t.Errorf("power range = %d/%d, want 0/10", eng.refLevel, eng.dbPerDiv)
	}
	if eng.freq.Center != 433.92e6 || eng.freq.Span != 1e6 {
		t.Errorf("frequency range = %+v, want 433.92e6/1e6", eng.freq)
	}
	if !slices.Equal(eng.windowLen, []int{compute.DefaultFFTLength, compute.DefaultFFTLength}) {
		t.Errorf("windows = %v, want two of %d", eng.windowLen, compute.DefaultFFTLength)
	}

	s.SetFFTSize(4096)
	surf.Resize(1000, 400)
	s.renderFrame()

	if eng.FFTLength() != 4096 {
		t.Errorf("FFTLength() = %d, want 4096", eng.FFTLength())
	}
	if last := eng.windowLen[len(eng.windowLen)-1]; last != 4096 {
		t.Errorf("last window length = %d, want 4096", last)
	}
	main, _ := s.Panes()
	if main.Width != 1000 || main.Height != 400 {
		t.Errorf("main pane = %dx%d, want 1000x400", main.Width, main.Height)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStartStop(t *testing.T) {
	s, eng, surf := newTestSink(t)

	s.Start()
	s.Start()
	waitFor(t, "running", func() bool { return s.State() == StateRunning })

	s.Write(make([]complex64, block))
	waitFor(t, "one batch", func() bool { return len(eng.processCalls()) == 1 })

	s.Stop()
	if s.State() != StateIdle {
		t.Errorf("State() after Stop = %v, want idle", s.State())
	}
	if !eng.isReleased() || !surf.Closed() {
		t.Errorf("released engine %v, closed surface %v, want both", eng.isReleased(), surf.Closed())
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
	s.Stop()
}

func TestStartSurfaceFailure(t *testing.T) {
	s, eng, surf := newTestSink(t)
	surf.InitErr = errors.New("no display")

	s.Start()
	s.Stop()

	if !errors.Is(s.Err(), ErrSurfaceInit) {
		t.Errorf("Err() = %v, want ErrSurfaceInit", s.Err())
	}
	if eng.isReleased() {
		t.Error("engine released although never created")
	}
	if got := testutil.ToFloat64(s.Metrics().InitFailures); got != 1 {
		t.Errorf("init failures = %v, want 1", got)
	}

	// Samples are still accepted while nothing drains them.
	if n := s.Write(make([]complex64, 10)); n != 10 {
		t.Errorf("Write() after failed start = %d, want 10", n)
	}
}

func TestStartEngineFailure(t *testing.T) {
	surf := surface.NewHeadlessSurface(320, 240)
	failing := func(render.DeviceHandle, render.Canvas) (compute.Engine, error) {
		return nil, errors.New("no adapter")
	}
	s, err := New(WithEngine(failing), WithSurface(surf))
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	s.Stop()

	if !errors.Is(s.Err(), ErrNoEngine) {
		t.Errorf("Err() = %v, want ErrNoEngine", s.Err())
	}
	if !surf.Closed() {
		t.Error("surface not closed after engine failure")
	}
}

// teardownEngine notes whether the surface was already closed when the
// engine got released.
type teardownEngine struct {
	*fakeEngine
	surf          *surface.HeadlessSurface
	surfaceClosed atomic.Bool
}

func (e *teardownEngine) Release() {
	e.surfaceClosed.Store(e.surf.Closed())
	e.fakeEngine.Release()
}

func TestStopReleasesInReverseOrder(t *testing.T) {
	tests := []struct {
		name    string
		bootErr error
	}{
		{"stop", nil},
		{"engine init failure", errors.New("no adapter")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surf := surface.NewHeadlessSurface(320, 240)
			eng := &teardownEngine{fakeEngine: newFakeEngine(), surf: surf}
			var openAtBoot atomic.Bool
			factory := func(render.DeviceHandle, render.Canvas) (compute.Engine, error) {
				openAtBoot.Store(!surf.Closed())
				if tt.bootErr != nil {
					return nil, tt.bootErr
				}
				return eng, nil
			}
			s, err := New(WithEngine(factory), WithSurface(surf))
			if err != nil {
				t.Fatal(err)
			}

			s.Start()
			if tt.bootErr == nil {
				waitFor(t, "running", func() bool { return s.State() == StateRunning })
			}
			s.Stop()

			if !openAtBoot.Load() {
				t.Error("engine created after the surface was closed")
			}
			if !surf.Closed() {
				t.Error("surface not closed after Stop")
			}
			if tt.bootErr != nil {
				if eng.isReleased() {
					t.Error("engine released although never created")
				}
				return
			}
			if !eng.isReleased() {
				t.Error("engine not released after Stop")
			}
			if eng.surfaceClosed.Load() {
				t.Error("surface closed before the engine was released")
			}
		})
	}
}

func TestEngineBootSerialized(t *testing.T) {
	var inflight, peak atomic.Int32
	factory := func(render.DeviceHandle, render.Canvas) (compute.Engine, error) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inflight.Add(-1)
		return newFakeEngine(), nil
	}

	sinks := make([]*Sink, 4)
	for i := range sinks {
		s, err := New(WithEngine(factory), WithSurface(surface.NewHeadlessSurface(64, 64)))
		if err != nil {
			t.Fatal(err)
		}
		sinks[i] = s
	}

	var wg sync.WaitGroup
	for _, s := range sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Start()
		}()
	}
	wg.Wait()
	for _, s := range sinks {
		waitFor(t, "running", func() bool { return s.State() == StateRunning })
		s.Stop()
	}

	if peak.Load() != 1 {
		t.Errorf("concurrent engine boots = %d, want 1", peak.Load())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateInitializing, "initializing"},
		{StateRunning, "running"},
		{StateDraining, "draining"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
