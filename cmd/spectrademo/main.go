// Command spectrademo feeds a synthetic IQ stream through a spectra sink
// drawing offscreen, and writes every n-th frame as a PNG. With --headless
// it only records draw commands and rasterizes the last frame on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/gogpu/spectra"
	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/events"
	"github.com/gogpu/spectra/surface"
)

func main() {
	var (
		configFile  = pflag.StringP("config", "c", "", "YAML configuration file")
		width       = pflag.Int("width", 0, "surface width in pixels")
		height      = pflag.Int("height", 0, "surface height in pixels")
		fftSize     = pflag.IntP("fft-size", "n", 0, "FFT length (512..32768)")
		window      = pflag.StringP("window", "w", "", "FFT window (hann, blackman-harris, ...)")
		center      = pflag.Float64P("center", "f", 100e6, "center frequency in Hz")
		rate        = pflag.Float64P("rate", "r", 2.4e6, "sample rate in Hz, also the displayed span")
		tone        = pflag.Float64("tone", 300e3, "tone offset from center in Hz")
		zoom        = pflag.BoolP("zoom", "z", false, "start with the zoom pane shown")
		duration    = pflag.DurationP("duration", "d", 5*time.Second, "run time (0 = until interrupted)")
		outDir      = pflag.StringP("out", "o", "frames", "directory for PNG frames")
		every       = pflag.Uint64("every", 30, "save every n-th frame (0 = none)")
		headless    = pflag.Bool("headless", false, "record draw commands only; the last frame is saved as last.png on exit")
		metricsAddr = pflag.String("metrics-addr", "", "serve Prometheus metrics on this address")
		mqttBroker  = pflag.String("mqtt-broker", "", "publish frequency selections to this MQTT broker")
		logLevel    = pflag.String("log-level", "", "debug, info, warn or error")
	)
	pflag.Parse()

	cfg := spectra.DefaultConfig()
	if *configFile != "" {
		loaded, err := spectra.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flags given on the command line override the file.
	flags := pflag.CommandLine
	if flags.Changed("width") {
		cfg.Width = *width
	}
	if flags.Changed("height") {
		cfg.Height = *height
	}
	if flags.Changed("fft-size") {
		cfg.FFTSize = *fftSize
	}
	if flags.Changed("window") {
		cfg.Window = *window
	}
	if flags.Changed("zoom") {
		cfg.Display.Zoom = *zoom
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = *metricsAddr
	}
	if flags.Changed("mqtt-broker") {
		cfg.MQTT.Enabled = true
		cfg.MQTT.Broker = *mqttBroker
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if cfg.Frequency.Span == 0 || flags.Changed("rate") {
		cfg.Frequency.Span = *rate
	}
	if cfg.Frequency.Center == 0 || flags.Changed("center") {
		cfg.Frequency.Center = *center
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := newLogger(cfg.LogLevel)
	spectra.SetLogger(log)

	if err := run(cfg, log, demoOptions{
		rate:     *rate,
		tone:     *tone,
		duration: *duration,
		outDir:   *outDir,
		every:    *every,
		headless: *headless,
	}); err != nil {
		log.Error("spectrademo failed", "err", err)
		os.Exit(1)
	}
}

type demoOptions struct {
	rate     float64
	tone     float64
	duration time.Duration
	outDir   string
	every    uint64
	headless bool
}

func run(cfg spectra.Config, log *slog.Logger, opts demoOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", "addr", cfg.Metrics.Listen)
	}

	pubs := events.Multi{events.PublisherFunc(func(ev events.FrequencySelected) {
		log.Info("frequency selected", "hz", ev.Frequency)
	})}
	if cfg.MQTT.Enabled {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "spectra-" + cfg.InstanceID[:8]
		}
		mp, err := events.NewMQTTPublisher(cfg.MQTT, log)
		if err != nil {
			return err
		}
		defer mp.Close()
		pubs = append(pubs, mp)
	}

	var (
		surf   surface.Surface
		frames func() uint64
		rec    *surface.HeadlessSurface
	)
	if opts.headless {
		rec = surface.NewHeadlessSurface(cfg.Width, cfg.Height)
		surf, frames = rec, rec.Frames
	} else {
		img, err := newImageSurface(cfg, log, opts)
		if err != nil {
			return err
		}
		surf, frames = img, img.Frames
	}

	sink, err := spectra.New(
		spectra.WithConfig(cfg),
		spectra.WithSurface(surf),
		spectra.WithPublisher(pubs),
		spectra.WithRegisterer(reg),
		spectra.WithLogger(log),
	)
	if err != nil {
		return err
	}
	sink.Start()
	defer sink.Stop()

	gen := newToneGenerator(opts.rate, opts.tone, compute.BatchMult*cfg.FFTSize)
	go gen.run(ctx, sink)

	// Pan the zoom window and click the main pane center once per second
	// so every UI path runs.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sink.Stop()
			if err := sink.Err(); err != nil {
				return err
			}
			log.Info("done", "frames", frames(), "dropped", gen.dropped.Load())
			if rec != nil {
				if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				return saveLastFrame(rec, filepath.Join(opts.outDir, "last.png"))
			}
			return nil
		case <-ticker.C:
			if sink.UIState().Zoom {
				sink.ExecuteAction(spectra.ActionZoomCenterUp)
			}
			main, _ := sink.Panes()
			sink.Click((main.X0+main.X1)/2, (main.HistoY0+main.HistoY1)/2)
		}
	}
}

func newImageSurface(cfg spectra.Config, log *slog.Logger, opts demoOptions) (*surface.ImageSurface, error) {
	surf := surface.NewImageSurface(cfg.Width, cfg.Height)
	surf.SetLogger(log)
	if opts.every == 0 {
		return surf, nil
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	surf.OnFrame(func(frame uint64, s *surface.ImageSurface) {
		if frame%opts.every != 0 {
			return
		}
		path := filepath.Join(opts.outDir, fmt.Sprintf("frame-%05d.png", frame))
		if err := s.SavePNG(path); err != nil {
			log.Warn("save frame", "path", path, "err", err)
		}
	})
	return surf, nil
}

var errNoFrame = errors.New("no frame recorded")

// saveLastFrame rasterizes the last frame recorded by rec into a PNG.
// The sink drawing into rec must be stopped.
func saveLastFrame(rec *surface.HeadlessSurface, path string) error {
	w, h := rec.Size()
	img := surface.NewImageSurface(w, h)
	if err := img.Init(); err != nil {
		return err
	}
	defer img.Close()
	if !rec.Replay(img.Canvas()) {
		return errNoFrame
	}
	return img.SavePNG(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
