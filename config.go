package spectra

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/events"
)

// DefaultFifoSize is the sample FIFO capacity.
const DefaultFifoSize = 2 * 1024 * 1024

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("spectra: invalid config")

// Config is the file form of a sink configuration.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	FFTSize  int    `yaml:"fft_size"`
	Window   string `yaml:"window"`
	FifoSize int    `yaml:"fifo_size"`

	Frequency FrequencyConfig   `yaml:"frequency"`
	Display   DisplayConfig     `yaml:"display"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	MQTT      events.MQTTConfig `yaml:"mqtt"`

	// InstanceID names the sink in logs and metrics. Generated when empty.
	InstanceID string `yaml:"instance_id"`
	LogLevel   string `yaml:"log_level"`
}

// FrequencyConfig is the absolute frequency range, in Hz.
type FrequencyConfig struct {
	Center float64 `yaml:"center"`
	Span   float64 `yaml:"span"`
}

// DisplayConfig is the initial UI state.
type DisplayConfig struct {
	RefLevel   int     `yaml:"ref_level"`
	DBPerDiv   int     `yaml:"db_per_div"`
	Ratio      float64 `yaml:"ratio"`
	Zoom       bool    `yaml:"zoom"`
	ZoomCenter float64 `yaml:"zoom_center"`
	ZoomWidth  float64 `yaml:"zoom_width"`
	Frozen     bool    `yaml:"frozen"`
}

// MetricsConfig controls the Prometheus endpoint of the demo.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// DefaultConfig returns the configuration a sink starts with.
func DefaultConfig() Config {
	ui := DefaultUIState()
	return Config{
		Width:    1024,
		Height:   768,
		FFTSize:  compute.DefaultFFTLength,
		Window:   compute.DefaultWindow.String(),
		FifoSize: DefaultFifoSize,
		Display: DisplayConfig{
			RefLevel:   ui.RefLevel,
			DBPerDiv:   ui.DBPerDiv(),
			Ratio:      ui.Ratio,
			ZoomCenter: ui.ZoomCenter,
			ZoomWidth:  ui.ZoomWidth,
		},
		Metrics:  MetricsConfig{Listen: ":9090"},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("spectra: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("spectra: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the sink cannot use and clamps the display
// state into its UI limits.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if !compute.ValidFFTLength(c.FFTSize) {
		return fmt.Errorf("%w: fft_size %d: %w", ErrInvalidConfig, c.FFTSize, compute.ErrInvalidFFTLength)
	}
	if _, err := compute.ParseWindowKind(c.Window); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !slices.Contains(DBPerDivSteps[:], c.Display.DBPerDiv) {
		return fmt.Errorf("%w: db_per_div %d not in %v", ErrInvalidConfig, c.Display.DBPerDiv, DBPerDivSteps)
	}
	if c.Frequency.Span < 0 {
		return fmt.Errorf("%w: negative frequency span", ErrInvalidConfig)
	}
	if c.FifoSize <= 0 {
		c.FifoSize = DefaultFifoSize
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, events.ErrNoBroker)
	}

	c.Display.Ratio = clampFloat(c.Display.Ratio, RatioMin, RatioMax)
	c.Display.ZoomCenter = clampFloat(c.Display.ZoomCenter, 0, 1)
	c.Display.ZoomWidth = clampFloat(c.Display.ZoomWidth, ZoomWidthMin, ZoomWidthMax)
	return nil
}

// UIState returns the display section as a UI state.
func (c *Config) UIState() UIState {
	ui := DefaultUIState()
	if i := slices.Index(DBPerDivSteps[:], c.Display.DBPerDiv); i >= 0 {
		ui.DBPerDivIndex = i
	}
	ui.RefLevel = c.Display.RefLevel
	ui.Ratio = c.Display.Ratio
	ui.Zoom = c.Display.Zoom
	ui.ZoomCenter = c.Display.ZoomCenter
	ui.ZoomWidth = c.Display.ZoomWidth
	ui.Frozen = c.Display.Frozen
	return ui
}
