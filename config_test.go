package spectra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/spectra/compute"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if got := cfg.UIState(); got != DefaultUIState() {
		t.Errorf("DefaultConfig().UIState() = %+v, want %+v", got, DefaultUIState())
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra.yaml")
	data := []byte(`
width: 1280
height: 720
fft_size: 4096
window: hann
frequency:
  center: 145.5e6
  span: 2.4e6
display:
  ref_level: -20
  db_per_div: 5
  ratio: 0.95
  zoom: true
  zoom_center: 1.5
  zoom_width: 0.1
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Width != 1280 || cfg.FFTSize != 4096 || cfg.Window != "hann" {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
	if cfg.FifoSize != DefaultFifoSize {
		t.Errorf("FifoSize = %d, want default %d", cfg.FifoSize, DefaultFifoSize)
	}
	if cfg.Display.Ratio != RatioMax || cfg.Display.ZoomCenter != 1 {
		t.Errorf("display not clamped: ratio %v, zoom center %v", cfg.Display.Ratio, cfg.Display.ZoomCenter)
	}

	ui := cfg.UIState()
	if ui.DBPerDiv() != 5 || ui.RefLevel != -20 || !ui.Zoom {
		t.Errorf("UIState() = %+v", ui)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file returned nil error")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"size", func(c *Config) { c.Width = 0 }, ErrInvalidConfig},
		{"fft", func(c *Config) { c.FFTSize = 1000 }, compute.ErrInvalidFFTLength},
		{"window", func(c *Config) { c.Window = "triangle-ish" }, ErrInvalidConfig},
		{"dbdiv", func(c *Config) { c.Display.DBPerDiv = 3 }, ErrInvalidConfig},
		{"span", func(c *Config) { c.Frequency.Span = -1 }, ErrInvalidConfig},
		{"mqtt", func(c *Config) { c.MQTT.Enabled = true }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("Validate() = %v, want %v", err, tt.target)
			}
		})
	}
}
