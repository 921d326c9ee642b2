package spectra

import (
	"strings"
	"sync"
)

// Setting is a set of configuration categories waiting to be applied by
// the render loop.
type Setting uint32

const (
	// SettingDimensions: the surface was resized.
	SettingDimensions Setting = 1 << iota
	// SettingPowerRange: reference level or dB/div changed.
	SettingPowerRange
	// SettingFrequencyRange: the absolute frequency range changed.
	SettingFrequencyRange
	// SettingFFTWindow: the FFT window kind changed.
	SettingFFTWindow
	// SettingFFTSize: the FFT length changed.
	SettingFFTSize
	// SettingRenderOptions: zoom, ratio or other layout inputs changed.
	SettingRenderOptions

	// SettingAll is every category.
	SettingAll = SettingDimensions | SettingPowerRange | SettingFrequencyRange |
		SettingFFTWindow | SettingFFTSize | SettingRenderOptions
)

var settingNames = []string{
	"dimensions", "power-range", "frequency-range", "fft-window", "fft-size", "render-options",
}

// Has reports whether every category of o is in s.
func (s Setting) Has(o Setting) bool {
	return s&o == o
}

// Any reports whether s and o share a category.
func (s Setting) Any(o Setting) bool {
	return s&o != 0
}

func (s Setting) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for i, name := range settingNames {
		if s&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Settings is the dirty set shared by control goroutines and the render
// loop. The zero value is empty and ready to use.
type Settings struct {
	mu      sync.Mutex
	pending Setting
}

// Mark adds s to the pending set.
func (r *Settings) Mark(s Setting) {
	r.mu.Lock()
	r.pending |= s
	r.mu.Unlock()
}

// Update runs fn under the register lock and marks s when fn reports a
// change. Values written by fn become visible to the render loop together
// with the categories announcing them.
func (r *Settings) Update(s Setting, fn func() bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !fn() {
		return false
	}
	r.pending |= s
	return true
}

// Drain returns the pending set and clears it.
func (r *Settings) Drain() Setting {
	return r.DrainFunc(nil)
}

// DrainFunc is Drain with fn, if non-nil, run under the same lock so it
// reads the values that belong to the drained set.
func (r *Settings) DrainFunc(fn func(Setting)) Setting {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.pending
	r.pending = 0
	if fn != nil {
		fn(s)
	}
	return s
}

// Pending returns the pending set without clearing it.
func (r *Settings) Pending() Setting {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}
