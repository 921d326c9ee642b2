package spectra

import (
	"fmt"
	"math"
)

// Action is a discrete UI command.
type Action int

const (
	ActionDBPerDivUp Action = iota
	ActionDBPerDivDown
	ActionRefUp
	ActionRefDown
	ActionZoomToggle
	ActionZoomWidthUp
	ActionZoomWidthDown
	ActionZoomCenterUp
	ActionZoomCenterDown
	ActionRatioUp
	ActionRatioDown
	ActionFreezeToggle
)

var actionNames = [...]string{
	ActionDBPerDivUp:     "db-per-div-up",
	ActionDBPerDivDown:   "db-per-div-down",
	ActionRefUp:          "ref-up",
	ActionRefDown:        "ref-down",
	ActionZoomToggle:     "zoom-toggle",
	ActionZoomWidthUp:    "zoom-width-up",
	ActionZoomWidthDown:  "zoom-width-down",
	ActionZoomCenterUp:   "zoom-center-up",
	ActionZoomCenterDown: "zoom-center-down",
	ActionRatioUp:        "ratio-up",
	ActionRatioDown:      "ratio-down",
	ActionFreezeToggle:   "freeze-toggle",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// DBPerDivSteps are the selectable vertical scales, in dB per division.
var DBPerDivSteps = [...]int{1, 2, 5, 10, 20}

// UI limits.
const (
	RatioMin  = 0.2
	RatioMax  = 0.8
	RatioStep = 0.05

	// ZoomWidthMin is one waterfall texel of the full band.
	ZoomWidthMin = 1.0 / 1024
	ZoomWidthMax = 1.0
)

// UIState holds the interactive display state.
type UIState struct {
	// DBPerDivIndex indexes DBPerDivSteps.
	DBPerDivIndex int
	// RefLevel is the top of the power grid, in dB.
	RefLevel int

	Zoom       bool
	ZoomCenter float64
	ZoomWidth  float64

	// Ratio is the histogram share of the pane height.
	Ratio float64

	Frozen bool
}

// DefaultUIState returns 10 dB/div at 0 dB, zoom off on the middle fifth
// of the band, and a 0.35 ratio.
func DefaultUIState() UIState {
	return UIState{
		DBPerDivIndex: 3,
		ZoomCenter:    0.5,
		ZoomWidth:     0.2,
		Ratio:         0.35,
	}
}

// DBPerDiv returns the current vertical scale.
func (s UIState) DBPerDiv() int {
	return DBPerDivSteps[clampInt(s.DBPerDivIndex, 0, len(DBPerDivSteps)-1)]
}

// Apply returns the state after action a. Out of range requests are
// clamped; zoom width and center only move while zoomed.
func (s UIState) Apply(a Action) UIState {
	switch a {
	case ActionDBPerDivUp:
		s.DBPerDivIndex = clampInt(s.DBPerDivIndex+1, 0, len(DBPerDivSteps)-1)
	case ActionDBPerDivDown:
		s.DBPerDivIndex = clampInt(s.DBPerDivIndex-1, 0, len(DBPerDivSteps)-1)
	case ActionRefUp:
		s.RefLevel += s.DBPerDiv()
	case ActionRefDown:
		s.RefLevel -= s.DBPerDiv()
	case ActionZoomToggle:
		s.Zoom = !s.Zoom
	case ActionZoomWidthUp:
		if s.Zoom {
			s.ZoomWidth = clampFloat(s.ZoomWidth*2, ZoomWidthMin, ZoomWidthMax)
		}
	case ActionZoomWidthDown:
		if s.Zoom {
			s.ZoomWidth = clampFloat(s.ZoomWidth/2, ZoomWidthMin, ZoomWidthMax)
		}
	case ActionZoomCenterUp:
		if s.Zoom {
			s.ZoomCenter = clampFloat(s.ZoomCenter+s.ZoomWidth/8, 0, 1)
		}
	case ActionZoomCenterDown:
		if s.Zoom {
			s.ZoomCenter = clampFloat(s.ZoomCenter-s.ZoomWidth/8, 0, 1)
		}
	case ActionRatioUp:
		s.Ratio = stepRatio(s.Ratio, RatioStep)
	case ActionRatioDown:
		s.Ratio = stepRatio(s.Ratio, -RatioStep)
	case ActionFreezeToggle:
		s.Frozen = !s.Frozen
	}
	return s
}

// stepRatio moves r by delta on the RatioStep grid so repeated steps do
// not accumulate rounding error.
func stepRatio(r, delta float64) float64 {
	r = math.Round((r+delta)/RatioStep) * RatioStep
	return clampFloat(r, RatioMin, RatioMax)
}

// Arrow keys, as reported by hosts that deliver them as runes.
const (
	KeyUp    rune = 0xF700
	KeyDown  rune = 0xF701
	KeyLeft  rune = 0xF702
	KeyRight rune = 0xF703
)

// KeyAction maps a key to its action: arrows for scale and reference,
// z to toggle zoom, w/s for zoom width, a/d to pan, q/e for the ratio and
// space to freeze.
func KeyAction(r rune) (Action, bool) {
	switch r {
	case KeyUp:
		return ActionDBPerDivUp, true
	case KeyDown:
		return ActionDBPerDivDown, true
	case KeyLeft:
		return ActionRefDown, true
	case KeyRight:
		return ActionRefUp, true
	case 'z', 'Z':
		return ActionZoomToggle, true
	case 'w', 'W':
		return ActionZoomWidthUp, true
	case 's', 'S':
		return ActionZoomWidthDown, true
	case 'd', 'D':
		return ActionZoomCenterUp, true
	case 'a', 'A':
		return ActionZoomCenterDown, true
	case 'q', 'Q':
		return ActionRatioUp, true
	case 'e', 'E':
		return ActionRatioDown, true
	case ' ':
		return ActionFreezeToggle, true
	}
	return 0, false
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
