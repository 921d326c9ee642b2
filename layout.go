package spectra

import "github.com/gogpu/spectra/render"

// Layout splits the surface between the main and zoom panes.
const (
	// MainPaneShare is the main pane share of the width while zoomed.
	MainPaneShare = 0.65
	// PaneOverlap is how far the zoom pane extends under the main pane.
	PaneOverlap = 10
)

// Layout is the input of the pane layout.
type Layout struct {
	Width, Height int

	Zoom       bool
	ZoomCenter float64
	ZoomWidth  float64
	Ratio      float64
}

// layoutOf collects the layout inputs from the surface size and UI state.
func layoutOf(width, height int, ui UIState) Layout {
	return Layout{
		Width:      width,
		Height:     height,
		Zoom:       ui.Zoom,
		ZoomCenter: ui.ZoomCenter,
		ZoomWidth:  ui.ZoomWidth,
		Ratio:      ui.Ratio,
	}
}

// MainWidth returns the main pane width.
func (l Layout) MainWidth() int {
	if !l.Zoom {
		return l.Width
	}
	return int(float64(l.Width) * MainPaneShare)
}

// Apply writes the pane geometry into main and zoom and refreshes both.
// Channel 0 of the main pane marks the zoomed region.
func (l Layout) Apply(main, zoom *render.Descriptor) {
	a := l.MainWidth()
	main.Width = a
	if l.Zoom {
		main.Options |= render.OptChannels
		main.Options &^= render.OptColorScale
		zoom.PosX = a - PaneOverlap
		zoom.Width = l.Width - a + PaneOverlap
	} else {
		main.Options &^= render.OptChannels
		main.Options |= render.OptColorScale
	}

	main.Height = l.Height
	zoom.Height = l.Height
	main.Ratio = l.Ratio
	zoom.Ratio = l.Ratio

	main.SetChannel(0, render.Channel{
		Enabled: l.Zoom,
		Center:  l.ZoomCenter,
		Width:   l.ZoomWidth,
	})

	zoom.FreqCenter = l.ZoomCenter
	zoom.FreqSpan = l.ZoomWidth

	main.Refresh()
	zoom.Refresh()
}

// newPanes returns the main and zoom descriptors with their defaults. The
// zoom pane never shows power or time labels.
func newPanes() (main, zoom render.Descriptor) {
	main = render.NewDescriptor()
	zoom = render.NewDescriptor()
	zoom.Options &^= render.OptLabelPower | render.OptLabelTime
	return main, zoom
}
