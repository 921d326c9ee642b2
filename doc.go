// Package spectra renders a live spectrum display: a scrolling waterfall,
// a power histogram, live and max-hold traces, axis grids and channel
// overlays, optionally split into a full-band main pane and a zoomed pane.
//
// # Overview
//
// A [Sink] decouples sample ingest from rendering. Samples written with
// [Sink.Write] land in a bounded single-producer/single-consumer FIFO. A
// render goroutine drains the FIFO in aligned batches into a compute
// engine, applies configuration changes once per frame and draws both
// panes onto a surface when the surface is visible.
//
// # Quick Start
//
//	import "github.com/gogpu/spectra"
//
//	sink, err := spectra.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	sink.SetFrequencyRange(145.5e6, 2.4e6)
//	sink.Start()
//	defer sink.Stop()
//
//	for block := range iq {
//		sink.Write(block) // drops what does not fit
//	}
//
// # Architecture
//
// The module is organized into:
//   - spectra: Sink, render loop, settings register, UI actions, layout
//   - fifo: lock-free SPSC ring buffer
//   - compute: engine contract; compute/cpu: software engine
//   - render: pane descriptors, compositor, canvas contract
//   - surface: draw targets (offscreen image, headless recorder)
//   - events: frequency selection publishers (channel, MQTT)
//
// # Concurrency
//
// Write is called by one ingest goroutine. Configuration setters,
// [Sink.ExecuteAction], [Sink.Click] and surface callbacks may be called
// from any goroutine. Engine and surface calls happen only on the render
// goroutine. [Sink.Stop] returns after the render goroutine has released
// the engine and the surface.
package spectra
