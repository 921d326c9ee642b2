// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render composites spectrum panes.
//
// A pane is described by a Descriptor: its rectangle in the window, which
// layers it shows and which part of the band it covers. Compute engines own
// the Resources (waterfall and histogram textures, trace vertices) and hand
// them to a Compositor, which draws onto a Canvas supplied by the surface.
//
// # Coordinates
//
// Descriptors use window pixels with the origin at the bottom-left corner.
// Canvases receive device coordinates in [-1,1] with y up; Ortho maps one
// onto the other. Frequencies inside a pane are normalized band positions
// in [0,1], 0.5 being the tuned center; PosToFrequency maps a window x back
// to Hz.
//
// # Textures
//
// Data textures store bins in FFT order (DC in column 0). The compositor
// shifts the horizontal texture window by half a texture to center DC and
// relies on repeat addressing for the wrap; the waterfall is a ring of
// WaterfallRows rows read the same way vertically.
//
// # Device
//
// The surface owns the GPU device. DeviceHandle is how it lends the device
// to a compute engine; software engines accept NullDeviceHandle.
package render
