// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the presentable draw targets of the render loop.
//
// A Surface owns its draw target and GPU device; the render goroutine
// drives it through Init, Update, Swap and Close, and draws onto its
// Canvas. Host notifications (resize, shown/hidden) reach the owner through
// Callbacks.
//
// # Surface Kinds
//
//   - ImageSurface: offscreen rasterization through gg, PNG output
//   - HeadlessSurface: records frames as render.Command lists
//
// Kinds are registered by name, so hosts and configuration files can pick
// one without importing its constructor:
//
//	s, err := surface.NewSurfaceByName("image", surface.Options{Width: 1024, Height: 768})
package surface
