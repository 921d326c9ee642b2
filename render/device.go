// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host surface.
//
// The surface owns the device; compute engines receive it through their
// factory and never create one. Software engines ignore it.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes a texture owned by the compute engine.
// It mirrors the WebGPU GPUTextureDescriptor fields the engine needs.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	Width  uint32
	Height uint32

	Format gputypes.TextureFormat
	Usage  TextureUsage
}

// TextureUsage specifies how a texture can be used.
type TextureUsage uint32

const (
	// TextureUsageCopyDst allows uploads into the texture.
	TextureUsageCopyDst TextureUsage = 1 << iota

	// TextureUsageTextureBinding allows sampling the texture.
	TextureUsageTextureBinding

	// TextureUsageStorageBinding allows compute writes to the texture.
	TextureUsageStorageBinding
)

// DataTextureDescriptor returns the descriptor of a single-channel float
// texture written by compute and sampled by the compositor.
func DataTextureDescriptor(label string, width, height int) TextureDescriptor {
	return TextureDescriptor{
		Label:  label,
		Width:  uint32(width),
		Height: uint32(height),
		Format: gputypes.TextureFormatR32Float,
		Usage:  TextureUsageCopyDst | TextureUsageTextureBinding | TextureUsageStorageBinding,
	}
}

// Sampler selects how a texture is read outside [0,1] and between texels.
type Sampler struct {
	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
	Filter   gputypes.FilterMode
}

// NullDeviceHandle is a DeviceHandle for hosts without a GPU.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}
