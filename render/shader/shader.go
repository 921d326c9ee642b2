// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader holds the WGSL programs of the compositor and compiles
// them to SPIR-V with naga.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed colormap.wgsl
var colormapSource string

// ErrCompile is returned when a shader fails to compile.
var ErrCompile = errors.New("shader: compile failed")

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// ColormapSource returns the WGSL source of the colormap pass.
func ColormapSource() string {
	return colormapSource
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	b, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: truncated module (%d bytes)", ErrCompile, len(b))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}

var colormapModule = sync.OnceValues(func() ([]uint32, error) {
	return Compile(colormapSource)
})

// Colormap returns the compiled colormap pass. The module is compiled once
// per process.
func Colormap() ([]uint32, error) {
	return colormapModule()
}
