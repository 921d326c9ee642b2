// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package events carries user interaction results out of the sink.
package events

import "sync/atomic"

// FrequencySelected is emitted when the user clicks inside a plot area.
type FrequencySelected struct {
	// Frequency is the absolute frequency under the pointer, in Hz.
	Frequency float64
}

// Publisher receives events. Publish is called from the UI goroutine and
// must not block.
type Publisher interface {
	Publish(ev FrequencySelected)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ev FrequencySelected)

// Publish implements Publisher.
func (f PublisherFunc) Publish(ev FrequencySelected) { f(ev) }

// Multi fans an event out to several publishers, in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ev FrequencySelected) {
	for _, p := range m {
		if p != nil {
			p.Publish(ev)
		}
	}
}

// Chan is a Publisher backed by a buffered channel. Events published while
// the buffer is full are dropped and counted.
type Chan struct {
	c       chan FrequencySelected
	dropped atomic.Uint64
}

// NewChan creates a channel publisher with the given buffer size.
func NewChan(size int) *Chan {
	return &Chan{c: make(chan FrequencySelected, max(size, 1))}
}

// Publish implements Publisher.
func (p *Chan) Publish(ev FrequencySelected) {
	select {
	case p.c <- ev:
	default:
		p.dropped.Add(1)
	}
}

// C returns the receive side.
func (p *Chan) C() <-chan FrequencySelected {
	return p.c
}

// Dropped returns the number of events lost to a full buffer.
func (p *Chan) Dropped() uint64 {
	return p.dropped.Load()
}
