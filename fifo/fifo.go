// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fifo provides a lock-free single-producer / single-consumer ring
// buffer used to hand samples from the ingest path to the render loop.
//
// The buffer capacity is always a power of two. Read and write cursors are
// free-running counters; the slot index is the cursor masked by Cap()-1, so
// Used() is simply the difference of the two cursors.
//
// Exactly one goroutine may call the write side (WriteMaxSize, WritePrepare,
// WriteCommit, Write) and exactly one goroutine may call the read side
// (ReadMaxSize, ReadPeek, ReadDiscard). Cap, Used and Free may be called
// from either side. No method ever blocks.
package fifo

import (
	"math/bits"
	"sync/atomic"
)

// Fifo is a bounded SPSC ring of T.
type Fifo[T any] struct {
	buf  []T
	mask uint64

	// rd is advanced only by the consumer, wr only by the producer.
	rd atomic.Uint64
	_  [56]byte
	wr atomic.Uint64
}

// New creates a ring with room for at least capacity elements. The capacity
// is rounded up to the next power of two, with a minimum of 2.
func New[T any](capacity int) *Fifo[T] {
	size := uint64(2)
	if capacity > 2 {
		size = 1 << bits.Len64(uint64(capacity-1))
	}
	return &Fifo[T]{
		buf:  make([]T, size),
		mask: size - 1,
	}
}

// Cap returns the total number of slots.
func (f *Fifo[T]) Cap() int {
	return len(f.buf)
}

// Used returns the number of elements committed and not yet discarded.
func (f *Fifo[T]) Used() int {
	rd := f.rd.Load()
	wr := f.wr.Load()
	return int(wr - rd)
}

// Free returns Cap() - Used().
func (f *Fifo[T]) Free() int {
	return len(f.buf) - f.Used()
}

// WriteMaxSize returns the largest n for which WritePrepare(n) succeeds:
// the free space up to the wrap point of the underlying array.
func (f *Fifo[T]) WriteMaxSize() int {
	wr := f.wr.Load()
	free := uint64(len(f.buf)) - (wr - f.rd.Load())
	tail := uint64(len(f.buf)) - (wr & f.mask)
	return int(min(free, tail))
}

// WritePrepare returns a writable window of exactly n contiguous slots, or
// nil if n is not positive or that much contiguous space is unavailable.
// The data becomes visible to the consumer only after WriteCommit.
func (f *Fifo[T]) WritePrepare(n int) []T {
	if n <= 0 || n > f.WriteMaxSize() {
		return nil
	}
	start := f.wr.Load() & f.mask
	return f.buf[start : start+uint64(n) : start+uint64(n)]
}

// WriteCommit publishes n elements previously filled through WritePrepare.
// Committing more than Free() elements is a programming error and panics.
func (f *Fifo[T]) WriteCommit(n int) {
	if n < 0 || n > f.Free() {
		panic("fifo: commit exceeds free space")
	}
	f.wr.Add(uint64(n))
}

// ReadMaxSize returns the largest n for which ReadPeek(n) succeeds: the
// committed data up to the wrap point of the underlying array.
func (f *Fifo[T]) ReadMaxSize() int {
	rd := f.rd.Load()
	used := f.wr.Load() - rd
	tail := uint64(len(f.buf)) - (rd & f.mask)
	return int(min(used, tail))
}

// ReadPeek returns a view of the next n committed elements without
// consuming them, or nil if n is not positive or exceeds ReadMaxSize().
// The view stays valid until the matching ReadDiscard.
func (f *Fifo[T]) ReadPeek(n int) []T {
	if n <= 0 || n > f.ReadMaxSize() {
		return nil
	}
	start := f.rd.Load() & f.mask
	return f.buf[start : start+uint64(n) : start+uint64(n)]
}

// ReadDiscard releases n elements back to the producer. Discarding more
// than Used() elements panics.
func (f *Fifo[T]) ReadDiscard(n int) {
	if n < 0 || n > f.Used() {
		panic("fifo: discard exceeds used space")
	}
	f.rd.Add(uint64(n))
}

// Write copies as much of src as fits in the contiguous free run and
// commits it. It returns the number of elements accepted; the caller
// decides whether to retry or drop the remainder.
func (f *Fifo[T]) Write(src []T) int {
	n := min(len(src), f.WriteMaxSize())
	if n == 0 {
		return 0
	}
	copy(f.WritePrepare(n), src[:n])
	f.WriteCommit(n)
	return n
}

// Reset empties the ring. It must not race with either side.
func (f *Fifo[T]) Reset() {
	f.rd.Store(f.wr.Load())
}
