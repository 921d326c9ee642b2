// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fifo

import (
	"sync"
	"testing"
)

func TestNewRoundsUp(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{-1, 2},
		{0, 2},
		{1, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
		{1 << 21, 1 << 21},
	}
	for _, tt := range tests {
		if got := New[int](tt.capacity).Cap(); got != tt.want {
			t.Errorf("New(%d).Cap() = %d, want %d", tt.capacity, got, tt.want)
		}
	}
}

func TestAccounting(t *testing.T) {
	f := New[int](8)

	if n := f.Write([]int{0, 1, 2, 3, 4}); n != 5 {
		t.Fatalf("Write() = %d, want 5", n)
	}
	if f.Used() != 5 || f.Free() != 3 {
		t.Errorf("Used/Free = %d/%d, want 5/3", f.Used(), f.Free())
	}

	got := f.ReadPeek(5)
	for i, v := range got {
		if v != i {
			t.Errorf("ReadPeek()[%d] = %d, want %d", i, v, i)
		}
	}
	f.ReadDiscard(3)
	if f.Used() != 2 {
		t.Errorf("Used() = %d, want 2", f.Used())
	}

	// wr=5, rd=3: 6 free but only 3 contiguous before the wrap.
	if got := f.WriteMaxSize(); got != 3 {
		t.Errorf("WriteMaxSize() = %d, want 3", got)
	}
	if n := f.Write([]int{5, 6, 7, 8, 9, 10}); n != 3 {
		t.Errorf("Write() = %d, want 3 (contiguous run)", n)
	}
	if n := f.Write([]int{8, 9, 10}); n != 3 {
		t.Errorf("Write() after wrap = %d, want 3", n)
	}
	if f.Free() != 0 || f.Used()+f.Free() != f.Cap() {
		t.Errorf("Used/Free = %d/%d, want 8/0", f.Used(), f.Free())
	}
	if n := f.Write([]int{11}); n != 0 {
		t.Errorf("Write() on full fifo = %d, want 0", n)
	}

	// rd=3: readable run stops at the end of the array.
	if got := f.ReadMaxSize(); got != 5 {
		t.Errorf("ReadMaxSize() = %d, want 5", got)
	}
	if f.ReadPeek(6) != nil {
		t.Error("ReadPeek beyond contiguous run should return nil")
	}
	want := 3
	for f.Used() > 0 {
		n := f.ReadMaxSize()
		for _, v := range f.ReadPeek(n) {
			if v != want {
				t.Fatalf("read %d, want %d", v, want)
			}
			want++
		}
		f.ReadDiscard(n)
	}
	if want != 11 {
		t.Errorf("read up to %d, want 11", want)
	}
}

func TestPrepareCommit(t *testing.T) {
	f := New[float32](4)
	if f.WritePrepare(0) != nil {
		t.Error("WritePrepare(0) should return nil")
	}
	if f.WritePrepare(5) != nil {
		t.Error("WritePrepare(5) on 4-slot fifo should return nil")
	}
	w := f.WritePrepare(2)
	if len(w) != 2 || cap(w) != 2 {
		t.Fatalf("WritePrepare(2) len/cap = %d/%d, want 2/2", len(w), cap(w))
	}
	w[0], w[1] = 1.5, 2.5
	if f.Used() != 0 {
		t.Errorf("Used() before commit = %d, want 0", f.Used())
	}
	f.WriteCommit(2)
	if got := f.ReadPeek(2); got[0] != 1.5 || got[1] != 2.5 {
		t.Errorf("ReadPeek(2) = %v, want [1.5 2.5]", got)
	}
	// Peek is non-destructive.
	if f.Used() != 2 {
		t.Errorf("Used() after peek = %d, want 2", f.Used())
	}
}

func TestContractPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(f *Fifo[int])
	}{
		{"commit beyond free", func(f *Fifo[int]) { f.WriteCommit(5) }},
		{"discard beyond used", func(f *Fifo[int]) { f.ReadDiscard(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", tt.name)
				}
			}()
			tt.fn(New[int](4))
		})
	}
}

func TestReset(t *testing.T) {
	f := New[int](4)
	f.Write([]int{1, 2, 3})
	f.Reset()
	if f.Used() != 0 || f.Free() != 4 {
		t.Errorf("after Reset Used/Free = %d/%d, want 0/4", f.Used(), f.Free())
	}
}

func TestConcurrentOrdering(t *testing.T) {
	const total = 1 << 18
	f := New[uint32](1024)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		next := uint32(0)
		for next < total {
			n := min(f.WriteMaxSize(), int(total-next))
			if n == 0 {
				continue
			}
			w := f.WritePrepare(n)
			for i := range w {
				w[i] = next
				next++
			}
			f.WriteCommit(n)
		}
	}()

	want := uint32(0)
	for want < total {
		if used := f.Used(); used > f.Cap() {
			t.Fatalf("Used() = %d exceeds Cap() = %d", used, f.Cap())
		}
		n := f.ReadMaxSize()
		if n == 0 {
			continue
		}
		for _, v := range f.ReadPeek(n) {
			if v != want {
				t.Fatalf("read %d, want %d", v, want)
			}
			want++
		}
		f.ReadDiscard(n)
	}
	wg.Wait()
}
