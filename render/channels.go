// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"cmp"
	"slices"
)

// Segment is a sub-interval of the normalized band [0,1] and the number of
// enabled channels covering it.
type Segment struct {
	Start, End float64
	Depth      int
}

// edgeEpsilon is the distance below which two channel edges coincide.
const edgeEpsilon = 1e-9

type boundary struct {
	pos   float64
	delta int
}

// Partition splits [0,1] at every enabled channel edge and reports the
// coverage depth of each piece. Adjacent pieces of equal depth are merged.
// It returns nil when no channel is enabled.
func Partition(channels []Channel) []Segment {
	bounds := make([]boundary, 0, 2*len(channels)+2)
	bounds = append(bounds, boundary{0, 0}, boundary{1, 0})
	for _, ch := range channels {
		if !ch.Enabled || ch.Width <= 0 {
			continue
		}
		lo := clamp01(ch.Center - ch.Width/2)
		hi := clamp01(ch.Center + ch.Width/2)
		if hi <= lo {
			continue
		}
		bounds = append(bounds, boundary{lo, 1}, boundary{hi, -1})
	}
	if len(bounds) == 2 {
		return nil
	}
	slices.SortStableFunc(bounds, func(a, b boundary) int {
		return cmp.Compare(a.pos, b.pos)
	})

	var segs []Segment
	depth := 0
	prev := 0.0
	for i := 0; i < len(bounds); {
		pos := bounds[i].pos
		if pos-prev > edgeEpsilon {
			if n := len(segs); n > 0 && segs[n-1].Depth == depth {
				segs[n-1].End = pos
			} else {
				segs = append(segs, Segment{Start: prev, End: pos, Depth: depth})
			}
			prev = pos
		}
		// Edges closer than edgeEpsilon are one edge.
		for ; i < len(bounds) && bounds[i].pos-pos <= edgeEpsilon; i++ {
			depth += bounds[i].delta
		}
	}
	segs[len(segs)-1].End = 1
	return segs
}

// OverlayColor returns the shade of a segment of the given depth. Uncovered
// parts of the band are darkened; covered parts brighten as channels stack,
// a single channel leaving the plot untouched.
func OverlayColor(depth int) Color {
	if depth <= 0 {
		return Black.WithAlpha(0.5)
	}
	return Color{1, 1, 1, 0.2 - 0.2/float64(depth)}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
