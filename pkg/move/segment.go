// Move segments: closed-form pieces of the position-vs-time curve.
//
// A segment is either linear (constant speed) or quadratic (constant
// acceleration). Quadratic segments store a (b, c) pair scaled by the
// step clock rate so the step generator can recover elapsed clocks from
// a distance fraction by inverting s = u*t + a*t^2/2 without further
// scaling. Segments are allocated from a recycling pool; the shaper
// builds chains and hands ownership to the move, and the step generator
// releases them after execution.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package move

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
)

// Segment is one piece of the position/time curve. Immutable once
// populated and linked into a chain.
type Segment struct {
	next *Segment

	// distanceFraction is the cumulative distance at the end of this
	// segment as a fraction of the move's total distance. Strictly
	// increasing along a chain, reaching 1.0 on the last segment.
	distanceFraction float64

	// duration of this segment in step clocks
	duration float64

	linear bool
	b      float64
	c      float64
}

var segmentPool = sync.Pool{
	New: func() any {
		atomic.AddUint64(&numSegmentsCreated, 1)
		return new(Segment)
	},
}

var numSegmentsCreated uint64

// AllocateSegment takes a segment from the pool and links it ahead of
// next. Allocation always succeeds; the pool grows on demand.
func AllocateSegment(next *Segment) *Segment {
	s := segmentPool.Get().(*Segment)
	*s = Segment{next: next}
	return s
}

// ReleaseSegments returns a whole chain to the pool. Only the consumer
// that owns the chain may call this.
func ReleaseSegments(head *Segment) {
	for head != nil {
		next := head.next
		head.next = nil
		segmentPool.Put(head)
		head = next
	}
}

// NumSegmentsCreated returns how many segments have been allocated
// outside the pool, for diagnostics.
func NumSegmentsCreated() uint64 {
	return atomic.LoadUint64(&numSegmentsCreated)
}

// SetLinear populates the segment as constant-speed motion, where
// elapsed clocks = c * fraction.
func (s *Segment) SetLinear(distanceFraction, duration, c float64) {
	s.distanceFraction = distanceFraction
	s.duration = duration
	s.linear = true
	s.b = 0
	s.c = c
}

// SetNonLinear populates the segment as constant-acceleration motion,
// where elapsed clocks = -b + sqrt(b*b + c*fraction) (negative root
// when decelerating).
func (s *Segment) SetNonLinear(distanceFraction, duration, b, c float64) {
	s.distanceFraction = distanceFraction
	s.duration = duration
	s.linear = false
	s.b = b
	s.c = c
}

// Next returns the following segment in the chain, or nil.
func (s *Segment) Next() *Segment {
	return s.next
}

// SetNext links the following segment.
func (s *Segment) SetNext(next *Segment) {
	s.next = next
}

// AddToTail appends tail to the end of the chain starting at s.
func (s *Segment) AddToTail(tail *Segment) {
	seg := s
	for seg.next != nil {
		seg = seg.next
	}
	seg.next = tail
}

// DistanceFraction returns the cumulative fraction at the segment end.
func (s *Segment) DistanceFraction() float64 {
	return s.distanceFraction
}

// Duration returns the segment duration in step clocks.
func (s *Segment) Duration() float64 {
	return s.duration
}

// IsLinear reports whether the segment is constant-speed.
func (s *Segment) IsLinear() bool {
	return s.linear
}

// B returns the linear coefficient of the quadratic inversion.
func (s *Segment) B() float64 {
	return s.b
}

// C returns the scaling coefficient.
func (s *Segment) C() float64 {
	return s.c
}

// TimeForFraction returns the elapsed clocks within this segment after
// covering the given local distance fraction (of the move's total
// distance, not of the segment).
func (s *Segment) TimeForFraction(f float64) float64 {
	if s.linear {
		return s.c * f
	}
	root := math.Sqrt(s.b*s.b + s.c*f)
	if s.c < 0 {
		// decelerating: take the earlier root
		return -s.b - root
	}
	return -s.b + root
}

// Len returns the number of segments in the chain starting at s.
func (s *Segment) Len() int {
	n := 0
	for seg := s; seg != nil; seg = seg.next {
		n++
	}
	return n
}

// TotalDuration returns the summed duration of the chain in clocks.
func (s *Segment) TotalDuration() float64 {
	total := 0.0
	for seg := s; seg != nil; seg = seg.next {
		total += seg.duration
	}
	return total
}

// String formats one segment for diagnostics.
func (s *Segment) String() string {
	if s.linear {
		return fmt.Sprintf("lin f=%.6f t=%.1f c=%.4e", s.distanceFraction, s.duration, s.c)
	}
	return fmt.Sprintf("quad f=%.6f t=%.1f b=%.4e c=%.4e", s.distanceFraction, s.duration, s.b, s.c)
}

// ChainString formats a whole chain, one segment per line.
func ChainString(head *Segment) string {
	if head == nil {
		return "<empty>"
	}
	var sb strings.Builder
	for seg := head; seg != nil; seg = seg.next {
		sb.WriteString(seg.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
