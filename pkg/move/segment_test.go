// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package move

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Caribou3d/RepRapFirmware/pkg/steptimer"
)

func TestAllocateBuildsChains(t *testing.T) {
	tail := AllocateSegment(nil)
	mid := AllocateSegment(tail)
	head := AllocateSegment(mid)

	assert.Equal(t, 3, head.Len())
	assert.Same(t, mid, head.Next())
	assert.Same(t, tail, mid.Next())
	assert.Nil(t, tail.Next())
	assert.Greater(t, NumSegmentsCreated(), uint64(0))

	ReleaseSegments(head)
}

func TestAllocateReturnsCleanSegment(t *testing.T) {
	s := AllocateSegment(nil)
	s.SetNonLinear(0.5, 1000, 42, 4242)
	ReleaseSegments(s)

	s = AllocateSegment(nil)
	assert.Equal(t, 0.0, s.DistanceFraction())
	assert.Equal(t, 0.0, s.Duration())
	assert.Equal(t, 0.0, s.B())
	assert.Equal(t, 0.0, s.C())
	assert.False(t, s.IsLinear())
	ReleaseSegments(s)
}

func TestAddToTail(t *testing.T) {
	a := AllocateSegment(nil)
	b := AllocateSegment(nil)
	c := AllocateSegment(nil)

	a.AddToTail(b)
	a.AddToTail(c)
	assert.Equal(t, 3, a.Len())
	assert.Same(t, b, a.Next())
	assert.Same(t, c, b.Next())

	ReleaseSegments(a)
}

func TestLinearTimeForFraction(t *testing.T) {
	s := AllocateSegment(nil)
	s.SetLinear(1.0, 1000, 2000)
	assert.True(t, s.IsLinear())
	assert.Equal(t, 1000.0, s.TimeForFraction(0.5))
	assert.Equal(t, 0.0, s.TimeForFraction(0.0))
	ReleaseSegments(s)
}

func TestQuadraticTimeForFraction(t *testing.T) {
	// accelerating from 10mm/s at 1000mm/s^2 over a 100mm move
	const u, a, dist = 10.0, 1000.0, 100.0
	s := AllocateSegment(nil)
	b := u * steptimer.StepClockRate / a
	c := 2 * steptimer.StepClockRateSquared * dist / a
	s.SetNonLinear(1.0, 0, b, c)

	// time to cover 2mm, from u*t + a*t^2/2 = 2
	tSec := (-u + math.Sqrt(u*u+2*a*2.0)) / a
	assert.InEpsilon(t, steptimer.SecondsToClocks(tSec), s.TimeForFraction(2.0/dist), 1e-9)
	ReleaseSegments(s)
}

func TestQuadraticTimeForFractionDecelerating(t *testing.T) {
	// decelerating from 100mm/s at 1000mm/s^2; the earlier root applies
	const u, d, dist = 100.0, 1000.0, 100.0
	s := AllocateSegment(nil)
	b := -(u * steptimer.StepClockRate) / d
	c := -(2 * steptimer.StepClockRateSquared * dist) / d
	s.SetNonLinear(1.0, 0, b, c)

	// time to cover 2mm, from u*t - d*t^2/2 = 2
	tSec := (u - math.Sqrt(u*u-2*d*2.0)) / d
	assert.InEpsilon(t, steptimer.SecondsToClocks(tSec), s.TimeForFraction(2.0/dist), 1e-9)
	ReleaseSegments(s)
}

func TestChainDurationAndString(t *testing.T) {
	tail := AllocateSegment(nil)
	tail.SetNonLinear(1.0, 300, -10, -20)
	head := AllocateSegment(tail)
	head.SetLinear(0.5, 700, 1400)

	assert.Equal(t, 1000.0, head.TotalDuration())
	assert.Contains(t, head.String(), "lin")
	assert.Contains(t, tail.String(), "quad")
	assert.Contains(t, ChainString(head), "\n")
	assert.Equal(t, "<empty>", ChainString(nil))

	ReleaseSegments(head)
}
