// Segment generation.
//
// Walks the shaping plan and builds the move's segment chain. Each
// quadratic segment stores a (b, c) pair such that for a distance s
// inside the segment (expressed as a fraction f of the move's total
// distance) the elapsed step clocks are -b + sqrt(b*b + c*f), the
// inversion of s = u*t + a*t*t/2 scaled by the step clock rate. Linear
// segments store c with elapsed clocks = c*f.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import (
	"github.com/Caribou3d/RepRapFirmware/pkg/move"
	"github.com/Caribou3d/RepRapFirmware/pkg/steptimer"
)

// accelSegments generates the acceleration-phase segments according to
// the plan and records the segment count. Built back to front: the
// shaped end first, then the constant-rate middle, with the shaped
// start prepended last.
func (s *AxisShaper) accelSegments(m *move.Move, params *move.PrepParams, plan *Plan) *move.Segment {
	if m.AccelDistance <= 0 {
		plan.AccelSegments = 0
		return nil
	}

	numAccelSegs := 0
	accumulatedSegTime := 0.0
	endDistance := params.AccelDistance
	var endAccelSegs *move.Segment
	if plan.ShapeAccelEnd {
		// Shape the end of the acceleration
		segStartSpeed := m.TopSpeed
		for i := s.numExtraImpulses - 1; i >= 0; i-- {
			numAccelSegs++
			endAccelSegs = move.AllocateSegment(endAccelSegs)
			acceleration := m.Acceleration * (1.0 - s.coefficients[i])
			segTime := s.durations[i]
			segStartSpeed -= acceleration * segTime
			b := (segStartSpeed * steptimer.StepClockRate) / acceleration
			c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / acceleration
			endAccelSegs.SetNonLinear(endDistance/m.TotalDistance, steptimer.SecondsToClocks(segTime), b, c)
			endDistance -= (segStartSpeed + 0.5*acceleration*segTime) * segTime
		}
		accumulatedSegTime += s.totalDuration
	}

	startDistance := 0.0
	startSpeed := m.StartSpeed
	var startAccelSegs *move.Segment
	if plan.ShapeAccelStart {
		// Shape the start of the acceleration
		for i := 0; i < s.numExtraImpulses; i++ {
			numAccelSegs++
			seg := move.AllocateSegment(nil)
			acceleration := m.Acceleration * s.coefficients[i]
			segTime := s.durations[i]
			b := (startSpeed * steptimer.StepClockRate) / acceleration
			c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / acceleration
			startDistance += (startSpeed + 0.5*acceleration*segTime) * segTime
			seg.SetNonLinear(startDistance/m.TotalDistance, steptimer.SecondsToClocks(segTime), b, c)
			if i == 0 {
				startAccelSegs = seg
			} else {
				startAccelSegs.AddToTail(seg)
			}
			startSpeed += acceleration * segTime
		}
		accumulatedSegTime += s.totalDuration
	}

	// Constant acceleration in the middle
	if endDistance > startDistance {
		numAccelSegs++
		endAccelSegs = move.AllocateSegment(endAccelSegs)
		b := (startSpeed * steptimer.StepClockRate) / m.Acceleration
		c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / m.Acceleration
		endAccelSegs.SetNonLinear(endDistance/m.TotalDistance,
			params.AccelClocks-steptimer.SecondsToClocks(accumulatedSegTime), b, c)
	}

	plan.AccelSegments = numAccelSegs
	if startAccelSegs == nil {
		return endAccelSegs
	}
	if endAccelSegs != nil {
		startAccelSegs.AddToTail(endAccelSegs)
	}
	return startAccelSegs
}

// decelSegments mirrors accelSegments with sign-flipped acceleration.
// The shaped start walks the impulses forward from the top speed, the
// shaped end walks them backward up from the end speed, keeping the
// impulse train symmetric about the transition in time.
func (s *AxisShaper) decelSegments(m *move.Move, params *move.PrepParams, plan *Plan) *move.Segment {
	if m.DecelDistance <= 0 {
		plan.DecelSegments = 0
		return nil
	}

	numDecelSegs := 0
	accumulatedSegTime := 0.0
	endDistance := m.TotalDistance
	var endDecelSegs *move.Segment
	if plan.ShapeDecelEnd {
		// Shape the end of the deceleration
		segStartSpeed := m.EndSpeed
		for i := s.numExtraImpulses - 1; i >= 0; i-- {
			numDecelSegs++
			endDecelSegs = move.AllocateSegment(endDecelSegs)
			acceleration := -m.Deceleration * (1.0 - s.coefficients[i])
			segTime := s.durations[i]
			segStartSpeed -= acceleration * segTime
			b := (segStartSpeed * steptimer.StepClockRate) / acceleration
			c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / acceleration
			endDecelSegs.SetNonLinear(endDistance/m.TotalDistance, steptimer.SecondsToClocks(segTime), b, c)
			endDistance -= (segStartSpeed + 0.5*acceleration*segTime) * segTime
		}
		accumulatedSegTime += s.totalDuration
	}

	startDistance := params.DecelStartDistance
	startSpeed := m.TopSpeed
	var startDecelSegs *move.Segment
	if plan.ShapeDecelStart {
		// Shape the start of the deceleration
		for i := 0; i < s.numExtraImpulses; i++ {
			numDecelSegs++
			seg := move.AllocateSegment(nil)
			acceleration := -m.Deceleration * s.coefficients[i]
			segTime := s.durations[i]
			b := (startSpeed * steptimer.StepClockRate) / acceleration
			c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / acceleration
			startDistance += (startSpeed + 0.5*acceleration*segTime) * segTime
			seg.SetNonLinear(startDistance/m.TotalDistance, steptimer.SecondsToClocks(segTime), b, c)
			if i == 0 {
				startDecelSegs = seg
			} else {
				startDecelSegs.AddToTail(seg)
			}
			startSpeed += acceleration * segTime
		}
		accumulatedSegTime += s.totalDuration
	}

	// Constant deceleration in the middle
	if endDistance > startDistance {
		numDecelSegs++
		endDecelSegs = move.AllocateSegment(endDecelSegs)
		b := -(startSpeed * steptimer.StepClockRate) / m.Deceleration
		c := -(2 * steptimer.StepClockRateSquared * m.TotalDistance) / m.Deceleration
		endDecelSegs.SetNonLinear(endDistance/m.TotalDistance,
			params.DecelClocks-steptimer.SecondsToClocks(accumulatedSegTime), b, c)
	}

	plan.DecelSegments = numDecelSegs
	if startDecelSegs == nil {
		return endDecelSegs
	}
	if endDecelSegs != nil {
		startDecelSegs.AddToTail(endDecelSegs)
	}
	return startDecelSegs
}

// finishSegments inserts the steady-speed segment (if any) ahead of
// the deceleration chain and joins everything into one chain.
func (s *AxisShaper) finishSegments(m *move.Move, params *move.PrepParams, accelSegs, decelSegs *move.Segment) *move.Segment {
	if params.SteadyClocks > 0 {
		decelSegs = move.AllocateSegment(decelSegs)
		c := (m.TotalDistance * steptimer.StepClockRate) / m.TopSpeed
		decelSegs.SetLinear(params.DecelStartDistance/m.TotalDistance, params.SteadyClocks, c)
	}

	if accelSegs != nil {
		if decelSegs != nil {
			accelSegs.AddToTail(decelSegs)
		}
		return accelSegs
	}
	return decelSegs
}

// UnshapedSegments builds the plain trapezoid chain: at most one
// quadratic acceleration segment, one linear steady segment and one
// quadratic deceleration segment. Used when shaping is off, fully
// rejected, or already embedded in the trapezoid by phase retiming.
func (s *AxisShaper) UnshapedSegments(m *move.Move, params *move.PrepParams, plan *Plan) *move.Segment {
	var segs *move.Segment

	// Deceleration phase
	if params.DecelClocks > 0 {
		segs = move.AllocateSegment(nil)
		b := -(m.TopSpeed * steptimer.StepClockRate) / m.Deceleration
		c := -(2 * steptimer.StepClockRateSquared * m.TotalDistance) / m.Deceleration
		segs.SetNonLinear(1.0, params.DecelClocks, b, c)
		plan.DecelSegments = 1
	}

	// Steady speed phase
	if params.SteadyClocks > 0 {
		segs = move.AllocateSegment(segs)
		c := (m.TotalDistance * steptimer.StepClockRate) / m.TopSpeed
		segs.SetLinear(params.DecelStartDistance/m.TotalDistance, params.SteadyClocks, c)
	}

	// Acceleration phase
	if params.AccelClocks > 0 {
		segs = move.AllocateSegment(segs)
		b := (m.StartSpeed * steptimer.StepClockRate) / m.Acceleration
		c := (2 * steptimer.StepClockRateSquared * m.TotalDistance) / m.Acceleration
		segs.SetNonLinear(params.AccelDistance/m.TotalDistance, params.AccelClocks, b, c)
		plan.AccelSegments = 1
	}

	return segs
}
