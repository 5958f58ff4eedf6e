// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Caribou3d/RepRapFirmware/pkg/move"
)

// checkChain verifies the structural invariants of a generated segment
// chain: fractions strictly increasing and ending at 1.0, total
// duration matching the prepared move duration, and each segment's
// time inversion agreeing with its stored duration.
func checkChain(t *testing.T, m *move.Move, params *move.PrepParams) {
	t.Helper()
	require.NotNil(t, m.Segments)

	prevFraction := 0.0
	for seg := m.Segments; seg != nil; seg = seg.Next() {
		assert.Greater(t, seg.DistanceFraction(), prevFraction)
		assert.Greater(t, seg.Duration(), 0.0)

		span := seg.DistanceFraction() - prevFraction
		assert.InEpsilon(t, seg.Duration(), seg.TimeForFraction(span), 1e-6,
			"segment %s", seg)
		prevFraction = seg.DistanceFraction()
	}
	assert.InDelta(t, 1.0, prevFraction, 1e-9)
	assert.InEpsilon(t, params.TotalClocks(), m.Segments.TotalDuration(), 1e-9)
}

func TestPlanUnshapedTrapezoid(t *testing.T) {
	s := New(nil)
	m := move.New(10, 100, 10, 3000, 3000, 100)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.False(t, plan.IsShaped())
	assert.Equal(t, 1, plan.AccelSegments)
	assert.Equal(t, 1, plan.DecelSegments)
	assert.Equal(t, 3, m.Segments.Len())
	checkChain(t, m, &params)

	// phase boundaries land on the trapezoid corners
	first := m.Segments
	assert.InDelta(t, m.AccelDistance/m.TotalDistance, first.DistanceFraction(), 1e-12)
	assert.False(t, first.IsLinear())
	assert.True(t, first.Next().IsLinear())
}

func TestPlanShapingDisabledFlag(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)
	m := move.New(10, 100, 10, 1000, 1000, 200)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, false)
	assert.False(t, plan.IsShaped())
	assert.Equal(t, 3, m.Segments.Len())
	checkChain(t, m, &params)
}

func TestPlanFullyShapedMove(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)
	m := move.New(10, 100, 10, 1000, 1000, 200)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.True(t, plan.ShapeAccelStart)
	assert.True(t, plan.ShapeAccelEnd)
	assert.True(t, plan.ShapeDecelStart)
	assert.True(t, plan.ShapeDecelEnd)

	// 2 shaped start + 1 constant + 2 shaped end per phase, plus steady
	assert.Equal(t, 5, plan.AccelSegments)
	assert.Equal(t, 5, plan.DecelSegments)
	assert.Equal(t, 11, m.Segments.Len())
	checkChain(t, m, &params)

	// shaping widened both phases by the boundary penalties
	assert.Greater(t, params.AccelDistance, m.AccelDistance)
	assert.Less(t, params.DecelStartDistance, m.TotalDistance-m.DecelDistance)
}

func TestPlanShortAccelerationNotShaped(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)
	// very high acceleration: the accel phase is shorter than the
	// impulse train, deceleration is long enough
	m := move.New(10, 100, 10, 20000, 1000, 200)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.False(t, plan.ShapeAccelStart)
	assert.False(t, plan.ShapeAccelEnd)
	assert.True(t, plan.ShapeDecelStart)
	assert.True(t, plan.ShapeDecelEnd)
	assert.Equal(t, 1, plan.AccelSegments)
	assert.Equal(t, 5, plan.DecelSegments)
	checkChain(t, m, &params)
}

func TestPlanTightMoveFallsBackToTrapezoid(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)
	// long enough phases but almost no constant-speed distance to give
	// away, so the extra shaping distance does not fit
	m := move.New(10, 100, 10, 1000, 1000, 10)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.False(t, plan.IsShaped())
	assert.Equal(t, 3, m.Segments.Len())
	checkChain(t, m, &params)
}

func TestPlanPrevMoveBlocksAccelStart(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)

	prev := move.New(10, 100, 100, 1000, 1000, 50)
	prev.State = move.Frozen
	prev.WasAccelOnly = true
	m := move.New(10, 100, 10, 1000, 1000, 200)
	m.LinkAfter(prev)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.False(t, plan.ShapeAccelStart)
	assert.True(t, plan.ShapeAccelEnd)
	assert.True(t, plan.ShapeDecelStart)
	assert.True(t, plan.ShapeDecelEnd)
	checkChain(t, m, &params)
}

func TestPlanPrevMoveProvisionalDoesNotBlock(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)

	prev := move.New(10, 100, 100, 1000, 1000, 50)
	prev.State = move.Provisional
	prev.WasAccelOnly = true
	m := move.New(10, 100, 10, 1000, 1000, 200)
	m.LinkAfter(prev)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.True(t, plan.ShapeAccelStart)
}

func TestPlanNextMoveBlocksDecelEnd(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)

	m := move.New(10, 100, 10, 1000, 1000, 200)
	next := move.New(100, 100, 0, 3000, 1000, 5)
	require.True(t, next.IsDecelerationMove())
	next.LinkAfter(m)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	assert.True(t, plan.ShapeAccelStart)
	assert.False(t, plan.ShapeDecelEnd)
	assert.True(t, plan.ShapeDecelStart)
	checkChain(t, m, &params)
}

func TestPlanAccelPhaseExactlyOneShapingWindow(t *testing.T) {
	s := configureType(t, "zvd", 40.0, 0.1)

	// acceleration phase lasting exactly one shaping window, no
	// deceleration phase at all: shaping either boundary alone would
	// fit, but shaping both needs twice the window, so the phase stays
	// unshaped and the move degrades to accel plus steady
	accel := 90.0 / s.TotalDuration()
	m := move.New(10, 100, 100, accel, 3000, 50)
	var params move.PrepParams

	plan := s.PlanShaping(m, &params, true)
	require.InDelta(t, s.TotalShapingClocks(), params.AccelClocks, 1e-6)
	assert.Equal(t, 0.0, params.DecelClocks)

	assert.False(t, plan.IsShaped())
	assert.Equal(t, 1, plan.AccelSegments)
	assert.Equal(t, 0, plan.DecelSegments)
	assert.Equal(t, 2, m.Segments.Len())
	checkChain(t, m, &params)
}

func TestPlanReplanningReleasesNothing(t *testing.T) {
	// replanning the same move just attaches a fresh chain; the caller
	// owns releasing the old one
	s := configureType(t, "zvd", 40.0, 0.1)
	m := move.New(10, 100, 10, 1000, 1000, 200)
	var params move.PrepParams

	s.PlanShaping(m, &params, true)
	old := m.Segments
	s.PlanShaping(m, &params, true)
	assert.NotSame(t, old, m.Segments)
	move.ReleaseSegments(old)
	move.ReleaseSegments(m.Segments)
}

func TestPlanReplanningIsStable(t *testing.T) {
	// preparing an unmodified move again must reproduce the same plan
	// and a value-identical segment chain
	s := configureType(t, "zvd", 40.0, 0.1)
	m := move.New(10, 100, 10, 1000, 1000, 200)

	var firstParams move.PrepParams
	firstPlan := s.PlanShaping(m, &firstParams, true)
	first := m.Segments

	var params move.PrepParams
	plan := s.PlanShaping(m, &params, true)
	assert.Equal(t, firstPlan, plan)
	assert.Equal(t, firstParams, params)

	seg := m.Segments
	for prev := first; prev != nil; prev = prev.Next() {
		require.NotNil(t, seg)
		assert.Equal(t, prev.DistanceFraction(), seg.DistanceFraction())
		assert.Equal(t, prev.Duration(), seg.Duration())
		assert.Equal(t, prev.IsLinear(), seg.IsLinear())
		assert.Equal(t, prev.B(), seg.B())
		assert.Equal(t, prev.C(), seg.C())
		seg = seg.Next()
	}
	assert.Nil(t, seg)

	move.ReleaseSegments(first)
	move.ReleaseSegments(m.Segments)
}
