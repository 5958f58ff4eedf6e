// Extra-distance helpers.
//
// Each helper accumulates the displacement a shaped sub-interval adds
// beyond the unshaped constant-rate interval of the same duration. The
// impulse traversal direction must match the corresponding loop in
// segment generation or the planned and generated distances diverge.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import "github.com/Caribou3d/RepRapFirmware/pkg/move"

// extraAccelStartDistance returns the additional acceleration distance
// needed if we shape the start of the acceleration phase.
func (s *AxisShaper) extraAccelStartDistance(m *move.Move) float64 {
	extraDistance := 0.0
	u := m.StartSpeed
	for i := 0; i < s.numExtraImpulses; i++ {
		segTime := s.durations[i]
		speedChange := s.coefficients[i] * m.Acceleration * segTime
		extraDistance += (1.0 - s.coefficients[i]) * (u + 0.5*speedChange) * segTime
		u += speedChange
	}
	return extraDistance
}

// extraAccelEndDistance returns the additional acceleration distance
// needed if we shape the end of the acceleration phase.
func (s *AxisShaper) extraAccelEndDistance(m *move.Move) float64 {
	extraDistance := 0.0
	v := m.TopSpeed
	for i := s.numExtraImpulses - 1; i >= 0; i-- {
		segTime := s.durations[i]
		speedChange := (1.0 - s.coefficients[i]) * m.Acceleration * segTime
		extraDistance += s.coefficients[i] * (v - 0.5*speedChange) * segTime
		v -= speedChange
	}
	return extraDistance
}

// extraDecelStartDistance returns the additional deceleration distance
// needed if we shape the start of the deceleration phase.
func (s *AxisShaper) extraDecelStartDistance(m *move.Move) float64 {
	extraDistance := 0.0
	u := m.TopSpeed
	for i := 0; i < s.numExtraImpulses; i++ {
		segTime := s.durations[i]
		speedChange := s.coefficients[i] * m.Deceleration * segTime
		extraDistance += (1.0 - s.coefficients[i]) * (u - 0.5*speedChange) * segTime
		u -= speedChange
	}
	return extraDistance
}

// extraDecelEndDistance returns the additional deceleration distance
// needed if we shape the end of the deceleration phase.
func (s *AxisShaper) extraDecelEndDistance(m *move.Move) float64 {
	extraDistance := 0.0
	v := m.EndSpeed
	for i := s.numExtraImpulses - 1; i >= 0; i-- {
		segTime := s.durations[i]
		speedChange := (1.0 - s.coefficients[i]) * m.Deceleration * segTime
		extraDistance += s.coefficients[i] * (v + 0.5*speedChange) * segTime
		v += speedChange
	}
	return extraDistance
}
