// Preparation parameters: the phase-boundary summary of one move.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package move

import "github.com/Caribou3d/RepRapFirmware/pkg/steptimer"

// PrepParams summarizes a move's phase split in distances (mm) and
// durations (step clocks). It starts as a copy of the move's unshaped
// trapezoid and is adjusted as shaping extends the accel and decel
// phases. After Finalise:
//
//	AccelDistance + steadyDistance + DecelDistance == TotalDistance
//	AccelClocks + SteadyClocks + DecelClocks == move duration
type PrepParams struct {
	AccelDistance      float64
	DecelDistance      float64
	DecelStartDistance float64

	AccelClocks  float64
	DecelClocks  float64
	SteadyClocks float64
}

// SetFromMove derives the provisional phase boundaries from the move's
// unmodified trapezoid. SteadyClocks stays zero until Finalise.
func (p *PrepParams) SetFromMove(m *Move) {
	p.AccelDistance = m.AccelDistance
	p.DecelDistance = m.DecelDistance
	p.DecelStartDistance = m.TotalDistance - m.DecelDistance

	if m.TopSpeed > m.StartSpeed && m.Acceleration > 0 {
		p.AccelClocks = steptimer.SecondsToClocks((m.TopSpeed - m.StartSpeed) / m.Acceleration)
	} else {
		p.AccelClocks = 0
	}
	if m.TopSpeed > m.EndSpeed && m.Deceleration > 0 {
		p.DecelClocks = steptimer.SecondsToClocks((m.TopSpeed - m.EndSpeed) / m.Deceleration)
	} else {
		p.DecelClocks = 0
	}
	p.SteadyClocks = 0
}

// Finalise computes the steady-speed clocks from whatever distance the
// (possibly widened) accel and decel phases have left over.
func (p *PrepParams) Finalise(m *Move) {
	steadyDistance := p.DecelStartDistance - p.AccelDistance
	if steadyDistance > 0 && m.TopSpeed > 0 {
		p.SteadyClocks = steptimer.SecondsToClocks(steadyDistance / m.TopSpeed)
	} else {
		p.SteadyClocks = 0
	}
}

// TotalClocks returns the finalized move duration in step clocks.
func (p *PrepParams) TotalClocks() float64 {
	return p.AccelClocks + p.SteadyClocks + p.DecelClocks
}
