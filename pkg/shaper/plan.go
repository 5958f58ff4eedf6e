// Shaping plan decision.
//
// Planning reconciles the configured shaper against one move's clock
// and distance budgets and against the lifecycle state of the adjacent
// moves. Infeasible shaping is never an error: the plan silently
// degrades to fewer shaped boundaries, or to the plain trapezoid.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import (
	"math"

	"github.com/Caribou3d/RepRapFirmware/pkg/log"
	"github.com/Caribou3d/RepRapFirmware/pkg/move"
)

// Plan records which of the four phase boundaries of one move are
// shaped, and how many segments each phase produced. Created fresh per
// move; fixed once segment generation starts.
type Plan struct {
	ShapeAccelStart bool
	ShapeAccelEnd   bool
	ShapeDecelStart bool
	ShapeDecelEnd   bool

	AccelSegments int
	DecelSegments int
}

// IsShaped reports whether any boundary is shaped.
func (p Plan) IsShaped() bool {
	return p.ShapeAccelStart || p.ShapeAccelEnd || p.ShapeDecelStart || p.ShapeDecelEnd
}

// retimeTolerance accepts a phase duration as already matching an
// integer number of ideal periods, so replanning an already retimed
// move leaves it alone.
const retimeTolerance = 1e-9

// PlanShaping plans input shaping for one move, generates its segment
// chain and attaches the chain to the move. The move's acceleration,
// deceleration, top speed and phase distances may be adjusted in
// place; params receives the final phase split.
func (s *AxisShaper) PlanShaping(m *move.Move, params *move.PrepParams, shapingEnabled bool) Plan {
	var plan Plan

	effectiveType := s.shaperType
	if !shapingEnabled {
		effectiveType = TypeNone
	}

	switch {
	case effectiveType == TypeSingleImpulse:
		s.retimePhases(m)
		params.SetFromMove(m)
		params.Finalise(m)
		m.Segments = s.UnshapedSegments(m, params, &plan)
		return plan

	case effectiveType == TypeNone || s.numExtraImpulses == 0:
		params.SetFromMove(m)
		params.Finalise(m)
		m.Segments = s.UnshapedSegments(m, params, &plan)
		return plan
	}

	// Multi-impulse shaping: set the plan to what we would like to do,
	// then cut it back to what fits.
	params.SetFromMove(m)

	prev := m.Prev()
	prevBoundaryFree := !prev.Known() ||
		(prev.State() != move.Frozen && prev.State() != move.Executing) || !prev.WasAccelOnly()
	next := m.Next()
	nextBoundaryFree := !next.Known() ||
		next.State() != move.Provisional || !next.IsDecelerationMove()

	plan.ShapeAccelStart = params.AccelClocks+s.clocksLostAtStart >= s.totalShapingClocks && prevBoundaryFree
	plan.ShapeAccelEnd = params.AccelClocks+s.clocksLostAtEnd >= s.totalShapingClocks &&
		params.DecelStartDistance > params.AccelDistance
	plan.ShapeDecelStart = params.DecelClocks+s.clocksLostAtStart >= s.totalShapingClocks &&
		params.DecelStartDistance > params.AccelDistance
	plan.ShapeDecelEnd = params.DecelClocks+s.clocksLostAtEnd >= s.totalShapingClocks && nextBoundaryFree

	// See if we can shape the acceleration
	if plan.ShapeAccelStart || plan.ShapeAccelEnd {
		if plan.ShapeAccelStart && plan.ShapeAccelEnd && params.AccelClocks < 2*s.totalShapingClocks {
			// too short to fit two impulse trains
			plan.ShapeAccelStart = false
			plan.ShapeAccelEnd = false
		} else {
			extraAccelDistance := 0.0
			if plan.ShapeAccelStart {
				extraAccelDistance = s.extraAccelStartDistance(m)
			}
			if plan.ShapeAccelEnd {
				extraAccelDistance += s.extraAccelEndDistance(m)
			}
			if params.AccelDistance+extraAccelDistance <= params.DecelStartDistance {
				params.AccelDistance += extraAccelDistance
				if plan.ShapeAccelStart {
					params.AccelClocks += s.clocksLostAtStart
				}
				if plan.ShapeAccelEnd {
					params.AccelClocks += s.clocksLostAtEnd
				}
			} else {
				// not enough constant-speed distance for the wider
				// acceleration phase
				plan.ShapeAccelStart = false
				plan.ShapeAccelEnd = false
				s.logger.Debugf("can't shape acceleration: extra=%.4f", extraAccelDistance)
			}
		}
	}

	// See if we can shape the deceleration
	if plan.ShapeDecelStart || plan.ShapeDecelEnd {
		if plan.ShapeDecelStart && plan.ShapeDecelEnd && params.DecelClocks < 2*s.totalShapingClocks {
			plan.ShapeDecelStart = false
			plan.ShapeDecelEnd = false
		} else {
			extraDecelDistance := 0.0
			if plan.ShapeDecelStart {
				extraDecelDistance = s.extraDecelStartDistance(m)
			}
			if plan.ShapeDecelEnd {
				extraDecelDistance += s.extraDecelEndDistance(m)
			}
			if params.AccelDistance+extraDecelDistance <= params.DecelStartDistance {
				params.DecelStartDistance -= extraDecelDistance
				if plan.ShapeDecelStart {
					params.DecelClocks += s.clocksLostAtStart
				}
				if plan.ShapeDecelEnd {
					params.DecelClocks += s.clocksLostAtEnd
				}
			} else {
				plan.ShapeDecelStart = false
				plan.ShapeDecelEnd = false
				s.logger.Debugf("can't shape deceleration: extra=%.4f", extraDecelDistance)
			}
		}
	}

	if s.logger.DebugEnabled() {
		s.logger.DebugFields("shaping plan", log.Fields{
			"accelStart": plan.ShapeAccelStart,
			"accelEnd":   plan.ShapeAccelEnd,
			"decelStart": plan.ShapeDecelStart,
			"decelEnd":   plan.ShapeDecelEnd,
		})
	}

	accelSegs := s.accelSegments(m, params, &plan)
	decelSegs := s.decelSegments(m, params, &plan)
	params.Finalise(m)
	m.Segments = s.finishSegments(m, params, accelSegs, decelSegs)
	return plan
}

// retimePhases reduces the move's acceleration and/or deceleration so
// each phase spans a whole number of damped periods, cancelling
// ringing without extra impulses. Falls back through progressively
// simpler move shapes; if none fits, the move stays untouched.
func (s *AxisShaper) retimePhases(m *move.Move) {
	idealPeriod := s.durations[0] // the full damped period

	proposedAcceleration := m.Acceleration
	proposedAccelDistance := m.AccelDistance
	adjustAcceleration := false
	prev := m.Prev()
	prevBoundaryFree := !prev.Known() ||
		(prev.State() != move.Frozen && prev.State() != move.Executing) || !prev.WasAccelOnly()
	if m.TopSpeed > m.StartSpeed && prevBoundaryFree {
		accelTime := (m.TopSpeed - m.StartSpeed) / m.Acceleration
		switch {
		case matchesPeriod(accelTime, idealPeriod) || matchesPeriod(accelTime, 2*idealPeriod):
			// already retimed
		case accelTime < idealPeriod:
			proposedAcceleration = (m.TopSpeed - m.StartSpeed) / idealPeriod
			adjustAcceleration = true
		case accelTime < idealPeriod*2:
			proposedAcceleration = (m.TopSpeed - m.StartSpeed) / (idealPeriod * 2)
			adjustAcceleration = true
		}
		if adjustAcceleration {
			proposedAccelDistance = (m.TopSpeed*m.TopSpeed - m.StartSpeed*m.StartSpeed) / (2 * proposedAcceleration)
		}
	}

	proposedDeceleration := m.Deceleration
	proposedDecelDistance := m.DecelDistance
	adjustDeceleration := false
	next := m.Next()
	nextBoundaryFree := !next.Known() ||
		next.State() != move.Provisional || !next.IsDecelerationMove()
	if m.TopSpeed > m.EndSpeed && nextBoundaryFree {
		decelTime := (m.TopSpeed - m.EndSpeed) / m.Deceleration
		switch {
		case matchesPeriod(decelTime, idealPeriod) || matchesPeriod(decelTime, 2*idealPeriod):
			// already retimed
		case decelTime < idealPeriod:
			proposedDeceleration = (m.TopSpeed - m.EndSpeed) / idealPeriod
			adjustDeceleration = true
		case decelTime < idealPeriod*2:
			proposedDeceleration = (m.TopSpeed - m.EndSpeed) / (idealPeriod * 2)
			adjustDeceleration = true
		}
		if adjustDeceleration {
			proposedDecelDistance = (m.TopSpeed*m.TopSpeed - m.EndSpeed*m.EndSpeed) / (2 * proposedDeceleration)
		}
	}

	if !adjustAcceleration && !adjustDeceleration {
		return
	}

	if proposedAccelDistance+proposedDecelDistance <= m.TotalDistance {
		if proposedAcceleration < s.minimumAcceleration || proposedDeceleration < s.minimumAcceleration {
			return
		}
		m.Acceleration = proposedAcceleration
		m.Deceleration = proposedDeceleration
		m.AccelDistance = proposedAccelDistance
		m.DecelDistance = proposedDecelDistance
	} else {
		// Can't stay trapezoidal at the original top speed. Try an
		// accelerate-decelerate move with both phases exactly one
		// ideal period.
		twiceTotalDistance := 2 * m.TotalDistance
		proposedTopSpeed := m.TotalDistance/idealPeriod - (m.StartSpeed+m.EndSpeed)/2
		switch {
		case proposedTopSpeed > m.StartSpeed && proposedTopSpeed > m.EndSpeed:
			proposedAcceleration = (twiceTotalDistance - (3*m.StartSpeed+m.EndSpeed)*idealPeriod) / (2 * idealPeriod * idealPeriod)
			proposedDeceleration = (twiceTotalDistance - (m.StartSpeed+3*m.EndSpeed)*idealPeriod) / (2 * idealPeriod * idealPeriod)
			if proposedAcceleration < s.minimumAcceleration || proposedDeceleration < s.minimumAcceleration ||
				proposedAcceleration > m.Acceleration || proposedDeceleration > m.Deceleration {
				return
			}
			m.TopSpeed = proposedTopSpeed
			m.Acceleration = proposedAcceleration
			m.Deceleration = proposedDeceleration
			m.AccelDistance = m.StartSpeed*idealPeriod + (m.Acceleration*idealPeriod*idealPeriod)/2
			m.DecelDistance = m.EndSpeed*idealPeriod + (m.Deceleration*idealPeriod*idealPeriod)/2

		case m.StartSpeed < m.EndSpeed:
			// accelerate-only, as slowly as we can
			proposedAcceleration = (m.EndSpeed*m.EndSpeed - m.StartSpeed*m.StartSpeed) / twiceTotalDistance
			if proposedAcceleration < s.minimumAcceleration {
				return
			}
			m.Acceleration = proposedAcceleration
			m.TopSpeed = m.EndSpeed
			m.AccelDistance = m.TotalDistance
			m.DecelDistance = 0

		case m.StartSpeed > m.EndSpeed:
			// decelerate-only, as slowly as we can
			proposedDeceleration = (m.StartSpeed*m.StartSpeed - m.EndSpeed*m.EndSpeed) / twiceTotalDistance
			if proposedDeceleration < s.minimumAcceleration {
				return
			}
			m.Deceleration = proposedDeceleration
			m.TopSpeed = m.StartSpeed
			m.AccelDistance = 0
			m.DecelDistance = m.TotalDistance

		default:
			// start and end speeds are equal, give up on this move
			return
		}
	}

	s.logger.Debugf("retimed: a=%.1f d=%.1f v=%.1f", m.Acceleration, m.Deceleration, m.TopSpeed)
}

// matchesPeriod reports whether t already equals the given period
// within floating-point tolerance.
func matchesPeriod(t, period float64) bool {
	return math.Abs(t-period) <= retimeTolerance*math.Max(t, period)
}
