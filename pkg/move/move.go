// Move descriptor for a single planned move.
//
// The lookahead planner creates one of these per queued move with the
// trapezoid already decided (start/top/end speed, accel, decel, total
// distance). The shaper engine reads it, may retime the accel/decel
// phases in place, and attaches the finished segment chain for the
// step generator to consume.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package move

// State is the lifecycle state of a queued move.
type State int

const (
	// Provisional moves may still be modified by lookahead.
	Provisional State = iota

	// Frozen moves have final parameters and await execution.
	Frozen

	// Executing moves are being stepped right now.
	Executing

	// Completed moves have finished and may be recycled.
	Completed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Provisional:
		return "provisional"
	case Frozen:
		return "frozen"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Move holds the kinematic parameters of one planned move. Speeds are
// in mm/s, accelerations in mm/s^2, distances in mm.
type Move struct {
	StartSpeed   float64
	TopSpeed     float64
	EndSpeed     float64
	Acceleration float64
	Deceleration float64

	TotalDistance float64

	// Phase split computed by the planner before preparation. The
	// shaper adjusts these when it retimes a phase.
	AccelDistance float64
	DecelDistance float64

	State State

	// WasAccelOnly is set when the whole move is one acceleration
	// phase; the next move's shaper must not re-shape that boundary.
	WasAccelOnly bool

	prev *Move
	next *Move

	// Segments is the head of the segment chain once prepared.
	Segments *Segment
}

// New creates a move with the phase split derived from its speeds.
func New(startSpeed, topSpeed, endSpeed, accel, decel, distance float64) *Move {
	m := &Move{
		StartSpeed:    startSpeed,
		TopSpeed:      topSpeed,
		EndSpeed:      endSpeed,
		Acceleration:  accel,
		Deceleration:  decel,
		TotalDistance: distance,
	}
	m.RecalculatePhases()
	return m
}

// RecalculatePhases rederives the accel/decel phase distances from the
// current speeds and rates.
func (m *Move) RecalculatePhases() {
	if m.TopSpeed > m.StartSpeed && m.Acceleration > 0 {
		m.AccelDistance = (m.TopSpeed*m.TopSpeed - m.StartSpeed*m.StartSpeed) / (2 * m.Acceleration)
	} else {
		m.AccelDistance = 0
	}
	if m.TopSpeed > m.EndSpeed && m.Deceleration > 0 {
		m.DecelDistance = (m.TopSpeed*m.TopSpeed - m.EndSpeed*m.EndSpeed) / (2 * m.Deceleration)
	} else {
		m.DecelDistance = 0
	}
}

// IsDecelerationMove reports whether the move is deceleration from
// start to finish.
func (m *Move) IsDecelerationMove() bool {
	return m.DecelDistance >= m.TotalDistance
}

// LinkAfter inserts m into the queue directly after prev.
func (m *Move) LinkAfter(prev *Move) {
	m.prev = prev
	if prev != nil {
		prev.next = m
	}
}

// Prev returns a read-only view of the previous move in the queue.
func (m *Move) Prev() Neighbor {
	return Neighbor{m.prev}
}

// Next returns a read-only view of the next move in the queue.
func (m *Move) Next() Neighbor {
	return Neighbor{m.next}
}

// Neighbor is a read-only view of an adjacent move. The shaper may
// inspect a neighbor's state and flags but never mutates it, and must
// not hold the view beyond the current planning call.
type Neighbor struct {
	m *Move
}

// Known reports whether there is an adjacent move at all.
func (n Neighbor) Known() bool {
	return n.m != nil
}

// State returns the neighbor's lifecycle state.
func (n Neighbor) State() State {
	return n.m.State
}

// WasAccelOnly reports the neighbor's acceleration-only flag.
func (n Neighbor) WasAccelOnly() bool {
	return n.m.WasAccelOnly
}

// IsDecelerationMove reports whether the neighbor decelerates for its
// whole length.
func (n Neighbor) IsDecelerationMove() bool {
	return n.m.IsDecelerationMove()
}
