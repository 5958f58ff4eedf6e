// Axis input shaper: configuration and derived shaping constants.
//
// One AxisShaper is shared by all moves. Configuration changes are
// serialized by the caller; planning reads the configuration without
// locking, so a change only affects moves prepared after it.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import (
	"fmt"
	"math"
	"strings"

	"github.com/Caribou3d/RepRapFirmware/pkg/errors"
	"github.com/Caribou3d/RepRapFirmware/pkg/log"
	"github.com/Caribou3d/RepRapFirmware/pkg/steptimer"
)

// Params carries the optional fields of one configuration request.
// Nil pointers leave the corresponding value unchanged. Coefficients
// and Durations apply to the custom type only; Durations are seconds.
type Params struct {
	Frequency           *float64
	DampingRatio        *float64
	MinimumAcceleration *float64
	TypeName            *string
	Coefficients        []float64
	Durations           []float64
}

func (p Params) empty() bool {
	return p.Frequency == nil && p.DampingRatio == nil && p.MinimumAcceleration == nil &&
		p.TypeName == nil && len(p.Coefficients) == 0 && len(p.Durations) == 0
}

// AxisShaper owns the shaping configuration and the constants derived
// from it. The zero value is not usable; call New.
type AxisShaper struct {
	shaperType          Type
	frequency           float64
	zeta                float64
	minimumAcceleration float64

	coefficients     [MaxExtraImpulses]float64
	durations        [MaxExtraImpulses]float64
	numExtraImpulses int

	// derived on every successful configuration change
	totalDuration      float64
	clocksLostAtStart  float64
	clocksLostAtEnd    float64
	totalShapingClocks float64

	// back-to-back shaping table, computed for diagnostics; planning
	// does not read it
	overlappedCoefficients        [2 * MaxExtraImpulses]float64
	overlappedAverageAcceleration float64

	logger   *log.Logger
	onUpdate func()
}

// New creates a shaper with shaping disabled and default parameters.
// logger may be nil to suppress planning traces.
func New(logger *log.Logger) *AxisShaper {
	s := &AxisShaper{
		shaperType:          TypeNone,
		frequency:           DefaultFrequency,
		zeta:                DefaultDampingRatio,
		minimumAcceleration: DefaultMinimumAcceleration,
		logger:              logger,
	}
	s.recalcDerived()
	return s
}

// SetUpdateHook registers a callback invoked after every successful
// configuration change, so downstream consumers can invalidate plans.
func (s *AxisShaper) SetUpdateHook(fn func()) {
	s.onUpdate = fn
}

// Configure applies a configuration request. With no fields present it
// reports the current configuration as text and changes nothing. On
// error the previous configuration stays in force, except that a
// custom request with mismatched coefficient/duration counts forces
// the type back to none.
func (s *AxisShaper) Configure(p Params) (string, error) {
	if p.empty() {
		return s.StatusText(), nil
	}

	next := *s

	if p.Frequency != nil {
		f := *p.Frequency
		if f < steptimer.MinShapingFrequency || f > MaximumFrequency {
			return "", errors.ShaperRangeError("F", f, steptimer.MinShapingFrequency, MaximumFrequency)
		}
		next.frequency = f
	}
	if p.MinimumAcceleration != nil {
		// very low accelerations cause problems with the maths
		next.minimumAcceleration = math.Max(*p.MinimumAcceleration, 1.0)
	}
	if p.DampingRatio != nil {
		z := *p.DampingRatio
		if z < 0.0 || z > 0.99 {
			return "", errors.ShaperRangeError("S", z, 0.0, 0.99)
		}
		next.zeta = z
	}

	if p.TypeName != nil {
		t, ok := ParseType(*p.TypeName)
		if !ok {
			return "", errors.ShaperTypeError(*p.TypeName)
		}
		next.shaperType = t
	} else if next.shaperType == TypeNone {
		// Parameters without a type select the default shaper.
		next.shaperType = TypeZVD
	}

	switch next.shaperType {
	case TypeNone:
		next.numExtraImpulses = 0

	case TypeCustom:
		if len(p.Coefficients) == 0 {
			return "", errors.ShaperImpulseError("custom shaper requires a coefficient list")
		}
		if len(p.Coefficients) > MaxExtraImpulses {
			return "", errors.ShaperImpulseError(fmt.Sprintf("too many impulses (maximum %d)", MaxExtraImpulses))
		}
		prevCoefficient := 0.0
		for _, c := range p.Coefficients {
			if c <= prevCoefficient || c >= 1.0 {
				return "", errors.ShaperImpulseError("coefficients must be increasing and below 1.0")
			}
			prevCoefficient = c
		}
		if len(p.Durations) != 0 && len(p.Durations) != len(p.Coefficients) {
			// Mismatched arrays clear any previous shaping.
			s.shaperType = TypeNone
			s.numExtraImpulses = 0
			s.recalcDerived()
			return "", errors.ShaperImpulseError("coefficient and duration counts differ")
		}
		for i, c := range p.Coefficients {
			next.coefficients[i] = c
			if len(p.Durations) != 0 {
				next.durations[i] = p.Durations[i]
			} else {
				next.durations[i] = 0.5 / next.frequency
			}
		}
		next.numExtraImpulses = len(p.Coefficients)

	default:
		tr := deriveImpulses(next.shaperType, next.frequency, next.zeta)
		next.coefficients = tr.coefficients
		next.durations = tr.durations
		next.numExtraImpulses = tr.n
	}

	next.recalcDerived()
	*s = next
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return "", nil
}

// recalcDerived recomputes everything that is a pure function of the
// impulse train: total shaping duration, the time the filtered profile
// trails the unfiltered one at each boundary, and the overlapped
// coefficient table for back-to-back shaping.
func (s *AxisShaper) recalcDerived() {
	s.totalDuration = 0
	tLostAtStart := 0.0
	tLostAtEnd := 0.0
	for i := 0; i < s.numExtraImpulses; i++ {
		s.totalDuration += s.durations[i]
		tLostAtStart += (1.0 - s.coefficients[i]) * s.durations[i]
		tLostAtEnd += s.coefficients[i] * s.durations[i]
	}
	s.clocksLostAtStart = steptimer.SecondsToClocks(tLostAtStart)
	s.clocksLostAtEnd = steptimer.SecondsToClocks(tLostAtEnd)
	s.totalShapingClocks = steptimer.SecondsToClocks(s.totalDuration)

	s.overlappedCoefficients = [2 * MaxExtraImpulses]float64{}
	s.overlappedAverageAcceleration = 0
	if s.numExtraImpulses == 0 {
		return
	}

	// Coefficients for shaping the start of a phase and immediately
	// shaping its end: the two impulse trains abut, so entry i of the
	// combined train carries the difference of the cumulative weights.
	maxVal := 0.0
	totalAcceleration := 0.0
	for i := 0; i < 2*s.numExtraImpulses; i++ {
		val := 1.0
		if i < s.numExtraImpulses {
			val = s.coefficients[i]
		}
		if i >= s.numExtraImpulses {
			val -= s.coefficients[i-s.numExtraImpulses]
		}
		if val > maxVal {
			maxVal = val
		}
		s.overlappedCoefficients[i] = val
		totalAcceleration += val
	}

	scaling := 1.0 / maxVal
	for i := 0; i < 2*s.numExtraImpulses; i++ {
		s.overlappedCoefficients[i] *= scaling
	}
	totalAcceleration *= scaling
	s.overlappedAverageAcceleration = totalAcceleration / float64(2*s.numExtraImpulses)
}

// StatusText formats the current configuration for the user.
func (s *AxisShaper) StatusText() string {
	if s.shaperType == TypeNone {
		return "Input shaping is disabled"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input shaping '%s' at %.1fHz damping factor %.2f, min. acceleration %.1f",
		s.shaperType, s.frequency, s.zeta, s.minimumAcceleration)
	if s.numExtraImpulses != 0 {
		sb.WriteString(", impulses")
		for i := 0; i < s.numExtraImpulses; i++ {
			fmt.Fprintf(&sb, " %.3f", s.coefficients[i])
		}
		sb.WriteString(" with durations (ms)")
		for i := 0; i < s.numExtraImpulses; i++ {
			fmt.Fprintf(&sb, " %.2f", s.durations[i]*1000.0)
		}
	}
	return sb.String()
}

// Type returns the configured shaper type.
func (s *AxisShaper) Type() Type {
	return s.shaperType
}

// Frequency returns the configured frequency in Hz.
func (s *AxisShaper) Frequency() float64 {
	return s.frequency
}

// DampingRatio returns the configured damping ratio.
func (s *AxisShaper) DampingRatio() float64 {
	return s.zeta
}

// MinimumAcceleration returns the retiming acceleration floor.
func (s *AxisShaper) MinimumAcceleration() float64 {
	return s.minimumAcceleration
}

// NumExtraImpulses returns the number of populated impulse entries.
func (s *AxisShaper) NumExtraImpulses() int {
	return s.numExtraImpulses
}

// Coefficients returns a copy of the cumulative impulse weights.
func (s *AxisShaper) Coefficients() []float64 {
	out := make([]float64, s.numExtraImpulses)
	copy(out, s.coefficients[:s.numExtraImpulses])
	return out
}

// Durations returns a copy of the impulse durations in seconds.
func (s *AxisShaper) Durations() []float64 {
	out := make([]float64, s.numExtraImpulses)
	copy(out, s.durations[:s.numExtraImpulses])
	return out
}

// TotalDuration returns the total shaping duration in seconds.
func (s *AxisShaper) TotalDuration() float64 {
	return s.totalDuration
}

// ClocksLostAtStart returns the clocks the shaped profile trails the
// unshaped one when shaping the start of a phase.
func (s *AxisShaper) ClocksLostAtStart() float64 {
	return s.clocksLostAtStart
}

// ClocksLostAtEnd returns the trailing clocks when shaping a phase end.
func (s *AxisShaper) ClocksLostAtEnd() float64 {
	return s.clocksLostAtEnd
}

// TotalShapingClocks returns the total shaping duration in clocks.
func (s *AxisShaper) TotalShapingClocks() float64 {
	return s.totalShapingClocks
}

// OverlappedCoefficients returns a copy of the back-to-back shaping
// coefficient table (2*NumExtraImpulses entries).
func (s *AxisShaper) OverlappedCoefficients() []float64 {
	out := make([]float64, 2*s.numExtraImpulses)
	copy(out, s.overlappedCoefficients[:2*s.numExtraImpulses])
	return out
}

// OverlappedAverageAcceleration returns the average-acceleration
// correction factor for back-to-back shaping.
func (s *AxisShaper) OverlappedAverageAcceleration() float64 {
	return s.overlappedAverageAcceleration
}
