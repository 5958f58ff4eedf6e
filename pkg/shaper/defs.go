// Input shaper type definitions and coefficient derivation.
//
// The analytic shapers (zvd, zvdd, ei2, ei3) derive their impulse
// weights and spacings from closed-form expressions in the damping
// ratio and the damped resonant frequency. The constants come from the
// input shaping literature (Singer/Singhose EI shapers, US patent
// 4,916,635) and are reproduced verbatim, not re-derived.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

import (
	"math"
	"strings"
)

// MaxExtraImpulses is the hard upper bound on impulses per shaper.
// The real-time consumer assumes per-move overhead is bounded by it.
const MaxExtraImpulses = 4

// Default configuration values, applied until the first M593.
const (
	DefaultFrequency           = 40.0
	DefaultDampingRatio        = 0.1
	DefaultMinimumAcceleration = 10.0
)

// MaximumFrequency is the highest accepted shaping frequency in Hz.
const MaximumFrequency = 1000.0

// Type identifies the input shaping algorithm.
type Type int

const (
	// TypeNone disables shaping.
	TypeNone Type = iota

	// TypeCustom uses caller-supplied impulse weights and durations.
	TypeCustom

	// TypeSingleImpulse retimes whole accel/decel phases to an
	// integer number of damped periods instead of inserting impulses
	// (historically known as DAA, dynamic acceleration adjustment).
	TypeSingleImpulse

	// TypeZVD is the zero-vibration-derivative shaper (2 impulses).
	TypeZVD

	// TypeZVDD is the second-derivative variant (3 impulses).
	TypeZVDD

	// TypeEI2 is the two-hump extra-insensitive shaper (3 impulses).
	TypeEI2

	// TypeEI3 is the three-hump extra-insensitive shaper (4 impulses).
	TypeEI3
)

// String returns the canonical type name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeCustom:
		return "custom"
	case TypeSingleImpulse:
		return "single-impulse"
	case TypeZVD:
		return "zvd"
	case TypeZVDD:
		return "zvdd"
	case TypeEI2:
		return "ei2"
	case TypeEI3:
		return "ei3"
	default:
		return "unknown"
	}
}

// ParseType maps a type name to its Type. The comparison ignores case
// and punctuation so "ZVD", "single-impulse" and "singleimpulse" all
// resolve. "daa" is the historical name for single-impulse.
func ParseType(name string) (Type, bool) {
	reduced := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == ' ' {
			return -1
		}
		return r
	}, strings.ToLower(name))

	switch reduced {
	case "none":
		return TypeNone, true
	case "custom":
		return TypeCustom, true
	case "singleimpulse", "daa":
		return TypeSingleImpulse, true
	case "zvd":
		return TypeZVD, true
	case "zvdd":
		return TypeZVDD, true
	case "ei2":
		return TypeEI2, true
	case "ei3":
		return TypeEI3, true
	default:
		return TypeNone, false
	}
}

// impulseTrain holds derived impulse weights and spacings. The
// coefficients are cumulative weights of all-but-the-last impulse; the
// final weight is implicitly 1.0.
type impulseTrain struct {
	coefficients [MaxExtraImpulses]float64
	durations    [MaxExtraImpulses]float64
	n            int
}

// deriveImpulses computes the impulse train for an analytic shaper
// type from the damping ratio zeta and the configured frequency.
func deriveImpulses(t Type, frequency, zeta float64) impulseTrain {
	sqrtOneMinusZetaSquared := math.Sqrt(1.0 - zeta*zeta)
	dampedFrequency := frequency * sqrtOneMinusZetaSquared
	k := math.Exp(-zeta * math.Pi / sqrtOneMinusZetaSquared)

	var tr impulseTrain
	switch t {
	case TypeSingleImpulse:
		// durations[0] holds the full damped period; the retiming
		// branch reads it as the ideal phase duration.
		tr.durations[0] = 1.0 / dampedFrequency
		tr.n = 0

	case TypeZVD:
		j := 1.0 + 2.0*k + k*k
		tr.coefficients[0] = 1.0 / j
		tr.coefficients[1] = tr.coefficients[0] + 2.0*k/j
		tr.durations[0] = 0.5 / dampedFrequency
		tr.durations[1] = tr.durations[0]
		tr.n = 2

	case TypeZVDD:
		j := 1.0 + 3.0*(k+k*k) + k*k*k
		tr.coefficients[0] = 1.0 / j
		tr.coefficients[1] = tr.coefficients[0] + 3.0*k/j
		tr.coefficients[2] = tr.coefficients[1] + 3.0*k*k/j
		tr.durations[0] = 0.5 / dampedFrequency
		tr.durations[1] = tr.durations[0]
		tr.durations[2] = tr.durations[0]
		tr.n = 3

	case TypeEI2:
		zeta2 := zeta * zeta
		zeta3 := zeta2 * zeta
		tr.coefficients[0] = (0.16054) + (0.76699)*zeta + (2.26560)*zeta2 + (-1.22750)*zeta3
		tr.coefficients[1] = (0.16054 + 0.33911) + (0.76699+0.45081)*zeta + (2.26560-2.58080)*zeta2 + (-1.22750+1.73650)*zeta3
		tr.coefficients[2] = (0.16054 + 0.33911 + 0.34089) + (0.76699+0.45081-0.61533)*zeta + (2.26560-2.58080-0.68765)*zeta2 + (-1.22750+1.73650+0.42261)*zeta3

		tr.durations[0] = ((0.49890) + (0.16270)*zeta + (-0.54262)*zeta2 + (6.16180)*zeta3) / dampedFrequency
		tr.durations[1] = ((0.99748 - 0.49890) + (0.18382-0.16270)*zeta + (-1.58270+0.54262)*zeta2 + (8.17120-6.16180)*zeta3) / dampedFrequency
		tr.durations[2] = ((1.49920 - 0.99748) + (-0.09297-0.18382)*zeta + (-0.28338+1.58270)*zeta2 + (1.85710-8.17120)*zeta3) / dampedFrequency
		tr.n = 3

	case TypeEI3:
		zeta2 := zeta * zeta
		zeta3 := zeta2 * zeta
		tr.coefficients[0] = (0.11275) + 0.76632*zeta + (3.29160)*zeta2 + (-1.44380)*zeta3
		tr.coefficients[1] = (0.11275 + 0.23698) + (0.76632+0.61164)*zeta + (3.29160-2.57850)*zeta2 + (-1.44380+4.85220)*zeta3
		tr.coefficients[2] = (0.11275 + 0.23698 + 0.30008) + (0.76632+0.61164-0.19062)*zeta + (3.29160-2.57850-2.14560)*zeta2 + (-1.44380+4.85220+0.13744)*zeta3
		tr.coefficients[3] = (0.11275 + 0.23698 + 0.30008 + 0.23775) + (0.76632+0.61164-0.19062-0.73297)*zeta + (3.29160-2.57850-2.14560+0.46885)*zeta2 + (-1.44380+4.85220+0.13744-2.08650)*zeta3

		tr.durations[0] = ((0.49974) + (0.23834)*zeta + (0.44559)*zeta2 + (12.4720)*zeta3) / dampedFrequency
		tr.durations[1] = ((0.99849 - 0.49974) + (0.29808-0.23834)*zeta + (-2.36460-0.44559)*zeta2 + (23.3990-12.4720)*zeta3) / dampedFrequency
		tr.durations[2] = ((1.49870 - 0.99849) + (0.10306-0.29808)*zeta + (-2.01390+2.36460)*zeta2 + (17.0320-23.3990)*zeta3) / dampedFrequency
		tr.durations[3] = ((1.99960 - 1.49870) + (-0.28231-0.10306)*zeta + (0.61536+2.01390)*zeta2 + (5.40450-17.0320)*zeta3) / dampedFrequency
		tr.n = 4
	}
	return tr
}
