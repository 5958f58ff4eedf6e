// Step timer constants and conversions between seconds and step clocks.
//
// All motion timing in this host is expressed in step clocks, the tick
// unit of the hardware step timer. Planning code works in float64 clock
// counts; the step generator truncates to integer ticks downstream.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package steptimer

// StepClockRate is the step timer tick rate in Hz (Duet 3 hardware).
const StepClockRate = 750000.0

// StepClockRateSquared is used when scaling quadratic motion terms.
const StepClockRateSquared = StepClockRate * StepClockRate

// MinShapingFrequency is the lowest representable input shaping
// frequency: half the shaping period must fit in a 16-bit clock count.
const MinShapingFrequency = StepClockRate / (2 * 65535)

// SecondsToClocks converts a duration in seconds to step clocks.
func SecondsToClocks(seconds float64) float64 {
	return seconds * StepClockRate
}

// ClocksToSeconds converts a step clock count to seconds.
func ClocksToSeconds(clocks float64) float64 {
	return clocks / StepClockRate
}

// ClocksToMilliseconds converts a step clock count to milliseconds,
// mainly for human-readable diagnostics.
func ClocksToMilliseconds(clocks float64) float64 {
	return clocks * 1000.0 / StepClockRate
}
