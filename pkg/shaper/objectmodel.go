// Object model entries for the shaper, alphabetical within the group
// like the firmware object model tables.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package shaper

// ObjectModel returns the diagnostics snapshot of the configuration
// and its derived constants.
func (s *AxisShaper) ObjectModel() map[string]any {
	om := map[string]any{
		"damping":         s.zeta,
		"frequency":       s.frequency,
		"minAcceleration": s.minimumAcceleration,
		"type":            s.shaperType.String(),
	}
	if s.numExtraImpulses != 0 {
		om["coefficients"] = s.Coefficients()
		om["durations"] = s.Durations()
		om["overlappedAverageAcceleration"] = s.overlappedAverageAcceleration
		om["overlappedCoefficients"] = s.OverlappedCoefficients()
		om["totalDuration"] = s.totalDuration
	}
	return om
}
