// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package steptimer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	assert.Equal(t, 750000.0, SecondsToClocks(1.0))
	assert.Equal(t, 1.0, ClocksToSeconds(750000.0))
	assert.Equal(t, 500.0, ClocksToMilliseconds(375000.0))
	assert.InDelta(t, 0.025, ClocksToSeconds(SecondsToClocks(0.025)), 1e-15)
}

func TestMinShapingFrequency(t *testing.T) {
	// half the shaping period at the minimum frequency must fit in a
	// 16-bit clock count
	halfPeriodClocks := SecondsToClocks(0.5 / MinShapingFrequency)
	assert.InDelta(t, 65535.0, halfPeriodClocks, 1e-6)
}
