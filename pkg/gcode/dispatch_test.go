// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Caribou3d/RepRapFirmware/pkg/errors"
	"github.com/Caribou3d/RepRapFirmware/pkg/shaper"
)

func newDispatcher(t *testing.T) (*Dispatcher, *shaper.AxisShaper) {
	t.Helper()
	s := shaper.New(nil)
	return NewDispatcher(s, nil), s
}

func TestM593ConfiguresShaper(t *testing.T) {
	d, s := newDispatcher(t)
	reply, err := d.Execute(`M593 P"zvd" F50 S0.2`)
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, shaper.TypeZVD, s.Type())
	assert.Equal(t, 50.0, s.Frequency())
	assert.Equal(t, 0.2, s.DampingRatio())
}

func TestM593ReportsStatus(t *testing.T) {
	d, _ := newDispatcher(t)
	_, err := d.Execute(`M593 P"ei2" F45`)
	require.NoError(t, err)

	reply, err := d.Execute("M593")
	require.NoError(t, err)
	assert.Contains(t, reply, "ei2")
	assert.Contains(t, reply, "45.0Hz")
}

func TestM593CustomShaper(t *testing.T) {
	d, s := newDispatcher(t)
	_, err := d.Execute(`M593 P"custom" F40 H0.4:0.8 T0.01:0.012`)
	require.NoError(t, err)
	assert.Equal(t, shaper.TypeCustom, s.Type())
	assert.Equal(t, 2, s.NumExtraImpulses())
	assert.Equal(t, []float64{0.01, 0.012}, s.Durations())
}

func TestM593RejectsBadFrequency(t *testing.T) {
	d, s := newDispatcher(t)
	_, err := d.Execute(`M593 P"zvd" F40`)
	require.NoError(t, err)

	_, err = d.Execute("M593 F2000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrShaperRange))
	assert.Equal(t, 40.0, s.Frequency())
}

func TestM593MinimumAcceleration(t *testing.T) {
	d, s := newDispatcher(t)
	_, err := d.Execute(`M593 P"daa" F40 L500`)
	require.NoError(t, err)
	assert.Equal(t, shaper.TypeSingleImpulse, s.Type())
	assert.Equal(t, 500.0, s.MinimumAcceleration())
}

func TestUnknownCommand(t *testing.T) {
	d, _ := newDispatcher(t)
	_, err := d.Execute("G1 X10 Y20")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeUnknownCmd))
}

func TestDispatchParseErrorPropagates(t *testing.T) {
	d, _ := newDispatcher(t)
	_, err := d.Execute("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeParse))

	_, err = d.Execute("M593 Fnope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeInvalidParam))
}
