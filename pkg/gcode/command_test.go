// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Caribou3d/RepRapFirmware/pkg/errors"
)

func TestParseCommand(t *testing.T) {
	cmd, err := Parse(`M593 F40 S0.1 P"zvd"`)
	require.NoError(t, err)
	assert.Equal(t, "M593", cmd.Code)

	assert.True(t, cmd.Seen('F'))
	f, err := cmd.FloatParam('F')
	require.NoError(t, err)
	assert.Equal(t, 40.0, f)

	s, err := cmd.FloatParam('S')
	require.NoError(t, err)
	assert.Equal(t, 0.1, s)

	p, ok := cmd.StringParam('P')
	require.True(t, ok)
	assert.Equal(t, "zvd", p)

	assert.False(t, cmd.Seen('X'))
}

func TestParseLowercase(t *testing.T) {
	cmd, err := Parse("m593 f40")
	require.NoError(t, err)
	assert.Equal(t, "M593", cmd.Code)
	assert.True(t, cmd.Seen('F'))
}

func TestParseComments(t *testing.T) {
	cmd, err := Parse("M593 F40 ; set shaping")
	require.NoError(t, err)
	assert.True(t, cmd.Seen('F'))
	assert.False(t, cmd.Seen('S'))

	_, err = Parse("; just a comment")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeParse))
}

func TestParseQuotedValueKeepsSpaces(t *testing.T) {
	cmd, err := Parse(`M593 P"single impulse"`)
	require.NoError(t, err)
	p, ok := cmd.StringParam('P')
	require.True(t, ok)
	assert.Equal(t, "single impulse", p)
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`M593 P"zvd`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeParse))
}

func TestParseMalformedParameter(t *testing.T) {
	_, err := Parse("M593 1X")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeParse))
}

func TestFloatParamErrors(t *testing.T) {
	cmd, err := Parse("M593 Fabc")
	require.NoError(t, err)

	_, err = cmd.FloatParam('F')
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeInvalidParam))

	_, err = cmd.FloatParam('S')
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeMissingParam))
}

func TestFloatArrayParam(t *testing.T) {
	cmd, err := Parse("M593 H0.4:0.8 T0.01:0.012")
	require.NoError(t, err)

	h, err := cmd.FloatArrayParam('H')
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.8}, h)

	tv, err := cmd.FloatArrayParam('T')
	require.NoError(t, err)
	assert.Equal(t, []float64{0.01, 0.012}, tv)

	cmd, err = Parse("M593 H0.4:x")
	require.NoError(t, err)
	_, err = cmd.FloatArrayParam('H')
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGCodeInvalidParam))
}
