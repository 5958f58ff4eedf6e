// Command dispatch for the shaper front end.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"github.com/Caribou3d/RepRapFirmware/pkg/errors"
	"github.com/Caribou3d/RepRapFirmware/pkg/log"
	"github.com/Caribou3d/RepRapFirmware/pkg/shaper"
)

// Dispatcher routes configuration commands to the shaper engine.
type Dispatcher struct {
	shaper *shaper.AxisShaper
	logger *log.Logger
}

// NewDispatcher creates a dispatcher for the given engine. logger may
// be nil.
func NewDispatcher(s *shaper.AxisShaper, logger *log.Logger) *Dispatcher {
	return &Dispatcher{shaper: s, logger: logger}
}

// Execute parses and runs one command line, returning the textual
// reply for the user. Unknown commands and bad parameters come back as
// errors with the previous configuration still in force.
func (d *Dispatcher) Execute(line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return "", err
	}

	switch cmd.Code {
	case "M593":
		return d.doM593(cmd)
	default:
		return "", errors.GCodeUnknownCommandError(cmd.Code)
	}
}

// doM593 maps M593 parameters onto a shaper configuration request:
// F frequency, S damping ratio, L minimum acceleration, P type name,
// H coefficient list, T duration list (custom type only).
func (d *Dispatcher) doM593(cmd *Command) (string, error) {
	var p shaper.Params

	if cmd.Seen('F') {
		f, err := cmd.FloatParam('F')
		if err != nil {
			return "", err
		}
		p.Frequency = &f
	}
	if cmd.Seen('S') {
		s, err := cmd.FloatParam('S')
		if err != nil {
			return "", err
		}
		p.DampingRatio = &s
	}
	if cmd.Seen('L') {
		l, err := cmd.FloatParam('L')
		if err != nil {
			return "", err
		}
		p.MinimumAcceleration = &l
	}
	if cmd.Seen('P') {
		name, _ := cmd.StringParam('P')
		p.TypeName = &name
	}
	if cmd.Seen('H') {
		coeffs, err := cmd.FloatArrayParam('H')
		if err != nil {
			return "", err
		}
		p.Coefficients = coeffs
	}
	if cmd.Seen('T') {
		durations, err := cmd.FloatArrayParam('T')
		if err != nil {
			return "", err
		}
		p.Durations = durations
	}

	reply, err := d.shaper.Configure(p)
	if err != nil {
		d.logger.Debugf("M593 rejected: %v", err)
		return "", err
	}
	return reply, nil
}
