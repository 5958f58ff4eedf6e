// G-code command parsing for the shaper configuration surface.
//
// This is the thin protocol front end: it only knows the parameter
// letters of M593 and hands validated values to the shaper engine.
// Errors come back as user-facing text, never as fatal failures.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"strconv"
	"strings"

	"github.com/Caribou3d/RepRapFirmware/pkg/errors"
)

// Command is one parsed G-code command with its parameters.
type Command struct {
	// Code is the command word, e.g. "M593".
	Code string

	params map[byte]string
}

// Parse splits a G-code line into the command word and its lettered
// parameters. Double-quoted values keep their spaces; ';' starts a
// comment. Parameter letters are case-insensitive.
func Parse(line string) (*Command, error) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	fields, err := splitFields(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrGCodeParse, "empty command")
	}

	cmd := &Command{
		Code:   strings.ToUpper(fields[0]),
		params: make(map[byte]string, len(fields)-1),
	}
	for _, f := range fields[1:] {
		letter := f[0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		if letter < 'A' || letter > 'Z' {
			return nil, errors.Newf(errors.ErrGCodeParse, "malformed parameter '%s'", f)
		}
		cmd.params[letter] = strings.Trim(f[1:], "\"")
	}
	return cmd, nil
}

// splitFields splits on spaces while keeping quoted strings intact.
func splitFields(line string) ([]string, error) {
	var fields []string
	var current strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case (r == ' ' || r == '\t') && !inQuotes:
			if current.Len() > 0 {
				fields = append(fields, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, errors.New(errors.ErrGCodeParse, "unterminated quoted string")
	}
	if current.Len() > 0 {
		fields = append(fields, current.String())
	}
	return fields, nil
}

// Seen reports whether the parameter letter is present.
func (c *Command) Seen(letter byte) bool {
	_, ok := c.params[letter]
	return ok
}

// StringParam returns the raw value of a parameter.
func (c *Command) StringParam(letter byte) (string, bool) {
	v, ok := c.params[letter]
	return v, ok
}

// FloatParam parses a parameter as a float.
func (c *Command) FloatParam(letter byte) (float64, error) {
	v, ok := c.params[letter]
	if !ok {
		return 0, errors.GCodeMissingParameterError(c.Code, string(letter))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.GCodeInvalidParameterError(c.Code, string(letter), v, "not a number")
	}
	return f, nil
}

// FloatArrayParam parses a colon-separated float array parameter.
func (c *Command) FloatArrayParam(letter byte) ([]float64, error) {
	v, ok := c.params[letter]
	if !ok {
		return nil, errors.GCodeMissingParameterError(c.Code, string(letter))
	}
	parts := strings.Split(v, ":")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, errors.GCodeInvalidParameterError(c.Code, string(letter), v, "not a number list")
		}
		out = append(out, f)
	}
	return out, nil
}
