// Unified error handling for the motion host.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import "fmt"

// ErrorCode represents the category of error.
type ErrorCode string

const (
	// Shaper configuration errors
	ErrShaperType     ErrorCode = "SHAPER_TYPE"
	ErrShaperRange    ErrorCode = "SHAPER_RANGE"
	ErrShaperImpulses ErrorCode = "SHAPER_IMPULSES"

	// G-code parsing errors
	ErrGCodeParse        ErrorCode = "GCODE_PARSE"
	ErrGCodeUnknownCmd   ErrorCode = "GCODE_UNKNOWN_CMD"
	ErrGCodeMissingParam ErrorCode = "GCODE_MISSING_PARAM"
	ErrGCodeInvalidParam ErrorCode = "GCODE_INVALID_PARAM"

	// Motion errors
	ErrMotion ErrorCode = "MOTION"
)

// MotionError is the unified error type for the host system.
type MotionError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Param is the command parameter or config field involved, if any
	Param string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface.
func (e *MotionError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Param, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *MotionError) Unwrap() error {
	return e.Err
}

// SetParam sets the parameter name and returns the error for chaining.
func (e *MotionError) SetParam(param string) *MotionError {
	e.Param = param
	return e
}

// New creates a new MotionError.
func New(code ErrorCode, message string) *MotionError {
	return &MotionError{Code: code, Message: message}
}

// Newf creates a new MotionError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *MotionError {
	return &MotionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *MotionError {
	return &MotionError{Code: code, Message: message, Err: err}
}

// ShaperTypeError creates an error for an unsupported shaper type name.
func ShaperTypeError(name string) *MotionError {
	return Newf(ErrShaperType, "unsupported input shaper type '%s'", name).SetParam("P")
}

// ShaperRangeError creates an error for an out-of-range numeric value.
func ShaperRangeError(param string, value, min, max float64) *MotionError {
	return Newf(ErrShaperRange, "value %.3f out of range [%.3f, %.3f]", value, min, max).SetParam(param)
}

// ShaperImpulseError creates an error for malformed custom impulse arrays.
func ShaperImpulseError(message string) *MotionError {
	return New(ErrShaperImpulses, message)
}

// GCodeUnknownCommandError creates an error for an unknown command.
func GCodeUnknownCommandError(command string) *MotionError {
	return Newf(ErrGCodeUnknownCmd, "unknown command: %s", command)
}

// GCodeMissingParameterError creates an error for a missing required parameter.
func GCodeMissingParameterError(command, param string) *MotionError {
	return Newf(ErrGCodeMissingParam, "command '%s' missing required parameter: %s", command, param).SetParam(param)
}

// GCodeInvalidParameterError creates an error for an invalid parameter value.
func GCodeInvalidParameterError(command, param, value, reason string) *MotionError {
	return Newf(ErrGCodeInvalidParam, "command '%s': invalid parameter '%s=%s' (%s)", command, param, value, reason).SetParam(param)
}

// Is checks whether err is a MotionError with the given code.
func Is(err error, code ErrorCode) bool {
	if me, ok := err.(*MotionError); ok {
		return me.Code == code
	}
	return false
}
