// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("test")
	l.SetWriter(&buf)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, l.DebugEnabled())

	l.SetLevel(DEBUG)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "test:")
}

func TestFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New("test")
	l.SetWriter(&buf)

	l.InfoFields("plan", Fields{"b": 2, "a": 1})
	assert.Contains(t, buf.String(), "plan a=1 b=2")
}

func TestWithPrefixSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := New("parent")
	parent.SetWriter(&buf)
	parent.SetLevel(ERROR)

	child := parent.WithPrefix("child")
	child.Warnf("dropped")
	assert.Empty(t, buf.String())
	child.Errorf("kept")
	assert.Contains(t, buf.String(), "child: kept")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.False(t, l.DebugEnabled())
	l.Debugf("no-op")
	l.Infof("no-op")
	l.Warnf("no-op")
	l.Errorf("no-op")
	l.DebugFields("no-op", Fields{"k": "v"})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("Error"))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}
