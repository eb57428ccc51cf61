package splatrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerDebugToggle(t *testing.T) {
	l := NewDefaultLogger("test", false)
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())

	l.SetDebug(false)
	assert.False(t, l.DebugEnabled())
}

func TestDefaultLoggerPrefix(t *testing.T) {
	l := NewDefaultLogger("core", false)
	assert.Equal(t, "[core] INFO: hello 42", l.prefixf("INFO", "hello %d", 42))

	bare := NewDefaultLogger("", false)
	assert.Equal(t, "WARN: x", bare.prefixf("WARN", "x"))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())

	// All sinks discard without panicking.
	l.Debugf("a %d", 1)
	l.Infof("b")
	l.Warnf("c")
	l.Errorf("d")
}
