package applog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugfIsSilentUnlessEnabled(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerWriters(&out, &errOut)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[DEBUG] shown 2")
}

func TestInfofWritesToOutStream(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerWriters(&out, &errOut)

	l.Infof("hello %s", "world")

	assert.True(t, strings.Contains(out.String(), "[INFO] hello world"))
	assert.Empty(t, errOut.String())
}

func TestWarnAndErrorWriteToErrStream(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerWriters(&out, &errOut)

	l.Warnf("uh oh")
	l.Errorf("boom")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[WARN] uh oh")
	assert.Contains(t, errOut.String(), "[ERROR] boom")
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	assert.False(t, Nop.DebugEnabled())
	Nop.SetDebug(true)
	assert.False(t, Nop.DebugEnabled())
	// none of these should panic
	Nop.Debugf("x")
	Nop.Infof("x")
	Nop.Warnf("x")
	Nop.Errorf("x")
}
