// Package applog is the simulation's ambient logging surface: a small
// interface with a mutex-guarded default implementation and a no-op
// implementation for embedding hosts that don't want simulation chatter.
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is implemented by anything the simulation core can report
// spread/ignition/condensation diagnostics to.
type Logger interface {
	DebugEnabled() bool
	SetDebug(bool)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultLogger writes level-prefixed lines to separate stdout/stderr
// streams, guarded by a mutex since the simulation core itself is
// single-threaded but an embedding host may log from other goroutines.
type DefaultLogger struct {
	mu      sync.Mutex
	debug   bool
	out     *log.Logger
	errOut  *log.Logger
}

// NewDefaultLogger returns a Logger writing to os.Stdout/os.Stderr.
func NewDefaultLogger() *DefaultLogger {
	return NewDefaultLoggerWriters(os.Stdout, os.Stderr)
}

// NewDefaultLoggerWriters returns a Logger writing to the given writers,
// for tests that want to capture output.
func NewDefaultLoggerWriters(out, errOut io.Writer) *DefaultLogger {
	return &DefaultLogger{
		out:    log.New(out, "", log.LstdFlags),
		errOut: log.New(errOut, "", log.LstdFlags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = on
}

func (l *DefaultLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debug {
		return
	}
	l.out.Output(2, "[DEBUG] "+fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Output(2, "[INFO] "+fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut.Output(2, "[WARN] "+fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut.Output(2, "[ERROR] "+fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) DebugEnabled() bool                        { return false }
func (nopLogger) SetDebug(bool)                             {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}

// Nop is a Logger that discards everything, the default for a
// SimulationWorld that hasn't been given one explicitly.
var Nop Logger = nopLogger{}
