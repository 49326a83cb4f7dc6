// Package logger provides the zerolog implementation of the core Logger.
package logger

import corelogger "github.com/kilianp07/ctr/core/logger"

type Logger = corelogger.Logger

// NopLogger discards everything. Tests and library defaults use it.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger tagged with component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
