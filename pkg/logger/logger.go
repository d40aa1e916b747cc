// Package logger provides a small leveled logger that is constructed once
// and passed into components as a dependency, rather than reached for as a
// process-wide singleton. Tests can use Nop() for a sink that discards
// everything.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger is the interface components depend on.
type Logger interface {
	Tracef(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	IsDebugEnabled() bool
}

// stdLogger backs each level with a *log.Logger over a shared writer,
// gating below-threshold levels to io.Discard at construction time.
type stdLogger struct {
	level  Level
	trace  *log.Logger
	debug  *log.Logger
	info   *log.Logger
	warn   *log.Logger
	error_ *log.Logger
}

// New builds a Logger at the given level, writing INFO/DEBUG/TRACE/WARN to
// out and ERROR to errOut.
func New(level Level, out, errOut io.Writer) Logger {
	l := &stdLogger{level: level}
	flags := log.Ldate | log.Ltime
	l.trace = log.New(sinkFor(level, TRACE, out), "[TRACE] ", flags)
	l.debug = log.New(sinkFor(level, DEBUG, out), "[DEBUG] ", flags)
	l.info = log.New(sinkFor(level, INFO, out), "[INFO] ", flags)
	l.warn = log.New(sinkFor(level, WARN, out), "[WARN] ", flags)
	l.error_ = log.New(sinkFor(level, ERROR, errOut), "[ERROR] ", flags)
	return l
}

func sinkFor(current, this Level, w io.Writer) io.Writer {
	if current > this {
		return io.Discard
	}
	return w
}

// NewFromEnv builds a Logger from the LOG_LEVEL environment variable
// (spec.md §6), defaulting to info, writing to stdout/stderr.
func NewFromEnv() Logger {
	return New(ParseLevel(os.Getenv("LOG_LEVEL")), os.Stdout, os.Stderr)
}

func (l *stdLogger) Tracef(format string, v ...interface{}) { l.trace.Printf(format, v...) }
func (l *stdLogger) Debugf(format string, v ...interface{}) { l.debug.Printf(format, v...) }
func (l *stdLogger) Infof(format string, v ...interface{})  { l.info.Printf(format, v...) }
func (l *stdLogger) Warnf(format string, v ...interface{})  { l.warn.Printf(format, v...) }
func (l *stdLogger) Errorf(format string, v ...interface{}) { l.error_.Printf(format, v...) }
func (l *stdLogger) IsDebugEnabled() bool                   { return l.level <= DEBUG }

// nopLogger discards everything; used by tests that don't care about logs.
type nopLogger struct{}

// Nop returns a Logger that discards all output.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Tracef(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) IsDebugEnabled() bool          { return false }
