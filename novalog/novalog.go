// Package novalog is a narrow internal logging seam. The engine stores a
// Logger (engine.WithLogger); the VM, the worker pool and the CLI do not
// log through it. The dependency pack carries no
// structured-logging library (the teacher itself reaches for the standard
// "log" package throughout pkg/fpm and runtime), so this wraps *log.Logger
// rather than introducing an unwired third-party dependency — see
// DESIGN.md.
package novalog

import (
	"io"
	"log"
	"os"
)

// Level orders diagnostic verbosity; Debug entries are dropped unless the
// Logger was built with Debug enabled.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

// Logger wraps *log.Logger with a level floor, mirroring the teacher's
// preference for a single process-wide *log.Logger over a logging
// framework.
type Logger struct {
	out   *log.Logger
	floor Level
}

// New builds a Logger writing to w, dropping entries below floor.
func New(w io.Writer, floor Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), floor: floor}
}

// Default is a Logger writing to stderr at LevelInfo, used when the
// embedding host installs no logger of its own.
func Default() *Logger { return New(os.Stderr, LevelInfo) }

func (l *Logger) log(lvl Level, format string, args ...interface{}) {
	if l == nil || lvl < l.floor {
		return
	}
	l.out.Printf("["+lvl.String()+"] "+format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
