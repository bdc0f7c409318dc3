// Package log provides named, leveled loggers on top of the standard library
// logger. Every component asks for its own logger with ForService and every
// line it emits is prefixed with "[name>]", which keeps the bot's output easy
// to grep when several handlers run concurrently.
//
// Debug output is off by default. It can be enabled for the whole process
// (SetGlobalDebug, the --debug flag) or only for selected services
// (EnableDebugFor, the debug_services config key).
//
// The package name collides with the standard library "log". Alias one of
// them when both are needed:
//
//	import (
//		stdlog "log"
//		"github.com/rubiojr/kashif/pkg/log"
//	)
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Level names.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger with level helpers.
type Logger struct {
	name string
	std  *log.Logger
}

// writerHolder keeps atomic.Value storing a single concrete type.
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug  atomic.Bool
	serviceDebug sync.Map // map[string]*atomic.Bool
	loggers      sync.Map // map[string]*Logger
	outputWriter atomic.Value
)

func init() {
	outputWriter.Store(writerHolder{w: os.Stderr})
}

// ForService returns the memoized logger for name.
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	current := outputWriter.Load().(writerHolder).w
	logger := &Logger{name: name, std: log.New(current, "", log.LstdFlags|log.Lmicroseconds)}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

// SetGlobalDebug enables or disables debug logging for every service.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// GlobalDebug reports whether global debug logging is enabled.
func GlobalDebug() bool {
	return globalDebug.Load()
}

// EnableDebugFor enables debug logging for a single service.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor disables debug logging for a single service.
func DisableDebugFor(name string) {
	if name == "" {
		return
	}
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// Configure applies the debug settings found in the configuration file.
func Configure(debug bool, services []string) {
	if debug {
		SetGlobalDebug(true)
	}
	for _, s := range services {
		EnableDebugFor(s)
	}
}

// DebugEnabledFor reports whether debug output is enabled for name, either
// globally or specifically.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput routes all existing and future loggers to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputWriter.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

// Name returns the service name of the logger.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) output(level, msg string) {
	l.std.Println(level + " [" + l.name + ">] " + msg)
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...any) {
	l.output(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...any) {
	l.output(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs an error.
func (l *Logger) Errorf(format string, args ...any) {
	l.output(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message when debug is enabled for this service.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.output(LevelDebug, fmt.Sprintf(format, args...))
}

// Fatalf logs an error and exits the process.
func (l *Logger) Fatalf(format string, args ...any) {
	l.output(LevelError, fmt.Sprintf(format, args...))
	os.Exit(1)
}
