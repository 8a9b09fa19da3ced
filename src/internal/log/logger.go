package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	verbose     atomic.Bool
	disableLogs atomic.Bool
	logger      = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           charmlog.InfoLevel,
	})
}

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	verbose.Store(v)
	if v {
		logger.SetLevel(charmlog.DebugLevel)
	} else {
		logger.SetLevel(charmlog.InfoLevel)
	}
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verbose.Load()
}

// DisableLogs disables all logging.
func DisableLogs() {
	disableLogs.Store(true)
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	return disableLogs.Load()
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	if disableLogs.Load() {
		return
	}
	logger.Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	if disableLogs.Load() {
		return
	}
	logger.Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	if disableLogs.Load() {
		return
	}
	logger.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	if disableLogs.Load() {
		return
	}
	logger.Errorf(format, args...)
}

// Fatalf logs an error message and exits the program with code 1.
func Fatalf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
	os.Exit(1)
}
