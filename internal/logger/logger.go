// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Design goals:
//   - Simple API (Errorf, Warnf, Infof, Debugf, Tracef)
//   - Centralized verbosity control
//   - Structured fields for request-scoped context
//   - Delegates formatting and output to logrus
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("processing chain")
//	logger.Debugf("spot=%f strikes=%d", spot, n)
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Fields is re-exported so callers do not need to import logrus directly.
type Fields = log.Fields

// init configures the process-wide logrus logger.
//
// Logs go to stderr so they stay separated from normal program output,
// which matters for CLI use and pipelines.
func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup
// (e.g. after parsing CLI flags).
//
//	0 → errors only
//	1 → info
//	2 → debug
//	3+ → trace
func SetVerbosity(v int) {
	switch {
	case v <= 0:
		log.SetLevel(log.ErrorLevel)
	case v == 1:
		log.SetLevel(log.InfoLevel)
	case v == 2:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.TraceLevel)
	}
}

// WithFields returns an entry carrying structured context, for
// request-scoped logging (request id, ticker, phase timings).
func WithFields(f Fields) *log.Entry {
	return log.WithFields(f)
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	log.Errorf(format, args...)
}

// Warnf logs a warning, typically a recovered failure that degraded
// the result instead of aborting the request.
func Warnf(format string, args ...any) {
	log.Warnf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	log.Infof(format, args...)
}

// Debugf logs debugging information.
// Use this for diagnostic output useful during development.
func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	log.Tracef(format, args...)
}
