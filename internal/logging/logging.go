// Package logging provides the three diagnostic streams shared by every
// component of the radar gateway: ops (actionable warnings and errors),
// diag (state-machine transitions and day-to-day context), and trace
// (high-frequency per-report/per-spoke volume logging, off by default).
//
// The out-of-scope host process may redirect any stream via SetWriters,
// e.g. to fan them into its own structured logger.
package logging

import (
	"io"
	"log"
	"os"
)

var (
	opsLogger   = log.New(io.Discard, "", 0)
	diagLogger  = log.New(io.Discard, "", 0)
	traceLogger = log.New(io.Discard, "", 0)
)

func init() {
	SetWriters(os.Stderr, os.Stderr, nil)
}

// SetWriters configures the three logging streams. Pass nil for any
// writer to silence that stream.
func SetWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[radar/ops] ", ops)
	diagLogger = newLogger("[radar/diag] ", diag)
	traceLogger = newLogger("[radar/trace] ", trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs an actionable warning or error: bad record length, unknown
// report id, bind failure, interface loss.
func Opsf(format string, args ...interface{}) { opsLogger.Printf(format, args...) }

// Diagf logs a state-machine transition or other day-to-day context.
func Diagf(format string, args ...interface{}) { diagLogger.Printf(format, args...) }

// Tracef logs per-report or per-spoke volume; silent unless explicitly
// enabled via SetWriters.
func Tracef(format string, args ...interface{}) { traceLogger.Printf(format, args...) }
