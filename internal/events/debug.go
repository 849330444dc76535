package events

import (
	"io"
	"log"
)

var (
	opsLogger  *log.Logger
	diagLogger *log.Logger
)

// SetLogWriters configures the ops/diag logging streams for the events
// package. Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag io.Writer) {
	opsLogger = newLogger("[events] ", ops)
	diagLogger = newLogger("[events] ", diag)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}
