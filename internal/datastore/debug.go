package datastore

import (
	"io"
	"log"
)

var diagLogger *log.Logger

// SetLogWriter configures the diagnostics logging stream for the
// datastore package. Pass nil to disable it.
func SetLogWriter(w io.Writer) {
	if w == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(w, "[datastore] ", log.LstdFlags|log.Lmicroseconds)
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}
