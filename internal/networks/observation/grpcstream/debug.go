package grpcstream

import (
	"io"
	"log"
	"time"
)

var diagLogger *log.Logger

// SetLogWriter configures the diagnostics logging stream. Pass nil to
// disable it.
func SetLogWriter(w io.Writer) {
	if w == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(w, "[grpcstream] ", log.LstdFlags|log.Lmicroseconds)
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
