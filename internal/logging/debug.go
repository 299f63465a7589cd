package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	debugMu  sync.Mutex
	debugOut io.Writer = os.Stderr
)

// DebugEnabled returns true if debug mode is enabled via CLOCKIN_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("CLOCKIN_DEBUG") != ""
}

// SetDebugOutput redirects debug output and returns the previous writer.
// The terminal UI points it away from the screen it draws on.
func SetDebugOutput(w io.Writer) io.Writer {
	debugMu.Lock()
	defer debugMu.Unlock()
	prev := debugOut
	debugOut = w
	return prev
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		debugMu.Lock()
		defer debugMu.Unlock()
		fmt.Fprintf(debugOut, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		debugMu.Lock()
		defer debugMu.Unlock()
		fmt.Fprintln(debugOut, args...)
	}
}

// Output returns a writer that follows SetDebugOutput, so loggers built on
// it are silenced together with debug output.
func Output() io.Writer {
	return followWriter{}
}

type followWriter struct{}

func (followWriter) Write(p []byte) (int, error) {
	debugMu.Lock()
	defer debugMu.Unlock()
	return debugOut.Write(p)
}
