// Package logging builds the process logger.
package logging

import (
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logger writing to w. Request and state traces are logged at
// V(1), so they only appear when debug is set.
func New(w io.Writer, debug bool) logr.Logger {
	if debug {
		stdr.SetVerbosity(1)
	} else {
		stdr.SetVerbosity(0)
	}
	return stdr.NewWithOptions(log.New(w, "taskdash: ", log.LstdFlags), stdr.Options{LogCaller: stdr.None})
}
