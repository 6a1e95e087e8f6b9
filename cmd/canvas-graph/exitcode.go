package main

import (
	"errors"

	"github.com/Sternrassler/canvas-graph/pkg/client"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1 // configuration and any non-Canvas failure
	exitServer      = 2
	exitRequest     = 3
	exitDeserialize = 4
)

// mapErrorToExitCode maps an error to the exit code of its kind.
func mapErrorToExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, client.ErrServerError):
		return exitServer
	case errors.Is(err, client.ErrRequestFailed):
		return exitRequest
	case errors.Is(err, client.ErrDeserializeFailed):
		return exitDeserialize
	default:
		return exitFailure
	}
}
