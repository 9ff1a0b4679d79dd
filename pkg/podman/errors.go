package podman

import (
	"errors"
	"fmt"
)

var (
	// ErrSpawn is the sentinel wrapped by spawn failures: the runtime
	// executable is missing or not runnable. Not recoverable at this
	// layer.
	ErrSpawn = errors.New("failed to spawn runtime executable")

	// ErrQuery is the sentinel wrapped by QueryError for errors.Is
	// detection.
	ErrQuery = errors.New("runtime query failed")

	// ErrPIDParse is wrapped when either PID-resolution strategy reads
	// text that is not an unsigned integer.
	ErrPIDParse = errors.New("malformed PID")

	// ErrPidfile is wrapped when the per-container pidfile is missing or
	// unreadable.
	ErrPidfile = errors.New("pidfile unreadable")
)

// QueryError is returned when the external runtime exits non-zero on a query
// operation. It carries the trimmed standard-error text so the failure can be
// diagnosed without re-running the invocation.
type QueryError struct {
	Op       string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("podman %s failed (exit %d): %s", e.Op, e.ExitCode, e.Stderr)
}

// Unwrap returns ErrQuery so callers can use errors.Is for programmatic
// detection.
func (e *QueryError) Unwrap() error { return ErrQuery }
