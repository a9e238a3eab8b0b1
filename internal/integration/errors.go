package integration

import (
	"errors"
	"fmt"
)

// ErrMissingDumpFolder is returned when a flavor needs a seed checkpoint but
// one of its groups does not say where to put it.
var ErrMissingDumpFolder = errors.New("can't use seed checkpoint if folder is not specified")

// PreconditionError reports a flavor that cannot be run as defined.
// No process is launched for the flavor when it is returned.
type PreconditionError struct {
	Flavor string
	Group  int
	Err    error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("flavor %q group %d: %v", e.Flavor, e.Group, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// TestFailedError reports a training invocation that did not succeed.
type TestFailedError struct {
	Flavor   string
	Command  string
	ExitCode int
	Output   []byte
	// Err is set when the process could not be started or was interrupted.
	Err error
}

func (e *TestFailedError) Error() string {
	msg := fmt.Sprintf("Integration test failed, flavor : %s, command : %s", e.Flavor, e.Command)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: exit status %d", msg, e.ExitCode)
}

func (e *TestFailedError) Unwrap() error {
	return e.Err
}
