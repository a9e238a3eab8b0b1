// Package exec provides an interface for running external commands.
package exec

import (
	"context"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command describes one process invocation. It is never run through a shell.
type Command struct {
	// Name is the program to execute.
	Name string
	// Args are passed to the program verbatim.
	Args []string
	// Env holds variables added on top of the inherited environment.
	Env map[string]string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Result is the outcome of a finished process.
type Result struct {
	// Output is the merged stdout/stderr of the process.
	Output []byte
	// ExitCode is the process exit status, -1 if it never started.
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes cmd and waits for it to finish.
	// A non-zero exit is reported in Result, not as an error. The error is
	// reserved for processes that could not be started or were interrupted.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// String renders the command the way a user would type it in a shell,
// env assignments first, sorted by name.
func (c Command) String() string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+shellquote.Join(c.Env[k]))
	}
	parts = append(parts, shellquote.Join(append([]string{c.Name}, c.Args...)...))
	return strings.Join(parts, " ")
}
