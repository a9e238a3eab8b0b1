package exec

import (
	"context"
	"fmt"
	"io"
)

// DryRunner prints commands instead of running them. Every command succeeds.
type DryRunner struct {
	Out io.Writer
}

// Run writes the command line to Out and reports success.
func (d *DryRunner) Run(_ context.Context, c Command) (Result, error) {
	if d.Out != nil {
		fmt.Fprintf(d.Out, "[dry-run] %s\n", c)
	}
	return Result{}, nil
}

var _ CommandRunner = (*DryRunner)(nil)
