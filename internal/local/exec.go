package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

// ExecComputer solves a state by running an external solver binary with the
// state as its last argument. The binary prints the move sequence separated
// by whitespace; a non-zero exit status is a solve failure, and output
// starting with "Error" means the state was rejected as unsolvable. A positive
// Timeout kills the binary when it runs longer.
type ExecComputer struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func NewExecComputer(command string, args ...string) *ExecComputer {
	return &ExecComputer{Command: command, Args: args}
}

// waitDelay bounds how long Compute waits for output pipes after the binary
// was killed, in case it left children holding them.
const waitDelay = time.Second

func (c *ExecComputer) Compute(state string) ([]string, error) {
	if c.Command == "" {
		return nil, errors.New("no solver command configured")
	}

	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.Args...), state)
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.Command, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.Command, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.Command, err)
	}

	out := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(out, "Error") {
		return nil, fmt.Errorf("%s: %w: %s", c.Command, solver.ErrUnsolvable, out)
	}
	return strings.Fields(out), nil
}
