package podman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"podbridge/pkg/runtime"
)

// command builds the exec.Cmd for a compiled argv, applying the context's
// environment overrides to the child process only.
func (d *Driver) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := d.execCommand(ctx, d.Binary(), args...)
	if d.rc != nil && len(d.rc.Env) > 0 {
		// A nil Env inherits everything; once set to a non-nil slice,
		// only the listed variables reach the child, so start from the
		// caller's environment and overlay the overrides.
		cmd.Env = os.Environ()
		for _, ev := range d.rc.Env {
			cmd.Env = append(cmd.Env, ev.Key+"="+ev.Value)
		}
	}
	return cmd
}

// ExecuteStatus runs a compiled invocation to completion with the caller's
// stdio inherited and returns the external tool's exit status. The only
// error it can return is a spawn failure.
func (d *Driver) ExecuteStatus(ctx context.Context, args []string) (int, error) {
	cmd := d.command(ctx, args)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	slog.Debug("executing runtime command", "command", runtime.CommandString(d.Binary(), args))

	return exitStatus(cmd.Run())
}

// Execute runs a compiled invocation with stdout and stderr captured and
// returns the diagnostic rendering alongside the captured output. Non-zero
// exit statuses are data, not errors: only spawn failures yield a non-nil
// error.
func (d *Driver) Execute(ctx context.Context, args []string) (runtime.ExecutedCommand, error) {
	cmd := d.command(ctx, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	rendered := runtime.CommandString(d.Binary(), args)
	slog.Debug("executing runtime command", "command", rendered)

	code, err := exitStatus(cmd.Run())
	return runtime.ExecutedCommand{
		Command: rendered,
		Output: runtime.Output{
			ExitCode: code,
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		},
	}, err
}

// exitStatus maps cmd.Run's error into an exit code, distinguishing a
// process that ran and exited non-zero from one that never started.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("%w: %v", ErrSpawn, err)
}
