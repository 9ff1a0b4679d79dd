package podman

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ContainerPID resolves the OS process id of a container through the
// runtime's structured inspect output. A non-zero runtime exit surfaces as a
// QueryError with the trimmed stderr; malformed stdout surfaces as an
// ErrPIDParse failure.
//
// The runtime reports PID 0 for a stopped container. That is a valid result,
// not an error; interpreting it is the caller's job.
func (d *Driver) ContainerPID(ctx context.Context, name string) (int, error) {
	out, err := d.Inspect(ctx, name, "{{.State.Pid}}")
	if err != nil {
		return 0, err
	}
	// The runtime prints a single line like "12345\n".
	return parsePID(strings.TrimSpace(string(out.Stdout)))
}

// ContainerPIDFromPidfile reads a running container's PID from the default
// pidfile the overlay storage driver keeps under the runtime's runroot. With
// an explicit runroot this touches nothing but one file, which makes it much
// faster than ContainerPID; with an empty runroot the effective runroot is
// first resolved through a daemon-info query (a separate, slower external
// call). That query runs against the default runtime context: a caller that
// has a specific context only to propagate the runroot can pass the runroot
// directly instead.
//
// This path works only while the container is running, was started without a
// custom pidfile, and the storage driver is overlay. Violations of those
// preconditions are not detected here; they surface as a generic read or
// parse failure.
func ContainerPIDFromPidfile(ctx context.Context, containerID, runroot string) (int, error) {
	if runroot == "" {
		out, err := New(nil).Info(ctx, "{{.Store.RunRoot}}")
		if err != nil {
			return 0, err
		}
		runroot = strings.TrimSpace(string(out.Stdout))
	}

	raw, err := os.ReadFile(pidfilePath(runroot, containerID))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPidfile, err)
	}
	return parsePID(strings.TrimSpace(string(raw)))
}

// pidfilePath is fixed by the overlay storage driver's on-disk layout.
func pidfilePath(runroot, containerID string) string {
	return filepath.Join(runroot, "overlay-containers", containerID, "userdata", "pidfile")
}

// parsePID parses the runtime's PID rendering. PIDs are unsigned; negative
// or non-numeric text is rejected rather than defaulted.
func parsePID(s string) (int, error) {
	pid, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPIDParse, s)
	}
	return int(pid), nil
}
