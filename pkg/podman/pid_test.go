package podman

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writePidfile lays out <runroot>/overlay-containers/<id>/userdata/pidfile
// the way the overlay storage driver does and returns the runroot.
func writePidfile(t *testing.T, containerID, content string) string {
	t.Helper()
	runroot := t.TempDir()
	dir := filepath.Join(runroot, "overlay-containers", containerID, "userdata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pidfile"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return runroot
}

func TestContainerPIDFromPidfile(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the pid with an explicit runroot", func(t *testing.T) {
		runroot := writePidfile(t, "abc123", "4242\n")

		pid, err := ContainerPIDFromPidfile(ctx, "abc123", runroot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pid != 4242 {
			t.Errorf("pid = %d, want 4242", pid)
		}
	})

	t.Run("missing pidfile is an I/O failure", func(t *testing.T) {
		_, err := ContainerPIDFromPidfile(ctx, "no-such-container", t.TempDir())
		if !errors.Is(err, ErrPidfile) {
			t.Fatalf("expected ErrPidfile, got %v", err)
		}
	})

	t.Run("non-numeric content is a parse failure", func(t *testing.T) {
		runroot := writePidfile(t, "abc123", "not-a-pid\n")

		_, err := ContainerPIDFromPidfile(ctx, "abc123", runroot)
		if !errors.Is(err, ErrPIDParse) {
			t.Fatalf("expected ErrPIDParse, got %v", err)
		}
	})

	t.Run("negative pid is rejected", func(t *testing.T) {
		runroot := writePidfile(t, "abc123", "-1\n")

		_, err := ContainerPIDFromPidfile(ctx, "abc123", runroot)
		if !errors.Is(err, ErrPIDParse) {
			t.Fatalf("expected ErrPIDParse, got %v", err)
		}
	})

	t.Run("empty runroot resolves it through daemon info", func(t *testing.T) {
		runroot := writePidfile(t, "abc123", "31337")

		// Stub podman on PATH answering the info query with the
		// runroot prepared above.
		binDir := t.TempDir()
		script := "#!/bin/sh\necho " + runroot + "\n"
		if err := os.WriteFile(filepath.Join(binDir, "podman"), []byte(script), 0o755); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PATH", binDir)

		pid, err := ContainerPIDFromPidfile(ctx, "abc123", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pid != 31337 {
			t.Errorf("pid = %d, want 31337", pid)
		}
	})
}

func TestContainerPID(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a running container's pid", func(t *testing.T) {
		d := stubDriver(t, "echo 12345\n", nil)

		pid, err := d.ContainerPID(ctx, "edf_test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pid != 12345 {
			t.Errorf("pid = %d, want 12345", pid)
		}
	})

	t.Run("stopped container yields pid 0 without error", func(t *testing.T) {
		d := stubDriver(t, "echo 0\n", nil)

		pid, err := d.ContainerPID(ctx, "edf_test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pid != 0 {
			t.Errorf("pid = %d, want 0", pid)
		}
	})

	t.Run("non-zero exit carries the trimmed stderr", func(t *testing.T) {
		d := stubDriver(t, "echo 'no such container' >&2\nexit 125\n", nil)

		_, err := d.ContainerPID(ctx, "gone")
		if !errors.Is(err, ErrQuery) {
			t.Fatalf("expected ErrQuery, got %v", err)
		}
		var qe *QueryError
		if !errors.As(err, &qe) {
			t.Fatalf("expected *QueryError, got %T", err)
		}
		if qe.Stderr != "no such container" {
			t.Errorf("stderr = %q, want %q", qe.Stderr, "no such container")
		}
	})

	t.Run("malformed output is a parse failure", func(t *testing.T) {
		d := stubDriver(t, "echo garbage\n", nil)

		_, err := d.ContainerPID(ctx, "edf_test")
		if !errors.Is(err, ErrPIDParse) {
			t.Fatalf("expected ErrPIDParse, got %v", err)
		}
	})
}

// Both resolution strategies must agree on a running, overlay-backed
// container. The stub runtime and the pidfile layout are prepared to
// describe the same container.
func TestPIDStrategiesAgree(t *testing.T) {
	ctx := context.Background()
	runroot := writePidfile(t, "edf_test", "7777\n")

	d := stubDriver(t, "echo 7777\n", nil)

	fromInspect, err := d.ContainerPID(ctx, "edf_test")
	if err != nil {
		t.Fatalf("inspect strategy failed: %v", err)
	}

	fromPidfile, err := ContainerPIDFromPidfile(ctx, "edf_test", runroot)
	if err != nil {
		t.Fatalf("pidfile strategy failed: %v", err)
	}

	if fromInspect != fromPidfile {
		t.Errorf("strategies disagree: inspect=%d pidfile=%d", fromInspect, fromPidfile)
	}
}
