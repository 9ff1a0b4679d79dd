// Package migrate drives the external image-store migration tool that
// converts or removes images between the runtime's primary store and the
// secondary read-only store. It reuses the storage-path fields of the
// runtime context the podman driver is configured with.
package migrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"podbridge/pkg/runtime"
)

// Action is one operation from the closed set the migration tool accepts.
type Action string

const (
	// ActionMigrate converts an image into the read-only store format.
	ActionMigrate Action = "migrate"

	// ActionRemoveImage deletes an image from the read-only store.
	ActionRemoveImage Action = "rmi"
)

var (
	// ErrMissingPaths is returned when the runtime context lacks the
	// graph-root or read-only store path. The migration tool cannot
	// operate without both, so construction fails before any invocation
	// is compiled.
	ErrMissingPaths = errors.New("migration requires graph-root and read-only store paths")

	// ErrToolFailed is the sentinel wrapped by ToolError for errors.Is
	// detection.
	ErrToolFailed = errors.New("migration tool failed")
)

// ToolError is returned when the migration tool exits non-zero. It carries
// the trimmed standard-error text for diagnostics.
type ToolError struct {
	Action   Action
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("migration tool %s failed (exit %d): %s", e.Action, e.ExitCode, e.Stderr)
}

// Unwrap returns ErrToolFailed so callers can use errors.Is.
func (e *ToolError) Unwrap() error { return ErrToolFailed }

// ExecCommandFunc is the function signature for creating exec.Cmd. It allows
// injection of stub implementations for testing.
type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Bridge compiles and executes migration-tool invocations. Both storage
// paths are hard preconditions of the tool's grammar, checked once at
// construction.
type Bridge struct {
	tool        string
	rc          *runtime.RuntimeContext
	execCommand ExecCommandFunc
}

// New returns a bridge for the migration tool at the given path. It fails
// with ErrMissingPaths when the context does not carry both the graph-root
// and the read-only store path.
func New(tool string, rc *runtime.RuntimeContext) (*Bridge, error) {
	if rc == nil || rc.Graphroot == "" || rc.ROStore == "" {
		return nil, ErrMissingPaths
	}
	return &Bridge{tool: tool, rc: rc, execCommand: exec.CommandContext}, nil
}

// Tool returns the migration-tool executable path.
func (b *Bridge) Tool() string { return b.tool }

// Args compiles the tool's argv. Argument order is fixed by the tool's own
// grammar. The action is not validated here; Migrate and RemoveImage are the
// enforcement point for the closed action set.
func (b *Bridge) Args(action Action, image string) []string {
	return []string{
		"--podmanRoot", b.rc.Graphroot,
		"--roStoragePath", b.rc.ROStore,
		"--" + string(action),
		"--image", image,
	}
}

// Migrate converts an image into the read-only store format.
func (b *Bridge) Migrate(ctx context.Context, image string) error {
	return b.run(ctx, ActionMigrate, image)
}

// RemoveImage deletes an image from the read-only store.
func (b *Bridge) RemoveImage(ctx context.Context, image string) error {
	return b.run(ctx, ActionRemoveImage, image)
}

func (b *Bridge) run(ctx context.Context, action Action, image string) error {
	args := b.Args(action, image)
	cmd := b.execCommand(ctx, b.tool, args...)

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	slog.Info("running migration tool", "action", action, "image", image,
		"command", runtime.CommandString(b.tool, args))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ToolError{
				Action:   action,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return fmt.Errorf("failed to spawn migration tool %s: %w", b.tool, err)
	}
	return nil
}
