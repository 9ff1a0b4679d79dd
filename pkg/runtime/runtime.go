// Package runtime defines the caller-facing contracts of the podbridge driver
// layer: the contexts that configure an external container-runtime invocation,
// the captured result types, and the ContainerDriver interface the outer
// container-execution tool programs against.
package runtime

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"podbridge/pkg/edf"
)

// EnvVar is a single environment override, kept in the order the caller
// supplied it. Overrides are applied to the spawned runtime process only,
// never to the caller's own environment.
type EnvVar struct {
	Key   string
	Value string
}

// RuntimeContext identifies and configures the external container runtime.
// Every field is optional: an empty value means "let the runtime use its own
// default", and the invocation compiler never synthesizes a value for an
// absent field. A nil *RuntimeContext is valid everywhere one is accepted and
// means the same for all fields at once.
//
// Context values are caller-owned; the compiler reads them and retains no
// reference.
type RuntimeContext struct {
	// PodmanPath is the runtime executable. Empty means "podman" resolved
	// from PATH.
	PodmanPath string

	// Module selects a named runtime configuration module.
	Module string

	// Graphroot is the runtime's persistent image-storage directory.
	Graphroot string

	// Runroot is the runtime's ephemeral per-invocation state directory.
	Runroot string

	// MountProgram is a custom mount-helper program injected as a storage
	// option on run invocations.
	MountProgram string

	// ROStore is a secondary read-only image store layered under the
	// runtime's primary store.
	ROStore string

	// Env holds ordered environment overrides for the spawned process.
	Env []EnvVar
}

// WithEnv appends an environment override and returns the context, so a chain
// of overrides can be set up at construction time:
//
//	rc := (&runtime.RuntimeContext{PodmanPath: "/usr/bin/podman"}).
//		WithEnv("STORE_MP_SQUASHFUSE_CMD", "/usr/bin/squashfuse_ll").
//		WithEnv("STORE_MP_SQUASHFUSE_FLAG", "-o uid=432,gid=123")
func (rc *RuntimeContext) WithEnv(key, value string) *RuntimeContext {
	rc.Env = append(rc.Env, EnvVar{Key: key, Value: value})
	return rc
}

// ContainerContext carries the per-invocation identity and behavior of a
// single container run.
type ContainerContext struct {
	// Name is the container name. It is required: it is emitted as --name
	// and is the handle later identification (stop, remove, PID
	// resolution) uses.
	Name string

	// Interactive attaches the caller's terminal (-it).
	Interactive bool

	// Detach runs the container in the background (--detach).
	Detach bool

	// PropagateEnv records the outer tool's intent to forward its
	// environment through the descriptor's env map. It is not itself a
	// runtime flag.
	PropagateEnv bool

	// Pidfile asks the runtime to write the container PID to this path.
	Pidfile string
}

// Output is the captured result of one external-tool invocation.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the invocation exited zero.
func (o Output) Success() bool { return o.ExitCode == 0 }

// ExecutedCommand pairs the human-readable rendering of an invocation with
// its captured output. It exists purely for diagnostics and is never
// persisted.
type ExecutedCommand struct {
	Command string
	Output  Output
}

// ContainerDriver is the contract for driving one container-runtime
// installation. It maps one-to-one onto the runtime operations the outer
// tool needs, so the tool can be tested against a mock driver.
//
// All methods are synchronous: each spawns exactly one external process and
// blocks until it completes. Implementations hold no shared mutable state,
// so concurrent callers are safe; correctness across processes is the
// external runtime's concern.
type ContainerDriver interface {
	// Run starts a container from the descriptor and blocks until it
	// exits, inheriting the caller's stdio. Returns the exit status.
	Run(ctx context.Context, desc *edf.Descriptor, cc *ContainerContext, command ...string) (int, error)

	// RunOutput is Run with captured stdout/stderr instead of inherited
	// stdio.
	RunOutput(ctx context.Context, desc *edf.Descriptor, cc *ContainerContext, command ...string) (Output, error)

	// Pull fetches an image into the runtime's primary store.
	Pull(ctx context.Context, image string) error

	// RemoveImage deletes an image from the primary store.
	RemoveImage(ctx context.Context, image string) error

	// RemoveContainer deletes a container by name.
	RemoveContainer(ctx context.Context, name string) error

	// Stop stops a running container by name.
	Stop(ctx context.Context, name string) error

	// ImageExists reports whether the image is present in any configured
	// store.
	ImageExists(ctx context.Context, image string) (bool, error)

	// Images lists the images visible to the runtime.
	Images(ctx context.Context) (Output, error)

	// Inspect queries a container or image, optionally through a Go
	// template format string.
	Inspect(ctx context.Context, target, format string) (Output, error)

	// Info queries the runtime's daemon information, optionally through a
	// Go template format string.
	Info(ctx context.Context, format string) (Output, error)

	// Version reports the runtime version, forwarding only the optional
	// module selector. Version queries do not touch runtime state.
	Version(ctx context.Context, module string) (Output, error)

	// ContainerPID resolves the OS process id of a container via the
	// runtime's inspect output. A stopped container yields PID 0.
	ContainerPID(ctx context.Context, name string) (int, error)
}

// GenerateContainerName returns a unique container name with the given
// prefix, suitable for the ContainerContext.Name field.
func GenerateContainerName(prefix string) string {
	if prefix == "" {
		prefix = "podbridge"
	}
	return prefix + "-" + uuid.NewString()
}

// CommandString renders a program and its argument list as a single display
// string for logging. Rendering is best-effort: elements that are not valid
// text render as a placeholder instead of failing. The result is for human
// eyes only; it is not shell-quoted and must never be re-parsed.
func CommandString(program string, args []string) string {
	var b strings.Builder
	b.WriteString(printable(program))
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(printable(arg))
	}
	return b.String()
}

func printable(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return "<invalid utf-8>"
}
