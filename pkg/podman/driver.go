// Package podman compiles declarative workload descriptions into exact argv
// sequences for the podman CLI, executes them, and resolves runtime facts
// (container PIDs) about containers it started.
//
// Compilation and execution are strictly separated: the ...Args methods are
// pure data transformations that never touch the filesystem and cannot fail,
// while the Execute/ExecuteStatus facade and the operation wrappers own every
// failure mode (spawn errors, non-zero exits, parse errors).
package podman

import (
	"context"
	"os/exec"

	"podbridge/pkg/edf"
	"podbridge/pkg/runtime"
)

// DefaultBinary is spawned when no RuntimeContext names an executable.
const DefaultBinary = "podman"

// ExecCommandFunc is the function signature for creating exec.Cmd. It allows
// injection of stub implementations for testing.
type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Driver drives one podman installation. A nil RuntimeContext is valid and
// means "the runtime's own defaults": no flag is synthesized for an absent
// field. Driver values hold no mutable state and are safe for concurrent use.
type Driver struct {
	rc          *runtime.RuntimeContext
	execCommand ExecCommandFunc
}

var _ runtime.ContainerDriver = (*Driver)(nil)

// New returns a driver for the given runtime context. rc may be nil.
func New(rc *runtime.RuntimeContext) *Driver {
	return &Driver{rc: rc, execCommand: exec.CommandContext}
}

// Binary returns the runtime executable this driver spawns.
func (d *Driver) Binary() string {
	if d.rc != nil && d.rc.PodmanPath != "" {
		return d.rc.PodmanPath
	}
	return DefaultBinary
}

// baseArgs is the layout every operation starts from: the storage roots,
// present only when the context sets them.
func (d *Driver) baseArgs() []string {
	var args []string
	if d.rc == nil {
		return args
	}
	args = appendOpt(args, "--root", d.rc.Graphroot)
	args = appendOpt(args, "--runroot", d.rc.Runroot)
	return args
}

// roStoreArgs appends the secondary read-only image-store option when the
// context configures one.
func (d *Driver) roStoreArgs(args []string) []string {
	if d.rc == nil {
		return args
	}
	return appendStorageOpt(args, "additionalimagestore", d.rc.ROStore)
}

// RunArgs compiles the full run invocation for a descriptor. Token order is
// load-bearing: podman is sensitive to global-flag placement, and the outer
// tool asserts positional layout.
//
// Layout: roots, module, storage opts, "run --rm", behavior flags, identity,
// entrypoint/workdir policy, mounts, devices, env, annotations, image, then
// the container command verbatim and last. Env and annotation pairs keep
// each key=value contiguous; order across map entries is unspecified.
func (d *Driver) RunArgs(desc *edf.Descriptor, cc *runtime.ContainerContext, command ...string) []string {
	args := d.baseArgs()
	if d.rc != nil {
		args = appendOpt(args, "--module", d.rc.Module)
		args = appendStorageOpt(args, "additionalimagestore", d.rc.ROStore)
		args = appendStorageOpt(args, "mount_program", d.rc.MountProgram)
	}

	args = append(args, "run", "--rm")
	args = appendFlag(args, cc.Detach, "--detach")
	args = appendFlag(args, cc.Interactive, "-it")
	args = appendFlag(args, !desc.Writable, "--read-only")

	args = append(args, "--name", cc.Name)
	args = appendOpt(args, "--pidfile", cc.Pidfile)

	// Only clearing the image entrypoint is supported; see
	// edf.Descriptor.Entrypoint.
	args = appendFlag(args, !desc.Entrypoint, "--entrypoint=")
	args = appendOpt(args, "--workdir", desc.Workdir)

	for _, m := range desc.Mounts {
		args = append(args, "--volume", m.VolumeString())
	}
	for _, dev := range desc.Devices {
		args = append(args, "--device", dev)
	}
	for k, v := range desc.Env {
		args = append(args, "--env", keyVal(k, v))
	}
	for k, v := range desc.Annotations {
		args = append(args, "--annotation", keyVal(k, v))
	}

	args = append(args, desc.Image)
	args = append(args, command...)
	return args
}

// PullArgs compiles a pull invocation. Pull writes to the primary store
// only, so the read-only store option is not injected.
func (d *Driver) PullArgs(image string) []string {
	return append(d.baseArgs(), "pull", image)
}

// RemoveImageArgs compiles an image-removal invocation.
func (d *Driver) RemoveImageArgs(image string) []string {
	args := d.roStoreArgs(d.baseArgs())
	return append(args, "rmi", image)
}

// RemoveContainerArgs compiles a container-removal invocation.
func (d *Driver) RemoveContainerArgs(name string) []string {
	args := d.roStoreArgs(d.baseArgs())
	return append(args, "rm", name)
}

// StopArgs compiles a container-stop invocation.
func (d *Driver) StopArgs(name string) []string {
	args := d.roStoreArgs(d.baseArgs())
	return append(args, "stop", name)
}

// ImageExistsArgs compiles an image-existence query.
func (d *Driver) ImageExistsArgs(image string) []string {
	args := d.roStoreArgs(d.baseArgs())
	return append(args, "image", "exists", image)
}

// ImagesArgs compiles an image-listing invocation.
func (d *Driver) ImagesArgs() []string {
	args := d.roStoreArgs(d.baseArgs())
	return append(args, "images")
}

// InspectArgs compiles an inspect query. The log level is forced to error so
// runtime warnings cannot pollute the single value being extracted. An empty
// format omits the -f flag.
func (d *Driver) InspectArgs(target, format string) []string {
	args := d.roStoreArgs(d.baseArgs())
	args = append(args, "--log-level=error", "inspect")
	args = appendOpt(args, "-f", format)
	return append(args, target)
}

// InfoArgs compiles a daemon-info query. An empty format omits the -f flag.
func (d *Driver) InfoArgs(format string) []string {
	args := append(d.baseArgs(), "info")
	return appendOpt(args, "-f", format)
}

// VersionArgs compiles a version query. The storage roots are ignored on
// purpose: version queries do not touch runtime state, only the optional
// module selector is forwarded.
func (d *Driver) VersionArgs(module string) []string {
	args := appendOpt(nil, "--module", module)
	return append(args, "version")
}
