package podman

import (
	"context"
	"log/slog"
	"strings"

	"podbridge/pkg/edf"
	"podbridge/pkg/runtime"
)

// Run starts a container from the descriptor and blocks until it exits,
// inheriting the caller's stdio. It returns the runtime's exit status, which
// for an attached container is the container command's own status.
func (d *Driver) Run(ctx context.Context, desc *edf.Descriptor, cc *runtime.ContainerContext, command ...string) (int, error) {
	return d.ExecuteStatus(ctx, d.RunArgs(desc, cc, command...))
}

// RunOutput is Run with captured stdout/stderr instead of inherited stdio.
func (d *Driver) RunOutput(ctx context.Context, desc *edf.Descriptor, cc *runtime.ContainerContext, command ...string) (runtime.Output, error) {
	ec, err := d.Execute(ctx, d.RunArgs(desc, cc, command...))
	return ec.Output, err
}

// Pull fetches an image into the runtime's primary store.
func (d *Driver) Pull(ctx context.Context, image string) error {
	slog.Info("pulling image", "image", image)
	return d.checked(ctx, "pull", d.PullArgs(image))
}

// RemoveImage deletes an image from the primary store.
func (d *Driver) RemoveImage(ctx context.Context, image string) error {
	return d.checked(ctx, "rmi", d.RemoveImageArgs(image))
}

// RemoveContainer deletes a container by name.
func (d *Driver) RemoveContainer(ctx context.Context, name string) error {
	return d.checked(ctx, "rm", d.RemoveContainerArgs(name))
}

// Stop stops a running container by name.
func (d *Driver) Stop(ctx context.Context, name string) error {
	return d.checked(ctx, "stop", d.StopArgs(name))
}

// ImageExists reports whether the image is present in any configured store.
// The runtime answers through its exit status, so a negative answer is not
// an error.
func (d *Driver) ImageExists(ctx context.Context, image string) (bool, error) {
	ec, err := d.Execute(ctx, d.ImageExistsArgs(image))
	if err != nil {
		return false, err
	}
	return ec.Output.Success(), nil
}

// Images lists the images visible to the runtime and returns the raw
// listing; parsing it is the caller's concern.
func (d *Driver) Images(ctx context.Context) (runtime.Output, error) {
	return d.query(ctx, "images", d.ImagesArgs())
}

// Inspect queries a container or image, optionally through a Go template
// format string.
func (d *Driver) Inspect(ctx context.Context, target, format string) (runtime.Output, error) {
	return d.query(ctx, "inspect", d.InspectArgs(target, format))
}

// Info queries the runtime's daemon information, optionally through a Go
// template format string.
func (d *Driver) Info(ctx context.Context, format string) (runtime.Output, error) {
	return d.query(ctx, "info", d.InfoArgs(format))
}

// Version reports the runtime version. Only the optional module selector is
// forwarded; the context's storage roots are ignored by design.
func (d *Driver) Version(ctx context.Context, module string) (runtime.Output, error) {
	return d.query(ctx, "version", d.VersionArgs(module))
}

// checked executes a compiled invocation and converts a non-zero exit into a
// QueryError carrying the trimmed stderr.
func (d *Driver) checked(ctx context.Context, op string, args []string) error {
	_, err := d.query(ctx, op, args)
	return err
}

// query executes a compiled invocation, returning the captured output and a
// QueryError when the tool exits non-zero.
func (d *Driver) query(ctx context.Context, op string, args []string) (runtime.Output, error) {
	ec, err := d.Execute(ctx, args)
	if err != nil {
		return ec.Output, err
	}
	if !ec.Output.Success() {
		return ec.Output, &QueryError{
			Op:       op,
			ExitCode: ec.Output.ExitCode,
			Stderr:   strings.TrimSpace(string(ec.Output.Stderr)),
		}
	}
	return ec.Output, nil
}
