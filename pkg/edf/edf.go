// Package edf holds the execution-descriptor data model the invocation
// compiler consumes. Descriptor values are produced by the outer tool's
// descriptor renderer; this layer reads them as-is and never mutates them.
package edf

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Mount describes one bind mount, kept in descriptor order.
type Mount struct {
	Source      string   `mapstructure:"source" validate:"required"`
	Destination string   `mapstructure:"destination" validate:"required"`
	Options     []string `mapstructure:"options"`
}

// VolumeString renders the mount as the runtime's single-token
// "source:destination[:opt,...]" form. Paths pass through verbatim; nothing
// here assumes they are valid text or escapes embedded separators.
func (m Mount) VolumeString() string {
	s := m.Source + ":" + m.Destination
	if len(m.Options) > 0 {
		s += ":" + strings.Join(m.Options, ",")
	}
	return s
}

// Descriptor is a resolved, validated description of a container workload.
type Descriptor struct {
	// Image is the image reference the container runs from.
	Image string `mapstructure:"image" validate:"required"`

	// Writable grants the container a writable root filesystem. When
	// false the compiler emits --read-only.
	Writable bool `mapstructure:"writable"`

	// Entrypoint keeps the image's own entrypoint. When false the
	// compiler clears it with --entrypoint=.
	//
	// TODO: support redefining the entrypoint, not only clearing it.
	Entrypoint bool `mapstructure:"entrypoint"`

	// Workdir is the container working directory. Empty means unset.
	Workdir string `mapstructure:"workdir"`

	// Mounts are emitted as --volume pairs in descriptor order.
	Mounts []Mount `mapstructure:"mounts" validate:"dive"`

	// Devices are opaque device specs, emitted in descriptor order.
	Devices []string `mapstructure:"devices"`

	// Env maps variable names to values; keys are unique, iteration order
	// is unspecified.
	Env map[string]string `mapstructure:"env"`

	// Annotations maps annotation names to values; keys are unique,
	// iteration order is unspecified.
	Annotations map[string]string `mapstructure:"annotations"`
}

// Validate checks the descriptor's structure and normalizes the image
// reference. The compiler itself treats descriptors as already validated;
// this is a convenience for the outer tool's rendering pipeline.
func (d *Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid descriptor: %w", err)
	}
	if _, err := reference.ParseNormalizedNamed(d.Image); err != nil {
		return fmt.Errorf("invalid image reference %q: %w", d.Image, err)
	}
	return nil
}
