// Package config loads the driver configuration file the outer tool points
// podbridge at and turns it into runtime contexts for the compiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"podbridge/pkg/runtime"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config mirrors the driver configuration file. Only the runtime executable
// is required; every other field defers to the runtime's own default when
// empty.
type Config struct {
	// Podman is the container-runtime executable path.
	Podman string `mapstructure:"podman" validate:"required"`

	// Module selects a named runtime configuration module.
	Module string `mapstructure:"module"`

	// Graphroot and Runroot override the runtime's storage directories.
	Graphroot string `mapstructure:"graphroot"`
	Runroot   string `mapstructure:"runroot"`

	// ROStore is the secondary read-only image store.
	ROStore string `mapstructure:"ro_store"`

	// MountProgram is the custom mount-helper program.
	MountProgram string `mapstructure:"mount_program"`

	// MigrationTool is the external image-store migration executable.
	MigrationTool string `mapstructure:"migration_tool"`

	// Env holds ordered "KEY=VALUE" environment overrides for spawned
	// runtime processes. A list, not a map: variable names are
	// case-sensitive and their order must survive loading.
	Env []string `mapstructure:"env"`
}

// DefaultPath returns the XDG location of the driver config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "podbridge", "podbridge.toml")
}

// Load reads and validates a driver config file. The format (TOML or YAML)
// is inferred from the file extension.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("driver config file not found: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read driver config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse driver config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid driver config: %w", err)
	}

	return &cfg, nil
}

// RuntimeContext converts the config into the compiler's runtime context.
// Env entries split at the first "=", so values may themselves contain "=";
// an entry without "=" becomes a variable with an empty value.
func (c *Config) RuntimeContext() *runtime.RuntimeContext {
	rc := &runtime.RuntimeContext{
		PodmanPath:   c.Podman,
		Module:       c.Module,
		Graphroot:    c.Graphroot,
		Runroot:      c.Runroot,
		MountProgram: c.MountProgram,
		ROStore:      c.ROStore,
	}

	for _, entry := range c.Env {
		key, value, _ := strings.Cut(entry, "=")
		rc.WithEnv(key, value)
	}

	return rc
}
