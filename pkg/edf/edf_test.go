package edf

import (
	"strings"
	"testing"
)

func TestMountVolumeString(t *testing.T) {
	tests := []struct {
		name  string
		mount Mount
		want  string
	}{
		{
			name:  "source and destination only",
			mount: Mount{Source: "/home/user/test", Destination: "/develop"},
			want:  "/home/user/test:/develop",
		},
		{
			name:  "single option",
			mount: Mount{Source: "/src", Destination: "/dst", Options: []string{"ro"}},
			want:  "/src:/dst:ro",
		},
		{
			name:  "multiple options joined with commas",
			mount: Mount{Source: "/src", Destination: "/dst", Options: []string{"ro", "z"}},
			want:  "/src:/dst:ro,z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mount.VolumeString(); got != tt.want {
				t.Errorf("VolumeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescriptorValidate(t *testing.T) {
	valid := &Descriptor{
		Image:   "ubuntu:24.04",
		Workdir: "/develop",
		Mounts: []Mount{
			{Source: "/home/user/test", Destination: "/develop"},
		},
		Env:         map[string]string{"TEST_1": "EDF!"},
		Annotations: map[string]string{"com.hooks.test1.enabled": "true"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid descriptor rejected: %v", err)
	}

	t.Run("missing image", func(t *testing.T) {
		d := &Descriptor{}
		if err := d.Validate(); err == nil {
			t.Error("expected validation error for missing image")
		}
	})

	t.Run("malformed image reference", func(t *testing.T) {
		d := &Descriptor{Image: "ubuntu::bad"}
		err := d.Validate()
		if err == nil {
			t.Fatal("expected error for malformed image reference")
		}
		if !strings.Contains(err.Error(), "invalid image reference") {
			t.Errorf("unexpected error text: %v", err)
		}
	})

	t.Run("mount without destination", func(t *testing.T) {
		d := &Descriptor{
			Image:  "ubuntu:24.04",
			Mounts: []Mount{{Source: "/src"}},
		}
		if err := d.Validate(); err == nil {
			t.Error("expected validation error for incomplete mount")
		}
	})
}
