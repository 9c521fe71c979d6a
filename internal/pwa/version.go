package pwa

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// VersionSource reports the build version currently deployed.
type VersionSource interface {
	Version(ctx context.Context) (string, error)
}

// StaticVersion never changes.
type StaticVersion string

func (v StaticVersion) Version(context.Context) (string, error) {
	return string(v), nil
}

// FileVersion reads the version from a file written at deploy time, so a
// redeploy is noticed without a restart.
type FileVersion struct {
	Path string
}

func (f FileVersion) Version(context.Context) (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read version file: %w", err)
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", fmt.Errorf("version file %s is empty", f.Path)
	}
	return v, nil
}
