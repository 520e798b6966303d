package server

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMountPath is the URL prefix used when none is supplied.
	DefaultMountPath = "/docs"
	// DefaultPort is the TCP port used when none is supplied.
	DefaultPort = 3000
	// DefaultAssetDir is the directory served under the mount path.
	DefaultAssetDir = "public"
)

// Config holds configuration for the HTTP server.
// A Config is built once at startup and never mutated afterwards.
type Config struct {
	// MountPath is the URL prefix under which the asset directory is exposed.
	MountPath string `mapstructure:"mount_path" default:"/docs"`
	// Port is the port where the server will listen.
	Port int `mapstructure:"port" default:"3000"`
	// AssetDir is the local directory holding the pre-built assets.
	AssetDir string `mapstructure:"asset_dir" default:"public"`
	// ReadTimeout bounds reading a full request. Zero keeps the framework default.
	ReadTimeout time.Duration `mapstructure:"read_timeout" default:"0s"`
	// WriteTimeout bounds writing a response. Zero keeps the framework default.
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"0s"`
	// IdleTimeout bounds keep-alive connections. Zero keeps the framework default.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" default:"0s"`
	// ShutdownTimeout bounds connection draining on termination.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
}

// Normalize validates the configuration and returns a copy with the mount
// path in canonical form (leading slash, no trailing slash except for "/").
func (c Config) Normalize() (Config, error) {
	mount := strings.TrimSpace(c.MountPath)
	if mount == "" {
		return c, fmt.Errorf("%w: mount path must not be empty", ErrInvalidArgument)
	}
	if !strings.HasPrefix(mount, "/") {
		return c, fmt.Errorf("%w: mount path %q must start with \"/\"", ErrInvalidArgument, mount)
	}
	if len(mount) > 1 {
		mount = strings.TrimRight(mount, "/")
		if mount == "" {
			mount = "/"
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return c, fmt.Errorf("%w: port %d is outside 1-65535", ErrInvalidArgument, c.Port)
	}

	if strings.TrimSpace(c.AssetDir) == "" {
		return c, fmt.Errorf("%w: asset directory must not be empty", ErrInvalidArgument)
	}

	out := c
	out.MountPath = mount
	return out, nil
}

// Addr returns the listen address for the configured port on all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NavigationURL returns the address a browser should open to view the
// documentation of the given service.
func (c Config) NavigationURL(service string) string {
	return fmt.Sprintf("localhost:%d%s/?service=%s", c.Port, strings.TrimRight(c.MountPath, "/"), service)
}
