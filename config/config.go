// Package config loads the session configuration consumed by the oxyres command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-resources/common"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"
)

const (
	defaultAssetRoot   = "assets"
	defaultDepthFormat = "depth32float"
	defaultLogLevel    = "info"
	defaultTitle       = "oxyres"
	defaultWidth       = 1280
	defaultHeight      = 720
)

// Window holds the size and title of the demo window.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config is the session configuration.
type Config struct {
	// AssetRoot is the directory every descriptor, shader and scene path is relative to.
	AssetRoot string `yaml:"asset_root"`

	// PreferPrecompiled is a pointer to distinguish unset from false.
	PreferPrecompiled *bool `yaml:"prefer_precompiled"`

	// DefaultDepthFormat is the depth format "default" resolves to in pipeline files.
	DefaultDepthFormat string `yaml:"default_depth_format"`

	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
	Headless             bool   `yaml:"headless"`
	LogLevel             string `yaml:"log_level"`
	Window               Window `yaml:"window"`

	// Workers is the scene decoding goroutine count. Zero picks one per spare CPU.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads and validates the configuration file at path.
//
// Parameters:
//   - path: the host path of the YAML file
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: error if the file cannot be read or holds an invalid value
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes and validates configuration data. Unknown keys are rejected.
//
// Parameters:
//   - path: the path reported in errors
//   - data: the YAML document
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: a *resource.ConfigError if the document is malformed or holds an invalid value
func Parse(path string, data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, resource.NewConfigError(path, "", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	c.applyDefaults()

	if _, err := c.DepthFormat(); err != nil {
		return Config{}, resource.NewConfigError(path, "default_depth_format", c.DefaultDepthFormat, err)
	}
	if _, err := c.Level(); err != nil {
		return Config{}, resource.NewConfigError(path, "log_level", c.LogLevel, err)
	}
	if c.Workers < 0 {
		return Config{}, resource.NewConfigError(path, "workers", fmt.Sprint(c.Workers), resource.ErrMalformed)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return Config{}, resource.NewConfigError(path, "window", fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height), resource.ErrMalformed)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	yes := true
	c.AssetRoot = common.Coalesce(c.AssetRoot, defaultAssetRoot)
	c.PreferPrecompiled = common.Coalesce(c.PreferPrecompiled, &yes)
	c.DefaultDepthFormat = common.Coalesce(strings.ToLower(c.DefaultDepthFormat), defaultDepthFormat)
	c.LogLevel = common.Coalesce(c.LogLevel, defaultLogLevel)
	c.Window.Title = common.Coalesce(c.Window.Title, defaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, defaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, defaultHeight)
}

// DepthFormat resolves DefaultDepthFormat.
//
// Returns:
//   - wgpu.TextureFormat: the depth format
//   - error: resource.ErrUnknownValue if the name is not a depth format
func (c Config) DepthFormat() (wgpu.TextureFormat, error) {
	f, ok := pipeline.DepthFormatNames[c.DefaultDepthFormat]
	if !ok {
		return wgpu.TextureFormatUndefined, resource.ErrUnknownValue
	}
	return f, nil
}

// Level resolves LogLevel to a slog level. Names are those slog.Level parses.
//
// Returns:
//   - slog.Level: the level
//   - error: resource.ErrUnknownValue if the name is not a level
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, resource.ErrUnknownValue
	}
	return l, nil
}

// Prefer returns PreferPrecompiled, true when unset.
//
// Returns:
//   - bool: whether precompiled shader artifacts are probed first
func (c Config) Prefer() bool {
	return c.PreferPrecompiled == nil || *c.PreferPrecompiled
}
