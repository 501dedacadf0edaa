package main

import (
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-resources/config"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSettings(t *testing.T) {
	level, format, err := sessionSettings(config.Default())
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, format)

	bad := config.Default()
	bad.LogLevel = "loud"
	_, _, err = sessionSettings(bad)
	assert.ErrorIs(t, err, resource.ErrUnknownValue)

	bad = config.Default()
	bad.DefaultDepthFormat = "rgba8unorm"
	_, _, err = sessionSettings(bad)
	assert.ErrorIs(t, err, resource.ErrUnknownValue)
}

func TestPathList(t *testing.T) {
	var p pathList
	require.NoError(t, p.Set("a.json, b.json"))
	require.NoError(t, p.Set("c.json"))
	assert.Equal(t, pathList{"a.json", "b.json", "c.json"}, p)
	assert.Equal(t, "a.json,b.json,c.json", p.String())
}

func TestConfigurationsDefault(t *testing.T) {
	cfgs := configurations(nil)
	require.Len(t, cfgs, 1)
	assert.Equal(t, wgpu.IndexFormatUint32, cfgs[0].IndexFormat)
}
