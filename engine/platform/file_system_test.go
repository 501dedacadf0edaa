package platform

import (
	"testing"
	"testing/fstest"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemReads(t *testing.T) {
	fsys := NewFileSystem(fstest.MapFS{
		"shaders/basic.vert.wgsl": {Data: []byte("@vertex fn main() {}")},
		"raw.bin":                 {Data: []byte{1, 2, 3}},
	})

	text, err := fsys.LoadText("./shaders/basic.vert.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "@vertex fn main() {}", text)

	data, err := fsys.LoadBytes("/raw.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = fsys.LoadBytes("missing.bin")
	assert.Error(t, err)

	assert.True(t, fsys.Exists("shaders/basic.vert.wgsl"))
	assert.False(t, fsys.Exists("shaders/basic.vert.spv"))
	assert.False(t, fsys.Exists("shaders"))
}

func TestCleanPath(t *testing.T) {
	clean, err := CleanPath("./a/b/../c.json")
	require.NoError(t, err)
	assert.Equal(t, "a/c.json", clean)

	clean, err = CleanPath(`scenes\box.gltf`)
	require.NoError(t, err)
	assert.Equal(t, "scenes/box.gltf", clean)

	_, err = CleanPath("../outside.json")
	assert.ErrorIs(t, err, errInvalidPath)
}

func TestJoinRelative(t *testing.T) {
	assert.Equal(t, "scenes/box.bin", JoinRelative("scenes/box.gltf", "box.bin"))
	assert.Equal(t, "buffers/box.bin", JoinRelative("scenes/box.gltf", "../buffers/box.bin"))
	assert.Equal(t, "box.bin", JoinRelative("box.gltf", "box.bin"))
}

func TestNagaCompilerRejectsMissingStage(t *testing.T) {
	_, err := NewNagaCompiler().Compile("@vertex fn main() {}", wgpu.ShaderStageNone, "x.wgsl")
	assert.Error(t, err)
}
