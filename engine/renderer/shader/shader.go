// Package shader loads shader modules by logical name and stage and hands out handles
// for them.
package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader module is built for.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in raster pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// DefaultEntryPoint is the entry point assumed for precompiled modules.
const DefaultEntryPoint = "main"

// Extension returns the stage extension appended to a logical shader name.
// Source files are "<name>.<ext>.wgsl" and precompiled files "<name>.<ext>.spv".
//
// Returns:
//   - string: "vert", "frag" or "comp"
func (t ShaderType) Extension() string {
	switch t {
	case ShaderTypeVertex:
		return "vert"
	case ShaderTypeFragment:
		return "frag"
	case ShaderTypeCompute:
		return "comp"
	default:
		return ""
	}
}

// Stage returns the WebGPU stage flag for the shader type.
//
// Returns:
//   - wgpu.ShaderStage: the stage flag, or ShaderStageNone for unknown types
func (t ShaderType) Stage() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	case ShaderTypeCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	name          string
	shaderType    ShaderType
	sourcePath    string
	precompiled   bool
	entryPoint    string
	workGroupSize [3]uint32
	module        *wgpu.ShaderModule
}

// Shader is a loaded shader module together with the metadata pipelines need to use it.
type Shader interface {
	// Key returns the stage-qualified name, e.g. "shaders/basic.vert".
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Name returns the logical name the shader was requested by.
	//
	// Returns:
	//   - string: the logical name
	Name() string

	// ShaderType returns the stage the shader was loaded for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// SourcePath returns the file the bytecode came from.
	//
	// Returns:
	//   - string: the .wgsl or .spv path
	SourcePath() string

	// Precompiled reports whether the module was loaded from a precompiled artifact.
	//
	// Returns:
	//   - bool: true for .spv modules
	Precompiled() bool

	// EntryPoint returns the entry point name parsed from WGSL, or DefaultEntryPoint for
	// precompiled modules.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// WorkgroupSize returns the workgroup size dimensions for compute shaders.
	// Returns [0, 0, 0] for non-compute and precompiled shaders.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Module returns the native shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModule: the module
	Module() *wgpu.ShaderModule
}

var _ Shader = &shader{}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) SourcePath() string {
	return s.sourcePath
}

func (s *shader) Precompiled() bool {
	return s.precompiled
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) Module() *wgpu.ShaderModule {
	return s.module
}
