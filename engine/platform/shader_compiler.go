package platform

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// ShaderCompiler turns shader source into SPIR-V bytecode.
type ShaderCompiler interface {
	// Compile compiles WGSL source for the given stage.
	//
	// Parameters:
	//   - source: the WGSL source text
	//   - stage: the pipeline stage the module is compiled for
	//   - label: a name used in error messages, usually the source path
	//
	// Returns:
	//   - []byte: SPIR-V bytecode
	//   - error: error if compilation fails
	Compile(source string, stage wgpu.ShaderStage, label string) ([]byte, error)
}

// nagaCompiler is the ShaderCompiler backed by the pure Go naga compiler.
type nagaCompiler struct {
	options naga.CompileOptions
}

var _ ShaderCompiler = &nagaCompiler{}

// NagaCompilerOption configures the naga-backed ShaderCompiler.
type NagaCompilerOption func(*nagaCompiler)

// WithDebugInfo toggles SPIR-V debug instructions (names and line info) in the output.
//
// Parameters:
//   - enabled: true to emit debug info
//
// Returns:
//   - NagaCompilerOption: the option
func WithDebugInfo(enabled bool) NagaCompilerOption {
	return func(c *nagaCompiler) {
		c.options.Debug = enabled
	}
}

// WithValidation toggles IR validation before SPIR-V generation.
//
// Parameters:
//   - enabled: true to validate
//
// Returns:
//   - NagaCompilerOption: the option
func WithValidation(enabled bool) NagaCompilerOption {
	return func(c *nagaCompiler) {
		c.options.Validate = enabled
	}
}

// NewNagaCompiler returns a ShaderCompiler that compiles WGSL to SPIR-V with naga.
//
// Parameters:
//   - opts: optional compiler settings
//
// Returns:
//   - ShaderCompiler: the compiler
func NewNagaCompiler(opts ...NagaCompilerOption) ShaderCompiler {
	c := &nagaCompiler{options: naga.DefaultOptions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *nagaCompiler) Compile(source string, stage wgpu.ShaderStage, label string) ([]byte, error) {
	if stage == wgpu.ShaderStageNone {
		return nil, fmt.Errorf("compile %s: no shader stage given", label)
	}
	spirv, err := naga.CompileWithOptions(source, c.options)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	return spirv, nil
}
