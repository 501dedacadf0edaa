package shader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
)

// ManagerBuilderOption is a functional option for configuring a Manager via NewManager.
type ManagerBuilderOption func(*manager)

// WithCompiler sets the compiler used for WGSL sources. Passing nil hands WGSL to the
// device unchanged instead of compiling it to SPIR-V first.
//
// Parameters:
//   - c: the shader compiler, or nil for WGSL passthrough
//
// Returns:
//   - ManagerBuilderOption: a function that applies the compiler option
func WithCompiler(c platform.ShaderCompiler) ManagerBuilderOption {
	return func(m *manager) {
		m.compiler = c
	}
}

// WithPreferPrecompiled controls whether "<name>.<ext>.spv" artifacts are probed before
// compiling WGSL source. Defaults to true.
//
// Parameters:
//   - prefer: false to always compile from source
//
// Returns:
//   - ManagerBuilderOption: a function that applies the option
func WithPreferPrecompiled(prefer bool) ManagerBuilderOption {
	return func(m *manager) {
		m.preferPrecompiled = prefer
	}
}

// WithLogger sets the logger used for load messages.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ManagerBuilderOption: a function that applies the logger option
func WithLogger(logger *slog.Logger) ManagerBuilderOption {
	return func(m *manager) {
		m.logger = logger
	}
}
