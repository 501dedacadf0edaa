package pipeline

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// ManagerBuilderOption is a functional option for configuring a Manager via NewManager.
type ManagerBuilderOption func(*manager)

// WithDefaultDepthFormat sets the format used by depth states whose format is "default".
// Defaults to wgpu.TextureFormatDepth32Float.
//
// Parameters:
//   - format: the session depth format
//
// Returns:
//   - ManagerBuilderOption: a function that applies the depth format option
func WithDefaultDepthFormat(format wgpu.TextureFormat) ManagerBuilderOption {
	return func(m *manager) {
		m.defaultDepthFormat = format
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
