package buffer

import "log/slog"

// ManagerBuilderOption is a functional option for configuring a Manager via NewManager.
type ManagerBuilderOption func(*manager)

// WithLogger sets the logger used for allocation messages.
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
