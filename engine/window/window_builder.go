package window

// WindowBuilderOption is a functional option for configuring a window via NewWindow.
type WindowBuilderOption func(w *surfaceWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *surfaceWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size. The framebuffer may differ on high-DPI displays.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *surfaceWindow) {
		w.width = width
		w.height = height
	}
}
