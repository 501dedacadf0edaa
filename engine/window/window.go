// Package window opens the presentation window the resource demo configures its surface
// and depth target against.
package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window exposing the surface descriptor and framebuffer size.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SurfaceDescriptor returns a descriptor suitable for creating a WebGPU surface.
	// It is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is closed.
	//
	// Returns:
	//   - bool: true if the window is running
	IsRunning() bool

	// Poll processes pending events once without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	Poll() bool

	// Run polls events until the window is closed, calling onFrame after each poll.
	//
	// Parameters:
	//   - onFrame: function called each iteration, or nil
	Run(onFrame func())

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window was never opened
	Close() error

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// surfaceWindow implements the Window interface.
type surfaceWindow struct {
	title  string
	width  int
	height int

	// internalWindow holds the platform window state (glfwWindow).
	internalWindow any

	onResize func(width, height int)
}

var _ Window = &surfaceWindow{}

// NewWindow opens a window with the given options. It locks the calling goroutine to its
// OS thread, so every later call must come from the same goroutine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if GLFW cannot be initialized or the window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &surfaceWindow{
		title:  "oxyres",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *surfaceWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *surfaceWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *surfaceWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *surfaceWindow) Poll() bool {
	return platformProcessMessages(w)
}

func (w *surfaceWindow) Run(onFrame func()) {
	for w.IsRunning() {
		if !w.Poll() {
			break
		}
		if onFrame != nil {
			onFrame()
		}
		runtime.Gosched()
	}
}

func (w *surfaceWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *surfaceWindow) Width() int {
	return w.width
}

func (w *surfaceWindow) Height() int {
	return w.height
}

// resized records a framebuffer size change. Zero sizes, reported while minimized, are ignored.
func (w *surfaceWindow) resized(width, height int) {
	if width <= 0 || height <= 0 || (width == w.width && height == w.height) {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
