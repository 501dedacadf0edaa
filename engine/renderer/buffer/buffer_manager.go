// Package buffer wraps raw byte slices into GPU buffers addressed by handle.
package buffer

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// copyAlignment is the byte alignment WebGPU requires for buffer uploads.
const copyAlignment = 4

// entry is one cached buffer allocation.
type entry struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
	label  string
}

// manager is the implementation of the Manager interface.
type manager struct {
	ctx     renderer.GPUContext
	logger  *slog.Logger
	counter uint64
	buffers map[uint64]entry
	bytes   uint64
}

// Manager allocates GPU buffers and hands out Buffer handles for them. It never
// deduplicates by content: every Create is a fresh allocation. It is not safe for
// concurrent use.
type Manager interface {
	// Create allocates a buffer sized to data, uploads data and returns its handle.
	// The allocation is padded to 4 bytes; Size reports the unpadded length.
	//
	// Parameters:
	//   - label: a debug label for the native buffer
	//   - data: the initial contents, must not be empty
	//   - usage: the buffer usage flags
	//
	// Returns:
	//   - resource.Handle: a handle tagged KindBuffer
	//   - error: error if data is empty or the allocation fails
	Create(label string, data []byte, usage wgpu.BufferUsage) (resource.Handle, error)

	// Resolve returns the native buffer for a handle. It panics if the handle is not
	// tagged KindBuffer.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - *wgpu.Buffer: the native buffer
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Resolve(h resource.Handle) (*wgpu.Buffer, error)

	// Size returns the logical byte size recorded when the buffer was created.
	// It panics if the handle is not tagged KindBuffer.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Size(h resource.Handle) (uint64, error)

	// Usage returns the usage flags the buffer was created with.
	// It panics if the handle is not tagged KindBuffer.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - wgpu.BufferUsage: the usage flags
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Usage(h resource.Handle) (wgpu.BufferUsage, error)

	// Free releases a single buffer. The handle is stale afterwards.
	// It panics if the handle is not tagged KindBuffer.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Free(h resource.Handle) error

	// Len returns the number of live buffers.
	//
	// Returns:
	//   - int: the buffer count
	Len() int

	// TotalBytes returns the sum of the logical sizes of all live buffers.
	//
	// Returns:
	//   - uint64: the total size in bytes
	TotalBytes() uint64

	// Release frees every buffer and empties the cache.
	Release()
}

var _ Manager = &manager{}

// NewManager creates a buffer Manager that allocates through ctx.
//
// Parameters:
//   - ctx: the GPU context to allocate through
//   - opts: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the buffer manager
func NewManager(ctx renderer.GPUContext, opts ...ManagerBuilderOption) Manager {
	m := &manager{
		ctx:     ctx,
		logger:  slog.Default(),
		buffers: make(map[uint64]entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Create(label string, data []byte, usage wgpu.BufferUsage) (resource.Handle, error) {
	if len(data) == 0 {
		return resource.Handle{}, fmt.Errorf("buffer %q: %w: empty contents", label, resource.ErrUnsupported)
	}

	contents := data
	if pad := len(data) % copyAlignment; pad != 0 {
		contents = make([]byte, len(data)+copyAlignment-pad)
		copy(contents, data)
	}

	buf, err := m.ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    usage,
	})
	if err != nil {
		return resource.Handle{}, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}

	m.counter++
	h := resource.New(resource.KindBuffer, m.counter)
	m.buffers[m.counter] = entry{
		buffer: buf,
		size:   uint64(len(data)),
		usage:  usage,
		label:  label,
	}
	m.bytes += uint64(len(data))

	m.logger.Debug("buffer created",
		slog.String("label", label),
		slog.String("handle", h.String()),
		slog.Int("bytes", len(data)))
	return h, nil
}

func (m *manager) lookup(h resource.Handle) (entry, error) {
	h.MustBe(resource.KindBuffer)
	e, ok := m.buffers[h.Value()]
	if !ok {
		return entry{}, resource.NotFound(h)
	}
	return e, nil
}

func (m *manager) Resolve(h resource.Handle) (*wgpu.Buffer, error) {
	e, err := m.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.buffer, nil
}

func (m *manager) Size(h resource.Handle) (uint64, error) {
	e, err := m.lookup(h)
	if err != nil {
		return 0, err
	}
	return e.size, nil
}

func (m *manager) Usage(h resource.Handle) (wgpu.BufferUsage, error) {
	e, err := m.lookup(h)
	if err != nil {
		return 0, err
	}
	return e.usage, nil
}

func (m *manager) Free(h resource.Handle) error {
	e, err := m.lookup(h)
	if err != nil {
		return err
	}
	m.ctx.ReleaseObject(e.buffer)
	delete(m.buffers, h.Value())
	m.bytes -= e.size
	return nil
}

func (m *manager) Len() int {
	return len(m.buffers)
}

func (m *manager) TotalBytes() uint64 {
	return m.bytes
}

func (m *manager) Release() {
	for key, e := range m.buffers {
		m.ctx.ReleaseObject(e.buffer)
		delete(m.buffers, key)
	}
	m.bytes = 0
}
