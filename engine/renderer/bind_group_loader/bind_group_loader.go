// Package bind_group_loader turns JSON binding descriptions into bind group layouts.
package bind_group_loader

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// layout is one created bind group layout with the bindings it was built from.
type layout struct {
	layout   *wgpu.BindGroupLayout
	bindings []Binding
	path     string
	set      int
}

// loader is the implementation of the Loader interface.
type loader struct {
	ctx    renderer.GPUContext
	fs     platform.FileSystem
	logger *slog.Logger

	counter uint64
	layouts map[uint64]*layout
	byPath  map[string][]resource.Handle
}

// Loader reads binding description files and creates one bind group layout per set.
// Results are cached by path, so a file is parsed and its layouts created at most once.
// It is not safe for concurrent use.
type Loader interface {
	// Load parses the file at path and creates its layouts, or returns the cached handles
	// from an earlier load of the same path.
	//
	// Parameters:
	//   - path: the binding description path
	//
	// Returns:
	//   - []resource.Handle: one KindBindGroupLayout handle per set, in set order
	//   - error: a *resource.ConfigError for a bad description, or a read/creation error
	Load(path string) ([]resource.Handle, error)

	// Resolve returns the native layout for a handle. It panics if the handle is not
	// tagged KindBindGroupLayout.
	//
	// Parameters:
	//   - h: the layout handle
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the native layout
	//   - error: resource.ErrNotFound if the handle was not issued by this loader
	Resolve(h resource.Handle) (*wgpu.BindGroupLayout, error)

	// Bindings returns the validated bindings a layout was created from, in slot order
	// of the source file. It panics if the handle is not tagged KindBindGroupLayout.
	//
	// Parameters:
	//   - h: the layout handle
	//
	// Returns:
	//   - []Binding: a copy of the bindings
	//   - error: resource.ErrNotFound if the handle was not issued by this loader
	Bindings(h resource.Handle) ([]Binding, error)

	// Entries returns the native layout entries a layout was created with.
	// It panics if the handle is not tagged KindBindGroupLayout.
	//
	// Parameters:
	//   - h: the layout handle
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutEntry: the entries
	//   - error: resource.ErrNotFound if the handle was not issued by this loader
	Entries(h resource.Handle) ([]wgpu.BindGroupLayoutEntry, error)

	// Len returns the number of live layouts.
	//
	// Returns:
	//   - int: the layout count
	Len() int

	// Release frees every layout and empties the path cache.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from fs and creating layouts through ctx.
//
// Parameters:
//   - ctx: the GPU context to create layouts through
//   - fs: the file system holding binding descriptions
//   - opts: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the binding group loader
func NewLoader(ctx renderer.GPUContext, fs platform.FileSystem, opts ...LoaderBuilderOption) Loader {
	l := &loader{
		ctx:     ctx,
		fs:      fs,
		logger:  slog.Default(),
		layouts: make(map[uint64]*layout),
		byPath:  make(map[string][]resource.Handle),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) Load(p string) ([]resource.Handle, error) {
	if handles, ok := l.byPath[p]; ok {
		return append([]resource.Handle(nil), handles...), nil
	}

	data, err := l.fs.LoadBytes(p)
	if err != nil {
		return nil, fmt.Errorf("failed to load binding description: %w", err)
	}
	sets, err := parseBindingSets(p, data)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(path.Base(p), path.Ext(p))
	created := make([]*wgpu.BindGroupLayout, 0, len(sets))
	for i, set := range sets {
		entries := make([]wgpu.BindGroupLayoutEntry, len(set))
		for j, b := range set {
			entries[j] = b.LayoutEntry()
		}
		bgl, err := l.ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_bg%d", stem, i),
			Entries: entries,
		})
		if err != nil {
			for _, c := range created {
				l.ctx.ReleaseObject(c)
			}
			return nil, fmt.Errorf("failed to create bind group layout %d of %s: %w", i, p, err)
		}
		created = append(created, bgl)
	}

	handles := make([]resource.Handle, len(created))
	for i, bgl := range created {
		l.counter++
		handles[i] = resource.New(resource.KindBindGroupLayout, l.counter)
		l.layouts[l.counter] = &layout{
			layout:   bgl,
			bindings: sets[i],
			path:     p,
			set:      i,
		}
	}
	l.byPath[p] = handles

	l.logger.Info("bind group layouts loaded",
		slog.String("path", p),
		slog.Int("sets", len(handles)))
	return append([]resource.Handle(nil), handles...), nil
}

func (l *loader) lookup(h resource.Handle) (*layout, error) {
	h.MustBe(resource.KindBindGroupLayout)
	e, ok := l.layouts[h.Value()]
	if !ok {
		return nil, resource.NotFound(h)
	}
	return e, nil
}

func (l *loader) Resolve(h resource.Handle) (*wgpu.BindGroupLayout, error) {
	e, err := l.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.layout, nil
}

func (l *loader) Bindings(h resource.Handle) ([]Binding, error) {
	e, err := l.lookup(h)
	if err != nil {
		return nil, err
	}
	return append([]Binding(nil), e.bindings...), nil
}

func (l *loader) Entries(h resource.Handle) ([]wgpu.BindGroupLayoutEntry, error) {
	e, err := l.lookup(h)
	if err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupLayoutEntry, len(e.bindings))
	for i, b := range e.bindings {
		entries[i] = b.LayoutEntry()
	}
	return entries, nil
}

func (l *loader) Len() int {
	return len(l.layouts)
}

func (l *loader) Release() {
	for key, e := range l.layouts {
		l.ctx.ReleaseObject(e.layout)
		delete(l.layouts, key)
	}
	clear(l.byPath)
}
