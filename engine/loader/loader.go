// Package loader ingests glTF and GLB scenes into GPU buffers and handle-only models.
package loader

import (
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// RawBufferUsage is the usage of buffers created for raw glTF buffers.
const RawBufferUsage = wgpu.BufferUsageVertex | wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst

// loader is the implementation of the Loader interface.
type loader struct {
	files   platform.FileSystem
	buffers buffer.Manager
	logger  *slog.Logger

	workers int
	pool    worker.DynamicWorkerPool

	scenes map[string]*Scene
}

// Loader loads glTF/GLB scenes and caches them by path. Primitive decoding fans out over
// a worker pool; every buffer allocation happens on the calling goroutine. A Loader is
// not safe for concurrent use.
type Loader interface {
	// Load ingests the scene at path, or returns the cached scene for that path.
	// Each raw glTF buffer is uploaded exactly once; 16-bit index data is widened into
	// new buffers through NormalizeIndexBuffer.
	//
	// Parameters:
	//   - path: the .gltf or .glb path inside the file system
	//
	// Returns:
	//   - *Scene: the ingested scene
	//   - error: a *resource.ConfigError for invalid documents, or an I/O or allocation error
	Load(path string) (*Scene, error)

	// Get returns a previously loaded scene.
	//
	// Parameters:
	//   - path: the path the scene was loaded from
	//
	// Returns:
	//   - *Scene: the scene, or nil
	//   - bool: true if the scene is cached
	Get(path string) (*Scene, bool)

	// Len returns the number of cached scenes.
	//
	// Returns:
	//   - int: the scene count
	Len() int

	// Release frees the buffers of every cached scene and empties the cache.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a scene Loader that reads through files and allocates through buffers.
//
// Parameters:
//   - files: the file system scenes and external buffers are read from
//   - buffers: the buffer manager that owns uploaded data
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the scene loader
func NewLoader(files platform.FileSystem, buffers buffer.Manager, options ...LoaderBuilderOption) Loader {
	l := &loader{
		files:   files,
		buffers: buffers,
		logger:  slog.Default(),
		workers: max(runtime.NumCPU()-1, 1),
		scenes:  make(map[string]*Scene),
	}
	for _, option := range options {
		option(l)
	}

	// Workers idle-exit after a second between loads.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(scenePath string) (*Scene, error) {
	if s, ok := l.scenes[scenePath]; ok {
		l.logger.Debug("scene cache hit", slog.String("path", scenePath))
		return s, nil
	}

	doc, err := newGLTFParser(l.files, scenePath).parse()
	if err != nil {
		return nil, err
	}

	layouts, err := l.extract(doc, scenePath)
	if err != nil {
		return nil, err
	}
	placed, err := placements(doc, scenePath)
	if err != nil {
		return nil, err
	}

	scene := &Scene{Path: scenePath}
	if err := l.upload(doc, scene); err != nil {
		l.free(scene)
		return nil, err
	}

	meshes := make([][]*model.Mesh, len(layouts))
	for m, prims := range layouts {
		meshes[m], err = l.buildMeshes(doc, scene, prims)
		if err != nil {
			l.free(scene)
			return nil, err
		}
	}

	for _, p := range placed {
		scene.Models = append(scene.Models, model.NewModel(
			model.WithName(p.name),
			model.WithMeshes(meshes[p.mesh]...),
			model.WithTransform(p.world),
			model.WithSource(scenePath),
		))
	}

	l.scenes[scenePath] = scene
	l.logger.Info("scene loaded",
		slog.String("path", scenePath),
		slog.Int("models", len(scene.Models)),
		slog.Int("meshes", scene.MeshCount()),
		slog.Int("buffers", len(scene.Buffers)),
		slog.Int("widened", len(scene.IndexBuffers)))
	return scene, nil
}

// extract decodes every mesh on the worker pool and returns the layouts in document order.
// The first error in document order wins.
func (l *loader) extract(doc *gltfDocument, scenePath string) ([][]primitiveLayout, error) {
	e := newMeshExtractor(doc, scenePath)
	layouts := make([][]primitiveLayout, len(doc.Meshes))
	errs := make([]error, len(doc.Meshes))

	var wg sync.WaitGroup
	for i := range doc.Meshes {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				layouts[i], errs[i] = e.extractMesh(i)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		for _, prim := range layouts[i] {
			for _, name := range prim.skipped {
				l.logger.Warn("unsupported vertex attribute skipped",
					slog.String("path", scenePath),
					slog.String("mesh", prim.name),
					slog.String("semantic", name))
			}
		}
	}
	return layouts, nil
}

// upload creates one GPU buffer per raw glTF buffer.
func (l *loader) upload(doc *gltfDocument, scene *Scene) error {
	stem := strings.TrimSuffix(path.Base(scene.Path), path.Ext(scene.Path))
	for i := range doc.Buffers {
		h, err := l.buffers.Create(fmt.Sprintf("%s.buffer%d", stem, i), doc.Buffers[i].Data, RawBufferUsage)
		if err != nil {
			return fmt.Errorf("scene %q: %w", scene.Path, err)
		}
		scene.Buffers = append(scene.Buffers, h)
	}
	return nil
}

func (l *loader) buildMeshes(doc *gltfDocument, scene *Scene, prims []primitiveLayout) ([]*model.Mesh, error) {
	out := make([]*model.Mesh, 0, len(prims))
	for _, prim := range prims {
		vertices := make([]model.BufferMapper, len(prim.vertices))
		for i, v := range prim.vertices {
			vertices[i] = model.BufferMapper{
				Semantic: v.semantic,
				Buffer:   scene.Buffers[v.region.buffer],
				Offset:   v.region.offset,
				Length:   v.region.length,
				Stride:   v.region.stride,
				Format:   v.semantic.Format(),
			}
		}

		var indices *model.IndexMapper
		if idx := prim.indices; idx != nil {
			r := idx.region
			if idx.narrow {
				src := doc.Buffers[r.buffer].Data[r.offset : r.offset+r.length]
				mapper, err := NormalizeIndexBuffer(l.buffers, prim.name+".indices", src, uint32(r.count))
				if err != nil {
					return nil, fmt.Errorf("scene %q: %w", scene.Path, err)
				}
				scene.IndexBuffers = append(scene.IndexBuffers, mapper.Buffer)
				indices = &mapper
			} else {
				indices = &model.IndexMapper{
					Buffer: scene.Buffers[r.buffer],
					Offset: r.offset,
					Length: r.length,
					Count:  uint32(r.count),
				}
			}
		}

		out = append(out, model.NewMesh(prim.name, prim.vertexCount, prim.topology, vertices, indices))
	}
	return out, nil
}

func (l *loader) Get(scenePath string) (*Scene, bool) {
	s, ok := l.scenes[scenePath]
	return s, ok
}

func (l *loader) Len() int {
	return len(l.scenes)
}

// free releases every buffer the scene owns. Handles already freed are ignored.
func (l *loader) free(scene *Scene) {
	for _, h := range scene.handles() {
		_ = l.buffers.Free(h)
	}
}

func (l *loader) Release() {
	for key, s := range l.scenes {
		l.free(s)
		delete(l.scenes, key)
	}
}

