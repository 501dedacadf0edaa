// Package resources wires every resource manager into one session-scoped aggregate.
package resources

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/profiler"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/bind_group_loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// resourceManagers implements the ResourceManagers interface.
type resourceManagers struct {
	logger      *slog.Logger
	depthFormat wgpu.TextureFormat
	profiler    *profiler.Profiler

	shaderOpts []shader.ManagerBuilderOption
	loaderOpts []loader.LoaderBuilderOption

	shaders    shader.Manager
	buffers    buffer.Manager
	bindGroups bind_group_loader.Loader
	pipelines  pipeline.Manager
	textures   texture.Manager
	scenes     loader.Loader
}

// ResourceManagers owns every manager of a session. All managers share one GPU context,
// file system and logger. It is not safe for concurrent use.
type ResourceManagers interface {
	// Shaders returns the shader manager.
	//
	// Returns:
	//   - shader.Manager: the shader manager
	Shaders() shader.Manager

	// Buffers returns the buffer manager.
	//
	// Returns:
	//   - buffer.Manager: the buffer manager
	Buffers() buffer.Manager

	// BindGroups returns the binding-group loader.
	//
	// Returns:
	//   - bind_group_loader.Loader: the binding-group loader
	BindGroups() bind_group_loader.Loader

	// Pipelines returns the pipeline manager.
	//
	// Returns:
	//   - pipeline.Manager: the pipeline manager
	Pipelines() pipeline.Manager

	// Textures returns the texture manager.
	//
	// Returns:
	//   - texture.Manager: the texture manager
	Textures() texture.Manager

	// Scenes returns the scene loader.
	//
	// Returns:
	//   - loader.Loader: the scene loader
	Scenes() loader.Loader

	// Profiler returns the load statistics recorder.
	//
	// Returns:
	//   - *profiler.Profiler: the load statistics recorder
	Profiler() *profiler.Profiler

	// DepthFormat returns the depth format "default" resolves to in pipeline files.
	//
	// Returns:
	//   - wgpu.TextureFormat: the session depth format
	DepthFormat() wgpu.TextureFormat

	// LoadPipeline loads a pipeline file and records the load.
	//
	// Parameters:
	//   - path: the pipeline file path
	//   - cfg: the pipeline configuration
	//
	// Returns:
	//   - resource.Handle: the pipeline handle
	//   - error: error if the load fails
	LoadPipeline(path string, cfg pipeline.Configuration) (resource.Handle, error)

	// LoadBindings loads a binding-set file and records the load.
	//
	// Parameters:
	//   - path: the binding-set file path
	//
	// Returns:
	//   - []resource.Handle: one layout handle per set
	//   - error: error if the load fails
	LoadBindings(path string) ([]resource.Handle, error)

	// LoadScene ingests a glTF/GLB scene and records the load with its uploaded bytes.
	//
	// Parameters:
	//   - path: the scene file path
	//
	// Returns:
	//   - *loader.Scene: the scene
	//   - error: error if the load fails
	LoadScene(path string) (*loader.Scene, error)

	// Release frees every native object, dependents before their dependencies.
	Release()
}

var _ ResourceManagers = &resourceManagers{}

// NewResourceManagers builds every manager over ctx and files.
//
// Parameters:
//   - ctx: the GPU context every manager allocates through
//   - files: the file system descriptors, shaders and scenes are read from
//   - options: a variadic list of ResourceManagersBuilderOption functions
//
// Returns:
//   - ResourceManagers: the aggregate
func NewResourceManagers(ctx renderer.GPUContext, files platform.FileSystem, options ...ResourceManagersBuilderOption) ResourceManagers {
	r := &resourceManagers{
		logger:      slog.Default(),
		depthFormat: wgpu.TextureFormatDepth32Float,
	}
	for _, option := range options {
		option(r)
	}

	r.profiler = profiler.NewProfiler(r.logger)
	r.buffers = buffer.NewManager(ctx, buffer.WithLogger(r.logger))
	r.textures = texture.NewManager(ctx, texture.WithLogger(r.logger))
	r.shaders = shader.NewManager(ctx, files, append([]shader.ManagerBuilderOption{shader.WithLogger(r.logger)}, r.shaderOpts...)...)
	r.bindGroups = bind_group_loader.NewLoader(ctx, files, bind_group_loader.WithLogger(r.logger))
	r.pipelines = pipeline.NewManager(ctx, files, r.shaders, r.bindGroups,
		pipeline.WithLogger(r.logger),
		pipeline.WithDefaultDepthFormat(r.depthFormat))
	r.scenes = loader.NewLoader(files, r.buffers, append([]loader.LoaderBuilderOption{loader.WithLogger(r.logger)}, r.loaderOpts...)...)
	return r
}

func (r *resourceManagers) Shaders() shader.Manager {
	return r.shaders
}

func (r *resourceManagers) Buffers() buffer.Manager {
	return r.buffers
}

func (r *resourceManagers) BindGroups() bind_group_loader.Loader {
	return r.bindGroups
}

func (r *resourceManagers) Pipelines() pipeline.Manager {
	return r.pipelines
}

func (r *resourceManagers) Textures() texture.Manager {
	return r.textures
}

func (r *resourceManagers) Scenes() loader.Loader {
	return r.scenes
}

func (r *resourceManagers) Profiler() *profiler.Profiler {
	return r.profiler
}

func (r *resourceManagers) DepthFormat() wgpu.TextureFormat {
	return r.depthFormat
}

func (r *resourceManagers) LoadPipeline(path string, cfg pipeline.Configuration) (resource.Handle, error) {
	start := r.profiler.Begin()
	before := r.pipelines.Len()
	h, err := r.pipelines.Load(path, cfg)
	if err != nil {
		return resource.Handle{}, err
	}
	r.profiler.Record(resource.KindPipeline, start, 0, r.pipelines.Len() == before)
	return h, nil
}

func (r *resourceManagers) LoadBindings(path string) ([]resource.Handle, error) {
	start := r.profiler.Begin()
	before := r.bindGroups.Len()
	hs, err := r.bindGroups.Load(path)
	if err != nil {
		return nil, err
	}
	r.profiler.Record(resource.KindBindGroupLayout, start, 0, r.bindGroups.Len() == before)
	return hs, nil
}

func (r *resourceManagers) LoadScene(path string) (*loader.Scene, error) {
	start := r.profiler.Begin()
	_, hit := r.scenes.Get(path)
	bytes := r.buffers.TotalBytes()
	s, err := r.scenes.Load(path)
	if err != nil {
		return nil, err
	}
	r.profiler.Record(resource.KindMesh, start, r.buffers.TotalBytes()-bytes, hit)
	return s, nil
}

func (r *resourceManagers) Release() {
	r.scenes.Release()
	r.pipelines.Release()
	r.bindGroups.Release()
	r.shaders.Release()
	r.textures.Release()
	r.buffers.Release()
	r.logger.Info("resources released")
}
