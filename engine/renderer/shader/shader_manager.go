package shader

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

var errUnknownShaderType = errors.New("unknown shader type")

// cacheKey identifies a shader request. Loads are deduplicated on it.
type cacheKey struct {
	shaderType ShaderType
	name       string
}

// manager is the implementation of the Manager interface.
type manager struct {
	ctx      renderer.GPUContext
	fs       platform.FileSystem
	compiler platform.ShaderCompiler
	logger   *slog.Logger

	preferPrecompiled bool

	counter uint64
	shaders map[uint64]*shader
	byName  map[cacheKey]resource.Handle
}

// Manager loads shader modules by logical name and stage. A (stage, name) pair is
// compiled at most once; later loads return the first handle. It is not safe for
// concurrent use.
type Manager interface {
	// Load resolves name plus the stage extension to a file, obtains bytecode and wraps
	// it into a native module. A precompiled "<name>.<ext>.spv" wins over
	// "<name>.<ext>.wgsl" unless precompiled artifacts are disabled.
	//
	// Parameters:
	//   - shaderType: the stage to load for
	//   - name: the logical shader name, a slash-separated path without extensions
	//
	// Returns:
	//   - resource.Handle: a handle tagged KindShader
	//   - error: error if the file cannot be read, compiled, or turned into a module
	Load(shaderType ShaderType, name string) (resource.Handle, error)

	// Resolve returns the loaded shader for a handle. It panics if the handle is not
	// tagged KindShader.
	//
	// Parameters:
	//   - h: the shader handle
	//
	// Returns:
	//   - Shader: the loaded shader
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Resolve(h resource.Handle) (Shader, error)

	// Len returns the number of loaded shader modules.
	//
	// Returns:
	//   - int: the module count
	Len() int

	// Release frees every module and empties both caches.
	Release()
}

var _ Manager = &manager{}

// NewManager creates a shader Manager reading from fs and creating modules through ctx.
// WGSL sources are compiled with the naga compiler unless WithCompiler overrides it.
//
// Parameters:
//   - ctx: the GPU context to create modules through
//   - fs: the file system holding shader files
//   - opts: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the shader manager
func NewManager(ctx renderer.GPUContext, fs platform.FileSystem, opts ...ManagerBuilderOption) Manager {
	m := &manager{
		ctx:               ctx,
		fs:                fs,
		compiler:          platform.NewNagaCompiler(),
		logger:            slog.Default(),
		preferPrecompiled: true,
		shaders:           make(map[uint64]*shader),
		byName:            make(map[cacheKey]resource.Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Load(shaderType ShaderType, name string) (resource.Handle, error) {
	key := cacheKey{shaderType: shaderType, name: name}
	if h, ok := m.byName[key]; ok {
		m.logger.Debug("shader cache hit", slog.String("name", name), slog.String("stage", shaderType.String()))
		return h, nil
	}

	ext := shaderType.Extension()
	if ext == "" {
		return resource.Handle{}, fmt.Errorf("shader %q: %w %d", name, errUnknownShaderType, int(shaderType))
	}
	base := name + "." + ext

	s := &shader{
		key:        base,
		name:       name,
		shaderType: shaderType,
	}
	desc, err := m.buildDescriptor(s, base)
	if err != nil {
		return resource.Handle{}, err
	}

	module, err := m.ctx.CreateShaderModule(desc)
	if err != nil {
		return resource.Handle{}, fmt.Errorf("failed to create shader module %q: %w", s.sourcePath, err)
	}
	s.module = module

	m.counter++
	h := resource.New(resource.KindShader, m.counter)
	m.shaders[m.counter] = s
	m.byName[key] = h

	m.logger.Info("shader loaded",
		slog.String("path", s.sourcePath),
		slog.String("stage", shaderType.String()),
		slog.String("entry_point", s.entryPoint),
		slog.Bool("precompiled", s.precompiled),
		slog.String("handle", h.String()))
	return h, nil
}

// buildDescriptor fills in the shader's source metadata and returns the module
// descriptor, preferring a precompiled artifact when one exists.
func (m *manager) buildDescriptor(s *shader, base string) (*wgpu.ShaderModuleDescriptor, error) {
	spvPath := base + ".spv"
	if m.preferPrecompiled && m.fs.Exists(spvPath) {
		code, err := m.fs.LoadBytes(spvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load precompiled shader: %w", err)
		}
		s.sourcePath = spvPath
		s.precompiled = true
		s.entryPoint = DefaultEntryPoint
		return &wgpu.ShaderModuleDescriptor{
			Label:           base,
			SPIRVDescriptor: &wgpu.ShaderModuleSPIRVDescriptor{Code: code},
		}, nil
	}

	wgslPath := base + ".wgsl"
	source, err := m.fs.LoadText(wgslPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load shader source: %w", err)
	}
	s.sourcePath = wgslPath
	s.entryPoint = parseEntryPoint(source, s.shaderType)
	if s.entryPoint == "" {
		return nil, resource.NewConfigError(wgslPath, "@"+s.shaderType.String(), "", resource.ErrMissingField)
	}
	if s.shaderType == ShaderTypeCompute {
		s.workGroupSize = parseWorkgroupSize(source)
	}

	if m.compiler == nil {
		return &wgpu.ShaderModuleDescriptor{
			Label:          base,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		}, nil
	}
	code, err := m.compiler.Compile(source, s.shaderType.Stage(), wgslPath)
	if err != nil {
		return nil, err
	}
	return &wgpu.ShaderModuleDescriptor{
		Label:           base,
		SPIRVDescriptor: &wgpu.ShaderModuleSPIRVDescriptor{Code: code},
	}, nil
}

func (m *manager) Resolve(h resource.Handle) (Shader, error) {
	h.MustBe(resource.KindShader)
	s, ok := m.shaders[h.Value()]
	if !ok {
		return nil, resource.NotFound(h)
	}
	return s, nil
}

func (m *manager) Len() int {
	return len(m.shaders)
}

func (m *manager) Release() {
	for key, s := range m.shaders {
		m.ctx.ReleaseObject(s.module)
		delete(m.shaders, key)
	}
	clear(m.byName)
}
