package bind_group_loader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BindingType is the resource category occupying a binding slot.
type BindingType int

const (
	// BindingTypeUniform is a uniform buffer binding.
	BindingTypeUniform BindingType = iota

	// BindingTypeStorage is a storage buffer binding.
	BindingTypeStorage

	// BindingTypeTexture is a sampled texture binding.
	BindingTypeTexture

	// BindingTypeSampler is a sampler binding.
	BindingTypeSampler

	// BindingTypeStorageTexture is a storage texture binding.
	BindingTypeStorageTexture
)

var bindingTypeNames = map[string]BindingType{
	"uniform":         BindingTypeUniform,
	"storage":         BindingTypeStorage,
	"texture":         BindingTypeTexture,
	"sampler":         BindingTypeSampler,
	"storage_texture": BindingTypeStorageTexture,
}

func (t BindingType) String() string {
	for name, v := range bindingTypeNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// Binding is one validated entry of a binding set. Only the fields relevant to Type
// are meaningful.
type Binding struct {
	Slot       uint32
	Visibility wgpu.ShaderStage
	Type       BindingType

	// uniform and storage
	Dynamic        bool
	ReadOnly       bool
	MinBindingSize uint64

	// texture and storage_texture
	Dimension    wgpu.TextureViewDimension
	SampleType   wgpu.TextureSampleType
	Multisampled bool
	Format       wgpu.TextureFormat

	// sampler
	Comparison bool
}

// LayoutEntry translates the binding into its native layout entry.
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the entry
func (b Binding) LayoutEntry() wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    b.Slot,
		Visibility: b.Visibility,
	}
	switch b.Type {
	case BindingTypeUniform:
		entry.Buffer = wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: b.Dynamic,
			MinBindingSize:   b.MinBindingSize,
		}
	case BindingTypeStorage:
		bufferType := wgpu.BufferBindingTypeStorage
		if b.ReadOnly {
			bufferType = wgpu.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = wgpu.BufferBindingLayout{
			Type:             bufferType,
			HasDynamicOffset: b.Dynamic,
			MinBindingSize:   b.MinBindingSize,
		}
	case BindingTypeTexture:
		entry.Texture = wgpu.TextureBindingLayout{
			SampleType:    b.SampleType,
			ViewDimension: b.Dimension,
			Multisampled:  b.Multisampled,
		}
	case BindingTypeSampler:
		samplerType := wgpu.SamplerBindingTypeFiltering
		if b.Comparison {
			samplerType = wgpu.SamplerBindingTypeComparison
		}
		entry.Sampler = wgpu.SamplerBindingLayout{
			Type: samplerType,
		}
	case BindingTypeStorageTexture:
		access := wgpu.StorageTextureAccessWriteOnly
		if b.ReadOnly {
			access = wgpu.StorageTextureAccessReadOnly
		}
		entry.StorageTexture = wgpu.StorageTextureBindingLayout{
			Access:        access,
			Format:        b.Format,
			ViewDimension: b.Dimension,
		}
	}
	return entry
}

// visibilityNames maps the stage names accepted in a visibility list to stage flags.
var visibilityNames = map[string]wgpu.ShaderStage{
	"vertex":   wgpu.ShaderStageVertex,
	"fragment": wgpu.ShaderStageFragment,
	"compute":  wgpu.ShaderStageCompute,
}

// dimensionNames maps dimension strings to texture view dimensions.
var dimensionNames = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
	"3d":         wgpu.TextureViewDimension3D,
}

// storageDimensions lists the view dimensions a storage texture may use.
var storageDimensions = map[wgpu.TextureViewDimension]bool{
	wgpu.TextureViewDimension1D:      true,
	wgpu.TextureViewDimension2D:      true,
	wgpu.TextureViewDimension2DArray: true,
	wgpu.TextureViewDimension3D:      true,
}

// componentTypeNames maps sampled component type strings to texture sample types.
var componentTypeNames = map[string]wgpu.TextureSampleType{
	"float":              wgpu.TextureSampleTypeFloat,
	"unfilterable_float": wgpu.TextureSampleTypeUnfilterableFloat,
	"depth":              wgpu.TextureSampleTypeDepth,
	"sint":               wgpu.TextureSampleTypeSint,
	"uint":               wgpu.TextureSampleTypeUint,
}

// texelFormat pairs a storage texel format with the component type its channels read as.
type texelFormat struct {
	format    wgpu.TextureFormat
	component string
}

// texelFormatNames maps WGSL texel format names to their formats. These are the formats
// valid for storage textures.
var texelFormatNames = map[string]texelFormat{
	"rgba8unorm":  {wgpu.TextureFormatRGBA8Unorm, "float"},
	"rgba8snorm":  {wgpu.TextureFormatRGBA8Snorm, "float"},
	"rgba8uint":   {wgpu.TextureFormatRGBA8Uint, "uint"},
	"rgba8sint":   {wgpu.TextureFormatRGBA8Sint, "sint"},
	"rgba16uint":  {wgpu.TextureFormatRGBA16Uint, "uint"},
	"rgba16sint":  {wgpu.TextureFormatRGBA16Sint, "sint"},
	"rgba16float": {wgpu.TextureFormatRGBA16Float, "float"},
	"r32uint":     {wgpu.TextureFormatR32Uint, "uint"},
	"r32sint":     {wgpu.TextureFormatR32Sint, "sint"},
	"r32float":    {wgpu.TextureFormatR32Float, "float"},
	"rg32uint":    {wgpu.TextureFormatRG32Uint, "uint"},
	"rg32sint":    {wgpu.TextureFormatRG32Sint, "sint"},
	"rg32float":   {wgpu.TextureFormatRG32Float, "float"},
	"rgba32uint":  {wgpu.TextureFormatRGBA32Uint, "uint"},
	"rgba32sint":  {wgpu.TextureFormatRGBA32Sint, "sint"},
	"rgba32float": {wgpu.TextureFormatRGBA32Float, "float"},
	"bgra8unorm":  {wgpu.TextureFormatBGRA8Unorm, "float"},
}
