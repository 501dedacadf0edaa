package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// Format names with special meaning.
const (
	swapChainFormat    = "swap_chain_native"
	defaultDepthFormat = "default"
	defaultRaster      = "default"
)

// descriptor is the validated, typed form of a pipeline file. Shader names and layout
// paths are still unresolved; every enum has been translated.
type descriptor struct {
	pipelineType PipelineType
	layouts      []string

	vertex, fragment, compute *stageRef

	frontFace   wgpu.FrontFace
	cullMode    wgpu.CullMode
	depthBias   int32
	slopeScale  float32
	biasClamp   float32
	topology    wgpu.PrimitiveTopology
	colors      []colorTarget
	depth       *depthTarget
	vertexState vertexPreset
	sampleCount uint32
}

type stageRef struct {
	name       string
	entryPoint string
}

type colorTarget struct {
	// format is ignored when swapChain is set
	format    wgpu.TextureFormat
	swapChain bool
	blend     *wgpu.BlendState
	writeMask wgpu.ColorWriteMask
}

type depthTarget struct {
	// format is ignored when useDefault is set
	format       wgpu.TextureFormat
	useDefault   bool
	writeEnabled bool
	compare      wgpu.CompareFunction
}

// On-disk shapes.

type pipelineFile struct {
	Type               *string          `json:"type"`
	Layout             json.RawMessage  `json:"layout"`
	Vertex             *stageFile       `json:"vertex"`
	Fragment           *stageFile       `json:"fragment"`
	Compute            *stageFile       `json:"compute"`
	RasterizationState json.RawMessage  `json:"rasterization_state"`
	PrimitiveTopology  *string          `json:"primitive_topology"`
	ColorStates        []colorStateFile `json:"color_states"`
	DepthState         *depthStateFile  `json:"depth_state"`
	VertexState        *vertexStateFile `json:"vertex_state"`
	SampleCount        *uint32          `json:"sample_count"`
}

type stageFile struct {
	ShaderName *string `json:"shader_name"`
	EntryPoint string  `json:"entry_point"`
}

type rasterFile struct {
	Type        *string  `json:"type"`
	FrontFacing *string  `json:"front_facing"`
	CullMode    *string  `json:"cull_mode"`
	DepthBias   *int32   `json:"depth_bias"`
	SlopeScale  *float32 `json:"slope_scale"`
	BiasClamp   *float32 `json:"bias_clamp"`
}

type colorStateFile struct {
	Format     *string `json:"format"`
	ColorBlend *string `json:"color_blend"`
	AlphaBlend *string `json:"alpha_blend"`
	WriteMask  *string `json:"write_mask"`
}

type depthStateFile struct {
	Format       *string `json:"format"`
	WriteEnabled bool    `json:"write_enabled"`
	Compare      *string `json:"compare"`
}

type vertexStateFile struct {
	Type *string `json:"type"`
}

// Closed enum tables.

var pipelineTypeNames = map[string]PipelineType{
	"raster":  PipelineTypeRender,
	"compute": PipelineTypeCompute,
}

var topologyNames = map[string]wgpu.PrimitiveTopology{
	"pointList":     wgpu.PrimitiveTopologyPointList,
	"lineList":      wgpu.PrimitiveTopologyLineList,
	"lineStrip":     wgpu.PrimitiveTopologyLineStrip,
	"triangleList":  wgpu.PrimitiveTopologyTriangleList,
	"triangleStrip": wgpu.PrimitiveTopologyTriangleStrip,
}

var frontFaceNames = map[string]wgpu.FrontFace{
	"ccw": wgpu.FrontFaceCCW,
	"cw":  wgpu.FrontFaceCW,
}

var cullModeNames = map[string]wgpu.CullMode{
	"none":  wgpu.CullModeNone,
	"front": wgpu.CullModeFront,
	"back":  wgpu.CullModeBack,
}

var compareNames = map[string]wgpu.CompareFunction{
	"never":         wgpu.CompareFunctionNever,
	"less":          wgpu.CompareFunctionLess,
	"equal":         wgpu.CompareFunctionEqual,
	"less_equal":    wgpu.CompareFunctionLessEqual,
	"greater":       wgpu.CompareFunctionGreater,
	"not_equal":     wgpu.CompareFunctionNotEqual,
	"greater_equal": wgpu.CompareFunctionGreaterEqual,
	"always":        wgpu.CompareFunctionAlways,
}

var colorFormatNames = map[string]wgpu.TextureFormat{
	"rgba8unorm":      wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm_srgb": wgpu.TextureFormatRGBA8UnormSrgb,
	"bgra8unorm":      wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm_srgb": wgpu.TextureFormatBGRA8UnormSrgb,
	"rgba16float":     wgpu.TextureFormatRGBA16Float,
	"rgba32float":     wgpu.TextureFormatRGBA32Float,
	"rg16float":       wgpu.TextureFormatRG16Float,
	"r32float":        wgpu.TextureFormatR32Float,
	"r8unorm":         wgpu.TextureFormatR8Unorm,
}

// DepthFormatNames maps depth format names to formats. It is shared with the session
// configuration, which names its default depth format the same way.
var DepthFormatNames = map[string]wgpu.TextureFormat{
	"depth16unorm":         wgpu.TextureFormatDepth16Unorm,
	"depth24plus":          wgpu.TextureFormatDepth24Plus,
	"depth24plus_stencil8": wgpu.TextureFormatDepth24PlusStencil8,
	"depth32float":         wgpu.TextureFormatDepth32Float,
}

// blendComponents holds the color and alpha halves of each named blend mode.
var blendComponents = map[string][2]wgpu.BlendComponent{
	"replace": {
		{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationAdd},
		{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationAdd},
	},
	"over": {
		{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
	},
	"additive": {
		{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	},
}

var writeMaskChannels = map[rune]wgpu.ColorWriteMask{
	'r': wgpu.ColorWriteMaskRed,
	'g': wgpu.ColorWriteMaskGreen,
	'b': wgpu.ColorWriteMaskBlue,
	'a': wgpu.ColorWriteMaskAlpha,
}

// parseDescriptor decodes and validates a pipeline file.
//
// Parameters:
//   - path: the file path, used in error messages
//   - data: the raw JSON
//
// Returns:
//   - *descriptor: the typed descriptor
//   - error: a *resource.ConfigError on the first problem found
func parseDescriptor(path string, data []byte) (*descriptor, error) {
	var file pipelineFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, resource.NewConfigError(path, "", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}

	pipelineType, err := lookup(path, "type", file.Type, pipelineTypeNames)
	if err != nil {
		return nil, err
	}
	d := &descriptor{pipelineType: pipelineType, sampleCount: 1}

	if d.layouts, err = parseLayouts(path, file.Layout); err != nil {
		return nil, err
	}

	if pipelineType == PipelineTypeCompute {
		if d.compute, err = parseStage(path, "compute", file.Compute, true); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := parseRaster(path, &file, d); err != nil {
		return nil, err
	}
	return d, nil
}

func parseRaster(path string, file *pipelineFile, d *descriptor) error {
	var err error
	if d.vertex, err = parseStage(path, "vertex", file.Vertex, true); err != nil {
		return err
	}
	if d.fragment, err = parseStage(path, "fragment", file.Fragment, false); err != nil {
		return err
	}
	if err = parseRasterState(path, file.RasterizationState, d); err != nil {
		return err
	}
	if d.topology, err = lookup(path, "primitive_topology", file.PrimitiveTopology, topologyNames); err != nil {
		return err
	}

	for i, cs := range file.ColorStates {
		target, err := parseColorState(path, fmt.Sprintf("color_states[%d]", i), cs)
		if err != nil {
			return err
		}
		d.colors = append(d.colors, target)
	}
	if d.fragment != nil && len(d.colors) == 0 {
		return resource.NewConfigError(path, "color_states", "", resource.ErrMissingField)
	}

	if ds := file.DepthState; ds != nil {
		if d.depth, err = parseDepthState(path, ds); err != nil {
			return err
		}
	}

	if file.VertexState == nil {
		return resource.NewConfigError(path, "vertex_state", "", resource.ErrMissingField)
	}
	if d.vertexState, err = lookup(path, "vertex_state.type", file.VertexState.Type, vertexPresetNames); err != nil {
		return err
	}

	if file.SampleCount != nil {
		switch n := *file.SampleCount; n {
		case 1, 4:
			d.sampleCount = n
		default:
			return resource.NewConfigError(path, "sample_count", fmt.Sprint(n), resource.ErrUnsupported)
		}
	}
	return nil
}

// parseLayouts accepts a single path, an array of paths, or nothing.
func parseLayouts(path string, raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, resource.NewConfigError(path, "layout", "", resource.ErrMissingField)
		}
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, resource.NewConfigError(path, "layout", "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	for i, p := range many {
		if p == "" {
			return nil, resource.NewConfigError(path, fmt.Sprintf("layout[%d]", i), "", resource.ErrMissingField)
		}
	}
	return many, nil
}

func parseStage(path, field string, stage *stageFile, required bool) (*stageRef, error) {
	if stage == nil {
		if required {
			return nil, resource.NewConfigError(path, field, "", resource.ErrMissingField)
		}
		return nil, nil
	}
	if stage.ShaderName == nil || *stage.ShaderName == "" {
		return nil, resource.NewConfigError(path, field+".shader_name", "", resource.ErrMissingField)
	}
	return &stageRef{name: *stage.ShaderName, entryPoint: stage.EntryPoint}, nil
}

// parseRasterState accepts "default", {"type": "default"}, or the explicit fields.
func parseRasterState(path string, raw json.RawMessage, d *descriptor) error {
	const field = "rasterization_state"
	if isNull(raw) {
		return resource.NewConfigError(path, field, "", resource.ErrMissingField)
	}

	var preset string
	if err := json.Unmarshal(raw, &preset); err == nil {
		if preset != defaultRaster {
			return resource.NewConfigError(path, field, preset, resource.ErrUnknownValue)
		}
		d.frontFace, d.cullMode = wgpu.FrontFaceCCW, wgpu.CullModeBack
		return nil
	}

	var rs rasterFile
	if err := json.Unmarshal(raw, &rs); err != nil {
		return resource.NewConfigError(path, field, "", fmt.Errorf("%w: %v", resource.ErrMalformed, err))
	}
	if rs.Type != nil {
		if *rs.Type != defaultRaster {
			return resource.NewConfigError(path, field+".type", *rs.Type, resource.ErrUnknownValue)
		}
		d.frontFace, d.cullMode = wgpu.FrontFaceCCW, wgpu.CullModeBack
		return nil
	}

	var err error
	if d.frontFace, err = lookup(path, field+".front_facing", rs.FrontFacing, frontFaceNames); err != nil {
		return err
	}
	if d.cullMode, err = lookup(path, field+".cull_mode", rs.CullMode, cullModeNames); err != nil {
		return err
	}
	switch {
	case rs.DepthBias == nil:
		return resource.NewConfigError(path, field+".depth_bias", "", resource.ErrMissingField)
	case rs.SlopeScale == nil:
		return resource.NewConfigError(path, field+".slope_scale", "", resource.ErrMissingField)
	case rs.BiasClamp == nil:
		return resource.NewConfigError(path, field+".bias_clamp", "", resource.ErrMissingField)
	}
	d.depthBias, d.slopeScale, d.biasClamp = *rs.DepthBias, *rs.SlopeScale, *rs.BiasClamp
	return nil
}

func parseColorState(path, field string, cs colorStateFile) (colorTarget, error) {
	target := colorTarget{writeMask: wgpu.ColorWriteMaskAll}
	if cs.Format == nil {
		return target, resource.NewConfigError(path, field+".format", "", resource.ErrMissingField)
	}
	if *cs.Format == swapChainFormat {
		target.swapChain = true
	} else {
		format, err := lookup(path, field+".format", cs.Format, colorFormatNames)
		if err != nil {
			return target, err
		}
		target.format = format
	}

	color, err := lookup(path, field+".color_blend", cs.ColorBlend, blendComponents)
	if err != nil {
		return target, err
	}
	alpha, err := lookup(path, field+".alpha_blend", cs.AlphaBlend, blendComponents)
	if err != nil {
		return target, err
	}
	if *cs.ColorBlend != "replace" || *cs.AlphaBlend != "replace" {
		target.blend = &wgpu.BlendState{Color: color[0], Alpha: alpha[1]}
	}

	if cs.WriteMask != nil {
		mask, err := parseWriteMask(*cs.WriteMask)
		if err != nil {
			return target, resource.NewConfigError(path, field+".write_mask", *cs.WriteMask, err)
		}
		target.writeMask = mask
	}
	return target, nil
}

// parseWriteMask accepts "all", "none", or any combination of the letters r, g, b and a.
func parseWriteMask(s string) (wgpu.ColorWriteMask, error) {
	switch s {
	case "all":
		return wgpu.ColorWriteMaskAll, nil
	case "none":
		return 0, nil
	case "":
		return 0, resource.ErrMissingField
	}
	var mask wgpu.ColorWriteMask
	for _, c := range strings.ToLower(s) {
		bit, ok := writeMaskChannels[c]
		if !ok {
			return 0, resource.ErrUnknownValue
		}
		mask |= bit
	}
	return mask, nil
}

func parseDepthState(path string, ds *depthStateFile) (*depthTarget, error) {
	const field = "depth_state"
	target := &depthTarget{writeEnabled: ds.WriteEnabled}
	if ds.Format == nil {
		return nil, resource.NewConfigError(path, field+".format", "", resource.ErrMissingField)
	}
	if *ds.Format == defaultDepthFormat {
		target.useDefault = true
	} else {
		format, err := lookup(path, field+".format", ds.Format, DepthFormatNames)
		if err != nil {
			return nil, err
		}
		target.format = format
	}
	compare, err := lookup(path, field+".compare", ds.Compare, compareNames)
	if err != nil {
		return nil, err
	}
	target.compare = compare
	return target, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// lookup resolves a required enum string against its table.
func lookup[T any](path, field string, value *string, table map[string]T) (T, error) {
	var zero T
	if value == nil {
		return zero, resource.NewConfigError(path, field, "", resource.ErrMissingField)
	}
	v, ok := table[*value]
	if !ok {
		return zero, resource.NewConfigError(path, field, *value, resource.ErrUnknownValue)
	}
	return v, nil
}
