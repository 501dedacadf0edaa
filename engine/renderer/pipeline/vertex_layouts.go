package pipeline

import (
	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// vertexPreset names a vertex state layout. Every preset binds one attribute per vertex
// buffer slot, matching how ingested meshes keep each attribute in its own stream.
type vertexPreset int

const (
	vertexPresetNone vertexPreset = iota
	vertexPresetPosition
	vertexPresetPositionNormal
	vertexPresetPositionNormalUV

	// vertexPresetMesh derives the streams from Configuration.VertexAttributes.
	vertexPresetMesh
)

var vertexPresetNames = map[string]vertexPreset{
	"none":               vertexPresetNone,
	"position":           vertexPresetPosition,
	"position_normal":    vertexPresetPositionNormal,
	"position_normal_uv": vertexPresetPositionNormalUV,
	"mesh":               vertexPresetMesh,
}

// attributes returns the attribute set a preset binds.
func (v vertexPreset) attributes(cfg Configuration) model.AttributeSet {
	switch v {
	case vertexPresetPosition:
		return model.Attributes(model.SemanticPosition)
	case vertexPresetPositionNormal:
		return model.Attributes(model.SemanticPosition, model.SemanticNormal)
	case vertexPresetPositionNormalUV:
		return model.Attributes(model.SemanticPosition, model.SemanticNormal, model.SemanticTexCoord0)
	case vertexPresetMesh:
		return cfg.VertexAttributes
	default:
		return 0
	}
}

// vertexLayouts builds one tightly packed vertex buffer layout per semantic in the set,
// ordered by shader location.
//
// Parameters:
//   - set: the attribute set
//
// Returns:
//   - []wgpu.VertexBufferLayout: the layouts, one per buffer slot
func vertexLayouts(set model.AttributeSet) []wgpu.VertexBufferLayout {
	semantics := set.Semantics()
	layouts := make([]wgpu.VertexBufferLayout, 0, len(semantics))
	for _, s := range semantics {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: s.ElementSize(),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         s.Format(),
				Offset:         0,
				ShaderLocation: s.Location(),
			}},
		})
	}
	return layouts
}
