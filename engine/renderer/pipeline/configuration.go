package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// Sub-tag bits carried by pipeline handles.
const (
	// SubTagCompute marks a compute pipeline handle.
	SubTagCompute resource.SubTag = 1 << 0

	// SubTagIndex16 marks a pipeline built for 16-bit strip indices.
	SubTagIndex16 resource.SubTag = 1 << 1
)

// Configuration holds the build-time choices that vary a pipeline built from one file.
// It is comparable and forms the cache key together with the path.
type Configuration struct {
	// IndexFormat is the strip index format used by strip topologies. The zero value
	// means 32-bit indices.
	IndexFormat wgpu.IndexFormat

	// VertexAttributes feeds the "mesh" vertex state preset.
	VertexAttributes model.AttributeSet
}

// DefaultConfiguration returns 32-bit indices and the position/normal/uv attribute set.
func DefaultConfiguration() Configuration {
	return Configuration{
		IndexFormat:      wgpu.IndexFormatUint32,
		VertexAttributes: model.Attributes(model.SemanticPosition, model.SemanticNormal, model.SemanticTexCoord0),
	}
}

// ConfigurationForMesh derives the configuration a mesh needs to be drawn.
//
// Parameters:
//   - mesh: the mesh
//
// Returns:
//   - Configuration: the matching configuration
func ConfigurationForMesh(mesh *model.Mesh) Configuration {
	cfg := Configuration{
		IndexFormat:      mesh.IndexFormat(),
		VertexAttributes: mesh.Attributes(),
	}
	if cfg.IndexFormat == wgpu.IndexFormatUndefined {
		cfg.IndexFormat = wgpu.IndexFormatUint32
	}
	return cfg
}

// normalized folds equivalent configurations onto one cache key.
func (c Configuration) normalized() Configuration {
	if c.IndexFormat == wgpu.IndexFormatUndefined {
		c.IndexFormat = wgpu.IndexFormatUint32
	}
	return c
}

// folded drops what the parsed descriptor ignores, so equivalent loads share one native
// pipeline. Vertex attributes only feed the mesh preset of raster pipelines. The index
// format is kept even for list topologies because it selects the handle sub-tag.
func (c Configuration) folded(d *descriptor) Configuration {
	if d.pipelineType != PipelineTypeRender || d.vertexState != vertexPresetMesh {
		c.VertexAttributes = 0
	}
	return c
}

// subTag returns the handle sub-tag for a pipeline of the given type built with c.
func (c Configuration) subTag(pipelineType PipelineType) resource.SubTag {
	var tag resource.SubTag
	if pipelineType == PipelineTypeCompute {
		tag |= SubTagCompute
	}
	if c.IndexFormat == wgpu.IndexFormatUint16 {
		tag |= SubTagIndex16
	}
	return tag
}

func (c Configuration) String() string {
	width := 32
	if c.IndexFormat == wgpu.IndexFormatUint16 {
		width = 16
	}
	return fmt.Sprintf("u%d:%v", width, c.VertexAttributes.Semantics())
}
