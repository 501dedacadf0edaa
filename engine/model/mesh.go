package model

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mesh is one drawable primitive: an ordered set of attribute streams and an optional
// index stream, all referencing GPU buffers by handle. A Mesh is immutable once built.
type Mesh struct {
	name        string
	vertexCount uint32
	vertices    []BufferMapper
	indices     *IndexMapper
	topology    wgpu.PrimitiveTopology
}

// NewMesh builds a Mesh. The mappers are copied and sorted into shader location order.
//
// Parameters:
//   - name: a debug name
//   - vertexCount: the number of vertices each attribute stream holds
//   - topology: the primitive topology the mesh is drawn with
//   - vertices: the attribute stream mappers
//   - indices: the index mapper, or nil for non-indexed meshes
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(name string, vertexCount uint32, topology wgpu.PrimitiveTopology, vertices []BufferMapper, indices *IndexMapper) *Mesh {
	sorted := slices.Clone(vertices)
	slices.SortFunc(sorted, func(a, b BufferMapper) int {
		return int(a.Semantic) - int(b.Semantic)
	})
	var idx *IndexMapper
	if indices != nil {
		copied := *indices
		idx = &copied
	}
	return &Mesh{
		name:        name,
		vertexCount: vertexCount,
		vertices:    sorted,
		indices:     idx,
		topology:    topology,
	}
}

// Name returns the debug name of the mesh.
//
// Returns:
//   - string: the name
func (m *Mesh) Name() string {
	return m.name
}

// VertexCount returns the number of vertices each attribute stream holds.
//
// Returns:
//   - uint32: the vertex count
func (m *Mesh) VertexCount() uint32 {
	return m.vertexCount
}

// Topology returns the primitive topology the mesh is drawn with.
//
// Returns:
//   - wgpu.PrimitiveTopology: the topology
func (m *Mesh) Topology() wgpu.PrimitiveTopology {
	return m.topology
}

// Vertices returns a copy of the attribute stream mappers in location order.
//
// Returns:
//   - []BufferMapper: the mappers
func (m *Mesh) Vertices() []BufferMapper {
	return slices.Clone(m.vertices)
}

// Vertex returns the mapper for a semantic.
//
// Parameters:
//   - s: the vertex semantic
//
// Returns:
//   - BufferMapper: the mapper
//   - bool: false if the mesh has no stream for s
func (m *Mesh) Vertex(s Semantic) (BufferMapper, bool) {
	for _, v := range m.vertices {
		if v.Semantic == s {
			return v, true
		}
	}
	return BufferMapper{}, false
}

// Indices returns the index mapper.
//
// Returns:
//   - IndexMapper: the mapper
//   - bool: false for non-indexed meshes
func (m *Mesh) Indices() (IndexMapper, bool) {
	if m.indices == nil {
		return IndexMapper{}, false
	}
	return *m.indices, true
}

// Attributes returns the set of semantics the mesh carries.
//
// Returns:
//   - AttributeSet: the semantics
func (m *Mesh) Attributes() AttributeSet {
	var set AttributeSet
	for _, v := range m.vertices {
		set |= Attributes(v.Semantic)
	}
	return set
}

// IndexFormat returns the index format of the mesh, or wgpu.IndexFormatUndefined when the
// mesh is not indexed.
//
// Returns:
//   - wgpu.IndexFormat: the index format
func (m *Mesh) IndexFormat() wgpu.IndexFormat {
	if m.indices == nil {
		return wgpu.IndexFormatUndefined
	}
	return m.indices.Format()
}
