package loader

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// accessorTypes is the glTF element type each supported semantic must use. Components
// are always FLOAT.
var accessorTypes = map[model.Semantic]string{
	model.SemanticPosition:  gltfTypeVec3,
	model.SemanticNormal:    gltfTypeVec3,
	model.SemanticTexCoord0: gltfTypeVec2,
}

var topologies = map[int]wgpu.PrimitiveTopology{
	gltfModePoints:        wgpu.PrimitiveTopologyPointList,
	gltfModeLines:         wgpu.PrimitiveTopologyLineList,
	gltfModeLineStrip:     wgpu.PrimitiveTopologyLineStrip,
	gltfModeTriangles:     wgpu.PrimitiveTopologyTriangleList,
	gltfModeTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

// region locates an accessor's bytes inside a raw buffer.
type region struct {
	buffer int
	offset uint64
	length uint64
	stride uint64
	count  int
}

// vertexStream is a decoded attribute stream still addressed by raw buffer index.
type vertexStream struct {
	semantic model.Semantic
	region   region
}

// indexStream is a decoded index stream. Narrow streams hold uint16 elements and are
// widened before upload.
type indexStream struct {
	region region
	narrow bool
}

// primitiveLayout is everything needed to build one model.Mesh once the raw buffers
// have handles. It holds no GPU state, so it can be produced off the loading goroutine.
type primitiveLayout struct {
	name        string
	vertexCount uint32
	topology    wgpu.PrimitiveTopology
	vertices    []vertexStream
	indices     *indexStream
	skipped     []string
}

// meshExtractor validates the primitives of a parsed document and maps their accessors
// onto raw buffer regions. It only reads the document.
type meshExtractor struct {
	doc  *gltfDocument
	path string
}

func newMeshExtractor(doc *gltfDocument, path string) *meshExtractor {
	return &meshExtractor{doc: doc, path: path}
}

// extractMesh returns one layout per primitive of mesh meshIndex.
func (e *meshExtractor) extractMesh(meshIndex int) ([]primitiveLayout, error) {
	mesh := &e.doc.Meshes[meshIndex]
	name := meshName(e.doc, meshIndex)

	layouts := make([]primitiveLayout, 0, len(mesh.Primitives))
	for p := range mesh.Primitives {
		field := fmt.Sprintf("meshes[%d].primitives[%d]", meshIndex, p)
		layout, err := e.extractPrimitive(field, &mesh.Primitives[p])
		if err != nil {
			return nil, err
		}
		layout.name = fmt.Sprintf("%s.%d", name, p)
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

func (e *meshExtractor) extractPrimitive(field string, prim *gltfPrimitive) (primitiveLayout, error) {
	var layout primitiveLayout

	mode := gltfModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	topology, ok := topologies[mode]
	if !ok {
		return layout, resource.NewConfigError(e.path, field+".mode", fmt.Sprint(mode), resource.ErrUnsupported)
	}
	layout.topology = topology

	if _, ok := prim.Attributes[model.SemanticPosition.String()]; !ok {
		return layout, resource.NewConfigError(e.path, field+".attributes.POSITION", "", resource.ErrMissingField)
	}

	count := -1
	for _, name := range slices.Sorted(maps.Keys(prim.Attributes)) {
		semantic, ok := model.SemanticByName(name)
		if !ok {
			layout.skipped = append(layout.skipped, name)
			continue
		}
		attrField := field + ".attributes." + name
		r, err := e.attribute(attrField, prim.Attributes[name], semantic)
		if err != nil {
			return layout, err
		}
		if count >= 0 && r.count != count {
			return layout, resource.NewConfigError(e.path, attrField, fmt.Sprint(r.count),
				fmt.Errorf("%w: attribute counts differ (%d)", resource.ErrMalformed, count))
		}
		count = r.count
		layout.vertices = append(layout.vertices, vertexStream{semantic: semantic, region: r})
	}
	layout.vertexCount = uint32(count)

	if prim.Indices != nil {
		idx, err := e.indices(field+".indices", *prim.Indices)
		if err != nil {
			return layout, err
		}
		layout.indices = &idx
	}
	return layout, nil
}

func (e *meshExtractor) attribute(field string, accessorIndex int, semantic model.Semantic) (region, error) {
	acc, err := e.accessor(field, accessorIndex)
	if err != nil {
		return region{}, err
	}
	accField := fmt.Sprintf("accessors[%d]", accessorIndex)
	if acc.ComponentType != gltfComponentFloat {
		return region{}, resource.NewConfigError(e.path, accField+".componentType", fmt.Sprint(acc.ComponentType),
			fmt.Errorf("%w: %s requires FLOAT", resource.ErrUnsupported, semantic))
	}
	if want := accessorTypes[semantic]; acc.Type != want {
		return region{}, resource.NewConfigError(e.path, accField+".type", acc.Type,
			fmt.Errorf("%w: %s requires %s", resource.ErrUnsupported, semantic, want))
	}
	return e.locate(accessorIndex, int(semantic.ElementSize()))
}

func (e *meshExtractor) indices(field string, accessorIndex int) (indexStream, error) {
	acc, err := e.accessor(field, accessorIndex)
	if err != nil {
		return indexStream{}, err
	}
	accField := fmt.Sprintf("accessors[%d]", accessorIndex)
	if acc.Type != gltfTypeScalar {
		return indexStream{}, resource.NewConfigError(e.path, accField+".type", acc.Type, resource.ErrMalformed)
	}

	var narrow bool
	switch acc.ComponentType {
	case gltfComponentUnsignedShort:
		narrow = true
	case gltfComponentUnsignedInt:
	default:
		return indexStream{}, resource.NewConfigError(e.path, accField+".componentType", fmt.Sprint(acc.ComponentType), resource.ErrUnsupported)
	}

	size := componentSize(acc.ComponentType)
	r, err := e.locate(accessorIndex, size)
	if err != nil {
		return indexStream{}, err
	}
	if r.stride != uint64(size) {
		return indexStream{}, resource.NewConfigError(e.path, fmt.Sprintf("bufferViews[%d].byteStride", *acc.BufferView),
			fmt.Sprint(r.stride), fmt.Errorf("%w: index data must be tightly packed", resource.ErrMalformed))
	}
	if r.offset%uint64(size) != 0 {
		return indexStream{}, resource.NewConfigError(e.path, accField+".byteOffset", fmt.Sprint(r.offset),
			fmt.Errorf("%w: index offset not aligned to %d bytes", resource.ErrMalformed, size))
	}
	return indexStream{region: r, narrow: narrow}, nil
}

// accessor returns the accessor at index after rejecting forms the loader cannot map.
func (e *meshExtractor) accessor(field string, index int) (*gltfAccessor, error) {
	if index < 0 || index >= len(e.doc.Accessors) {
		return nil, resource.NewConfigError(e.path, field, fmt.Sprint(index),
			fmt.Errorf("%w: accessor out of range", resource.ErrMalformed))
	}
	acc := &e.doc.Accessors[index]
	accField := fmt.Sprintf("accessors[%d]", index)
	if acc.Sparse != nil {
		return nil, resource.NewConfigError(e.path, accField+".sparse", "", resource.ErrUnsupported)
	}
	if acc.BufferView == nil {
		return nil, resource.NewConfigError(e.path, accField+".bufferView", "", resource.ErrUnsupported)
	}
	if acc.Count <= 0 {
		return nil, resource.NewConfigError(e.path, accField+".count", fmt.Sprint(acc.Count), resource.ErrMalformed)
	}
	return acc, nil
}

// locate bounds-checks an accessor against its view and buffer and returns its region.
// The stride is the view stride or, for tightly packed views, the element size.
func (e *meshExtractor) locate(accessorIndex, elemSize int) (region, error) {
	acc := &e.doc.Accessors[accessorIndex]
	accField := fmt.Sprintf("accessors[%d]", accessorIndex)

	viewIndex := *acc.BufferView
	if viewIndex < 0 || viewIndex >= len(e.doc.BufferViews) {
		return region{}, resource.NewConfigError(e.path, accField+".bufferView", fmt.Sprint(viewIndex),
			fmt.Errorf("%w: buffer view out of range", resource.ErrMalformed))
	}
	view := &e.doc.BufferViews[viewIndex]
	viewField := fmt.Sprintf("bufferViews[%d]", viewIndex)
	if view.Buffer < 0 || view.Buffer >= len(e.doc.Buffers) {
		return region{}, resource.NewConfigError(e.path, viewField+".buffer", fmt.Sprint(view.Buffer),
			fmt.Errorf("%w: buffer out of range", resource.ErrMalformed))
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteLength > len(e.doc.Buffers[view.Buffer].Data)-view.ByteOffset {
		return region{}, resource.NewConfigError(e.path, viewField, "",
			fmt.Errorf("%w: view exceeds buffer %d", resource.ErrMalformed, view.Buffer))
	}

	stride := elemSize
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = *view.ByteStride
	}
	if stride < elemSize {
		return region{}, resource.NewConfigError(e.path, viewField+".byteStride", fmt.Sprint(stride),
			fmt.Errorf("%w: stride smaller than element size %d", resource.ErrMalformed, elemSize))
	}

	// Compared by division so huge counts cannot wrap the byte length.
	room := view.ByteLength - elemSize - acc.ByteOffset
	if acc.ByteOffset < 0 || room < 0 || acc.Count-1 > room/stride {
		return region{}, resource.NewConfigError(e.path, accField, fmt.Sprint(acc.Count),
			fmt.Errorf("%w: accessor exceeds buffer view %d", resource.ErrMalformed, viewIndex))
	}
	length := stride*(acc.Count-1) + elemSize

	return region{
		buffer: view.Buffer,
		offset: uint64(view.ByteOffset + acc.ByteOffset),
		length: uint64(length),
		stride: uint64(stride),
		count:  acc.Count,
	}, nil
}
