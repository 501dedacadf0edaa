package loader

import (
	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
)

// Scene is the result of ingesting one glTF document.
type Scene struct {
	// Path is the document path the scene was loaded from.
	Path string

	// Models holds one model per placed mesh, in scene traversal order.
	Models []model.Model

	// Buffers holds one handle per raw glTF buffer, in document order.
	Buffers []resource.Handle

	// IndexBuffers holds the widened index buffers created for 16-bit index data.
	IndexBuffers []resource.Handle
}

// MeshCount returns the number of meshes across all models. A mesh placed by several
// nodes is counted once per placement.
func (s *Scene) MeshCount() int {
	n := 0
	for _, m := range s.Models {
		n += len(m.Meshes())
	}
	return n
}

// Attributes returns the union of the attribute sets of every model.
func (s *Scene) Attributes() model.AttributeSet {
	var set model.AttributeSet
	for _, m := range s.Models {
		set |= m.Attributes()
	}
	return set
}

// handles returns every buffer handle the scene owns.
func (s *Scene) handles() []resource.Handle {
	out := make([]resource.Handle, 0, len(s.Buffers)+len(s.IndexBuffers))
	out = append(out, s.Buffers...)
	return append(out, s.IndexBuffers...)
}
