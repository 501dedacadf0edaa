// Package model holds the immutable, handle-only description of ingested geometry.
package model

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name      string
	meshes    []*Mesh
	transform mgl32.Mat4
	source    string
}

// Model is a placed group of meshes produced by scene ingestion. It references GPU
// buffers by handle only and never changes after it is built.
type Model interface {
	// Name retrieves the model identifier, the glTF node or mesh name.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the meshes of the model in document order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Transform retrieves the world placement of the model.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major world matrix
	Transform() mgl32.Mat4

	// Source retrieves the path of the document the model was ingested from.
	//
	// Returns:
	//   - string: the document path
	Source() string

	// Attributes returns the union of the attribute sets of every mesh.
	//
	// Returns:
	//   - AttributeSet: the combined attribute set
	Attributes() AttributeSet
}

var _ Model = &model{}

// NewModel is the entry point to create a Model. The transform defaults to identity.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		transform: mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return slices.Clone(m.meshes)
}

func (m *model) Transform() mgl32.Mat4 {
	return m.transform
}

func (m *model) Source() string {
	return m.source
}

func (m *model) Attributes() AttributeSet {
	var set AttributeSet
	for _, mesh := range m.meshes {
		set |= mesh.Attributes()
	}
	return set
}
