package model

import "github.com/go-gl/mathgl/mgl32"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes is an option builder that sets the meshes of the Model.
//
// Parameters:
//   - meshes: the meshes, in document order
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes ...*Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = append(m.meshes, meshes...)
	}
}

// WithTransform is an option builder that sets the world placement of the Model.
//
// Parameters:
//   - transform: the column-major world matrix
//
// Returns:
//   - ModelBuilderOption: a function that applies the transform option to a model
func WithTransform(transform mgl32.Mat4) ModelBuilderOption {
	return func(m *model) {
		m.transform = transform
	}
}

// WithSource is an option builder that records the document the Model came from.
//
// Parameters:
//   - path: the document path
//
// Returns:
//   - ModelBuilderOption: a function that applies the source option to a model
func WithSource(path string) ModelBuilderOption {
	return func(m *model) {
		m.source = path
	}
}
