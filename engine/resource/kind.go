package resource

import "fmt"

// Kind identifies the category of native GPU object a Handle refers to.
// The numeric values are stored in the high KindBits of every handle.
type Kind uint16

const (
	// KindInvalid is the zero kind. No manager issues handles of this kind.
	KindInvalid Kind = iota

	// KindShader tags handles issued by the shader manager.
	KindShader

	// KindTexture tags handles issued by the texture manager.
	KindTexture

	// KindMesh tags mesh handles.
	KindMesh

	// KindBindGroupLayout tags handles issued by the binding-group loader.
	KindBindGroupLayout

	// KindPipeline tags handles issued by the pipeline manager.
	KindPipeline

	// KindBuffer tags handles issued by the buffer manager.
	KindBuffer

	kindCount
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindShader:          "Shader",
	KindTexture:         "Texture",
	KindMesh:            "Mesh",
	KindBindGroupLayout: "BindGroupLayout",
	KindPipeline:        "Pipeline",
	KindBuffer:          "Buffer",
}

// Valid reports whether k is one of the declared, non-invalid kinds.
//
// Returns:
//   - bool: true if k can tag a live handle
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}
