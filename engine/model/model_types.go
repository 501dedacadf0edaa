package model

import (
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Vertex Attribute Types ---

// Semantic names the meaning of a vertex attribute stream.
type Semantic uint8

const (
	// SemanticPosition is the object-space vertex position, three float32 components.
	SemanticPosition Semantic = iota

	// SemanticNormal is the vertex normal, three float32 components.
	SemanticNormal

	// SemanticTexCoord0 is the first texture coordinate set, two float32 components.
	SemanticTexCoord0

	semanticCount
)

var semanticInfo = [semanticCount]struct {
	name   string
	format wgpu.VertexFormat
	size   uint64
}{
	SemanticPosition:  {"POSITION", wgpu.VertexFormatFloat32x3, 12},
	SemanticNormal:    {"NORMAL", wgpu.VertexFormatFloat32x3, 12},
	SemanticTexCoord0: {"TEXCOORD_0", wgpu.VertexFormatFloat32x2, 8},
}

// Semantics lists every supported semantic in shader location order.
var Semantics = []Semantic{SemanticPosition, SemanticNormal, SemanticTexCoord0}

// SemanticByName returns the semantic for a glTF attribute name.
//
// Parameters:
//   - name: the glTF attribute name, e.g. "POSITION"
//
// Returns:
//   - Semantic: the semantic
//   - bool: false if the name is not a supported semantic
func SemanticByName(name string) (Semantic, bool) {
	for _, s := range Semantics {
		if semanticInfo[s].name == name {
			return s, true
		}
	}
	return 0, false
}

func (s Semantic) String() string {
	if s < semanticCount {
		return semanticInfo[s].name
	}
	return "UNKNOWN"
}

// Format returns the vertex format the semantic is stored as.
func (s Semantic) Format() wgpu.VertexFormat {
	return semanticInfo[s].format
}

// ElementSize returns the byte size of one tightly packed element.
func (s Semantic) ElementSize() uint64 {
	return semanticInfo[s].size
}

// Location returns the shader input location the semantic binds to.
func (s Semantic) Location() uint32 {
	return uint32(s)
}

// AttributeSet is a bit set of semantics. It is comparable, so it can take part in
// cache keys.
type AttributeSet uint8

// Attributes builds a set from the given semantics.
func Attributes(semantics ...Semantic) AttributeSet {
	var set AttributeSet
	for _, s := range semantics {
		set |= 1 << s
	}
	return set
}

// Has reports whether s is in the set.
func (a AttributeSet) Has(s Semantic) bool {
	return a&(1<<s) != 0
}

// Semantics returns the members of the set in shader location order.
func (a AttributeSet) Semantics() []Semantic {
	out := make([]Semantic, 0, len(Semantics))
	for _, s := range Semantics {
		if a.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// --- Buffer Mapping Types ---

// BufferMapper locates one vertex attribute stream inside a GPU buffer.
type BufferMapper struct {
	Semantic Semantic
	Buffer   resource.Handle
	Offset   uint64
	Length   uint64
	Stride   uint64
	Format   wgpu.VertexFormat
}

// IndexMapper locates the index data of a mesh inside a GPU buffer.
type IndexMapper struct {
	Buffer resource.Handle
	Offset uint64
	Length uint64
	Count  uint32

	// Is16Bit is true only when the mapper references 16-bit elements. Ingestion widens
	// 16-bit source indices, so meshes built from glTF always report false.
	Is16Bit bool
}

// ElementSize returns the byte size of one index.
func (m IndexMapper) ElementSize() uint64 {
	if m.Is16Bit {
		return 2
	}
	return 4
}

// Format returns the native index format of the referenced elements.
func (m IndexMapper) Format() wgpu.IndexFormat {
	if m.Is16Bit {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

// --- Transform Types ---

// Transform represents a decomposed node transform.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform as translation * rotation * scale.
//
// Returns:
//   - mgl32.Mat4: the column-major transform matrix
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
