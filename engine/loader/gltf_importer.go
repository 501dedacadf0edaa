package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// placement is a mesh-bearing node with its composed world matrix.
type placement struct {
	name  string
	mesh  int
	world mgl32.Mat4
}

// placements walks the default scene, or every root node when the document has no
// scenes, and returns one placement per mesh-bearing node in depth-first order.
// A document without nodes places every mesh once at the origin.
func placements(doc *gltfDocument, path string) ([]placement, error) {
	if len(doc.Nodes) == 0 {
		out := make([]placement, len(doc.Meshes))
		for i := range doc.Meshes {
			out[i] = placement{name: meshName(doc, i), mesh: i, world: mgl32.Ident4()}
		}
		return out, nil
	}

	roots, err := rootNodes(doc, path)
	if err != nil {
		return nil, err
	}

	w := &nodeWalker{doc: doc, path: path, visited: make([]bool, len(doc.Nodes))}
	for _, root := range roots {
		if err := w.walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	return w.out, nil
}

func rootNodes(doc *gltfDocument, path string) ([]int, error) {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil {
			scene = *doc.Scene
		}
		if scene < 0 || scene >= len(doc.Scenes) {
			return nil, resource.NewConfigError(path, "scene", fmt.Sprint(scene),
				fmt.Errorf("%w: scene out of range", resource.ErrMalformed))
		}
		return doc.Scenes[scene].Nodes, nil
	}

	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

type nodeWalker struct {
	doc     *gltfDocument
	path    string
	visited []bool
	out     []placement
}

func (w *nodeWalker) walk(index int, parent mgl32.Mat4) error {
	field := fmt.Sprintf("nodes[%d]", index)
	if index < 0 || index >= len(w.doc.Nodes) {
		return resource.NewConfigError(w.path, field, "", fmt.Errorf("%w: node out of range", resource.ErrMalformed))
	}
	if w.visited[index] {
		return resource.NewConfigError(w.path, field, "", fmt.Errorf("%w: node reached twice", resource.ErrMalformed))
	}
	w.visited[index] = true

	node := &w.doc.Nodes[index]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		mesh := *node.Mesh
		if mesh < 0 || mesh >= len(w.doc.Meshes) {
			return resource.NewConfigError(w.path, field+".mesh", fmt.Sprint(mesh),
				fmt.Errorf("%w: mesh out of range", resource.ErrMalformed))
		}
		name := node.Name
		if name == "" {
			name = meshName(w.doc, mesh)
		}
		w.out = append(w.out, placement{name: name, mesh: mesh, world: world})
	}

	for _, c := range node.Children {
		if err := w.walk(c, world); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix returns the node's matrix, or its TRS triple composed as T*R*S.
func localMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}
	t := model.IdentityTransform()
	if node.Translation != nil {
		t.Translation = mgl32.Vec3(*node.Translation)
	}
	if r := node.Rotation; r != nil {
		t.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if node.Scale != nil {
		t.Scale = mgl32.Vec3(*node.Scale)
	}
	return t.Matrix()
}

func meshName(doc *gltfDocument, index int) string {
	if name := doc.Meshes[index].Name; name != "" {
		return name
	}
	return fmt.Sprintf("mesh%d", index)
}
