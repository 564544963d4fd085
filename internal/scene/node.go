package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is one entity of a loaded scene graph. A node exclusively owns its children and
// only keeps a weak back-reference to its owner, so walks toward the root are plain loops.
// Metadata carries the asset's per-node extras (e.g. an explicit "houseId").
type Node struct {
	Name      string
	Metadata  map[string]any
	Transform mgl32.Mat4 // local transform relative to the parent
	Mesh      *Mesh
	Materials []*Material // one per mesh group; may be shared between nodes

	parent   *Node
	children []*Node
}

// NewNode returns a node with the given name and an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: mgl32.Ident4()}
}

// Parent returns the owner of n, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the nodes owned by n. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add makes child a child of n, detaching it from its previous owner first.
// Adding n to itself or to one of its descendants is ignored so the ownership chain stays acyclic.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	for cur := n; cur != nil; cur = cur.parent {
		if cur == child {
			return
		}
	}
	if child.parent != nil {
		child.parent.remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// World returns the node's world transform (product of local transforms from the root down).
func (n *Node) World() mgl32.Mat4 {
	m := n.Transform
	for cur := n.parent; cur != nil; cur = cur.parent {
		m = cur.Transform.Mul4(m)
	}
	return m
}

// Drawable reports whether the node carries renderable triangle geometry.
func (n *Node) Drawable() bool {
	return n.Mesh != nil && n.Mesh.TriangleCount() > 0
}

// Highlightable reports whether the node has geometry and at least one material whose
// colour can be changed to show hover feedback.
func (n *Node) Highlightable() bool {
	if !n.Drawable() {
		return false
	}
	for _, m := range n.Materials {
		if m != nil {
			return true
		}
	}
	return false
}

// Traverse visits n and all its descendants in pre-order. It uses an explicit stack so
// very deep hierarchies do not grow the goroutine stack.
func (n *Node) Traverse(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// WorldBox returns the world-space bounds of all geometry under n (n included).
// The result is empty when the subtree has no drawable nodes.
func (n *Node) WorldBox() Box {
	box := EmptyBox()
	n.Traverse(func(d *Node) {
		if !d.Drawable() {
			return
		}
		box = box.Union(d.Mesh.Bounds().Transform(d.World()))
	})
	return box
}

// Path returns a slash-separated path of names from the root, used in log fields.
// Unnamed nodes show as "?".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		name := cur.Name
		if name == "" {
			name = "?"
		}
		parts = append(parts, name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
