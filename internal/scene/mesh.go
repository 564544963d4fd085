package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformedMesh is returned by Validate for meshes whose indices or groups point
// outside their vertex data.
var ErrMalformedMesh = errors.New("scene: malformed mesh")

// Group is a contiguous run of triangle indices drawn with Materials[Material] of the owning node.
type Group struct {
	Start    int // first index (multiple of 3)
	Count    int // number of indices
	Material int
}

// Mesh is indexed triangle geometry in the node's local space. When Indices is nil the
// positions are consumed three at a time.
type Mesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2 // optional, same length as Positions
	Indices   []uint32
	Groups    []Group // empty means one group using material 0

	bounds      Box
	boundsValid bool
}

// NewMesh returns an indexed mesh.
func NewMesh(positions []mgl32.Vec3, indices []uint32) *Mesh {
	return &Mesh{Positions: positions, Indices: indices}
}

// IndexCount returns the number of triangle corners.
func (m *Mesh) IndexCount() int {
	if m.Indices != nil {
		return len(m.Indices)
	}
	return len(m.Positions)
}

// TriangleCount returns the number of whole triangles.
func (m *Mesh) TriangleCount() int {
	return m.IndexCount() / 3
}

// Corner returns the vertex index used by triangle corner i.
func (m *Mesh) Corner(i int) int {
	if m.Indices != nil {
		return int(m.Indices[i])
	}
	return i
}

// Triangle returns the three local-space corners of triangle t. ok is false when an
// index points outside Positions.
func (m *Mesh) Triangle(t int) (a, b, c mgl32.Vec3, ok bool) {
	i := t * 3
	if i+2 >= m.IndexCount() {
		return a, b, c, false
	}
	ia, ib, ic := m.Corner(i), m.Corner(i+1), m.Corner(i+2)
	n := len(m.Positions)
	if ia >= n || ib >= n || ic >= n {
		return a, b, c, false
	}
	return m.Positions[ia], m.Positions[ib], m.Positions[ic], true
}

// MaterialGroups returns the groups to draw, synthesizing a single group when none are set.
func (m *Mesh) MaterialGroups() []Group {
	if len(m.Groups) > 0 {
		return m.Groups
	}
	return []Group{{Start: 0, Count: m.IndexCount(), Material: 0}}
}

// Bounds returns the local-space bounding box of all positions. It is computed once;
// call Invalidate after editing Positions.
func (m *Mesh) Bounds() Box {
	if m.boundsValid {
		return m.bounds
	}
	b := EmptyBox()
	for _, p := range m.Positions {
		b = b.Expand(p)
	}
	m.bounds = b
	m.boundsValid = true
	return b
}

// Invalidate drops cached derived data.
func (m *Mesh) Invalidate() {
	m.boundsValid = false
}

// Validate checks indices, UVs and groups against the vertex data.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d exceeds %d vertices", ErrMalformedMesh, idx, i, n)
		}
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrMalformedMesh, len(m.UVs), n)
	}
	total := m.IndexCount()
	for _, g := range m.Groups {
		if g.Start < 0 || g.Count < 0 || g.Start+g.Count > total || g.Material < 0 {
			return fmt.Errorf("%w: group %+v outside %d indices", ErrMalformedMesh, g, total)
		}
	}
	return nil
}
