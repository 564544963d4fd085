package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit is one ray intersection. Node is the drawable node owning the hit triangle, which
// may be a descendant of the target that was tested.
type Hit struct {
	Node     *Node
	Distance float32
	Point    mgl32.Vec3
	Triangle int
}

// Raycast intersects the ray with every target and all of its descendants and returns
// the hits sorted nearest first, at most one per drawable node. Nodes whose mesh fails
// Validate are skipped; they never produce a hit.
func Raycast(r Ray, targets []*Node) []Hit {
	var hits []Hit
	seen := make(map[*Node]bool)
	for _, target := range targets {
		if target == nil {
			continue
		}
		target.Traverse(func(n *Node) {
			if seen[n] || !n.Drawable() {
				return
			}
			seen[n] = true
			if h, ok := intersectNode(r, n); ok {
				hits = append(hits, h)
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func intersectNode(r Ray, n *Node) (Hit, bool) {
	if n.Mesh.Validate() != nil {
		return Hit{}, false
	}
	world := n.World()
	if _, ok := r.IntersectBox(n.Mesh.Bounds().Transform(world)); !ok {
		return Hit{}, false
	}
	best := Hit{Node: n, Triangle: -1}
	for t := 0; t < n.Mesh.TriangleCount(); t++ {
		a, b, c, ok := n.Mesh.Triangle(t)
		if !ok {
			continue
		}
		a = mgl32.TransformCoordinate(a, world)
		b = mgl32.TransformCoordinate(b, world)
		c = mgl32.TransformCoordinate(c, world)
		d, ok := r.IntersectTriangle(a, b, c)
		if !ok {
			continue
		}
		if best.Triangle < 0 || d < best.Distance {
			best.Distance = d
			best.Triangle = t
		}
	}
	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

// Raycaster is the engine-side ray query used by interactive components.
type Raycaster interface {
	Intersect(r Ray, targets []*Node) ([]Hit, error)
}

// MeshRaycaster intersects against the CPU-side mesh data of the scene graph.
type MeshRaycaster struct{}

// Intersect implements Raycaster.
func (MeshRaycaster) Intersect(r Ray, targets []*Node) ([]Hit, error) {
	return Raycast(r, targets), nil
}
