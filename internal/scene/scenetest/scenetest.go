// Package scenetest builds small scene graphs for tests.
package scenetest

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/scene"
)

// BoxMesh returns a closed 12-triangle box spanning min..max.
func BoxMesh(min, max mgl32.Vec3) *scene.Mesh {
	p := []mgl32.Vec3{
		{min[0], min[1], min[2]}, {max[0], min[1], min[2]}, {max[0], max[1], min[2]}, {min[0], max[1], min[2]},
		{min[0], min[1], max[2]}, {max[0], min[1], max[2]}, {max[0], max[1], max[2]}, {min[0], max[1], max[2]},
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3, // back
		4, 6, 5, 4, 7, 6, // front
		0, 4, 5, 0, 5, 1, // bottom
		3, 2, 6, 3, 6, 7, // top
		0, 3, 7, 0, 7, 4, // left
		1, 5, 6, 1, 6, 2, // right
	}
	return scene.NewMesh(p, idx)
}

// UnitCube returns a cube of side 1 centred on the origin.
func UnitCube() *scene.Mesh {
	return BoxMesh(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})
}

// Drawable returns a named node with a unit cube translated to at and one material per colour.
func Drawable(name string, at mgl32.Vec3, colors ...color.RGBA) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = UnitCube()
	n.Transform = mgl32.Translate3D(at[0], at[1], at[2])
	for _, c := range colors {
		n.Materials = append(n.Materials, &scene.Material{Color: c, HasColor: true, Opacity: 1})
	}
	return n
}
