package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/camera"
)

// toMatrix converts a column-major mgl32 matrix to raylib's layout.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

func toVector3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}

func toCamera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(c.Position),
		Target:     toVector3(c.Target),
		Up:         toVector3(c.Up),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}

// beginCamera enters 3D mode with the camera's own clip planes; raylib's defaults would
// cut the map off at 1000 units.
func beginCamera(c *camera.Camera) {
	rl.BeginMode3D(toCamera3D(c))
	rl.SetMatrixProjection(toMatrix(c.Projection()))
	rl.SetMatrixModelview(toMatrix(c.View()))
}
