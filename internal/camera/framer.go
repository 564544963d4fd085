package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/scene"
)

const (
	// FrameMargin scales the fitted distance so the whole box sits inside the frame with room to spare.
	FrameMargin = 1.5
	// FrameLift raises the camera by this fraction of the largest box dimension for an aerial three-quarter view.
	FrameLift = 0.3

	DefaultDistance = 50
	DefaultNear     = 0.1
	DefaultFar      = 2000
)

// Pose is the result of framing: where to put the camera and which clip planes to use.
type Pose struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Distance float32
	Near     float32
	Far      float32
}

// Frame computes a pose that shows box for a camera with the given vertical field of view
// in degrees. Clip planes scale with the box diagonal. Empty or zero-sized boxes and
// unusable field-of-view values fall back to DefaultDistance and the default clip planes.
func Frame(box scene.Box, fovY float32) Pose {
	center := box.Center()
	size := box.Size()
	diag := box.Diagonal()
	maxDim := math32.Max(size[0], math32.Max(size[1], size[2]))

	dist := float32(DefaultDistance)
	lift := float32(0)
	if finite(maxDim) && maxDim > 0 && fovY > 0 && fovY < 180 {
		half := mgl32.DegToRad(fovY) / 2
		if z := math32.Abs(maxDim/2/math32.Tan(half)) * FrameMargin; finite(z) && z > 0 {
			dist = z
		}
		lift = maxDim * FrameLift
	}

	near, far := float32(DefaultNear), float32(DefaultFar)
	if finite(diag) && diag > 0 {
		near, far = diag/100, diag*10
	}
	if !finite(center[0]) || !finite(center[1]) || !finite(center[2]) {
		center = mgl32.Vec3{}
	}

	return Pose{
		Position: mgl32.Vec3{center[0], center[1] + lift, center[2] + dist},
		Target:   center,
		Distance: dist,
		Near:     near,
		Far:      far,
	}
}

// ApplyPose moves the camera to p and aims it at p.Target.
func (c *Camera) ApplyPose(p Pose) {
	c.Position = p.Position
	c.LookAt(p.Target)
	c.Near = p.Near
	c.Far = p.Far
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
