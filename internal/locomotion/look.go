package locomotion

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSensitivity is the look rotation per pixel of pointer or touch movement, in radians.
const DefaultSensitivity = 0.002

const maxPitch = math32.Pi/2 - 0.01

// Look is a yaw/pitch view orientation. Yaw 0 looks down -Z; positive pitch looks up.
// Mouse movement under pointer lock and single-finger touch drags feed the same Look.
type Look struct {
	Yaw         float32
	Pitch       float32
	Sensitivity float32
}

// NewLook returns a level orientation facing -Z.
func NewLook() *Look {
	return &Look{Sensitivity: DefaultSensitivity}
}

// LookFrom derives yaw and pitch from a direction vector.
func LookFrom(dir mgl32.Vec3) *Look {
	l := NewLook()
	if dir.Len() == 0 {
		return l
	}
	dir = dir.Normalize()
	l.Yaw = math32.Atan2(-dir[0], -dir[2])
	l.Pitch = clampPitch(math32.Asin(math32.Max(-1, math32.Min(1, dir[1]))))
	return l
}

// Move rotates the view by a pointer delta in pixels.
func (l *Look) Move(dx, dy float32) {
	l.Yaw -= dx * l.Sensitivity
	l.Pitch = clampPitch(l.Pitch - dy*l.Sensitivity)
}

// Direction returns the unit view direction.
func (l *Look) Direction() mgl32.Vec3 {
	cp := math32.Cos(l.Pitch)
	return mgl32.Vec3{
		-math32.Sin(l.Yaw) * cp,
		math32.Sin(l.Pitch),
		-math32.Cos(l.Yaw) * cp,
	}
}

func clampPitch(p float32) float32 {
	return math32.Max(-maxPitch, math32.Min(maxPitch, p))
}
