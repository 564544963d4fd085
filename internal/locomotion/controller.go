package locomotion

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is the walkable rectangle on the horizontal plane. Min and Max hold x and z.
type Bounds struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// Clamp limits p's x and z to the rectangle, independently per axis.
func (b Bounds) Clamp(p mgl32.Vec3) mgl32.Vec3 {
	p[0] = math32.Max(b.Min[0], math32.Min(b.Max[0], p[0]))
	p[2] = math32.Max(b.Min[1], math32.Min(b.Max[1], p[2]))
	return p
}

// Contains reports whether p's x and z are inside the rectangle.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] && p[2] >= b.Min[1] && p[2] <= b.Max[1]
}

// Config tunes walking speed and the walkable area.
type Config struct {
	BaseSpeed        float32 // units per second
	SprintMultiplier float32
	EyeHeight        float32
	Bounds           Bounds
}

// DefaultConfig returns the courtyard defaults: 0.9 u/s, x1.5 sprint, eye at y=0 and ±50 on x/z.
func DefaultConfig() Config {
	return Config{
		BaseSpeed:        0.9,
		SprintMultiplier: 1.5,
		EyeHeight:        0,
		Bounds: Bounds{
			Min: mgl32.Vec2{-50, -50},
			Max: mgl32.Vec2{50, 50},
		},
	}
}

// Controller integrates the locomotion state into camera displacement.
type Controller struct {
	Config Config
	State  *State
}

// NewController returns a controller reading state with the given tuning.
func NewController(cfg Config, state *State) *Controller {
	if state == nil {
		state = &State{}
	}
	return &Controller{Config: cfg, State: state}
}

// Step returns the camera position after dt seconds. Movement is relative to the view
// heading (look projected onto the horizontal plane) and only happens while active.
// The eye height and the bounds are enforced on every call, moving or not.
func (c *Controller) Step(pos, look mgl32.Vec3, dt float32, active bool) mgl32.Vec3 {
	if active && dt > 0 {
		pos = pos.Add(c.Displacement(look, dt))
	}
	pos[1] = c.Config.EyeHeight
	return c.Config.Bounds.Clamp(pos)
}

// Displacement returns the world-space move for one frame of held input.
// Diagonal input is normalized so it is no faster than axial input.
func (c *Controller) Displacement(look mgl32.Vec3, dt float32) mgl32.Vec3 {
	f, r := c.State.Axes()
	if f == 0 && r == 0 {
		return mgl32.Vec3{}
	}
	n := math32.Sqrt(f*f + r*r)
	speed := c.Config.BaseSpeed * dt
	if c.State.Pressed(Sprint) {
		speed *= c.Config.SprintMultiplier
	}
	f, r = f/n*speed, r/n*speed

	forward, right := HorizontalAxes(look)
	return forward.Mul(f).Add(right.Mul(r))
}

// HorizontalAxes returns unit forward and right vectors on the ground plane for a view
// direction. A vertical view direction falls back to -Z forward.
func HorizontalAxes(look mgl32.Vec3) (forward, right mgl32.Vec3) {
	forward = mgl32.Vec3{look[0], 0, look[2]}
	if forward.Len() < 1e-6 {
		forward = mgl32.Vec3{0, 0, -1}
	}
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	return forward, right
}
