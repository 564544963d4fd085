// Package camera holds the engine-neutral perspective camera used for picking, marker
// projection, auto-framing and orbit controls. Rendering backends copy its pose into their
// own camera type each frame.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/scene"
)

// Fallback surface size used when the host reports a zero-sized viewport.
const (
	FallbackWidth  = 600
	FallbackHeight = 400
)

// Viewport is the pixel rectangle the scene is drawn into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// NewViewport returns a viewport at the origin, substituting the fallback size for zero dimensions.
func NewViewport(width, height float32) Viewport {
	if width <= 0 {
		width = FallbackWidth
	}
	if height <= 0 {
		height = FallbackHeight
	}
	return Viewport{Width: width, Height: height}
}

// Aspect returns width / height.
func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return float32(FallbackWidth) / FallbackHeight
	}
	return v.Width / v.Height
}

// NDC converts pixel coordinates to normalized device coordinates: x right and y up, both in [-1, 1].
func (v Viewport) NDC(px, py float32) mgl32.Vec2 {
	if v.Width <= 0 || v.Height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		(px-v.X)/v.Width*2 - 1,
		-(py-v.Y)/v.Height*2 + 1,
	}
}

// Screen converts NDC x/y back to pixel coordinates.
func (v Viewport) Screen(ndc mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		v.X + (ndc[0]*0.5+0.5)*v.Width,
		v.Y + (-ndc[1]*0.5+0.5)*v.Height,
	}
}

// Camera is a perspective camera. FovY is in degrees.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32
	Aspect   float32
	Near     float32
	Far      float32
}

// NewPerspective returns a camera at the origin looking down -Z with Y up.
func NewPerspective(fovY, aspect, near, far float32) *Camera {
	return &Camera{
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   fovY,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// LookAt aims the camera at p without moving it.
func (c *Camera) LookAt(p mgl32.Vec3) {
	c.Target = p
}

// Forward returns the normalized view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// Resize updates the aspect ratio for a new surface size. Zero sizes use the fallback
// size; calling it repeatedly with the same size is a no-op.
func (c *Camera) Resize(width, height float32) Viewport {
	v := NewViewport(width, height)
	c.Aspect = v.Aspect()
	return v
}

// Ray returns the world-space ray through a point given in NDC.
func (c *Camera) Ray(ndc mgl32.Vec2) scene.Ray {
	inv := c.Projection().Mul4(c.View()).Inv()
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndc[0], ndc[1], -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndc[0], ndc[1], 1}, inv)
	return scene.NewRay(near, far.Sub(near))
}

// Project maps a world point to NDC. The z component is < 1 for points in front of the
// far plane; ok is false for points behind the camera.
func (c *Camera) Project(p mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip[3]), true
}
