package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// Orbit rotates a camera around a target point on a sphere, with damping, polar limits,
// wheel zoom and panning restricted to the horizontal plane.
// Input methods only accumulate deltas; Update applies them once per frame.
type Orbit struct {
	Target      mgl32.Vec3
	Damping     float32 // fraction of the pending motion applied per frame; 0 disables damping
	MinPolar    float32 // radians from +Y
	MaxPolar    float32
	MinDistance float32
	MaxDistance float32
	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	radius, theta, phi float32
	deltaTheta         float32
	deltaPhi           float32
	scale              float32
	pan                mgl32.Vec3
}

// NewOrbit returns orbit controls that keep the camera between a steep aerial angle and the horizon.
func NewOrbit() *Orbit {
	return &Orbit{
		Damping:     0.05,
		MinPolar:    math32.Pi * 0.1,
		MaxPolar:    math32.Pi * 0.5,
		MaxDistance: math32.Inf(1),
		RotateSpeed: 1,
		ZoomSpeed:   1,
		PanSpeed:    1,
		scale:       1,
	}
}

// Sync adopts the camera's current target and position as the orbit state and drops pending motion.
func (o *Orbit) Sync(c *Camera) {
	o.Target = c.Target
	o.radius, o.theta, o.phi = toSpherical(c.Position.Sub(o.Target))
	o.deltaTheta, o.deltaPhi = 0, 0
	o.scale = 1
	o.pan = mgl32.Vec3{}
}

// Rotate queues a rotation for a pointer drag of (dx, dy) pixels on a surface of the given height.
func (o *Orbit) Rotate(dx, dy, height float32) {
	if height <= 0 {
		return
	}
	o.deltaTheta -= 2 * math32.Pi * dx / height * o.RotateSpeed
	o.deltaPhi -= 2 * math32.Pi * dy / height * o.RotateSpeed
}

// Zoom queues a dolly for wheel steps; positive steps move toward the target.
func (o *Orbit) Zoom(steps float32) {
	o.scale *= math32.Pow(0.95, steps*o.ZoomSpeed)
}

// Pan queues a horizontal-plane translation for a drag of (dx, dy) pixels.
func (o *Orbit) Pan(c *Camera, dx, dy, height float32) {
	if height <= 0 {
		return
	}
	offset := c.Position.Sub(o.Target)
	world := offset.Len() * math32.Tan(mgl32.DegToRad(c.FovY)/2)

	forward := c.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() == 0 {
		return
	}
	right = right.Normalize()
	ahead := mgl32.Vec3{0, 1, 0}.Cross(right).Normalize()

	o.pan = o.pan.Sub(right.Mul(2 * dx * world / height * o.PanSpeed))
	o.pan = o.pan.Add(ahead.Mul(2 * dy * world / height * o.PanSpeed))
}

// Update applies pending motion to the camera and reports whether it moved noticeably.
func (o *Orbit) Update(c *Camera) bool {
	if o.radius == 0 {
		o.Sync(c)
	}
	before := c.Position

	if o.Damping > 0 {
		o.theta += o.deltaTheta * o.Damping
		o.phi += o.deltaPhi * o.Damping
		o.Target = o.Target.Add(o.pan.Mul(o.Damping))
	} else {
		o.theta += o.deltaTheta
		o.phi += o.deltaPhi
		o.Target = o.Target.Add(o.pan)
	}
	o.phi = clamp(o.phi, o.MinPolar, o.MaxPolar)
	o.phi = clamp(o.phi, polarEpsilon, math32.Pi-polarEpsilon)
	o.radius = clamp(o.radius*o.scale, o.MinDistance, o.MaxDistance)

	c.Target = o.Target
	c.Position = o.Target.Add(fromSpherical(o.radius, o.theta, o.phi))

	if o.Damping > 0 {
		o.deltaTheta *= 1 - o.Damping
		o.deltaPhi *= 1 - o.Damping
		o.pan = o.pan.Mul(1 - o.Damping)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.pan = mgl32.Vec3{}
	}
	o.scale = 1

	return c.Position.Sub(before).Len() > 1e-6
}

// Spherical convention: phi from +Y, theta around Y starting at +Z.
func toSpherical(v mgl32.Vec3) (radius, theta, phi float32) {
	radius = v.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	theta = math32.Atan2(v[0], v[2])
	phi = math32.Acos(clamp(v[1]/radius, -1, 1))
	return radius, theta, phi
}

func fromSpherical(radius, theta, phi float32) mgl32.Vec3 {
	s := math32.Sin(phi) * radius
	return mgl32.Vec3{s * math32.Sin(theta), math32.Cos(phi) * radius, s * math32.Cos(theta)}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
