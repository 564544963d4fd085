package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casatour/internal/scene"
)

func TestFrameUnitCube(t *testing.T) {
	box := scene.NewBox(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})
	p := Frame(box, 50)

	want := 0.5 / math32.Tan(mgl32.DegToRad(25)) * FrameMargin
	assert.InDelta(t, want, p.Distance, 1e-4)
	assert.Greater(t, p.Distance, float32(0))
	assert.InDelta(t, 0.3, p.Position[1], 1e-5)
	assert.InDelta(t, want, p.Position[2], 1e-4)
	assert.Equal(t, mgl32.Vec3{}, p.Target)

	assert.Greater(t, p.Near, float32(0))
	assert.Less(t, p.Near, p.Far)
	assert.InDelta(t, math32.Sqrt(3)/100, p.Near, 1e-5)
	assert.InDelta(t, math32.Sqrt(3)*10, p.Far, 1e-4)
}

func TestFrameOffCenterBox(t *testing.T) {
	box := scene.NewBox(mgl32.Vec3{90, 0, -10}, mgl32.Vec3{110, 4, 10})
	p := Frame(box, 50)

	assert.Equal(t, mgl32.Vec3{100, 2, 0}, p.Target)
	assert.InDelta(t, 2+20*FrameLift, p.Position[1], 1e-4)
	assert.InDelta(t, 100, p.Position[0], 1e-5)
}

func TestFrameDegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		box  scene.Box
		fov  float32
	}{
		{"empty box", scene.EmptyBox(), 50},
		{"point box", scene.NewBox(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{3, 3, 3}), 50},
		{"zero fov", scene.NewBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), 0},
		{"straight fov", scene.NewBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Frame(tt.box, tt.fov)
			assert.Equal(t, float32(DefaultDistance), p.Distance)
			assert.False(t, math32.IsNaN(p.Position[2]))
			assert.Greater(t, p.Near, float32(0))
			assert.Less(t, p.Near, p.Far)
		})
	}
}

func TestApplyPose(t *testing.T) {
	c := NewPerspective(50, 1.5, 0.1, 2000)
	p := Frame(scene.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}), c.FovY)
	c.ApplyPose(p)
	assert.Equal(t, p.Position, c.Position)
	assert.Equal(t, p.Target, c.Target)
	assert.Equal(t, p.Near, c.Near)
	assert.Equal(t, p.Far, c.Far)
}

func TestViewportNDC(t *testing.T) {
	v := Viewport{X: 10, Y: 20, Width: 200, Height: 100}
	assert.Equal(t, mgl32.Vec2{0, 0}, v.NDC(110, 70))
	assert.Equal(t, mgl32.Vec2{-1, 1}, v.NDC(10, 20))
	assert.Equal(t, mgl32.Vec2{1, -1}, v.NDC(210, 120))

	s := v.Screen(v.NDC(42, 33))
	assert.InDelta(t, 42, s[0], 1e-4)
	assert.InDelta(t, 33, s[1], 1e-4)
}

func TestResizeIsIdempotentAndFallsBack(t *testing.T) {
	c := NewPerspective(50, 1, 0.1, 100)
	v1 := c.Resize(800, 400)
	v2 := c.Resize(800, 400)
	assert.Equal(t, v1, v2)
	assert.Equal(t, float32(2), c.Aspect)

	v := c.Resize(0, 0)
	assert.Equal(t, float32(FallbackWidth), v.Width)
	assert.InDelta(t, 1.5, c.Aspect, 1e-6)
}

func TestRayThroughCenterFollowsView(t *testing.T) {
	c := NewPerspective(50, 1, 0.1, 100)
	c.Position = mgl32.Vec3{0, 0, 10}
	c.LookAt(mgl32.Vec3{})

	r := c.Ray(mgl32.Vec2{})
	assert.InDelta(t, -1, r.Dir[2], 1e-4)
	assert.InDelta(t, 0, r.Dir[0], 1e-4)
	assert.InDelta(t, 9.9, r.Origin[2], 1e-3, "origin lies on the near plane")

	right := c.Ray(mgl32.Vec2{1, 0})
	assert.Greater(t, right.Dir[0], float32(0))
}

func TestProjectRoundTripsWithRay(t *testing.T) {
	c := NewPerspective(60, 1.5, 0.1, 500)
	c.Position = mgl32.Vec3{5, 8, 20}
	c.LookAt(mgl32.Vec3{0, 0, 0})

	ndc, ok := c.Project(mgl32.Vec3{1, 2, 3})
	require.True(t, ok)
	assert.Less(t, ndc[2], float32(1))

	r := c.Ray(mgl32.Vec2{ndc[0], ndc[1]})
	toPoint := mgl32.Vec3{1, 2, 3}.Sub(r.Origin).Normalize()
	assert.InDelta(t, 1, toPoint.Dot(r.Dir), 1e-4)

	_, ok = c.Project(mgl32.Vec3{5, 8, 40})
	assert.False(t, ok, "points behind the camera are not projected")
}

func TestOrbitClampsPolarAngle(t *testing.T) {
	c := NewPerspective(50, 1, 0.1, 2000)
	c.Position = mgl32.Vec3{0, 10, 30}
	c.LookAt(mgl32.Vec3{})

	o := NewOrbit()
	o.Damping = 0
	o.Sync(c)

	o.Rotate(0, -5000, 500) // drag far upward: camera would go under the horizon
	o.Update(c)
	assert.GreaterOrEqual(t, c.Position[1], float32(-1e-3), "polar angle capped at the horizon")
	_, _, phi := toSpherical(c.Position.Sub(o.Target))
	assert.InDelta(t, o.MaxPolar, phi, 1e-3)

	o.Rotate(0, 5000, 500)
	o.Update(c)
	_, _, phi = toSpherical(c.Position.Sub(o.Target))
	assert.InDelta(t, o.MinPolar, phi, 1e-3)
}

func TestOrbitDampingAndZoom(t *testing.T) {
	c := NewPerspective(50, 1, 0.1, 2000)
	c.Position = mgl32.Vec3{0, 10, 30}
	o := NewOrbit()
	o.Sync(c)
	start := c.Position.Len()

	o.Zoom(3)
	o.Update(c)
	assert.Less(t, c.Position.Len(), start)

	o.Rotate(100, 0, 500)
	first := c.Position
	o.Update(c)
	moved := c.Position.Sub(first).Len()
	assert.Greater(t, moved, float32(0))

	second := c.Position
	o.Update(c)
	assert.Less(t, c.Position.Sub(second).Len(), moved, "damping decays pending rotation")
}

func TestOrbitPanStaysHorizontal(t *testing.T) {
	c := NewPerspective(50, 1, 0.1, 2000)
	c.Position = mgl32.Vec3{0, 20, 20}
	o := NewOrbit()
	o.Damping = 0
	o.Sync(c)

	o.Pan(c, 40, 25, 400)
	o.Update(c)
	assert.InDelta(t, 0, o.Target[1], 1e-5)
	assert.NotEqual(t, float32(0), o.Target[0])
}
