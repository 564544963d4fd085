package locomotion

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casatour/internal/input"
)

var lookNorth = mgl32.Vec3{0, 0, -1}

func TestDiagonalIsNotFaster(t *testing.T) {
	axial := NewController(DefaultConfig(), nil)
	axial.State.Set(Forward, true)

	diag := NewController(DefaultConfig(), nil)
	diag.State.Set(Forward, true)
	diag.State.Set(Right, true)

	const dt = 0.5
	a := axial.Displacement(lookNorth, dt)
	d := diag.Displacement(lookNorth, dt)
	assert.InDelta(t, a.Len(), d.Len(), 1e-6)
	assert.InDelta(t, 0.9*dt, a.Len(), 1e-6)
	assert.Greater(t, d[0], float32(0), "strafe right moves toward +X when facing -Z")
}

func TestSprintMultiplier(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	c.State.Set(Back, true)
	c.State.Set(Sprint, true)
	d := c.Displacement(lookNorth, 1)
	assert.InDelta(t, 0.9*1.5, d.Len(), 1e-6)
	assert.Greater(t, d[2], float32(0))
}

func TestOpposingKeysCancel(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	c.State.Set(Left, true)
	c.State.Set(Right, true)
	assert.Equal(t, mgl32.Vec3{}, c.Displacement(lookNorth, 1))
}

func TestMovementFollowsHeadingOnGround(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	c.State.Set(Forward, true)

	up := mgl32.Vec3{1, 1, 0} // looking east and upward
	got := c.Step(mgl32.Vec3{}, up, 1, true)
	assert.InDelta(t, 0.9, got[0], 1e-6)
	assert.Equal(t, float32(0), got[1])
	assert.InDelta(t, 0, got[2], 1e-6)
}

func TestStepInactiveDoesNotMove(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	c.State.Set(Forward, true)
	got := c.Step(mgl32.Vec3{1, 0, 2}, lookNorth, 1, false)
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, got)
}

func TestClampAppliedEveryFrame(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	got := c.Step(mgl32.Vec3{1000, 5, 1000}, lookNorth, 0, false)
	assert.Equal(t, mgl32.Vec3{50, 0, 50}, got)
	assert.True(t, c.Config.Bounds.Contains(got))

	got = c.Step(mgl32.Vec3{-70, -3, 12}, lookNorth, 0.016, true)
	assert.Equal(t, mgl32.Vec3{-50, 0, 12}, got)
}

func TestCustomEyeHeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EyeHeight = 1.6
	c := NewController(cfg, nil)
	assert.Equal(t, float32(1.6), c.Step(mgl32.Vec3{0, 9, 0}, lookNorth, 0, false)[1])
}

func TestActionForKey(t *testing.T) {
	tests := []struct {
		key  input.Key
		want Action
	}{
		{input.KeyW, Forward},
		{input.KeyArrowUp, Forward},
		{input.KeyS, Back},
		{input.KeyArrowDown, Back},
		{input.KeyA, Left},
		{input.KeyLeft, Left},
		{input.KeyD, Right},
		{input.KeyRight, Right},
		{input.KeyLeftShift, Sprint},
		{input.KeyRightShift, Sprint},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got, ok := ActionForKey(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	_, ok := ActionForKey(input.KeyEscape)
	assert.False(t, ok)
}

func TestHandleKeyEdges(t *testing.T) {
	var s State
	assert.True(t, s.HandleKey(input.KeyW, true))
	assert.True(t, s.Pressed(Forward))
	assert.True(t, s.HandleKey(input.KeyW, false))
	assert.False(t, s.Pressed(Forward))
	assert.False(t, s.HandleKey(input.KeyF1, true))
}

func TestLookClampsPitchAndRoundTrips(t *testing.T) {
	l := NewLook()
	assert.InDelta(t, -1, l.Direction()[2], 1e-6)

	l.Move(0, -100000)
	assert.Less(t, l.Pitch, float32(1.5708))
	assert.Greater(t, l.Direction()[1], float32(0.99))

	dir := mgl32.Vec3{3, -1, 2}.Normalize()
	back := LookFrom(dir).Direction()
	assert.InDelta(t, dir[0], back[0], 1e-5)
	assert.InDelta(t, dir[1], back[1], 1e-5)
	assert.InDelta(t, dir[2], back[2], 1e-5)
}

func TestLookMoveTurnsRight(t *testing.T) {
	l := NewLook()
	l.Move(100, 0)
	assert.Greater(t, l.Direction()[0], float32(0))
}

func TestTouchPadDrivesState(t *testing.T) {
	var s State
	p := NewTouchPad(&s, 800, 600)

	var fwd TouchButton
	for _, b := range p.Buttons {
		if b.Action == Forward {
			fwd = b
		}
	}
	cx, cy := fwd.Rect.X+fwd.Rect.W/2, fwd.Rect.Y+fwd.Rect.H/2

	assert.True(t, p.TouchStart(1, cx, cy))
	assert.True(t, p.TouchStart(2, cx, cy))
	assert.True(t, s.Pressed(Forward))

	assert.True(t, p.TouchEnd(1))
	assert.True(t, s.Pressed(Forward), "second finger still holds the button")
	assert.True(t, p.TouchEnd(2))
	assert.False(t, s.Pressed(Forward))

	assert.False(t, p.TouchStart(3, 400, 100), "touches off the pad are left for look")
	assert.False(t, p.TouchEnd(3))
}

func TestTouchPadReleaseDropsHeldButtons(t *testing.T) {
	var s State
	p := NewTouchPad(&s, 800, 600)
	held := map[Action]bool{Forward: true, Left: true}
	for i, b := range p.Buttons {
		if held[b.Action] {
			require.True(t, p.TouchStart(i, b.Rect.X+1, b.Rect.Y+1))
		}
	}
	s.Set(Back, true)

	p.Release()
	for i, b := range p.Buttons {
		assert.False(t, p.Holding(i))
		assert.False(t, p.Pressed(b.Action))
	}
	assert.False(t, s.Pressed(Forward))
	assert.False(t, s.Pressed(Left))
	assert.True(t, s.Pressed(Back), "flags the pad never set are untouched")
	assert.False(t, p.TouchEnd(0))
}
