package mapview

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casatour/internal/camera"
	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/input"
	"casatour/internal/interact"
	"casatour/internal/loop"
	"casatour/internal/scene"
	"casatour/internal/scene/scenetest"
)

type stubLoader struct {
	root *scene.Node
	err  error
}

func (s stubLoader) Load(_ context.Context, _ string, progress download.Progress) (*scene.Node, error) {
	if progress != nil {
		progress(1)
	}
	return s.root, s.err
}

type failingRenderer struct {
	fails int
	calls int
}

func (r *failingRenderer) DrawMap(*Frame) error {
	r.calls++
	if r.calls <= r.fails {
		return errors.New("draw failed")
	}
	return nil
}

// houseAt is away from the origin, where markers of houses missing from the model stay.
var houseAt = mgl32.Vec3{20, 0, 0}

// district returns Manzana > casa4 (a textureless cube at houseAt) plus a malformed casa5.
func district() (root, house *scene.Node) {
	root = scene.NewNode("Scene")
	block := scene.NewNode("Manzana")
	root.Add(block)

	house = scene.NewNode("casa4")
	house.Mesh = scenetest.UnitCube()
	house.Transform = mgl32.Translate3D(houseAt[0], houseAt[1], houseAt[2])
	house.Materials = []*scene.Material{{Name: "Fachada", Texture: &scene.Texture{Name: "missing.png", Broken: true}, Opacity: 1}}
	block.Add(house)

	broken := scene.NewNode("casa5")
	broken.Mesh = scene.NewMesh(nil, []uint32{0, 1, 2})
	block.Add(broken)
	return root, house
}

func loaded(t *testing.T) (*Explorer, *scene.Node) {
	t.Helper()
	root, house := district()
	e := New(DefaultConfig(), stubLoader{root: root}, catalog.Default())
	e.HandleEvent(input.Event{Kind: input.Resize, X: 600, Y: 600})
	require.NoError(t, e.Load(context.Background()))
	e.Tick(0)
	return e, house
}

func TestLoadedHouseNavigatesToInterior(t *testing.T) {
	e, house := loaded(t)

	assert.Equal(t, 1, e.Registry.Len())
	assert.True(t, e.Registry.Contains(house))
	assert.True(t, e.Registry.Sealed())
	assert.Equal(t, 1, e.Stats().Skipped)
	assert.Equal(t, 1, e.Stats().Substituted)

	m := house.Materials[0]
	assert.Nil(t, m.Texture)
	assert.Equal(t, scene.FallbackGray, m.Color)
	assert.True(t, m.Unlit)

	e.HandleEvent(input.Event{Kind: input.PointerMove, X: 300, Y: 300})
	assert.Equal(t, house, e.Resolver.Hovered())
	assert.Equal(t, interact.CursorInteractive, e.Resolver.Cursor())

	e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 300})
	target, ok := e.Navigation()
	require.True(t, ok)
	assert.Equal(t, "/splat.html?id=casa4", target)

	_, ok = e.Navigation()
	assert.False(t, ok, "navigation is handed over once")
}

func TestBareHouseGetsMaterialAndEmptyMeshIsNotClickable(t *testing.T) {
	root := scene.NewNode("Scene")
	bare := scene.NewNode("casa4")
	bare.Mesh = scenetest.UnitCube()
	bare.Transform = mgl32.Translate3D(houseAt[0], houseAt[1], houseAt[2])
	root.Add(bare)
	empty := scene.NewNode("casa6")
	empty.Mesh = scene.NewMesh(nil, nil)
	root.Add(empty)

	e := New(DefaultConfig(), stubLoader{root: root}, catalog.Default())
	e.HandleEvent(input.Event{Kind: input.Resize, X: 600, Y: 600})
	require.NoError(t, e.Load(context.Background()))
	e.Tick(0)

	require.Len(t, bare.Materials, 1)
	assert.Equal(t, scene.FallbackGray, bare.Materials[0].Color)
	assert.True(t, bare.Highlightable())
	assert.True(t, e.Registry.Contains(bare))
	assert.False(t, e.Registry.Contains(empty))
	assert.Equal(t, 1, e.Stats().Clickable)

	e.HandleEvent(input.Event{Kind: input.PointerMove, X: 300, Y: 300})
	require.Equal(t, bare, e.Resolver.Hovered())
	assert.NotEqual(t, scene.FallbackGray, bare.Materials[0].Color)

	e.Resolver.Reset()
	assert.Equal(t, scene.FallbackGray, bare.Materials[0].Color)
}

func TestFailedLoadLeavesEmptyRegistry(t *testing.T) {
	e := New(DefaultConfig(), stubLoader{err: errors.New("404")}, nil)
	err := e.Load(context.Background())
	require.Error(t, err)

	assert.Equal(t, 0, e.Registry.Len())
	assert.True(t, e.Registry.Sealed())
	assert.Nil(t, e.Root())
	assert.Error(t, e.Err())

	assert.NotPanics(t, func() {
		res := e.Tick(0.016)
		assert.False(t, res.Failed())
		e.HandleEvent(input.Event{Kind: input.PointerMove, X: 300, Y: 200})
		e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 200})
	})
	_, ok := e.Navigation()
	assert.False(t, ok)

	placed := e.Overlay.Layout(600, 400)
	require.Len(t, placed, 1)
	assert.Equal(t, LoadFailedNotice, placed[0].Node.Text)
}

func TestNilSceneCountsAsFailure(t *testing.T) {
	e := New(DefaultConfig(), stubLoader{}, nil)
	assert.Error(t, e.Load(context.Background()))
	assert.Equal(t, 0, e.Registry.Len())
}

func TestAsyncLoadIsPickedUpByTick(t *testing.T) {
	root, _ := district()
	e := New(DefaultConfig(), stubLoader{root: root}, nil)
	e.StartLoad(context.Background())
	assert.True(t, e.Loading())

	require.Eventually(t, func() bool {
		e.Tick(0)
		return !e.Loading()
	}, time.Second, time.Millisecond)
	assert.Equal(t, root, e.Root())
	assert.Equal(t, 1, e.Registry.Len())
}

func TestMarkerBeyondFarPlaneIsHidden(t *testing.T) {
	e, _ := loaded(t)
	mk, ok := e.Markers.Get("casa4")
	require.True(t, ok)

	lifted := houseAt.Add(mgl32.Vec3{0, MarkerLift, 0})
	e.Camera.Position = lifted.Add(mgl32.Vec3{0, 0, e.Camera.Far * 2})
	e.Camera.LookAt(lifted)
	e.Orbit.Sync(e.Camera)
	e.Tick(0)
	assert.False(t, mk.Visible)

	e.Camera.Far *= 4
	e.Tick(0)
	assert.True(t, mk.Visible)
}

func TestDragDoesNotClick(t *testing.T) {
	e, _ := loaded(t)

	e.HandleEvent(input.Event{Kind: input.PointerDown, X: 300, Y: 300})
	e.HandleEvent(input.Event{Kind: input.PointerMove, X: 340, Y: 300, DX: 40})
	e.HandleEvent(input.Event{Kind: input.PointerUp, X: 340, Y: 300})
	e.HandleEvent(input.Event{Kind: input.Click, X: 340, Y: 300})

	_, ok := e.Navigation()
	assert.False(t, ok)
}

func TestMarkerAnchoredAndClickable(t *testing.T) {
	e, _ := loaded(t)

	mk, ok := e.Markers.Get("casa4")
	require.True(t, ok)
	assert.InDelta(t, 0, mk.Anchor.Sub(houseAt).Len(), 1e-5, "anchor is the house's world box centre")

	// Framing sets far to ten times the district diagonal, so stay well inside it.
	lifted := houseAt.Add(mgl32.Vec3{0, MarkerLift, 0})
	e.Camera.Position = lifted.Add(mgl32.Vec3{0, 0, 10})
	e.Camera.LookAt(lifted)
	e.Orbit.Sync(e.Camera)
	require.Less(t, float32(10), e.Camera.Far)
	e.Tick(0)

	require.True(t, mk.Visible)
	assert.InDelta(t, 300, mk.Screen[0], 1e-3)
	assert.InDelta(t, 300, mk.Screen[1], 1e-3)

	e.HandleEvent(input.Event{Kind: input.Click, X: 302, Y: 298})
	target, ok := e.Navigation()
	require.True(t, ok)
	assert.Equal(t, "/splat.html?id=casa4", target)
}

func TestMarkerBehindCameraIsHidden(t *testing.T) {
	m := NewMarkers([]catalog.House{{ID: "casa1", Number: 1}})
	cam := camera.NewPerspective(50, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 10}
	cam.LookAt(mgl32.Vec3{0, 0, 20})

	m.Project(cam, camera.Viewport{Width: 100, Height: 100})
	mk, _ := m.Get("casa1")
	assert.False(t, mk.Visible)

	cam.LookAt(mgl32.Vec3{})
	m.Project(cam, camera.Viewport{Width: 100, Height: 100})
	assert.True(t, mk.Visible)
	assert.False(t, m.SetAnchor("casa99", mgl32.Vec3{}))
}

func TestFlatMaterial(t *testing.T) {
	ready := &scene.Texture{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	red := scene.Hex(0xff0000)

	tests := []struct {
		name    string
		in      *scene.Material
		color   uint32
		texture bool
	}{
		{"missing material", nil, 0xaaaaaa, false},
		{"ready texture", &scene.Material{Texture: ready, Color: red, HasColor: true}, 0xffffff, true},
		{"broken texture keeps colour", &scene.Material{Texture: &scene.Texture{Broken: true}, Color: red, HasColor: true}, 0xff0000, false},
		{"pending texture without colour", &scene.Material{Texture: &scene.Texture{}}, 0xaaaaaa, false},
		{"plain colour", &scene.Material{Color: red, HasColor: true}, 0xff0000, false},
		{"nothing", &scene.Material{}, 0xaaaaaa, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FlatMaterial(tt.in)
			assert.Equal(t, scene.Hex(tt.color), out.Color)
			assert.Equal(t, tt.texture, out.Texture != nil)
			assert.True(t, out.Unlit)
			assert.Equal(t, float32(1), out.Opacity)
			assert.NotSame(t, tt.in, out)
		})
	}

	out := FlatMaterial(&scene.Material{Opacity: 0.4, Transparent: true})
	assert.Equal(t, float32(0.4), out.Opacity)
	assert.True(t, out.Transparent)
}

func TestRepairAfterFailedFrame(t *testing.T) {
	e, house := loaded(t)
	ready := &scene.Texture{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	house.Materials = []*scene.Material{
		{Texture: &scene.Texture{Broken: true}},
		{Texture: ready, Color: scene.Hex(0x123456), HasColor: true},
	}
	bare := scenetest.Drawable("bare", mgl32.Vec3{25, 0, 0})
	e.Root().Add(bare)

	e.HandleEvent(input.Event{Kind: input.PointerMove, X: 300, Y: 300})
	require.NotNil(t, e.Resolver.Hovered())

	r := &failingRenderer{fails: 1}
	e.Renderer = r
	d := loop.NewDriver()

	res := d.Step(e, 0.016)
	assert.True(t, res.Failed())
	assert.Nil(t, e.Resolver.Hovered())
	assert.Equal(t, scene.RepairGray, house.Materials[0].Color)
	assert.Nil(t, house.Materials[0].Texture)
	assert.Equal(t, scene.Hex(0x123456), house.Materials[1].Color)
	assert.Same(t, ready, house.Materials[1].Texture)
	require.Len(t, bare.Materials, 1)
	assert.Equal(t, scene.RepairGray, bare.Materials[0].Color)

	res = d.Step(e, 0.016)
	assert.False(t, res.Failed(), "the next frame runs normally")
	assert.Equal(t, uint64(1), d.Stats.Repairs)
}
