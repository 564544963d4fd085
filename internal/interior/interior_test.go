package interior

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/input"
	"casatour/internal/loader"
	"casatour/internal/locomotion"
	"casatour/internal/loop"
	"casatour/internal/scene"
	"casatour/internal/splat"
)

type stubAssets struct {
	cloud  *splat.Cloud
	err    error
	skyErr error
	asked  []string
}

func (s *stubAssets) Cloud(_ context.Context, src string, progress download.Progress) (*splat.Cloud, error) {
	s.asked = append(s.asked, src)
	if progress != nil {
		progress(1)
	}
	return s.cloud, s.err
}

func (s *stubAssets) Sky(context.Context, string) (*scene.Texture, error) {
	if s.skyErr != nil {
		return nil, s.skyErr
	}
	return &scene.Texture{Name: "sky", Image: image.NewRGBA(image.Rect(0, 0, 2, 1))}, nil
}

type countingRenderer struct {
	fails  int
	frames []Frame
}

func (r *countingRenderer) DrawInterior(f *Frame) error {
	r.frames = append(r.frames, *f)
	if len(r.frames) <= r.fails {
		return errors.New("draw failed")
	}
	return nil
}

func cloudOf(points ...mgl32.Vec3) *splat.Cloud {
	c := &splat.Cloud{Bounds: scene.EmptyBox()}
	for _, p := range points {
		c.Points = append(c.Points, splat.Point{Position: p, Color: color.RGBA{A: 0xff}})
		c.Bounds = c.Bounds.Expand(p)
	}
	return c
}

func newExplorer(t *testing.T, cfg Config, id string) *Explorer {
	t.Helper()
	e := New(cfg, &stubAssets{cloud: cloudOf(mgl32.Vec3{})}, catalog.Default(), id)
	e.HandleEvent(input.Event{Kind: input.Resize, X: 600, Y: 600})
	e.Tick(0)
	return e
}

func TestUnknownHouseFallsBack(t *testing.T) {
	for _, id := range []string{"", "casa99", "nope"} {
		e := New(DefaultConfig(), nil, nil, id)
		assert.Equal(t, catalog.FallbackID, e.House.ID, "id %q", id)
		assert.Equal(t, "/splats/gs_Anahuac_0.ply", e.House.Splat)
	}
	e := New(DefaultConfig(), nil, nil, "casa4")
	assert.Equal(t, "casa4", e.House.ID)
}

func TestLoadRotatesAndSubsamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPoints = 2
	assets := &stubAssets{cloud: cloudOf(mgl32.Vec3{0, 1, 2}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2}, mgl32.Vec3{3, 3, 3})}
	e := New(cfg, assets, nil, "casa4")

	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, []string{"/splats/gs_Ventana_0.ply"}, assets.asked)
	require.Len(t, e.Cloud().Points, 2)

	p := e.Cloud().Points[0].Position
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, -1, p[1], 1e-5)
	assert.InDelta(t, -2, p[2], 1e-5)
}

func TestAsyncLoad(t *testing.T) {
	e := New(DefaultConfig(), &stubAssets{cloud: cloudOf(mgl32.Vec3{1, 2, 3})}, nil, "casa2")
	e.StartLoad(context.Background())
	require.True(t, e.Loading())

	require.Eventually(t, func() bool {
		e.Tick(0)
		return !e.Loading() && e.sky != nil
	}, time.Second, time.Millisecond)
	require.NotNil(t, e.Cloud())
	assert.NoError(t, e.Err())
}

func TestFailedLoadShowsNotice(t *testing.T) {
	e := New(DefaultConfig(), &stubAssets{err: errors.New("404"), skyErr: errors.New("no sky")}, nil, "casa3")
	require.Error(t, e.Load(context.Background()))
	assert.Nil(t, e.Cloud())
	assert.Nil(t, e.sky)

	res := e.Tick(0.016)
	assert.False(t, res.Failed())
	var texts []string
	for _, p := range e.Overlay.Layout(600, 600) {
		texts = append(texts, p.Node.Text)
	}
	assert.Contains(t, texts, LoadFailedNotice)
	assert.Contains(t, texts, BackLabel)
	assert.Contains(t, texts, Hint)
}

func TestMovementNeedsPointerLock(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa1")

	e.HandleEvent(input.Event{Kind: input.KeyDown, Key: input.KeyW})
	e.Tick(1)
	assert.Equal(t, mgl32.Vec3{}, e.Camera.Position, "keys alone do not move")

	e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 300})
	require.True(t, e.Locked())
	e.Tick(1)
	assert.InDelta(t, -0.9, e.Camera.Position[2], 1e-5)
	assert.InDelta(t, 0, e.Camera.Position[0], 1e-5)

	e.HandleEvent(input.Event{Kind: input.KeyDown, Key: input.KeyLeftShift})
	before := e.Camera.Position
	e.Tick(1)
	assert.InDelta(t, 0.9*1.5, before.Sub(e.Camera.Position).Len(), 1e-5)

	e.HandleEvent(input.Event{Kind: input.KeyDown, Key: input.KeyEscape})
	assert.False(t, e.Locked())
	before = e.Camera.Position
	e.Tick(1)
	assert.Equal(t, before, e.Camera.Position)
}

func TestClickOnOverlayDoesNotLock(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa1")
	e.HandleEvent(input.Event{Kind: input.Click, X: 20, Y: 20})
	assert.False(t, e.Locked())
}

func TestPositionClampedEveryFrame(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa1")
	e.Camera.Position = mgl32.Vec3{1000, 5, 1000}
	e.Tick(0)
	assert.Equal(t, mgl32.Vec3{50, 0, 50}, e.Camera.Position)

	e.Camera.Position = mgl32.Vec3{-70, -3, 10}
	e.Tick(0.5)
	assert.Equal(t, mgl32.Vec3{-50, 0, 10}, e.Camera.Position)
}

func TestLockedPointerTurnsView(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa1")
	e.HandleEvent(input.Event{Kind: input.PointerMove, DX: 100})
	assert.Zero(t, e.Look.Yaw)

	e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 300})
	e.HandleEvent(input.Event{Kind: input.PointerMove, DX: 100, DY: -50})
	assert.InDelta(t, -0.2, e.Look.Yaw, 1e-6)
	assert.InDelta(t, 0.1, e.Look.Pitch, 1e-6)

	e.Tick(0)
	dir := e.Camera.Forward()
	assert.InDelta(t, 0, dir.Sub(e.Look.Direction()).Len(), 1e-5)
}

func TestBackButtonNavigatesToMap(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa5")
	e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 300})

	e.HandleEvent(input.Event{Kind: input.Activate, Target: BackID})
	target, ok := e.Navigation()
	require.True(t, ok)
	assert.Equal(t, "/", target)
	assert.False(t, e.Locked())

	_, ok = e.Navigation()
	assert.False(t, ok)
}

func TestTouchPadMovesWithoutLock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportsTouch = true
	e := newExplorer(t, cfg, "casa1")
	require.NotNil(t, e.Touch)

	fwd := e.Touch.Buttons[0]
	x, y := fwd.Rect.X+fwd.Rect.W/2, fwd.Rect.Y+fwd.Rect.H/2
	e.HandleEvent(input.Event{Kind: input.TouchStart, Touch: 1, X: x, Y: y})
	e.Tick(1)
	assert.InDelta(t, -0.9, e.Camera.Position[2], 1e-5)

	e.HandleEvent(input.Event{Kind: input.TouchEnd, Touch: 1, X: x, Y: y})
	before := e.Camera.Position
	e.Tick(1)
	assert.Equal(t, before, e.Camera.Position)
}

func TestTapDoesNotLockOnTouchDevice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportsTouch = true
	e := newExplorer(t, cfg, "casa1")

	e.HandleEvent(input.Event{Kind: input.Click, X: 300, Y: 300})
	assert.False(t, e.Locked())

	yaw := e.Look.Yaw
	e.HandleEvent(input.Event{Kind: input.PointerMove, X: 400, Y: 300, DX: 100})
	assert.Equal(t, yaw, e.Look.Yaw)
}

func TestBackReleasesHeldTouchButtons(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportsTouch = true
	e := newExplorer(t, cfg, "casa1")

	fwd := e.Touch.Buttons[0]
	require.Equal(t, locomotion.Forward, fwd.Action)
	e.HandleEvent(input.Event{Kind: input.TouchStart, Touch: 1, X: fwd.Rect.X + 1, Y: fwd.Rect.Y + 1})
	require.True(t, e.Touch.Pressed(locomotion.Forward))

	e.HandleEvent(input.Event{Kind: input.Activate, Target: BackID})
	assert.False(t, e.Touch.Pressed(locomotion.Forward))
	assert.False(t, e.State.Pressed(locomotion.Forward))

	before := e.Camera.Position
	e.Tick(1)
	assert.Equal(t, before, e.Camera.Position)
}

func TestTouchDragLooks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportsTouch = true
	e := newExplorer(t, cfg, "casa1")

	e.HandleEvent(input.Event{Kind: input.TouchStart, Touch: 2, X: 400, Y: 300})
	e.HandleEvent(input.Event{Kind: input.TouchMove, Touch: 2, DX: 100})
	assert.InDelta(t, -0.2, e.Look.Yaw, 1e-6)

	e.HandleEvent(input.Event{Kind: input.TouchEnd, Touch: 2})
	e.HandleEvent(input.Event{Kind: input.TouchMove, Touch: 2, DX: 100})
	assert.InDelta(t, -0.2, e.Look.Yaw, 1e-6, "ended touches no longer steer")
}

func TestRenderFailureIsRecovered(t *testing.T) {
	e := newExplorer(t, DefaultConfig(), "casa1")
	r := &countingRenderer{fails: 1}
	e.Renderer = r
	d := loop.NewDriver()

	assert.True(t, d.Step(e, 0.016).Failed())
	assert.False(t, d.Step(e, 0.016).Failed())
	require.Len(t, r.frames, 2)
	assert.Equal(t, e.Camera, r.frames[1].Camera)
	assert.Equal(t, uint64(1), d.Stats.Repairs)
}

func TestFileAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "splats"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))

	ply := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\n" +
		"property uchar red\nproperty uchar green\nproperty uchar blue\nend_header\n" +
		"0 1 2 255 0 0\n3 4 5 0 255 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "splats", "room.ply"), []byte(ply), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "splats", "room.obj"), []byte("v 0 0 0"), 0o644))

	f, err := os.Create(filepath.Join(dir, "textures", "sky.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 4))))
	require.NoError(t, f.Close())

	a := NewFileAssets(download.New(dir))
	a.MaxTextureSize = 4

	cloud, err := a.Cloud(context.Background(), "/splats/room.ply", nil)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 2)
	assert.Equal(t, mgl32.Vec3{3, 4, 5}, cloud.Points[1].Position)

	_, err = a.Cloud(context.Background(), "/splats/room.obj", nil)
	assert.ErrorIs(t, err, loader.ErrUnsupported)
	var le *loader.LoadError
	assert.ErrorAs(t, err, &le)

	_, err = a.Cloud(context.Background(), "/splats/missing.ply", nil)
	assert.Error(t, err)

	sky, err := a.Sky(context.Background(), "/textures/sky.png")
	require.NoError(t, err)
	assert.True(t, sky.Ready())
	assert.Equal(t, 4, sky.Image.Bounds().Dx())
}
