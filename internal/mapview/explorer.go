// Package mapview is the map page: it loads the district model, makes houses hoverable
// and clickable, floats numbered markers over them and drives the orbit camera.
package mapview

import (
	"context"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"casatour/internal/camera"
	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/input"
	"casatour/internal/interact"
	"casatour/internal/loader"
	"casatour/internal/logger"
	"casatour/internal/loop"
	"casatour/internal/router"
	"casatour/internal/scene"
	"casatour/internal/ui"
)

// LoadFailedNotice is shown in place of the map when the model cannot be loaded.
const LoadFailedNotice = "Error loading 3D map. Please check the log for details."

// ClickSlop is how far in pixels the pointer may travel between press and release for
// the release to still count as a click rather than the end of an orbit drag.
const ClickSlop = 6

// Config describes the map page.
type Config struct {
	Asset      string
	FovY       float32
	Near, Far  float32
	Position   mgl32.Vec3
	Background color.RGBA
	Styles     *ui.Stylesheet // nil keeps the built-in look
}

// DefaultConfig returns the stock map page settings.
func DefaultConfig() Config {
	return Config{
		Asset:      "/models/mapaPuebla.glb",
		FovY:       50,
		Near:       0.1,
		Far:        2000,
		Position:   mgl32.Vec3{12, 16, 50},
		Background: scene.Hex(0x3186d6),
	}
}

// Frame is everything a renderer needs to draw one map frame.
type Frame struct {
	Root       *scene.Node // nil until the model has loaded
	Camera     *camera.Camera
	Viewport   camera.Viewport
	Background color.RGBA
	Overlay    []ui.Placed
	Cursor     interact.Cursor
	Loading    bool
	Progress   float64
}

// Renderer draws map frames.
type Renderer interface {
	DrawMap(f *Frame) error
}

// Explorer is the map page state.
type Explorer struct {
	Camera   *camera.Camera
	Orbit    *camera.Orbit
	Registry *interact.Registry
	Resolver *interact.Resolver
	Markers  *Markers
	Overlay  *ui.Engine
	Renderer Renderer

	cfg      Config
	loader   loader.SceneLoader
	log      *logrus.Entry
	viewport camera.Viewport

	root     *scene.Node
	request  *loader.Request[*scene.Node]
	progress float64
	stats    LoadStats
	loadErr  error

	notice   *ui.Node
	progNode *ui.Node
	nodes    []*ui.Node

	pressed  bool
	button   input.Button
	pressAt  mgl32.Vec2
	travel   float32
	navigate string
}

// New returns a map explorer with markers for every house in cat. The model is not
// loaded until Load or StartLoad is called.
func New(cfg Config, l loader.SceneLoader, cat *catalog.Catalog) *Explorer {
	if cat == nil {
		cat = catalog.Default()
	}
	vp := camera.NewViewport(0, 0)
	cam := camera.NewPerspective(cfg.FovY, vp.Aspect(), cfg.Near, cfg.Far)
	cam.Position = cfg.Position
	cam.LookAt(mgl32.Vec3{})

	reg := interact.NewRegistry()
	e := &Explorer{
		Camera:   cam,
		Orbit:    camera.NewOrbit(),
		Registry: reg,
		Resolver: interact.NewResolver(reg, nil),
		Markers:  NewMarkers(cat.Houses()),
		Overlay:  ui.New(),
		cfg:      cfg,
		loader:   l,
		log:      logger.For("map"),
		viewport: vp,
		notice:   ui.NewNode("label", "notice", "", ""),
		progNode: ui.NewNode("progress", "progress", "", ""),
	}
	if cfg.Styles != nil {
		e.Overlay.SetStylesheet(cfg.Styles)
	}
	e.Orbit.Sync(cam)
	return e
}

// Root returns the loaded model, or nil.
func (e *Explorer) Root() *scene.Node {
	return e.root
}

// Stats returns the outcome of the post-load pass.
func (e *Explorer) Stats() LoadStats {
	return e.stats
}

// Err returns the load failure, if any.
func (e *Explorer) Err() error {
	return e.loadErr
}

// Viewport returns the current drawing surface.
func (e *Explorer) Viewport() camera.Viewport {
	return e.viewport
}

// Loading reports whether an asynchronous load is in flight.
func (e *Explorer) Loading() bool {
	return e.request != nil
}

// Load fetches and prepares the model synchronously. A failure leaves the page usable
// with no clickable houses and a notice on screen; the error is also returned.
func (e *Explorer) Load(ctx context.Context) error {
	root, err := e.loader.Load(ctx, e.cfg.Asset, func(f float64) { e.progress = f })
	return e.finish(root, err)
}

// StartLoad begins loading the model in the background. Tick picks up the result.
func (e *Explorer) StartLoad(ctx context.Context) {
	if e.request != nil {
		return
	}
	e.log.WithField("asset", e.cfg.Asset).Info("loading map")
	e.request = loader.Async(ctx, func(ctx context.Context, progress download.Progress) (*scene.Node, error) {
		return e.loader.Load(ctx, e.cfg.Asset, progress)
	})
}

func (e *Explorer) poll() {
	if e.request == nil {
		return
	}
	p, done := e.request.Poll()
	e.progress = p
	if !done {
		return
	}
	root, err := e.request.Result()
	e.request = nil
	_ = e.finish(root, err)
}

func (e *Explorer) finish(root *scene.Node, err error) error {
	if err == nil && root == nil {
		err = fmt.Errorf("map: loader returned no scene for %s", e.cfg.Asset)
	}
	if err != nil {
		e.loadErr = err
		e.Registry.Clear()
		e.Registry.Seal()
		e.notice.Text = LoadFailedNotice
		e.log.WithError(err).WithField("asset", e.cfg.Asset).Error("failed to load map")
		return err
	}

	e.Registry.Clear()
	e.stats = Normalize(root, e.Registry, e.Markers, e.log)
	e.root = root
	e.loadErr = nil
	e.notice.Text = ""
	e.progress = 1

	pose := camera.Frame(root.WorldBox(), e.Camera.FovY)
	e.Camera.ApplyPose(pose)
	e.Orbit.Sync(e.Camera)
	e.Markers.Project(e.Camera, e.viewport)

	e.log.WithFields(logrus.Fields{
		"drawables":   e.stats.Drawables,
		"clickable":   e.stats.Clickable,
		"substituted": e.stats.Substituted,
		"skipped":     e.stats.Skipped,
		"anchored":    e.stats.Anchored,
	}).Info("map ready")
	return nil
}

// Navigation returns and clears the route requested by the last click.
func (e *Explorer) Navigation() (string, bool) {
	if e.navigate == "" {
		return "", false
	}
	target := e.navigate
	e.navigate = ""
	return target, true
}

// HandleEvent applies one input event.
func (e *Explorer) HandleEvent(ev input.Event) {
	switch ev.Kind {
	case input.Resize:
		e.viewport = e.Camera.Resize(ev.X, ev.Y)
	case input.PointerDown:
		e.pressed = true
		e.button = ev.Button
		e.pressAt = mgl32.Vec2{ev.X, ev.Y}
		e.travel = 0
	case input.PointerUp:
		e.pressed = false
	case input.PointerMove:
		e.pointerMove(ev)
	case input.Click:
		e.click(ev.X, ev.Y)
	case input.Wheel:
		e.Orbit.Zoom(ev.DY)
	case input.TouchStart:
		e.HandleEvent(input.Event{Kind: input.PointerDown, X: ev.X, Y: ev.Y})
	case input.TouchMove:
		e.HandleEvent(input.Event{Kind: input.PointerMove, X: ev.X, Y: ev.Y, DX: ev.DX, DY: ev.DY})
	case input.TouchEnd:
		e.pressed = false
		e.click(ev.X, ev.Y)
	}
}

func (e *Explorer) pointerMove(ev input.Event) {
	if e.pressed {
		e.travel = mgl32.Vec2{ev.X, ev.Y}.Sub(e.pressAt).Len()
		switch e.button {
		case input.ButtonLeft:
			e.Orbit.Rotate(ev.DX, ev.DY, e.viewport.Height)
		case input.ButtonRight, input.ButtonMiddle:
			e.Orbit.Pan(e.Camera, ev.DX, ev.DY, e.viewport.Height)
		}
	}
	if n := e.Overlay.HitTest(ev.X, ev.Y); n != nil {
		e.Resolver.Reset()
		return
	}
	e.Resolver.PointerMove(ev.X, ev.Y, e.viewport, e.Camera)
}

func (e *Explorer) click(x, y float32) {
	if e.travel > ClickSlop {
		e.log.WithField("travel", e.travel).Debug("release after drag, not a click")
		e.travel = 0
		return
	}
	if n := e.Overlay.HitTest(x, y); n != nil {
		if mk, ok := e.Markers.ForNode(n); ok {
			e.log.WithField("house", mk.ID).Info("marker clicked")
			e.navigate = router.InteriorURL(mk.ID)
		}
		return
	}
	// The pointer may not have moved since the last hover update (e.g. a tap).
	e.Resolver.PointerMove(x, y, e.viewport, e.Camera)
	if target, ok := e.Resolver.Click(); ok {
		e.navigate = target
	}
}

// Tick advances one frame: it collects a finished load, applies orbit motion, projects
// markers and draws.
func (e *Explorer) Tick(dt float32) loop.Result {
	e.poll()
	e.Orbit.Update(e.Camera)
	e.Markers.Project(e.Camera, e.viewport)

	e.nodes = e.nodes[:0]
	if e.root != nil {
		e.nodes = e.Markers.Nodes(e.nodes)
	}
	if e.notice.Text != "" {
		e.nodes = append(e.nodes, e.notice)
	}
	if e.request != nil {
		e.progNode.Text = fmt.Sprintf("Loading map %d%%", int(e.progress*100))
		e.nodes = append(e.nodes, e.progNode)
	}
	e.Overlay.SetNodes(e.nodes)
	placed := e.Overlay.Layout(e.viewport.Width, e.viewport.Height)

	if e.Renderer == nil {
		return loop.OK()
	}
	f := Frame{
		Root:       e.root,
		Camera:     e.Camera,
		Viewport:   e.viewport,
		Background: e.cfg.Background,
		Overlay:    placed,
		Cursor:     e.Resolver.Cursor(),
		Loading:    e.request != nil,
		Progress:   e.progress,
	}
	if err := e.Renderer.DrawMap(&f); err != nil {
		return loop.Fail("render", err)
	}
	return loop.OK()
}

// Repair drops hover state and replaces every material with a safe fallback.
func (e *Explorer) Repair() error {
	e.Resolver.Reset()
	return Repair(e.root)
}
