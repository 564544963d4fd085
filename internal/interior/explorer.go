// Package interior is the first-person page: one house's splat capture under a 360° sky,
// walked with WASD (or the on-screen pad on touch devices) inside a fixed bound.
package interior

import (
	"context"
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"casatour/internal/camera"
	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/input"
	"casatour/internal/loader"
	"casatour/internal/locomotion"
	"casatour/internal/logger"
	"casatour/internal/loop"
	"casatour/internal/router"
	"casatour/internal/scene"
	"casatour/internal/splat"
	"casatour/internal/ui"
)

// Overlay text and ids.
const (
	Hint      = "Click to look • WASD to move • Shift to sprint"
	TouchHint = "Drag to look • use the pad to move"
	BackLabel = "← Back"
	BackID    = "back"

	LoadFailedNotice = "Could not load this interior. Please go back and try another house."
)

// DefaultMaxPoints caps the number of splats handed to the point renderer.
const DefaultMaxPoints = 400_000

// Config describes the interior page.
type Config struct {
	FovY, Near, Far float32
	Sky             string
	Background      color.RGBA // shown until the sky has loaded
	MaxPoints       int
	Locomotion      locomotion.Config
	Sensitivity     float32
	SupportsTouch   bool
	Styles          *ui.Stylesheet // nil keeps the built-in look
}

// DefaultConfig returns the stock interior settings.
func DefaultConfig() Config {
	return Config{
		FovY:        70,
		Near:        0.01,
		Far:         2000,
		Sky:         "/textures/sky_360.png",
		Background:  color.RGBA{A: 0xff},
		MaxPoints:   DefaultMaxPoints,
		Locomotion:  locomotion.DefaultConfig(),
		Sensitivity: locomotion.DefaultSensitivity,
	}
}

// TouchView is one touch-pad button as the renderer should draw it.
type TouchView struct {
	locomotion.TouchButton
	Pressed bool
}

// Frame is everything a renderer needs to draw one interior frame.
type Frame struct {
	Cloud      *splat.Cloud // nil until loaded
	Sky        *scene.Texture
	Background color.RGBA
	Camera     *camera.Camera
	Viewport   camera.Viewport
	Overlay    []ui.Placed
	Touch      []TouchView
	Locked     bool // pointer lock: hide and capture the cursor
	Loading    bool
	Progress   float64
}

// Renderer draws interior frames.
type Renderer interface {
	DrawInterior(f *Frame) error
}

// Explorer is the interior page state.
type Explorer struct {
	House      catalog.House
	Camera     *camera.Camera
	Look       *locomotion.Look
	State      *locomotion.State
	Controller *locomotion.Controller
	Touch      *locomotion.TouchPad // nil unless the device supports touch
	Overlay    *ui.Engine
	Card       *ui.InfoCard
	Renderer   Renderer

	cfg      Config
	assets   Assets
	log      *logrus.Entry
	viewport camera.Viewport

	cloud    *splat.Cloud
	sky      *scene.Texture
	cloudReq *loader.Request[*splat.Cloud]
	skyReq   *loader.Request[*scene.Texture]
	progress float64
	loadErr  error

	locked    bool
	lookTouch int
	touchView []TouchView

	back, hint, notice, prog *ui.Node
	nodes                    []*ui.Node
	navigate                 string
}

// New returns the interior for house id. A missing or unknown id opens the catalog's
// fallback house.
func New(cfg Config, assets Assets, cat *catalog.Catalog, id string) *Explorer {
	if cat == nil {
		cat = catalog.Default()
	}
	log := logger.For("interior")
	house, fallback := cat.Resolve(id)
	if fallback {
		log.WithFields(logrus.Fields{"requested": id, "house": house.ID}).Warn("unknown house, opening fallback")
	}

	vp := camera.NewViewport(0, 0)
	cam := camera.NewPerspective(cfg.FovY, vp.Aspect(), cfg.Near, cfg.Far)
	state := &locomotion.State{}
	look := locomotion.NewLook()
	if cfg.Sensitivity > 0 {
		look.Sensitivity = cfg.Sensitivity
	}

	e := &Explorer{
		House:      house,
		Camera:     cam,
		Look:       look,
		State:      state,
		Controller: locomotion.NewController(cfg.Locomotion, state),
		Overlay:    ui.New(),
		Card:       ui.NewInfoCard(),
		cfg:        cfg,
		assets:     assets,
		log:        log.WithField("house", house.ID),
		viewport:   vp,
		lookTouch:  -1,
		back:       ui.NewNode("button", "", BackID, BackLabel),
		hint:       ui.NewNode("label", "hint", "", Hint),
		notice:     ui.NewNode("label", "notice", "", ""),
		prog:       ui.NewNode("progress", "progress", "", ""),
	}
	if cfg.Styles != nil {
		e.Overlay.SetStylesheet(cfg.Styles)
	}
	if cfg.SupportsTouch {
		e.Touch = locomotion.NewTouchPad(state, vp.Width, vp.Height)
		e.hint.Text = TouchHint
	}
	cam.Position = mgl32.Vec3{0, cfg.Locomotion.EyeHeight, 0}
	e.aim()
	return e
}

// Cloud returns the loaded capture, or nil.
func (e *Explorer) Cloud() *splat.Cloud {
	return e.cloud
}

// Err returns the capture load failure, if any.
func (e *Explorer) Err() error {
	return e.loadErr
}

// Locked reports whether pointer lock (and with it keyboard movement) is engaged.
func (e *Explorer) Locked() bool {
	return e.locked
}

// Loading reports whether the capture is still loading.
func (e *Explorer) Loading() bool {
	return e.cloudReq != nil
}

// StartLoad begins fetching the capture and the sky in the background.
func (e *Explorer) StartLoad(ctx context.Context) {
	if e.assets == nil {
		return
	}
	if e.cloudReq == nil && e.cloud == nil {
		src := e.House.Splat
		e.log.WithField("asset", src).Info("loading splat")
		e.cloudReq = loader.Async(ctx, func(ctx context.Context, progress download.Progress) (*splat.Cloud, error) {
			return e.assets.Cloud(ctx, src, progress)
		})
	}
	if e.skyReq == nil && e.sky == nil && e.cfg.Sky != "" {
		src := e.cfg.Sky
		e.skyReq = loader.Async(ctx, func(ctx context.Context, _ download.Progress) (*scene.Texture, error) {
			return e.assets.Sky(ctx, src)
		})
	}
}

// Load fetches the capture and the sky synchronously. A sky failure is only logged.
func (e *Explorer) Load(ctx context.Context) error {
	if e.assets == nil {
		return nil
	}
	if e.cfg.Sky != "" {
		sky, err := e.assets.Sky(ctx, e.cfg.Sky)
		e.finishSky(sky, err)
	}
	cloud, err := e.assets.Cloud(ctx, e.House.Splat, func(f float64) { e.progress = f })
	return e.finishCloud(cloud, err)
}

func (e *Explorer) poll() {
	if e.cloudReq != nil {
		p, done := e.cloudReq.Poll()
		e.progress = p
		if done {
			cloud, err := e.cloudReq.Result()
			e.cloudReq = nil
			_ = e.finishCloud(cloud, err)
		}
	}
	if e.skyReq != nil {
		if _, done := e.skyReq.Poll(); done {
			sky, err := e.skyReq.Result()
			e.skyReq = nil
			e.finishSky(sky, err)
		}
	}
}

func (e *Explorer) finishCloud(cloud *splat.Cloud, err error) error {
	if err == nil && cloud == nil {
		err = fmt.Errorf("interior: no capture decoded from %s", e.House.Splat)
	}
	if err != nil {
		e.loadErr = err
		e.notice.Text = LoadFailedNotice
		e.log.WithError(err).WithField("asset", e.House.Splat).Error("failed to load splat")
		return err
	}
	cloud.RotateX(math32.Pi)
	total := len(cloud.Points)
	e.cloud = cloud.Subsample(e.cfg.MaxPoints)
	e.progress = 1
	e.log.WithFields(logrus.Fields{"points": total, "drawn": len(e.cloud.Points)}).Info("splat ready")
	return nil
}

func (e *Explorer) finishSky(sky *scene.Texture, err error) {
	if err != nil {
		e.log.WithError(err).WithField("asset", e.cfg.Sky).Warn("sky unavailable, using plain background")
		return
	}
	e.sky = sky
}

// Navigation returns and clears the route requested by the back button.
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
		if e.Touch != nil {
			e.Touch.Layout(e.viewport.Width, e.viewport.Height)
		}
	case input.Activate:
		if ev.Target == BackID {
			e.goBack()
		}
	case input.Click:
		if e.Overlay.HitTest(ev.X, ev.Y) != nil {
			return
		}
		// Touch devices look by dragging; a tap must not grab the pointer.
		if !e.locked && e.Touch == nil {
			e.locked = true
			e.log.Debug("pointer locked")
		}
	case input.PointerMove:
		if e.locked {
			e.Look.Move(ev.DX, ev.DY)
		}
	case input.KeyDown:
		if ev.Key == input.KeyEscape {
			e.unlock()
			return
		}
		e.State.HandleKey(ev.Key, true)
	case input.KeyUp:
		e.State.HandleKey(ev.Key, false)
	case input.TouchStart:
		e.touchStart(ev)
	case input.TouchMove:
		if ev.Touch == e.lookTouch {
			e.Look.Move(ev.DX, ev.DY)
		}
	case input.TouchEnd:
		if e.Touch != nil && e.Touch.TouchEnd(ev.Touch) {
			return
		}
		if ev.Touch == e.lookTouch {
			e.lookTouch = -1
		}
	}
}

func (e *Explorer) touchStart(ev input.Event) {
	if e.Overlay.HitTest(ev.X, ev.Y) != nil {
		return
	}
	if e.Touch != nil && e.Touch.TouchStart(ev.Touch, ev.X, ev.Y) {
		return
	}
	if e.lookTouch < 0 {
		e.lookTouch = ev.Touch
	}
}

func (e *Explorer) unlock() {
	if e.Touch != nil {
		e.Touch.Release()
		e.lookTouch = -1
	}
	if !e.locked {
		return
	}
	e.locked = false
	e.State.Clear()
	e.log.Debug("pointer released")
}

func (e *Explorer) goBack() {
	e.unlock()
	e.navigate = router.Map().String()
	e.log.Info("back to map")
}

// moving reports whether held input should move the camera: under pointer lock, or
// while a touch-pad button is held.
func (e *Explorer) moving() bool {
	if e.locked {
		return true
	}
	if e.Touch == nil {
		return false
	}
	for _, a := range []locomotion.Action{locomotion.Forward, locomotion.Back, locomotion.Left, locomotion.Right} {
		if e.Touch.Pressed(a) {
			return true
		}
	}
	return false
}

func (e *Explorer) aim() {
	e.Camera.LookAt(e.Camera.Position.Add(e.Look.Direction()))
}

// Tick advances one frame: it collects finished loads, moves and clamps the camera and draws.
func (e *Explorer) Tick(dt float32) loop.Result {
	e.poll()

	e.Camera.Position = e.Controller.Step(e.Camera.Position, e.Look.Direction(), dt, e.moving())
	e.aim()

	e.nodes = append(e.nodes[:0], e.back, e.hint)
	e.nodes = e.Card.AppendNodes(e.nodes, true, ui.Card{
		Title:       e.House.DisplayTitle(),
		Subtitle:    fmt.Sprintf("%d · %s", e.House.Number, e.House.ID),
		Attribution: e.House.Attribution,
	})
	if e.notice.Text != "" {
		e.nodes = append(e.nodes, e.notice)
	}
	if e.cloudReq != nil {
		e.prog.Text = fmt.Sprintf("Loading %s %d%%", e.House.Name, int(e.progress*100))
		e.nodes = append(e.nodes, e.prog)
	}
	e.Overlay.SetNodes(e.nodes)
	placed := e.Overlay.Layout(e.viewport.Width, e.viewport.Height)

	if e.Renderer == nil {
		return loop.OK()
	}
	e.touchView = e.touchView[:0]
	if e.Touch != nil {
		for _, b := range e.Touch.Buttons {
			e.touchView = append(e.touchView, TouchView{TouchButton: b, Pressed: e.Touch.Pressed(b.Action)})
		}
	}
	f := Frame{
		Cloud:      e.cloud,
		Sky:        e.sky,
		Background: e.cfg.Background,
		Camera:     e.Camera,
		Viewport:   e.viewport,
		Overlay:    placed,
		Touch:      e.touchView,
		Locked:     e.locked,
		Loading:    e.cloudReq != nil,
		Progress:   e.progress,
	}
	if err := e.Renderer.DrawInterior(&f); err != nil {
		return loop.Fail("render", err)
	}
	return loop.OK()
}

// Repair has nothing to rebuild: the point cloud carries no materials. The failure has
// already been logged by the driver.
func (e *Explorer) Repair() error {
	e.log.Debug("interior repair: nothing to do")
	return nil
}
