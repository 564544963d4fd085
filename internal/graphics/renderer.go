package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"casatour/internal/debug"
	"casatour/internal/input"
	"casatour/internal/interact"
	"casatour/internal/interior"
	"casatour/internal/logger"
	"casatour/internal/mapview"
	"casatour/internal/scene"
	"casatour/internal/ui"
)

const fontSize = 32

// extraGlyphs are the non-ASCII characters the overlay text uses.
var extraGlyphs = []rune{'•', '←', '—', 'á', 'é', 'í', 'ó', 'ú', 'ñ', 'Á', 'É', 'Ñ'}

// Renderer draws both pages with raylib. It owns every GPU resource; switching page
// releases the other page's meshes.
type Renderer struct {
	Overlay *Overlay
	Debug   *debug.Debug
	Status  func() []string // extra lines for the debug console; may be nil

	meshes *MeshCache
	sky    Sky
	points PointCloud
	root   *scene.Node
	font   rl.Font
	locked bool
}

// NewRenderer returns a renderer pushing overlay button presses into events.
func NewRenderer(events *input.Queue, styles *ui.Stylesheet) *Renderer {
	return &Renderer{
		Overlay: NewOverlay(events, styles),
		Debug:   debug.New(),
		meshes:  NewMeshCache(),
	}
}

// LoadFont loads a TTF/OTF for the overlay and debug text. Must run after the window opens.
// A font that fails to load leaves raylib's built-in font in place.
func (r *Renderer) LoadFont(path string) {
	if path == "" {
		return
	}
	glyphs := make([]rune, 0, 95+len(extraGlyphs))
	for c := rune(32); c < 127; c++ {
		glyphs = append(glyphs, c)
	}
	glyphs = append(glyphs, extraGlyphs...)
	f := rl.LoadFontEx(path, fontSize, glyphs)
	if f.Texture.ID == 0 {
		logger.For("graphics").WithField("path", path).Warn("font not loaded, using built-in font")
		return
	}
	rl.SetTextureFilter(f.Texture, rl.FilterBilinear)
	r.font = f
	r.Overlay.SetFont(f)
	r.Debug.SetFont(f)
}

func (r *Renderer) status() []string {
	if r.Status == nil {
		return nil
	}
	return r.Status()
}

// setLocked hides and captures the cursor while the interior holds pointer lock.
func (r *Renderer) setLocked(locked bool) {
	if locked == r.locked {
		return
	}
	r.locked = locked
	if locked {
		rl.DisableCursor()
	} else {
		rl.EnableCursor()
	}
}

// DrawMap implements mapview.Renderer.
func (r *Renderer) DrawMap(f *mapview.Frame) error {
	r.setLocked(false)
	r.sky.Set(nil)
	r.points.Set(nil)
	if f.Root != r.root {
		r.meshes.Unload()
		r.root = f.Root
	}

	rl.ClearBackground(f.Background)
	var err error
	if f.Root != nil {
		beginCamera(f.Camera)
		err = r.meshes.DrawTree(f.Root)
		rl.EndMode3D()
	}
	r.Overlay.Cursor(f.Cursor)
	r.Overlay.Draw(f.Overlay, f.Progress)
	r.Debug.Draw(r.status())
	return err
}

// DrawInterior implements interior.Renderer.
func (r *Renderer) DrawInterior(f *interior.Frame) error {
	if r.root != nil {
		r.meshes.Unload()
		r.root = nil
	}
	r.setLocked(f.Locked)
	r.Overlay.Cursor(interact.CursorDefault)
	r.sky.Set(f.Sky)
	r.points.Set(f.Cloud)

	rl.ClearBackground(f.Background)
	beginCamera(f.Camera)
	r.sky.Draw(f.Camera.Position)
	r.points.Draw()
	rl.EndMode3D()

	r.Overlay.Draw(f.Overlay, f.Progress)
	r.Overlay.TouchPad(f.Touch)
	r.Debug.Draw(r.status())
	return nil
}

// Unload frees every GPU resource. Call before the window closes.
func (r *Renderer) Unload() {
	r.meshes.Unload()
	r.sky.Unload()
	r.points.Unload()
	if r.font.Texture.ID != 0 {
		rl.UnloadFont(r.font)
	}
}
