// Package debug draws the developer overlays: frame rate, heap size, a status block and
// the most recent warnings from the log.
package debug

import (
	"fmt"
	"image/color"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/sirupsen/logrus"

	"casatour/internal/logger"
)

const (
	fpsFontSize   = 20
	fpsPadding    = 12
	fpsLineHeight = fpsFontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30

	consoleFontSize = 14
	consoleLines    = 6
)

var consoleColors = map[logrus.Level]color.RGBA{
	logrus.ErrorLevel: {R: 0xff, G: 0x60, B: 0x60, A: 0xff},
	logrus.WarnLevel:  {R: 0xff, G: 0xd0, B: 0x40, A: 0xff},
	logrus.InfoLevel:  {R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
}

// Debug holds runtime debugging features. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowConsole  bool // status lines and recent warnings, bottom-right
	font         rl.Font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
	console      []logger.Line
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// Toggle flips every overlay on or off together (bound to F1).
func (d *Debug) Toggle() {
	on := !(d.ShowFPS || d.ShowMemAlloc || d.ShowConsole)
	d.ShowFPS, d.ShowMemAlloc, d.ShowConsole = on, on, on
}

// SetFont sets the font used to draw overlays. Zero texture ID = use raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

func (d *Debug) text(s string, x, y, size float32, rightAlign bool, c color.RGBA) {
	if d.font.Texture.ID != 0 {
		if rightAlign {
			x -= rl.MeasureTextEx(d.font, s, size, 1).X
		}
		rl.DrawTextEx(d.font, s, rl.NewVector2(x, y), size, 1, c)
		return
	}
	if rightAlign {
		x -= float32(rl.MeasureText(s, int32(size)))
	}
	rl.DrawText(s, int32(x), int32(y), int32(size), c)
}

// Draw renders any enabled overlays. Call last in the frame so they sit on top.
// Text is only recomputed every updateInterval frames to limit allocations.
func (d *Debug) Draw(status []string) {
	d.frameCount++
	update := (d.frameCount % updateInterval) == 0
	if (d.ShowFPS && d.lastFpsText == "") || (d.ShowMemAlloc && d.lastMemText == "") {
		update = true
	}

	screenW := float32(rl.GetScreenWidth())
	screenH := float32(rl.GetScreenHeight())
	right := screenW - fpsPadding
	y := float32(fpsPadding)

	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.text(d.lastFpsText, right, y, fpsFontSize, true, rl.Green)
		y += fpsLineHeight
	}

	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			mb := float64(d.lastMemStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		d.text(d.lastMemText, right, y, fpsFontSize, true, rl.Green)
	}

	if !d.ShowConsole {
		return
	}
	if update || d.console == nil {
		d.console = logger.History.Last(consoleLines, logrus.InfoLevel)
	}
	line := float32(consoleFontSize + 3)
	y = screenH - fpsPadding - line*float32(len(status)+len(d.console))
	for _, s := range status {
		d.text(s, right, y, consoleFontSize, true, rl.SkyBlue)
		y += line
	}
	for _, l := range d.console {
		c, ok := consoleColors[l.Level]
		if !ok {
			c = consoleColors[logrus.ErrorLevel]
		}
		d.text(l.Message, right, y, consoleFontSize, true, c)
		y += line
	}
}
