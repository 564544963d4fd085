// Package graphics is the raylib side of the tour: the window loop, input polling and
// the renderer that draws map and interior frames. Everything above it is engine-neutral.
package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window configures the host window.
type Window struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	TargetFPS  int
}

// Run opens the window and calls frame once per frame with the elapsed seconds until the
// window is closed or frame returns false. frame draws between BeginDrawing and EndDrawing.
// ESC is left to the pages (it releases pointer lock), so the window closes via its button.
func Run(w Window, frame func(dt float32) bool) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint | rl.FlagVsyncHint)
	width, height := int32(w.Width), int32(w.Height)
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()

	if w.Fullscreen {
		rl.SetWindowSize(rl.GetMonitorWidth(rl.GetCurrentMonitor()), rl.GetMonitorHeight(rl.GetCurrentMonitor()))
	}
	rl.SetExitKey(rl.KeyNull)
	fps := w.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		ok := frame(rl.GetFrameTime())
		rl.EndDrawing()
		if !ok {
			return
		}
	}
}
