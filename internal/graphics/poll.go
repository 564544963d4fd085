package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"casatour/internal/input"
)

var keyMap = map[input.Key]int32{
	input.KeyW:          rl.KeyW,
	input.KeyA:          rl.KeyA,
	input.KeyS:          rl.KeyS,
	input.KeyD:          rl.KeyD,
	input.KeyArrowUp:    rl.KeyUp,
	input.KeyArrowDown:  rl.KeyDown,
	input.KeyLeft:       rl.KeyLeft,
	input.KeyRight:      rl.KeyRight,
	input.KeyLeftShift:  rl.KeyLeftShift,
	input.KeyRightShift: rl.KeyRightShift,
	input.KeyEscape:     rl.KeyEscape,
	input.KeyBackspace:  rl.KeyBackspace,
	input.KeyF1:         rl.KeyF1,
}

var buttonMap = map[input.Button]rl.MouseButton{
	input.ButtonLeft:   rl.MouseButtonLeft,
	input.ButtonRight:  rl.MouseButtonRight,
	input.ButtonMiddle: rl.MouseButtonMiddle,
}

// Poller turns raylib's per-frame input state into input events.
// Touch polling is opt-in: on desktop raylib reports the mouse as touch point 0.
type Poller struct {
	Touch bool

	width, height int
	touches       map[int32]rl.Vector2
}

// NewPoller returns a poller that reports the initial window size on its first Poll.
func NewPoller(touch bool) *Poller {
	return &Poller{Touch: touch, touches: make(map[int32]rl.Vector2)}
}

// Poll appends this frame's events to q.
func (p *Poller) Poll(q *input.Queue) {
	if w, h := rl.GetScreenWidth(), rl.GetScreenHeight(); w != p.width || h != p.height || rl.IsWindowResized() {
		p.width, p.height = w, h
		q.Push(input.Event{Kind: input.Resize, X: float32(w), Y: float32(h)})
	}

	pos := rl.GetMousePosition()
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		q.Push(input.Event{Kind: input.PointerMove, X: pos.X, Y: pos.Y, DX: d.X, DY: d.Y})
	}
	for b, rb := range buttonMap {
		if rl.IsMouseButtonPressed(rb) {
			q.Push(input.Event{Kind: input.PointerDown, X: pos.X, Y: pos.Y, Button: b})
		}
		if rl.IsMouseButtonReleased(rb) {
			q.Push(input.Event{Kind: input.PointerUp, X: pos.X, Y: pos.Y, Button: b})
			if b == input.ButtonLeft {
				q.Push(input.Event{Kind: input.Click, X: pos.X, Y: pos.Y, Button: b})
			}
		}
	}
	if w := rl.GetMouseWheelMove(); w != 0 {
		q.Push(input.Event{Kind: input.Wheel, X: pos.X, Y: pos.Y, DY: w})
	}

	for k, rk := range keyMap {
		if rl.IsKeyPressed(rk) {
			q.Push(input.Event{Kind: input.KeyDown, Key: k})
		}
		if rl.IsKeyReleased(rk) {
			q.Push(input.Event{Kind: input.KeyUp, Key: k})
		}
	}

	if p.Touch {
		p.pollTouches(q)
	}
}

func (p *Poller) pollTouches(q *input.Queue) {
	seen := make(map[int32]bool, len(p.touches))
	n := rl.GetTouchPointCount()
	for i := int32(0); i < n; i++ {
		id := rl.GetTouchPointId(i)
		at := rl.GetTouchPosition(i)
		seen[id] = true
		prev, ok := p.touches[id]
		p.touches[id] = at
		switch {
		case !ok:
			q.Push(input.Event{Kind: input.TouchStart, X: at.X, Y: at.Y, Touch: int(id)})
		case prev != at:
			q.Push(input.Event{Kind: input.TouchMove, X: at.X, Y: at.Y, DX: at.X - prev.X, DY: at.Y - prev.Y, Touch: int(id)})
		}
	}
	for id, at := range p.touches {
		if !seen[id] {
			delete(p.touches, id)
			q.Push(input.Event{Kind: input.TouchEnd, X: at.X, Y: at.Y, Touch: int(id)})
		}
	}
}
