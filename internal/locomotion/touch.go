package locomotion

// Rect is an on-screen pixel rectangle.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// TouchButton is one on-screen directional button.
type TouchButton struct {
	Action Action
	Label  string
	Rect   Rect
}

// TouchPad translates touch-start and touch-end edges on its buttons into State.Set calls.
// Touches that start outside every button are left to the caller (they drive Look).
type TouchPad struct {
	Buttons []TouchButton
	state   *State
	active  map[int]Action
}

const (
	padButton = 64
	padGap    = 8
	padMargin = 24
)

// NewTouchPad lays out a cross of direction buttons in the bottom-left corner of a
// width x height surface and a sprint button in the bottom-right corner.
func NewTouchPad(state *State, width, height float32) *TouchPad {
	p := &TouchPad{state: state, active: make(map[int]Action)}
	p.Layout(width, height)
	return p
}

// Layout repositions the buttons for a new surface size.
func (p *TouchPad) Layout(width, height float32) {
	step := float32(padButton + padGap)
	left := float32(padMargin)
	bottom := height - padMargin - padButton
	p.Buttons = []TouchButton{
		{Action: Forward, Label: "^", Rect: Rect{left + step, bottom - 2*step, padButton, padButton}},
		{Action: Left, Label: "<", Rect: Rect{left, bottom - step, padButton, padButton}},
		{Action: Right, Label: ">", Rect: Rect{left + 2*step, bottom - step, padButton, padButton}},
		{Action: Back, Label: "v", Rect: Rect{left + step, bottom, padButton, padButton}},
		{Action: Sprint, Label: "Run", Rect: Rect{width - padMargin - padButton, bottom, padButton, padButton}},
	}
}

// TouchStart presses the button under (x, y) for touch id and reports whether a button was hit.
func (p *TouchPad) TouchStart(id int, x, y float32) bool {
	for _, b := range p.Buttons {
		if b.Rect.Contains(x, y) {
			p.active[id] = b.Action
			p.state.Set(b.Action, true)
			return true
		}
	}
	return false
}

// TouchEnd releases whatever touch id was holding and reports whether it held a button.
// A flag stays down while another touch still holds the same action.
func (p *TouchPad) TouchEnd(id int) bool {
	a, ok := p.active[id]
	if !ok {
		return false
	}
	delete(p.active, id)
	for _, other := range p.active {
		if other == a {
			return true
		}
	}
	p.state.Set(a, false)
	return true
}

// Release lets go of every held button, e.g. when the page loses focus mid-touch.
func (p *TouchPad) Release() {
	for id, a := range p.active {
		p.state.Set(a, false)
		delete(p.active, id)
	}
}

// Holding reports whether touch id is pressing a button.
func (p *TouchPad) Holding(id int) bool {
	_, ok := p.active[id]
	return ok
}

// Pressed reports whether any touch currently holds action; used to draw the pressed state.
func (p *TouchPad) Pressed(a Action) bool {
	for _, held := range p.active {
		if held == a {
			return true
		}
	}
	return false
}
