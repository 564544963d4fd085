// Package input defines the host-neutral events the pages consume. The raylib poller in
// the graphics package translates window input into these each frame.
package input

// Key identifies a keyboard key the tour reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyArrowUp
	KeyArrowDown
	KeyLeft
	KeyRight
	KeyLeftShift
	KeyRightShift
	KeyEscape
	KeyBackspace
	KeyF1
)

var keyNames = map[Key]string{
	KeyW:          "W",
	KeyA:          "A",
	KeyS:          "S",
	KeyD:          "D",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyLeft:       "ArrowLeft",
	KeyRight:      "ArrowRight",
	KeyLeftShift:  "ShiftLeft",
	KeyRightShift: "ShiftRight",
	KeyEscape:     "Escape",
	KeyBackspace:  "Backspace",
	KeyF1:         "F1",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "None"
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Kind discriminates Event.
type Kind int

const (
	PointerMove Kind = iota
	PointerDown
	PointerUp
	Click
	Wheel
	KeyDown
	KeyUp
	TouchStart
	TouchMove
	TouchEnd
	Resize
	Activate // an overlay button was pressed; Target names it
)

// Event is one input occurrence. Which fields are meaningful depends on Kind:
// X/Y are pixel coordinates for pointer and touch events and the new size for Resize;
// DX/DY carry movement deltas for PointerMove and TouchMove and the scroll amount for Wheel.
type Event struct {
	Kind   Kind
	X, Y   float32
	DX, DY float32
	Button Button
	Key    Key
	Touch  int    // touch point id
	Target string // overlay node id for Activate
}

// Queue collects events between frames. The zero value is ready to use.
type Queue struct {
	events []Event
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Drain returns the pending events in arrival order and empties the queue.
func (q *Queue) Drain() []Event {
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}
