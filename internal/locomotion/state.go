// Package locomotion implements first-person walking for the interior view: the five-flag
// input state, per-frame displacement with sprint and bounds clamping, mouse/touch look
// and the on-screen touch pad.
package locomotion

import "casatour/internal/input"

// Action is one of the five locomotion inputs.
type Action int

const (
	Forward Action = iota
	Back
	Left
	Right
	Sprint
	actionCount
)

var actionNames = [actionCount]string{"forward", "back", "left", "right", "sprint"}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// State holds the locomotion flags. It is written only through Set, from key and touch
// edges, and read once per frame by the Controller.
type State struct {
	flags [actionCount]bool
}

// Set records a press (down) or release of action. Out-of-range actions are ignored.
func (s *State) Set(a Action, down bool) {
	if a < 0 || a >= actionCount {
		return
	}
	s.flags[a] = down
}

// Pressed reports whether action is held.
func (s *State) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return s.flags[a]
}

// Clear releases every flag, e.g. when the page loses focus.
func (s *State) Clear() {
	s.flags = [actionCount]bool{}
}

// Axes returns the raw intent: forward minus back, and right minus left.
func (s *State) Axes() (forward, right float32) {
	if s.flags[Forward] {
		forward++
	}
	if s.flags[Back] {
		forward--
	}
	if s.flags[Right] {
		right++
	}
	if s.flags[Left] {
		right--
	}
	return forward, right
}

// ActionForKey maps the desktop bindings: W/Up, S/Down, A/Left, D/Right and either Shift.
func ActionForKey(k input.Key) (Action, bool) {
	switch k {
	case input.KeyW, input.KeyArrowUp:
		return Forward, true
	case input.KeyS, input.KeyArrowDown:
		return Back, true
	case input.KeyA, input.KeyLeft:
		return Left, true
	case input.KeyD, input.KeyRight:
		return Right, true
	case input.KeyLeftShift, input.KeyRightShift:
		return Sprint, true
	}
	return 0, false
}

// HandleKey applies a key edge to s and reports whether the key is bound.
func (s *State) HandleKey(k input.Key, down bool) bool {
	a, ok := ActionForKey(k)
	if !ok {
		return false
	}
	s.Set(a, down)
	return true
}
