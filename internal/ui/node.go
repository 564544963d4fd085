package ui

// Rect is a pixel rectangle with the origin at the top-left of the window.
type Rect struct {
	X, Y, Width, Height float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of r.
func (r Rect) Center() (float32, float32) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Node is a single UI element: panel, label, button or marker. It has optional class and id
// for CSS matching, bounds (position and size), and optional text.
// Bounds are used as-is for any edge the stylesheet does not position, so callers can
// place nodes themselves (e.g. markers projected from 3D).
type Node struct {
	Type   string // "panel", "label", "button", "marker"
	Class  string // e.g. "hint" for .hint
	ID     string // e.g. "back" for #back
	Bounds Rect
	Text   string
	Hidden bool
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{Type: typ, Class: class, ID: id, Text: text}
}

// Interactive reports whether the node reacts to clicks.
func (n *Node) Interactive() bool {
	return n.Type == "button" || n.Type == "marker"
}
