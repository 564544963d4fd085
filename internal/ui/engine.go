// Package ui is a small CSS-styled overlay: nodes matched against .class and #id rules,
// laid out against the window edges, and hit-tested for clicks. Drawing is done by the
// graphics package from the Placed list returned by Layout.
package ui

import (
	_ "embed"
	"os"
)

//go:embed default.css
var defaultCSS string

// Placed is a node with its resolved style and final on-screen rectangle.
type Placed struct {
	Node  *Node
	Style ComputedStyle
	Rect  Rect
}

// Engine holds the current stylesheet and nodes.
// Draw order is node order (first node drawn first, then on top the next).
// Resolved styles are cached and only recomputed when sheet or nodes change to avoid per-frame allocations.
type Engine struct {
	sheet        *Stylesheet
	nodes        []*Node
	cachedStyles []ComputedStyle
	cacheValid   bool
	placed       []Placed
	FontPath     string // optional TTF used by the renderer; empty means the built-in font
}

// New creates an engine with the built-in stylesheet and no nodes.
func New() *Engine {
	sheet, _ := ParseCSS(defaultCSS)
	return &Engine{sheet: sheet}
}

// LoadCSS loads and parses a CSS file from path and appends its rules after the current
// ones, so a user file overrides the built-in look.
func (e *Engine) LoadCSS(path string) error {
	sheet, err := readCSS(path)
	if err != nil {
		return err
	}
	if e.sheet == nil {
		e.sheet = &Stylesheet{}
	}
	e.sheet.Rules = append(e.sheet.Rules, sheet.Rules...)
	e.cacheValid = false
	return nil
}

// LoadStylesheet returns the built-in rules followed by those in path. An empty path
// returns the built-in sheet alone.
func LoadStylesheet(path string) (*Stylesheet, error) {
	base, _ := ParseCSS(defaultCSS)
	if path == "" {
		return base, nil
	}
	user, err := readCSS(path)
	if err != nil {
		return base, err
	}
	base.Rules = append(base.Rules, user.Rules...)
	return base, nil
}

func readCSS(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCSS(string(data))
}

// SetStylesheet replaces the stylesheet.
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
	e.cacheValid = false
}

// AddNode appends a node. Nodes are drawn in order.
func (e *Engine) AddNode(n *Node) {
	e.nodes = append(e.nodes, n)
	e.cacheValid = false
}

// SetNodes replaces all nodes. Passing the same slice contents again keeps the style cache.
func (e *Engine) SetNodes(nodes []*Node) {
	if sameNodes(e.nodes, nodes) {
		return
	}
	e.nodes = append(e.nodes[:0:0], nodes...)
	e.cacheValid = false
}

func sameNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveProps returns merged properties for a node (class and id matched; last wins).
func (e *Engine) resolveProps(n *Node) map[string]string {
	merged := make(map[string]string)
	if e.sheet == nil {
		return merged
	}
	for _, rule := range e.sheet.Rules {
		sel := rule.Selector
		if sel == "" {
			continue
		}
		matches := false
		switch sel[0] {
		case '.':
			matches = n.Class != "" && n.Class == sel[1:]
		case '#':
			matches = n.ID != "" && n.ID == sel[1:]
		}
		if matches {
			for k, v := range rule.Props {
				merged[k] = v
			}
		}
	}
	return merged
}

// Layout resolves every visible node against a screenW x screenH window and returns them
// in draw order. The result is reused until the next call.
func (e *Engine) Layout(screenW, screenH float32) []Placed {
	if !e.cacheValid {
		e.cachedStyles = make([]ComputedStyle, len(e.nodes))
		for i, n := range e.nodes {
			e.cachedStyles[i] = ResolveProps(e.resolveProps(n))
		}
		e.cacheValid = true
	}
	e.placed = e.placed[:0]
	for i, n := range e.nodes {
		if n.Hidden {
			continue
		}
		style := e.cachedStyles[i]
		e.placed = append(e.placed, Placed{Node: n, Style: style, Rect: place(n.Bounds, style, screenW, screenH)})
	}
	return e.placed
}

// place positions r by the style: explicit sizes win, then edge offsets, then percentages.
func place(r Rect, s ComputedStyle, screenW, screenH float32) Rect {
	if s.Width > 0 {
		r.Width = float32(s.Width)
	}
	if s.Height > 0 {
		r.Height = float32(s.Height)
	}
	switch {
	case s.LeftPct != Unset:
		r.X = (screenW - r.Width) * float32(s.LeftPct) / 100
	case s.Left != Unset:
		r.X = float32(s.Left)
	case s.Right != Unset:
		r.X = screenW - r.Width - float32(s.Right)
	}
	switch {
	case s.TopPct != Unset:
		r.Y = (screenH - r.Height) * float32(s.TopPct) / 100
	case s.Top != Unset:
		r.Y = float32(s.Top)
	case s.Bottom != Unset:
		r.Y = screenH - r.Height - float32(s.Bottom)
	}
	return r
}

// HitTest returns the topmost interactive node under (x, y) from the last Layout, or nil.
func (e *Engine) HitTest(x, y float32) *Node {
	for i := len(e.placed) - 1; i >= 0; i-- {
		p := e.placed[i]
		if p.Node.Interactive() && p.Rect.Contains(x, y) {
			return p.Node
		}
	}
	return nil
}

// ClassStyle resolves the style a node with class would get, for things drawn outside
// the node list such as the touch pad.
func (e *Engine) ClassStyle(class string) ComputedStyle {
	return ResolveProps(e.resolveProps(&Node{Class: class}))
}

// HasStylesheet returns whether any rules are loaded.
func (e *Engine) HasStylesheet() bool {
	return e.sheet != nil && len(e.sheet.Rules) > 0
}

// Stylesheet returns the current stylesheet (may be nil).
func (e *Engine) Stylesheet() *Stylesheet {
	return e.sheet
}
