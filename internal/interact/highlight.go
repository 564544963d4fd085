package interact

import (
	"image/color"

	"casatour/internal/scene"
)

// HighlightDelta is added to every colour channel of a hovered node's materials.
const HighlightDelta = 0x33

// Brighten raises r, g and b by delta, clamping at 0xff. Alpha is unchanged.
func Brighten(c color.RGBA, delta uint8) color.RGBA {
	add := func(v uint8) uint8 {
		if s := uint16(v) + uint16(delta); s < 0xff {
			return uint8(s)
		}
		return 0xff
	}
	return color.RGBA{R: add(c.R), G: add(c.G), B: add(c.B), A: c.A}
}

// Snapshot is the pre-highlight appearance of one node: the materials it had and each
// one's base colour. Brighten clamps, so restoring from the snapshot is the only exact undo.
type Snapshot struct {
	node      *scene.Node
	materials []*scene.Material
	colors    []color.RGBA
	hasColor  []bool
}

// Capture records n's current material colours.
func Capture(n *scene.Node) Snapshot {
	s := Snapshot{node: n}
	if n == nil {
		return s
	}
	for _, m := range n.Materials {
		if m == nil {
			continue
		}
		s.materials = append(s.materials, m)
		s.colors = append(s.colors, m.Color)
		s.hasColor = append(s.hasColor, m.HasColor)
	}
	return s
}

// Node returns the node the snapshot was taken from.
func (s Snapshot) Node() *scene.Node {
	return s.node
}

// Restore writes the recorded colours back to the recorded materials.
func (s Snapshot) Restore() {
	for i, m := range s.materials {
		m.Color = s.colors[i]
		m.HasColor = s.hasColor[i]
	}
}

// Highlight brightens every material the snapshot covers, starting from the recorded
// colours so repeated calls never compound.
func (s Snapshot) Highlight() {
	for i, m := range s.materials {
		base := s.colors[i]
		if !s.hasColor[i] {
			base = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		}
		m.Color = Brighten(base, HighlightDelta)
		m.HasColor = true
	}
}
