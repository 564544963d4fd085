package mapview

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/camera"
	"casatour/internal/catalog"
	"casatour/internal/ui"
)

// MarkerLift raises each marker above its anchor so it floats over the roof.
const MarkerLift = 5

// markerSize is the on-screen diameter of a marker badge in pixels.
const markerSize = 32

// Marker is a numbered badge for one house. Anchor starts at the origin and is moved to
// the house's bounding-box centre once the map geometry is known.
type Marker struct {
	ID      string
	Number  int
	Name    string
	Anchor  mgl32.Vec3
	Screen  mgl32.Vec2
	Visible bool

	node *ui.Node
}

// Markers holds one marker per catalog house in catalog order.
type Markers struct {
	list []*Marker
	byID map[string]*Marker
}

// NewMarkers creates hidden markers for houses.
func NewMarkers(houses []catalog.House) *Markers {
	m := &Markers{byID: make(map[string]*Marker, len(houses))}
	for _, h := range houses {
		mk := &Marker{
			ID:     h.ID,
			Number: h.Number,
			Name:   h.Name,
			node:   ui.NewNode("marker", "marker", "marker-"+h.ID, strconv.Itoa(h.Number)),
		}
		mk.node.Hidden = true
		m.list = append(m.list, mk)
		m.byID[h.ID] = mk
	}
	return m
}

// All returns the markers in catalog order.
func (m *Markers) All() []*Marker {
	return m.list
}

// Get returns the marker for a house id.
func (m *Markers) Get(id string) (*Marker, bool) {
	mk, ok := m.byID[id]
	return mk, ok
}

// SetAnchor moves the marker of id and reports whether such a marker exists.
func (m *Markers) SetAnchor(id string, p mgl32.Vec3) bool {
	mk, ok := m.byID[id]
	if ok {
		mk.Anchor = p
	}
	return ok
}

// Project recomputes every marker's screen position for the current camera. A marker is
// visible when its lifted anchor is in front of the camera and before the far plane.
func (m *Markers) Project(cam *camera.Camera, vp camera.Viewport) {
	for _, mk := range m.list {
		p := mk.Anchor
		p[1] += MarkerLift
		ndc, ok := cam.Project(p)
		mk.Visible = ok && ndc[2] < 1
		mk.Screen = vp.Screen(mgl32.Vec2{ndc[0], ndc[1]})

		mk.node.Hidden = !mk.Visible
		mk.node.Bounds = ui.Rect{
			X:      mk.Screen[0] - markerSize/2,
			Y:      mk.Screen[1] - markerSize/2,
			Width:  markerSize,
			Height: markerSize,
		}
	}
}

// Nodes appends the marker badges to dst for the overlay.
func (m *Markers) Nodes(dst []*ui.Node) []*ui.Node {
	for _, mk := range m.list {
		dst = append(dst, mk.node)
	}
	return dst
}

// ForNode returns the marker owning a ui node, used to route overlay clicks.
func (m *Markers) ForNode(n *ui.Node) (*Marker, bool) {
	for _, mk := range m.list {
		if mk.node == n {
			return mk, true
		}
	}
	return nil, false
}
