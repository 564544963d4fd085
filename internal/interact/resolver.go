package interact

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"casatour/internal/camera"
	"casatour/internal/identity"
	"casatour/internal/logger"
	"casatour/internal/router"
	"casatour/internal/scene"
)

// Cursor is the pointer affordance the host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorInteractive
)

func (c Cursor) String() string {
	if c == CursorInteractive {
		return "pointer"
	}
	return "default"
}

// Resolver is the hover/click state machine. It is either idle or hovering exactly one
// node, and that node is the only one drawn highlighted.
type Resolver struct {
	Registry  *Registry
	Raycaster scene.Raycaster
	log       *logrus.Entry

	hovered *scene.Node
	saved   Snapshot
	cursor  Cursor
}

// NewResolver returns an idle resolver over reg. A nil raycaster uses scene.MeshRaycaster.
func NewResolver(reg *Registry, rc scene.Raycaster) *Resolver {
	if rc == nil {
		rc = scene.MeshRaycaster{}
	}
	return &Resolver{Registry: reg, Raycaster: rc, log: logger.For("interact")}
}

// Hovered returns the hovered node or nil.
func (r *Resolver) Hovered() *scene.Node {
	return r.hovered
}

// Cursor returns the current pointer affordance.
func (r *Resolver) Cursor() Cursor {
	return r.cursor
}

// PointerMove updates hover state for a pointer at pixel (px, py) inside vp.
// Hovering the same node again is a no-op; moving to another node restores the previous
// one before highlighting the new one; missing everything returns to idle.
func (r *Resolver) PointerMove(px, py float32, vp camera.Viewport, cam *camera.Camera) Cursor {
	ray := cam.Ray(vp.NDC(px, py))
	hit := r.pick(ray)

	switch {
	case hit == nil:
		r.clear()
		r.cursor = CursorDefault
	case hit == r.hovered:
	default:
		r.clear()
		r.hovered = hit
		r.saved = Capture(hit)
		r.saved.Highlight()
		r.cursor = CursorInteractive
	}
	return r.cursor
}

// pick returns the owner of the nearest hit. Raycaster errors and panics count as a miss.
func (r *Resolver) pick(ray scene.Ray) (n *scene.Node) {
	if r.Registry == nil || r.Registry.Len() == 0 {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Warn("raycast failed, treating as no hit")
			n = nil
		}
	}()
	hits, err := r.Raycaster.Intersect(ray, r.Registry.Nodes())
	if err != nil {
		r.log.WithError(err).Warn("raycast failed, treating as no hit")
		return nil
	}
	if len(hits) == 0 {
		return nil
	}
	return hits[0].Node
}

// Click returns the navigation target for the hovered node. It reports false with a
// diagnostic when nothing is hovered or the node belongs to no house.
func (r *Resolver) Click() (string, bool) {
	if r.hovered == nil {
		r.log.Debug("click with nothing hovered")
		return "", false
	}
	id, ok := identity.Resolve(r.hovered)
	if !ok {
		r.log.WithField("node", r.hovered.Path()).Warn("clicked node has no house id")
		return "", false
	}
	r.log.WithField("house", id).Info("opening interior")
	return router.InteriorURL(id), true
}

// Reset restores any highlighted node and returns to idle.
func (r *Resolver) Reset() {
	r.clear()
	r.cursor = CursorDefault
}

func (r *Resolver) clear() {
	if r.hovered == nil {
		return
	}
	r.saved.Restore()
	r.hovered = nil
	r.saved = Snapshot{}
}

// String describes the state for the debug overlay.
func (r *Resolver) String() string {
	if r.hovered == nil {
		return "idle"
	}
	if id, ok := identity.Resolve(r.hovered); ok {
		return fmt.Sprintf("hovering %s (%s)", r.hovered.Name, id)
	}
	return "hovering " + r.hovered.Name
}
