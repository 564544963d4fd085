package mapview

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"

	"casatour/internal/identity"
	"casatour/internal/interact"
	"casatour/internal/scene"
)

// LoadStats summarizes the post-load pass for logs and the inspect command.
type LoadStats struct {
	Drawables   int
	Clickable   int
	Substituted int // materials whose texture was unusable or that were missing
	Skipped     int // drawables left out because their geometry is malformed
	Anchored    int
}

// Normalize prepares a freshly loaded map: every drawable gets at least one safe flat
// material, highlightable nodes that belong to a house go into reg, and markers are
// anchored on their house. A node that cannot be processed is logged by name and skipped.
// reg is sealed afterwards.
func Normalize(root *scene.Node, reg *interact.Registry, markers *Markers, log *logrus.Entry) LoadStats {
	var stats LoadStats
	if root == nil {
		reg.Seal()
		return stats
	}
	var clickable []*scene.Node
	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		stats.Drawables++
		if err := normalizeNode(n, &stats); err != nil {
			stats.Skipped++
			log.WithError(err).WithField("node", n.Path()).Warn("skipping malformed mesh")
			return
		}
		id, ok := identity.Resolve(n)
		if !ok {
			return
		}
		if !n.Highlightable() {
			log.WithField("node", n.Path()).Debug("house part has nothing to highlight, not clickable")
			return
		}
		added, err := reg.Add(n)
		if err != nil {
			log.WithError(err).WithField("node", n.Name).Error("registry rejected node")
			return
		}
		if added {
			clickable = append(clickable, n)
			log.WithFields(logrus.Fields{"node": n.Name, "house": id}).Debug("clickable house")
		}
	})
	reg.Seal()
	stats.Clickable = reg.Len()

	for _, n := range clickable {
		id, _ := identity.Resolve(n)
		box := n.WorldBox()
		if box.IsEmpty() {
			continue
		}
		if markers != nil && markers.SetAnchor(id, box.Center()) {
			stats.Anchored++
		}
	}
	return stats
}

func normalizeNode(n *scene.Node, stats *LoadStats) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("normalize panic: %v", rec)
		}
	}()
	if err := n.Mesh.Validate(); err != nil {
		return err
	}
	slots := max(len(n.Materials), 1)
	for _, g := range n.Mesh.MaterialGroups() {
		slots = max(slots, g.Material+1)
	}
	mats := make([]*scene.Material, slots)
	for i := range mats {
		var src *scene.Material
		if i < len(n.Materials) {
			src = n.Materials[i]
		}
		if src == nil || (src.Texture != nil && !src.Texture.Ready()) {
			stats.Substituted++
		}
		mats[i] = FlatMaterial(src)
	}
	n.Materials = mats
	return nil
}

// FlatMaterial returns an unlit replacement for m that renders without surprises:
// a ready texture is kept on a white base; a broken or pending texture, or none, becomes
// a flat colour (m's colour if it has one, else FallbackGray). Opacity settings carry over.
func FlatMaterial(m *scene.Material) *scene.Material {
	out := scene.NewFlatMaterial(scene.FallbackGray)
	if m == nil {
		return out
	}
	if err := copier.Copy(out, m); err != nil {
		return scene.NewFlatMaterial(scene.FallbackGray)
	}
	out.Unlit = true
	if m.Opacity <= 0 && !m.Transparent {
		out.Opacity = 1
	}
	switch {
	case m.Texture.Ready():
		out.Color = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		out.HasColor = true
	case m.HasColor:
		out.Texture = nil
	default:
		out.Texture = nil
		out.Color = scene.FallbackGray
		out.HasColor = true
	}
	return out
}

// Repair replaces every material under root with a safe fallback after a failed frame:
// ready textures are kept, everything else becomes the material's colour or RepairGray.
// Failures are collected per node so one bad node does not block the rest.
func Repair(root *scene.Node) error {
	if root == nil {
		return nil
	}
	var errs []error
	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		if err := repairNode(n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Path(), err))
		}
	})
	return errors.Join(errs...)
}

func repairNode(n *scene.Node) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("repair panic: %v", rec)
		}
	}()
	if len(n.Materials) == 0 {
		n.Materials = []*scene.Material{scene.NewFlatMaterial(scene.RepairGray)}
		return nil
	}
	for i, m := range n.Materials {
		c := scene.RepairGray
		var tex *scene.Texture
		if m != nil {
			if m.HasColor {
				c = m.Color
			}
			if m.Texture.Ready() {
				tex = m.Texture
			}
		}
		fresh := scene.NewFlatMaterial(c)
		fresh.Texture = tex
		n.Materials[i] = fresh
	}
	return nil
}
