// Package interact implements pointer hit-testing over the clickable houses of the map:
// the registry built at load time, the hover/highlight state machine and click-to-navigate.
package interact

import (
	"errors"

	"casatour/internal/scene"
)

// ErrSealed is returned by Registry.Add once the post-load traversal has finished.
var ErrSealed = errors.New("interact: registry is sealed")

// Registry is the set of clickable nodes. It is filled once after a load, then sealed and
// only read. Nodes are kept in insertion order so ray queries are deterministic.
type Registry struct {
	nodes  []*scene.Node
	index  map[*scene.Node]struct{}
	sealed bool
}

// NewRegistry returns an empty, open registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[*scene.Node]struct{})}
}

// Add inserts n and reports whether it was new. Adding after Seal fails with ErrSealed.
func (r *Registry) Add(n *scene.Node) (bool, error) {
	if r.sealed {
		return false, ErrSealed
	}
	if n == nil {
		return false, nil
	}
	if _, ok := r.index[n]; ok {
		return false, nil
	}
	r.index[n] = struct{}{}
	r.nodes = append(r.nodes, n)
	return true, nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Contains reports whether n is registered.
func (r *Registry) Contains(n *scene.Node) bool {
	_, ok := r.index[n]
	return ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Nodes returns the registered nodes in insertion order. The slice must not be modified.
func (r *Registry) Nodes() []*scene.Node {
	return r.nodes
}

// Clear empties and reopens the registry for a fresh load.
func (r *Registry) Clear() {
	r.nodes = nil
	r.index = make(map[*scene.Node]struct{})
	r.sealed = false
}
