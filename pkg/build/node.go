package build

import (
	"sync"
	"sync/atomic"

	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/state"
)

// Node is a built UI node: the resolved output of one descriptor. Nodes are
// replaced, never mutated, when their descriptor's dependencies change; the
// path identity is what links a replacement to its predecessor.
type Node struct {
	// Path is the stable path identity of this node in the descriptor tree
	// (e.g. "root.children[0].attributes.extra").
	Path string

	// Kind is the descriptor kind this node was built from.
	Kind string

	// Attrs holds the materialized attribute values after binding
	// resolution and inherited-attribute merging.
	Attrs map[string]any

	// Children are the resolved children: *Node for built descriptors,
	// primitives passed through unchanged.
	Children []any

	// Instance is whatever the registry's renderable returned on Mount.
	Instance any

	// Err is set when this subtree's build failed structurally. The error
	// is isolated here; siblings build normally.
	Err error

	id uint64

	// Rebuild inputs, retained so the scheduler can re-run this node alone.
	desc      *descriptor.Descriptor
	inherited map[string]any

	// splice places a replacement node into this node's slot in the live
	// tree (parent children slice, attribute map, or builder root).
	splice func(*Node)

	// Dependency record: the store paths read during the last build.
	depMu  sync.Mutex
	deps   []string
	depSet map[string]struct{}

	dirty     atomic.Bool
	unmounted atomic.Bool

	builder *Builder
}

var _ state.DepRecorder = (*Node)(nil)

// ID implements state.Listener.
func (n *Node) ID() uint64 {
	return n.id
}

// MarkDirty implements state.Listener: a store path in this node's
// dependency record changed, so the node schedules itself for rebuild.
// Uses CAS so a burst of notifications schedules once.
func (n *Node) MarkDirty() {
	if n.unmounted.Load() {
		return
	}
	if n.dirty.CompareAndSwap(false, true) {
		if n.builder != nil {
			n.builder.scheduler.schedule(n)
		}
	}
}

// IsDirty reports whether the node is scheduled for rebuild.
func (n *Node) IsDirty() bool {
	return n.dirty.Load()
}

// RecordRead implements state.DepRecorder: the store calls it for every
// tracked read during this node's build.
func (n *Node) RecordRead(path string) {
	n.depMu.Lock()
	defer n.depMu.Unlock()
	if _, ok := n.depSet[path]; ok {
		return
	}
	n.depSet[path] = struct{}{}
	n.deps = append(n.deps, path)
}

// Deps returns a copy of the node's dependency record.
func (n *Node) Deps() []string {
	n.depMu.Lock()
	defer n.depMu.Unlock()
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out
}

// DependsOn reports whether the node's dependency record overlaps path.
func (n *Node) DependsOn(path string) bool {
	n.depMu.Lock()
	defer n.depMu.Unlock()
	for _, d := range n.deps {
		if state.Overlaps(d, path) {
			return true
		}
	}
	return false
}

// IsError reports whether this node is an isolated build failure.
func (n *Node) IsError() bool {
	return n.Err != nil
}

// Descriptor returns the descriptor this node was built from.
func (n *Node) Descriptor() *descriptor.Descriptor {
	return n.desc
}

// Unmounted reports whether the node has been removed from the live tree.
func (n *Node) Unmounted() bool {
	return n.unmounted.Load()
}

// unmount removes the node from the live tree: it stops listening, drops
// out of the builder's node table, and recursively unmounts built children
// (including nodes nested in attribute values).
func (n *Node) unmount() {
	if n.unmounted.Swap(true) {
		return
	}

	if n.builder != nil {
		n.builder.store.Unsubscribe(n, n.Deps())
		n.builder.forgetNode(n)
	}

	for _, child := range n.Children {
		unmountBuilt(child)
	}
	for _, v := range n.Attrs {
		unmountBuilt(v)
	}
}

// unmountBuilt recursively unmounts any *Node reachable inside a resolved
// value (directly, in sequences, or in structured values).
func unmountBuilt(value any) {
	switch v := value.(type) {
	case *Node:
		v.unmount()
	case []any:
		for _, item := range v {
			unmountBuilt(item)
		}
	case map[string]any:
		for _, item := range v {
			unmountBuilt(item)
		}
	}
}
