// Package frond renders declarative UI trees from configuration and keeps
// them current through dependency-scoped incremental updates.
//
// This is the recommended import for most applications:
//
//	import "github.com/frond-ui/frond"
//
// Usage:
//
//	sess := frond.NewSession(frond.Config{})
//	root, err := sess.MountJSON(configBytes)
//	sess.Set("user.name", "Ann")
//	replaced := sess.Flush()
package frond

import (
	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/remote"
	"github.com/frond-ui/frond/pkg/state"
)

// Node is a built UI node. See build.Node.
type Node = build.Node

// Descriptor is the serializable specification of one UI node.
type Descriptor = descriptor.Descriptor

// Registry maps descriptor kinds to renderable implementations.
type Registry = build.Registry

// Renderable is a concrete implementation for a descriptor kind.
type Renderable = build.Renderable

// RenderableFunc adapts a function to the Renderable interface.
type RenderableFunc = build.RenderableFunc

// Store is the session state store.
type Store = state.Store

// Source is an externally supplied asynchronous data source.
type Source = remote.Source

// SourceFunc adapts a function to the Source interface.
type SourceFunc = remote.SourceFunc

// NewRegistry creates an empty kind registry.
func NewRegistry() *Registry {
	return build.NewRegistry()
}

// Batch groups state writes so each affected node is rebuilt at most once
// at the next flush.
func Batch(fn func()) {
	state.Batch(fn)
}
