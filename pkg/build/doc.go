// Package build turns configuration descriptors into live UI node trees
// and keeps them current as session state changes.
//
// Dependencies are tracked automatically at build time: every store read
// made while a node's attributes and children are being resolved lands in
// that node's dependency record. When a store path later changes, only the
// nodes whose records overlap the written path are rebuilt.
//
// # Building
//
//	store := state.NewStore()
//	reg := build.NewRegistry()
//	reg.Register("label", build.RenderableFunc(mountLabel))
//
//	b := build.New(store, reg)
//	root, err := b.Mount(desc, nil)
//
// Nodes are immutable once built. A dependency change produces a fresh
// subtree spliced into the old one's slot; untouched siblings and
// ancestors keep their original node values.
//
// # Updating
//
// Dirty nodes accumulate in the builder's Scheduler and are rebuilt in
// batched flush passes driven by the host:
//
//	store.Set("user.name", "Bob")
//	replaced := b.Scheduler().Flush()
//
// Writes inside state.Batch coalesce into a single mark per node, and a
// dirty node whose ancestor is also dirty is rebuilt once, as part of the
// ancestor's subtree.
//
// # Failure isolation
//
// Structural failures (unknown kind, malformed value in node position,
// duplicate sibling identity) are confined to an error node at the failing
// position. The rest of the tree builds normally.
package build
