// Package state provides the path-keyed reactive store backing a render
// session.
//
// A Store maps dotted field paths ("user.name", "items.2.label") to values.
// Reading a path during a tracked context automatically subscribes the
// current listener to that path:
//
//	store := state.NewStore()
//	store.Set("name", "Ann")
//
//	state.WithListener(node, func() {
//	    v, _ := store.Get("name") // node now depends on "name"
//	    _ = v
//	})
//
//	store.Set("name", "Bob") // node.MarkDirty() fires
//
// Dependency matching over-approximates: a write to "user" notifies readers
// of "user.name" and vice versa, so a listener is never left stale because
// a mutation landed above or below the exact path it read.
//
// # Batching
//
// Multiple writes can be batched to trigger a single notification per
// affected listener:
//
//	state.Batch(func() {
//	    store.Set("a", 1)
//	    store.Set("b", 2)
//	})
//
// Writes inside a batch are applied immediately; a listener notified at the
// end of the batch therefore observes the final values, never intermediate
// states from earlier in the same tick.
//
// # Thread safety
//
// Tracking contexts are per goroutine. The store itself is safe for
// concurrent use, which is what lets remote fetch completions write into a
// session's store from their own goroutines.
package state
