package state

// Batch groups multiple store writes into a single notification phase.
// All writes within the batch function are applied immediately, but the
// affected listeners are collected, deduplicated, and notified once when
// the outermost batch completes.
//
// This is what collapses a burst of mutations in one logical tick into a
// single rebuild pass per affected node.
//
// Batches can be nested. Notifications only fire when the outermost batch
// completes.
//
// Example:
//
//	state.Batch(func() {
//	    store.Set("user.first", "John")
//	    store.Set("user.last", "Doe")
//	})
//	// Each dependent node is marked dirty once, with both changes visible.
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	for _, listener := range unique {
		listener.MarkDirty()
	}
}
