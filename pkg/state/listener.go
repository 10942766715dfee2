package state

import "sync/atomic"

// Listener is anything that can be notified when a store path changes.
// In the renderer this is implemented by built tree nodes; tests use
// lightweight fakes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// DepRecorder is implemented by listeners that keep a record of the store
// paths they read. The store calls RecordRead for every tracked Get so the
// listener's dependency record stays in sync with its subscriptions.
type DepRecorder interface {
	Listener
	RecordRead(path string)
}

// globalIDCounter is the source of unique IDs for listeners and stores.
var globalIDCounter uint64

// NextID returns the next unique listener ID.
// IDs are monotonically increasing and never reused.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
