package state

import (
	"fmt"
	"reflect"
	"sync"
)

// DebugMode enables debug logging for store writes and notifications.
// Set at startup; not intended to change during runtime.
var DebugMode bool

// Store is a path-keyed reactive value store. It is the sole source of
// dynamic data for a render session: created once per session, mutated by
// user interaction or remote fetch completions, and read by the tree
// builder during resolution.
//
// Reading a path during a tracked context (see WithListener) subscribes the
// current listener to that path, so a later write to an overlapping path
// marks the listener dirty. Writes inside Batch are applied immediately but
// notify once, deduplicated, when the outermost batch completes.
type Store struct {
	id uint64

	// values holds the nested session data, keyed by root field.
	values map[string]any

	// subs maps subscribed paths to their listeners.
	subs map[string][]Listener

	// mu protects values and subs.
	mu sync.RWMutex

	closed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		id:     NextID(),
		values: make(map[string]any),
		subs:   make(map[string][]Listener),
	}
}

// NewStoreWith creates a store seeded with initial values, keyed by field
// path. A dotted key lands at its nested position, so a seed of
// {"user.name": "Ann"} reads back through Get("user.name").
func NewStoreWith(initial map[string]any) *Store {
	s := NewStore()
	for path, value := range initial {
		if segments := SplitPath(path); len(segments) > 0 {
			writePath(s.values, segments, value)
		}
	}
	return s
}

// ID returns the unique identifier for this store.
func (s *Store) ID() uint64 {
	return s.id
}

// Get returns the value at path and subscribes the current listener.
// If called during a tracked context, the listener will be notified when an
// overlapping path changes. The second return reports whether the path was
// present.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	value, ok := navigate(s.values, SplitPath(path))
	s.mu.RUnlock()

	if listener := getCurrentListener(); listener != nil {
		s.subscribe(path, listener)
		if rec, isRec := listener.(DepRecorder); isRec {
			rec.RecordRead(path)
		}
	}

	return value, ok
}

// Peek returns the value at path without subscribing.
func (s *Store) Peek(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return navigate(s.values, SplitPath(path))
}

// Set writes value at path and notifies subscribers of overlapping paths if
// the value actually changed.
func (s *Store) Set(path string, value any) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	old, existed := navigate(s.values, segments)
	changed := !existed || !valuesEqual(old, value)
	if changed {
		writePath(s.values, segments, value)
	}
	s.mu.Unlock()

	if changed {
		if DebugMode {
			fmt.Printf("[frond] store set %s\n", path)
		}
		s.notifyPath(path)
	}
}

// SetQuiet writes value at path without notifying subscribers. Intended
// for placeholder values whose readers are the writers themselves; a later
// Set with the real value still notifies normally.
func (s *Store) SetQuiet(path string, value any) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	writePath(s.values, segments, value)
}

// Update atomically reads and rewrites the value at path.
func (s *Store) Update(path string, fn func(any) any) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	old, _ := navigate(s.values, segments)
	next := fn(old)
	changed := !valuesEqual(old, next)
	if changed {
		writePath(s.values, segments, next)
	}
	s.mu.Unlock()

	if changed {
		s.notifyPath(path)
	}
}

// Delete removes the value at path and notifies subscribers of overlapping
// paths if a value was present.
func (s *Store) Delete(path string) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	_, existed := navigate(s.values, segments)
	if existed {
		deletePath(s.values, segments)
	}
	s.mu.Unlock()

	if existed {
		s.notifyPath(path)
	}
}

// Has reports whether a value exists at path, without subscribing.
func (s *Store) Has(path string) bool {
	_, ok := s.Peek(path)
	return ok
}

// Snapshot returns a shallow copy of the root fields for diagnostics.
// Nested values are shared; callers must not mutate them.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Close tears down the store at session end. Further writes are no-ops and
// all subscriptions are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[string][]Listener)
	s.values = make(map[string]any)
}

// Closed reports whether the store has been torn down.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// subscribe adds a listener to the given path's subscribers.
// Deduplicates by listener ID to prevent double-subscription.
func (s *Store) subscribe(path string, l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	lid := l.ID()
	for _, existing := range s.subs[path] {
		if existing.ID() == lid {
			return
		}
	}
	s.subs[path] = append(s.subs[path], l)
}

// Unsubscribe removes a listener from the given paths.
// Called by nodes before a rebuild so stale dependencies stop notifying.
func (s *Store) Unsubscribe(l Listener, paths []string) {
	if l == nil || len(paths) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, path := range paths {
		listeners := s.subs[path]
		for i, existing := range listeners {
			if existing.ID() == lid {
				listeners[i] = listeners[len(listeners)-1]
				s.subs[path] = listeners[:len(listeners)-1]
				break
			}
		}
		if len(s.subs[path]) == 0 {
			delete(s.subs, path)
		}
	}
}

// notifyPath notifies subscribers of every subscribed path that overlaps
// the written path. Uses copy-before-notify to avoid holding the lock
// during notification.
func (s *Store) notifyPath(path string) {
	s.mu.RLock()
	var affected []Listener
	for subbed, listeners := range s.subs {
		if Overlaps(subbed, path) {
			affected = append(affected, listeners...)
		}
	}
	s.mu.RUnlock()

	if len(affected) == 0 {
		return
	}

	if getBatchDepth() > 0 {
		for _, l := range affected {
			queuePendingUpdate(l)
		}
		return
	}

	for _, l := range affected {
		l.MarkDirty()
	}
}

// valuesEqual provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for others.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return reflect.DeepEqual(a, b)
	}
}
