package state

import (
	"sync"
	"testing"
)

// testListener is a simple Listener implementation for testing.
type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
	reads []string
}

func newTestListener() *testListener {
	return &testListener{id: NextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty++
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) RecordRead(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads = append(l.reads, path)
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func (l *testListener) getReads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.reads))
	copy(out, l.reads)
	return out
}

func TestStoreGetSet(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get("name"); ok {
		t.Error("expected missing path before first Set")
	}

	store.Set("name", "Ann")
	v, ok := store.Get("name")
	if !ok || v != "Ann" {
		t.Errorf("expected Ann, got %v (ok=%v)", v, ok)
	}
}

func TestStoreNestedPaths(t *testing.T) {
	store := NewStore()
	store.Set("user.profile.name", "Ann")

	v, ok := store.Get("user.profile.name")
	if !ok || v != "Ann" {
		t.Errorf("expected Ann at nested path, got %v", v)
	}

	// Reading an intermediate path returns the nested structure.
	profile, ok := store.Get("user.profile")
	if !ok {
		t.Fatal("expected intermediate path to exist")
	}
	m, ok := profile.(map[string]any)
	if !ok || m["name"] != "Ann" {
		t.Errorf("unexpected intermediate value: %v", profile)
	}
}

func TestStoreSliceIndexing(t *testing.T) {
	store := NewStore()
	store.Set("items", []any{"a", "b", "c"})

	v, ok := store.Get("items.1")
	if !ok || v != "b" {
		t.Errorf("expected b at items.1, got %v", v)
	}

	if _, ok := store.Get("items.9"); ok {
		t.Error("out-of-range index should be absent")
	}
}

func TestStoreSubscription(t *testing.T) {
	store := NewStore()
	store.Set("count", 0)
	listener := newTestListener()

	WithListener(listener, func() {
		_, _ = store.Get("count")
	})

	store.Set("count", 1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value should not notify.
	store.Set("count", 1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("same value should not notify, got %d", listener.getDirtyCount())
	}

	store.Set("count", 2)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestStoreNoTrackingOutsideContext(t *testing.T) {
	store := NewStore()
	store.Set("count", 0)
	listener := newTestListener()

	// Read outside of any tracking context.
	_, _ = store.Get("count")

	WithListener(listener, func() {
		// No reads here.
	})

	store.Set("count", 1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("expected 0 notifications when not tracking, got %d", listener.getDirtyCount())
	}
}

func TestStorePeekDoesNotSubscribe(t *testing.T) {
	store := NewStore()
	store.Set("count", 42)
	listener := newTestListener()

	WithListener(listener, func() {
		v, _ := store.Peek("count")
		if v != 42 {
			t.Errorf("expected 42, got %v", v)
		}
	})

	store.Set("count", 100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.getDirtyCount())
	}
}

func TestStoreUntracked(t *testing.T) {
	store := NewStore()
	store.Set("count", 7)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_, _ = store.Get("count")
		})
	})

	store.Set("count", 8)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Untracked reads should not subscribe, got %d", listener.getDirtyCount())
	}
}

func TestStoreDependencyRecording(t *testing.T) {
	store := NewStore()
	store.Set("a", 1)
	store.Set("b", 2)
	listener := newTestListener()

	WithListener(listener, func() {
		_, _ = store.Get("a")
		_, _ = store.Get("b")
	})

	reads := listener.getReads()
	if len(reads) != 2 || reads[0] != "a" || reads[1] != "b" {
		t.Errorf("expected reads [a b], got %v", reads)
	}
}

func TestStoreOverlappingPathNotification(t *testing.T) {
	store := NewStore()
	store.Set("user.name", "Ann")

	parentReader := newTestListener()
	WithListener(parentReader, func() {
		_, _ = store.Get("user")
	})

	childReader := newTestListener()
	WithListener(childReader, func() {
		_, _ = store.Get("user.name")
	})

	// Writing the leaf notifies both the leaf reader and the ancestor reader.
	store.Set("user.name", "Bob")
	if parentReader.getDirtyCount() != 1 {
		t.Errorf("ancestor reader expected 1 notification, got %d", parentReader.getDirtyCount())
	}
	if childReader.getDirtyCount() != 1 {
		t.Errorf("leaf reader expected 1 notification, got %d", childReader.getDirtyCount())
	}

	// Writing the whole subtree notifies the leaf reader too.
	store.Set("user", map[string]any{"name": "Cas"})
	if childReader.getDirtyCount() != 2 {
		t.Errorf("leaf reader expected 2 notifications, got %d", childReader.getDirtyCount())
	}
}

func TestStoreUnrelatedPathNotNotified(t *testing.T) {
	store := NewStore()
	store.Set("user.name", "Ann")
	store.Set("username", "ann42")

	listener := newTestListener()
	WithListener(listener, func() {
		_, _ = store.Get("user.name")
	})

	// "username" shares a string prefix with "user" but is not an ancestor.
	store.Set("username", "bob99")
	if listener.getDirtyCount() != 0 {
		t.Errorf("unrelated path should not notify, got %d", listener.getDirtyCount())
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	store.Set("count", 0)
	listener := newTestListener()

	WithListener(listener, func() {
		_, _ = store.Get("count")
	})

	store.Unsubscribe(listener, []string{"count"})

	store.Set("count", 1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("unsubscribed listener should not be notified, got %d", listener.getDirtyCount())
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	store.Set("temp", "value")
	listener := newTestListener()

	WithListener(listener, func() {
		_, _ = store.Get("temp")
	})

	store.Delete("temp")
	if listener.getDirtyCount() != 1 {
		t.Errorf("delete should notify, got %d", listener.getDirtyCount())
	}
	if store.Has("temp") {
		t.Error("deleted path should be absent")
	}

	// Deleting an absent path does not notify.
	store.Delete("temp")
	if listener.getDirtyCount() != 1 {
		t.Errorf("deleting absent path should not notify, got %d", listener.getDirtyCount())
	}
}

func TestStoreUpdate(t *testing.T) {
	store := NewStore()
	store.Set("count", 10)

	store.Update("count", func(v any) any {
		return v.(int) * 2
	})

	v, _ := store.Peek("count")
	if v != 20 {
		t.Errorf("expected 20, got %v", v)
	}
}

func TestStoreClose(t *testing.T) {
	store := NewStore()
	store.Set("count", 1)
	listener := newTestListener()

	WithListener(listener, func() {
		_, _ = store.Get("count")
	})

	store.Close()
	if !store.Closed() {
		t.Error("expected store to report closed")
	}

	// Writes after close are no-ops and notify nobody.
	store.Set("count", 2)
	if listener.getDirtyCount() != 0 {
		t.Errorf("closed store should not notify, got %d", listener.getDirtyCount())
	}
	if store.Has("count") {
		t.Error("closed store should hold no values")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Set("shared", n*100+j)
				_, _ = store.Peek("shared")
			}
		}(i)
	}
	wg.Wait()

	if !store.Has("shared") {
		t.Error("expected shared value after concurrent writes")
	}
}

func TestValuesEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{1, 1, true},
		{1, 2, false},
		{"a", "a", true},
		{"a", "b", false},
		{true, true, true},
		{nil, nil, true},
		{nil, 1, false},
		{1, "1", false},
		{map[string]any{"k": 1}, map[string]any{"k": 1}, true},
		{[]any{1, 2}, []any{1, 2}, true},
		{[]any{1, 2}, []any{2, 1}, false},
	}

	for _, tc := range cases {
		if got := valuesEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("valuesEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNewStoreWithSplitsDottedKeys(t *testing.T) {
	store := NewStoreWith(map[string]any{
		"user.name": "Ann",
		"theme":     map[string]any{"mode": "dark"},
	})

	if v, ok := store.Peek("user.name"); !ok || v != "Ann" {
		t.Errorf("user.name = %v, %v; want Ann, true", v, ok)
	}
	if v, ok := store.Peek("theme.mode"); !ok || v != "dark" {
		t.Errorf("theme.mode = %v, %v; want dark, true", v, ok)
	}
	if _, ok := store.Peek("user.name.first"); ok {
		t.Error("expected no value below a leaf")
	}
}
