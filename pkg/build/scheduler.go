package build

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Scheduler collects dirty nodes and rebuilds them in batched flush
// passes. Marks between flushes coalesce per node, and a dirty node whose
// ancestor is also dirty is subsumed: the ancestor's rebuild replaces the
// descendant anyway. Ancestors of a dirty node are never rebuilt.
type Scheduler struct {
	builder *Builder

	mu     sync.Mutex
	dirty  map[string]*Node
	notify func(replaced []*Node)

	signal chan struct{}
}

func newScheduler(b *Builder) *Scheduler {
	return &Scheduler{
		builder: b,
		dirty:   make(map[string]*Node),
		signal:  make(chan struct{}, 1),
	}
}

// schedule queues n for the next flush. Called from Node.MarkDirty, which
// already guarantees at most one schedule per node per flush cycle.
func (s *Scheduler) schedule(n *Node) {
	s.mu.Lock()
	s.dirty[n.Path] = n
	s.mu.Unlock()
	s.signalWork()
}

// Pending returns the number of nodes queued for rebuild.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty)
}

// Signal returns a channel that receives whenever work may be available.
// Hosts drive their update loop from it and call Flush.
func (s *Scheduler) Signal() <-chan struct{} {
	return s.signal
}

// SetNotifier installs a callback invoked after each non-empty flush with
// the replacement subtree roots.
func (s *Scheduler) SetNotifier(fn func(replaced []*Node)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Flush rebuilds every queued node once and returns the replacement
// subtree roots. Queued nodes that were unmounted, or whose ancestor is
// also queued, are dropped without a rebuild. Flushing with an empty
// queue is a no-op.
func (s *Scheduler) Flush() []*Node {
	s.mu.Lock()
	queued := s.dirty
	s.dirty = make(map[string]*Node)
	notify := s.notify
	s.mu.Unlock()

	if len(queued) == 0 {
		return nil
	}

	start := time.Now()
	s.builder.observer.FlushStart()

	paths := make([]string, 0, len(queued))
	for p := range queued {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	replaced := make([]*Node, 0, len(paths))
	for _, p := range paths {
		n := queued[p]
		if n.Unmounted() {
			continue
		}
		if subsumedBy(p, queued) {
			continue
		}
		replaced = append(replaced, s.builder.rebuild(n))
	}

	s.builder.observer.FlushEnd(len(replaced), time.Since(start))

	if notify != nil && len(replaced) > 0 {
		notify(replaced)
	}
	return replaced
}

func (s *Scheduler) signalWork() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// subsumedBy reports whether a strict ancestor of path is also queued.
func subsumedBy(path string, queued map[string]*Node) bool {
	for q := range queued {
		if q != path && strings.HasPrefix(path, q+".") {
			return true
		}
	}
	return false
}
