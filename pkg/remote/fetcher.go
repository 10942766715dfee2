package remote

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/frond-ui/frond/pkg/state"
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 30 * time.Second

// Fetcher manages asynchronous remote fetches for a session. Issuing a
// fetch never blocks tree building: the target path holds a PendingValue
// immediately, and the fetched value (or an ErrorValue) is written to the
// store when the fetch settles, triggering a scoped rebuild of exactly the
// nodes that read the target path.
type Fetcher struct {
	store   *state.Store
	timeout time.Duration

	// group dedupes identical in-flight directives.
	group singleflight.Group

	mu      sync.Mutex
	sources map[string]Source

	// gens invalidates in-flight fetches per target path: a completion
	// whose generation no longer matches is discarded instead of
	// resurrecting a stale value.
	gens map[string]uint64

	// inflight guards against kicking the same target twice before the
	// pending marker lands.
	inflight map[string]bool

	// alive reports whether any live node still depends on a target path.
	// Set by the builder; a completion for a dead target is a no-op.
	alive func(target string) bool

	// onSettle is invoked after a fetch result is written to the store.
	onSettle func(target string)

	// gauge, when set, tracks the number of fetches in flight.
	gauge Gauge
}

// Gauge counts fetches in flight. prometheus.Gauge satisfies it.
type Gauge interface {
	Inc()
	Dec()
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a Fetcher writing results into store.
func NewFetcher(store *state.Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		store:    store,
		timeout:  DefaultTimeout,
		sources:  make(map[string]Source),
		gens:     make(map[string]uint64),
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterSource registers a named data source. Later registrations win.
func (f *Fetcher) RegisterSource(name string, s Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[name] = s
}

// SetAliveCheck installs the liveness predicate consulted before writing a
// completed fetch. Installed by the builder at session setup.
func (f *Fetcher) SetAliveCheck(alive func(target string) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = alive
}

// SetSettleHook installs a callback invoked after a fetch result lands in
// the store. Hosts use it to schedule a flush.
func (f *Fetcher) SetSettleHook(fn func(target string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSettle = fn
}

// SetInflightGauge installs a gauge tracking fetches in flight.
func (f *Fetcher) SetInflightGauge(g Gauge) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gauge = g
}

// Ensure makes sure the directive's target path holds a value: if the path
// is empty, a PendingValue is recorded and an asynchronous fetch starts.
// Ensure never blocks on the network and is safe to call on every resolve
// pass; only the first call per target kicks a fetch.
func (f *Fetcher) Ensure(d Directive) {
	if f.store.Has(d.TargetPath) {
		return
	}

	f.mu.Lock()
	if f.inflight[d.TargetPath] {
		f.mu.Unlock()
		return
	}
	f.inflight[d.TargetPath] = true
	gen := f.gens[d.TargetPath]
	source, ok := f.sources[d.Source]
	gauge := f.gauge
	f.mu.Unlock()

	// Quiet writes: the caller reads the target right after Ensure, and
	// notifying here would mark that same caller dirty for no reason.
	if !ok {
		f.store.SetQuiet(d.TargetPath, ErrorValue{
			Directive: d.Raw(),
			Message:   "unknown remote source: " + d.Source,
		})
		f.clearInflight(d.TargetPath)
		return
	}

	f.store.SetQuiet(d.TargetPath, PendingValue{Directive: d.Raw()})

	if gauge != nil {
		gauge.Inc()
	}
	go f.run(d, source, gen, gauge)
}

// Invalidate drops the value at target and allows a fresh fetch. Any fetch
// already in flight for the old generation is discarded on completion.
func (f *Fetcher) Invalidate(target string) {
	f.mu.Lock()
	f.gens[target]++
	delete(f.inflight, target)
	f.mu.Unlock()

	f.store.Delete(target)
}

// run performs the fetch off the build path and settles the result.
func (f *Fetcher) run(d Directive, source Source, gen uint64, gauge Gauge) {
	if gauge != nil {
		defer gauge.Dec()
	}

	key := d.Raw()
	value, err, _ := f.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		return source.Fetch(ctx, d)
	})

	f.settle(d, gen, value, err)
}

// settle writes the fetch outcome to the target path, unless the fetch was
// invalidated or the target's owning nodes are gone.
func (f *Fetcher) settle(d Directive, gen uint64, value any, err error) {
	f.mu.Lock()
	stale := f.gens[d.TargetPath] != gen
	alive := f.alive
	onSettle := f.onSettle
	delete(f.inflight, d.TargetPath)
	f.mu.Unlock()

	if stale {
		return
	}
	if alive != nil && !alive(d.TargetPath) {
		// Nobody reads the target anymore. Drop the pending marker so a
		// future Ensure for the same target starts a fresh fetch.
		f.store.Delete(d.TargetPath)
		return
	}

	state.Batch(func() {
		if err != nil {
			f.store.Set(d.TargetPath, ErrorValue{
				Directive: d.Raw(),
				Message:   err.Error(),
			})
		} else {
			f.store.Set(d.TargetPath, value)
		}
	})

	if onSettle != nil {
		onSettle(d.TargetPath)
	}
}

func (f *Fetcher) clearInflight(target string) {
	f.mu.Lock()
	delete(f.inflight, target)
	f.mu.Unlock()
}
