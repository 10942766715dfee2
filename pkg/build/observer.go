package build

import "time"

// Observer receives build and flush lifecycle events. Implementations live
// in pkg/observe (prometheus metrics, otel tracing); the zero default is a
// no-op.
type Observer interface {
	// BuildStart fires when a descriptor node build begins.
	BuildStart(path string)

	// BuildEnd fires when a descriptor node build finishes.
	// err is non-nil for structural failures (including isolated ones).
	BuildEnd(path string, err error, elapsed time.Duration)

	// FlushStart fires when a scheduler flush pass begins.
	FlushStart()

	// FlushEnd fires when a flush pass finishes, with the number of
	// subtrees rebuilt.
	FlushEnd(affected int, elapsed time.Duration)
}

// NopObserver is an Observer that does nothing.
type NopObserver struct{}

func (NopObserver) BuildStart(string)                      {}
func (NopObserver) BuildEnd(string, error, time.Duration)  {}
func (NopObserver) FlushStart()                            {}
func (NopObserver) FlushEnd(int, time.Duration)            {}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) BuildStart(path string) {
	for _, o := range m {
		o.BuildStart(path)
	}
}

func (m MultiObserver) BuildEnd(path string, err error, elapsed time.Duration) {
	for _, o := range m {
		o.BuildEnd(path, err, elapsed)
	}
}

func (m MultiObserver) FlushStart() {
	for _, o := range m {
		o.FlushStart()
	}
}

func (m MultiObserver) FlushEnd(affected int, elapsed time.Duration) {
	for _, o := range m {
		o.FlushEnd(affected, elapsed)
	}
}
