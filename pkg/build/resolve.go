package build

import (
	"strings"

	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/remote"
	"github.com/frond-ui/frond/pkg/state"
)

// StatePrefix marks a string attribute value as a local state binding.
const StatePrefix = "$state."

// Resolver substitutes variable references inside configuration values
// using current store state, and kicks remote fetches for remote-fetch
// directives. Store reads go through Store.Get, so every substitution is
// recorded in the dependency record of whatever node is currently being
// built.
type Resolver struct {
	store   *state.Store
	fetcher *remote.Fetcher
}

// NewResolver creates a Resolver over the given store. fetcher may be nil,
// in which case remote directives resolve to error values.
func NewResolver(store *state.Store, fetcher *remote.Fetcher) *Resolver {
	return &Resolver{store: store, fetcher: fetcher}
}

// ResolveString resolves one string value:
//   - "$state.<path>" reads the store (tracked) and yields the value there,
//     or nil while the path is absent.
//   - "$remote.<source>.<args> -> <target>" ensures the fetch is running
//     and yields the target path's current value: a pending marker until
//     the fetch settles, then the fetched value or a recorded error value.
//   - "$$..." escapes a literal leading dollar sign.
//   - anything else passes through unchanged.
func (r *Resolver) ResolveString(s string) any {
	if strings.HasPrefix(s, "$$") {
		return s[1:]
	}

	if strings.HasPrefix(s, StatePrefix) {
		v, ok := r.store.Get(s[len(StatePrefix):])
		if !ok {
			return nil
		}
		return v
	}

	if remote.IsDirective(s) {
		d, err := remote.ParseDirective(s)
		if err != nil {
			return remote.ErrorValue{Directive: s, Message: err.Error()}
		}
		if r.fetcher == nil {
			return remote.ErrorValue{Directive: s, Message: "no remote fetcher configured"}
		}
		// Read before Ensure so the target lands in the current node's
		// dependency record before a fetch can possibly settle.
		v, ok := r.store.Get(d.TargetPath)
		if ok {
			return v
		}
		r.fetcher.Ensure(d)
		v, _ = r.store.Get(d.TargetPath)
		return v
	}

	return s
}

// Resolve deep-resolves an arbitrary value: strings through ResolveString,
// sequences and structured values element-wise, everything else unchanged.
// Nested node descriptors are not built here; the builder intercepts them
// before resolution.
func (r *Resolver) Resolve(value any) any {
	switch descriptor.Classify(value) {
	case descriptor.ClassPrimitive:
		if s, ok := value.(string); ok {
			return r.ResolveString(s)
		}
		return value
	case descriptor.ClassSequence:
		seq, ok := value.([]any)
		if !ok {
			return value
		}
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = r.Resolve(item)
		}
		return out
	case descriptor.ClassStructured:
		m, ok := value.(map[string]any)
		if !ok {
			return value
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = r.Resolve(v)
		}
		return out
	default:
		return value
	}
}
