package build

import (
	"sort"
	"sync"

	"github.com/frond-ui/frond/internal/errors"
	"github.com/frond-ui/frond/pkg/state"
)

// Renderable is a concrete implementation for a descriptor kind, supplied
// by the host through the Registry.
type Renderable interface {
	// Mount instantiates the renderable for a freshly built node. The node
	// carries its merged attributes and resolved children; the store is the
	// session store, for renderables that manage their own interaction
	// state. The returned instance is stored on the node for the UI host.
	Mount(n *Node, store *state.Store) (any, error)
}

// RenderableFunc adapts a function to the Renderable interface.
type RenderableFunc func(n *Node, store *state.Store) (any, error)

// Mount implements Renderable.
func (f RenderableFunc) Mount(n *Node, store *state.Store) (any, error) {
	return f(n, store)
}

// Registry maps descriptor kinds to their renderable implementations.
// It is an injected collaborator of the Builder: the core never decides
// what a kind looks like, only who to ask.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Renderable
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Renderable),
	}
}

// Register adds a renderable under the given kind. Later registrations win.
func (r *Registry) Register(kind string, impl Renderable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = impl
}

// Lookup returns the renderable for kind, or an UnknownComponentKind error.
func (r *Registry) Lookup(kind string) (Renderable, error) {
	r.mu.RLock()
	impl, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.New("E002").
			WithDetailf("No renderable registered for kind %q", kind).
			WithSuggestion("Register the kind before building, or check the descriptor for typos")
	}
	return impl, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.kinds[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}
