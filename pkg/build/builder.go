package build

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/frond-ui/frond/internal/errors"
	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/remote"
	"github.com/frond-ui/frond/pkg/state"
)

// RootPath is the path identity assigned to a mounted tree's root node.
const RootPath = "root"

// Builder turns descriptors into live Node trees. Every store read made
// while a node is being built lands in that node's dependency record, so
// later state changes rebuild exactly the nodes that read the changed
// paths. Subtrees are immutable once built; a change produces a fresh
// subtree spliced into the same slot.
type Builder struct {
	store    *state.Store
	registry *Registry
	resolver *Resolver
	fetcher  *remote.Fetcher
	observer Observer

	scheduler *Scheduler

	mu    sync.RWMutex
	nodes map[string]*Node
	root  *Node
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFetcher attaches a remote fetcher, enabling remote-fetch directives
// in attribute values. The builder wires the fetcher's liveness check to
// its own dependency records, so fetches whose consumers are gone settle
// as no-ops.
func WithFetcher(f *remote.Fetcher) BuilderOption {
	return func(b *Builder) {
		b.fetcher = f
	}
}

// WithObserver attaches an observer for build and flush events.
func WithObserver(o Observer) BuilderOption {
	return func(b *Builder) {
		b.observer = o
	}
}

// New creates a Builder over the given store and registry.
func New(store *state.Store, registry *Registry, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:    store,
		registry: registry,
		observer: NopObserver{},
		nodes:    make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.resolver = NewResolver(store, b.fetcher)
	b.scheduler = newScheduler(b)

	if b.fetcher != nil {
		b.fetcher.SetAliveCheck(b.pathAlive)
		b.fetcher.SetSettleHook(func(string) {
			b.scheduler.signalWork()
		})
	}
	return b
}

// Store returns the builder's session store.
func (b *Builder) Store() *state.Store {
	return b.store
}

// Scheduler returns the builder's update scheduler.
func (b *Builder) Scheduler() *Scheduler {
	return b.scheduler
}

// Root returns the current root node, nil before Mount.
func (b *Builder) Root() *Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.root
}

// NodeAt returns the live node registered at path.
func (b *Builder) NodeAt(path string) (*Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.nodes[path]
	return n, ok
}

// Mount builds desc as the root of the live tree. inherited attributes are
// merged into the root's own attributes, overriding on key conflict; they
// do not propagate further down. The returned node is non-nil even on
// failure; a non-nil error mirrors the node's recorded build error.
func (b *Builder) Mount(desc *descriptor.Descriptor, inherited map[string]any) (*Node, error) {
	if old := b.Root(); old != nil {
		old.unmount()
	}

	var n *Node
	if desc == nil {
		n = b.errorNode(RootPath, "", errors.New("E001").
			WithPath(RootPath).
			WithDetail("Nil root descriptor"))
	} else {
		n = b.buildDescriptor(desc, inherited, RootPath)
	}
	n.splice = b.setRoot
	b.setRoot(n)
	return n, n.Err
}

// Build constructs the value at the given node position. Nil and
// primitives pass through unchanged, descriptors build into nodes, and
// already built nodes are returned as-is. Sequences, structured values and
// opaque values in node position are malformed and yield an error node.
func (b *Builder) Build(value any, path string) any {
	if n, ok := value.(*Node); ok {
		return n
	}

	switch descriptor.Classify(value) {
	case descriptor.ClassNil:
		return nil
	case descriptor.ClassPrimitive:
		return value
	case descriptor.ClassDescriptor:
		d, ok := descriptor.AsDescriptor(value)
		if !ok {
			return b.malformedNode(path, value)
		}
		return b.buildDescriptor(d, nil, path)
	default:
		return b.errorNode(path, "", errors.New("E001").
			WithPath(path).
			WithDetailf("%s value cannot occupy a node position", descriptor.Classify(value)).
			WithSuggestion("Wrap the value in a descriptor with a kind, or place it in an attribute"))
	}
}

// buildDescriptor builds one descriptor into a Node at path. Structural
// failures (unknown kind, duplicate child identity, renderable panic) are
// confined to the returned node; siblings and ancestors are untouched.
func (b *Builder) buildDescriptor(desc *descriptor.Descriptor, inherited map[string]any, path string) (n *Node) {
	start := time.Now()
	b.observer.BuildStart(path)

	n = &Node{
		Path:      path,
		Kind:      desc.Kind,
		id:        state.NextID(),
		desc:      desc,
		inherited: inherited,
		depSet:    make(map[string]struct{}),
		builder:   b,
	}
	// Registered before resolution so liveness checks see the node's
	// dependency record as soon as reads land in it.
	b.registerNode(n)

	defer func() {
		if r := recover(); r != nil {
			n.Err = errors.New("E001").
				WithPath(path).
				WithDetailf("Build panicked: %v", r)
		}
		b.observer.BuildEnd(path, n.Err, time.Since(start))
	}()

	impl, err := b.registry.Lookup(desc.Kind)
	if err != nil {
		n.Err = errors.FromError(err, "E002").WithPath(path)
		return n
	}

	attrs := make(map[string]any, len(desc.Attributes)+len(inherited))
	state.WithListener(n, func() {
		keys := make([]string, 0, len(desc.Attributes))
		for k := range desc.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			v := b.buildValue(desc.Attributes[key], path+".attributes."+key)
			attrs[key] = v
			if child, ok := v.(*Node); ok {
				key := key
				child.splice = func(nn *Node) { attrs[key] = nn }
			}
		}
	})
	for k, v := range inherited {
		attrs[k] = v
	}
	n.Attrs = attrs

	if len(desc.Children) > 0 {
		children := make([]any, len(desc.Children))
		seen := make(map[string]struct{}, len(desc.Children))
		state.WithListener(n, func() {
			for i, raw := range desc.Children {
				childPath := path + ".children[" + strconv.Itoa(i) + "]"
				if d, ok := descriptor.AsDescriptor(raw); ok && d.Key != "" {
					childPath = path + ".children[" + d.Key + "]"
				}
				if _, dup := seen[childPath]; dup {
					children[i] = b.errorNode(childPath+"#"+strconv.Itoa(i), kindOf(raw), errors.New("E010").
						WithPath(childPath).
						WithDetailf("Sibling child identity %q is already taken", childPath).
						WithSuggestion("Give each keyed sibling a distinct key"))
					continue
				}
				seen[childPath] = struct{}{}

				var v any
				switch descriptor.Classify(raw) {
				case descriptor.ClassSequence, descriptor.ClassStructured:
					v = b.errorNode(childPath, kindOf(raw), errors.New("E001").
						WithPath(childPath).
						WithDetailf("%s value cannot occupy a child position", descriptor.Classify(raw)).
						WithSuggestion("Wrap the value in a descriptor with a kind, or move it into an attribute"))
				default:
					v = b.buildValue(raw, childPath)
				}
				children[i] = v
				if child, ok := v.(*Node); ok {
					i := i
					child.splice = func(nn *Node) { children[i] = nn }
				}
			}
		})
		n.Children = children
	}

	instance, err := impl.Mount(n, b.store)
	if err != nil {
		n.Err = errors.FromError(err, "E001").WithPath(path)
		return n
	}
	n.Instance = instance
	return n
}

// buildValue resolves an arbitrary value found inside a descriptor. Nested
// descriptors build into child nodes; sequences and structured values are
// walked with extended paths so nested nodes keep stable identities.
// Everything else goes through binding resolution.
func (b *Builder) buildValue(value any, path string) any {
	switch descriptor.Classify(value) {
	case descriptor.ClassDescriptor:
		d, ok := descriptor.AsDescriptor(value)
		if !ok {
			return b.malformedNode(path, value)
		}
		return b.buildDescriptor(d, nil, path)

	case descriptor.ClassSequence:
		seq, ok := value.([]any)
		if !ok {
			return value
		}
		out := make([]any, len(seq))
		for i, item := range seq {
			v := b.buildValue(item, path+"["+strconv.Itoa(i)+"]")
			out[i] = v
			if child, ok := v.(*Node); ok {
				i := i
				child.splice = func(nn *Node) { out[i] = nn }
			}
		}
		return out

	case descriptor.ClassStructured:
		m, ok := value.(map[string]any)
		if !ok {
			return value
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			v := b.buildValue(item, path+"."+k)
			out[k] = v
			if child, ok := v.(*Node); ok {
				k := k
				child.splice = func(nn *Node) { out[k] = nn }
			}
		}
		return out

	case descriptor.ClassOpaque:
		return b.errorNode(path, kindOf(value), errors.New("E001").
			WithPath(path).
			WithDetailf("Value of type %T cannot appear in configuration", value).
			WithSuggestion("Pass data, not behavior; register a kind for custom rendering"))

	default:
		return b.resolver.Resolve(value)
	}
}

// rebuild replaces n with a fresh build of its descriptor at the same path
// and splices the replacement into n's slot. The old subtree is unmounted
// first so stale nodes stop listening before their paths are reused.
func (b *Builder) rebuild(n *Node) *Node {
	splice := n.splice
	inherited := n.inherited
	desc := n.desc
	path := n.Path

	n.unmount()

	nn := b.buildDescriptor(desc, inherited, path)
	nn.splice = splice
	if splice != nil {
		splice(nn)
	}
	return nn
}

// malformedNode creates an error node for a value that looks like a
// descriptor but fails to decode as one.
func (b *Builder) malformedNode(path string, value any) *Node {
	return b.errorNode(path, kindOf(value), errors.New("E001").
		WithPath(path).
		WithDetailf("Value of type %T does not decode as a node descriptor", value))
}

// errorNode creates a failure node carrying err.
func (b *Builder) errorNode(path, kind string, err error) *Node {
	n := &Node{
		Path:    path,
		Kind:    kind,
		Err:     err,
		id:      state.NextID(),
		builder: b,
	}
	b.registerNode(n)
	b.observer.BuildEnd(path, err, 0)
	return n
}

// pathAlive reports whether any live node's dependency record overlaps
// path. The remote fetcher uses it to discard results nobody reads.
func (b *Builder) pathAlive(path string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, n := range b.nodes {
		if n.DependsOn(path) {
			return true
		}
	}
	return false
}

func (b *Builder) setRoot(n *Node) {
	b.mu.Lock()
	b.root = n
	b.mu.Unlock()
}

func (b *Builder) registerNode(n *Node) {
	b.mu.Lock()
	b.nodes[n.Path] = n
	b.mu.Unlock()
}

// forgetNode drops n from the node table unless the path has already been
// claimed by a replacement.
func (b *Builder) forgetNode(n *Node) {
	b.mu.Lock()
	if cur, ok := b.nodes[n.Path]; ok && cur == n {
		delete(b.nodes, n.Path)
	}
	b.mu.Unlock()
}

func kindOf(value any) string {
	if d, ok := descriptor.AsDescriptor(value); ok {
		return d.Kind
	}
	return fmt.Sprintf("%T", value)
}
