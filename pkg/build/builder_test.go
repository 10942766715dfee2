package build

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/frond-ui/frond/internal/errors"
	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/remote"
	"github.com/frond-ui/frond/pkg/state"
)

func testRegistry() *Registry {
	reg := NewRegistry()
	for _, kind := range []string{"panel", "label", "button", "list"} {
		kind := kind
		reg.Register(kind, RenderableFunc(func(n *Node, _ *state.Store) (any, error) {
			return kind + "@" + n.Path, nil
		}))
	}
	return reg
}

func childNode(t *testing.T, parent *Node, i int) *Node {
	t.Helper()
	n, ok := parent.Children[i].(*Node)
	if !ok {
		t.Fatalf("child %d is %T, want *Node", i, parent.Children[i])
	}
	return n
}

// nodeSummary is a comparable snapshot of a built subtree, for go-cmp.
type nodeSummary struct {
	Path     string
	Kind     string
	Err      string
	Attrs    map[string]any
	Children []any
}

func summarize(v any) any {
	switch x := v.(type) {
	case *Node:
		s := nodeSummary{Path: x.Path, Kind: x.Kind}
		if x.Err != nil {
			s.Err = errors.CodeOf(x.Err)
		}
		if len(x.Attrs) > 0 {
			s.Attrs = make(map[string]any, len(x.Attrs))
			for k, av := range x.Attrs {
				s.Attrs[k] = summarize(av)
			}
		}
		for _, c := range x.Children {
			s.Children = append(s.Children, summarize(c))
		}
		return s
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = summarize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = summarize(item)
		}
		return out
	default:
		return v
	}
}

func waitPending(t *testing.T, s *Scheduler, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Pending() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("scheduler never reached %d pending nodes", want)
}

func TestMountBasicTree(t *testing.T) {
	store := state.NewStore()
	store.Set("user.name", "Ann")

	desc := &descriptor.Descriptor{
		Kind: "panel",
		Attributes: map[string]any{
			"title": "$state.user.name",
			"plain": "hello",
		},
		Children: []any{
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "$state.user.name"}},
			"just text",
		},
	}

	b := New(store, testRegistry())
	root, err := b.Mount(desc, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if root.Path != RootPath || root.Kind != "panel" {
		t.Errorf("root = %s/%s, want root/panel", root.Path, root.Kind)
	}
	if got := root.Attrs["title"]; got != "Ann" {
		t.Errorf("title = %v, want Ann", got)
	}
	if got := root.Attrs["plain"]; got != "hello" {
		t.Errorf("plain = %v, want hello", got)
	}
	if got := root.Instance; got != "panel@root" {
		t.Errorf("instance = %v", got)
	}

	label := childNode(t, root, 0)
	if label.Path != "root.children[0]" {
		t.Errorf("label path = %s", label.Path)
	}
	if got := label.Attrs["text"]; got != "Ann" {
		t.Errorf("label text = %v, want Ann", got)
	}
	if got := root.Children[1]; got != "just text" {
		t.Errorf("text child = %v", got)
	}
}

func TestDollarEscape(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"text": "$$state.user.name"},
	}

	b := New(store, testRegistry())
	root, err := b.Mount(desc, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := root.Attrs["text"]; got != "$state.user.name" {
		t.Errorf("text = %v, want literal $state.user.name", got)
	}
}

func TestMissingBindingResolvesNil(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"text": "$state.nope"},
	}

	b := New(store, testRegistry())
	root, _ := b.Mount(desc, nil)
	if got := root.Attrs["text"]; got != nil {
		t.Errorf("text = %v, want nil", got)
	}

	// The absent path is still a dependency.
	store.Set("nope", "now")
	if replaced := b.Scheduler().Flush(); len(replaced) != 1 {
		t.Fatalf("flush replaced %d nodes, want 1", len(replaced))
	}
	if got := b.Root().Attrs["text"]; got != "now" {
		t.Errorf("after set, text = %v, want now", got)
	}
}

func TestInheritedAttributesOverride(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind:       "panel",
		Attributes: map[string]any{"theme": "light", "own": true},
		Children: []any{
			&descriptor.Descriptor{Kind: "label"},
		},
	}

	b := New(store, testRegistry())
	root, _ := b.Mount(desc, map[string]any{"theme": "dark"})

	if got := root.Attrs["theme"]; got != "dark" {
		t.Errorf("theme = %v, want dark (inherited wins)", got)
	}
	if got := root.Attrs["own"]; got != true {
		t.Errorf("own = %v, want true", got)
	}

	// Inherited attributes apply at the mount boundary only.
	if _, ok := childNode(t, root, 0).Attrs["theme"]; ok {
		t.Error("child inherited theme, want boundary-only merge")
	}
}

func TestUnknownKindIsolatedToErrorNode(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind: "panel",
		Children: []any{
			&descriptor.Descriptor{Kind: "blink"},
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "ok"}},
		},
	}

	b := New(store, testRegistry())
	root, err := b.Mount(desc, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	bad := childNode(t, root, 0)
	if !bad.IsError() {
		t.Fatal("unknown kind did not produce an error node")
	}
	if code := errors.CodeOf(bad.Err); code != "E002" {
		t.Errorf("error code = %s, want E002", code)
	}

	good := childNode(t, root, 1)
	if good.IsError() || good.Attrs["text"] != "ok" {
		t.Errorf("sibling affected by error node: %+v", good)
	}
}

func TestMalformedChildPosition(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind: "panel",
		Children: []any{
			[]any{"a", "b"},
			map[string]any{"no": "kind"},
			&descriptor.Descriptor{Kind: "label"},
		},
	}

	b := New(store, testRegistry())
	root, _ := b.Mount(desc, nil)

	for i := 0; i < 2; i++ {
		n := childNode(t, root, i)
		if code := errors.CodeOf(n.Err); code != "E001" {
			t.Errorf("child %d code = %s, want E001", i, code)
		}
	}
	if childNode(t, root, 2).IsError() {
		t.Error("valid sibling affected")
	}
}

func TestOpaqueValueSurfacesAsError(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind: "panel",
		Attributes: map[string]any{
			"hooks": map[string]any{"click": func() {}},
			"text":  "ok",
		},
		Children: []any{make(chan int)},
	}

	b := New(store, testRegistry())
	root, err := b.Mount(desc, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	hooks, ok := root.Attrs["hooks"].(map[string]any)
	if !ok {
		t.Fatalf("hooks attr = %T", root.Attrs["hooks"])
	}
	n, ok := hooks["click"].(*Node)
	if !ok {
		t.Fatalf("opaque attribute value leaked through as %T", hooks["click"])
	}
	if code := errors.CodeOf(n.Err); code != "E001" {
		t.Errorf("attr error code = %s, want E001", code)
	}

	child := childNode(t, root, 0)
	if code := errors.CodeOf(child.Err); code != "E001" {
		t.Errorf("child error code = %s, want E001", code)
	}
	if root.Attrs["text"] != "ok" {
		t.Error("sibling attribute affected")
	}
}

func TestDuplicateChildKey(t *testing.T) {
	store := state.NewStore()
	desc := &descriptor.Descriptor{
		Kind: "panel",
		Children: []any{
			&descriptor.Descriptor{Kind: "label", Key: "row"},
			&descriptor.Descriptor{Kind: "label", Key: "row"},
		},
	}

	b := New(store, testRegistry())
	root, _ := b.Mount(desc, nil)

	first := childNode(t, root, 0)
	if first.IsError() {
		t.Error("first keyed child should build")
	}
	second := childNode(t, root, 1)
	if code := errors.CodeOf(second.Err); code != "E010" {
		t.Errorf("duplicate key code = %s, want E010", code)
	}
}

func TestRenderableMountFailure(t *testing.T) {
	store := state.NewStore()
	reg := testRegistry()
	reg.Register("broken", RenderableFunc(func(*Node, *state.Store) (any, error) {
		return nil, fmt.Errorf("mount exploded")
	}))
	reg.Register("panicky", RenderableFunc(func(*Node, *state.Store) (any, error) {
		panic("boom")
	}))

	b := New(store, reg)
	root, _ := b.Mount(&descriptor.Descriptor{
		Kind: "panel",
		Children: []any{
			&descriptor.Descriptor{Kind: "broken"},
			&descriptor.Descriptor{Kind: "panicky"},
			&descriptor.Descriptor{Kind: "label"},
		},
	}, nil)

	if !childNode(t, root, 0).IsError() {
		t.Error("mount error not recorded")
	}
	if !childNode(t, root, 1).IsError() {
		t.Error("mount panic not recovered into error node")
	}
	if childNode(t, root, 2).IsError() {
		t.Error("sibling affected")
	}
}

func TestRebuildReplacesOnlyDependentSubtree(t *testing.T) {
	store := state.NewStore()
	store.Set("user.name", "Ann")
	store.Set("other", "x")

	desc := &descriptor.Descriptor{
		Kind: "panel",
		Children: []any{
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "$state.user.name"}},
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "$state.other"}},
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "static"}},
		},
	}

	b := New(store, testRegistry())
	root, _ := b.Mount(desc, nil)
	oldBound := childNode(t, root, 0)
	oldOther := childNode(t, root, 1)
	oldStatic := childNode(t, root, 2)

	store.Set("user.name", "Bob")
	replaced := b.Scheduler().Flush()

	if len(replaced) != 1 {
		t.Fatalf("replaced %d subtrees, want exactly 1", len(replaced))
	}
	if replaced[0].Path != "root.children[0]" {
		t.Errorf("replaced path = %s", replaced[0].Path)
	}
	if got := replaced[0].Attrs["text"]; got != "Bob" {
		t.Errorf("rebuilt text = %v, want Bob", got)
	}

	// The replacement is spliced into the same slot; everything the change
	// did not touch keeps its original node value.
	if b.Root() != root {
		t.Error("root was rebuilt")
	}
	if childNode(t, root, 0) != replaced[0] {
		t.Error("replacement not spliced into parent")
	}
	if childNode(t, root, 0) == oldBound {
		t.Error("bound child not replaced")
	}
	if childNode(t, root, 1) != oldOther || childNode(t, root, 2) != oldStatic {
		t.Error("untouched siblings were replaced")
	}
	if !oldBound.Unmounted() {
		t.Error("replaced node still mounted")
	}
}

func TestAncestorOverlapNotification(t *testing.T) {
	store := state.NewStore()
	store.Set("user", map[string]any{"name": "Ann"})

	desc := &descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"text": "$state.user.name"},
	}
	b := New(store, testRegistry())
	b.Mount(desc, nil)

	// Writing the ancestor path rebuilds readers of the descendant.
	store.Set("user", map[string]any{"name": "Bea"})
	if replaced := b.Scheduler().Flush(); len(replaced) != 1 {
		t.Fatalf("replaced %d, want 1", len(replaced))
	}
	if got := b.Root().Attrs["text"]; got != "Bea" {
		t.Errorf("text = %v, want Bea", got)
	}

	// And the reverse: a reader of "user" rebuilds on "user.name" writes.
	desc2 := &descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"all": "$state.user"}}
	b2 := New(store, testRegistry())
	b2.Mount(desc2, nil)
	store.Set("user.name", "Cal")
	if replaced := b2.Scheduler().Flush(); len(replaced) != 1 {
		t.Fatalf("ancestor reader: replaced %d, want 1", len(replaced))
	}
}

func TestUnrelatedPathDoesNotRebuild(t *testing.T) {
	store := state.NewStore()
	store.Set("user.name", "Ann")

	b := New(store, testRegistry())
	b.Mount(&descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"text": "$state.user.name"},
	}, nil)

	store.Set("username", "zzz") // shares a string prefix, not a segment
	store.Set("user2.name", "zzz")
	if n := b.Scheduler().Pending(); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestNestedDescriptorInAttribute(t *testing.T) {
	store := state.NewStore()
	store.Set("v", "one")

	desc := &descriptor.Descriptor{
		Kind: "panel",
		Attributes: map[string]any{
			"extra": map[string]any{
				"kind":       "button",
				"attributes": map[string]any{"label": "$state.v"},
			},
		},
	}

	b := New(store, testRegistry())
	root, err := b.Mount(desc, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	extra, ok := root.Attrs["extra"].(*Node)
	if !ok {
		t.Fatalf("extra = %T, want *Node", root.Attrs["extra"])
	}
	if extra.Path != "root.attributes.extra" || extra.Attrs["label"] != "one" {
		t.Errorf("extra = %s %v", extra.Path, extra.Attrs["label"])
	}

	// The nested node rebuilds independently and splices into the map.
	store.Set("v", "two")
	replaced := b.Scheduler().Flush()
	if len(replaced) != 1 || replaced[0].Path != "root.attributes.extra" {
		t.Fatalf("replaced = %+v", replaced)
	}
	if b.Root() != root {
		t.Error("root rebuilt for attribute-nested change")
	}
	if got := root.Attrs["extra"].(*Node).Attrs["label"]; got != "two" {
		t.Errorf("label = %v, want two", got)
	}
}

func TestBuildNodePositions(t *testing.T) {
	store := state.NewStore()
	b := New(store, testRegistry())

	if got := b.Build(nil, "p"); got != nil {
		t.Errorf("nil -> %v", got)
	}
	if got := b.Build(42, "p"); got != 42 {
		t.Errorf("primitive -> %v", got)
	}

	n := b.Build(&descriptor.Descriptor{Kind: "label"}, "p")
	node, ok := n.(*Node)
	if !ok || node.Kind != "label" {
		t.Fatalf("descriptor -> %v", n)
	}
	if got := b.Build(node, "p"); got != any(node) {
		t.Error("built node not passed through")
	}

	bad := b.Build([]any{1, 2}, "p").(*Node)
	if code := errors.CodeOf(bad.Err); code != "E001" {
		t.Errorf("sequence code = %s, want E001", code)
	}
}

func TestStructuralRoundTrip(t *testing.T) {
	store := state.NewStore()
	store.Set("title", "hello")

	desc := &descriptor.Descriptor{
		Kind:       "panel",
		Attributes: map[string]any{"title": "$state.title"},
		Children: []any{
			&descriptor.Descriptor{Kind: "label", Attributes: map[string]any{"text": "$state.title"}},
			&descriptor.Descriptor{Kind: "button", Attributes: map[string]any{"tags": []any{"$state.title", "fixed"}}},
		},
	}

	b := New(store, testRegistry())
	b.Mount(desc, nil)
	before := summarize(b.Root())

	store.Set("title", "changed")
	b.Scheduler().Flush()
	store.Set("title", "hello")
	b.Scheduler().Flush()

	if diff := cmp.Diff(before, summarize(b.Root())); diff != "" {
		t.Errorf("tree changed after round trip (-before +after):\n%s", diff)
	}
}

func TestRemotePendingThenValue(t *testing.T) {
	store := state.NewStore()
	release := make(chan struct{})
	fetcher := remote.NewFetcher(store)
	fetcher.RegisterSource("users", remote.SourceFunc(func(ctx context.Context, d remote.Directive) (any, error) {
		select {
		case <-release:
			return map[string]any{"name": "Remote Ann"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	b := New(store, testRegistry(), WithFetcher(fetcher))
	root, err := b.Mount(&descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"user": "$remote.users.42"},
	}, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if !remote.IsPending(root.Attrs["user"]) {
		t.Fatalf("before settle, user = %#v, want pending marker", root.Attrs["user"])
	}

	close(release)
	waitPending(t, b.Scheduler(), 1)

	replaced := b.Scheduler().Flush()
	if len(replaced) != 1 {
		t.Fatalf("replaced %d, want 1", len(replaced))
	}
	got, ok := b.Root().Attrs["user"].(map[string]any)
	if !ok || got["name"] != "Remote Ann" {
		t.Errorf("user = %#v", b.Root().Attrs["user"])
	}
}

func TestRemoteFailureRecordedAsValue(t *testing.T) {
	store := state.NewStore()
	fetcher := remote.NewFetcher(store)
	fetcher.RegisterSource("users", remote.SourceFunc(func(context.Context, remote.Directive) (any, error) {
		return nil, fmt.Errorf("backend down")
	}))

	b := New(store, testRegistry(), WithFetcher(fetcher))
	root, err := b.Mount(&descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"user": "$remote.users.42 -> people.42"},
	}, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if root.IsError() {
		t.Fatal("fetch failure must not fail the build")
	}

	waitPending(t, b.Scheduler(), 1)
	b.Scheduler().Flush()

	ev, ok := b.Root().Attrs["user"].(remote.ErrorValue)
	if !ok {
		t.Fatalf("user = %#v, want ErrorValue", b.Root().Attrs["user"])
	}
	if ev.Message != "backend down" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestRemoteInvalidDirective(t *testing.T) {
	store := state.NewStore()
	b := New(store, testRegistry(), WithFetcher(remote.NewFetcher(store)))
	root, _ := b.Mount(&descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"user": "$remote."},
	}, nil)

	if !remote.IsError(root.Attrs["user"]) {
		t.Errorf("user = %#v, want ErrorValue for malformed directive", root.Attrs["user"])
	}
	if root.IsError() {
		t.Error("malformed directive must not fail the build")
	}
}

func TestPathAliveTracksDependencyRecords(t *testing.T) {
	store := state.NewStore()
	store.Set("user.name", "Ann")

	b := New(store, testRegistry())
	root, _ := b.Mount(&descriptor.Descriptor{
		Kind:       "label",
		Attributes: map[string]any{"text": "$state.user.name"},
	}, nil)

	if !b.pathAlive("user.name") {
		t.Error("bound path reported dead")
	}
	if !b.pathAlive("user") {
		t.Error("ancestor of bound path reported dead")
	}
	if b.pathAlive("unrelated") {
		t.Error("unrelated path reported alive")
	}

	root.unmount()
	if b.pathAlive("user.name") {
		t.Error("path alive after unmount")
	}
}
