package state

import (
	"strconv"
	"strings"
)

// SplitPath splits a dotted field path into its segments.
// "user.name" -> ["user", "name"]; "items.2.label" -> ["items", "2", "label"].
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath joins path segments into a dotted field path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, ".")
}

// Overlaps reports whether two paths overlap: equal, or one is an
// ancestor of the other. A write to "user" changes what a reader of
// "user.name" sees, and a write to "user.name" changes what a reader of
// "user" sees, so dependency matching treats both directions as a hit.
// Over-approximating here keeps the no-false-negatives invariant.
func Overlaps(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	// b is shorter; check b is a segment-aligned prefix of a.
	return strings.HasPrefix(a, b) && a[len(b)] == '.'
}

// navigate walks a nested value along path segments.
// Maps are traversed by key, slices by numeric index.
func navigate(root any, segments []string) (any, bool) {
	current := root
	for _, seg := range segments {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// writePath writes value into root at the given segments, creating
// intermediate maps as needed. Slice elements can be replaced by numeric
// segment when the slice and index already exist; anything else becomes a
// map entry.
func writePath(root map[string]any, segments []string, value any) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		root[segments[0]] = value
		return
	}

	head, rest := segments[0], segments[1:]
	switch child := root[head].(type) {
	case map[string]any:
		writePath(child, rest, value)
	case []any:
		idx, err := strconv.Atoi(rest[0])
		if err == nil && idx >= 0 && idx < len(child) {
			if len(rest) == 1 {
				child[idx] = value
				return
			}
			if m, ok := child[idx].(map[string]any); ok {
				writePath(m, rest[1:], value)
				return
			}
		}
		// Index missing or not addressable: replace with a map subtree.
		m := make(map[string]any)
		root[head] = m
		writePath(m, rest, value)
	default:
		m := make(map[string]any)
		root[head] = m
		writePath(m, rest, value)
	}
}

// deletePath removes the value at the given segments, if present.
func deletePath(root map[string]any, segments []string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		delete(root, segments[0])
		return
	}
	if child, ok := root[segments[0]].(map[string]any); ok {
		deletePath(child, segments[1:])
	}
}
