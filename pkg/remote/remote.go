package remote

import (
	"context"
	"strings"

	"github.com/frond-ui/frond/internal/errors"
)

// Directive describes one remote fetch requested by a descriptor binding.
// The wire form is "$remote.<source>.<args...> -> <target.path>"; when the
// target is omitted it defaults to "remote.<source>.<args...>".
type Directive struct {
	// Source names the registered data source to fetch from.
	Source string

	// Args are the dotted segments after the source name, passed to the
	// source verbatim (an HTTP source joins them into a request path, an
	// S3 source into an object key).
	Args []string

	// TargetPath is the state store path the fetched value is written to.
	TargetPath string
}

// Raw reconstructs the canonical string form of the directive.
// Used as the deduplication key for in-flight fetches.
func (d Directive) Raw() string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(d.Source)
	for _, a := range d.Args {
		b.WriteString(".")
		b.WriteString(a)
	}
	b.WriteString(" -> ")
	b.WriteString(d.TargetPath)
	return b.String()
}

// Prefix marks a string attribute value as a remote-fetch directive.
const Prefix = "$remote."

// IsDirective reports whether a string value is a remote-fetch directive.
func IsDirective(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// ParseDirective parses the string form of a remote directive.
func ParseDirective(s string) (Directive, error) {
	if !IsDirective(s) {
		return Directive{}, errors.New("E004").WithDetailf("not a remote directive: %q", s)
	}

	body := s[len(Prefix):]
	target := ""
	if idx := strings.Index(body, "->"); idx >= 0 {
		target = strings.TrimSpace(body[idx+2:])
		body = strings.TrimSpace(body[:idx])
	}

	segments := strings.Split(body, ".")
	if len(segments) == 0 || segments[0] == "" {
		return Directive{}, errors.New("E004").WithDetailf("remote directive has no source: %q", s)
	}

	d := Directive{
		Source: segments[0],
		Args:   segments[1:],
	}
	if target != "" {
		d.TargetPath = target
	} else {
		d.TargetPath = "remote." + body
	}
	return d, nil
}

// Source is an externally supplied asynchronous data source.
type Source interface {
	// Fetch retrieves the value named by the directive.
	Fetch(ctx context.Context, d Directive) (any, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, d Directive) (any, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, d Directive) (any, error) {
	return f(ctx, d)
}

// PendingValue is the explicit marker a remote-bound attribute resolves to
// between the moment the fetch is issued and its completion.
type PendingValue struct {
	// Directive is the canonical form of the pending fetch.
	Directive string
}

// ErrorValue is recorded at the target path when a fetch fails. It is a
// value, not an error: failures never propagate as errors into the render
// path.
type ErrorValue struct {
	// Directive is the canonical form of the failed fetch.
	Directive string

	// Message describes the failure.
	Message string
}

// IsPending reports whether a resolved value is the pending marker.
func IsPending(v any) bool {
	_, ok := v.(PendingValue)
	return ok
}

// IsError reports whether a resolved value is a recorded fetch failure.
func IsError(v any) bool {
	_, ok := v.(ErrorValue)
	return ok
}
