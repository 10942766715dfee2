package remote

import (
	"testing"

	frerrors "github.com/frond-ui/frond/internal/errors"
)

func TestParseDirective(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		wantSource string
		wantArgs   []string
		wantTarget string
	}{
		{
			name:       "explicit target",
			in:         "$remote.api.users.42 -> user.profile",
			wantSource: "api",
			wantArgs:   []string{"users", "42"},
			wantTarget: "user.profile",
		},
		{
			name:       "default target",
			in:         "$remote.api.users",
			wantSource: "api",
			wantArgs:   []string{"users"},
			wantTarget: "remote.api.users",
		},
		{
			name:       "no args",
			in:         "$remote.feed",
			wantSource: "feed",
			wantArgs:   []string{},
			wantTarget: "remote.feed",
		},
		{
			name:       "tight arrow",
			in:         "$remote.s3.pages.home->page.data",
			wantSource: "s3",
			wantArgs:   []string{"pages", "home"},
			wantTarget: "page.data",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseDirective(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Source != tc.wantSource {
				t.Errorf("source = %q, want %q", d.Source, tc.wantSource)
			}
			if len(d.Args) != len(tc.wantArgs) {
				t.Fatalf("args = %v, want %v", d.Args, tc.wantArgs)
			}
			for i := range tc.wantArgs {
				if d.Args[i] != tc.wantArgs[i] {
					t.Errorf("args = %v, want %v", d.Args, tc.wantArgs)
				}
			}
			if d.TargetPath != tc.wantTarget {
				t.Errorf("target = %q, want %q", d.TargetPath, tc.wantTarget)
			}
		})
	}
}

func TestParseDirectiveErrors(t *testing.T) {
	for _, in := range []string{"$state.name", "plain", "$remote."} {
		_, err := ParseDirective(in)
		if err == nil {
			t.Errorf("expected error for %q", in)
			continue
		}
		if code := frerrors.CodeOf(err); code != "E004" {
			t.Errorf("expected E004 for %q, got %s", in, code)
		}
	}
}

func TestDirectiveRawRoundTrip(t *testing.T) {
	in := "$remote.api.users.42 -> user.profile"
	d, err := ParseDirective(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Raw(); got != in {
		t.Errorf("Raw() = %q, want %q", got, in)
	}

	again, err := ParseDirective(d.Raw())
	if err != nil {
		t.Fatal(err)
	}
	if again.Source != d.Source || again.TargetPath != d.TargetPath {
		t.Errorf("round-trip mismatch: %+v vs %+v", again, d)
	}
}

func TestMarkerPredicates(t *testing.T) {
	if !IsPending(PendingValue{Directive: "x"}) {
		t.Error("IsPending should recognize PendingValue")
	}
	if IsPending("pending") {
		t.Error("IsPending should reject plain strings")
	}
	if !IsError(ErrorValue{Message: "boom"}) {
		t.Error("IsError should recognize ErrorValue")
	}
	if IsError(nil) {
		t.Error("IsError should reject nil")
	}
}
