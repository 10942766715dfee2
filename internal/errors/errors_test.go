package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E001")
	if err.Code != "E001" {
		t.Errorf("expected code E001, got %s", err.Code)
	}
	if err.Category != CategoryBuild {
		t.Errorf("expected build category, got %s", err.Category)
	}
	if err.Message != "Malformed descriptor" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if err.DocURL == "" {
		t.Error("expected a doc URL from the registry")
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	if err.Code != "E999" {
		t.Errorf("expected code E999, got %s", err.Code)
	}
	if err.Message != "Unknown error" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	err := New("E002").WithPath("root.children[1]")
	got := err.Error()
	if !strings.Contains(got, "E002") {
		t.Errorf("error string missing code: %s", got)
	}
	if !strings.Contains(got, "root.children[1]") {
		t.Errorf("error string missing path: %s", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("E003").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var fe *FrondError
	if !stderrors.As(err, &fe) {
		t.Fatal("errors.As should find *FrondError")
	}
	if fe.Code != "E003" {
		t.Errorf("expected E003, got %s", fe.Code)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New("E010")); got != "E010" {
		t.Errorf("expected E010, got %q", got)
	}

	// Through a wrapping layer.
	wrapped := &wrapper{inner: New("E001")}
	if got := CodeOf(wrapped); got != "E001" {
		t.Errorf("expected E001 through wrapper, got %q", got)
	}

	if got := CodeOf(stderrors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("expected empty code for nil, got %q", got)
	}
}

type wrapper struct{ inner error }

func (w *wrapper) Error() string { return w.inner.Error() }
func (w *wrapper) Unwrap() error { return w.inner }

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	// Existing FrondError passes through unchanged.
	fe := New("E002")
	if got := FromError(fe, "E001"); got != fe {
		t.Error("FromError should pass through an existing FrondError")
	}

	cause := stderrors.New("boom")
	got := FromError(cause, "E003")
	if got.Code != "E003" {
		t.Errorf("expected E003, got %s", got.Code)
	}
	if got.Wrapped != cause {
		t.Error("expected the cause to be wrapped")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E010").
		WithPath("root.children[3]").
		WithSuggestion("Give each sibling a distinct key")

	out := err.Format()
	for _, want := range []string{"ERROR E010", "root.children[3]", "Hint:", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("E900", ErrorTemplate{
		Category: CategoryServe,
		Message:  "Host adapter failure",
	})
	err := New("E900")
	if err.Message != "Host adapter failure" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if err.Category != CategoryServe {
		t.Errorf("unexpected category: %s", err.Category)
	}
}
