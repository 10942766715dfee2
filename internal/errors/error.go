package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryBuild      Category = "build"
	CategoryRemote     Category = "remote"
	CategoryValidation Category = "validation"
	CategoryConfig     Category = "config"
	CategoryServe      Category = "serve"
	CategoryCLI        Category = "cli"
)

// FrondError is a structured error with a code, descriptor path, and suggestions.
type FrondError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (build, remote, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the descriptor tree path where the error occurred
	// (e.g., "root.children[2].attributes.extra").
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FrondError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Path)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FrondError) Unwrap() error {
	return e.Wrapped
}

// WithPath records the descriptor tree path where the error occurred.
func (e *FrondError) WithPath(path string) *FrondError {
	e.Path = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FrondError) WithSuggestion(s string) *FrondError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FrondError) WithDetail(d string) *FrondError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *FrondError) WithDetailf(format string, args ...any) *FrondError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *FrondError) Wrap(err error) *FrondError {
	e.Wrapped = err
	return e
}

// New creates a FrondError from a registered error code.
func New(code string) *FrondError {
	template, ok := registry[code]
	if !ok {
		return &FrondError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FrondError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new FrondError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FrondError {
	return &FrondError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FrondError.
func FromError(err error, code string) *FrondError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FrondError); ok {
		return fe
	}
	return New(code).Wrap(err)
}

// CodeOf returns the error code of err if it is (or wraps) a FrondError.
func CodeOf(err error) string {
	for err != nil {
		if fe, ok := err.(*FrondError); ok {
			return fe.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
