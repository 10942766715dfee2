// Package errors provides structured, actionable error messages for Frond.
//
// Each error has a unique code (e.g., "E001") that maps to a short message,
// a detailed explanation, and a documentation URL. Errors raised during a
// build additionally carry the descriptor tree path where they occurred so
// a failure three levels deep can be located without stack traces.
//
// # Usage
//
//	err := errors.New("E002").
//	    WithPath("root.children[1]").
//	    WithSuggestion("Register the component kind before building")
//
//	fmt.Println(err.Format())
//
// FrondError supports errors.Is/As through Unwrap, so wrapped causes remain
// inspectable with the standard library.
package errors
