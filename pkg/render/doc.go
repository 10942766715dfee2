// Package render renders built node trees to HTML.
//
// The renderer is a thin projection: it walks *build.Node values and
// writes elements for the built-in kinds, escaped text for primitives,
// placeholder spans for pending and failed remote values, and a visible
// error box for isolated build failures. With IncludePaths enabled every
// element carries its node path in a data attribute, which the preview
// server's live script uses to swap rebuilt fragments without a reload.
package render
