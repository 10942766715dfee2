// Package remote provides asynchronous data sources for remote-fetch
// directives.
//
// A descriptor attribute bound with "$remote.<source>.<args> -> <target>"
// resolves to a PendingValue immediately; the Fetcher retrieves the value
// off the build path and writes it (or an ErrorValue on failure) to the
// target store path, which triggers a scoped rebuild of exactly the nodes
// that read that path. Fetch failures are recorded as values and never
// raised through the render path.
//
// Shipped sources: HTTPSource (JSON over HTTP), S3Source (JSON objects in
// S3), and CachedSource (redis read-through decorator over any source).
// Identical in-flight directives are collapsed with singleflight, and a
// completion for an invalidated or unmounted target is discarded rather
// than resurrecting a stale value.
package remote
