// Package observe provides build.Observer implementations: Prometheus
// metrics for build and flush activity, and OpenTelemetry spans for
// individual builds and flush passes. Attach them with build.WithObserver,
// combining several with build.MultiObserver.
package observe
