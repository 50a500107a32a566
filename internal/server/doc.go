// Package server exposes the pipeline over HTTP.
//
// # Routes
//
//   - GET /        : [TriggerHandler] runs the pipeline once and answers "OK" (200) or "FAILED" (500)
//   - GET /healthz : liveness probe
//   - GET /metrics : Prometheus exposition of [metrics.Metrics]
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
