// Package server exposes the catalog queries over a read-only HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [ChiRouter] implementation uses a [chi.Mux] internally, so route patterns are available to
// middleware through the chi route context.
//
// # Routes
//
//	GET /healthz
//	GET /metrics
//	GET /api/artists/prolific?n=&from=&to=
//	GET /api/artists/last-single?year=
//	GET /api/artists/album-and-single
//	GET /api/genres/top?n=
//	GET /api/songs/top-rated?from=&to=&n=
//	GET /api/users/engaged?from=&to=&n=
//	GET /api/report?n=&from=&to=&year=
//
// Missing year bounds default to an unbounded range and a missing n to [DefaultLimit].
// Malformed parameters produce a 400 with a JSON error body; storage failures a 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
