// Package api serves the read-only HTTP API over stored highlights.
//
// # Routes
//
// GET /healthz: liveness probe.
//
// GET /matches/{id}/highlight: the highlight of one match with its
// availability for the caller's region.
//
// GET /highlights?date=YYYY-MM-DD: every match of a UTC day, split into
// available and blocked highlights plus matches still without one.
//
// # Region detection
//
// The caller's region comes from the region query parameter, then the
// CF-IPCountry or X-Country header, then an IP lookup. An unknown region
// never hides a highlight.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
package api
