// Package server exposes the addition machine over HTTP and serves the
// browser replay client.
//
// # Endpoints
//
//   - POST /api/simulate - run a request document, returns the full trace
//   - GET /api/replay - server-sent events, one per transition, paced by speed_ms
//   - GET /api/table - the transition table as JSON
//   - POST /auth - password authentication, returns a bearer token
//   - GET /healthz - liveness
//   - GET / - embedded web assets
//
// # Authentication
//
// Authentication is optional. When an argon2id password hash is configured,
// clients POST their password to /auth and send the returned token in the
// Authorization header on /api routes. Without a hash the API is open and
// /auth is not routed.
//
// # Errors
//
// Failures are always {"error": "..."} documents. Rejected operands map to
// 400, operands over the size policy to 413, machine failures to 422, a
// broken simulation process to 502 and a process timeout to 504.
package server
