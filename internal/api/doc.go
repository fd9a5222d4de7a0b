// Package api provides an HTTP client for the course catalog API.
//
// # Overview
//
// Client implements collection.Remote for catalog.Course, so a
// collection.Manager can load and write courses without knowing about HTTP.
//
// # API Endpoints
//
//   - GET /api/courses: {"courses": [...]}
//   - POST /api/courses: create, returns the stored course with its id
//   - PUT /api/courses/{id}: replace, returns the stored course
//   - DELETE /api/courses/{id}: remove
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: curator/0.1
//   - Send Authorization: Bearer <token> when a token is configured
//   - Have a 10-second timeout (configurable via WithHTTPClient)
//
// GET requests are retried on transport errors, 429 and 5xx with capped
// exponential backoff, honouring Retry-After. Writes are sent once.
//
// # Error Handling
//
// Non-2xx responses become *HTTPError, which matches the collection error
// kinds with errors.Is:
//
//   - 400, 409, 422: collection.ErrValidation (Fields holds per-field messages)
//   - 401, 403: collection.ErrAuth
//   - 404, 410: collection.ErrNotFound
//   - anything else: collection.ErrNetwork
//
// Transport failures wrap collection.ErrNetwork.
package api
