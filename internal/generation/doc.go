// Package generation talks to the remote generation service: image grids,
// music analysis, storyboard synthesis, and clip synthesis. The client
// retries transient failures with exponential backoff and honors
// Retry-After; validation and auth failures are never retried. The runner
// binds the client to the graph store and keeps late results from writing
// into nodes that were removed or re-run while a request was in flight.
package generation
