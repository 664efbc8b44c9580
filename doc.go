// Package goAuthClient is the client-side companion to an auth backend: it
// owns the device's authenticated identity, restores it from a persisted
// bearer token on cold start, mediates password, Google, and Apple login
// paths, drives the two-step password-reset protocol, and supports profile
// mutation.
//
// The package is designed for UI-bound clients: every [Manager] operation is
// a non-blocking call that returns a structured [AuthResult] for all expected
// outcomes (validation failures, rejected credentials, cancelled consent
// screens, lock contention), so callers never need error-handling ceremony
// around routine auth failures. Only the transport's truly unexpected faults
// surface, and those are normalized to [FailureNetwork] at the Manager
// boundary.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Manager], [Builder],
// [Config], and value types (Session, UserProfile, AuthResult). Cohesive
// concerns live in subpackages: api (the backend REST contract), oauth (the
// provider broker), tokenstore (persistence of the opaque bearer token).
//
// # What this package must NOT do
//
//   - Interpret the bearer token. It is opaque; the backend owns its format.
//   - Retry or back off. A failed operation is returned to the caller, who
//     decides whether to re-invoke.
//   - Render anything. Consent screens and credential pickers are injected
//     interfaces; their UI is the host application's problem.
//
// # Concurrency contract
//
// One Manager exists per process, constructed once through [Builder.Build].
// All Session mutations funnel through a single commit point, and each
// operation class holds a single-flight guard: a second Login issued while
// one is in flight is rejected with [FailureBusy], never queued.
package goAuthClient
