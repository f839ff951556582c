// Package authgate provides the authentication core behind the authgate
// service: credential hashing, signed session tokens, bearer-token guard
// resolution, and fixed-window request admission.
//
// The package is designed for concurrent server workloads: [Service] methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Service], [Builder], [Config],
// the [UserDirectory] contract, and value types (PublicUser, Principal,
// AuditEvent). Hashing, token signing, and window counting live in leaf
// packages (password/, jwt/, internal/rate/) and never import this one.
//
// # What this package must NOT do
//
//   - Speak HTTP — status codes and response bodies belong to httpapi and
//     middleware.
//   - Persist user records — the [UserDirectory] collaborator owns storage.
//   - Leak which authentication check failed: token problems, unknown
//     subjects, and bad passwords all collapse to a single externally
//     visible error per operation.
package authgate
