// Package middleware exposes HTTP adapters for the authgate Service: the
// bearer-token [Guard] and the [RateLimit] admission gate.
//
// # Guard
//
// Guard reads the Authorization header, resolves the token through
// Service.Authenticate, and injects the resulting principal into the
// request context. A missing header, malformed value, invalid or expired
// token, and unknown subject all produce the same 401 response — callers
// learn nothing about which step failed.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Service calls. It makes no
// authentication or admission decisions itself.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to the Service).
//   - Vary the 401 body or status by failure cause.
//   - Retry a denied or unauthorized request.
package middleware
