// Package jwt issues and verifies the compact signed session tokens carried
// by bearer requests.
//
// # Token shape
//
// Tokens are standard three-segment JWS compact strings
// (header.payload.signature, each base64url-encoded) signed with HMAC-SHA256.
// The payload carries sub, iat, and exp; exp is iat plus the configured TTL.
//
// # Verification semantics
//
// [Manager.Decode] accepts only the configured algorithm — the alg field of
// an incoming token is never trusted beyond matching the allow-list. A valid
// signature with exp at or before the supplied time fails with
// [ErrTokenExpired]; every other failure (malformed segments, bad signature,
// foreign algorithm) collapses to [ErrTokenInvalid] so callers can tell
// "needs re-login" from "forged or corrupted" without learning more. The
// caller supplies the verification time, which is applied exactly once per
// decode.
//
// # What this package must NOT do
//
//   - Persist or cache tokens — issuance and verification are stateless.
//   - Look up users or touch any store.
//   - Import any other authgate package.
package jwt
