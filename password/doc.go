// Package password implements credential hashing and verification with Argon2id.
//
// # Output format
//
// Digests are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Every call to [Argon2.Hash] draws a fresh random salt, so hashing the same
// plaintext twice yields different digests. [Argon2.Verify] recomputes the
// digest with the parameters and salt embedded in the stored string and
// compares in constant time. A malformed or truncated digest verifies false;
// it never panics and never reaches the caller as an error.
//
// The [Argon2.NeedsRehash] check lets the login path transparently upgrade
// stored digests when the configured cost parameters are raised.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials — callers supply plaintext and receive digests.
//   - Enforce password policy (length, reuse) — that belongs to the caller.
//   - Import any other authgate package.
package password
