// Package rate implements the fixed-window admission counter that gates
// request throughput on rate-limited routes.
//
// # Window semantics
//
// Hard fixed windows: every attempt for a key increments that key's counter,
// admitted or not, and the counter resets when the window rolls over. Once
// the count exceeds the limit, further attempts in the same window are
// denied — denied attempts are never refunded and never silently admitted.
//
// Two [Store] implementations exist:
//
//   - [RedisStore] — INCR plus EXPIRE on the first hit of a window, so the
//     key expires with the window. Shared across processes.
//   - [MemoryStore] — a mutex-guarded bucket map with lazy window reset and
//     idle-bucket eviction. Process-local, injectable, resettable in tests.
//
// An evicted or absent bucket is equivalent to a fresh empty one.
//
// # What this package must NOT do
//
//   - Choose rate-limit keys (callers decide what identifies a client).
//   - Translate denials into HTTP responses (middleware owns that).
//   - Be imported outside the authgate module.
package rate
