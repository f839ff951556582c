// Package directory provides an in-memory implementation of the
// authgate.UserDirectory contract, used by the service binary and by
// integration tests. A relational implementation can replace it without
// touching the authentication core.
package directory
