// Package httpapi maps the authgate Service onto its HTTP surface.
//
// Routes:
//
//	POST   /register     create a credential; 400 on username conflict
//	POST   /login        verify a credential and mint a bearer token
//	GET    /users        guarded; list public user views
//	DELETE /users/{id}   remove a user; 404 when absent
//	GET    /profile      guarded; echo the authenticated identity
//	GET    /protected    guarded; proof-of-guard endpoint
//	GET    /limited/     rate-gated at the configured window budget
//
// Failure bodies use the {"detail": "..."} shape throughout. This is the
// only layer that converts error kinds into HTTP statuses; the Service
// never sees a ResponseWriter.
package httpapi
