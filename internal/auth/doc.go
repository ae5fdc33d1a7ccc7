// Package auth carries the client-side authentication pieces: the
// structured error taxonomy surfaced by the conversation service, bearer
// token resolution, and unverified JWT inspection for failing fast on
// expired tokens.
//
// Authentication failures are a distinct error kind. A *auth.Error always
// reaches the user with its machine-readable code; generic network
// failures never masquerade as auth problems.
package auth
