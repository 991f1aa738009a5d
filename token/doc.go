// Package token signs and verifies the bearer tokens handed to callers after
// a successful login.
//
// A token is an HS256 JWT whose only application claim is the session id.
// A valid signature is necessary but not sufficient: the session store
// decides whether the session behind the token is still live.
package token
