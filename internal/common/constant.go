// Package common contains shared constants and sentinel errors used across
// satellite components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AnonymousPrincipal identifies callers that did not present an access token.
const AnonymousPrincipal = "anonymous"

// IsAnonymous reports whether principal denotes an unauthenticated caller.
func IsAnonymous(principal string) bool {
	return principal == "" || principal == AnonymousPrincipal
}

// DefaultMaxChunkSize bounds a single uploaded or delivered chunk.
const DefaultMaxChunkSize = 1_900_000

// MaxAdminControllers caps the number of admin controllers.
const MaxAdminControllers = 10
