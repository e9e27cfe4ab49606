// Package common contains shared constants and sentinel errors used across
// SecureLinks components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the admin
// access token on LinkService calls.
const AccessTokenHeaderName = "access_token"

// Query parameter names used by secure link routes.
const (
	TokenQueryParam = "token"
	FileQueryParam  = "file"
)

// SessionCookieName carries the requester JWT for browser requests.
const SessionCookieName = "session"
