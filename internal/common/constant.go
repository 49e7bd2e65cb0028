// Package common contains shared constants and sentinel errors used across
// shiftdesk components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SessionKey is the single storage slot holding the persisted session record.
const SessionKey = "session"
