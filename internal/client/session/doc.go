// Package session owns the single persisted "last known session" slot.
//
// # Policies
//
// Exactly one persistence policy is active per Store:
//
//   - PolicyDurableProfile: the full profile in device-durable storage;
//   - PolicySessionProfile: the full profile in session-scoped storage;
//   - PolicySessionIdentifier: only the identifier in session-scoped storage.
//     The profile is fetched from the remote store on every resolution.
//     This is the default.
//
// # Record format
//
// A record is a JSON envelope carrying a schema version:
//
//	{"v":1,"policy":"session-identifier","uid":"u123"}
//
// Anything that does not decode to a valid envelope for the active policy
// (unknown version, other policy, missing uid, garbage bytes) is corrupt.
// Load never fails on a corrupt record: it logs, removes the slot and reports
// no session.
package session
