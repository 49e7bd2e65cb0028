// Package client contains the console's view of the server.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts for the collaborators the identity
//     resolver consumes: Authenticator and ProfileStore (bundled with Ping
//     and Close as Client).
//  2. A gRPC implementation (GRPCClient) that keeps the access/refresh token
//     pair, injects the access token through an interceptor, transparently
//     refreshes it when the server reports expiry and maps gRPC status codes
//     to sentinel errors.
//
// # Error Handling
//
// Callers match with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrInvalidCredentials, ErrAlreadyExists, ErrInvalidFields, ErrNotFound.
//
// GRPCClient is safe for concurrent use.
package client
