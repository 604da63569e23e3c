// Package client contains the client-side building blocks for SecurePay.
//
// # Overview
//
// The package provides:
//  1. The backend contracts the dashboard is written against: RemoteStore
//     (query/upsert/delete rows), ChangeFeed (scoped change subscriptions)
//     and IdentityProvider (current user and auth state changes), bundled
//     into a Backend that is built once and passed to the list controllers.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via interceptors, transparently
//     refreshes expired tokens, and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Remote failures are reported as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound,
// ErrValidation and ErrAlreadyExists.
//
// Concurrency & Contexts
//
// GRPCClient and Identity are safe for concurrent use. All remote operations
// accept context.Context and honor cancellation and timeouts.
package client
