// Package client contains the client-side building blocks for SentinelIQ.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface) used by the services:
//     session check, login, signup, logout, profile, message listing and
//     detail, the assistant prompt and provider link URLs.
//  2. A concrete HTTP implementation (see HTTPClient) that keeps the session
//     cookies in a jar, tags every request with an X-Request-ID and maps HTTP
//     statuses to the sentinel errors in internal/common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failed calls return *APIError, which unwraps to common.ErrAuthRequired,
// common.ErrNotFound, common.ErrValidation or common.ErrUnavailable so callers
// can match them with errors.Is. Transport failures wrap common.ErrUnavailable
// together with the underlying error.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and the configured request timeout.
package client
