// Package cli provides the interactive SentinelIQ command-line client.
//
// It wires configuration, local storage, the API client and the session,
// inbox, message and assistant controllers behind a REPL. Every command maps
// to a view and is gated on the session before it runs: public views (login,
// signup) bounce an authenticated user, the rest prompt for login.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and describe for details.
package cli
