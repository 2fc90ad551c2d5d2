// Package models defines client-side data models used by the SentinelIQ
// client: session state, inboxes, messages and assistant exchanges.
package models

import "time"

// SessionStatus tells whether the authentication probe has completed.
type SessionStatus int

const (
	SessionUnchecked SessionStatus = iota
	SessionChecked
)

func (s SessionStatus) String() string {
	if s == SessionChecked {
		return "checked"
	}
	return "unchecked"
}

// Identity is the authenticated user as reported by the API.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Session is the client's view of the server-side session. It is never
// persisted; every run derives it again from the session cookie.
type Session struct {
	Status        SessionStatus
	Authenticated bool
	Identity      *Identity

	// ExpiresAt is the access token expiry, zero when unknown.
	ExpiresAt time.Time
}

// Credentials are sent to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupForm is what the signup view collects. ConfirmPassword never leaves
// the client.
type SignupForm struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}
