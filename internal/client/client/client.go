package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
)

// SessionInfo is what the client can learn about the current session without
// a response body: the username and expiry carried by the access token cookie.
type SessionInfo struct {
	Username  string
	ExpiresAt time.Time
}

// UnauthorizedNotifier is implemented by clients that report a session the
// server stopped accepting.
type UnauthorizedNotifier interface {
	OnUnauthorized(fn func(ctx context.Context))
}

type Client interface {
	Close() error
	// Check probes the session. A nil error means the server accepted it; the
	// returned info is nil when the token cookie could not be read.
	Check(ctx context.Context) (*SessionInfo, error)
	Login(ctx context.Context, creds models.Credentials) error
	Signup(ctx context.Context, form models.SignupForm) (string, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.Profile, error)
	Messages(ctx context.Context, provider, inboxID string) ([]models.MessageSummary, error)
	MessageDetail(ctx context.Context, provider string, id models.MessageID) (*models.MessageDetail, error)
	Prompt(ctx context.Context, prompt, emailBody string) (string, error)
	LinkURL(provider string) string
}
