package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
)

// Decision is the outcome of gating a view.
type Decision int

const (
	Hold Decision = iota
	Allow
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Hold:
		return "hold"
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// View names a navigable view of the client.
type View string

const (
	ViewLanding   View = "landing"
	ViewLogin     View = "login"
	ViewSignup    View = "signup"
	ViewDashboard View = "dashboard"
	ViewMessage   View = "message"
	ViewAssistant View = "assistant"
	ViewLink      View = "link"
)

// views maps each view to whether it requires an authenticated session.
// Public views are public-only: authenticated users are sent home.
var views = map[View]bool{
	ViewLanding:   false,
	ViewLogin:     false,
	ViewSignup:    false,
	ViewDashboard: true,
	ViewMessage:   true,
	ViewAssistant: true,
	ViewLink:      true,
}

// RequiresAuth reports whether v needs a session. Unknown views do.
func RequiresAuth(v View) bool {
	req, ok := views[v]
	return !ok || req
}

// Decide is the gating rule. Nothing is decided before the session has been
// checked.
func Decide(s models.Session, requiresAuth bool) Decision {
	switch {
	case s.Status != models.SessionChecked:
		return Hold
	case requiresAuth && !s.Authenticated:
		return RedirectToLogin
	case !requiresAuth && s.Authenticated:
		return RedirectToHome
	default:
		return Allow
	}
}

// Gate decides navigation against a SessionStore.
type Gate struct {
	sessions *SessionStore
}

func NewGate(sessions *SessionStore) *Gate {
	return &Gate{sessions: sessions}
}

// Decide gates v against the current session without waiting.
func (g *Gate) Decide(v View) Decision {
	return Decide(g.sessions.Snapshot(), RequiresAuth(v))
}

// Enter gates v, holding until the session has been checked. It returns Hold
// only when ctx ends first. A non-nil error alongside another decision is the
// probe failure that made the session unauthenticated.
func (g *Gate) Enter(ctx context.Context, v View) (Decision, error) {
	s, err := g.sessions.Check(ctx)
	if ctx.Err() != nil {
		return Hold, ctx.Err()
	}
	return Decide(s, RequiresAuth(v)), err
}
