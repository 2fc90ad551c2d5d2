// Package services contains the SentinelIQ client services: session state,
// navigation gating, the inbox and message controllers and the assistant.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
)

// SessionStore owns the process-wide session. It starts Unchecked and
// becomes Checked after the first probe; Login and Logout change it without
// probing.
type SessionStore struct {
	client client.Client
	log    logging.Logger

	mu      sync.Mutex
	session models.Session
	seq     Sequencer
	probing chan struct{}
}

func NewSessionStore(c client.Client, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &SessionStore{client: c, log: log.With("component", "session")}
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

func copySession(in models.Session) models.Session {
	out := in
	if in.Identity != nil {
		id := *in.Identity
		out.Identity = &id
	}
	return out
}

// Check probes the session once. Later calls return the current session
// without a network call until Recheck re-arms the store; calls made while a
// probe is running wait for it.
//
// The returned session is always Checked unless ctx ends while waiting. A
// non-nil error reports why an unauthenticated result was reached when it was
// something other than the server rejecting the session.
func (s *SessionStore) Check(ctx context.Context) (models.Session, error) {
	s.mu.Lock()
	for s.probing != nil {
		wait := s.probing
		s.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
		s.mu.Lock()
	}
	if s.session.Status == models.SessionChecked {
		defer s.mu.Unlock()
		return copySession(s.session), nil
	}

	ticket := s.seq.Next()
	done := make(chan struct{})
	s.probing = done
	s.mu.Unlock()

	info, err := s.client.Check(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.probing = nil
	close(done)

	if !s.seq.Current(ticket) {
		// Login or Logout happened during the probe and already decided.
		return copySession(s.session), nil
	}

	s.session = models.Session{Status: models.SessionChecked}
	if err == nil {
		s.session.Authenticated = true
		if info != nil {
			s.session.Identity = &models.Identity{Username: info.Username}
			s.session.ExpiresAt = info.ExpiresAt
		}
		s.log.Debug(ctx, "session checked", "authenticated", true)
		return copySession(s.session), nil
	}

	s.log.Debug(ctx, "session checked", "authenticated", false, "err", err)
	if errors.Is(err, common.ErrAuthRequired) {
		err = nil
	}
	return copySession(s.session), err
}

// Recheck re-arms the store and probes again.
func (s *SessionStore) Recheck(ctx context.Context) (models.Session, error) {
	s.mu.Lock()
	if s.probing == nil {
		s.session.Status = models.SessionUnchecked
	}
	s.mu.Unlock()
	return s.Check(ctx)
}

// HandleUnauthorized is registered as the API client's 401 hook.
func (s *SessionStore) HandleUnauthorized(ctx context.Context) {
	s.log.Info(ctx, "api reported unauthorized, rechecking session")
	if _, err := s.Recheck(ctx); err != nil {
		s.log.Warn(ctx, "session recheck failed", "err", err)
	}
}

// Login authenticates with the server. A rejection is returned wrapped; its
// server message is available through client.UserMessage.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) error {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}

	if err := s.client.Login(ctx, creds); err != nil {
		s.log.Warn(ctx, "login rejected", "username", creds.Username, "err", err)
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Invalidate()
	s.session = models.Session{
		Status:        models.SessionChecked,
		Authenticated: true,
		Identity:      &models.Identity{Username: creds.Username},
	}
	s.log.Info(ctx, "logged in", "username", creds.Username)
	return nil
}

// Logout ends the server session and always leaves the client
// unauthenticated. The server error, if any, is returned for reporting only.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)

	s.mu.Lock()
	s.seq.Invalidate()
	s.session = models.Session{Status: models.SessionChecked}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "server logout failed", "err", err)
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info(ctx, "logged out")
	return nil
}

// Signup registers a new account. It does not authenticate the session.
func (s *SessionStore) Signup(ctx context.Context, form models.SignupForm) (string, error) {
	if err := ValidateSignup(form); err != nil {
		return "", err
	}
	msg, err := s.client.Signup(ctx, form)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}
	s.log.Info(ctx, "signed up", "username", form.Username)
	return msg, nil
}

// ValidateSignup checks the form before anything is sent.
func ValidateSignup(form models.SignupForm) error {
	switch {
	case strings.TrimSpace(form.Name) == "":
		return fmt.Errorf("name is required: %w", common.ErrValidation)
	case strings.TrimSpace(form.Username) == "":
		return fmt.Errorf("username is required: %w", common.ErrValidation)
	case !strings.Contains(form.Email, "@"):
		return fmt.Errorf("email is invalid: %w", common.ErrValidation)
	case form.Password == "":
		return fmt.Errorf("password is required: %w", common.ErrValidation)
	case form.Password != form.ConfirmPassword:
		return fmt.Errorf("passwords do not match: %w", common.ErrValidation)
	}
	return nil
}
