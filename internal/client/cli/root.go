package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/services"
	"github.com/dmitrijs2005/sentineliq/internal/common"
)

func (a *App) getStatus() string {
	s := a.sessions.Snapshot()
	if !s.Authenticated || s.Identity == nil {
		return ""
	}
	status := s.Identity.Username
	if in, ok := a.inbox.Snapshot().Selected(); ok {
		status += " " + in.EmailAddress
	}
	return fmt.Sprintf("(%s)", status)
}

// Root probes the session, loads the dashboard when already logged in and
// runs the REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SentinelIQ CLI (type 'help' for commands)")

	if _, err := a.sessions.Check(ctx); err != nil {
		a.log.Debug(ctx, "session probe failed", "err", err)
	}
	if a.isLoggedIn() {
		report(a.loadDashboard(ctx))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// enter consults the gate for v. It reports whether the command may run,
// prompting for login when the view needs a session.
func (a *App) enter(ctx context.Context, v services.View) bool {
	d, err := a.gate.Enter(ctx, v)
	switch d {
	case services.Allow:
		return true
	case services.RedirectToLogin:
		if err != nil {
			a.log.Debug(ctx, "session probe failed", "err", err)
		}
		fmt.Fprintln(a.out, "Please log in first.")
		if err := a.login(ctx); err != nil {
			report(err)
			return false
		}
		return a.gate.Decide(v) == services.Allow
	case services.RedirectToHome:
		fmt.Fprintln(a.out, "You are already logged in. Use 'logout' first.")
		return false
	default:
		return false
	}
}

// describe turns err into a line for the user.
func describe(err error) string {
	var msg string
	switch common.KindOf(err) {
	case common.KindAuthRequired:
		msg = client.UserMessage(err, "Your session has ended, please log in.")
	case common.KindNotFound:
		msg = "Not found."
	case common.KindTransport:
		msg = "Server unavailable."
	case common.KindValidation:
		msg = client.UserMessage(err, err.Error())
	default:
		msg = client.UserMessage(err, "Something went wrong: "+err.Error())
	}
	if common.IsRetryable(err) {
		msg += " Try again later."
	}
	return msg
}

// report prints err unless it is nil or a superseded result.
func report(err error) {
	switch {
	case err == nil, common.KindOf(err) == common.KindSuperseded, errors.Is(err, context.Canceled):
		return
	}
	printlnFn("Error:", describe(err))
}
