package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sentineliq/internal/client/services"
	"github.com/dmitrijs2005/sentineliq/internal/common"
)

// getText, getTextWithDefault and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getText            = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
)

// Login runs the login view.
func (a *App) Login(ctx context.Context) error {
	if !a.enter(ctx, services.ViewLogin) {
		return nil
	}
	return a.login(ctx)
}

// login prompts for credentials, offering the last used username as the
// default. On success the views of any earlier session are dropped and the
// dashboard is loaded.
func (a *App) login(ctx context.Context) error {
	last, _, err := a.repos.Metadata.Get(ctx, metadata.KeyLastUsername)
	if err != nil {
		a.log.Warn(ctx, "reading last username", "err", err)
	}

	username, err := getTextWithDefault(a.reader, "Enter username", last, a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	creds := models.Credentials{Username: username, Password: string(password)}
	if err := a.sessions.Login(ctx, creds); err != nil {
		return err
	}

	if err := a.repos.Metadata.Set(ctx, metadata.KeyLastUsername, username); err != nil {
		a.log.Warn(ctx, "saving last username", "err", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", username)
	a.resetViews()
	return a.loadDashboard(ctx)
}

// Signup registers an account. The user logs in afterwards.
func (a *App) Signup(ctx context.Context) error {
	if !a.enter(ctx, services.ViewSignup) {
		return nil
	}

	var form models.SignupForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter full name", &form.Name},
		{"Enter username", &form.Username},
		{"Enter email", &form.Email},
	}
	for _, f := range fields {
		v, err := getText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form.Password = string(password)
	form.ConfirmPassword = string(confirm)

	msg, err := a.sessions.Signup(ctx, form)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Account created."
	}
	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, "You can now log in.")
	return nil
}

// Logout ends the session. Local views are dropped even when the server
// call fails.
func (a *App) Logout(ctx context.Context) error {
	if !a.enter(ctx, services.ViewDashboard) {
		return nil
	}

	err := a.sessions.Logout(ctx)
	a.resetViews()
	fmt.Fprintln(a.out, "Logged out.")
	return err
}
