package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/services"
)

// Link prints the address that links a new inbox of provider.
func (a *App) Link(ctx context.Context, provider string) error {
	if !a.enter(ctx, services.ViewLink) {
		return nil
	}
	u, err := a.links.URL(provider)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Open this address in your browser to link an inbox:\n  %s\n", u)
	fmt.Fprintln(a.out, "Run 'linked' when you are done.")
	return nil
}

// Linked picks up inboxes linked in the browser since the last load.
func (a *App) Linked(ctx context.Context) error {
	if !a.enter(ctx, services.ViewLink) {
		return nil
	}
	if a.inbox.Snapshot().State == services.InboxIdle {
		if err := a.loadDashboard(ctx); err != nil {
			return err
		}
	}

	found, err := a.links.Resolve(ctx, a.inbox.Snapshot().Inboxes)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(a.out, "No new inboxes found.")
		return nil
	}

	// AddInbox prepends, so walk backwards to keep server order.
	for i := len(found) - 1; i >= 0; i-- {
		a.inbox.AddInbox(found[i])
	}
	for _, l := range found {
		fmt.Fprintf(a.out, "Linked %s <%s>\n", l.Inbox.DisplayName, l.Inbox.EmailAddress)
	}
	return nil
}
