package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sentineliq/internal/client/services"
	"github.com/dmitrijs2005/sentineliq/internal/common"
)

// loadDashboard runs the inbox chain and restores the inbox used last time
// when it is still linked.
func (a *App) loadDashboard(ctx context.Context) error {
	if err := a.inbox.Initialize(ctx); err != nil {
		return err
	}

	last, ok, err := a.repos.Metadata.Get(ctx, metadata.KeyLastInbox)
	if err != nil {
		a.log.Warn(ctx, "reading last inbox", "err", err)
		return nil
	}
	if !ok || last == a.inbox.Snapshot().SelectedID {
		return nil
	}
	err = a.inbox.SelectInbox(ctx, last)
	if errors.Is(err, common.ErrNotFound) {
		a.log.Debug(ctx, "last inbox is gone", "inbox_id", last)
		return nil
	}
	return err
}

// dashboard gates the dashboard view and makes sure its data was loaded once.
func (a *App) dashboard(ctx context.Context) (bool, error) {
	if !a.enter(ctx, services.ViewDashboard) {
		return false, nil
	}
	if a.inbox.Snapshot().State == services.InboxIdle {
		if err := a.loadDashboard(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (a *App) Inboxes(ctx context.Context) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	a.printInboxes(a.inbox.Snapshot())
	return nil
}

func (a *App) printInboxes(s services.InboxSnapshot) {
	if len(s.Inboxes) == 0 {
		fmt.Fprintln(a.out, "No inboxes linked. Use 'link <provider>' to add one.")
		return
	}
	for _, in := range s.Inboxes {
		marker := " "
		if in.ID == s.SelectedID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  %s <%s> [%s]", marker, in.ID, in.DisplayName, in.EmailAddress, in.Provider)
		if in.IsPrimary {
			line += " (primary)"
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *App) Select(ctx context.Context, id string) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	if err := a.inbox.SelectInbox(ctx, id); err != nil {
		return err
	}
	if err := a.repos.Metadata.Set(ctx, metadata.KeyLastInbox, id); err != nil {
		a.log.Warn(ctx, "saving last inbox", "err", err)
	}
	a.printMessages(a.inbox.Snapshot())
	return nil
}

func (a *App) Messages(ctx context.Context) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	a.printMessages(a.inbox.Snapshot())
	return nil
}

func (a *App) printMessages(s services.InboxSnapshot) {
	in, ok := s.Selected()
	if !ok {
		fmt.Fprintln(a.out, "No inbox selected.")
		return
	}
	if s.Err != nil {
		fmt.Fprintf(a.out, "Last refresh failed: %s\n", describe(s.Err))
	}
	if s.MessagesFor != in.ID {
		fmt.Fprintln(a.out, "Messages are not loaded yet. Use 'refresh'.")
		return
	}
	if len(s.Messages) == 0 {
		fmt.Fprintf(a.out, "No messages in %s.\n", in.EmailAddress)
		return
	}
	for _, m := range s.Messages {
		fmt.Fprintln(a.out, messageLine(m))
	}
}

func messageLine(m models.MessageSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-28s %s  [%s %s]", m.ID, truncate(m.Sender, 28), m.Subject, models.FormatScore(m.TrustScore), m.TrustLevel())
	if m.IsDangerous() {
		b.WriteString(" DANGER")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func (a *App) Refresh(ctx context.Context) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	if err := a.inbox.RefreshMessages(ctx); err != nil {
		return err
	}
	a.printMessages(a.inbox.Snapshot())
	return nil
}

func (a *App) Reload(ctx context.Context) error {
	if !a.enter(ctx, services.ViewDashboard) {
		return nil
	}
	if err := a.inbox.Reload(ctx); err != nil {
		return err
	}
	a.printInboxes(a.inbox.Snapshot())
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	if _, ok := a.inbox.Snapshot().Selected(); !ok {
		fmt.Fprintln(a.out, "No inbox selected.")
		return nil
	}
	st := a.inbox.Stats()
	fmt.Fprintf(a.out, "Total: %d  Trusted: %d  Flagged: %d  Spam: %d\n", st.Total, st.Trusted, st.Flagged, st.Spam)
	return nil
}

// Hide removes an inbox from this session's view and stops restoring it on
// the next start. The link on the server is kept.
func (a *App) Hide(ctx context.Context, id string) error {
	if ok, err := a.dashboard(ctx); !ok {
		return err
	}
	if !a.inbox.RemoveInbox(id) {
		return fmt.Errorf("inbox %q: %w", id, common.ErrNotFound)
	}
	if last, ok, err := a.repos.Metadata.Get(ctx, metadata.KeyLastInbox); err == nil && ok && last == id {
		if err := a.repos.Metadata.Delete(ctx, metadata.KeyLastInbox); err != nil {
			a.log.Warn(ctx, "forgetting last inbox", "err", err)
		}
	}
	fmt.Fprintf(a.out, "Inbox %s hidden.\n", id)
	return nil
}
