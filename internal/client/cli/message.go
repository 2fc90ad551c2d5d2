package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/client/render"
	"github.com/dmitrijs2005/sentineliq/internal/client/services"
)

// Show opens message id of the selected inbox.
func (a *App) Show(ctx context.Context, id string) error {
	if !a.enter(ctx, services.ViewMessage) {
		return nil
	}

	in, ok := a.inbox.Snapshot().Selected()
	if !ok {
		fmt.Fprintln(a.out, "No inbox selected.")
		return nil
	}

	if err := a.message.Load(ctx, in.Provider, id); err != nil {
		return err
	}

	s := a.message.Snapshot()
	if s.Detail == nil {
		return nil
	}
	d := *s.Detail

	fmt.Fprintf(a.out, "From:    %s\n", d.Sender)
	fmt.Fprintf(a.out, "Subject: %s\n", d.Subject)
	if d.Date != "" {
		fmt.Fprintf(a.out, "Date:    %s\n", d.Date)
	}
	fmt.Fprintf(a.out, "Trust:   %s (%s)", d.TrustLevel(), models.FormatScore(d.TrustScore))
	if d.Intent != "" {
		fmt.Fprintf(a.out, "  Intent: %s", d.Intent)
	}
	fmt.Fprintln(a.out)
	if d.IsDangerous() {
		fmt.Fprintln(a.out, "WARNING: this message looks dangerous.")
	}
	if d.Recommendation != "" {
		fmt.Fprintf(a.out, "Recommendation: %s\n", d.Recommendation)
	}
	if d.AIInsight != "" {
		fmt.Fprintf(a.out, "AI insight: %s\n", d.AIInsight)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, render.Body(d))
	return nil
}
