package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sentineliq/internal/client/services"
	"github.com/dmitrijs2005/sentineliq/internal/common"
)

// Ask sends prompt to the assistant, using the open message as context, and
// prints the reply as it is revealed. An empty prompt is read from input.
func (a *App) Ask(ctx context.Context, prompt string) error {
	if !a.enter(ctx, services.ViewAssistant) {
		return nil
	}

	if strings.TrimSpace(prompt) == "" {
		var err error
		prompt, err = GetMultiline(a.reader, "Ask SentinelIQ AI", a.out)
		if err != nil {
			return err
		}
	}

	var contextBody string
	if d := a.message.Snapshot().Detail; d != nil {
		contextBody = d.ContextBody()
	}

	if err := a.assistant.Ask(ctx, prompt, contextBody); err != nil {
		if common.KindOf(err) == common.KindAuthRequired && !a.isLoggedIn() {
			return err
		}
		if notice := a.assistant.Snapshot().Notice; notice != "" {
			fmt.Fprintln(a.out, notice)
			a.log.Debug(ctx, "assistant failed", "err", err)
			return nil
		}
		return err
	}
	if err := a.assistant.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	return nil
}

// History lists the prompts sent from this machine, newest first.
func (a *App) History(ctx context.Context) error {
	if !a.enter(ctx, services.ViewAssistant) {
		return nil
	}

	records, err := a.repos.History.List(ctx, a.config.HistoryLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No prompts yet.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Prompt)
	}
	return nil
}

// ClearHistory forgets the prompts sent from this machine.
func (a *App) ClearHistory(ctx context.Context) error {
	if !a.enter(ctx, services.ViewAssistant) {
		return nil
	}
	if err := a.repos.History.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Prompt history cleared.")
	return nil
}
