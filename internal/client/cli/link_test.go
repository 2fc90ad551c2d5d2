package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	a, _, out := loggedInApp(t)

	require.NoError(t, a.Link(context.Background(), "Outlook"))
	assert.Contains(t, out.String(), "  http://api.test/auth/outlook\n")

	require.ErrorIs(t, a.Link(context.Background(), "out/look"), common.ErrValidation)
}

func TestLinked_AddsNewInboxesInServerOrder(t *testing.T) {
	ctx := context.Background()
	a, api, out := loggedInApp(t)
	require.NoError(t, a.Inboxes(ctx))

	api.mu.Lock()
	api.profile.Inboxes = append([]models.InboxSummary{
		{ID: "in-3", DisplayName: "Side", EmailAddress: "alice@side.test", Provider: "Outlook"},
		{ID: "in-4", DisplayName: "Club", EmailAddress: "alice@club.test", Provider: "Gmail"},
	}, api.profile.Inboxes...)
	api.mu.Unlock()

	require.NoError(t, a.Linked(ctx))

	var ids []string
	for _, in := range a.inbox.Snapshot().Inboxes {
		ids = append(ids, in.ID)
	}
	assert.Equal(t, []string{"in-3", "in-4", "in-1", "in-2"}, ids)
	assert.Equal(t, "in-2", a.inbox.Snapshot().SelectedID)
	assert.Contains(t, out.String(), "Linked Side <alice@side.test>")

	require.NoError(t, a.Linked(ctx))
	assert.Contains(t, out.String(), "No new inboxes found.")
}
