package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgs(ids ...string) []models.MessageSummary {
	out := make([]models.MessageSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.MessageSummary{ID: models.MessageID(id), Subject: "subject " + id, TrustScore: 80})
	}
	return out
}

// newInboxFixture has three inboxes; "work" is primary.
func newInboxFixture() *fakeClient {
	f := newFakeClient()
	f.profile = &models.Profile{
		Identity: models.Identity{Username: "jerome"},
		Inboxes: []models.InboxSummary{
			{ID: "home", Provider: "GMAIL", DisplayName: "Home"},
			{ID: "work", Provider: "GMAIL", DisplayName: "Work", IsPrimary: true},
			{ID: "alt", Provider: "OUTLOOK", DisplayName: "Alt"},
		},
	}
	f.messages["home"] = msgs("h1", "h2")
	f.messages["work"] = msgs("w1")
	f.messages["alt"] = msgs("a1", "a2", "a3")
	return f
}

func initialized(t *testing.T, f *fakeClient) *InboxController {
	t.Helper()
	c := NewInboxController(f, nil)
	require.NoError(t, c.Initialize(context.Background()))
	return c
}

func TestInitialize_SelectsPrimaryAndLoadsItsMessages(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	s := c.Snapshot()
	assert.Equal(t, InboxReady, s.State)
	assert.Equal(t, "jerome", s.Identity.Username)
	assert.Len(t, s.Inboxes, 3)
	assert.Equal(t, "work", s.SelectedID)
	assert.Equal(t, "work", s.MessagesFor)
	assert.Equal(t, msgs("w1"), s.Messages)
	assert.Equal(t, []string{"me", "messages:work"}, f.Calls())
}

func TestInitialize_FirstInboxWhenNoPrimary(t *testing.T) {
	f := newInboxFixture()
	f.profile.Inboxes[1].IsPrimary = false
	c := initialized(t, f)

	assert.Equal(t, "home", c.Snapshot().SelectedID)
}

func TestInitialize_IdentityFailureShortCircuits(t *testing.T) {
	f := newInboxFixture()
	f.meErr = fmt.Errorf("GET /api/me: %w", common.ErrAuthRequired)
	c := NewInboxController(f, nil)

	err := c.Initialize(context.Background())
	require.ErrorIs(t, err, common.ErrAuthRequired)

	s := c.Snapshot()
	assert.Equal(t, InboxFailed, s.State)
	assert.ErrorIs(t, s.Err, common.ErrAuthRequired)
	assert.Empty(t, s.Inboxes)
	assert.Equal(t, []string{"me"}, f.Calls(), "nothing is fetched after a failed identity step")
}

func TestInitialize_NoInboxesIsReady(t *testing.T) {
	f := newFakeClient()
	f.profile = &models.Profile{Identity: models.Identity{Username: "jerome"}, Inboxes: []models.InboxSummary{}}
	c := NewInboxController(f, nil)

	require.NoError(t, c.Initialize(context.Background()))

	s := c.Snapshot()
	assert.Equal(t, InboxReady, s.State)
	assert.NoError(t, s.Err)
	assert.Empty(t, s.Inboxes)
	assert.Empty(t, s.Messages)
	assert.Empty(t, s.SelectedID)
	assert.Equal(t, []string{"me"}, f.Calls())
}

func TestInitialize_NilInboxListIsReady(t *testing.T) {
	f := newFakeClient()
	f.profile = &models.Profile{Identity: models.Identity{Username: "jerome"}}
	c := NewInboxController(f, nil)

	require.NoError(t, c.Initialize(context.Background()))
	assert.NotNil(t, c.Snapshot().Inboxes)
}

func TestSelectInbox_ReplacesMessages(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	require.NoError(t, c.SelectInbox(context.Background(), "alt"))

	s := c.Snapshot()
	assert.Equal(t, "alt", s.SelectedID)
	assert.Equal(t, msgs("a1", "a2", "a3"), s.Messages)
}

func TestSelectInbox_SameOrUnknown(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)
	ctx := context.Background()

	require.NoError(t, c.SelectInbox(ctx, "work"))
	require.ErrorIs(t, c.SelectInbox(ctx, "nope"), common.ErrNotFound)
	assert.Equal(t, 1, f.count("messages:"), "no fetch for the current or an unknown inbox")
}

func TestSelectInbox_LatestSelectionWins(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)
	ctx := context.Background()

	releaseA := f.block("messages:home")
	releaseB := f.block("messages:alt")

	errA := make(chan error, 1)
	go func() { errA <- c.SelectInbox(ctx, "home") }()
	waitStarted(t, f, "messages:home")

	errB := make(chan error, 1)
	go func() { errB <- c.SelectInbox(ctx, "alt") }()
	waitStarted(t, f, "messages:alt")

	releaseB()
	require.NoError(t, <-errB)
	releaseA()
	require.ErrorIs(t, <-errA, common.ErrSuperseded)

	s := c.Snapshot()
	assert.Equal(t, InboxReady, s.State)
	assert.Equal(t, "alt", s.SelectedID)
	assert.Equal(t, "alt", s.MessagesFor)
	assert.Equal(t, msgs("a1", "a2", "a3"), s.Messages)
}

func TestSelectInbox_FailureKeepsPriorMessages(t *testing.T) {
	f := newInboxFixture()
	f.messagesErr["alt"] = fmt.Errorf("GET: %w", common.ErrUnavailable)
	c := initialized(t, f)

	err := c.SelectInbox(context.Background(), "alt")
	require.ErrorIs(t, err, common.ErrUnavailable)

	s := c.Snapshot()
	assert.Equal(t, InboxFailed, s.State)
	assert.ErrorIs(t, s.Err, common.ErrUnavailable)
	assert.Equal(t, "alt", s.SelectedID)
	assert.Equal(t, "work", s.MessagesFor)
	assert.Equal(t, msgs("w1"), s.Messages)
	assert.Equal(t, models.InboxStats{}, c.Stats(), "stats only describe the selected inbox")
}

func TestRemoveInbox_Selected(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	require.True(t, c.RemoveInbox("work"))

	s := c.Snapshot()
	assert.Empty(t, s.SelectedID)
	assert.Empty(t, s.Messages)
	assert.Len(t, s.Inboxes, 2)
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, 1, f.count("messages:"), "no implicit auto-select")
}

func TestRemoveInbox_NotSelected(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)
	before := c.Snapshot()

	require.True(t, c.RemoveInbox("alt"))
	require.False(t, c.RemoveInbox("alt"))

	s := c.Snapshot()
	assert.Equal(t, before.SelectedID, s.SelectedID)
	assert.Equal(t, before.Messages, s.Messages)
	assert.Equal(t, []string{"home", "work"}, []string{s.Inboxes[0].ID, s.Inboxes[1].ID})
}

func TestRemoveInbox_DiscardsFetchInFlight(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)
	ctx := context.Background()

	release := f.block("messages:alt")
	errc := make(chan error, 1)
	go func() { errc <- c.SelectInbox(ctx, "alt") }()
	waitStarted(t, f, "messages:alt")

	require.True(t, c.RemoveInbox("alt"))
	release()
	require.ErrorIs(t, <-errc, common.ErrSuperseded)

	s := c.Snapshot()
	assert.Equal(t, InboxReady, s.State)
	assert.Empty(t, s.SelectedID)
	assert.Empty(t, s.Messages)
}

func TestAddInbox_PrependsAndIgnoresDuplicates(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	linked := models.LinkResult{Inbox: models.InboxSummary{ID: "new", Provider: "GMAIL"}}
	require.True(t, c.AddInbox(linked))
	require.False(t, c.AddInbox(linked))

	s := c.Snapshot()
	require.Len(t, s.Inboxes, 4)
	assert.Equal(t, "new", s.Inboxes[0].ID)
	assert.Equal(t, "work", s.SelectedID)
	assert.Equal(t, 1, f.count("me"), "linking does not reload the chain")
}

func TestRefreshMessages(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)
	ctx := context.Background()

	f.set(func(f *fakeClient) { f.messages["work"] = msgs("w1", "w2") })
	require.NoError(t, c.RefreshMessages(ctx))
	assert.Equal(t, msgs("w1", "w2"), c.Snapshot().Messages)
	assert.Equal(t, 2, f.count("messages:work"))

	c.RemoveInbox("work")
	require.ErrorIs(t, c.RefreshMessages(ctx), common.ErrValidation)
}

func TestReload_RerunsChain(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	f.set(func(f *fakeClient) {
		f.profile.Inboxes = f.profile.Inboxes[:1]
	})
	require.NoError(t, c.Reload(context.Background()))

	s := c.Snapshot()
	assert.Len(t, s.Inboxes, 1)
	assert.Equal(t, "home", s.SelectedID)
	assert.Equal(t, []string{"me", "messages:work", "me", "messages:home"}, f.Calls())
}

func TestStats(t *testing.T) {
	f := newInboxFixture()
	f.messages["work"] = []models.MessageSummary{
		{ID: "1", TrustScore: 90},
		{ID: "2", TrustScore: 50},
		{ID: "3", TrustScore: 10, Spam: true},
	}
	c := initialized(t, f)

	assert.Equal(t, models.InboxStats{Total: 3, Trusted: 1, Flagged: 2, Spam: 1}, c.Stats())
}

func TestSnapshot_IsCopy(t *testing.T) {
	f := newInboxFixture()
	c := initialized(t, f)

	s := c.Snapshot()
	s.Inboxes[0].DisplayName = "changed"
	s.Messages[0].Subject = "changed"

	s2 := c.Snapshot()
	assert.Equal(t, "Home", s2.Inboxes[0].DisplayName)
	assert.Equal(t, "subject w1", s2.Messages[0].Subject)
}
