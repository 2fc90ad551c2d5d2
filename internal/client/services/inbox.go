package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
)

type InboxState string

const (
	InboxIdle            InboxState = "idle"
	InboxLoadingIdentity InboxState = "loading-identity"
	InboxLoadingInboxes  InboxState = "loading-inboxes"
	InboxLoadingMessages InboxState = "loading-messages"
	InboxReady           InboxState = "ready"
	InboxFailed          InboxState = "failed"
)

// InboxSnapshot is a copy of the controller state. Messages belong to the
// inbox MessagesFor, which differs from SelectedID while a new selection is
// loading or after its fetch failed.
type InboxSnapshot struct {
	State       InboxState
	Identity    *models.Identity
	Inboxes     []models.InboxSummary
	SelectedID  string
	MessagesFor string
	Messages    []models.MessageSummary
	Err         error
}

// Selected returns the selected inbox, if any.
func (s InboxSnapshot) Selected() (models.InboxSummary, bool) {
	for _, in := range s.Inboxes {
		if in.ID == s.SelectedID {
			return in, true
		}
	}
	return models.InboxSummary{}, false
}

// InboxController loads identity, then inboxes, then the messages of the
// selected inbox. Only the latest chain run and the latest message fetch may
// change its state.
type InboxController struct {
	client client.Client
	log    logging.Logger

	mu          sync.Mutex
	state       InboxState
	identity    *models.Identity
	inboxes     []models.InboxSummary
	selected    string
	messagesFor string
	messages    []models.MessageSummary
	err         error

	chain Sequencer
	fetch Sequencer
}

func NewInboxController(c client.Client, log logging.Logger) *InboxController {
	if log == nil {
		log = logging.NewNop()
	}
	return &InboxController{
		client:   c,
		log:      log.With("component", "inbox"),
		state:    InboxIdle,
		inboxes:  []models.InboxSummary{},
		messages: []models.MessageSummary{},
	}
}

func (c *InboxController) Snapshot() InboxSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := InboxSnapshot{
		State:       c.state,
		Inboxes:     models.CloneInboxes(c.inboxes),
		SelectedID:  c.selected,
		MessagesFor: c.messagesFor,
		Messages:    append([]models.MessageSummary{}, c.messages...),
		Err:         c.err,
	}
	if c.identity != nil {
		id := *c.identity
		s.Identity = &id
	}
	return s
}

// Stats summarizes the messages of the selected inbox.
func (c *InboxController) Stats() models.InboxStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" || c.messagesFor != c.selected {
		return models.InboxStats{}
	}
	return models.StatsOf(c.messages)
}

func (c *InboxController) setState(ctx context.Context, st InboxState) {
	c.state = st
	c.log.Debug(ctx, "inbox state", "state", st)
}

// Initialize runs the whole chain. When the identity step fails with
// common.ErrAuthRequired the caller is expected to navigate to login.
func (c *InboxController) Initialize(ctx context.Context) error {
	c.mu.Lock()
	ticket := c.chain.Next()
	c.fetch.Invalidate()
	c.setState(ctx, InboxLoadingIdentity)
	c.mu.Unlock()

	profile, err := c.client.Me(ctx)

	c.mu.Lock()
	if !c.chain.Current(ticket) {
		c.mu.Unlock()
		return common.ErrSuperseded
	}
	if err != nil {
		c.failLocked(ctx, err)
		c.mu.Unlock()
		return fmt.Errorf("identity: %w", err)
	}

	identity := profile.Identity
	c.identity = &identity
	c.setState(ctx, InboxLoadingInboxes)

	inboxes := models.CloneInboxes(profile.Inboxes)
	if inboxes == nil {
		inboxes = []models.InboxSummary{}
	}
	c.inboxes = inboxes

	initial, ok := initialInbox(inboxes)
	if !ok {
		c.selected = ""
		c.messagesFor = ""
		c.messages = []models.MessageSummary{}
		c.err = nil
		c.setState(ctx, InboxReady)
		c.mu.Unlock()
		return nil
	}

	fetchTicket := c.beginFetchLocked(ctx, initial)
	c.mu.Unlock()

	return c.finishFetch(ctx, initial, fetchTicket)
}

// Reload reruns the whole chain.
func (c *InboxController) Reload(ctx context.Context) error {
	return c.Initialize(ctx)
}

func initialInbox(inboxes []models.InboxSummary) (models.InboxSummary, bool) {
	for _, in := range inboxes {
		if in.IsPrimary {
			return in, true
		}
	}
	if len(inboxes) > 0 {
		return inboxes[0], true
	}
	return models.InboxSummary{}, false
}

// SelectInbox makes id the selected inbox and loads its messages. Selecting
// the inbox that is already selected does nothing; use RefreshMessages to
// resync it.
func (c *InboxController) SelectInbox(ctx context.Context, id string) error {
	c.mu.Lock()
	if id == c.selected {
		c.mu.Unlock()
		return nil
	}
	inbox, ok := c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("inbox %q: %w", id, common.ErrNotFound)
	}
	ticket := c.beginFetchLocked(ctx, inbox)
	c.mu.Unlock()

	return c.finishFetch(ctx, inbox, ticket)
}

// RefreshMessages refetches the messages of the selected inbox.
func (c *InboxController) RefreshMessages(ctx context.Context) error {
	c.mu.Lock()
	inbox, ok := c.findLocked(c.selected)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("no inbox selected: %w", common.ErrValidation)
	}
	ticket := c.beginFetchLocked(ctx, inbox)
	c.mu.Unlock()

	return c.finishFetch(ctx, inbox, ticket)
}

func (c *InboxController) findLocked(id string) (models.InboxSummary, bool) {
	if id == "" {
		return models.InboxSummary{}, false
	}
	for _, in := range c.inboxes {
		if in.ID == id {
			return in, true
		}
	}
	return models.InboxSummary{}, false
}

func (c *InboxController) beginFetchLocked(ctx context.Context, inbox models.InboxSummary) uint64 {
	c.selected = inbox.ID
	c.setState(ctx, InboxLoadingMessages)
	return c.fetch.Next()
}

func (c *InboxController) finishFetch(ctx context.Context, inbox models.InboxSummary, ticket uint64) error {
	list, err := c.client.Messages(ctx, inbox.Provider, inbox.ID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetch.Current(ticket) {
		c.log.Debug(ctx, "discarding stale messages", "inbox_id", inbox.ID)
		return common.ErrSuperseded
	}
	if err != nil {
		c.failLocked(ctx, err)
		return fmt.Errorf("messages of inbox %q: %w", inbox.ID, err)
	}

	c.messages = append([]models.MessageSummary{}, list...)
	c.messagesFor = inbox.ID
	c.err = nil
	c.setState(ctx, InboxReady)
	return nil
}

// failLocked records err and keeps the data loaded so far.
func (c *InboxController) failLocked(ctx context.Context, err error) {
	c.err = err
	c.setState(ctx, InboxFailed)
	if errors.Is(err, common.ErrAuthRequired) {
		c.log.Info(ctx, "inbox load needs authentication")
		return
	}
	c.log.Warn(ctx, "inbox load failed", "err", err)
}

// AddInbox prepends a newly linked inbox. It reports false when an inbox with
// the same id is already known.
func (c *InboxController) AddInbox(link models.LinkResult) bool {
	inbox := link.Inbox
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.findLocked(inbox.ID); ok {
		return false
	}
	c.inboxes = append([]models.InboxSummary{inbox}, c.inboxes...)
	return true
}

// RemoveInbox drops an inbox locally. Removing the selected inbox clears the
// selection and the messages and discards any fetch in flight; no other inbox
// gets selected.
func (c *InboxController) RemoveInbox(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, in := range c.inboxes {
		if in.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	c.inboxes = append(c.inboxes[:idx:idx], c.inboxes[idx+1:]...)

	if id == c.selected {
		c.fetch.Invalidate()
		c.selected = ""
		c.messagesFor = ""
		c.messages = []models.MessageSummary{}
		if c.state == InboxLoadingMessages {
			c.state = InboxReady
		}
	}
	return true
}
