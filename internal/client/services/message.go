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

type MessageState string

const (
	MessageIdle     MessageState = "idle"
	MessageLoading  MessageState = "loading"
	MessageReady    MessageState = "ready"
	MessageNotFound MessageState = "not-found"
	MessageFailed   MessageState = "failed"
)

type MessageSnapshot struct {
	State  MessageState
	Detail *models.MessageDetail
	Err    error
}

// MessageController loads one message detail at a time. Details are never
// cached: every Load fetches again. While the shown message is reloaded its
// detail stays visible, and it survives a failed reload.
type MessageController struct {
	client client.Client
	log    logging.Logger

	mu     sync.Mutex
	seq    Sequencer
	state  MessageState
	detail *models.MessageDetail
	// detailProvider is the provider detail was loaded from.
	detailProvider string
	err            error
}

func NewMessageController(c client.Client, log logging.Logger) *MessageController {
	if log == nil {
		log = logging.NewNop()
	}
	return &MessageController{client: c, log: log.With("component", "message"), state: MessageIdle}
}

func (c *MessageController) Snapshot() MessageSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := MessageSnapshot{State: c.state, Err: c.err}
	if c.detail != nil {
		d := *c.detail
		s.Detail = &d
	}
	return s
}

// Load fetches message id of provider. Malformed input ends in NotFound
// without a request; so does a 404. Only the latest Load may update the
// state.
func (c *MessageController) Load(ctx context.Context, provider, id string) error {
	msgID, idOK := models.ParseMessageID(id)
	providerOK := models.ValidProvider(provider)

	c.mu.Lock()
	ticket := c.seq.Next()
	if !c.showingLocked(provider, msgID) {
		c.detail = nil
		c.detailProvider = ""
	}
	c.err = nil
	if !idOK || !providerOK {
		c.state = MessageNotFound
		c.err = fmt.Errorf("message %q: %w", id, common.ErrNotFound)
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.state = MessageLoading
	c.mu.Unlock()

	detail, err := c.client.MessageDetail(ctx, provider, msgID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.Current(ticket) {
		return common.ErrSuperseded
	}

	switch {
	case err == nil:
		c.detail = detail
		c.detailProvider = provider
		c.state = MessageReady
		c.log.Debug(ctx, "message loaded", "message_id", msgID)
		return nil
	case errors.Is(err, common.ErrNotFound):
		c.detail = nil
		c.detailProvider = ""
		c.state = MessageNotFound
	default:
		c.state = MessageFailed
		c.log.Warn(ctx, "message load failed", "message_id", msgID, "err", err)
	}
	c.err = fmt.Errorf("message %q: %w", id, err)
	return c.err
}

func (c *MessageController) showingLocked(provider string, id models.MessageID) bool {
	return c.detail != nil && c.detail.ID == id && c.detailProvider == provider
}

// Reset returns the controller to Idle and discards any load in flight.
func (c *MessageController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Invalidate()
	c.state = MessageIdle
	c.detail = nil
	c.detailProvider = ""
	c.err = nil
}
