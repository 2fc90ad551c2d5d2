package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultRevealInterval = 15 * time.Millisecond

	noResponseReply  = "No response"
	fetchErrorNotice = "Error fetching response."
)

var ErrAssistantClosed = errors.New("assistant closed")

// Ticker is the part of time.Ticker the reveal uses.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.C }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// PromptRecorder keeps sent prompts; history.Repository implements it.
type PromptRecorder interface {
	Append(ctx context.Context, prompt string, at time.Time, keep int) error
}

type AssistantOption func(*AssistantController)

// WithRevealInterval sets the reveal cadence. A non-positive interval reveals
// the reply in one step.
func WithRevealInterval(d time.Duration) AssistantOption {
	return func(c *AssistantController) { c.interval = d }
}

func WithTicker(newTicker func(time.Duration) Ticker) AssistantOption {
	return func(c *AssistantController) { c.newTicker = newTicker }
}

// WithHistory records every sent prompt, keeping at most keep of them.
func WithHistory(r PromptRecorder, keep int) AssistantOption {
	return func(c *AssistantController) {
		c.history = r
		c.historyKeep = keep
	}
}

// OnReveal registers fn to receive every revealed chunk, in order.
func OnReveal(fn func(chunk string)) AssistantOption {
	return func(c *AssistantController) { c.onReveal = fn }
}

type AssistantSnapshot struct {
	State    models.AssistantState
	Exchange *models.AssistantExchange
	// Notice is the user-facing message of the Errored state.
	Notice string
}

// AssistantController asks the assistant one question at a time and reveals
// the complete reply rune by rune. A newer Ask or Close stops the reveal.
type AssistantController struct {
	client      client.Client
	log         logging.Logger
	interval    time.Duration
	newTicker   func(time.Duration) Ticker
	onReveal    func(string)
	history     PromptRecorder
	historyKeep int

	mu       sync.Mutex
	seq      Sequencer
	state    models.AssistantState
	exchange *models.AssistantExchange
	notice   string
	stop     chan struct{}
	done     chan struct{}
	closed   bool
}

func NewAssistantController(c client.Client, log logging.Logger, opts ...AssistantOption) *AssistantController {
	if log == nil {
		log = logging.NewNop()
	}
	a := &AssistantController{
		client:    c,
		log:       log.With("component", "assistant"),
		interval:  DefaultRevealInterval,
		newTicker: newTimeTicker,
		state:     models.AssistantIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (c *AssistantController) Snapshot() AssistantSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := AssistantSnapshot{State: c.state, Notice: c.notice}
	if c.exchange != nil {
		ex := *c.exchange
		s.Exchange = &ex
	}
	return s
}

// Ask sends prompt with contextBody and starts revealing the reply. It
// returns once the reveal has started; use Wait to block until it ends. A
// superseded Ask returns common.ErrSuperseded.
func (c *AssistantController) Ask(ctx context.Context, prompt, contextBody string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt is empty: %w", common.ErrValidation)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAssistantClosed
	}
	ticket := c.seq.Next()
	prevDone := c.stopRevealLocked()
	c.exchange = &models.AssistantExchange{ID: uuid.New(), Prompt: prompt}
	c.notice = ""
	c.state = models.AssistantRequesting
	c.mu.Unlock()

	if prevDone != nil {
		<-prevDone
	}

	c.record(ctx, prompt)

	reply, err := c.client.Prompt(ctx, prompt, contextBody)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.seq.Current(ticket) {
		return common.ErrSuperseded
	}
	if err != nil {
		c.state = models.AssistantErrored
		c.notice = fetchErrorNotice
		c.log.Warn(ctx, "assistant request failed", "err", err)
		return fmt.Errorf("assistant: %w", err)
	}
	if reply == "" {
		reply = noResponseReply
	}

	c.exchange.RawReply = reply
	c.state = models.AssistantRevealing
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.reveal(ticket, []rune(reply), c.stop, c.done)
	return nil
}

func (c *AssistantController) record(ctx context.Context, prompt string) {
	if c.history == nil {
		return
	}
	if err := c.history.Append(ctx, prompt, time.Now(), c.historyKeep); err != nil {
		c.log.Warn(ctx, "prompt history not saved", "err", err)
	}
}

// stopRevealLocked signals the running reveal to stop and returns its done
// channel so the caller can wait outside the lock.
func (c *AssistantController) stopRevealLocked() chan struct{} {
	if c.stop == nil {
		return nil
	}
	close(c.stop)
	done := c.done
	c.stop = nil
	c.done = nil
	return done
}

func (c *AssistantController) reveal(ticket uint64, reply []rune, stop, done chan struct{}) {
	defer close(done)

	step := 1
	var tick <-chan time.Time
	if c.interval > 0 {
		t := c.newTicker(c.interval)
		defer t.Stop()
		tick = t.Chan()
	} else {
		step = len(reply)
	}

	for {
		if tick != nil {
			select {
			case <-stop:
				return
			case <-tick:
			}
		}

		c.mu.Lock()
		if !c.seq.Current(ticket) {
			c.mu.Unlock()
			return
		}
		from := c.exchange.RevealedPrefixLength
		to := min(from+step, len(reply))
		c.exchange.RevealedPrefixLength = to
		complete := to >= len(reply)
		if complete {
			c.state = models.AssistantIdle
		}
		c.mu.Unlock()

		if c.onReveal != nil && to > from {
			c.onReveal(string(reply[from:to]))
		}
		if complete {
			return
		}
	}
}

// Wait blocks until the current reveal has finished or was stopped.
func (c *AssistantController) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops any reveal and drops the exchange. Later calls to Ask fail.
func (c *AssistantController) Close() {
	c.mu.Lock()
	c.closed = true
	c.seq.Invalidate()
	done := c.stopRevealLocked()
	c.exchange = nil
	c.state = models.AssistantIdle
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}
