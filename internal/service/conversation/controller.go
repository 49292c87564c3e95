// Package conversation owns the state of one chat session: it seeds the log
// with the persona's greeting, runs turn exchanges against the remote endpoint
// and publishes every state transition to subscribers.
package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
)

var (
	// ErrEmptyInput is returned when the submitted text is blank. It is a
	// silent no-op for the user.
	ErrEmptyInput = errors.New("input is empty")
	// ErrRequestInFlight is returned while a previous exchange is outstanding.
	ErrRequestInFlight = errors.New("a request is already in flight")
	// ErrGreetingPending is returned while the greeting call is outstanding.
	ErrGreetingPending = errors.New("greeting has not settled yet")
)

// Endpoint is the remote chat service the controller talks to.
type Endpoint interface {
	Greet(ctx context.Context, req chat.GreetRequest) (string, error)
	Exchange(ctx context.Context, req chat.ExchangeRequest) (string, error)
}

// State is a snapshot of the session as seen by the UI.
type State struct {
	Turns       []chat.Turn `json:"turns"`
	InFlight    bool        `json:"inFlight"`
	Input       string      `json:"input"`
	Initialized bool        `json:"initialized"`
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger routes controller logs to logger instead of the standard logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFailureMarking makes a failed exchange mark its placeholder as failed
// instead of leaving it pending forever.
func WithFailureMarking() Option {
	return func(c *Controller) {
		c.markFailed = true
	}
}

// Controller sequences the greeting and message exchange protocol.
//
// The mutex guards state only; it is never held across endpoint calls.
// Submissions are serialized by rejecting any call made while an exchange
// is outstanding.
type Controller struct {
	params     persona.Params
	endpoint   Endpoint
	logger     *log.Logger
	markFailed bool

	mu          sync.Mutex
	log         *chat.Log
	input       string
	inFlight    bool
	submitting  bool // reserved from step 2 until the exchange settles
	greeting    bool
	initialized bool
	subscribers map[int]func(State)
	nextSubID   int
}

// NewController creates a controller with an empty log.
func NewController(params persona.Params, endpoint Endpoint, opts ...Option) *Controller {
	c := &Controller{
		params:      params,
		endpoint:    endpoint,
		logger:      log.Default(),
		log:         chat.NewLog(),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params returns the session parameters the controller was built with.
func (c *Controller) Params() persona.Params {
	return c.params
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive every state transition. fn runs on the
// goroutine that caused the transition and must not block for long.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// SetInput updates the input buffer. Input is disabled while a request is in
// flight, in which case the call is ignored and false is returned.
func (c *Controller) SetInput(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return false
	}
	c.input = text
	return true
}

// Initialize fetches the greeting and seeds the log with it. It runs at most
// once successfully; a failed greeting is logged and leaves the log empty.
// Once the conversation has started without a greeting it is a no-op.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.initialized || c.greeting || c.submitting || c.log.Len() > 0 {
		c.mu.Unlock()
		return
	}
	c.greeting = true
	c.mu.Unlock()

	reply, err := c.endpoint.Greet(ctx, chat.GreetRequest{
		UserName:  c.params.UserName(),
		ModelName: c.params.PersonaName(),
	})

	c.mu.Lock()
	c.greeting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Printf("[conversation] greeting failed for user=%s persona=%s: %v", c.params.UserName(), c.params.PersonaName(), err)
		return
	}
	c.log.Reset(chat.NewModelTurn(reply))
	c.initialized = true
	c.publishLocked()
}

// Submit sends raw as the next user message. Blank input, an outstanding
// exchange or an outstanding greeting reject the call without touching state.
// Endpoint failures are logged and never returned. Once the user turn is
// recorded, the in-flight state is cleared on every exit path.
func (c *Controller) Submit(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	if c.greeting {
		c.mu.Unlock()
		return ErrGreetingPending
	}
	c.submitting = true

	if c.log.HasPending() {
		// left behind by an earlier failed exchange; nothing will resolve it now
		if err := c.log.FailPending(); err != nil {
			c.logger.Printf("[conversation] failed to retire stale placeholder: %v", err)
		}
	}
	if err := c.log.Append(chat.NewUserTurn(raw)); err != nil {
		c.logger.Printf("[conversation] failed to append user turn: %v", err)
	}
	history := chat.SelectContext(c.log.Turns())
	c.publishLocked()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.submitting = false
		c.input = ""
		c.publishLocked()
	}()

	c.mu.Lock()
	c.inFlight = true
	c.publishLocked()

	c.mu.Lock()
	if err := c.log.Append(chat.NewPendingTurn()); err != nil {
		c.logger.Printf("[conversation] failed to append placeholder: %v", err)
	}
	c.publishLocked()

	reply, err := c.endpoint.Exchange(ctx, chat.ExchangeRequest{
		UserName:   c.params.UserName(),
		ModelName:  c.params.PersonaName(),
		Characters: c.params.JoinedTraits(),
		Message:    raw,
		History:    history,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Printf("[conversation] exchange failed for user=%s persona=%s: %v", c.params.UserName(), c.params.PersonaName(), err)
		if c.markFailed {
			if failErr := c.log.FailPending(); failErr != nil {
				c.logger.Printf("[conversation] failed to mark placeholder: %v", failErr)
			}
		}
	} else if resolveErr := c.log.ResolvePending(reply); resolveErr != nil {
		c.logger.Printf("[conversation] failed to resolve placeholder: %v", resolveErr)
	}
	return nil
}

// SubmitInput submits the current input buffer.
func (c *Controller) SubmitInput(ctx context.Context) error {
	c.mu.Lock()
	raw := c.input
	c.mu.Unlock()
	return c.Submit(ctx, raw)
}

func (c *Controller) snapshotLocked() State {
	return State{
		Turns:       c.log.Turns(),
		InFlight:    c.inFlight,
		Input:       c.input,
		Initialized: c.initialized,
	}
}

// publishLocked snapshots the state, releases the lock and notifies
// subscribers. Callers must hold c.mu.
func (c *Controller) publishLocked() {
	snapshot := c.snapshotLocked()
	subscribers := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}
