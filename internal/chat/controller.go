// Package chat holds the conversation controller behind the portfolio chat widget.
//
// A Controller accepts one user message at a time, streams the reply from a
// remote endpoint into a growing assistant turn, and substitutes a local FAQ
// answer whenever the endpoint fails.
package chat

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/faq"
)

// Transport opens a reply stream for a single user message.
type Transport interface {
	Open(ctx context.Context, message string) (Stream, error)
}

// Stream is a finite, non-restartable sequence of text chunks.
type Stream interface {
	Chunks() iter.Seq2[string, error]
	Close() error
}

// Observer is called after every change to the conversation.
type Observer func(Snapshot)

// ErrEmptyReply is reported when the endpoint answers 2xx but sends no text.
var ErrEmptyReply = errors.New("empty reply")

type Controller struct {
	transport Transport
	fallback  func(string) string
	timeout   time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	turns   []Turn
	pending bool
	phase   Phase

	notifyMu  sync.Mutex
	observers []Observer
}

type Option func(*Controller)

// WithFallback replaces the FAQ matcher used on failure.
func WithFallback(fn func(string) string) Option {
	return func(c *Controller) { c.fallback = fn }
}

// WithTimeout bounds a whole exchange, streaming included. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers an observer before the controller is used.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithGreeting overrides the seeded assistant turn. An empty greeting seeds nothing.
func WithGreeting(greeting string) Option {
	return func(c *Controller) {
		c.turns = nil
		if greeting != "" {
			c.turns = []Turn{{Role: RoleAssistant, Content: greeting}}
		}
	}
}

func New(transport Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		fallback:  faq.Match,
		logger:    log.Logger,
		turns:     []Turn{{Role: RoleAssistant, Content: Greeting}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe registers an observer. Observers are called in registration order.
func (c *Controller) Observe(o Observer) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.observers = append(c.observers, o)
}

// Snapshot returns a copy of the current conversation.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Submit runs one exchange to completion. It returns OutcomeRejected without
// touching the conversation when text is blank or a request is already in flight.
func (c *Controller) Submit(ctx context.Context, text string) Outcome {
	if !c.begin(text) {
		return OutcomeRejected
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res := c.exchange(ctx, text)
	if res.err != nil {
		c.logger.Debug().Err(res.err).Msg("backend not available, using FAQ fallback")
		c.finishWithFallback(text)
		return OutcomeFallback
	}

	c.logger.Debug().Int("chars", len(res.text)).Msg("chat reply complete")
	c.update(func() {
		c.pending = false
		c.phase = PhaseIdle
	})
	return OutcomeComplete
}

// result is either Ok(text) or Err(err).
type result struct {
	text string
	err  error
}

func (c *Controller) begin(text string) bool {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" || c.pending {
		c.mu.Unlock()
		return false
	}
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: text})
	c.pending = true
	c.phase = PhaseSending
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

func (c *Controller) exchange(ctx context.Context, text string) result {
	stream, err := c.transport.Open(ctx, text)
	if err != nil {
		return result{err: err}
	}
	defer stream.Close()

	var idx int
	c.update(func() {
		c.turns = append(c.turns, Turn{Role: RoleAssistant})
		idx = len(c.turns) - 1
		c.phase = PhaseStreaming
	})

	var acc strings.Builder
	for chunk, err := range stream.Chunks() {
		if err != nil {
			return result{text: acc.String(), err: err}
		}
		if chunk == "" {
			continue
		}
		acc.WriteString(chunk)
		content := acc.String()
		c.update(func() { c.turns[idx].Content = content })
	}

	if acc.Len() == 0 {
		return result{err: ErrEmptyReply}
	}
	return result{text: acc.String()}
}

func (c *Controller) finishWithFallback(text string) {
	answer := c.fallback(text)
	c.update(func() {
		c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: answer})
		c.pending = false
		c.phase = PhaseIdle
	})
}

// update applies fn under the state lock and then notifies observers.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) notify(snap Snapshot) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, o := range c.observers {
		o(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return Snapshot{Turns: turns, Pending: c.pending, Phase: c.phase}
}
