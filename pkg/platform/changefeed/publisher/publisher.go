// Package publisher fans domain events into the changefeed store, optionally
// decoupling emitters from storage latency with a bounded async buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	"rollbook/pkg/platform/changefeed"
)

// Publisher forwards events to a changefeed store. In sync mode Emit writes
// through; in async mode Emit enqueues and a background goroutine drains.
//
// Emitting inside a database transaction requires sync mode: the async path
// appends outside the caller's transaction and loses atomicity with it.
type Publisher struct {
	store  changefeed.Store
	logger *slog.Logger

	inbox  chan changefeed.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with the given buffer capacity.
// When the buffer is full, events are dropped with a warning rather than
// blocking the emitter.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan changefeed.Event, size)
	}
}

// WithLogger sets the logger used for drop and store-failure warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a Publisher over the given store.
func NewPublisher(store changefeed.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default(), done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records one event. Errors are returned in sync mode only.
func (p *Publisher) Emit(ctx context.Context, event changefeed.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("changefeed buffer full, dropping event",
			"type", event.Type, "event_id", event.ID)
		return nil
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Warn("changefeed append failed",
				"type", event.Type, "event_id", event.ID, "error", err)
		}
	}
}

// Close drains any buffered events and stops the background goroutine.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}
