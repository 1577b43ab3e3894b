// Package publisher fans audit events out to a store and any number of
// sinks, synchronously or through a bounded buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// Publisher is append-only. With an async buffer, Emit enqueues and a single
// goroutine persists in order; Close drains what is queued.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Sink
	logger *slog.Logger

	buffer chan audit.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with room for size events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithSinks(sinks ...audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sinks...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit fills in id, timestamp and category when unset, then records the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		return p.record(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, actor domain.AccountID) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actor)
}

func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.buffer {
		if err := p.record(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	}
}

// record stores the event, then hands it to every sink. Sink errors are
// logged, not returned.
func (p *Publisher) record(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	}
	return nil
}
