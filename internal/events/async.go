package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrQueueFull       = errors.New("event queue is full")
)

// AsyncPublisher queues events for a background goroutine, so Publish
// returns without waiting on the underlying transport.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewAsyncPublisher starts the delivery goroutine. Each delivery gets its own
// timeout; Close drains what is queued and then closes next.
func NewAsyncPublisher(next Publisher, buffer int, timeout time.Duration) *AsyncPublisher {
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) Publish(_ context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- event:
		return nil
	default:
		log.Warn().Str("type", event.Type).Str("key", event.Key).Msg("events: queue full, dropping event")
		return ErrQueueFull
	}
}

func (p *AsyncPublisher) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	<-p.done
	return p.next.Close()
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.next.Publish(ctx, event); err != nil {
			log.Error().Err(err).Str("type", event.Type).Str("key", event.Key).Msg("events: failed to deliver event")
		}
		cancel()
	}
}
