package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/service"
)

// ErrQueueClosed is returned by Publish after Close.
var ErrQueueClosed = errors.New("event queue closed")

const defaultQueueSize = 64

// Queue is an events.Dispatcher that delivers events to the wrapped dispatcher
// from a single background goroutine, in publish order.
type Queue struct {
	inner  events.Dispatcher
	logger *zap.Logger
	events chan events.Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts the delivery goroutine.
func NewQueue(inner events.Dispatcher, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		inner:  inner,
		logger: logger,
		events: make(chan events.Event, size),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues the event. It blocks while the queue is full until ctx ends.
func (q *Queue) Publish(ctx context.Context, event events.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers the handler on the wrapped dispatcher.
func (q *Queue) Subscribe(eventType events.EventType, handler events.EventHandler) {
	q.inner.Subscribe(eventType, handler)
}

// Close stops accepting events and waits until the backlog is delivered or ctx ends.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for event := range q.events {
		if err := q.inner.Publish(context.Background(), event); err != nil {
			q.logger.Warn("event delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// StartNotificationWorker subscribes the notification handlers behind a queue
// and returns it. Publishers use the queue as their dispatcher; Close drains it.
func StartNotificationWorker(cfg config.NotificationConfig, size int, logger *zap.Logger, sink func(string)) *Queue {
	queue := NewQueue(events.NewInMemoryDispatcher(), size, logger)
	service.NewNotificationService(queue, logger, cfg, sink).RegisterHandlers()
	return queue
}
