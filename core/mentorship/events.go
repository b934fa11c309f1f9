package mentorship

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CovEducation/Website-sub000/core"
)

type EventType string

// Events are published once the transition they describe is persisted.
const (
	EventRequested    EventType = "mentorship.requested"
	EventAccepted     EventType = "mentorship.accepted"
	EventRejected     EventType = "mentorship.rejected"
	EventArchived     EventType = "mentorship.archived"
	EventSessionAdded EventType = "mentorship.session_added"
)

type Event struct {
	Type       EventType
	Mentorship Mentorship
	OccurredAt time.Time
}

// EventHandler reacts to a committed transition. Its error is logged, never returned to the caller.
type EventHandler func(ctx context.Context, e Event) error

type eventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
	logger   core.Logger
}

func newEventBus(logger core.Logger) *eventBus {
	return &eventBus{
		handlers: make(map[EventType][]EventHandler),
		logger:   logger,
	}
}

func (b *eventBus) subscribe(t EventType, h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// publish runs the handlers in subscription order on the caller's goroutine.
func (b *eventBus) publish(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers[e.Type]))
	copy(handlers, b.handlers[e.Type])
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.run(ctx, h, e); err != nil {
			b.logger.Error(fmt.Sprintf("handling %s for mentorship %s: %v", e.Type, e.Mentorship.ID, err), err)
		}
	}
}

func (b *eventBus) run(ctx context.Context, h EventHandler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, e)
}
