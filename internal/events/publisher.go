// Package events publishes plan change notifications to the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/pkg/messagequeue"
)

// QueuePublisher publishes plan events as JSON onto a single queue.
type QueuePublisher struct {
	mq     messagequeue.MessageQueue
	queue  string
	logger *zap.Logger
}

// NewQueuePublisher creates a publisher bound to queue.
func NewQueuePublisher(mq messagequeue.MessageQueue, queue string, logger *zap.Logger) *QueuePublisher {
	return &QueuePublisher{mq: mq, queue: queue, logger: logger}
}

// Publish encodes and sends a plan event.
func (p *QueuePublisher) Publish(ctx context.Context, event models.PlanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	if err := p.mq.Publish(ctx, p.queue, body); err != nil {
		return fmt.Errorf("events: publish %s for plan %s: %w", event.Type, event.PlanID, err)
	}
	p.logger.Debug("Plan event published", zap.String("type", event.Type), zap.String("planId", event.PlanID))
	return nil
}

// Tail consumes plan events from the queue until ctx is cancelled.
// Messages that are not valid plan events are logged and skipped.
func (p *QueuePublisher) Tail(ctx context.Context, handle func(models.PlanEvent)) error {
	return p.mq.Consume(ctx, p.queue, func(body []byte) {
		var event models.PlanEvent
		if err := json.Unmarshal(body, &event); err != nil {
			p.logger.Warn("Skipping malformed plan event", zap.Error(err))
			return
		}
		handle(event)
	})
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.PlanEvent) error { return nil }
