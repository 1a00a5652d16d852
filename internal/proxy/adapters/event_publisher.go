package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/events"
	"github.com/JulianoL13/proxy-list-refresher/internal/common/queue"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

// EventPublisher announces every working proxy of a refresh on a topic.
type EventPublisher struct {
	publisher queue.Publisher
	topic     string
}

func NewEventPublisher(p queue.Publisher, topic string) *EventPublisher {
	return &EventPublisher{publisher: p, topic: topic}
}

func (e *EventPublisher) Write(ctx context.Context, rs proxy.ResultSet) error {
	for _, entry := range rs.All {
		payload, err := json.Marshal(events.ProxyValidatedEvent{
			Address:     entry.Address(),
			Host:        entry.Candidate.Host,
			Port:        entry.Candidate.Port,
			Protocols:   entry.Protocols.Strings(),
			LatencyMS:   entry.Latency.Milliseconds(),
			ValidatedAt: rs.GeneratedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := e.publisher.Publish(ctx, e.topic, payload); err != nil {
			return fmt.Errorf("publish %s: %w", entry.Address(), err)
		}
	}
	return nil
}
