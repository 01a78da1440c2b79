package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing catalog events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishRefreshRequested publishes a CatalogRefreshRequested event
func (ep *EventPublisher) PublishRefreshRequested(ctx context.Context, event *models.RefreshRequestedEvent) error {
	return ep.producer.PublishEvent(ctx, "catalog-refresh", event)
}

// PublishCatalogRefreshed publishes a CatalogRefreshed event
func (ep *EventPublisher) PublishCatalogRefreshed(ctx context.Context, event *models.CatalogRefreshedEvent) error {
	key := fmt.Sprintf("snapshot-%s", event.SnapshotVersion)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming catalog events
type EventHandler struct {
	onRefreshRequested func(context.Context, *models.RefreshRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnRefreshRequested registers a handler for RefreshRequested events
func (eh *EventHandler) OnRefreshRequested(handler func(context.Context, *models.RefreshRequestedEvent) error) {
	eh.onRefreshRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeRefreshRequested:
		if eh.onRefreshRequested != nil {
			var event models.RefreshRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal RefreshRequested event: %w", err)
			}
			return eh.onRefreshRequested(ctx, &event)
		}

	case models.EventTypeCatalogRefreshed:
		// Published by this service; other instances subscribe, we don't.

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
