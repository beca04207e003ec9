package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/google/uuid"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// NewEnvelope wraps a domain event in the wire envelope shared by all publishers.
// The event itself becomes the payload.
func NewEnvelope(event domain.DomainEvent) (*ConsumedEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.RoutingKey(), err)
	}

	meta := event.Metadata()
	envelope := &ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata: EventMetadata{
			UserID: meta.UserID,
		},
	}
	if meta.CorrelationID != uuid.Nil {
		envelope.Metadata.CorrelationID = meta.CorrelationID.String()
	}
	if meta.CausationID != uuid.Nil {
		envelope.Metadata.CausationID = meta.CausationID.String()
	}
	return envelope, nil
}

// DomainEventPublisher encodes domain events and fans them out to every
// configured Publisher.
type DomainEventPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewDomainEventPublisher creates a publisher over the given transports.
func NewDomainEventPublisher(logger *slog.Logger, publishers ...Publisher) *DomainEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DomainEventPublisher{
		publishers: publishers,
		logger:     logger,
	}
}

// PublishEvent sends the event to all transports. Every transport is tried;
// the returned error joins the individual failures.
func (p *DomainEventPublisher) PublishEvent(ctx context.Context, event domain.DomainEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	var errs []error
	for _, publisher := range p.publishers {
		if err := publisher.Publish(ctx, envelope.RoutingKey, body); err != nil {
			errs = append(errs, err)
		}
	}

	p.logger.Debug("domain event published",
		"routing_key", envelope.RoutingKey,
		"event_id", envelope.EventID,
		"transports", len(p.publishers),
		"failures", len(errs),
	)
	return errors.Join(errs...)
}

// Close closes every transport.
func (p *DomainEventPublisher) Close() error {
	var errs []error
	for _, publisher := range p.publishers {
		if err := publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
