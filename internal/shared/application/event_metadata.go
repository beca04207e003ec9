// Package application holds helpers shared by the application layers.
package application

import (
	"context"

	"github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata starts a new causal chain for userID.
func NewEventMetadata(userID uuid.UUID) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// EventMetadataFromContext keeps the correlation ID the host put on ctx when
// it parses as a UUID. Non-UUID IDs (plain CLI runs) get a fresh one.
func EventMetadataFromContext(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	metadata := NewEventMetadata(userID)
	if id, err := uuid.Parse(observability.CorrelationIDFromContext(ctx)); err == nil {
		metadata.CorrelationID = id
	}
	return metadata
}

// ApplyEventMetadata stamps metadata onto each event that embeds BaseEvent.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
