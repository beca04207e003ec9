package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	userID := uuid.New()

	first := NewEventMetadata(userID)
	second := NewEventMetadata(userID)

	assert.Equal(t, userID, first.UserID)
	assert.NotEqual(t, uuid.Nil, first.CorrelationID)
	assert.NotEqual(t, uuid.Nil, first.CausationID)
	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
}

func TestEventMetadataFromContext(t *testing.T) {
	userID := uuid.New()

	t.Run("reuses request correlation id", func(t *testing.T) {
		ctx := observability.NewRequestContext(context.Background(), userID)

		metadata := EventMetadataFromContext(ctx, userID)

		assert.Equal(t, observability.CorrelationIDFromContext(ctx), metadata.CorrelationID.String())
		assert.Equal(t, userID, metadata.UserID)
	})

	t.Run("generates one when the context id is not a uuid", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "cli-run")

		metadata := EventMetadataFromContext(ctx, userID)

		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	t.Run("applies metadata to every event", func(t *testing.T) {
		event1 := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Training", "training.one")}
		event2 := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Training", "training.two")}
		metadata := NewEventMetadata(uuid.New())

		ApplyEventMetadata([]domain.DomainEvent{event1, event2}, metadata)

		assert.Equal(t, metadata, event1.Metadata())
		assert.Equal(t, metadata, event2.Metadata())
	})

	t.Run("handles nil event list", func(t *testing.T) {
		require.NotPanics(t, func() {
			ApplyEventMetadata(nil, NewEventMetadata(uuid.New()))
		})
	})
}
