package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())
	consumer := &mockConsumer{eventTypes: []string{"training.checkin.logged"}}
	bus.RegisterConsumer(consumer)

	event := &eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   uuid.New(),
		AggregateType: "Training",
		RoutingKey:    "training.checkin.logged",
		OccurredAt:    time.Now(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "training.checkin.logged", payload)

	require.NoError(t, err)
	require.Len(t, consumer.events, 1)
	assert.Equal(t, event.EventID, consumer.events[0].EventID)
}

func TestInProcessEventBus_FillsMissingRoutingKey(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())
	consumer := &mockConsumer{eventTypes: []string{"training.state.reset"}}
	bus.RegisterConsumer(consumer)

	err := bus.Publish(context.Background(), "training.state.reset", []byte(`{"event_id":"`+uuid.NewString()+`"}`))

	require.NoError(t, err)
	require.Len(t, consumer.events, 1)
	assert.Equal(t, "training.state.reset", consumer.events[0].RoutingKey)
}

func TestInProcessEventBus_ConsumerErrorIsSwallowed(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())
	consumer := &mockConsumer{
		eventTypes: []string{"training.checkin.logged"},
		err:        errors.New("consumer error"),
	}
	bus.RegisterConsumer(consumer)

	payload, err := json.Marshal(&eventbus.ConsumedEvent{RoutingKey: "training.checkin.logged"})
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "training.checkin.logged", payload)

	require.NoError(t, err)
	assert.Len(t, consumer.events, 1)
}

func TestInProcessEventBus_InvalidPayload(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(testLogger())
	consumer := &mockConsumer{eventTypes: []string{"training.checkin.logged"}}
	bus.RegisterConsumer(consumer)

	err := bus.Publish(context.Background(), "training.checkin.logged", []byte("invalid json"))

	require.NoError(t, err)
	assert.Empty(t, consumer.events)
	assert.NotNil(t, bus.Registry())
	assert.NoError(t, bus.Close())
}
