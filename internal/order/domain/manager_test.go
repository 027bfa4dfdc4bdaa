package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerOrderCreated(t *testing.T) {
	order := Create(uuid.New(), "Test Address", []Item{sampleItem(2, "100.50")})
	manager := NewEventManager()

	manager.OrderCreated(order)

	events := manager.PendingEvents()
	require.Len(t, events, 1)
	payload := events[0].Payload.(CreatedPayload)
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, 1, payload.ItemsCount)
	assert.True(t, payload.TotalAmount.Equal(decimal.RequireFromString("201.00")))
}

func TestManagerMatchesAggregateEventSets(t *testing.T) {
	tests := []struct {
		from  Status
		to    Status
		count int
	}{
		{StatusCreated, StatusProcessing, 1},
		{StatusProcessing, StatusShipped, 1},
		{StatusShipped, StatusDelivered, 2},
		{StatusProcessing, StatusCancelled, 2},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			order := Create(uuid.New(), "Test Address", []Item{sampleItem(1, "10.00")})
			order.Status = tc.from
			order.ClearEvents()

			manager := NewEventManager()
			require.NoError(t, manager.OrderStatusChanged(order, tc.to))

			managed := manager.PendingEvents()
			require.Len(t, managed, tc.count)

			require.NoError(t, order.ChangeStatus(tc.to))
			owned := order.PendingEvents()
			require.Len(t, owned, tc.count)
			for i := range owned {
				assert.Equal(t, owned[i].Name(), managed[i].Name())
			}
		})
	}
}

func TestManagerDoesNotMutateOrder(t *testing.T) {
	order := Create(uuid.New(), "Test Address", nil)
	order.ClearEvents()
	manager := NewEventManager()

	require.NoError(t, manager.OrderStatusChanged(order, StatusProcessing))

	assert.Equal(t, StatusCreated, order.Status)
	assert.Empty(t, order.PendingEvents())
}

func TestManagerRejectsTerminalStates(t *testing.T) {
	order := Create(uuid.New(), "Test Address", nil)
	order.Status = StatusCancelled
	manager := NewEventManager()

	err := manager.OrderStatusChanged(order, StatusProcessing)

	var cancelled *AlreadyCancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Empty(t, manager.PendingEvents())
}

func TestManagerClearEvents(t *testing.T) {
	order := Create(uuid.New(), "Test Address", nil)
	manager := NewEventManager().OrderCreated(order)
	require.NotEmpty(t, manager.PendingEvents())

	manager.ClearEvents()
	assert.Empty(t, manager.PendingEvents())

	manager.ClearEvents()
	assert.Empty(t, manager.PendingEvents())
}
