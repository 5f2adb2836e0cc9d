package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *domain.Order {
	return domain.NewOrder("7f1c0d3e-5b5b-4d8e-9f0c-2a6b1c7d8e9f", validCustomer, []domain.OrderItem{
		{ProductID: "P1", Quantity: 3, Price: decimal.RequireFromString("9.99"), MappingID: "M1",
			Variant: &domain.VariantSnapshot{ID: "V1", Name: "Small"}},
	}, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewOrderEvent(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	order := sampleOrder()

	event, err := NewOrderEvent(EventOrderPlaced, order, now)
	require.NoError(t, err)

	assert.Equal(t, order.ID, event.AggregateID)
	assert.Equal(t, Pending, event.Status)
	assert.NotEmpty(t, event.EventID)

	var payload OrderEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, event.EventID, payload.EventID)
	assert.Equal(t, "29.97", payload.Total)
	assert.Equal(t, validCustomer.Email, payload.Customer.Email)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "M1", payload.Items[0].MappingID)
	assert.True(t, payload.OccurredAt.Equal(now))
}

func TestOrderNotifier_Notify(t *testing.T) {
	outbox := &fakeOutboxRepo{}
	notifier := NewOrderNotifier(outbox, logger.NewNopLogger())

	assert.True(t, notifier.Notify(context.Background(), EventOrderCancelled, sampleOrder()))
	require.Len(t, outbox.events, 1)
	assert.Equal(t, EventOrderCancelled, outbox.events[0].EventType)

	outbox.createErr = errors.New("db down")
	assert.False(t, notifier.Notify(context.Background(), EventOrderPlaced, sampleOrder()))
	assert.Len(t, outbox.events, 1)
}
