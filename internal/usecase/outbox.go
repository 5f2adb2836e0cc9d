package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

// OutboxEvent — событие, ожидающее публикации в брокер.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderEventPayload — тело события заказа в брокере.
type OrderEventPayload struct {
	EventID    string             `json:"event_id"`
	EventType  string             `json:"event_type"`
	OrderID    string             `json:"order_id"`
	Status     domain.OrderStatus `json:"status"`
	Total      string             `json:"total"`
	Customer   OrderEventCustomer `json:"customer"`
	Items      []domain.OrderItem `json:"items"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type OrderEventCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// NewOrderEvent собирает событие outbox для заказа.
func NewOrderEvent(eventType string, order *domain.Order, now time.Time) (*OutboxEvent, error) {
	const op = "usecase.NewOrderEvent"

	eventID := uuid.NewString()
	payload, err := json.Marshal(OrderEventPayload{
		EventID:   eventID,
		EventType: eventType,
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.Total.StringFixed(2),
		Customer: OrderEventCustomer{
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		Items:      order.Items,
		OccurredAt: now,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}

// OrderNotifier кладёт события заказов в outbox. Ошибки только логируются:
// заказ остаётся в силе, даже если уведомление не ушло.
type OrderNotifier struct {
	outboxRepo OutboxRepository
	logger     logger.Logger
	now        clock
}

func NewOrderNotifier(outboxRepo OutboxRepository, logger logger.Logger) *OrderNotifier {
	return &OrderNotifier{
		outboxRepo: outboxRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Notify возвращает true, если событие сохранено.
func (n *OrderNotifier) Notify(ctx context.Context, eventType string, order *domain.Order) bool {
	event, err := NewOrderEvent(eventType, order, n.now().UTC())
	if err != nil {
		n.logger.Errorf(err, "build %s event for order %s", eventType, order.ID)
		return false
	}

	if _, err := n.outboxRepo.Create(ctx, event); err != nil {
		n.logger.Errorf(err, "notification %s for order %s failed, order stands", eventType, order.ID)
		return false
	}

	return true
}
