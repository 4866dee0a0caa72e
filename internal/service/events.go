package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// EventOrderCreated is emitted through the outbox once per settled order.
const EventOrderCreated = "order.created"

// OrderCreatedEvent is the payload of EventOrderCreated.
type OrderCreatedEvent struct {
	EventID        string             `json:"event_id"`
	OrderID        string             `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	CompanyID      string             `json:"company_id"`
	OrderRequestID *string            `json:"order_request_id,omitempty"`
	Subtotal       int64              `json:"subtotal"`
	ShippingFee    int64              `json:"shipping_fee"`
	TotalAmount    int64              `json:"total_amount"`
	ShippingMethod string             `json:"shipping_method"`
	CreatedBy      string             `json:"created_by"`
	RequestedBy    string             `json:"requested_by"`
	Items          []OrderCreatedItem `json:"items"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

type OrderCreatedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

func newOrderCreatedEvent(order *repository.Order, at time.Time) (*repository.OutboxEvent, error) {
	payload := OrderCreatedEvent{
		EventID:        uuid.NewString(),
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CompanyID:      order.CompanyID,
		OrderRequestID: order.OrderRequestID,
		Subtotal:       order.Subtotal,
		ShippingFee:    order.ShippingFee,
		TotalAmount:    order.TotalAmount,
		ShippingMethod: order.ShippingMethod,
		CreatedBy:      order.CreatedByID,
		RequestedBy:    order.RequestedByID,
		Items:          make([]OrderCreatedItem, 0, len(order.Items)),
		OccurredAt:     at.UTC(),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderCreatedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode order event")
	}
	return &repository.OutboxEvent{
		EventID:   payload.EventID,
		EventType: EventOrderCreated,
		Key:       order.ID,
		Payload:   data,
	}, nil
}

// insertEvent must run inside the transaction that produced the event.
func insertEvent(ctx context.Context, outbox OutboxRepository, event *repository.OutboxEvent) error {
	if err := outbox.Insert(ctx, event); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to record "+event.EventType+" event")
	}
	return nil
}
