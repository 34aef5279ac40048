package events

import (
	"context"
	"time"

	"stok/internal/model"

	"github.com/shopspring/decimal"
)

// Order lifecycle actions. The routing key of an event is "order.<action>".
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// OrderEvent is published after an order mutation has been committed.
type OrderEvent struct {
	Action        string          `json:"action"`
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	Status        string          `json:"status"`
	DealerCode    string          `json:"dealerCode,omitempty"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// NewOrderEvent snapshots the fields of o relevant to subscribers.
func NewOrderEvent(action string, o *model.Order) OrderEvent {
	return OrderEvent{
		Action:        action,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		DealerCode:    o.DealerCode,
		TotalQuantity: o.TotalQuantity,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		OccurredAt:    time.Now().UTC(),
	}
}

// RoutingKey returns the topic routing key of the event.
func (e OrderEvent) RoutingKey() string {
	return "order." + e.Action
}

// Publisher delivers order events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (nopPublisher) Close() error { return nil }
