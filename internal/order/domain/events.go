package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event names as they appear on the wire.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDelivered     = "order.delivered"
	EventOrderCancelled     = "order.cancelled"
)

// Payload is the variant-specific body of a domain event. The four
// concrete payload types below are the only implementations.
type Payload interface {
	EventName() string
}

type CreatedPayload struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	ItemsCount  int
	TotalAmount decimal.Decimal
}

func (CreatedPayload) EventName() string { return EventOrderCreated }

type StatusChangedPayload struct {
	OrderID        uuid.UUID
	PreviousStatus Status
	NewStatus      Status
	ChangedBy      string
	Reason         string
}

func (StatusChangedPayload) EventName() string { return EventOrderStatusChanged }

type DeliveredPayload struct {
	OrderID         uuid.UUID
	CustomerID      uuid.UUID
	DeliveryAddress string
	DeliveredAt     time.Time
}

func (DeliveredPayload) EventName() string { return EventOrderDelivered }

type CancelledPayload struct {
	OrderID            uuid.UUID
	CustomerID         uuid.UUID
	CancellationReason string
	RefundAmount       decimal.Decimal
}

func (CancelledPayload) EventName() string { return EventOrderCancelled }

// Event is an immutable, timestamped domain fact. Identity and
// timestamp are generated fresh on every construction.
type Event struct {
	ID         uuid.UUID
	OccurredAt time.Time
	Payload    Payload
}

func newEvent(payload Payload) Event {
	return Event{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Name returns the wire name of the event.
func (e Event) Name() string { return e.Payload.EventName() }

// Envelope serializes the event for publication: event_id, event_name,
// occurred_at and the variant payload. Monetary values are emitted as
// decimal strings, never floats.
func (e Event) Envelope() map[string]any {
	var payload map[string]any
	switch p := e.Payload.(type) {
	case CreatedPayload:
		payload = map[string]any{
			"order_id":       p.OrderID.String(),
			"customer_id":    p.CustomerID.String(),
			"items_count":    p.ItemsCount,
			"total_amount":   p.TotalAmount.String(),
			"initial_status": "created",
		}
	case StatusChangedPayload:
		payload = map[string]any{
			"order_id":        p.OrderID.String(),
			"previous_status": p.PreviousStatus.String(),
			"new_status":      p.NewStatus.String(),
			"changed_by":      p.ChangedBy,
			"reason":          p.Reason,
		}
	case DeliveredPayload:
		payload = map[string]any{
			"order_id":         p.OrderID.String(),
			"customer_id":      p.CustomerID.String(),
			"delivery_address": p.DeliveryAddress,
			"delivered_at":     p.DeliveredAt.Format(time.RFC3339Nano),
		}
	case CancelledPayload:
		payload = map[string]any{
			"order_id":            p.OrderID.String(),
			"customer_id":         p.CustomerID.String(),
			"cancellation_reason": p.CancellationReason,
			"refund_amount":       p.RefundAmount.String(),
		}
	}
	return map[string]any{
		"event_id":    e.ID.String(),
		"event_name":  e.Name(),
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
		"payload":     payload,
	}
}
