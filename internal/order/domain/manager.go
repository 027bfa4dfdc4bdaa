package domain

import "time"

// EventManager is a standalone transition validator and event factory
// for callers that keep event emission outside the aggregate. It
// validates against the same transition table as Order and produces the
// same event sets; the aggregate-owned variant remains the primary
// path.
type EventManager struct {
	pending []Event
}

// NewEventManager returns a manager with an empty buffer.
func NewEventManager() *EventManager {
	return &EventManager{}
}

// OrderCreated enqueues an order.created event for o.
func (m *EventManager) OrderCreated(o *Order) *EventManager {
	m.pending = append(m.pending, newEvent(CreatedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		ItemsCount:  len(o.Items),
		TotalAmount: o.TotalAmount(),
	}))
	return m
}

// OrderStatusChanged validates the transition on o and enqueues the
// status-changed event, plus the delivered or cancelled event when the
// target is terminal. It does not mutate the order.
func (m *EventManager) OrderStatusChanged(o *Order, next Status, opts ...StatusChangeOption) error {
	if err := o.ValidateTransitionTo(next); err != nil {
		return err
	}

	var change statusChange
	for _, opt := range opts {
		opt(&change)
	}

	m.pending = append(m.pending, newEvent(StatusChangedPayload{
		OrderID:        o.ID,
		PreviousStatus: o.Status,
		NewStatus:      next,
		ChangedBy:      change.changedBy,
		Reason:         change.reason,
	}))

	switch next {
	case StatusDelivered:
		m.pending = append(m.pending, newEvent(DeliveredPayload{
			OrderID:         o.ID,
			CustomerID:      o.CustomerID,
			DeliveryAddress: o.ShippingAddress,
			DeliveredAt:     time.Now().UTC(),
		}))
	case StatusCancelled:
		m.pending = append(m.pending, newEvent(CancelledPayload{
			OrderID:            o.ID,
			CustomerID:         o.CustomerID,
			CancellationReason: change.reason,
			RefundAmount:       o.TotalAmount(),
		}))
	}
	return nil
}

// PendingEvents returns a snapshot of the buffer in insertion order.
func (m *EventManager) PendingEvents() []Event {
	out := make([]Event, len(m.pending))
	copy(out, m.pending)
	return out
}

// ClearEvents empties the buffer. Idempotent.
func (m *EventManager) ClearEvents() {
	m.pending = nil
}
