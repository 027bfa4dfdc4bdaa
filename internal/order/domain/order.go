package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate root. State changes go through ChangeStatus
// only; every successful change appends its domain events to the
// pending buffer before returning, and a failed change leaves both the
// state and the buffer untouched.
type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	ShippingAddress string
	Items           []Item
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time

	pending []Event
}

// Create builds a new order in StatusCreated with a fresh identity and
// current timestamps, and enqueues the order.created event.
func Create(customerID uuid.UUID, shippingAddress string, items []Item) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		ShippingAddress: shippingAddress,
		Items:           items,
		Status:          StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.pending = append(o.pending, newEvent(CreatedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		ItemsCount:  len(o.Items),
		TotalAmount: o.TotalAmount(),
	}))
	return o
}

// TotalAmount is the exact decimal sum of the item subtotals,
// recomputed on every call.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ValidateTransitionTo checks whether the order may move to next.
// Terminal-state checks come before the table lookup so callers get
// the more specific error.
func (o *Order) ValidateTransitionTo(next Status) error {
	if o.Status == StatusCancelled {
		return &AlreadyCancelledError{OrderID: o.ID}
	}
	if o.Status == StatusDelivered {
		return &AlreadyDeliveredError{OrderID: o.ID}
	}
	if !CanTransition(o.Status, next) {
		return &InvalidTransitionError{OrderID: o.ID, Current: o.Status, Attempted: next}
	}
	return nil
}

// StatusChangeOption carries optional metadata for a status change.
type StatusChangeOption func(*statusChange)

type statusChange struct {
	changedBy string
	reason    string
}

// WithChangedBy records who requested the change.
func WithChangedBy(who string) StatusChangeOption {
	return func(c *statusChange) { c.changedBy = who }
}

// WithReason records why the change was requested. For cancellations
// it also becomes the cancellation reason on the emitted event.
func WithReason(reason string) StatusChangeOption {
	return func(c *statusChange) { c.reason = reason }
}

// ChangeStatus validates and commits a transition. On success it
// appends the status-changed event first, then the delivered or
// cancelled event when the target is terminal, then updates Status and
// UpdatedAt. On failure nothing is mutated and no event is appended.
func (o *Order) ChangeStatus(next Status, opts ...StatusChangeOption) error {
	if err := o.ValidateTransitionTo(next); err != nil {
		return err
	}

	var change statusChange
	for _, opt := range opts {
		opt(&change)
	}

	o.pending = append(o.pending, newEvent(StatusChangedPayload{
		OrderID:        o.ID,
		PreviousStatus: o.Status,
		NewStatus:      next,
		ChangedBy:      change.changedBy,
		Reason:         change.reason,
	}))

	switch next {
	case StatusDelivered:
		o.pending = append(o.pending, newEvent(DeliveredPayload{
			OrderID:         o.ID,
			CustomerID:      o.CustomerID,
			DeliveryAddress: o.ShippingAddress,
			DeliveredAt:     time.Now().UTC(),
		}))
	case StatusCancelled:
		o.pending = append(o.pending, newEvent(CancelledPayload{
			OrderID:            o.ID,
			CustomerID:         o.CustomerID,
			CancellationReason: change.reason,
			RefundAmount:       o.TotalAmount(),
		}))
	}

	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// PendingEvents returns a snapshot of the buffer in insertion order.
func (o *Order) PendingEvents() []Event {
	out := make([]Event, len(o.pending))
	copy(out, o.pending)
	return out
}

// ClearEvents empties the pending buffer. Idempotent.
func (o *Order) ClearEvents() {
	o.pending = nil
}

// Doc is the order projection for transport and storage. Field names
// are part of the wire contract.
type Doc struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	ShippingAddress string    `json:"shippingAddress"`
	Status          string    `json:"status"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
	Items           []ItemDoc `json:"items"`
}

// Doc builds the projection with ISO-8601 timestamps and decimal
// string amounts.
func (o *Order) Doc() Doc {
	items := make([]ItemDoc, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, item.Doc())
	}
	return Doc{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status.String(),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339Nano),
		Items:           items,
	}
}

// OrderFromDoc rehydrates an order from its projection. No events are
// enqueued; this is the repository's load path.
func OrderFromDoc(doc Doc) (*Order, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := uuid.Parse(doc.CustomerID)
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(doc.Status)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(doc.Items))
	for _, itemDoc := range doc.Items {
		item, err := ItemFromDoc(itemDoc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &Order{
		ID:              id,
		CustomerID:      customerID,
		ShippingAddress: doc.ShippingAddress,
		Items:           items,
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
