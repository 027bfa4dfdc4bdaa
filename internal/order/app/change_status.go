package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
	"github.com/Richard-mb9/pedidos-service/pkg/logging"
)

// ChangeOrderStatus loads an order, applies the transition through the
// aggregate, persists the new status and publishes the resulting
// events. Aggregate validation failures abort before any persistence
// or publication side effect.
type ChangeOrderStatus struct {
	Repository Repository
	Publisher  Publisher
}

func (uc *ChangeOrderStatus) Execute(ctx context.Context, orderID uuid.UUID, next domain.Status, opts ...domain.StatusChangeOption) error {
	start := time.Now()

	find := FindOrderByID{Repository: uc.Repository}
	order, err := find.Execute(ctx, orderID, true)
	if err != nil {
		return err
	}

	if err := order.ChangeStatus(next, opts...); err != nil {
		logging.Log(logging.Fields{Service: "order-service", OrderID: orderID.String(), Step: "change_status", Status: "rejected", Message: err.Error()})
		return err
	}

	if err := uc.Repository.UpdateStatus(ctx, orderID, order.Status, order.UpdatedAt); err != nil {
		logging.Log(logging.Fields{Service: "order-service", OrderID: orderID.String(), Step: "change_status", Status: "update_failed", Message: err.Error()})
		return err
	}

	if err := PublishEvents(ctx, uc.Publisher, order.PendingEvents()); err != nil {
		logging.Log(logging.Fields{Service: "order-service", OrderID: orderID.String(), Step: "change_status", Status: "publish_failed", Message: err.Error()})
		return err
	}
	order.ClearEvents()

	logging.Log(logging.Fields{
		Service:    "order-service",
		OrderID:    orderID.String(),
		Step:       "change_status",
		Status:     order.Status.String(),
		DurationMS: time.Since(start).Milliseconds(),
	})
	return nil
}
