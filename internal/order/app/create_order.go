package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
	"github.com/Richard-mb9/pedidos-service/pkg/logging"
)

// CreateOrderItem is one line of a creation command.
type CreateOrderItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateOrderInput is the creation command.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	ShippingAddress string
	Items           []CreateOrderItem
}

// CreateOrder builds an order, persists it, then publishes its pending
// events. Persistence happens before publication; a publish failure
// after a successful save is surfaced, not rolled back.
type CreateOrder struct {
	Repository Repository
	Publisher  Publisher
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	start := time.Now()

	items := make([]domain.Item, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	order := domain.Create(in.CustomerID, in.ShippingAddress, items)

	if err := uc.Repository.Save(ctx, order); err != nil {
		logging.Log(logging.Fields{Service: "order-service", OrderID: order.ID.String(), Step: "create_order", Status: "save_failed", Message: err.Error()})
		return nil, err
	}

	if err := PublishEvents(ctx, uc.Publisher, order.PendingEvents()); err != nil {
		// The order is already durable; its event stream diverged.
		logging.Log(logging.Fields{Service: "order-service", OrderID: order.ID.String(), Step: "create_order", Status: "publish_failed", Message: err.Error()})
		return nil, err
	}
	order.ClearEvents()

	logging.Log(logging.Fields{
		Service:    "order-service",
		OrderID:    order.ID.String(),
		Step:       "create_order",
		Status:     "created",
		DurationMS: time.Since(start).Milliseconds(),
	})
	return order, nil
}
