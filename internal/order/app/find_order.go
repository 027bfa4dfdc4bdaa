package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
)

// FindOrderByID loads an order. With required set, an absent order is
// a NotFoundError; otherwise the result is simply nil.
type FindOrderByID struct {
	Repository Repository
}

func (uc *FindOrderByID) Execute(ctx context.Context, orderID uuid.UUID, required bool) (*domain.Order, error) {
	order, err := uc.Repository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil && required {
		return nil, &domain.NotFoundError{OrderID: orderID}
	}
	return order, nil
}
