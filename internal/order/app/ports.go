package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
)

// Repository is the persistence port for orders. FindByID returns
// (nil, nil) when the order is absent.
type Repository interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.Status, updatedAt time.Time) error
}

// IdempotencyStore deduplicates order creation by client-supplied key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (uuid.UUID, bool, error)
	Remember(ctx context.Context, key string, orderID uuid.UUID) error
}

// Publisher emits a single serialized domain event.
type Publisher interface {
	Publish(ctx context.Context, eventName string, envelope map[string]any) error
}

// PublishEvents publishes events one at a time, in buffer order. It
// stops at the first failure; events already sent are not recalled.
func PublishEvents(ctx context.Context, publisher Publisher, events []domain.Event) error {
	for _, event := range events {
		if err := publisher.Publish(ctx, event.Name(), event.Envelope()); err != nil {
			return err
		}
	}
	return nil
}
