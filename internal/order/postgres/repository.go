package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
)

// ErrIdempotencyRace is returned when two creations race on the same
// idempotency key; the caller should re-read the key.
var ErrIdempotencyRace = errors.New("idempotency race")

// Repository stores each order as a JSONB document keyed by id, with
// the status duplicated into its own column for querying.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FindByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM orders WHERE id=$1`, orderID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc domain.Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return domain.OrderFromDoc(doc)
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order.Doc())
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders(id, doc, status, created_at, updated_at) VALUES($1, $2, $3, $4, $5)`,
		order.ID, data, order.Status.String(), order.CreatedAt, order.UpdatedAt,
	)
	return err
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.Status, updatedAt time.Time) error {
	stamp := updatedAt.UTC().Format(time.RFC3339Nano)
	_, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET status=$2,
		     updated_at=$3,
		     doc = jsonb_set(jsonb_set(doc, '{status}', to_jsonb($2::text)), '{updatedAt}', to_jsonb($4::text))
		 WHERE id=$1`,
		orderID, status.String(), updatedAt, stamp,
	)
	return err
}

// Lookup returns the order id previously remembered for key.
func (r *Repository) Lookup(ctx context.Context, key string) (uuid.UUID, bool, error) {
	var orderID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT order_id FROM order_idempotency WHERE idempotency_key=$1`, key).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return orderID, true, nil
}

// Remember binds key to orderID. A unique violation means another
// request won the race.
func (r *Repository) Remember(ctx context.Context, key string, orderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO order_idempotency(idempotency_key, order_id) VALUES($1, $2)`,
		key, orderID,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrIdempotencyRace
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
