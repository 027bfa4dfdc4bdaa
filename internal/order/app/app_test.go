package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
)

// fakeRepository keeps orders in memory, last-writer-wins.
type fakeRepository struct {
	orders     map[uuid.UUID]*domain.Order
	saveErr    error
	updateErr  error
	findErr    error
	saveCalls  int
	updateCall int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{orders: map[uuid.UUID]*domain.Order{}}
}

func (r *fakeRepository) FindByID(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	restored, err := domain.OrderFromDoc(order.Doc())
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (r *fakeRepository) Save(_ context.Context, order *domain.Order) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepository) UpdateStatus(_ context.Context, orderID uuid.UUID, status domain.Status, updatedAt time.Time) error {
	r.updateCall++
	if r.updateErr != nil {
		return r.updateErr
	}
	order, ok := r.orders[orderID]
	if !ok {
		return errors.New("missing order")
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	return nil
}

// recordingPublisher captures published envelopes in order.
type recordingPublisher struct {
	names      []string
	envelopes  []map[string]any
	publishErr error
}

func (p *recordingPublisher) Publish(_ context.Context, eventName string, envelope map[string]any) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.names = append(p.names, eventName)
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func sampleInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerID:      uuid.New(),
		ShippingAddress: "Test Address",
		Items: []CreateOrderItem{
			{ProductID: uuid.New(), ProductName: "Keyboard", Quantity: 2, UnitPrice: decimal.RequireFromString("100.50")},
			{ProductID: uuid.New(), ProductName: "Mouse", Quantity: 3, UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{}
	uc := &CreateOrder{Repository: repo, Publisher: publisher}

	order, err := uc.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.True(t, order.TotalAmount().Equal(decimal.RequireFromString("351.00")))
	assert.Contains(t, repo.orders, order.ID)

	require.Equal(t, []string{domain.EventOrderCreated}, publisher.names)
	payload := publisher.envelopes[0]["payload"].(map[string]any)
	assert.Equal(t, order.ID.String(), payload["order_id"])
	assert.Equal(t, "351.00", payload["total_amount"])

	assert.Empty(t, order.PendingEvents(), "buffer must be drained after publish")
}

func TestCreateOrderSaveFailureSkipsPublish(t *testing.T) {
	repo := newFakeRepository()
	repo.saveErr = errors.New("db down")
	publisher := &recordingPublisher{}
	uc := &CreateOrder{Repository: repo, Publisher: publisher}

	_, err := uc.Execute(context.Background(), sampleInput())

	require.Error(t, err)
	assert.Empty(t, publisher.names, "nothing may be published when save fails")
}

func TestCreateOrderPublishFailureSurfaces(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{publishErr: errors.New("broker down")}
	uc := &CreateOrder{Repository: repo, Publisher: publisher}

	_, err := uc.Execute(context.Background(), sampleInput())

	require.Error(t, err)
	assert.Equal(t, 1, repo.saveCalls, "order remains saved even when publish fails")
}

func TestChangeOrderStatus(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{}
	create := &CreateOrder{Repository: repo, Publisher: publisher}
	order, err := create.Execute(context.Background(), sampleInput())
	require.NoError(t, err)
	publisher.names = nil
	publisher.envelopes = nil

	uc := &ChangeOrderStatus{Repository: repo, Publisher: publisher}
	require.NoError(t, uc.Execute(context.Background(), order.ID, domain.StatusProcessing))

	stored := repo.orders[order.ID]
	assert.Equal(t, domain.StatusProcessing, stored.Status)
	assert.Equal(t, []string{domain.EventOrderStatusChanged}, publisher.names)
}

func TestChangeOrderStatusCancelPublishesBothEvents(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{}
	create := &CreateOrder{Repository: repo, Publisher: publisher}
	order, err := create.Execute(context.Background(), sampleInput())
	require.NoError(t, err)
	publisher.names = nil

	uc := &ChangeOrderStatus{Repository: repo, Publisher: publisher}
	require.NoError(t, uc.Execute(context.Background(), order.ID, domain.StatusCancelled, domain.WithReason("changed my mind")))

	require.Equal(t, []string{domain.EventOrderStatusChanged, domain.EventOrderCancelled}, publisher.names)
}

func TestChangeOrderStatusNotFound(t *testing.T) {
	repo := newFakeRepository()
	uc := &ChangeOrderStatus{Repository: repo, Publisher: &recordingPublisher{}}

	err := uc.Execute(context.Background(), uuid.New(), domain.StatusProcessing)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestChangeOrderStatusRejectionSkipsPersistence(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{}
	create := &CreateOrder{Repository: repo, Publisher: publisher}
	order, err := create.Execute(context.Background(), sampleInput())
	require.NoError(t, err)
	publisher.names = nil
	updatesBefore := repo.updateCall

	uc := &ChangeOrderStatus{Repository: repo, Publisher: publisher}
	err = uc.Execute(context.Background(), order.ID, domain.StatusDelivered)

	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, updatesBefore, repo.updateCall, "rejected transition must not hit the repository")
	assert.Empty(t, publisher.names)
	assert.Equal(t, domain.StatusCreated, repo.orders[order.ID].Status)
}

func TestFindOrderByID(t *testing.T) {
	repo := newFakeRepository()
	publisher := &recordingPublisher{}
	create := &CreateOrder{Repository: repo, Publisher: publisher}
	order, err := create.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	uc := &FindOrderByID{Repository: repo}

	found, err := uc.Execute(context.Background(), order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	missing, err := uc.Execute(context.Background(), uuid.New(), false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = uc.Execute(context.Background(), uuid.New(), true)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPublishEventsStopsAtFirstFailure(t *testing.T) {
	order := domain.Create(uuid.New(), "Test Address", nil)
	require.NoError(t, order.ChangeStatus(domain.StatusCancelled))
	events := order.PendingEvents()
	require.Len(t, events, 3)

	publisher := &recordingPublisher{}
	require.NoError(t, PublishEvents(context.Background(), publisher, events))
	assert.Equal(t, []string{
		domain.EventOrderCreated,
		domain.EventOrderStatusChanged,
		domain.EventOrderCancelled,
	}, publisher.names, "events must be published in buffer order")

	failing := &recordingPublisher{publishErr: errors.New("broker down")}
	assert.Error(t, PublishEvents(context.Background(), failing, events))
	assert.Empty(t, failing.names)
}
