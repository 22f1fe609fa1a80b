package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/navisouza/delivery-api/internal/domain"
	pkgkafka "github.com/navisouza/delivery-api/pkg/kafka"
	"github.com/navisouza/delivery-api/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, evt *pkgkafka.Event) error {
	return m.Called(ctx, topic, evt).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func newTestProducer() (*Producer, *mockPublisher) {
	pub := new(mockPublisher)
	return NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil))), pub
}

func testOrder() *domain.Order {
	return &domain.Order{
		StoreID: "COCO-BAMBU-01",
		OrderID: "o-1",
		Order: domain.OrderDetails{
			OrderID:        "o-1",
			LastStatusName: domain.StatusConfirmed,
			Statuses: []domain.StatusEntry{
				{Name: domain.StatusReceived, CreatedAt: 1000, OrderID: "o-1", Origin: domain.OriginStore},
				{Name: domain.StatusConfirmed, CreatedAt: 2000, OrderID: "o-1", Origin: domain.OriginStore},
			},
		},
	}
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "delivery.order.created", TopicOrderCreated)
	assert.Equal(t, "delivery.order.status_changed", TopicOrderStatusChanged)
	assert.Equal(t, "delivery.order.deleted", TopicOrderDeleted)
}

func TestPublishOrderCreated(t *testing.T) {
	p, pub := newTestProducer()
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicOrderCreated, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	require.NoError(t, p.PublishOrderCreated(ctx, testOrder()))
	require.NotNil(t, got)
	assert.Equal(t, "o-1", got.AggregateID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "COCO-BAMBU-01", got.Metadata["store_id"])

	var data OrderCreatedData
	require.NoError(t, json.Unmarshal(got.Data, &data))
	assert.Equal(t, "o-1", data.Order.OrderID)
}

func TestPublishOrderStatusChanged(t *testing.T) {
	p, pub := newTestProducer()

	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicOrderStatusChanged, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), testOrder(), domain.StatusReceived))

	var data OrderStatusChangedData
	require.NoError(t, json.Unmarshal(got.Data, &data))
	assert.Equal(t, OrderStatusChangedData{
		OrderID:   "o-1",
		StoreID:   "COCO-BAMBU-01",
		OldStatus: domain.StatusReceived,
		NewStatus: domain.StatusConfirmed,
		ChangedAt: 2000,
	}, data)
	assert.Empty(t, got.CorrelationID)
}

func TestPublishOrderDeleted_PublisherError(t *testing.T) {
	p, pub := newTestProducer()
	pub.On("Publish", mock.Anything, TopicOrderDeleted, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishOrderDeleted(context.Background(), "o-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish delivery.order.deleted event")
}

func TestNoopPublisher(t *testing.T) {
	p := NewProducer(pkgkafka.NoopPublisher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, p.PublishOrderDeleted(context.Background(), "o-1", "s"))
}
