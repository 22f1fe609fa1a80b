package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/navisouza/delivery-api/internal/domain"
	pkgkafka "github.com/navisouza/delivery-api/pkg/kafka"
	"github.com/navisouza/delivery-api/pkg/logger"
)

// Kafka topics for order lifecycle events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicOrderDeleted       = pkgkafka.Topic("order", "deleted")
)

// AggregateTypeOrder is the aggregate type of every order event.
const AggregateTypeOrder = "order"

// SourceOrderService identifies events emitted by the order service.
const SourceOrderService = "order-service"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	Order domain.Order `json:"order"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string            `json:"order_id"`
	StoreID   string            `json:"store_id"`
	OldStatus domain.StatusName `json:"old_status"`
	NewStatus domain.StatusName `json:"new_status"`
	ChangedAt int64             `json:"changed_at"`
}

// OrderDeletedData is the payload for an order.deleted event.
type OrderDeletedData struct {
	OrderID string `json:"order_id"`
}

// Producer publishes order domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the order service.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full document.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, order.OrderID, order.StoreID, OrderCreatedData{Order: *order})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.StatusName) error {
	data := OrderStatusChangedData{
		OrderID:   order.OrderID,
		StoreID:   order.StoreID,
		OldStatus: oldStatus,
		NewStatus: order.Status(),
	}
	if n := len(order.Order.Statuses); n > 0 {
		data.ChangedAt = order.Order.Statuses[n-1].CreatedAt
	}
	return p.publish(ctx, TopicOrderStatusChanged, order.OrderID, order.StoreID, data)
}

// PublishOrderDeleted publishes an order.deleted event.
func (p *Producer) PublishOrderDeleted(ctx context.Context, orderID, storeID string) error {
	return p.publish(ctx, TopicOrderDeleted, orderID, storeID, OrderDeletedData{OrderID: orderID})
}

func (p *Producer) publish(ctx context.Context, topic, orderID, storeID string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, orderID, AggregateTypeOrder, SourceOrderService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("store_id", storeID)

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published order event",
		slog.String("topic", topic),
		slog.String("order_id", orderID),
		slog.String("event_id", evt.EventID),
	)
	return nil
}
