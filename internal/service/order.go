package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/event"
	"github.com/navisouza/delivery-api/internal/repository"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	repo     repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every order, newest first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get retrieves an order by its order_id.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// Create registers a client-assembled order. Whatever lifecycle the payload
// carries, the stored order starts RECEIVED with a single history entry.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.Order.OrderID == "" {
		order.Order.OrderID = order.OrderID
	}
	if order.Order.OrderID != order.OrderID {
		return nil, apperrors.InvalidInput("order.order_id must match order_id")
	}

	now := s.now()
	if order.Order.CreatedAt == 0 {
		order.Order.CreatedAt = now.UnixMilli()
	}
	order.Order.ResetHistory(now)

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.OrderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.OrderID),
		slog.String("store_id", order.StoreID),
		slog.Float64("total_price", order.Order.TotalPrice),
	)

	return order, nil
}

// UpdateStatus moves an order to status if the lifecycle allows it and
// returns a human-readable summary along with the updated order.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.StatusName) (string, *domain.Order, error) {
	if !status.IsValid() {
		_, err := domain.ParseStatus(string(status))
		return "", nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("get order for status update: %w", err)
	}

	oldStatus := current.Status()
	if err := domain.ValidateTransition(oldStatus, status); err != nil {
		return "", nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, oldStatus, status, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, updated, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(status)),
	)

	return fmt.Sprintf("order changed from %s to %s", oldStatus, status), updated, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get order for delete: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err := s.producer.PublishOrderDeleted(ctx, id, order.StoreID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.deleted event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
		slog.String("status", string(order.Status())),
	)
	return nil
}

// Seed imports the orders of a JSON file when the store is empty. A missing
// file is not an error. Orders are stored as-is, including their status.
func (s *OrderService) Seed(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "store not empty, skipping seed", slog.Int("orders", n))
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.InfoContext(ctx, "seed file not found, skipping", slog.String("path", path))
			return 0, nil
		}
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	now := s.now()
	imported := 0
	for i := range orders {
		o := &orders[i]
		if o.Order.OrderID == "" {
			o.Order.OrderID = o.OrderID
		}
		if !o.Order.LastStatusName.IsValid() {
			o.Order.LastStatusName = domain.StatusReceived
		}
		if o.Order.CreatedAt == 0 {
			o.Order.CreatedAt = now.UnixMilli()
		}
		if err := s.repo.Create(ctx, o); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				continue
			}
			return imported, fmt.Errorf("seed order %s: %w", o.OrderID, err)
		}
		imported++
	}

	s.logger.InfoContext(ctx, "seeded orders",
		slog.String("path", path),
		slog.Int("imported", imported),
	)
	return imported, nil
}
