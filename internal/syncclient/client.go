// Package syncclient keeps an in-memory mirror of the order service's
// collection. Every successful mutation is followed by a full refetch, so the
// mirror only ever holds server-confirmed state.
package syncclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/navisouza/delivery-api/internal/domain"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// State is a point-in-time copy of the client state.
type State struct {
	Orders  []domain.Order
	Loading bool
	Err     string
}

// OrderStore is what the presentation layer depends on.
type OrderStore interface {
	Activate(ctx context.Context) error
	Refresh(ctx context.Context) error
	AdvanceStatus(ctx context.Context, orderID string, status domain.StatusName) error
	Create(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, orderID string) error
	Snapshot() State
	ClearError()
}

// OrderSync is the default OrderStore. It is safe for concurrent use.
type OrderSync struct {
	api    API
	logger *slog.Logger

	mu       sync.Mutex
	orders   []domain.Order
	inFlight int
	errMsg   string

	refreshTimeout time.Duration

	activateOnce sync.Once
	activateErr  error
}

var _ OrderStore = (*OrderSync)(nil)

// New creates an OrderSync backed by api.
func New(api API, logger *slog.Logger) *OrderSync {
	return &OrderSync{
		api:    api,
		logger: logger,
		orders: []domain.Order{},
	}
}

// SetRefreshTimeout gives the refetch that follows a successful mutation its
// own deadline, detached from the mutation's context. Zero reuses the
// mutation's context. Call it before the client is shared.
func (s *OrderSync) SetRefreshTimeout(d time.Duration) {
	s.refreshTimeout = d
}

// Activate performs the initial load. Only the first call issues a Refresh;
// later calls return its result.
func (s *OrderSync) Activate(ctx context.Context) error {
	s.activateOnce.Do(func() {
		s.activateErr = s.Refresh(ctx)
	})
	return s.activateErr
}

// Refresh replaces the mirror with the server's collection. On failure the
// previous orders are kept and the error is recorded.
func (s *OrderSync) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	orders, err := s.api.ListOrders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		s.errMsg = apperrors.Message(err)
		s.logger.WarnContext(ctx, "order refresh failed", slog.String("error", err.Error()))
		return err
	}
	s.orders = orders
	s.logger.DebugContext(ctx, "orders refreshed", slog.Int("count", len(orders)))
	return nil
}

// AdvanceStatus asks the server to move the order to status, then refreshes.
// The transition is not checked locally.
func (s *OrderSync) AdvanceStatus(ctx context.Context, orderID string, status domain.StatusName) error {
	err := s.api.UpdateStatus(ctx, orderID, status)
	if s.failed(ctx, "advance status", err, slog.String("order_id", orderID), slog.String("status", string(status))) {
		return err
	}
	s.logger.InfoContext(ctx, "order status advanced",
		slog.String("order_id", orderID),
		slog.String("status", string(status)),
	)
	return s.refreshAfterMutation(ctx)
}

// Create posts a fully assembled order, then refreshes.
func (s *OrderSync) Create(ctx context.Context, order *domain.Order) error {
	err := s.api.CreateOrder(ctx, order)
	if s.failed(ctx, "create order", err, slog.String("order_id", order.OrderID)) {
		return err
	}
	s.logger.InfoContext(ctx, "order created", slog.String("order_id", order.OrderID))
	return s.refreshAfterMutation(ctx)
}

// Delete removes the order on the server, then refreshes.
func (s *OrderSync) Delete(ctx context.Context, orderID string) error {
	err := s.api.DeleteOrder(ctx, orderID)
	if s.failed(ctx, "delete order", err, slog.String("order_id", orderID)) {
		return err
	}
	s.logger.InfoContext(ctx, "order deleted", slog.String("order_id", orderID))
	return s.refreshAfterMutation(ctx)
}

// Snapshot returns a copy of the current state.
func (s *OrderSync) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, len(s.orders))
	copy(orders, s.orders)
	return State{
		Orders:  orders,
		Loading: s.inFlight > 0,
		Err:     s.errMsg,
	}
}

// ClearError dismisses the surfaced error.
func (s *OrderSync) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *OrderSync) refreshAfterMutation(ctx context.Context) error {
	if s.refreshTimeout <= 0 {
		return s.Refresh(ctx)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
	defer cancel()
	return s.Refresh(ctx)
}

func (s *OrderSync) failed(ctx context.Context, op string, err error, attrs ...any) bool {
	if err == nil {
		return false
	}
	s.mu.Lock()
	s.errMsg = apperrors.Message(err)
	s.mu.Unlock()

	s.logger.WarnContext(ctx, op+" failed", append(attrs, slog.String("error", err.Error()))...)
	return true
}
