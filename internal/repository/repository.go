package repository

import (
	"context"
	"time"

	"github.com/navisouza/delivery-api/internal/domain"
)

// Error details shared by every implementation.
const (
	MsgOrderNotFound      = "order not found"
	MsgOrderAlreadyExists = "order_id already registered"
)

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// List returns every order, newest created_at first.
	List(ctx context.Context) ([]domain.Order, error)

	// GetByID retrieves an order by its order_id.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// Create stores a new order. A duplicate order_id is an AlreadyExists error.
	Create(ctx context.Context, order *domain.Order) error

	// UpdateStatus moves the order from one status to another and appends the
	// history entry atomically. It fails with a Conflict error when the stored
	// status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.StatusName, at time.Time) (*domain.Order, error)

	// Delete removes an order.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored orders.
	Count(ctx context.Context) (int, error)
}
