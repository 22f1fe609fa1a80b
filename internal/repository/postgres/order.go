package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/repository"
	"github.com/navisouza/delivery-api/pkg/database"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

const (
	listQuery = `
		SELECT status, raw_data
		FROM pedidos
		ORDER BY created_at DESC, id DESC`

	getQuery = `
		SELECT status, raw_data
		FROM pedidos
		WHERE order_id = $1`

	lockQuery = getQuery + `
		FOR UPDATE`

	insertQuery = `
		INSERT INTO pedidos (order_id, store_id, customer_name, customer_phone, total_price, status, delivery_city, delivery_neighborhood, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_id) DO NOTHING`

	updateStatusQuery = `
		UPDATE pedidos
		SET status = $1, raw_data = $2, updated_at = $3
		WHERE order_id = $4`

	deleteQuery = `DELETE FROM pedidos WHERE order_id = $1`

	countQuery = `SELECT COUNT(*) FROM pedidos`
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// The full order document lives in raw_data; the status column is the source
// of truth for last_status_name.
type OrderRepository struct {
	pool database.DBTX
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) (orders []domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "ListOrders", listQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders = make([]domain.Order, 0)
	for rows.Next() {
		var (
			status string
			raw    []byte
		)
		if err := rows.Scan(&status, &raw); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o, err := decodeOrder(status, raw)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// GetByID retrieves an order by its order_id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (o *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "GetOrder", getQuery)
	defer func() { end(err) }()

	return scanOne(r.pool.QueryRow(ctx, getQuery, id))
}

// Create inserts a new order. The status column starts at the document's
// last_status_name.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateOrder", insertQuery)
	defer func() { end(err) }()

	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	var phone *string
	if p := o.Order.Customer.TemporaryPhone; p != "" {
		phone = &p
	}
	var city, neighborhood string
	if a := o.Order.DeliveryAddress; a != nil {
		city, neighborhood = a.City, a.Neighborhood
	}

	ct, err := r.pool.Exec(ctx, insertQuery,
		o.OrderID,
		o.StoreID,
		o.Order.Customer.Name,
		phone,
		o.Order.TotalPrice,
		string(o.Order.LastStatusName),
		city,
		neighborhood,
		raw,
		o.CreatedTime().UTC(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.AlreadyExists(repository.MsgOrderAlreadyExists)
	}

	return nil
}

// UpdateStatus locks the row, checks the current status and appends the
// history entry within one transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.StatusName, at time.Time) (o *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", updateStatusQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err = scanOne(tx.QueryRow(ctx, lockQuery, id))
	if err != nil {
		return nil, err
	}
	if o.Status() != from {
		return nil, apperrors.Conflict(fmt.Sprintf("order status changed to %s, refresh and retry", o.Status()))
	}

	o.Order.AppendStatus(to, at, domain.OriginStore)
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	if _, err := tx.Exec(ctx, updateStatusQuery, string(to), raw, at.UTC(), id); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return o, nil
}

// Delete removes an order by its order_id.
func (r *OrderRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteOrder", deleteQuery)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(repository.MsgOrderNotFound)
	}
	return nil
}

// Count returns the number of stored orders.
func (r *OrderRepository) Count(ctx context.Context) (n int, err error) {
	ctx, end := database.TraceQuery(ctx, "CountOrders", countQuery)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func scanOne(row pgx.Row) (*domain.Order, error) {
	var (
		status string
		raw    []byte
	)
	if err := row.Scan(&status, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(repository.MsgOrderNotFound)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return decodeOrder(status, raw)
}

func decodeOrder(status string, raw []byte) (*domain.Order, error) {
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order document: %w", err)
	}
	o.Order.LastStatusName = domain.StatusName(status)
	return &o, nil
}
