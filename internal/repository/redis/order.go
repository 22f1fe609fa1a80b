package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/repository"
	"github.com/navisouza/delivery-api/pkg/database"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

const (
	keyPrefix = "pedidos:"
	indexKey  = "pedidos:index"

	maxWatchRetries = 3
)

// OrderRepository implements repository.OrderRepository using Redis. Each
// order is a JSON document; a sorted set scored by created_at keeps the order.
type OrderRepository struct {
	client *redis.Client
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new Redis-backed order repository.
func NewOrderRepository(client *redis.Client) *OrderRepository {
	return &OrderRepository{client: client}
}

// getter is satisfied by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func orderKey(id string) string { return keyPrefix + "order:" + id }

// List returns every order, newest created_at first.
func (r *OrderRepository) List(ctx context.Context) (orders []domain.Order, err error) {
	ctx, end := database.TraceRedis(ctx, "ListOrders", "ZREVRANGE+MGET")
	defer func() { end(err) }()

	ids, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange orders: %w", err)
	}

	orders = make([]domain.Order, 0, len(ids))
	if len(ids) == 0 {
		return orders, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKey(id)
	}
	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget orders: %w", err)
	}

	for _, doc := range docs {
		s, ok := doc.(string)
		if !ok {
			// Index entry without a document; skip it.
			continue
		}
		o, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// GetByID retrieves an order by its order_id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (o *domain.Order, err error) {
	ctx, end := database.TraceRedis(ctx, "GetOrder", "GET")
	defer func() { end(err) }()

	return r.get(ctx, r.client, id)
}

// Create stores a new order unless its order_id is already taken.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceRedis(ctx, "CreateOrder", "SETNX+ZADD")
	defer func() { end(err) }()

	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	created, err := r.client.SetNX(ctx, orderKey(o.OrderID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx order: %w", err)
	}
	if !created {
		return apperrors.AlreadyExists(repository.MsgOrderAlreadyExists)
	}

	member := redis.Z{Score: float64(o.Order.CreatedAt), Member: o.OrderID}
	if err := r.client.ZAdd(ctx, indexKey, member).Err(); err != nil {
		return fmt.Errorf("redis zadd order index: %w", err)
	}
	return nil
}

// UpdateStatus applies the transition under WATCH so a concurrent writer
// aborts the transaction instead of being overwritten.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.StatusName, at time.Time) (o *domain.Order, err error) {
	ctx, end := database.TraceRedis(ctx, "UpdateOrderStatus", "WATCH+SET")
	defer func() { end(err) }()

	key := orderKey(id)
	txf := func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status() != from {
			return apperrors.Conflict(fmt.Sprintf("order status changed to %s, refresh and retry", current.Status()))
		}

		current.Order.AppendStatus(to, at, domain.OriginStore)
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			o = current
		}
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if errors.Is(err, redis.TxFailedErr) {
		return nil, apperrors.Conflict("order was modified concurrently, refresh and retry")
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes an order and its index entry.
func (r *OrderRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceRedis(ctx, "DeleteOrder", "DEL+ZREM")
	defer func() { end(err) }()

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, orderKey(id))
		pipe.ZRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete order: %w", err)
	}
	if del.Val() == 0 {
		return apperrors.NotFound(repository.MsgOrderNotFound)
	}
	return nil
}

// Count returns the number of indexed orders.
func (r *OrderRepository) Count(ctx context.Context) (n int, err error) {
	ctx, end := database.TraceRedis(ctx, "CountOrders", "ZCARD")
	defer func() { end(err) }()

	c, err := r.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcard orders: %w", err)
	}
	return int(c), nil
}

func (r *OrderRepository) get(ctx context.Context, c getter, id string) (*domain.Order, error) {
	data, err := c.Get(ctx, orderKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound(repository.MsgOrderNotFound)
		}
		return nil, fmt.Errorf("redis get order: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*domain.Order, error) {
	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order document: %w", err)
	}
	return &o, nil
}
