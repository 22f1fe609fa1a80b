package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navisouza/delivery-api/internal/config"
	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/syncclient"
	"github.com/navisouza/delivery-api/pkg/database"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
	"github.com/navisouza/delivery-api/pkg/httpclient"
	"github.com/navisouza/delivery-api/pkg/tracing"
)

const seededOrders = 6

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRedisApp builds the full application on top of an in-memory Redis and
// serves its router from an httptest server.
func newRedisApp(t *testing.T) (*App, *miniredis.Miniredis, *httptest.Server) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = mr.Host()
	redisCfg.Port = port

	cfg := &config.ServerConfig{
		Environment:     "test",
		HTTPPort:        8000,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		CORSOrigins:     []string{"*"},
		StorageDriver:   config.StorageDriverRedis,
		SeedFile:        "../../data/pedidos.json",
		HealthTimeout:   200 * time.Millisecond,
		Redis:           redisCfg,
		Tracing:         tracing.Config{ServiceName: "order-service-test"},
	}

	a, err := NewApp(cfg, discardLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(a.httpServer.Handler)
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Shutdown())
	})
	return a, mr, srv
}

func newSyncClient(baseURL string) *syncclient.OrderSync {
	client := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 4,
		UserAgent:       "app-flow-test",
	})
	return syncclient.New(syncclient.NewHTTPAPI(client, baseURL+"/pedidos"), discardLogger())
}

func findOrder(t *testing.T, orders []domain.Order, id string) domain.Order {
	t.Helper()
	for _, o := range orders {
		if o.OrderID == id {
			return o
		}
	}
	t.Fatalf("order %s not in snapshot", id)
	return domain.Order{}
}

func TestApp_OrderLifecycleFlow(t *testing.T) {
	a, _, srv := newRedisApp(t)
	ctx := context.Background()

	n, err := a.service.Seed(ctx, a.cfg.SeedFile)
	require.NoError(t, err)
	require.Equal(t, seededOrders, n)

	store := newSyncClient(srv.URL)

	// Step 1: initial load mirrors the seeded collection
	require.NoError(t, store.Activate(ctx))
	state := store.Snapshot()
	assert.Len(t, state.Orders, seededOrders)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Err)

	// Step 2: create a new order through the API
	order, err := domain.NewOrder(domain.NewOrderInput{
		StoreID:       "COCO-BAMBU-01",
		StoreName:     "Coco Bambu",
		CustomerName:  "Joana Lima",
		CustomerPhone: "61999990000",
		Items: []domain.ItemInput{
			{Name: "Moqueca", Quantity: 1, Price: 89.9},
			{Name: "Suco de caju", Quantity: 2, Price: 12.5},
		},
		PaymentOrigin: domain.PaymentPix,
		Prepaid:       true,
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, order))

	state = store.Snapshot()
	require.Len(t, state.Orders, seededOrders+1)
	created := findOrder(t, state.Orders, order.OrderID)
	assert.Equal(t, domain.StatusReceived, created.Status())
	assert.InDelta(t, 114.9, created.Order.TotalPrice, 0.001)

	// Step 3: walk the order through the happy path
	steps := []domain.StatusName{domain.StatusConfirmed, domain.StatusDispatched, domain.StatusDelivered}
	for i, next := range steps {
		require.NoError(t, store.AdvanceStatus(ctx, order.OrderID, next), "advance to %s", next)
		current := findOrder(t, store.Snapshot().Orders, order.OrderID)
		assert.Equal(t, next, current.Status())
		assert.Len(t, current.Order.Statuses, i+2)
	}

	// Step 4: canceling a delivered order is rejected and surfaced
	err = store.AdvanceStatus(ctx, order.OrderID, domain.StatusCanceled)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	state = store.Snapshot()
	assert.Equal(t, "cannot cancel an order that was already delivered", state.Err)
	assert.Equal(t, domain.StatusDelivered, findOrder(t, state.Orders, order.OrderID).Status())

	store.ClearError()
	assert.Empty(t, store.Snapshot().Err)

	// Step 5: delete the closed order
	require.NoError(t, store.Delete(ctx, order.OrderID))
	state = store.Snapshot()
	assert.Len(t, state.Orders, seededOrders)
	for _, o := range state.Orders {
		assert.NotEqual(t, order.OrderID, o.OrderID)
	}

	// Step 6: a second delete reports the missing order
	err = store.Delete(ctx, order.OrderID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "order not found", store.Snapshot().Err)
}

func TestApp_SeedRunsOnlyOnEmptyStore(t *testing.T) {
	a, _, _ := newRedisApp(t)
	ctx := context.Background()

	n, err := a.service.Seed(ctx, a.cfg.SeedFile)
	require.NoError(t, err)
	assert.Equal(t, seededOrders, n)

	n, err = a.service.Seed(ctx, a.cfg.SeedFile)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApp_ReadinessFollowsRedis(t *testing.T) {
	_, mr, srv := newRedisApp(t)

	resp, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mr.Close()

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApp_ReadinessBoundedByHealthTimeout(t *testing.T) {
	a, _, srv := newRedisApp(t)
	a.health.Register("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	resp, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Port = 1
	redisCfg.DialTimeout = 100 * time.Millisecond

	cfg := &config.ServerConfig{
		HTTPPort:        8000,
		ShutdownTimeout: time.Second,
		StorageDriver:   config.StorageDriverRedis,
		Redis:           redisCfg,
		Tracing:         tracing.Config{ServiceName: "order-service-test"},
	}

	_, err := NewApp(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}
