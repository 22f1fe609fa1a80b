package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/navisouza/delivery-api/internal/domain"
	apperrors "github.com/navisouza/delivery-api/pkg/errors"
	"github.com/navisouza/delivery-api/pkg/httpclient"
	"github.com/navisouza/delivery-api/pkg/logger"
	"github.com/navisouza/delivery-api/pkg/tracing"
)

// Fallback messages surfaced when a failed response carries no detail.
const (
	msgFetchFailed  = "failed to fetch orders"
	msgUpdateFailed = "failed to update order status"
	msgCreateFailed = "failed to create order"
	msgDeleteFailed = "failed to delete order"
)

const maxListBody = 16 << 20

// API is the order service as seen by the sync client.
type API interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.StatusName) error
	CreateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// HTTPAPI talks to the /pedidos REST resource.
type HTTPAPI struct {
	client  httpclient.Doer
	baseURL string
}

// NewHTTPAPI creates an API rooted at baseURL, e.g. "http://localhost:8000/pedidos".
func NewHTTPAPI(client httpclient.Doer, baseURL string) *HTTPAPI {
	return &HTTPAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ListOrders issues GET /pedidos.
func (a *HTTPAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	resp, err := a.do(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, httpclient.TransportError("fetch orders", err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, msgFetchFailed)
	}
	defer resp.Body.Close()

	var orders []domain.Order
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxListBody)).Decode(&orders); err != nil {
		return nil, &apperrors.AppError{
			Code:    "MALFORMED_RESPONSE",
			Message: msgFetchFailed + ": malformed response body",
			Err:     fmt.Errorf("decode orders: %w", err),
		}
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// UpdateStatus issues PATCH /pedidos/{id}/status?novo_status={status}.
func (a *HTTPAPI) UpdateStatus(ctx context.Context, orderID string, status domain.StatusName) error {
	q := url.Values{"novo_status": {string(status)}}
	target := a.orderURL(orderID) + "/status?" + q.Encode()

	resp, err := a.do(ctx, http.MethodPatch, target, nil)
	if err != nil {
		return httpclient.TransportError("update order status", err)
	}
	return a.discardOrFail(resp, msgUpdateFailed)
}

// CreateOrder issues POST /pedidos with the full order document.
func (a *HTTPAPI) CreateOrder(ctx context.Context, order *domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPost, a.baseURL, body)
	if err != nil {
		return httpclient.TransportError("create order", err)
	}
	return a.discardOrFail(resp, msgCreateFailed)
}

// DeleteOrder issues DELETE /pedidos/{id}.
func (a *HTTPAPI) DeleteOrder(ctx context.Context, orderID string) error {
	resp, err := a.do(ctx, http.MethodDelete, a.orderURL(orderID), nil)
	if err != nil {
		return httpclient.TransportError("delete order", err)
	}
	return a.discardOrFail(resp, msgDeleteFailed)
}

func (a *HTTPAPI) orderURL(orderID string) string {
	return a.baseURL + "/" + url.PathEscape(orderID)
}

func (a *HTTPAPI) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set("X-Correlation-ID", correlationID)
	tracing.InjectHTTP(ctx, req)

	return a.client.Do(ctx, req)
}

func (a *HTTPAPI) discardOrFail(resp *http.Response, fallback string) error {
	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, fallback)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
