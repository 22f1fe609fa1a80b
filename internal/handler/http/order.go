package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/service"
	"github.com/navisouza/delivery-api/pkg/httputil"
	"github.com/navisouza/delivery-api/pkg/validator"
)

// MsgOrderDeleted is the message returned after a successful delete.
const MsgOrderDeleted = "order removed successfully"

// OrderHandler handles HTTP requests for the /pedidos endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateStatusResponse is the body of a successful status change.
type UpdateStatusResponse struct {
	Message string        `json:"message"`
	Pedido  *domain.Order `json:"pedido"`
}

// ListOrders handles GET /pedidos
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /pedidos/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// CreateOrder handles POST /pedidos
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req domain.Order
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, order)
}

// UpdateOrderStatus handles PATCH /pedidos/{id}/status?novo_status=STATUS
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStatus(r.URL.Query().Get("novo_status"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message, order, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UpdateStatusResponse{Message: message, Pedido: order})
}

// DeleteOrder handles DELETE /pedidos/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: MsgOrderDeleted})
}
