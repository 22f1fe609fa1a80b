package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/navisouza/delivery-api/internal/service"
	"github.com/navisouza/delivery-api/pkg/health"
	"github.com/navisouza/delivery-api/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the order API.
const ServiceName = "order-service"

// RouterConfig tunes the edge middleware. The zero value allows every origin
// and disables rate limiting.
type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	TrustProxy     bool
}

// NewRouter creates a chi router with all order service routes registered.
func NewRouter(
	orderService *service.OrderService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	orderHandler := NewOrderHandler(orderService, logger)
	r.Route("/pedidos", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RPS:               cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			TrustProxyHeaders: cfg.TrustProxy,
		}, logger))
		r.Use(ContentTypeJSON)
		mountOrderRoutes(r, orderHandler)
	})

	return r
}

func mountOrderRoutes(r chi.Router, h *OrderHandler) {
	r.Get("/", h.ListOrders)
	r.Post("/", h.CreateOrder)
	r.Get("/{id}", h.GetOrder)
	r.Patch("/{id}/status", h.UpdateOrderStatus)
	r.Delete("/{id}", h.DeleteOrder)
}
