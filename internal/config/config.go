package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/navisouza/delivery-api/pkg/config"
	"github.com/navisouza/delivery-api/pkg/database"
	"github.com/navisouza/delivery-api/pkg/tracing"
)

// Storage drivers for the order service.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

// ServerConfig holds all configuration for the order service.
type ServerConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS    int           `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"100"`
	TrustProxy      bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	HealthTimeout   time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"5s"`

	// Storage
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	SeedFile      string        `env:"SEED_FILE" envDefault:"data/pedidos.json"`
	SlowQuery     time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	Postgres database.PostgresConfig
	Redis    database.RedisConfig

	// Kafka; an empty broker list disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	Tracing tracing.Config
}

// LoadServer reads the order service configuration from the environment.
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "order-service"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *ServerConfig) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverRedis:
	default:
		return fmt.Errorf("invalid storage driver %q, must be %q or %q", c.StorageDriver, StorageDriverPostgres, StorageDriverRedis)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", c.ShutdownTimeout)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("invalid rate limit: %d rps, burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

// DashboardConfig holds configuration for the terminal dashboard.
type DashboardConfig struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"dashboard.log"`

	APIURL          string        `env:"API_URL" envDefault:"http://localhost:8000/pedidos"`
	StoreID         string        `env:"STORE_ID" envDefault:"COCO-BAMBU-01"`
	StoreName       string        `env:"STORE_NAME"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"2"`

	// Circuit breaker around the order service.
	CBMaxRequests  uint32        `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     time.Duration `env:"CB_INTERVAL" envDefault:"60s"`
	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"15s"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`
}

// DashboardEnvPrefix namespaces every dashboard variable.
const DashboardEnvPrefix = "DASHBOARD_"

// LoadDashboard reads DASHBOARD_* variables.
func LoadDashboard() (*DashboardConfig, error) {
	cfg := &DashboardConfig{}
	if err := pkgconfig.LoadWithPrefix(cfg, DashboardEnvPrefix); err != nil {
		return nil, fmt.Errorf("load dashboard config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DashboardConfig) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", c.APIURL)
	}
	if c.StoreID == "" {
		return fmt.Errorf("store id is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout: %s", c.RequestTimeout)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("invalid refresh interval: %s", c.RefreshInterval)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("invalid circuit breaker failure ratio: %v", c.CBFailureRatio)
	}
	return nil
}
