package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process level configuration, loaded from the environment.
type Server struct {
	Addr        string `env:"WISHLIST_ADDR" envDefault:":8080"`
	Environment string `env:"WISHLIST_ENV" envDefault:"dev"`
	DatabaseURL string `env:"DATABASE_URL"`
	SeedDemo    bool   `env:"SEED_DEMO" envDefault:"false"`

	Log      LogConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Guest    GuestConfig
	Realtime RealtimeConfig
	Audit    AuditConfig
	Otel     OtelConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"wishlist"`
}

// RedisConfig configures the optional Redis client. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// LedgerConfig bounds the reservation transaction.
type LedgerConfig struct {
	LockWait  time.Duration `env:"LEDGER_LOCK_WAIT" envDefault:"2s"`
	TxTimeout time.Duration `env:"LEDGER_TX_TIMEOUT" envDefault:"5s"`
}

// GuestConfig governs anonymous guest sessions.
type GuestConfig struct {
	SessionTTL   time.Duration `env:"GUEST_SESSION_TTL" envDefault:"720h"`
	MintLimit    int           `env:"GUEST_MINT_LIMIT" envDefault:"20"`
	MintWindow   time.Duration `env:"GUEST_MINT_WINDOW" envDefault:"1h"`
	CookieSecure bool          `env:"GUEST_COOKIE_SECURE" envDefault:"false"`
}

// RealtimeConfig sizes the notification pipeline and streaming connections.
type RealtimeConfig struct {
	NotifyQueue       int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"1024"`
	NotifyWorkers     int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	NotifyConcurrency int           `env:"NOTIFY_SEND_CONCURRENCY" envDefault:"16"`
	StreamBuffer      int           `env:"STREAM_BUFFER" envDefault:"16"`
	Heartbeat         time.Duration `env:"STREAM_HEARTBEAT" envDefault:"15s"`
}

// AuditConfig selects the audit sink. Empty brokers keep a bounded window of
// events in memory.
type AuditConfig struct {
	KafkaBrokers   []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string   `env:"AUDIT_KAFKA_TOPIC" envDefault:"wishlist.ledger.audit"`
	MemoryCapacity int      `env:"AUDIT_MEMORY_CAPACITY" envDefault:"1000"`
}

// OtelConfig toggles tracing export.
type OtelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"wishlist"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	if c.Ledger.LockWait <= 0 {
		return fmt.Errorf("LEDGER_LOCK_WAIT must be positive")
	}
	if c.Guest.SessionTTL <= 0 {
		return fmt.Errorf("GUEST_SESSION_TTL must be positive")
	}
	if c.Realtime.NotifyWorkers <= 0 || c.Realtime.NotifyConcurrency <= 0 {
		return fmt.Errorf("notify workers and send concurrency must be positive")
	}
	if c.Realtime.StreamBuffer <= 0 {
		return fmt.Errorf("STREAM_BUFFER must be positive")
	}
	return nil
}
