package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TRAVEL"

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds broker settings. No brokers disables event publishing.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// PartnerConfig locates the flight and hotel booking APIs.
type PartnerConfig struct {
	FlightURL string
	HotelURL  string
	Timeout   time.Duration
}

// SagaConfig bounds each saga step.
type SagaConfig struct {
	StepTimeout time.Duration
}

// RedisConfig holds the idempotency store settings. An empty Addr disables it.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// ReconcileConfig drives the periodic orphan sweep. A zero Interval disables it.
type ReconcileConfig struct {
	Interval    time.Duration
	Concurrency int
}

// ServiceConfig holds all configuration for the travel service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	StorageDriver string
	DBConfig      DatabaseConfig
	KafkaConfig   KafkaConfig
	Partners      PartnerConfig
	Saga          SagaConfig
	Redis         RedisConfig
	Reconcile     ReconcileConfig
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *ServiceConfig) IsDevelopment() bool { return c.AppEnv == "development" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "travel_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetDefault("FLIGHT_API_URL", "")
	v.SetDefault("HOTEL_API_URL", "")
	v.SetDefault("PARTNER_TIMEOUT", 5*time.Second)
	v.SetDefault("SAGA_STEP_TIMEOUT", 10*time.Second)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)

	v.SetDefault("RECONCILE_INTERVAL", 0)
	v.SetDefault("RECONCILE_CONCURRENCY", 4)
}

// Load reads configuration from TRAVEL_* environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:          normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv:        v.GetString("APP_ENV"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DBConfig: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Partners: PartnerConfig{
			FlightURL: strings.TrimRight(v.GetString("FLIGHT_API_URL"), "/"),
			HotelURL:  strings.TrimRight(v.GetString("HOTEL_API_URL"), "/"),
			Timeout:   v.GetDuration("PARTNER_TIMEOUT"),
		},
		Saga: SagaConfig{
			StepTimeout: v.GetDuration("SAGA_STEP_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:           v.GetString("REDIS_ADDR"),
			Password:       v.GetString("REDIS_PASSWORD"),
			DB:             v.GetInt("REDIS_DB"),
			IdempotencyTTL: v.GetDuration("IDEMPOTENCY_TTL"),
		},
		Reconcile: ReconcileConfig{
			Interval:    v.GetDuration("RECONCILE_INTERVAL"),
			Concurrency: v.GetInt("RECONCILE_CONCURRENCY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if !c.IsDevelopment() && (c.Partners.FlightURL == "" || c.Partners.HotelURL == "") {
		return fmt.Errorf("FLIGHT_API_URL and HOTEL_API_URL are required outside development")
	}
	if c.Partners.Timeout <= 0 {
		return fmt.Errorf("PARTNER_TIMEOUT must be positive")
	}
	if c.Saga.StepTimeout < c.Partners.Timeout {
		return fmt.Errorf("SAGA_STEP_TIMEOUT (%s) must not be shorter than PARTNER_TIMEOUT (%s)", c.Saga.StepTimeout, c.Partners.Timeout)
	}
	if c.Reconcile.Concurrency <= 0 {
		c.Reconcile.Concurrency = 1
	}
	return nil
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
