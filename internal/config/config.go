package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hebergement/internal/models"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

type ArrivalsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Timezone  string `yaml:"timezone"`
	DailyHour int    `yaml:"daily_hour"`
}

type APIConfig struct {
	Port              int `yaml:"port"`
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type MonitoringConfig struct {
	HealthCheckPort   int  `yaml:"health_check_port"`
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BookingConfig struct {
	DefaultStatus  string `yaml:"default_status"`
	MaxNights      int    `yaml:"max_nights"`
	StoreTimeoutMS int    `yaml:"store_timeout_ms"`
}

type Config struct {
	App struct {
		Name     string `yaml:"name"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Backup     BackupConfig     `yaml:"backup"`
	Arrivals   ArrivalsConfig   `yaml:"arrivals"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Booking    BookingConfig    `yaml:"booking"`
}

// Load reads the YAML file at path after loading .env into the environment.
func Load(path string) (*Config, error) {
	// .env is optional; values already exported win.
	_ = godotenv.Load()

	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == DriverSQLite {
		if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hebergement"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/hebergement.db"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "hebergement.events"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Arrivals.Timezone == "" {
		c.Arrivals.Timezone = "Europe/Paris"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.DefaultStatus == "" {
		c.Booking.DefaultStatus = string(models.StatusConfirmed)
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.Arrivals.DailyHour < 0 || c.Arrivals.DailyHour > 23 {
		return fmt.Errorf("arrivals.daily_hour must be between 0 and 23, got %d", c.Arrivals.DailyHour)
	}

	switch models.ReservationStatus(c.Booking.DefaultStatus) {
	case models.StatusPending, models.StatusConfirmed:
	default:
		return fmt.Errorf("booking.default_status must be pending or confirmed, got %q", c.Booking.DefaultStatus)
	}
	return nil
}

func (c *Config) BookingMaxNights() int {
	if c.Booking.MaxNights <= 0 {
		return 365
	}
	return c.Booking.MaxNights
}

func (c *Config) StoreTimeout() time.Duration {
	if c.Booking.StoreTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Booking.StoreTimeoutMS) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

// RequestsPerMinute returns 0 when rate limiting is disabled.
func (c *Config) RequestsPerMinute() int {
	if c.API.RequestsPerMinute < 0 {
		return 0
	}
	return c.API.RequestsPerMinute
}
