package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Booking     BookingConfig     `toml:"booking"`
	Reservation ReservationConfig `toml:"reservation"`
	Events      EventsConfig      `toml:"events"`

	CustomerService     IntegrationConfig `toml:"customer_service"`
	NotificationService IntegrationConfig `toml:"notification_service"`
	PaymentService      IntegrationConfig `toml:"payment_service"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig бизнес-параметры бронирования
type BookingConfig struct {
	MinLeadTimeMinutes     int     `toml:"min_lead_time_minutes"`
	HorizonDays            int     `toml:"horizon_days"`
	SlotGranularityMinutes int     `toml:"slot_granularity_minutes"`
	BufferMinutes          int     `toml:"buffer_minutes"`
	NoShowGraceMinutes     int     `toml:"no_show_grace_minutes"`
	OvertimeRatePerMinute  float64 `toml:"overtime_rate_per_minute"`
	LateCancelHours        int     `toml:"late_cancel_hours"`
	FreeCancelHours        int     `toml:"free_cancel_hours"`
}

// ReservationConfig параметры пайплайна резервирования слотов
type ReservationConfig struct {
	LockTTLSeconds         int `toml:"lock_ttl_seconds"`
	LockRetries            int `toml:"lock_retries"`
	LockBackoffMillis      int `toml:"lock_backoff_millis"`
	PipelineTimeoutSeconds int `toml:"pipeline_timeout_seconds"`
}

// LockTTL возвращает TTL блокировки слота
func (r ReservationConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSeconds) * time.Second
}

// LockBackoff возвращает паузу между попытками захвата блокировки
func (r ReservationConfig) LockBackoff() time.Duration {
	return time.Duration(r.LockBackoffMillis) * time.Millisecond
}

// PipelineTimeout возвращает общий таймаут пайплайна резервирования
func (r ReservationConfig) PipelineTimeout() time.Duration {
	return time.Duration(r.PipelineTimeoutSeconds) * time.Second
}

// EventsConfig настройки публикации событий в Kafka
type EventsConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// IntegrationConfig настройки HTTP-клиента внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает конфигурацию из TOML-файла и подставляет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.MinLeadTimeMinutes == 0 {
		c.Booking.MinLeadTimeMinutes = domain.DefaultMinLeadTimeMinutes
	}
	if c.Booking.HorizonDays == 0 {
		c.Booking.HorizonDays = domain.DefaultBookingHorizonDays
	}
	if c.Booking.SlotGranularityMinutes == 0 {
		c.Booking.SlotGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if c.Booking.BufferMinutes == 0 {
		c.Booking.BufferMinutes = domain.DefaultBufferMinutes
	}
	if c.Booking.NoShowGraceMinutes == 0 {
		c.Booking.NoShowGraceMinutes = domain.DefaultNoShowGraceMinutes
	}
	if c.Booking.OvertimeRatePerMinute == 0 {
		c.Booking.OvertimeRatePerMinute = domain.DefaultOvertimeRatePerMinute
	}
	if c.Booking.LateCancelHours == 0 {
		c.Booking.LateCancelHours = domain.DefaultLateCancelHours
	}

	if c.Reservation.LockTTLSeconds == 0 {
		c.Reservation.LockTTLSeconds = 30
	}
	if c.Reservation.LockRetries == 0 {
		c.Reservation.LockRetries = 3
	}
	if c.Reservation.LockBackoffMillis == 0 {
		c.Reservation.LockBackoffMillis = 100
	}
	if c.Reservation.PipelineTimeoutSeconds == 0 {
		c.Reservation.PipelineTimeoutSeconds = 10
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "smc-wash-service"
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort == 0 {
		return fmt.Errorf("config: server.http_port is required")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.Logs.File == "" {
		return fmt.Errorf("config: logs.file is required")
	}
	if c.Booking.FreeCancelHours != 0 && c.Booking.FreeCancelHours < c.Booking.LateCancelHours {
		return fmt.Errorf("config: booking.free_cancel_hours must be 0 or >= late_cancel_hours")
	}
	return nil
}
