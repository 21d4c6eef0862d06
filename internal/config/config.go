// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// Backend names shared by several sections.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendKafka    = "kafka"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Queue      QueueConfig      `yaml:"queue"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Backend  string `yaml:"backend"` // postgres, memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`

	// ReplicaDSN, when set, serves notification reads from a replica.
	ReplicaDSN string `yaml:"replica_dsn"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// RedisConfig defines the shared Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig selects the delivery queue backend.
type QueueConfig struct {
	Backend    string      `yaml:"backend"`     // memory, kafka
	DelayTable string      `yaml:"delay_table"` // memory, redis (kafka backend only)
	BufferSize int         `yaml:"buffer_size"`
	Kafka      KafkaConfig `yaml:"kafka"`
}

// KafkaConfig defines a Kafka topic binding.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	GroupID      string        `yaml:"group_id"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// IngestConfig defines the observation stream consumer.
type IngestConfig struct {
	Enabled bool        `yaml:"enabled"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// EvaluationConfig defines how observations are partitioned and evaluated.
type EvaluationConfig struct {
	Partitions  int           `yaml:"partitions"`
	BufferSize  int           `yaml:"buffer_size"`
	PctLookback time.Duration `yaml:"pct_lookback"`
}

// DeliveryConfig defines dispatcher concurrency, retry, and channel limits.
type DeliveryConfig struct {
	Workers           int           `yaml:"workers"`
	Backoff           BackoffConfig `yaml:"backoff"`
	LateResultTimeout time.Duration `yaml:"late_result_timeout"`
	Email             ChannelConfig `yaml:"email"`
	Push              ChannelConfig `yaml:"push"`
	SMS               ChannelConfig `yaml:"sms"`
}

// Channel returns the settings for ch.
func (d *DeliveryConfig) Channel(ch domain.Channel) ChannelConfig {
	switch ch {
	case domain.ChannelEmail:
		return d.Email
	case domain.ChannelPush:
		return d.Push
	case domain.ChannelSMS:
		return d.SMS
	default:
		return ChannelConfig{}
	}
}

// EnabledChannels returns the globally enabled channels.
func (d *DeliveryConfig) EnabledChannels() []domain.Channel {
	var out []domain.Channel
	for _, ch := range domain.AllChannels {
		if d.Channel(ch).Enabled {
			out = append(out, ch)
		}
	}
	return out
}

// BackoffConfig defines exponential retry backoff.
type BackoffConfig struct {
	Base   time.Duration `yaml:"base"`
	Cap    time.Duration `yaml:"cap"`
	Jitter float64       `yaml:"jitter"` // fraction, 0.25 means ±25%
}

// ChannelConfig defines per-channel delivery limits.
type ChannelConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DedupConfig defines the sliding-window notification guard.
type DedupConfig struct {
	Backend  string        `yaml:"backend"` // memory, redis
	Window   time.Duration `yaml:"window"`
	MaxCount int           `yaml:"max_count"`
}

// ProvidersConfig defines the third-party channel providers.
type ProvidersConfig struct {
	Email EmailProviderConfig `yaml:"email"`
	Push  PushProviderConfig  `yaml:"push"`
	SMS   SMSProviderConfig   `yaml:"sms"`
}

// EmailProviderConfig defines email providers and their fallback order.
type EmailProviderConfig struct {
	Primary  string       `yaml:"primary"` // smtp, resend, ses
	Fallback []string     `yaml:"fallback"`
	From     string       `yaml:"from"`
	SMTP     SMTPConfig   `yaml:"smtp"`
	Resend   ResendConfig `yaml:"resend"`
	SES      SESConfig    `yaml:"ses"`
}

// SMTPConfig defines SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ResendConfig defines Resend API settings.
type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

// SESConfig defines AWS SES settings. Credentials come from the default AWS
// chain.
type SESConfig struct {
	Region string `yaml:"region"`
}

// PushProviderConfig defines the push gateway.
type PushProviderConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	ServerKey  string `yaml:"server_key"`
}

// SMSProviderConfig defines the SMS gateway.
type SMSProviderConfig struct {
	GatewayURL string  `yaml:"gateway_url"`
	APIKey     string  `yaml:"api_key"`
	From       string  `yaml:"from"`
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
}

// ScheduleConfig defines background job intervals.
type ScheduleConfig struct {
	RedeliveryInterval time.Duration `yaml:"redelivery_interval"`
	RecoveryInterval   time.Duration `yaml:"recovery_interval"`
	StaleAfter         time.Duration `yaml:"stale_after"`
}

// TelemetryConfig defines OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyQueueDefaults(&cfg.Queue)
	applyIngestDefaults(&cfg.Ingest)
	applyEvaluationDefaults(&cfg.Evaluation)
	applyDeliveryDefaults(&cfg.Delivery)
	applyDedupDefaults(&cfg.Dedup)
	applyProviderDefaults(&cfg.Providers)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Backend == "" {
		d.Backend = BackendPostgres
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyQueueDefaults(q *QueueConfig) {
	if q.Backend == "" {
		q.Backend = BackendMemory
	}
	if q.DelayTable == "" {
		q.DelayTable = BackendMemory
	}
	if q.BufferSize == 0 {
		q.BufferSize = 1024
	}
	if q.Kafka.Topic == "" {
		q.Kafka.Topic = "notifications.delivery"
	}
	if q.Kafka.GroupID == "" {
		q.Kafka.GroupID = "price-alert-dispatcher"
	}
	if q.Kafka.WriteTimeout == 0 {
		q.Kafka.WriteTimeout = 10 * time.Second
	}
}

func applyIngestDefaults(i *IngestConfig) {
	if i.Kafka.Topic == "" {
		i.Kafka.Topic = "market.ticks"
	}
	if i.Kafka.GroupID == "" {
		i.Kafka.GroupID = "price-alert-evaluator"
	}
}

func applyEvaluationDefaults(e *EvaluationConfig) {
	if e.Partitions == 0 {
		e.Partitions = 8
	}
	if e.BufferSize == 0 {
		e.BufferSize = 256
	}
	if e.PctLookback == 0 {
		e.PctLookback = 15 * time.Minute
	}
}

func applyDeliveryDefaults(d *DeliveryConfig) {
	if d.Workers == 0 {
		d.Workers = 10
	}
	if d.Backoff.Base == 0 {
		d.Backoff.Base = 2 * time.Second
	}
	if d.Backoff.Cap == 0 {
		d.Backoff.Cap = 5 * time.Minute
	}
	if d.Backoff.Jitter == 0 {
		d.Backoff.Jitter = 0.25
	}
	if d.LateResultTimeout == 0 {
		d.LateResultTimeout = 2 * time.Minute
	}
	applyChannelDefaults(&d.Email, 5, 15*time.Second)
	applyChannelDefaults(&d.Push, 3, 5*time.Second)
	applyChannelDefaults(&d.SMS, 3, 10*time.Second)
}

func applyChannelDefaults(c *ChannelConfig, maxAttempts int, timeout time.Duration) {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = maxAttempts
	}
	if c.Timeout == 0 {
		c.Timeout = timeout
	}
}

func applyDedupDefaults(d *DedupConfig) {
	if d.Backend == "" {
		d.Backend = BackendMemory
	}
	if d.Window == 0 {
		d.Window = 5 * time.Minute
	}
	if d.MaxCount == 0 {
		d.MaxCount = 1
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	if p.Email.SMTP.Port == 0 {
		p.Email.SMTP.Port = 587
	}
	if p.Email.SES.Region == "" {
		p.Email.SES.Region = "us-east-1"
	}
	if p.SMS.PerSecond == 0 {
		p.SMS.PerSecond = 1.0
	}
	if p.SMS.Burst == 0 {
		p.SMS.Burst = 5
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RedeliveryInterval == 0 {
		s.RedeliveryInterval = 5 * time.Second
	}
	if s.RecoveryInterval == 0 {
		s.RecoveryInterval = time.Minute
	}
	if s.StaleAfter == 0 {
		s.StaleAfter = 10 * time.Minute
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "price-alert-dispatcher"
	}
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Database.Backend {
	case BackendPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf(
			"database.backend must be one of: postgres, memory (got %q)", cfg.Database.Backend,
		))
	}

	needsRedis := false

	switch cfg.Queue.Backend {
	case BackendMemory:
	case BackendKafka:
		if len(cfg.Queue.Kafka.Brokers) == 0 {
			errs = append(errs, fmt.Errorf("queue.kafka.brokers is required when backend is kafka"))
		}
		switch cfg.Queue.DelayTable {
		case BackendMemory:
		case BackendRedis:
			needsRedis = true
		default:
			errs = append(errs, fmt.Errorf(
				"queue.delay_table must be one of: memory, redis (got %q)", cfg.Queue.DelayTable,
			))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"queue.backend must be one of: memory, kafka (got %q)", cfg.Queue.Backend,
		))
	}

	if cfg.Ingest.Enabled && len(cfg.Ingest.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("ingest.kafka.brokers is required when ingest is enabled"))
	}

	switch cfg.Dedup.Backend {
	case BackendMemory:
	case BackendRedis:
		needsRedis = true
	default:
		errs = append(errs, fmt.Errorf(
			"dedup.backend must be one of: memory, redis (got %q)", cfg.Dedup.Backend,
		))
	}

	if needsRedis && cfg.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr is required when a redis backend is selected"))
	}

	if cfg.Evaluation.Partitions < 1 {
		errs = append(errs, fmt.Errorf("evaluation.partitions must be at least 1"))
	}
	if cfg.Delivery.Workers < 1 {
		errs = append(errs, fmt.Errorf("delivery.workers must be at least 1"))
	}
	if cfg.Delivery.Backoff.Cap < cfg.Delivery.Backoff.Base {
		errs = append(errs, fmt.Errorf("delivery.backoff.cap must not be less than delivery.backoff.base"))
	}
	if cfg.Delivery.Backoff.Jitter < 0 || cfg.Delivery.Backoff.Jitter >= 1 {
		errs = append(errs, fmt.Errorf("delivery.backoff.jitter must be in [0, 1)"))
	}
	for _, ch := range domain.AllChannels {
		if cfg.Delivery.Channel(ch).MaxAttempts < 1 {
			errs = append(errs, fmt.Errorf("delivery.%s.max_attempts must be at least 1", ch))
		}
	}

	errs = append(errs, validateProviders(cfg)...)

	return errors.Join(errs...)
}

var emailProviders = []string{"smtp", "resend", "ses"}

func validateProviders(cfg *Config) []error {
	var errs []error

	email := cfg.Providers.Email
	if cfg.Delivery.Email.Enabled && email.Primary != "" {
		for _, name := range append([]string{email.Primary}, email.Fallback...) {
			if !slices.Contains(emailProviders, name) {
				errs = append(errs, fmt.Errorf(
					"providers.email: unknown provider %q (want one of smtp, resend, ses)", name,
				))
			}
		}
		if email.From == "" {
			errs = append(errs, fmt.Errorf("providers.email.from is required"))
		}
	}

	if cfg.Providers.SMS.PerSecond <= 0 {
		errs = append(errs, fmt.Errorf("providers.sms.per_second must be positive"))
	}

	return errs
}
