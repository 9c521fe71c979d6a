package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Feed    FeedConfig
	Auth    AuthConfig
	Worker  WorkerConfig
	DB      DatabaseConfig
	Redis   RedisConfig
	Offline OfflineConfig
	Kafka   KafkaConfig
	PWA     PWAConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type FeedConfig struct {
	ConnectDelay    time.Duration
	RefreshInterval time.Duration
	ReconnectDelay  time.Duration
	// Seed fixes the mock generator. Zero picks a random seed.
	Seed uint64
}

type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
	Token        string
	Role         string
	RequireAdmin bool
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type OfflineConfig struct {
	MaxActions int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type PWAConfig struct {
	Name                string
	ShortName           string
	ThemeColor          string
	VersionFile         string
	VersionPollInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		Feed: FeedConfig{
			ConnectDelay:    getEnvDuration("FEED_CONNECT_DELAY", time.Second),
			RefreshInterval: getEnvDuration("FEED_REFRESH_INTERVAL", 30*time.Second),
			ReconnectDelay:  getEnvDuration("FEED_RECONNECT_DELAY", 2*time.Second),
			Seed:            getEnvUint64("FEED_SEED", 0),
		},
		Auth: AuthConfig{
			Username:     getEnv("AUTH_USERNAME", "admin"),
			Password:     getEnv("AUTH_PASSWORD", "admin123"),
			PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
			Token:        getEnv("AUTH_TOKEN", "admin-token"),
			Role:         getEnv("AUTH_ROLE", "admin"),
			RequireAdmin: getEnvBool("AUTH_REQUIRE_ADMIN", false),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 64),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/flood-alerts.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Offline: OfflineConfig{
			MaxActions: getEnvInt("OFFLINE_MAX_ACTIONS", 100),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "flood-report-events"),
		},
		PWA: PWAConfig{
			Name:                getEnv("PWA_NAME", "Flood Alert"),
			ShortName:           getEnv("PWA_SHORT_NAME", "FloodAlert"),
			ThemeColor:          getEnv("PWA_THEME_COLOR", "#1e40af"),
			VersionFile:         getEnv("PWA_VERSION_FILE", ""),
			VersionPollInterval: getEnvDuration("PWA_VERSION_POLL_INTERVAL", time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Feed.ConnectDelay < 0 || c.Feed.ReconnectDelay < 0 {
		return fmt.Errorf("feed delays must not be negative")
	}
	if c.Feed.RefreshInterval <= 0 {
		return fmt.Errorf("feed refresh interval must be positive")
	}

	if c.Auth.Username == "" || c.Auth.Token == "" {
		return fmt.Errorf("auth username and token are required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("one of AUTH_PASSWORD or AUTH_PASSWORD_HASH is required")
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative")
	}
	if c.Offline.MaxActions < 1 {
		return fmt.Errorf("offline max actions must be at least 1")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka requires brokers and a topic")
	}

	if c.PWA.VersionPollInterval < time.Second {
		return fmt.Errorf("PWA version poll interval must be at least 1 second")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint64(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
