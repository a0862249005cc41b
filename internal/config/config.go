package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingDBHost = errors.New("DB_HOST is not set")

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	AppPort    string
	AppEnv     string

	HTTP    HTTPConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Locale  LocaleConfig
	Payment PaymentConfig

	MigrationsPath    string
	InternalSecretKey string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig is optional; an empty Addr disables the option cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	OptionTTL time.Duration
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// KafkaConfig is optional; without brokers order events are dropped.
type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// PaymentConfig holds the bank account quotes are paid to by transfer.
type PaymentConfig struct {
	Beneficiary string
	IBAN        string
	BIC         string
	BankName    string
}

type LocaleConfig struct {
	Default   string
	Supported []string
}

// IsSupported reports whether locale is one of the configured locales.
func (c LocaleConfig) IsSupported(locale string) bool {
	for _, l := range c.Supported {
		if l == locale {
			return true
		}
	}
	return false
}

// Load reads the environment (and an optional .env file) into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		DBSSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		AppPort:    getEnvOrDefault("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		HTTP: HTTPConfig{
			ReadTimeout:     parseDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    parseDurationEnv("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     parseDurationEnv("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: parseDurationEnv("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        parseIntEnv("REDIS_DB", 0),
			OptionTTL: parseDurationEnv("REDIS_OPTION_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    parseListEnv("KAFKA_BROKERS"),
			OrderTopic: getEnvOrDefault("KAFKA_ORDER_TOPIC", "order-events"),
		},
		Locale: LocaleConfig{
			Default:   getEnvOrDefault("DEFAULT_LOCALE", "fr"),
			Supported: parseListEnv("SUPPORTED_LOCALES"),
		},
		Payment: PaymentConfig{
			Beneficiary: os.Getenv("PAYMENT_BENEFICIARY"),
			IBAN:        os.Getenv("PAYMENT_IBAN"),
			BIC:         os.Getenv("PAYMENT_BIC"),
			BankName:    os.Getenv("PAYMENT_BANK_NAME"),
		},
		MigrationsPath:    getEnvOrDefault("MIGRATIONS_PATH", "file://migrations"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
	}

	if len(cfg.Locale.Supported) == 0 {
		cfg.Locale.Supported = []string{"fr", "en"}
	}
	if !cfg.Locale.IsSupported(cfg.Locale.Default) {
		cfg.Locale.Supported = append(cfg.Locale.Supported, cfg.Locale.Default)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load for process entry points: it exits on an invalid environment.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return ErrMissingDBHost
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

func parseListEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
