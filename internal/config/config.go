package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// DefaultHFAPIURL zero-shot модель, которой классифицируем симптомы
const DefaultHFAPIURL = "https://api-inference.huggingface.co/models/valhalla/distilbart-mnli-12-1"

type Config struct {
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DBDSN       string `mapstructure:"DB_DSN"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	TriageCacheTTL time.Duration `mapstructure:"TRIAGE_CACHE_TTL"`

	HFAPIURL      string        `mapstructure:"HF_API_URL"`
	HFAPIKey      string        `mapstructure:"HF_API_KEY"`
	TriageTimeout time.Duration `mapstructure:"TRIAGE_TIMEOUT"`

	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminJWTSecret    string        `mapstructure:"ADMIN_JWT_SECRET"`
	AdminTokenTTL     time.Duration `mapstructure:"ADMIN_TOKEN_TTL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	SweepRepair   bool          `mapstructure:"SWEEP_REPAIR"`
	SweepGrace    time.Duration `mapstructure:"SWEEP_GRACE"`
}

var defaults = map[string]any{
	"ENV":                 "development",
	"LOG_LEVEL":           "",
	"HTTP_ADDR":           ":8080",
	"STORE_DRIVER":        StoreDriverPostgres,
	"DB_DSN":              "",
	"DB_MAX_CONNS":        20,
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"TRIAGE_CACHE_TTL":    time.Hour,
	"HF_API_URL":          DefaultHFAPIURL,
	"HF_API_KEY":          "",
	"TRIAGE_TIMEOUT":      5 * time.Second,
	"TELEGRAM_TOKEN":      "",
	"TELEGRAM_CHAT_ID":    0,
	"ADMIN_PASSWORD_HASH": "",
	"ADMIN_JWT_SECRET":    "",
	"ADMIN_TOKEN_TTL":     12 * time.Hour,
	"CORS_ORIGINS":        "",
	"SWEEP_INTERVAL":      15 * time.Minute,
	"SWEEP_REPAIR":        false,
	"SWEEP_GRACE":         time.Minute,
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromViper(viper.New())
}

// FromViper читает конфигурацию из окружения через переданный экземпляр viper
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.TriageTimeout <= 0 {
		return fmt.Errorf("TRIAGE_TIMEOUT must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}

	return nil
}

// AdminEnabled административные маршруты доступны только с паролем и секретом
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.AdminJWTSecret != ""
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
