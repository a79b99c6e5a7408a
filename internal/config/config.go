package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	PublicBaseURL   string
}

type OneSignalConfig struct {
	AppID  string
	APIKey string
	URL    string
}

type AppConfig struct {
	Port              string
	LogLevel          string
	Postgres          PostgresConfig
	Redis             RedisConfig
	S3                S3Config
	OneSignal         OneSignalConfig
	NATSURL           string
	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string
	DisplayTimezone   string
	ProfileCacheTTL   time.Duration
	NotifyTimeout     time.Duration
}

var defaults = map[string]any{
	"APP_PORT":            "5000",
	"LOG_LEVEL":           "info",
	"PG_HOST":             "127.0.0.1",
	"PG_PORT":             5432,
	"PG_USER":             "postgres",
	"PG_PASSWORD":         "postgres",
	"PG_DB":               "splitpay",
	"PG_SSLMODE":          "disable",
	"PG_MAX_CONNS":        10,
	"REDIS_ENABLED":       true,
	"REDIS_ADDR":          "127.0.0.1:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_MAX_RETRIES":   5,
	"REDIS_DIAL_TIMEOUT":  10,
	"REDIS_TIMEOUT":       5,
	"REDIS_PREFIX":        "splitpay_",
	"S3_ENABLED":          false,
	"S3_ENDPOINT":         "localhost:9000",
	"S3_ACCESS_KEY":       "minio",
	"S3_SECRET_KEY":       "minio123",
	"S3_BUCKET":           "user-images",
	"S3_REGION":           "us-east-1",
	"S3_USE_SSL":          false,
	"S3_PREFIX":           "user_images/",
	"S3_PUBLIC_BASE_URL":  "",
	"ONESIGNAL_APP_ID":    "",
	"ONESIGNAL_API_KEY":   "",
	"ONESIGNAL_URL":       "https://api.onesignal.com/notifications",
	"NATS_URL":            "",
	"EXPORT_DIR":          "./storage",
	"FILES_PUBLIC_PREFIX": "/files",
	"EXTERNAL_URL":        "",
	"DISPLAY_TIMEZONE":    "Asia/Kolkata",
	"PROFILE_CACHE_TTL":   "10m",
	"NOTIFY_TIMEOUT":      "10s",
}

// Load reads configuration from the environment. Call godotenv.Load first
// when a .env file should be honoured.
func Load() (AppConfig, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := AppConfig{
		Port:     v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Postgres: PostgresConfig{
			Host:     v.GetString("PG_HOST"),
			Port:     v.GetInt("PG_PORT"),
			User:     v.GetString("PG_USER"),
			Password: v.GetString("PG_PASSWORD"),
			DBName:   v.GetString("PG_DB"),
			SSLMode:  v.GetString("PG_SSLMODE"),
			MaxConns: v.GetInt("PG_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:     v.GetBool("REDIS_ENABLED"),
			Addr:        v.GetString("REDIS_ADDR"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			MaxRetries:  v.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout: v.GetInt("REDIS_DIAL_TIMEOUT"),
			Timeout:     v.GetInt("REDIS_TIMEOUT"),
			Prefix:      v.GetString("REDIS_PREFIX"),
		},
		S3: S3Config{
			Enabled:         v.GetBool("S3_ENABLED"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY"),
			SecretAccessKey: v.GetString("S3_SECRET_KEY"),
			Bucket:          v.GetString("S3_BUCKET"),
			Region:          v.GetString("S3_REGION"),
			UseSSL:          v.GetBool("S3_USE_SSL"),
			Prefix:          v.GetString("S3_PREFIX"),
			PublicBaseURL:   v.GetString("S3_PUBLIC_BASE_URL"),
		},
		OneSignal: OneSignalConfig{
			AppID:  v.GetString("ONESIGNAL_APP_ID"),
			APIKey: v.GetString("ONESIGNAL_API_KEY"),
			URL:    v.GetString("ONESIGNAL_URL"),
		},
		NATSURL:           v.GetString("NATS_URL"),
		ExportDir:         v.GetString("EXPORT_DIR"),
		FilesPublicPrefix: v.GetString("FILES_PUBLIC_PREFIX"),
		ExternalURL:       v.GetString("EXTERNAL_URL"),
		DisplayTimezone:   v.GetString("DISPLAY_TIMEZONE"),
		ProfileCacheTTL:   v.GetDuration("PROFILE_CACHE_TTL"),
		NotifyTimeout:     v.GetDuration("NOTIFY_TIMEOUT"),
	}

	if cfg.Postgres.Port <= 0 {
		return AppConfig{}, fmt.Errorf("invalid PG_PORT %q", v.GetString("PG_PORT"))
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return AppConfig{}, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", cfg.DisplayTimezone, err)
	}

	return cfg, nil
}

// Location returns the timezone used for display timestamps.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
