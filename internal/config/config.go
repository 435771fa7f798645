package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LedgerConfig は在庫・集計まわりの設定
type LedgerConfig struct {
	// PendingExpiry は支払い待ち申込を「古い」とみなす経過時間
	PendingExpiry time.Duration
	// ReminderInterval は支払い待ちリマインダーワーカーの実行間隔
	ReminderInterval time.Duration
	// AvailabilityCacheTTL は空き在庫キャッシュのTTL
	AvailabilityCacheTTL time.Duration
	// MigrationsPath はマイグレーションSQLの配置場所（空ならスキップ）
	MigrationsPath string
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "event_inventory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			PendingExpiry:        getDurationEnv("PENDING_EXPIRY", 24*time.Hour),
			ReminderInterval:     getDurationEnv("REMINDER_INTERVAL", 10*time.Minute),
			AvailabilityCacheTTL: getDurationEnv("AVAILABILITY_CACHE_TTL", 30*time.Second),
			MigrationsPath:       getEnv("MIGRATIONS_PATH", "migrations"),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
